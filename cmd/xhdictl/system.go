package main

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/ardnew/softxhdi/cookie"
	"github.com/ardnew/softxhdi/mem"
	"github.com/ardnew/softxhdi/pkg"
	"github.com/ardnew/softxhdi/pun"
	"github.com/ardnew/softxhdi/transport"
	"github.com/ardnew/softxhdi/xhdi"
)

// First drive letter handed to scanned partitions (C:).
const firstDrive = 2

const ramSize = 4 << 20

var classNames = map[string]uint8{
	"usb":  pun.FlagUSB,
	"ide":  pun.FlagIDE,
	"scsi": pun.FlagSCSI,
}

func className(class uint8) string {
	for name, c := range classNames {
		if c == class {
			return name
		}
	}
	return fmt.Sprintf("class(%#02x)", class)
}

// image is one --image argument: [class:dev=]path.
type image struct {
	class uint8
	dev   int
	path  string
}

// parseImage parses an image argument. Without a prefix the image goes on
// the USB bus at device index.
func parseImage(s string, index int) (image, error) {
	addr, path, ok := strings.Cut(s, "=")
	if !ok {
		return image{class: pun.FlagUSB, dev: index, path: s}, nil
	}
	if path == "" {
		return image{}, fmt.Errorf("%w: image %q has no path", pkg.ErrInvalidParameter, s)
	}
	major, err := parseDevice(addr)
	if err != nil {
		return image{}, err
	}
	return image{class: pun.ClassOf(major), dev: pun.BusDevice(major), path: path}, nil
}

// parseDevice parses a device address, either "class:dev" or a numeric
// major number.
func parseDevice(s string) (uint16, error) {
	if name, dev, ok := strings.Cut(s, ":"); ok {
		class, known := classNames[strings.ToLower(name)]
		if !known {
			return 0, fmt.Errorf("%w: bus %q", pkg.ErrInvalidParameter, name)
		}
		n, err := strconv.Atoi(dev)
		limit := 8
		if class == pun.FlagUSB {
			limit = pun.FlagDevice + 1
		}
		if err != nil || n < 0 || n >= limit {
			return 0, fmt.Errorf("%w: %s device %q", pkg.ErrInvalidParameter, name, dev)
		}
		return uint16(class) | uint16(n), nil
	}

	n, err := strconv.ParseUint(s, 0, 16)
	if err != nil || pun.ClassOf(uint16(n)) == 0 {
		return 0, fmt.Errorf("%w: device %q", pkg.ErrInvalidParameter, s)
	}
	return uint16(n), nil
}

// options configures a system.
type options struct {
	images   []string
	usbIDs   []string
	names    *transport.Names
	readOnly bool
	append   bool
}

// system is the simulated machine: guest memory, cookie jar, device table,
// one bus and driver per class, and a client bound to the published handler.
type system struct {
	ram     *mem.RAM
	jar     *cookie.Jar
	vectors *xhdi.Vectors
	table   *pun.Table
	buses   map[uint8]*transport.Bus
	drivers []*xhdi.Driver
	client  *xhdi.Client
}

func newSystem(opts options) (*system, error) {
	ram := mem.NewRAM(0x1000, ramSize)
	sys := &system{
		ram:     ram,
		jar:     cookie.New(),
		vectors: xhdi.NewVectors(ram),
		table:   pun.NewTable(),
		buses:   make(map[uint8]*transport.Bus),
	}

	ids, err := parseUSBIDs(opts.usbIDs)
	if err != nil {
		return nil, err
	}

	var order []uint8
	drv := firstDrive
	for i, arg := range opts.images {
		img, err := parseImage(arg, i)
		if err != nil {
			sys.Close()
			return nil, err
		}
		bus, ok := sys.buses[img.class]
		if !ok {
			bus = transport.NewBus(className(img.class))
			sys.buses[img.class] = bus
			order = append(order, img.class)
		}

		storage, err := transport.NewFileStorage(img.path, xhdi.BlockSize, opts.readOnly)
		if err != nil {
			sys.Close()
			return nil, err
		}
		vendor, product := "softxhdi", filepath.Base(img.path)
		if id, ok := ids[img.dev]; ok && img.class == pun.FlagUSB && opts.names != nil {
			vendor, product = opts.names.Describe(id[0], id[1])
		}
		if err := bus.Attach(img.dev, storage, vendor, product); err != nil {
			storage.Close()
			sys.Close()
			return nil, err
		}

		n, err := pun.Scan(sys.table, drv, pun.MakeTag(img.class, img.dev), storage, xhdi.BlockSize)
		if err != nil {
			pkg.LogWarn(pkg.ComponentCLI, "no drives on image", "image", img.path, "error", err)
		}
		if n > 0 {
			drv = sys.table.Free(drv)
			if drv < 0 {
				drv = pun.MaxDrives
			}
		}
	}

	for _, class := range order {
		d, err := xhdi.NewDriver(xhdi.Config{
			Class:     class,
			Table:     sys.table,
			Transport: sys.buses[class],
			Memory:    ram,
			Name:      className(class) + " xhdi",
			Version:   appVersion,
			Company:   "softxhdi",
		})
		if err != nil {
			sys.Close()
			return nil, err
		}
		install := xhdi.Install
		if opts.append {
			install = xhdi.Append
		}
		if _, err := install(sys.jar, sys.vectors, d); err != nil {
			sys.Close()
			return nil, err
		}
		sys.drivers = append(sys.drivers, d)
	}

	if addr, ok := sys.jar.Get(cookie.TagXHDI); ok {
		if h, ok := sys.vectors.Resolve(addr); ok {
			sys.client = xhdi.NewClient(h, ram)
		}
	}
	return sys, nil
}

// parseUSBIDs parses "dev=vvvv:pppp" arguments.
func parseUSBIDs(args []string) (map[int][2]uint16, error) {
	ids := make(map[int][2]uint16, len(args))
	for _, arg := range args {
		dev, id, ok := strings.Cut(arg, "=")
		if !ok {
			return nil, fmt.Errorf("%w: usb id %q", pkg.ErrInvalidParameter, arg)
		}
		n, err := strconv.Atoi(dev)
		if err != nil || n < 0 || n >= transport.MaxDevices {
			return nil, fmt.Errorf("%w: usb device %q", pkg.ErrInvalidParameter, dev)
		}
		vid, pid, err := transport.ParseUSBID(id)
		if err != nil {
			return nil, err
		}
		ids[n] = [2]uint16{vid, pid}
	}
	return ids, nil
}

// attached reports whether major addresses an attached device.
func (s *system) attached(major uint16) bool {
	bus, ok := s.buses[pun.ClassOf(major)]
	return ok && bus.Device(pun.BusDevice(major)) != nil
}

// device parses a device argument and checks that it is attached.
func (s *system) device(arg string) (uint16, error) {
	major, err := parseDevice(arg)
	if err != nil {
		return 0, err
	}
	if !s.attached(major) {
		return 0, fmt.Errorf("%w: %s", pkg.ErrNoDevice, arg)
	}
	return major, nil
}

// Close releases every image.
func (s *system) Close() error {
	var first error
	for _, bus := range s.buses {
		if err := bus.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}
