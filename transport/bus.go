package transport

import (
	"fmt"
	"io"
	"sync"

	"github.com/ardnew/softxhdi/pkg"
)

// MaxDevices is the number of device addresses on one bus.
const MaxDevices = 32

// Descriptor describes an attached device.
type Descriptor struct {
	Vendor    string
	Product   string
	Blocks    uint64
	BlockSize uint32
	Removable bool
}

// Transport moves blocks between a device and a caller buffer. Device returns
// nil for addresses with nothing attached. Read and Write return the number
// of blocks transferred.
type Transport interface {
	Device(dev int) *Descriptor
	Read(dev int, start uint32, count uint16, buf []byte) (uint32, error)
	Write(dev int, start uint32, count uint16, buf []byte) (uint32, error)
	Eject(dev int)
}

type slot struct {
	storage Storage
	vendor  string
	product string
}

// Bus implements Transport over a set of Storage backends indexed by device
// address.
type Bus struct {
	name    string
	devices [MaxDevices]*slot
	mutex   sync.RWMutex
}

// NewBus creates an empty bus. The name is used in log output only.
func NewBus(name string) *Bus {
	return &Bus{name: name}
}

// Attach connects storage at device address dev.
func (b *Bus) Attach(dev int, storage Storage, vendor, product string) error {
	if dev < 0 || dev >= MaxDevices {
		return fmt.Errorf("%w: device %d", pkg.ErrInvalidParameter, dev)
	}
	if storage == nil || storage.BlockSize() == 0 {
		return fmt.Errorf("%w: storage", pkg.ErrInvalidParameter)
	}

	b.mutex.Lock()
	defer b.mutex.Unlock()

	if b.devices[dev] != nil {
		return fmt.Errorf("%w: device %d", pkg.ErrDeviceInUse, dev)
	}
	b.devices[dev] = &slot{storage: storage, vendor: vendor, product: product}

	pkg.LogInfo(pkg.ComponentTransport, "device attached",
		"bus", b.name,
		"device", dev,
		"vendor", vendor,
		"product", product,
		"blocks", storage.BlockCount(),
		"blockSize", storage.BlockSize())
	return nil
}

// Detach disconnects the device at dev and returns its storage.
func (b *Bus) Detach(dev int) (Storage, error) {
	if dev < 0 || dev >= MaxDevices {
		return nil, fmt.Errorf("%w: device %d", pkg.ErrInvalidParameter, dev)
	}

	b.mutex.Lock()
	defer b.mutex.Unlock()

	s := b.devices[dev]
	if s == nil {
		return nil, fmt.Errorf("%w: device %d", pkg.ErrNoDevice, dev)
	}
	b.devices[dev] = nil

	pkg.LogInfo(pkg.ComponentTransport, "device detached", "bus", b.name, "device", dev)
	return s.storage, nil
}

// Storage returns the backend attached at dev, or nil.
func (b *Bus) Storage(dev int) Storage {
	if s := b.slot(dev); s != nil {
		return s.storage
	}
	return nil
}

// Devices returns the addresses of all attached devices in ascending order.
func (b *Bus) Devices() []int {
	b.mutex.RLock()
	defer b.mutex.RUnlock()

	var devs []int
	for i, s := range b.devices {
		if s != nil {
			devs = append(devs, i)
		}
	}
	return devs
}

func (b *Bus) slot(dev int) *slot {
	if dev < 0 || dev >= MaxDevices {
		return nil
	}
	b.mutex.RLock()
	defer b.mutex.RUnlock()
	return b.devices[dev]
}

// Device returns a fresh descriptor for dev, or nil.
func (b *Bus) Device(dev int) *Descriptor {
	s := b.slot(dev)
	if s == nil {
		return nil
	}
	return &Descriptor{
		Vendor:    s.vendor,
		Product:   s.product,
		Blocks:    s.storage.BlockCount(),
		BlockSize: s.storage.BlockSize(),
		Removable: s.storage.IsRemovable(),
	}
}

// Read reads count blocks starting at start into buf.
func (b *Bus) Read(dev int, start uint32, count uint16, buf []byte) (uint32, error) {
	s := b.slot(dev)
	if s == nil {
		return 0, fmt.Errorf("%w: device %d", pkg.ErrNoDevice, dev)
	}

	n, err := s.storage.Read(uint64(start), uint32(count), buf)
	if err != nil {
		pkg.LogWarn(pkg.ComponentTransport, "read failed",
			"bus", b.name, "device", dev, "start", start, "count", count, "error", err)
	}
	return n, err
}

// Write writes count blocks from buf starting at start.
func (b *Bus) Write(dev int, start uint32, count uint16, buf []byte) (uint32, error) {
	s := b.slot(dev)
	if s == nil {
		return 0, fmt.Errorf("%w: device %d", pkg.ErrNoDevice, dev)
	}

	n, err := s.storage.Write(uint64(start), uint32(count), buf)
	if err != nil {
		pkg.LogWarn(pkg.ComponentTransport, "write failed",
			"bus", b.name, "device", dev, "start", start, "count", count, "error", err)
		return n, err
	}
	return n, s.storage.Sync()
}

// Eject ejects the medium at dev. Failures are logged and otherwise ignored.
func (b *Bus) Eject(dev int) {
	s := b.slot(dev)
	if s == nil {
		return
	}
	if err := s.storage.Eject(); err != nil {
		pkg.LogDebug(pkg.ComponentTransport, "eject refused",
			"bus", b.name, "device", dev, "error", err)
		return
	}
	pkg.LogInfo(pkg.ComponentTransport, "medium ejected", "bus", b.name, "device", dev)
}

// Close closes every attached backend that implements io.Closer.
func (b *Bus) Close() error {
	b.mutex.Lock()
	defer b.mutex.Unlock()

	var first error
	for i, s := range b.devices {
		if s == nil {
			continue
		}
		if c, ok := s.storage.(io.Closer); ok {
			if err := c.Close(); err != nil && first == nil {
				first = err
			}
		}
		b.devices[i] = nil
	}
	return first
}
