package xhdi

import (
	"fmt"
	"sync/atomic"

	"github.com/ardnew/softxhdi/mem"
	"github.com/ardnew/softxhdi/pkg"
	"github.com/ardnew/softxhdi/pun"
	"github.com/ardnew/softxhdi/transport"
)

// Handler is an XHDI entry point: an opcode and its raw argument record in,
// a signed result code out.
type Handler interface {
	Call(op Opcode, args []byte) int32
}

// HandlerFunc adapts an ordinary function to the Handler interface.
type HandlerFunc func(op Opcode, args []byte) int32

// Call calls f(op, args).
func (f HandlerFunc) Call(op Opcode, args []byte) int32 {
	return f(op, args)
}

// Default identification strings reported by XHInqDriver.
const (
	DefaultName    = "softxhdi"
	DefaultVersion = "1.0"
	DefaultCompany = "softxhdi"
)

// Config holds the collaborators of a Driver.
type Config struct {
	// Class is the bus class flag owned by the driver: pun.FlagUSB,
	// pun.FlagIDE or pun.FlagSCSI.
	Class uint8

	// Table is the populated device table. It must not change once the
	// driver is installed.
	Table *pun.Table

	// Transport performs block I/O for owned devices.
	Transport transport.Transport

	// Memory resolves the guest addresses passed in argument records.
	Memory mem.Memory

	// Identification strings; empty fields take the defaults.
	Name    string
	Version string
	Company string
}

// link wraps the next handler so it can be stored atomically.
type link struct {
	handler Handler
}

// Driver is one XHDI driver instance serving a single bus class. It decodes
// calls, offers each one to the handler installed before it, and answers
// locally for the devices its class owns.
type Driver struct {
	class     uint8
	table     *pun.Table
	transport transport.Transport
	memory    mem.Memory
	vectors   *Vectors

	name    string
	version string
	company string

	next atomic.Pointer[link]
}

// NewDriver creates a driver from cfg.
func NewDriver(cfg Config) (*Driver, error) {
	switch cfg.Class {
	case pun.FlagUSB, pun.FlagIDE, pun.FlagSCSI:
	default:
		return nil, fmt.Errorf("%w: class %#02x", pkg.ErrInvalidParameter, cfg.Class)
	}
	if cfg.Table == nil || cfg.Transport == nil || cfg.Memory == nil {
		return nil, fmt.Errorf("%w: table, transport and memory are required", pkg.ErrInvalidParameter)
	}

	d := &Driver{
		class:     cfg.Class,
		table:     cfg.Table,
		transport: cfg.Transport,
		memory:    cfg.Memory,
		name:      cfg.Name,
		version:   cfg.Version,
		company:   cfg.Company,
	}
	if d.name == "" {
		d.name = DefaultName
	}
	if d.version == "" {
		d.version = DefaultVersion
	}
	if d.company == "" {
		d.company = DefaultCompany
	}
	return d, nil
}

// Class returns the bus class flag owned by the driver.
func (d *Driver) Class() uint8 {
	return d.class
}

// Next returns the handler calls are delegated to, or nil.
func (d *Driver) Next() Handler {
	if l := d.next.Load(); l != nil {
		return l.handler
	}
	return nil
}

// SetNext sets the handler calls are delegated to.
func (d *Driver) SetNext(h Handler) {
	if h == nil {
		d.next.Store(nil)
		return
	}
	d.next.Store(&link{handler: h})
}

// forward offers the call to the next handler. handled reports whether its
// result is final.
func (d *Driver) forward(op Opcode, args any) (ret int32, handled bool) {
	next := d.Next()
	if next == nil {
		return 0, false
	}
	ret = next.Call(op, pack(args))
	if pkg.Status(ret).Unhandled() {
		return ret, false
	}
	pkg.LogDebug(pkg.ComponentXHDI, "handled by chain",
		"op", op,
		"status", pkg.Status(ret))
	return ret, true
}

// owns reports whether major addresses a device of the driver's class.
func (d *Driver) owns(major uint16) bool {
	return pun.ClassOf(major) == d.class
}

// ownsDrive reports whether drive index drv is assigned to the driver.
func (d *Driver) ownsDrive(drv uint16) bool {
	return int(drv) < pun.MaxDrives && d.table.Owned(int(drv), d.class)
}

// descriptor returns the transport descriptor of an owned device. The
// transport must describe every device the driver owns.
func (d *Driver) descriptor(major uint16) *transport.Descriptor {
	dev := pun.BusDevice(major)
	desc := d.transport.Device(dev)
	if desc == nil {
		panic(fmt.Sprintf("xhdi: no descriptor for owned device %#04x (bus device %d)", major, dev))
	}
	return desc
}
