package xhdi

import (
	"sync"

	"github.com/ardnew/softxhdi/mem"
	"github.com/ardnew/softxhdi/pkg"
)

// Vectors binds handlers to guest addresses, the form in which entry points
// are published in the cookie jar and passed to XHNewCookie. Every bound
// address is preceded by the XHDI magic long, which Resolve checks.
type Vectors struct {
	memory   mem.Allocator
	handlers map[uint32]Handler
	mutex    sync.RWMutex
}

// NewVectors creates a vector table allocating from m.
func NewVectors(m mem.Allocator) *Vectors {
	return &Vectors{
		memory:   m,
		handlers: make(map[uint32]Handler),
	}
}

// Bind gives h a fresh entry point address.
func (v *Vectors) Bind(h Handler) (uint32, error) {
	base, err := v.memory.Alloc(8)
	if err != nil {
		return 0, err
	}
	if err := mem.WriteU32(v.memory, base, Magic); err != nil {
		return 0, err
	}
	addr := base + 4

	v.mutex.Lock()
	v.handlers[addr] = h
	v.mutex.Unlock()

	pkg.LogDebug(pkg.ComponentXHDI, "handler bound", "address", addr)
	return addr, nil
}

// Resolve returns the handler bound at addr. It fails if addr is unbound or
// the magic long in front of it has been overwritten.
func (v *Vectors) Resolve(addr uint32) (Handler, bool) {
	if v == nil || addr < 4 {
		return nil, false
	}
	magic, err := mem.ReadU32(v.memory, addr-4)
	if err != nil || magic != Magic {
		return nil, false
	}

	v.mutex.RLock()
	defer v.mutex.RUnlock()
	h, ok := v.handlers[addr]
	return h, ok
}
