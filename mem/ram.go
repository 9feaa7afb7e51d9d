package mem

import (
	"encoding/binary"
	"fmt"
	"sync"

	"github.com/ardnew/softxhdi/pkg"
)

// Memory is a big-endian guest address space. Pointer arguments in the XHDI
// wire format are 32-bit addresses into a Memory; address 0 is NULL.
type Memory interface {
	// Bytes returns a view of n bytes starting at addr. Writes to the
	// returned slice are visible to the guest.
	Bytes(addr uint32, n int) ([]byte, error)
}

// Allocator is a Memory that can hand out fresh guest addresses.
type Allocator interface {
	Memory
	Alloc(n int) (uint32, error)
}

// Alignment of every allocation, matching the 16-bit bus of the guest.
const Alignment = 2

// RAM is a flat Memory backed by a byte slice, with a stack-like allocator
// for scratch records. Address 0 is never handed out.
type RAM struct {
	data  []byte
	base  uint32
	top   uint32
	mutex sync.Mutex
}

// NewRAM creates size bytes of guest memory mapped at base.
// base must be non-zero so that no valid address collides with NULL.
func NewRAM(base uint32, size int) *RAM {
	if base == 0 {
		base = Alignment
	}
	return &RAM{
		data: make([]byte, size),
		base: base,
		top:  base,
	}
}

// Base returns the first mapped address.
func (r *RAM) Base() uint32 {
	return r.base
}

// Size returns the number of mapped bytes.
func (r *RAM) Size() int {
	return len(r.data)
}

// Bytes implements Memory.
func (r *RAM) Bytes(addr uint32, n int) ([]byte, error) {
	if addr == 0 || n < 0 || addr < r.base {
		return nil, fmt.Errorf("%w: %#08x+%d", pkg.ErrBadAddress, addr, n)
	}
	off := uint64(addr - r.base)
	if off+uint64(n) > uint64(len(r.data)) {
		return nil, fmt.Errorf("%w: %#08x+%d", pkg.ErrBadAddress, addr, n)
	}
	return r.data[off : off+uint64(n) : off+uint64(n)], nil
}

// Alloc reserves n zeroed bytes and returns their address.
func (r *RAM) Alloc(n int) (uint32, error) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	size := uint32((n + Alignment - 1) &^ (Alignment - 1))
	end := uint64(r.top) + uint64(size)
	if end > uint64(r.base)+uint64(len(r.data)) {
		return 0, fmt.Errorf("%w: need %d bytes", pkg.ErrOutOfMemory, n)
	}
	addr := r.top
	clear(r.data[addr-r.base : uint32(end)-r.base])
	r.top = uint32(end)
	return addr, nil
}

// Mark returns the current allocation watermark for a later Release.
func (r *RAM) Mark() uint32 {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	return r.top
}

// Release frees every allocation made after mark was taken.
func (r *RAM) Release(mark uint32) {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	if mark >= r.base && mark <= r.top {
		r.top = mark
	}
}

// ReadU16 reads a big-endian 16-bit word.
func ReadU16(m Memory, addr uint32) (uint16, error) {
	b, err := m.Bytes(addr, 2)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint16(b), nil
}

// ReadU32 reads a big-endian 32-bit long.
func ReadU32(m Memory, addr uint32) (uint32, error) {
	b, err := m.Bytes(addr, 4)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint32(b), nil
}

// WriteU16 stores a big-endian 16-bit word. A NULL address is ignored.
func WriteU16(m Memory, addr uint32, v uint16) error {
	if addr == 0 {
		return nil
	}
	b, err := m.Bytes(addr, 2)
	if err != nil {
		return err
	}
	binary.BigEndian.PutUint16(b, v)
	return nil
}

// WriteU32 stores a big-endian 32-bit long. A NULL address is ignored.
func WriteU32(m Memory, addr uint32, v uint32) error {
	if addr == 0 {
		return nil
	}
	b, err := m.Bytes(addr, 4)
	if err != nil {
		return err
	}
	binary.BigEndian.PutUint32(b, v)
	return nil
}

// WriteBytes copies p to addr. A NULL address is ignored.
func WriteBytes(m Memory, addr uint32, p []byte) error {
	if addr == 0 {
		return nil
	}
	b, err := m.Bytes(addr, len(p))
	if err != nil {
		return err
	}
	copy(b, p)
	return nil
}

// WriteString stores s as a NUL-terminated string in a field of size bytes,
// truncating s to size-1 bytes. A NULL address or zero size is ignored.
func WriteString(m Memory, addr uint32, s string, size int) error {
	if addr == 0 || size <= 0 {
		return nil
	}
	if len(s) > size-1 {
		s = s[:size-1]
	}
	b, err := m.Bytes(addr, len(s)+1)
	if err != nil {
		return err
	}
	copy(b, s)
	b[len(s)] = 0
	return nil
}

// ReadString reads a NUL-terminated string of at most size bytes.
func ReadString(m Memory, addr uint32, size int) (string, error) {
	b, err := m.Bytes(addr, size)
	if err != nil {
		return "", err
	}
	for i, c := range b {
		if c == 0 {
			return string(b[:i]), nil
		}
	}
	return string(b), nil
}
