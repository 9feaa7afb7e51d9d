package cookie

import (
	"fmt"
	"sync"

	"github.com/ardnew/softxhdi/pkg"
)

// DefaultCapacity is the number of slots in a jar created by New,
// including the terminating slot.
const DefaultCapacity = 16

// Tag identifies a cookie by four ASCII characters.
type Tag uint32

// TagXHDI is the slot holding the XHDI entry point.
var TagXHDI = MakeTag("XHDI")

// MakeTag packs the first four bytes of s, big-endian.
func MakeTag(s string) Tag {
	var b [4]byte
	copy(b[:], s)
	return Tag(uint32(b[0])<<24 | uint32(b[1])<<16 | uint32(b[2])<<8 | uint32(b[3]))
}

// String returns the four characters of the tag.
func (t Tag) String() string {
	return string([]byte{byte(t >> 24), byte(t >> 16), byte(t >> 8), byte(t)})
}

// Cookie is one tag/value slot.
type Cookie struct {
	Tag   Tag
	Value uint32
}

// Jar is the system-wide service registry. Like the TOS cookie jar it has a
// fixed number of slots; the last slot is the terminator, so at most
// capacity-1 cookies can be published.
type Jar struct {
	cookies  []Cookie
	capacity int
	mutex    sync.RWMutex
}

// New creates a jar with DefaultCapacity slots.
func New() *Jar {
	return NewWithCapacity(DefaultCapacity)
}

// NewWithCapacity creates a jar with n slots.
func NewWithCapacity(n int) *Jar {
	if n < 1 {
		n = 1
	}
	return &Jar{
		cookies:  make([]Cookie, 0, n-1),
		capacity: n,
	}
}

// Capacity returns the number of slots, including the terminator.
func (j *Jar) Capacity() int {
	return j.capacity
}

// Get returns the value published under tag.
func (j *Jar) Get(tag Tag) (uint32, bool) {
	j.mutex.RLock()
	defer j.mutex.RUnlock()

	for _, c := range j.cookies {
		if c.Tag == tag {
			return c.Value, true
		}
	}
	return 0, false
}

// Set publishes value under tag, replacing an existing slot or appending a
// new one. It returns ErrJarFull when no slot is left.
func (j *Jar) Set(tag Tag, value uint32) error {
	if tag == 0 {
		return fmt.Errorf("%w: zero tag", pkg.ErrInvalidParameter)
	}

	j.mutex.Lock()
	defer j.mutex.Unlock()

	for i := range j.cookies {
		if j.cookies[i].Tag == tag {
			j.cookies[i].Value = value
			pkg.LogDebug(pkg.ComponentCookie, "cookie replaced",
				"tag", tag.String(),
				"value", value)
			return nil
		}
	}

	if len(j.cookies)+1 >= j.capacity {
		return fmt.Errorf("%w: %s", pkg.ErrJarFull, tag)
	}
	j.cookies = append(j.cookies, Cookie{Tag: tag, Value: value})
	pkg.LogDebug(pkg.ComponentCookie, "cookie created",
		"tag", tag.String(),
		"value", value)
	return nil
}

// Entries returns a snapshot of the published cookies in slot order.
func (j *Jar) Entries() []Cookie {
	j.mutex.RLock()
	defer j.mutex.RUnlock()

	out := make([]Cookie, len(j.cookies))
	copy(out, j.cookies)
	return out
}
