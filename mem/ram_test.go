package mem

import (
	"errors"
	"testing"

	"github.com/ardnew/softxhdi/pkg"
)

func TestRAM_Bytes(t *testing.T) {
	r := NewRAM(0x1000, 64)

	tests := []struct {
		name    string
		addr    uint32
		n       int
		wantErr bool
	}{
		{"first byte", 0x1000, 1, false},
		{"whole range", 0x1000, 64, false},
		{"last byte", 0x103F, 1, false},
		{"null", 0, 4, true},
		{"below base", 0x0FFE, 4, true},
		{"past end", 0x103E, 4, true},
		{"negative", 0x1000, -1, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, err := r.Bytes(tt.addr, tt.n)
			if tt.wantErr {
				if !errors.Is(err, pkg.ErrBadAddress) {
					t.Errorf("Bytes(%#x, %d) error = %v, want %v", tt.addr, tt.n, err, pkg.ErrBadAddress)
				}
				return
			}
			if err != nil {
				t.Fatalf("Bytes(%#x, %d) error = %v", tt.addr, tt.n, err)
			}
			if len(b) != tt.n || cap(b) != tt.n {
				t.Errorf("Bytes(%#x, %d) len=%d cap=%d", tt.addr, tt.n, len(b), cap(b))
			}
		})
	}
}

func TestRAM_ZeroBase(t *testing.T) {
	r := NewRAM(0, 16)
	if r.Base() == 0 {
		t.Fatal("Base() = 0, want non-zero")
	}
	addr, err := r.Alloc(4)
	if err != nil {
		t.Fatalf("Alloc() error = %v", err)
	}
	if addr == 0 {
		t.Error("Alloc() returned NULL")
	}
}

func TestRAM_AllocRelease(t *testing.T) {
	r := NewRAM(0x100, 16)

	mark := r.Mark()
	a, err := r.Alloc(3)
	if err != nil {
		t.Fatalf("Alloc(3) error = %v", err)
	}
	b, err := r.Alloc(4)
	if err != nil {
		t.Fatalf("Alloc(4) error = %v", err)
	}
	if a != 0x100 || b != 0x104 {
		t.Errorf("Alloc addresses = %#x, %#x; want 0x100, 0x104", a, b)
	}

	if _, err := r.Alloc(16); !errors.Is(err, pkg.ErrOutOfMemory) {
		t.Errorf("Alloc(16) error = %v, want %v", err, pkg.ErrOutOfMemory)
	}

	if err := WriteU32(r, b, 0xDEADBEEF); err != nil {
		t.Fatal(err)
	}
	r.Release(mark)
	if got := r.Mark(); got != mark {
		t.Errorf("Mark() after Release = %#x, want %#x", got, mark)
	}

	// Reallocation hands out zeroed memory.
	c, err := r.Alloc(8)
	if err != nil {
		t.Fatal(err)
	}
	v, _ := ReadU32(r, c+4)
	if v != 0 {
		t.Errorf("reallocated memory = %#x, want 0", v)
	}
}

func TestReadWriteHelpers(t *testing.T) {
	r := NewRAM(0x2000, 32)

	if err := WriteU16(r, 0x2000, 0x1234); err != nil {
		t.Fatal(err)
	}
	if err := WriteU32(r, 0x2002, 0x89ABCDEF); err != nil {
		t.Fatal(err)
	}
	raw, _ := r.Bytes(0x2000, 6)
	want := []byte{0x12, 0x34, 0x89, 0xAB, 0xCD, 0xEF}
	for i := range want {
		if raw[i] != want[i] {
			t.Fatalf("big-endian layout = % x, want % x", raw, want)
		}
	}

	if v, _ := ReadU16(r, 0x2000); v != 0x1234 {
		t.Errorf("ReadU16() = %#x, want 0x1234", v)
	}
	if v, _ := ReadU32(r, 0x2002); v != 0x89ABCDEF {
		t.Errorf("ReadU32() = %#x, want 0x89abcdef", v)
	}

	// NULL destinations are skipped silently.
	if err := WriteU32(r, 0, 1); err != nil {
		t.Errorf("WriteU32(NULL) error = %v", err)
	}
	if err := WriteBytes(r, 0, []byte{1}); err != nil {
		t.Errorf("WriteBytes(NULL) error = %v", err)
	}
}

func TestStrings(t *testing.T) {
	r := NewRAM(0x3000, 32)

	if err := WriteString(r, 0x3000, "FreeMiNT USB", 8); err != nil {
		t.Fatal(err)
	}
	got, err := ReadString(r, 0x3000, 8)
	if err != nil {
		t.Fatal(err)
	}
	if got != "FreeMiN" {
		t.Errorf("truncated string = %q, want %q", got, "FreeMiN")
	}

	if err := WriteString(r, 0x3010, "USB", 17); err != nil {
		t.Fatal(err)
	}
	if got, _ := ReadString(r, 0x3010, 17); got != "USB" {
		t.Errorf("ReadString() = %q, want %q", got, "USB")
	}
}
