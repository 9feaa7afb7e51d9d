package pun

import (
	"fmt"

	"github.com/ardnew/softxhdi/pkg"
)

// MaxDrives is the number of drive letters addressable through the table.
const MaxDrives = 32

// DefaultVersion is the AHDI version advertised for a freshly built table.
const DefaultVersion = 0x0300

// Ownership tag bits. The SCSI and IDE class flags live inside the unit
// field, splitting unit numbers 0-7/8-15/16-23 between ACSI, SCSI and IDE.
const (
	FlagDevice    = 0x1F // Unit number
	FlagSCSI      = 0x08 // Drive belongs to a SCSI driver
	FlagIDE       = 0x10 // Drive belongs to an IDE driver
	FlagUSB       = 0x20 // Drive belongs to a USB mass-storage driver
	FlagRemovable = 0x40 // Removable medium
	FlagInvalid   = 0x80 // Slot is not assigned
)

// Tag is the per-drive ownership tag: a class flag, the bus device number
// and the validity bit.
type Tag uint8

// MakeTag builds a valid tag for bus device dev owned by class.
// Extra bits in class (FlagRemovable) are kept.
func MakeTag(class uint8, dev int) Tag {
	if ClassOf(uint16(class)) == FlagUSB {
		dev &= FlagDevice
	} else {
		dev &= 0x07
	}
	return Tag(class&^FlagInvalid) | Tag(dev)
}

// ClassOf returns the driver class encoded in a major device number or
// tag: FlagUSB, FlagIDE, FlagSCSI, or 0 for ACSI.
func ClassOf(major uint16) uint8 {
	switch {
	case major&FlagUSB != 0:
		return FlagUSB
	case major&FlagIDE != 0:
		return FlagIDE
	case major&FlagSCSI != 0:
		return FlagSCSI
	default:
		return 0
	}
}

// BusDevice returns the device number relative to the bus of major.
func BusDevice(major uint16) int {
	if ClassOf(major) == FlagUSB {
		return int(major & FlagDevice)
	}
	return int(major & 0x07)
}

// Valid reports whether the tag marks an assigned slot.
func (t Tag) Valid() bool {
	return t != 0 && t&FlagInvalid == 0
}

// Unit returns the unit number, including any SCSI/IDE class bits.
func (t Tag) Unit() int {
	return int(t & FlagDevice)
}

// Class returns the driver class of the tag.
func (t Tag) Class() uint8 {
	return ClassOf(uint16(t))
}

// Major returns the major device number reported to XHDI callers.
func (t Tag) Major() uint16 {
	return uint16(t) & (FlagDevice | FlagUSB)
}

// Entry is one drive letter of the device table.
type Entry struct {
	Tag    Tag    // Ownership tag
	Start  uint32 // First block of the partition
	Mapped bool   // Geometry book-keeping has finished
	Blocks uint32 // Addressable blocks in the partition
	BPB    BPB    // Geometry block, copied verbatim on inquiry
	PartID PartID // Partition type identifier
}

// Table is the device table (PUN table) consumed by the XHDI driver. It is
// populated once before the driver is installed and is read-only afterwards.
type Table struct {
	Version uint16
	entries [MaxDrives]Entry
}

// NewTable creates an empty table advertising DefaultVersion.
func NewTable() *Table {
	return &Table{Version: DefaultVersion}
}

// Entry returns a copy of drive slot drv. Indices outside [0, MaxDrives)
// return an unassigned entry.
func (t *Table) Entry(drv int) Entry {
	if drv < 0 || drv >= MaxDrives {
		return Entry{}
	}
	return t.entries[drv]
}

// Owned reports whether drive slot drv is assigned and carries class.
func (t *Table) Owned(drv int, class uint8) bool {
	e := t.Entry(drv)
	return e.Tag.Valid() && e.Tag.Class() == class
}

// Map reports the drive bitmap of every slot owned by class.
func (t *Table) Map(class uint8) uint32 {
	var bits uint32
	for drv := 0; drv < MaxDrives; drv++ {
		if t.Owned(drv, class) {
			bits |= 1 << drv
		}
	}
	return bits
}

// Assign records a fully mapped partition in drive slot drv.
func (t *Table) Assign(drv int, e Entry) error {
	if drv < 0 || drv >= MaxDrives {
		return fmt.Errorf("%w: drive %d", pkg.ErrInvalidParameter, drv)
	}
	if !e.Tag.Valid() {
		return fmt.Errorf("%w: tag %#02x", pkg.ErrInvalidParameter, uint8(e.Tag))
	}
	e.Mapped = true
	t.entries[drv] = e
	pkg.LogDebug(pkg.ComponentPUN, "drive assigned",
		"drive", DriveLetter(drv),
		"tag", uint8(e.Tag),
		"start", e.Start,
		"blocks", e.Blocks)
	return nil
}

// Reserve claims drive slot drv for tag before its geometry is known.
// Inquiries on the slot answer busy until Assign completes it.
func (t *Table) Reserve(drv int, tag Tag) error {
	if drv < 0 || drv >= MaxDrives {
		return fmt.Errorf("%w: drive %d", pkg.ErrInvalidParameter, drv)
	}
	if !tag.Valid() {
		return fmt.Errorf("%w: tag %#02x", pkg.ErrInvalidParameter, uint8(tag))
	}
	t.entries[drv] = Entry{Tag: tag}
	return nil
}

// Free returns the first unassigned slot at or after drv, or -1.
func (t *Table) Free(drv int) int {
	for ; drv >= 0 && drv < MaxDrives; drv++ {
		if !t.entries[drv].Tag.Valid() {
			return drv
		}
	}
	return -1
}

// DriveLetter returns the letter name of drive index drv ("C:" for 2).
// Indices past Z use the digits 1..6 as TOS does.
func DriveLetter(drv int) string {
	switch {
	case drv >= 0 && drv < 26:
		return string(rune('A'+drv)) + ":"
	case drv >= 26 && drv < MaxDrives:
		return string(rune('1'+drv-26)) + ":"
	default:
		return "?:"
	}
}

// ParseDrive maps a drive letter ("C", "c:", "1") to its index.
func ParseDrive(s string) (int, error) {
	if len(s) == 2 && s[1] == ':' {
		s = s[:1]
	}
	if len(s) != 1 {
		return 0, fmt.Errorf("%w: drive %q", pkg.ErrInvalidParameter, s)
	}
	c := s[0]
	switch {
	case c >= 'A' && c <= 'Z':
		return int(c - 'A'), nil
	case c >= 'a' && c <= 'z':
		return int(c - 'a'), nil
	case c >= '1' && c <= '6':
		return int(c-'1') + 26, nil
	}
	return 0, fmt.Errorf("%w: drive %q", pkg.ErrInvalidParameter, s)
}
