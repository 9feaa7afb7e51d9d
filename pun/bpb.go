package pun

import (
	"encoding/binary"
	"fmt"

	"github.com/go-restruct/restruct"

	"github.com/ardnew/softxhdi/pkg"
)

// BPBSize is the size in bytes of a packed BPB.
const BPBSize = 18

// BPB is the GEMDOS BIOS parameter block. Fields are 16-bit big-endian on
// the wire; the driver copies it verbatim and never interprets it.
type BPB struct {
	RecSiz uint16 // Bytes per sector
	ClSiz  uint16 // Sectors per cluster
	ClSizB uint16 // Bytes per cluster
	RDLen  uint16 // Root directory length in sectors
	FSiz   uint16 // FAT size in sectors
	FATRec uint16 // First sector of the second FAT
	DatRec uint16 // First data sector
	NumCl  uint16 // Number of data clusters
	BFlags uint16 // Bit 0 set for 16-bit FAT
}

// Pack encodes the BPB in guest byte order.
func (b BPB) Pack() ([]byte, error) {
	return restruct.Pack(binary.BigEndian, &b)
}

// UnpackBPB decodes a BPB packed in guest byte order.
func UnpackBPB(raw []byte) (BPB, error) {
	var b BPB
	if len(raw) < BPBSize {
		return b, fmt.Errorf("%w: BPB needs %d bytes", pkg.ErrBufferTooSmall, BPBSize)
	}
	err := restruct.Unpack(raw, binary.BigEndian, &b)
	return b, err
}

// BPBFlagFAT16 marks a 16-bit FAT in BPB.BFlags.
const BPBFlagFAT16 = 0x0001

// fatBootSector is the leading part of a FAT12/16 boot sector. All fields
// are little-endian on disk.
type fatBootSector struct {
	JmpBoot     [3]byte
	OEMName     [8]byte
	BytsPerSec  uint16
	SecPerClus  uint8
	ResvdSecCnt uint16
	NumFATs     uint8
	RootEntCnt  uint16
	TotSec16    uint16
	Media       uint8
	FATSz16     uint16
	SecPerTrk   uint16
	NumHeads    uint16
	HiddSec     uint32
	TotSec32    uint32
}

// BPBFromBootSector derives the GEMDOS BPB of a FAT12/16 volume from its
// boot sector. It returns false for anything else, including FAT32, whose
// geometry does not fit 16-bit BPB fields.
func BPBFromBootSector(sector []byte) (BPB, bool) {
	var bs fatBootSector
	if len(sector) < 512 {
		return BPB{}, false
	}
	if err := restruct.Unpack(sector, binary.LittleEndian, &bs); err != nil {
		return BPB{}, false
	}
	switch bs.BytsPerSec {
	case 512, 1024, 2048, 4096, 8192:
	default:
		return BPB{}, false
	}
	if bs.SecPerClus == 0 || bs.SecPerClus&(bs.SecPerClus-1) != 0 {
		return BPB{}, false
	}
	if bs.NumFATs == 0 || bs.FATSz16 == 0 {
		return BPB{}, false
	}

	total := uint32(bs.TotSec16)
	if total == 0 {
		total = bs.TotSec32
	}

	rdlen := (uint32(bs.RootEntCnt)*32 + uint32(bs.BytsPerSec) - 1) / uint32(bs.BytsPerSec)
	fatrec := uint32(bs.ResvdSecCnt) + uint32(bs.FATSz16)
	datrec := uint32(bs.ResvdSecCnt) + uint32(bs.NumFATs)*uint32(bs.FATSz16) + rdlen
	if datrec >= total {
		return BPB{}, false
	}
	numcl := (total - datrec) / uint32(bs.SecPerClus)
	if numcl > 0xFFFF {
		return BPB{}, false
	}

	b := BPB{
		RecSiz: bs.BytsPerSec,
		ClSiz:  uint16(bs.SecPerClus),
		ClSizB: bs.BytsPerSec * uint16(bs.SecPerClus),
		RDLen:  uint16(rdlen),
		FSiz:   bs.FATSz16,
		FATRec: uint16(fatrec),
		DatRec: uint16(datrec),
		NumCl:  uint16(numcl),
	}
	// 4085 clusters is the FAT12/FAT16 boundary.
	if numcl >= 4085 {
		b.BFlags |= BPBFlagFAT16
	}
	return b, true
}

// PartID is the 4-byte partition identifier reported by XHInqDev2: either a
// NUL-terminated 3-character tag such as "BGM", or "\0D" followed by a DOS
// partition type byte.
type PartID [4]byte

// TagID builds a PartID from a 3-character tag.
func TagID(tag string) PartID {
	var id PartID
	copy(id[:3], tag)
	return id
}

// DOSID builds a PartID for a DOS partition of the given type.
func DOSID(ptype uint8) PartID {
	return PartID{0, 'D', ptype, 0}
}

// IsTag reports whether the identifier is a printable 3-character tag.
func (p PartID) IsTag() bool {
	return p[0] >= 0x20 && p[0] < 0x7F
}

// DOSType returns the raw DOS partition type of a non-tag identifier.
func (p PartID) DOSType() uint8 {
	if p.IsTag() {
		return 0
	}
	return p[2]
}

// String returns the tag, or the DOS type in hex.
func (p PartID) String() string {
	if p.IsTag() {
		n := 0
		for n < 3 && p[n] != 0 {
			n++
		}
		return string(p[:n])
	}
	const hex = "0123456789ABCDEF"
	t := p.DOSType()
	return "DOS/" + string([]byte{hex[t>>4], hex[t&0x0F]})
}
