package pun

import (
	"encoding/binary"
	"fmt"

	"github.com/go-restruct/restruct"

	"github.com/ardnew/softxhdi/pkg"
)

// SectorReader reads whole blocks from a device. It matches the Read method
// of the transport storage backends.
type SectorReader interface {
	Read(lba uint64, blocks uint32, buf []byte) (uint32, error)
}

// DOS MBR layout.
const (
	mbrSignature = 0xAA55
	dosExtended  = 0x05
	dosExtLBA    = 0x0F
	linuxExt     = 0x85
)

type mbrEntry struct {
	Status   uint8
	CHSFirst [3]byte
	Type     uint8
	CHSLast  [3]byte
	LBA      uint32
	Sectors  uint32
}

type mbrSector struct {
	Boot      [446]byte
	Entries   [4]mbrEntry
	Signature uint16
}

// AHDI root sector layout. All fields are big-endian.
const (
	ahdiFlagExists = 0x01
)

type ahdiEntry struct {
	Flag  uint8
	ID    [3]byte
	Start uint32
	Size  uint32
}

type ahdiRoot struct {
	Boot     [0x1C2]byte
	Size     uint32
	Entries  [4]ahdiEntry
	BSLStart uint32
	BSLCount uint32
	Checksum uint16
}

// partition is one volume found on a device, before table assignment.
type partition struct {
	start  uint32
	blocks uint32
	id     PartID
}

// Scan reads the partition table of one device and assigns each primary
// partition to the next free drive slot at or after drv, tagging it with
// tag. The geometry block is filled from the partition's boot sector when it
// holds a FAT12/16 volume. A device whose sector 0 is itself a FAT boot
// sector is assigned as a single volume starting at block 0.
//
// Extended (DOS) and XGM (AHDI) partition chains are not followed.
// Scan returns the number of drives assigned.
func Scan(t *Table, drv int, tag Tag, r SectorReader, blockSize uint32) (int, error) {
	if blockSize < 512 {
		return 0, fmt.Errorf("%w: block size %d", pkg.ErrInvalidParameter, blockSize)
	}
	sector := make([]byte, blockSize)
	if _, err := r.Read(0, 1, sector); err != nil {
		return 0, fmt.Errorf("read root sector: %w", err)
	}

	parts, err := partitions(sector)
	if err != nil {
		return 0, err
	}

	assigned := 0
	for _, p := range parts {
		slot := t.Free(drv)
		if slot < 0 {
			return assigned, pkg.ErrTableFull
		}
		e := Entry{
			Tag:    tag,
			Start:  p.start,
			Blocks: p.blocks,
			PartID: p.id,
		}
		if _, err := r.Read(uint64(p.start), 1, sector); err == nil {
			if bpb, ok := BPBFromBootSector(sector); ok {
				e.BPB = bpb
			}
		} else {
			pkg.LogWarn(pkg.ComponentPUN, "boot sector unreadable",
				"start", p.start,
				"error", err)
		}
		if err := t.Assign(slot, e); err != nil {
			return assigned, err
		}
		assigned++
		drv = slot + 1
	}

	pkg.LogInfo(pkg.ComponentPUN, "device scanned",
		"tag", uint8(tag),
		"partitions", assigned)
	return assigned, nil
}

// partitions decodes the volumes described by a root sector.
func partitions(sector []byte) ([]partition, error) {
	if bpb, ok := BPBFromBootSector(sector); ok {
		var bs fatBootSector
		if err := restruct.Unpack(sector, binary.LittleEndian, &bs); err == nil {
			total := uint32(bs.TotSec16)
			if total == 0 {
				total = bs.TotSec32
			}
			id := TagID("GEM")
			if bpb.BFlags&BPBFlagFAT16 != 0 {
				id = TagID("BGM")
			}
			return []partition{{start: 0, blocks: total, id: id}}, nil
		}
	}

	var mbr mbrSector
	if err := restruct.Unpack(sector, binary.LittleEndian, &mbr); err != nil {
		return nil, fmt.Errorf("decode MBR: %w", err)
	}
	if mbr.Signature == mbrSignature {
		var parts []partition
		for _, pe := range mbr.Entries {
			switch pe.Type {
			case 0, dosExtended, dosExtLBA, linuxExt:
				continue
			}
			if pe.Sectors == 0 {
				continue
			}
			parts = append(parts, partition{
				start:  pe.LBA,
				blocks: pe.Sectors,
				id:     DOSID(pe.Type),
			})
		}
		if len(parts) > 0 {
			return parts, nil
		}
	}

	var root ahdiRoot
	if err := restruct.Unpack(sector, binary.BigEndian, &root); err != nil {
		return nil, fmt.Errorf("decode AHDI root sector: %w", err)
	}
	var parts []partition
	for _, pe := range root.Entries {
		if pe.Flag&ahdiFlagExists == 0 || pe.Size == 0 {
			continue
		}
		id := PartID{pe.ID[0], pe.ID[1], pe.ID[2], 0}
		if !id.IsTag() || id.String() == "XGM" {
			continue
		}
		parts = append(parts, partition{
			start:  pe.Start,
			blocks: pe.Size,
			id:     id,
		})
	}
	if len(parts) == 0 {
		return nil, pkg.ErrNoPartitionTable
	}
	return parts, nil
}
