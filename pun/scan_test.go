package pun

import (
	"encoding/binary"
	"errors"
	"io"
	"testing"

	"github.com/ardnew/softxhdi/pkg"
)

// image is a SectorReader over a byte slice of 512-byte blocks.
type image []byte

func (m image) Read(lba uint64, blocks uint32, buf []byte) (uint32, error) {
	off := lba * 512
	n := uint64(blocks) * 512
	if off+n > uint64(len(m)) {
		return 0, io.EOF
	}
	copy(buf, m[off:off+n])
	return blocks, nil
}

func newImage(blocks int) image {
	return make(image, blocks*512)
}

func TestScan_DOS(t *testing.T) {
	img := newImage(256)
	root := img[:512]
	// Partition 1: FAT12 volume at block 64, 128 blocks.
	pe := root[446:]
	pe[4] = 0x06
	binary.LittleEndian.PutUint32(pe[8:], 64)
	binary.LittleEndian.PutUint32(pe[12:], 128)
	// Partition 2: extended container, skipped.
	pe = root[462:]
	pe[4] = 0x05
	binary.LittleEndian.PutUint32(pe[8:], 192)
	binary.LittleEndian.PutUint32(pe[12:], 32)
	// Partition 3: FAT32 LBA at block 200, 50 blocks.
	pe = root[478:]
	pe[4] = 0x0C
	binary.LittleEndian.PutUint32(pe[8:], 200)
	binary.LittleEndian.PutUint32(pe[12:], 50)
	root[510], root[511] = 0x55, 0xAA

	boot := fat16BootSector()
	binary.LittleEndian.PutUint32(boot[32:], 128)
	binary.LittleEndian.PutUint16(boot[17:], 16)
	binary.LittleEndian.PutUint16(boot[22:], 1)
	boot[13] = 1
	copy(img[64*512:], boot)

	tbl := NewTable()
	tag := MakeTag(FlagUSB, 0)
	n, err := Scan(tbl, 2, tag, img, 512)
	if err != nil {
		t.Fatalf("Scan() error = %v", err)
	}
	if n != 2 {
		t.Fatalf("Scan() = %d, want 2", n)
	}

	c := tbl.Entry(2)
	if c.Tag != tag || c.Start != 64 || c.Blocks != 128 || !c.Mapped {
		t.Errorf("C: = %+v", c)
	}
	if c.PartID != DOSID(0x06) {
		t.Errorf("C: partid = %v, want DOS/06", c.PartID)
	}
	if c.BPB.RecSiz != 512 || c.BPB.ClSiz != 1 {
		t.Errorf("C: BPB = %+v", c.BPB)
	}

	d := tbl.Entry(3)
	if d.Start != 200 || d.Blocks != 50 || d.PartID != DOSID(0x0C) {
		t.Errorf("D: = %+v", d)
	}
	if d.BPB != (BPB{}) {
		t.Errorf("D: BPB = %+v, want zero", d.BPB)
	}
}

func TestScan_AHDI(t *testing.T) {
	img := newImage(64)
	root := img[:512]
	binary.BigEndian.PutUint32(root[0x1C2:], 64)
	entries := []struct {
		flag  byte
		id    string
		start uint32
		size  uint32
	}{
		{0x01, "BGM", 2, 20},
		{0x00, "GEM", 22, 10}, // not marked as existing
		{0x01, "XGM", 32, 16}, // extended chain, skipped
		{0x81, "LNX", 48, 16},
	}
	for i, e := range entries {
		pe := root[0x1C6+i*12:]
		pe[0] = e.flag
		copy(pe[1:4], e.id)
		binary.BigEndian.PutUint32(pe[4:], e.start)
		binary.BigEndian.PutUint32(pe[8:], e.size)
	}

	tbl := NewTable()
	// C: is taken by another driver; scanning continues at D:.
	if err := tbl.Assign(2, Entry{Tag: MakeTag(FlagIDE, 0), Start: 1, Blocks: 1}); err != nil {
		t.Fatal(err)
	}
	tag := MakeTag(FlagUSB, 4)
	n, err := Scan(tbl, 2, tag, img, 512)
	if err != nil {
		t.Fatalf("Scan() error = %v", err)
	}
	if n != 2 {
		t.Fatalf("Scan() = %d, want 2", n)
	}
	if e := tbl.Entry(3); e.PartID.String() != "BGM" || e.Start != 2 || e.Blocks != 20 {
		t.Errorf("D: = %+v", e)
	}
	if e := tbl.Entry(4); e.PartID.String() != "LNX" || e.Start != 48 || e.Tag != tag {
		t.Errorf("E: = %+v", e)
	}
	if got := tbl.Map(FlagUSB); got != 1<<3|1<<4 {
		t.Errorf("Map(USB) = %#x", got)
	}
}

func TestScan_Superfloppy(t *testing.T) {
	img := newImage(128)
	boot := fat16BootSector()
	binary.LittleEndian.PutUint32(boot[32:], 128)
	binary.LittleEndian.PutUint16(boot[17:], 16)
	binary.LittleEndian.PutUint16(boot[22:], 1)
	boot[13] = 1
	copy(img, boot)

	tbl := NewTable()
	n, err := Scan(tbl, 2, MakeTag(FlagUSB, 0), img, 512)
	if err != nil || n != 1 {
		t.Fatalf("Scan() = %d, %v", n, err)
	}
	e := tbl.Entry(2)
	// A legitimately zero partition start is still mapped.
	if e.Start != 0 || !e.Mapped || e.Blocks != 128 {
		t.Errorf("C: = %+v", e)
	}
	if e.PartID.String() != "GEM" {
		t.Errorf("C: partid = %v, want GEM", e.PartID)
	}
}

func TestScan_Errors(t *testing.T) {
	tbl := NewTable()
	tag := MakeTag(FlagUSB, 0)

	if _, err := Scan(tbl, 2, tag, newImage(4), 512); !errors.Is(err, pkg.ErrNoPartitionTable) {
		t.Errorf("blank image error = %v, want %v", err, pkg.ErrNoPartitionTable)
	}
	if _, err := Scan(tbl, 2, tag, image(nil), 512); !errors.Is(err, io.EOF) {
		t.Errorf("empty image error = %v, want %v", err, io.EOF)
	}
	if _, err := Scan(tbl, 2, tag, newImage(4), 256); !errors.Is(err, pkg.ErrInvalidParameter) {
		t.Errorf("small block error = %v, want %v", err, pkg.ErrInvalidParameter)
	}
}
