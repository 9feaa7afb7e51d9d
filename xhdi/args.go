package xhdi

import (
	"encoding/binary"
	"fmt"

	"github.com/go-restruct/restruct"
)

// Argument records of each opcode, in the order the caller pushes them.
// Fields are big-endian and packed on 16-bit boundaries; pointer fields are
// guest addresses where 0 means the result is not wanted.

// XHInqTarget
type inqTargetArgs struct {
	Major       uint16
	Minor       uint16
	BlockSize   uint32 // *ulong
	DeviceFlags uint32 // *ulong
	ProductName uint32 // *char[32]
}

// XHInqTarget2
type inqTarget2Args struct {
	Major       uint16
	Minor       uint16
	BlockSize   uint32 // *ulong
	DeviceFlags uint32 // *ulong
	ProductName uint32 // *char[StringLen]
	StringLen   uint16
}

// XHReserve, XHLock, XHStop, XHEject
type controlArgs struct {
	Major uint16
	Minor uint16
	Do    uint16
	Key   uint16
}

// XHInqDev
type inqDevArgs struct {
	Drv   uint16
	Major uint32 // *ushort
	Minor uint32 // *ushort
	Start uint32 // *ulong
	BPB   uint32 // *BPB
}

// XHInqDev2
type inqDev2Args struct {
	Drv    uint16
	Major  uint32 // *ushort
	Minor  uint32 // *ushort
	Start  uint32 // *ulong
	BPB    uint32 // *BPB
	Blocks uint32 // *ulong
	PartID uint32 // *char[4]
}

// XHInqDriver
type inqDriverArgs struct {
	Dev         uint16
	Name        uint32 // *char[17]
	Version     uint32 // *char[17]
	Company     uint32 // *char[17]
	AHDIVersion uint32 // *ushort
	MaxIPL      uint32 // *ushort
}

// XHNewCookie
type newCookieArgs struct {
	NewCookie uint32
}

// XHReadWrite
type readWriteArgs struct {
	Major  uint16
	Minor  uint16
	RW     uint16
	Sector uint32
	Count  uint16
	Buf    uint32
}

// XHDriverSpecial
type driverSpecialArgs struct {
	Key1      uint32
	Key2      uint32
	SubOpcode uint16
	Data      uint32
}

// XHGetCapacity
type capacityArgs struct {
	Major     uint16
	Minor     uint16
	Blocks    uint32 // *ulong
	BlockSize uint32 // *ulong
}

// XHMediumChanged, XHReaccess
type deviceArgs struct {
	Major uint16
	Minor uint16
}

// XHMiNTInfo
type mintInfoArgs struct {
	Data uint32
}

// XHDOSLimits
type dosLimitsArgs struct {
	Which uint16
	Limit uint32
}

// XHLastAccess
type lastAccessArgs struct {
	Major uint16
	Minor uint16
	MS    uint32 // *ulong
}

// unpack decodes the argument record v from args. Missing trailing bytes
// read as zero; surplus bytes are ignored.
func unpack(args []byte, v any) error {
	if size := binary.Size(v); len(args) < size {
		padded := make([]byte, size)
		copy(padded, args)
		args = padded
	}
	if err := restruct.Unpack(args, binary.BigEndian, v); err != nil {
		return fmt.Errorf("decode %T: %w", v, err)
	}
	return nil
}

// pack encodes the argument record v. A nil record encodes as no bytes.
func pack(v any) []byte {
	if v == nil {
		return nil
	}
	b, err := restruct.Pack(binary.BigEndian, v)
	if err != nil {
		return nil
	}
	return b
}
