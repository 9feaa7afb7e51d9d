package xhdi

import (
	"fmt"

	"github.com/ardnew/softxhdi/mem"
	"github.com/ardnew/softxhdi/pkg"
	"github.com/ardnew/softxhdi/pun"
)

// Target is the result of XHInqTarget and XHInqTarget2.
type Target struct {
	BlockSize   uint32
	Flags       uint32
	ProductName string
}

// Removable reports whether the target holds removable media.
func (t Target) Removable() bool {
	return t.Flags&TargetRemovable != 0
}

// Device is the result of XHInqDev and XHInqDev2.
type Device struct {
	Major  uint16
	Minor  uint16
	Start  uint32
	BPB    pun.BPB
	Blocks uint32
	PartID pun.PartID
}

// DriverInfo is the result of XHInqDriver.
type DriverInfo struct {
	Name        string
	Version     string
	Company     string
	AHDIVersion uint16
	MaxIPL      uint16
}

// Client issues typed XHDI calls against a Handler. Output parameters and
// transfer buffers are allocated in RAM for the duration of each call, so a
// Client must not be shared between goroutines that use the same RAM.
type Client struct {
	handler Handler
	ram     *mem.RAM
}

// NewClient creates a client calling h with scratch space from ram.
func NewClient(h Handler, ram *mem.RAM) *Client {
	return &Client{handler: h, ram: ram}
}

func (c *Client) call(op Opcode, args any) error {
	ret := pkg.Status(c.handler.Call(op, pack(args)))
	if err := ret.Error(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// scratch allocates one zeroed block per size.
func (c *Client) scratch(sizes ...int) ([]uint32, error) {
	addrs := make([]uint32, len(sizes))
	for i, n := range sizes {
		addr, err := c.ram.Alloc(n)
		if err != nil {
			return nil, err
		}
		addrs[i] = addr
	}
	return addrs, nil
}

// Version returns the negotiated protocol version of the chain.
func (c *Client) Version() uint16 {
	return uint16(c.handler.Call(OpGetVersion, nil))
}

// DrvMap returns the bitmap of drives served by the chain.
func (c *Client) DrvMap() uint32 {
	return uint32(c.handler.Call(OpDrvMap, nil))
}

// InqTarget queries the target at major.minor with the fixed name buffer.
func (c *Client) InqTarget(major, minor uint16) (Target, error) {
	return c.inqTarget(OpInqTarget, major, minor, StringLen)
}

// InqTarget2 queries the target at major.minor with a name buffer of
// stringLen bytes.
func (c *Client) InqTarget2(major, minor, stringLen uint16) (Target, error) {
	return c.inqTarget(OpInqTarget2, major, minor, stringLen)
}

func (c *Client) inqTarget(op Opcode, major, minor, stringLen uint16) (Target, error) {
	mark := c.ram.Mark()
	defer c.ram.Release(mark)

	p, err := c.scratch(4, 4, int(stringLen)+1)
	if err != nil {
		return Target{}, err
	}
	var args any = &inqTarget2Args{major, minor, p[0], p[1], p[2], stringLen}
	if op == OpInqTarget {
		args = &inqTargetArgs{major, minor, p[0], p[1], p[2]}
	}
	if err := c.call(op, args); err != nil {
		return Target{}, err
	}

	var t Target
	t.BlockSize, _ = mem.ReadU32(c.ram, p[0])
	t.Flags, _ = mem.ReadU32(c.ram, p[1])
	t.ProductName, _ = mem.ReadString(c.ram, p[2], int(stringLen))
	return t, nil
}

// InqDev queries drive drv.
func (c *Client) InqDev(drv int) (Device, error) {
	return c.inqDev(OpInqDev, drv)
}

// InqDev2 queries drive drv including its size and partition id.
func (c *Client) InqDev2(drv int) (Device, error) {
	return c.inqDev(OpInqDev2, drv)
}

func (c *Client) inqDev(op Opcode, drv int) (Device, error) {
	mark := c.ram.Mark()
	defer c.ram.Release(mark)

	p, err := c.scratch(2, 2, 4, pun.BPBSize, 4, 4)
	if err != nil {
		return Device{}, err
	}
	var args any = &inqDev2Args{uint16(drv), p[0], p[1], p[2], p[3], p[4], p[5]}
	if op == OpInqDev {
		args = &inqDevArgs{uint16(drv), p[0], p[1], p[2], p[3]}
	}
	callErr := c.call(op, args)

	var dev Device
	dev.Major, _ = mem.ReadU16(c.ram, p[0])
	dev.Minor, _ = mem.ReadU16(c.ram, p[1])
	if callErr != nil {
		return dev, callErr
	}
	dev.Start, _ = mem.ReadU32(c.ram, p[2])
	if raw, err := c.ram.Bytes(p[3], pun.BPBSize); err == nil {
		dev.BPB, _ = pun.UnpackBPB(raw)
	}
	if op == OpInqDev2 {
		dev.Blocks, _ = mem.ReadU32(c.ram, p[4])
		if raw, err := c.ram.Bytes(p[5], len(dev.PartID)); err == nil {
			copy(dev.PartID[:], raw)
		}
	}
	return dev, nil
}

// InqDriver identifies the driver serving drive drv.
func (c *Client) InqDriver(drv int) (DriverInfo, error) {
	mark := c.ram.Mark()
	defer c.ram.Release(mark)

	p, err := c.scratch(InfoLen, InfoLen, InfoLen, 2, 2)
	if err != nil {
		return DriverInfo{}, err
	}
	if err := c.call(OpInqDriver, &inqDriverArgs{uint16(drv), p[0], p[1], p[2], p[3], p[4]}); err != nil {
		return DriverInfo{}, err
	}

	var info DriverInfo
	info.Name, _ = mem.ReadString(c.ram, p[0], InfoLen)
	info.Version, _ = mem.ReadString(c.ram, p[1], InfoLen)
	info.Company, _ = mem.ReadString(c.ram, p[2], InfoLen)
	info.AHDIVersion, _ = mem.ReadU16(c.ram, p[3])
	info.MaxIPL, _ = mem.ReadU16(c.ram, p[4])
	return info, nil
}

// Capacity returns the block count and block size of major.minor.
func (c *Client) Capacity(major, minor uint16) (blocks, blockSize uint32, err error) {
	mark := c.ram.Mark()
	defer c.ram.Release(mark)

	p, err := c.scratch(4, 4)
	if err != nil {
		return 0, 0, err
	}
	if err := c.call(OpGetCapacity, &capacityArgs{major, minor, p[0], p[1]}); err != nil {
		return 0, 0, err
	}
	blocks, _ = mem.ReadU32(c.ram, p[0])
	blockSize, _ = mem.ReadU32(c.ram, p[1])
	return blocks, blockSize, nil
}

// Read reads count blocks starting at sector into p, which must hold
// exactly count blocks of the device's block size.
func (c *Client) Read(major, minor uint16, sector uint32, count uint16, p []byte) error {
	return c.readWrite(RWRead, major, minor, sector, count, p)
}

// Write writes count blocks from p starting at sector.
func (c *Client) Write(major, minor uint16, sector uint32, count uint16, p []byte) error {
	return c.readWrite(RWWrite, major, minor, sector, count, p)
}

func (c *Client) readWrite(rw, major, minor uint16, sector uint32, count uint16, p []byte) error {
	mark := c.ram.Mark()
	defer c.ram.Release(mark)

	buf, err := c.ram.Alloc(len(p))
	if err != nil {
		return err
	}
	if rw&RWWrite != 0 {
		if err := mem.WriteBytes(c.ram, buf, p); err != nil {
			return err
		}
	}
	if err := c.call(OpReadWrite, &readWriteArgs{major, minor, rw, sector, count, buf}); err != nil {
		return err
	}
	if rw&RWWrite == 0 {
		view, err := c.ram.Bytes(buf, len(p))
		if err != nil {
			return err
		}
		copy(p, view)
	}
	return nil
}

// Eject ejects (eject true) or reinserts the medium of major.minor.
func (c *Client) Eject(major, minor uint16, eject bool) error {
	return c.call(OpEject, &controlArgs{major, minor, boolWord(eject), 0})
}

// Reserve reserves or releases major.minor under key.
func (c *Client) Reserve(major, minor uint16, reserve bool, key uint16) error {
	return c.call(OpReserve, &controlArgs{major, minor, boolWord(reserve), key})
}

// Lock locks or unlocks the medium of major.minor.
func (c *Client) Lock(major, minor uint16, lock bool, key uint16) error {
	return c.call(OpLock, &controlArgs{major, minor, boolWord(lock), key})
}

// Stop stops or starts major.minor.
func (c *Client) Stop(major, minor uint16, stop bool, key uint16) error {
	return c.call(OpStop, &controlArgs{major, minor, boolWord(stop), key})
}

// MediumChanged signals a medium change on major.minor.
func (c *Client) MediumChanged(major, minor uint16) error {
	return c.call(OpMediumChanged, &deviceArgs{major, minor})
}

// Reaccess asks the driver to reread the medium of major.minor.
func (c *Client) Reaccess(major, minor uint16) error {
	return c.call(OpReaccess, &deviceArgs{major, minor})
}

// LastAccess returns the milliseconds since major.minor was last accessed.
func (c *Client) LastAccess(major, minor uint16) (uint32, error) {
	mark := c.ram.Mark()
	defer c.ram.Release(mark)

	p, err := c.scratch(4)
	if err != nil {
		return 0, err
	}
	if err := c.call(OpLastAccess, &lastAccessArgs{major, minor, p[0]}); err != nil {
		return 0, err
	}
	ms, _ := mem.ReadU32(c.ram, p[0])
	return ms, nil
}

// DriverSpecial issues a vendor specific call.
func (c *Client) DriverSpecial(key1, key2 uint32, subOpcode uint16, data uint32) error {
	return c.call(OpDriverSpecial, &driverSpecialArgs{key1, key2, subOpcode, data})
}

// MiNTInfo passes kernel information to the drivers.
func (c *Client) MiNTInfo(data uint32) error {
	return c.call(OpMiNTInfo, &mintInfoArgs{data})
}

// DOSLimits queries or sets a GEMDOS limit.
func (c *Client) DOSLimits(which uint16, limit uint32) error {
	return c.call(OpDOSLimits, &dosLimitsArgs{which, limit})
}

// NewCookie appends the handler at addr to the end of the chain.
func (c *Client) NewCookie(addr uint32) error {
	return c.call(OpNewCookie, &newCookieArgs{addr})
}

func boolWord(b bool) uint16 {
	if b {
		return 1
	}
	return 0
}
