package xhdi

import (
	"github.com/ardnew/softxhdi/mem"
	"github.com/ardnew/softxhdi/pkg"
	"github.com/ardnew/softxhdi/pun"
)

const (
	statusOK       = int32(pkg.StatusOK)
	statusError    = int32(pkg.StatusError)
	statusBusy     = int32(pkg.StatusBusy)
	statusNoDevice = int32(pkg.StatusNoDevice)
	statusNoSys    = int32(pkg.StatusNoSys)
)

// getVersion reports the lowest protocol version along the chain.
func (d *Driver) getVersion() int32 {
	version := uint16(Version)
	if next := d.Next(); next != nil {
		if v := uint16(next.Call(OpGetVersion, nil)); v < version {
			version = v
		}
	}
	return int32(version)
}

// drvMap reports the drives owned anywhere along the chain.
func (d *Driver) drvMap() int32 {
	bits := d.table.Map(d.class)
	if next := d.Next(); next != nil {
		// A handler that does not know the call contributes no drives.
		if ret := next.Call(OpDrvMap, nil); !pkg.Status(ret).Unhandled() {
			bits |= uint32(ret)
		}
	}
	return int32(bits)
}

// newCookie appends h to the end of the chain.
func (d *Driver) newCookie(a *newCookieArgs) int32 {
	if next := d.Next(); next != nil {
		return next.Call(OpNewCookie, pack(a))
	}

	h, ok := d.vectors.Resolve(a.NewCookie)
	if !ok {
		pkg.LogWarn(pkg.ComponentXHDI, "new cookie is not an XHDI handler",
			"address", a.NewCookie)
		return statusError
	}
	if d.reaches(h) {
		pkg.LogWarn(pkg.ComponentXHDI, "new cookie is already in the chain",
			"address", a.NewCookie)
		return statusError
	}
	d.SetNext(h)
	pkg.LogInfo(pkg.ComponentXHDI, "handler chained", "address", a.NewCookie)
	return statusOK
}

// reaches reports whether following h and its next links leads back to d.
// Handlers other than *Driver end the walk.
func (d *Driver) reaches(h Handler) bool {
	for h != nil {
		drv, ok := h.(*Driver)
		if !ok {
			return false
		}
		if drv == d {
			return true
		}
		h = drv.Next()
	}
	return false
}

func (d *Driver) inqDev(a *inqDevArgs) int32 {
	if ret, ok := d.forward(OpInqDev, a); ok {
		return ret
	}
	return d.inquireDevice(a.Drv, a.Major, a.Minor, a.Start, a.BPB, 0, 0)
}

func (d *Driver) inqDev2(a *inqDev2Args) int32 {
	if ret, ok := d.forward(OpInqDev2, a); ok {
		return ret
	}
	return d.inquireDevice(a.Drv, a.Major, a.Minor, a.Start, a.BPB, a.Blocks, a.PartID)
}

// inquireDevice fills the geometry of drive drv into the given outputs.
func (d *Driver) inquireDevice(drv uint16, major, minor, start, bpb, blocks, partid uint32) int32 {
	if !d.ownsDrive(drv) {
		return statusNoDevice
	}
	e := d.table.Entry(int(drv))

	if mem.WriteU16(d.memory, major, e.Tag.Major()) != nil ||
		mem.WriteU16(d.memory, minor, 0) != nil ||
		mem.WriteU16(d.memory, bpb, 0) != nil {
		return statusError
	}
	if !e.Mapped {
		return statusBusy
	}

	raw, err := e.BPB.Pack()
	if err != nil {
		return statusError
	}
	if mem.WriteU32(d.memory, start, e.Start) != nil ||
		mem.WriteBytes(d.memory, bpb, raw) != nil ||
		mem.WriteU32(d.memory, blocks, e.Blocks) != nil ||
		mem.WriteBytes(d.memory, partid, e.PartID[:]) != nil {
		return statusError
	}

	pkg.LogDebug(pkg.ComponentXHDI, "device inquiry",
		"drive", pun.DriveLetter(int(drv)),
		"major", e.Tag.Major(),
		"start", e.Start,
		"blocks", e.Blocks,
		"partid", e.PartID)
	return statusOK
}

// control answers XHReserve, XHLock and XHStop. None is supported.
func (d *Driver) control(op Opcode, a *controlArgs) int32 {
	if ret, ok := d.forward(op, a); ok {
		return ret
	}
	if !d.owns(a.Major) {
		return statusNoDevice
	}
	return statusNoSys
}

func (d *Driver) eject(a *controlArgs) int32 {
	if ret, ok := d.forward(OpEject, a); ok {
		return ret
	}
	if !d.owns(a.Major) {
		return statusNoDevice
	}
	if a.Do != 0 {
		d.transport.Eject(pun.BusDevice(a.Major))
	}
	return statusOK
}

func (d *Driver) inqDriver(a *inqDriverArgs) int32 {
	if ret, ok := d.forward(OpInqDriver, a); ok {
		return ret
	}
	if !d.ownsDrive(a.Dev) {
		return statusNoDevice
	}

	if mem.WriteString(d.memory, a.Name, d.name, InfoLen) != nil ||
		mem.WriteString(d.memory, a.Version, d.version, InfoLen) != nil ||
		mem.WriteString(d.memory, a.Company, d.company, InfoLen) != nil ||
		mem.WriteU16(d.memory, a.AHDIVersion, d.table.Version) != nil ||
		mem.WriteU16(d.memory, a.MaxIPL, MaxIPL) != nil {
		return statusError
	}
	return statusOK
}

// unsupported answers calls that carry no device address.
func (d *Driver) unsupported(op Opcode, a any) int32 {
	if ret, ok := d.forward(op, a); ok {
		return ret
	}
	return statusNoSys
}

// deviceUnsupported answers device calls the transport cannot serve.
func (d *Driver) deviceUnsupported(op Opcode, a any, major uint16) int32 {
	if ret, ok := d.forward(op, a); ok {
		return ret
	}
	if !d.owns(major) {
		return statusNoDevice
	}
	return statusNoSys
}

func (d *Driver) inqTarget(a *inqTargetArgs) int32 {
	if ret, ok := d.forward(OpInqTarget, a); ok {
		return ret
	}
	return d.inquireTarget(a.Major, a.BlockSize, a.DeviceFlags, a.ProductName, StringLen)
}

func (d *Driver) inqTarget2(a *inqTarget2Args) int32 {
	if ret, ok := d.forward(OpInqTarget2, a); ok {
		return ret
	}
	return d.inquireTarget(a.Major, a.BlockSize, a.DeviceFlags, a.ProductName, a.StringLen)
}

func (d *Driver) inquireTarget(major uint16, blockSize, deviceFlags, productName uint32, stringLen uint16) int32 {
	if !d.owns(major) {
		return statusNoDevice
	}
	desc := d.descriptor(major)

	size := desc.BlockSize
	if size == 0 {
		size = BlockSize
	}
	var flags uint32
	if desc.Removable {
		flags |= TargetRemovable
	}

	if mem.WriteU32(d.memory, blockSize, size) != nil ||
		mem.WriteU32(d.memory, deviceFlags, flags) != nil ||
		mem.WriteString(d.memory, productName, desc.Vendor+" "+desc.Product, int(stringLen)) != nil {
		return statusError
	}
	return statusOK
}

func (d *Driver) getCapacity(a *capacityArgs) int32 {
	if ret, ok := d.forward(OpGetCapacity, a); ok {
		return ret
	}
	if !d.owns(a.Major) {
		return statusNoDevice
	}
	desc := d.descriptor(a.Major)

	blocks := uint32(desc.Blocks)
	if desc.Blocks > uint64(^uint32(0)) {
		blocks = ^uint32(0)
	}
	if mem.WriteU32(d.memory, a.Blocks, blocks) != nil ||
		mem.WriteU32(d.memory, a.BlockSize, desc.BlockSize) != nil {
		return statusError
	}
	return statusOK
}

// readWrite transfers count blocks between the device and guest memory,
// handing the transport a view of the caller's buffer.
func (d *Driver) readWrite(a *readWriteArgs) int32 {
	if ret, ok := d.forward(OpReadWrite, a); ok {
		return ret
	}
	if !d.owns(a.Major) {
		return statusNoDevice
	}
	if a.Minor != 0 {
		return statusNoDevice
	}
	if a.Count == 0 {
		return statusError
	}

	dev := pun.BusDevice(a.Major)
	size := d.descriptor(a.Major).BlockSize
	if size == 0 {
		size = BlockSize
	}
	buf, err := d.memory.Bytes(a.Buf, int(a.Count)*int(size))
	if err != nil {
		pkg.LogWarn(pkg.ComponentXHDI, "bad transfer buffer",
			"buf", a.Buf, "count", a.Count, "error", err)
		return statusError
	}

	var n uint32
	if a.RW&RWWrite != 0 {
		n, err = d.transport.Write(dev, a.Sector, a.Count, buf)
	} else {
		n, err = d.transport.Read(dev, a.Sector, a.Count, buf)
	}
	if err != nil || n < uint32(a.Count) {
		pkg.LogWarn(pkg.ComponentXHDI, "transfer failed",
			"major", a.Major,
			"write", a.RW&RWWrite != 0,
			"sector", a.Sector,
			"count", a.Count,
			"transferred", n,
			"error", err)
		return statusError
	}
	return statusOK
}
