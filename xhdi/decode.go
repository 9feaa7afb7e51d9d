package xhdi

import "github.com/ardnew/softxhdi/pkg"

// Call decodes the argument record of op and runs the matching operation.
// It implements Handler. The record is trusted: a short block is
// zero-extended and no field is validated here.
func (d *Driver) Call(op Opcode, args []byte) int32 {
	pkg.LogDebug(pkg.ComponentDecoder, "call", "op", op, "class", d.class, "len", len(args))

	switch op {
	case OpGetVersion:
		return d.getVersion()

	case OpInqTarget:
		var a inqTargetArgs
		if err := unpack(args, &a); err != nil {
			return decodeFailed(op, err)
		}
		return d.inqTarget(&a)

	case OpReserve, OpLock, OpStop:
		var a controlArgs
		if err := unpack(args, &a); err != nil {
			return decodeFailed(op, err)
		}
		return d.control(op, &a)

	case OpEject:
		var a controlArgs
		if err := unpack(args, &a); err != nil {
			return decodeFailed(op, err)
		}
		return d.eject(&a)

	case OpDrvMap:
		return d.drvMap()

	case OpInqDev:
		var a inqDevArgs
		if err := unpack(args, &a); err != nil {
			return decodeFailed(op, err)
		}
		return d.inqDev(&a)

	case OpInqDriver:
		var a inqDriverArgs
		if err := unpack(args, &a); err != nil {
			return decodeFailed(op, err)
		}
		return d.inqDriver(&a)

	case OpNewCookie:
		var a newCookieArgs
		if err := unpack(args, &a); err != nil {
			return decodeFailed(op, err)
		}
		return d.newCookie(&a)

	case OpReadWrite:
		var a readWriteArgs
		if err := unpack(args, &a); err != nil {
			return decodeFailed(op, err)
		}
		return d.readWrite(&a)

	case OpInqTarget2:
		var a inqTarget2Args
		if err := unpack(args, &a); err != nil {
			return decodeFailed(op, err)
		}
		return d.inqTarget2(&a)

	case OpInqDev2:
		var a inqDev2Args
		if err := unpack(args, &a); err != nil {
			return decodeFailed(op, err)
		}
		return d.inqDev2(&a)

	case OpDriverSpecial:
		var a driverSpecialArgs
		if err := unpack(args, &a); err != nil {
			return decodeFailed(op, err)
		}
		return d.unsupported(op, &a)

	case OpGetCapacity:
		var a capacityArgs
		if err := unpack(args, &a); err != nil {
			return decodeFailed(op, err)
		}
		return d.getCapacity(&a)

	case OpMediumChanged, OpReaccess:
		var a deviceArgs
		if err := unpack(args, &a); err != nil {
			return decodeFailed(op, err)
		}
		return d.deviceUnsupported(op, &a, a.Major)

	case OpMiNTInfo:
		var a mintInfoArgs
		if err := unpack(args, &a); err != nil {
			return decodeFailed(op, err)
		}
		return d.unsupported(op, &a)

	case OpDOSLimits:
		var a dosLimitsArgs
		if err := unpack(args, &a); err != nil {
			return decodeFailed(op, err)
		}
		return d.unsupported(op, &a)

	case OpLastAccess:
		var a lastAccessArgs
		if err := unpack(args, &a); err != nil {
			return decodeFailed(op, err)
		}
		return d.deviceUnsupported(op, &a, a.Major)
	}

	pkg.LogDebug(pkg.ComponentDecoder, "unknown opcode", "op", op)
	return int32(pkg.StatusNoSys)
}

// decodeFailed answers a call whose argument record could not be decoded.
func decodeFailed(op Opcode, err error) int32 {
	pkg.LogDebug(pkg.ComponentDecoder, "bad argument record", "op", op, "error", err)
	return statusError
}
