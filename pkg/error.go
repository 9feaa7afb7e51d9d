package pkg

import "errors"

// Driver layer errors.
var (
	// ErrNoDevice indicates the addressed device is not present.
	ErrNoDevice = errors.New("device not present")

	// ErrBusy indicates the device is owned but not yet ready.
	ErrBusy = errors.New("device busy")

	// ErrNotSupported indicates an unsupported operation or feature.
	ErrNotSupported = errors.New("not supported")

	// ErrIO indicates a generic transport failure.
	ErrIO = errors.New("I/O error")

	// ErrNoAddress indicates no such device or address.
	ErrNoAddress = errors.New("no such device or address")

	// ErrInvalidParameter indicates an invalid parameter was provided.
	ErrInvalidParameter = errors.New("invalid parameter")

	// ErrBufferTooSmall indicates the provided buffer is too small.
	ErrBufferTooSmall = errors.New("buffer too small")

	// ErrBadAddress indicates a guest address outside of mapped memory.
	ErrBadAddress = errors.New("bad guest address")

	// ErrOutOfMemory indicates the guest allocator is exhausted.
	ErrOutOfMemory = errors.New("guest memory exhausted")

	// ErrJarFull indicates the cookie jar has no free slot.
	ErrJarFull = errors.New("cookie jar full")

	// ErrNoHandler indicates a cookie value that does not resolve to a handler.
	ErrNoHandler = errors.New("no handler at address")

	// ErrDeviceInUse indicates a bus slot that is already attached.
	ErrDeviceInUse = errors.New("bus device already attached")

	// ErrMediumNotPresent indicates removable media has been ejected.
	ErrMediumNotPresent = errors.New("medium not present")

	// ErrReadOnly indicates a write to read-only storage.
	ErrReadOnly = errors.New("storage is read-only")

	// ErrOutOfRange indicates a block range beyond the end of storage.
	ErrOutOfRange = errors.New("block range out of range")

	// ErrNoPartitionTable indicates sector 0 holds no recognised partition table.
	ErrNoPartitionTable = errors.New("no partition table")

	// ErrTableFull indicates no free drive slot remains in the device table.
	ErrTableFull = errors.New("device table full")
)

// Status is a signed XHDI result code as returned through the entry point.
type Status int32

// XHDI result codes.
const (
	StatusOK       Status = 0   // E_OK
	StatusError    Status = -1  // EERROR, generic I/O error
	StatusBusy     Status = -2  // EBUSY (EDRVNR), device not ready
	StatusNoDevice Status = -15 // ENODEV (EUNDEV)
	StatusNoSys    Status = -32 // ENOSYS (EINVFN), not implemented
	StatusNoAddr   Status = -46 // ENXIO
)

// String returns a string representation of the status.
func (s Status) String() string {
	switch s {
	case StatusOK:
		return "E_OK"
	case StatusError:
		return "EERROR"
	case StatusBusy:
		return "EBUSY"
	case StatusNoDevice:
		return "ENODEV"
	case StatusNoSys:
		return "ENOSYS"
	case StatusNoAddr:
		return "ENXIO"
	default:
		return "unknown"
	}
}

// Error returns the corresponding error for the status.
func (s Status) Error() error {
	switch s {
	case StatusOK:
		return nil
	case StatusBusy:
		return ErrBusy
	case StatusNoDevice:
		return ErrNoDevice
	case StatusNoSys:
		return ErrNotSupported
	case StatusNoAddr:
		return ErrNoAddress
	default:
		return ErrIO
	}
}

// Unhandled reports whether s tells a chained caller to keep trying the
// next handler. Every other code is terminal.
func (s Status) Unhandled() bool {
	return s == StatusNoSys || s == StatusNoDevice || s == StatusNoAddr
}
