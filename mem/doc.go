// Package mem models the guest address space seen by XHDI callers.
//
// XHDI passes output parameters and transfer buffers as 32-bit addresses.
// A [Memory] resolves such an address to a byte slice so that the driver can
// fill results in place and hand transfer buffers to the transport without
// copying. All multi-byte values are big-endian.
//
// [RAM] is the flat implementation used by the CLI and the tests. Its
// allocator is stack-like:
//
//	mark := ram.Mark()
//	defer ram.Release(mark)
//	addr, err := ram.Alloc(4)
package mem
