// Package xhdi implements an XHDI (eXtended Hard Disk Interface) driver: a
// single entry point taking a 16-bit opcode and a packed big-endian argument
// record, through which clients enumerate drives, query targets and
// capacities, and transfer blocks without knowing which bus serves a drive.
//
// # Chaining
//
// Several drivers, one per bus class, coexist by chaining. Each [Driver]
// holds a reference to the handler that was registered before it and offers
// every call to that handler first. Results ENOSYS, ENODEV and ENXIO mean
// "not mine" and let the driver answer locally; any other result is
// returned unchanged. Locally, a driver answers only for addresses its class
// owns and reports ENODEV for the rest.
//
//	usb, _ := xhdi.NewDriver(xhdi.Config{Class: pun.FlagUSB, ...})
//	ide, _ := xhdi.NewDriver(xhdi.Config{Class: pun.FlagIDE, ...})
//	xhdi.Install(jar, vectors, usb)
//	xhdi.Install(jar, vectors, ide) // ide -> usb
//
// [Install] puts a driver in front of the current handler. [Append] asks the
// current handler, through XHNewCookie, to add the driver at the end.
//
// # Addresses
//
// Entry points and every pointer argument are 32-bit guest addresses. A
// [Vectors] table maps entry point addresses back to handlers; output
// parameters and transfer buffers resolve through the driver's
// [mem.Memory]. Block transfers hand the transport a view of guest memory
// and never copy.
//
// # Client
//
// [Client] encodes typed calls into the wire format and decodes the
// results, allocating its output parameters in guest RAM.
package xhdi
