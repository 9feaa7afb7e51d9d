// Package transport provides the block transfer layer beneath an XHDI
// driver.
//
// A [Bus] holds up to [MaxDevices] [Storage] backends, each addressed by its
// device number on that bus, and implements [Transport]. Backends are either
// in-memory ([MemoryStorage]) or file-backed ([FileStorage]); the latter uses
// positional I/O so concurrent transfers never share a file offset.
//
// # Device names
//
// Target inquiries report a vendor and product string. For USB-attached
// images these can be resolved from the system USB ID database with
// [Names]:
//
//	names := transport.NewNames()
//	names.Load()
//	vendor, product := names.Describe(0x0781, 0x5567)
//	bus.Attach(0, storage, vendor, product)
package transport
