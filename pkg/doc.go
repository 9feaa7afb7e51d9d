// Package pkg provides shared utilities for the softxhdi driver layer.
//
// This package contains common functionality used by the device table, the
// transport bus and the XHDI dispatcher, including:
//
//   - Structured logging via Go's standard [log/slog] package
//   - XHDI result codes ([Status]) and their mapping to Go errors
//   - Sentinel error values for driver and transport failures
//   - Component identifiers for log filtering
//
// # Logging
//
// The logging subsystem wraps [log/slog] with driver-specific context:
//
//	pkg.SetLogLevel(slog.LevelDebug)
//	pkg.LogInfo(pkg.ComponentXHDI, "driver installed", "class", 0x20)
//
// # Result codes
//
// Every XHDI routine returns a signed [Status]. Three of them tell a chained
// caller to keep trying the next handler:
//
//	if pkg.Status(ret).Unhandled() {
//	    // fall through to local logic
//	}
package pkg
