// Package prof collects runtime profiles of the XHDI driver stack.
//
// The package wraps [runtime/pprof] and is compiled in only with the
// "profile" build tag:
//
//	go build -tags profile ./cmd/xhdictl
//
// Without the tag every function is a no-op and [Enabled] is false, so
// callers keep their profiling hooks in place at no cost.
//
// # CPU Profiling
//
// CPU samples stream to a file between [StartCPU] and [StopCPU]:
//
//	prof.StartCPU("cpu.prof")
//	defer prof.StopCPU()
//
// Starting a second CPU profile returns [ErrCPUProfileActive].
//
// # Snapshot Profiles
//
// [Write] captures a point-in-time profile such as [ProfileHeap] after a
// batch of block transfers:
//
//	prof.Write(prof.ProfileHeap, "heap.prof")
//
// # HTTP Profiling
//
// [Serve] exposes the /debug/pprof/ handlers of [net/http/pprof] on the
// given address for long-running sessions.
package prof
