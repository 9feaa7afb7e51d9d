//go:build profile

package prof

import (
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/http/pprof"
	"os"
	runpprof "runtime/pprof"
	"sync"

	"github.com/ardnew/softxhdi/pkg"
)

// Enabled reports whether the package was built with the "profile" tag.
const Enabled = true

// Profiling errors.
var (
	// ErrCPUProfileActive indicates CPU profiling is already active.
	ErrCPUProfileActive = errors.New("cpu profile already active")

	// ErrInvalidProfile indicates an unknown snapshot profile.
	ErrInvalidProfile = errors.New("invalid profile")
)

// Profile names a snapshot profile.
type Profile string

// Snapshot profiles.
const (
	ProfileHeap      Profile = "heap"
	ProfileAllocs    Profile = "allocs"
	ProfileGoroutine Profile = "goroutine"
	ProfileBlock     Profile = "block"
	ProfileMutex     Profile = "mutex"
)

var (
	cpuMutex sync.Mutex
	cpuFile  *os.File
)

// StartCPU starts CPU profiling into the file at path.
func StartCPU(path string) error {
	cpuMutex.Lock()
	defer cpuMutex.Unlock()

	if cpuFile != nil {
		return ErrCPUProfileActive
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := runpprof.StartCPUProfile(f); err != nil {
		f.Close()
		return err
	}
	cpuFile = f
	pkg.LogInfo(pkg.ComponentProf, "cpu profile started", "path", path)
	return nil
}

// StopCPU stops CPU profiling. It does nothing when no profile is active.
func StopCPU() {
	cpuMutex.Lock()
	defer cpuMutex.Unlock()

	if cpuFile == nil {
		return
	}
	runpprof.StopCPUProfile()
	if err := cpuFile.Close(); err != nil {
		pkg.LogWarn(pkg.ComponentProf, "cpu profile close failed", "error", err)
	}
	pkg.LogInfo(pkg.ComponentProf, "cpu profile written", "path", cpuFile.Name())
	cpuFile = nil
}

// IsCPUActive reports whether CPU profiling is active.
func IsCPUActive() bool {
	cpuMutex.Lock()
	defer cpuMutex.Unlock()
	return cpuFile != nil
}

// Write writes a snapshot profile to the file at path.
func Write(profile Profile, path string) error {
	p := runpprof.Lookup(string(profile))
	if p == nil {
		return fmt.Errorf("%w: %q", ErrInvalidProfile, profile)
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := p.WriteTo(f, 0); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// Serve listens on addr and serves the pprof handlers in the background.
// It returns the bound address.
func Serve(addr string) (string, error) {
	l, err := net.Listen("tcp", addr)
	if err != nil {
		return "", err
	}
	mux := http.NewServeMux()
	mux.HandleFunc("/debug/pprof/", pprof.Index)
	mux.HandleFunc("/debug/pprof/cmdline", pprof.Cmdline)
	mux.HandleFunc("/debug/pprof/profile", pprof.Profile)
	mux.HandleFunc("/debug/pprof/symbol", pprof.Symbol)
	mux.HandleFunc("/debug/pprof/trace", pprof.Trace)
	go func() {
		err := http.Serve(l, mux)
		pkg.LogWarn(pkg.ComponentProf, "pprof server stopped", "error", err)
	}()
	pkg.LogInfo(pkg.ComponentProf, "pprof server listening", "addr", l.Addr().String())
	return l.Addr().String(), nil
}
