//go:build !profile

package prof

import "errors"

// Enabled reports whether the package was built with the "profile" tag.
const Enabled = false

// Profiling errors. The stubs never return them.
var (
	ErrCPUProfileActive = errors.New("cpu profile already active")
	ErrInvalidProfile   = errors.New("invalid profile")
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

// StartCPU is a no-op.
func StartCPU(_ string) error { return nil }

// StopCPU is a no-op.
func StopCPU() {}

// IsCPUActive always returns false.
func IsCPUActive() bool { return false }

// Write is a no-op.
func Write(_ Profile, _ string) error { return nil }

// Serve is a no-op and returns an empty address.
func Serve(_ string) (string, error) { return "", nil }
