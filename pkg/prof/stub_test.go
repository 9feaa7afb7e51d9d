//go:build !profile

package prof

import "testing"

func TestStubs(t *testing.T) {
	if Enabled {
		t.Fatal("Enabled = true without the profile tag")
	}
	if err := StartCPU(""); err != nil {
		t.Errorf("StartCPU() error = %v", err)
	}
	if IsCPUActive() {
		t.Error("IsCPUActive() = true")
	}
	StopCPU()
	if err := Write(ProfileHeap, ""); err != nil {
		t.Errorf("Write() error = %v", err)
	}
	if addr, err := Serve("127.0.0.1:0"); addr != "" || err != nil {
		t.Errorf("Serve() = %q, %v", addr, err)
	}
}
