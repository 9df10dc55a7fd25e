//go:build !linux
// +build !linux

// control/platform_other.go
// Author: momentics <momentics@gmail.com>

package control

import "runtime"

// RegisterPlatformProbes reports what little is known off linux; affinity
// control is unavailable there.
func RegisterPlatformProbes(dp *DebugProbes) {
	dp.RegisterDebugProbe("platform.os", func() any {
		return runtime.GOOS
	})
	dp.RegisterDebugProbe("platform.cpus", func() any {
		return runtime.NumCPU()
	})
}
