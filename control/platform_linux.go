//go:build linux
// +build linux

// control/platform_linux.go
// Author: momentics <momentics@gmail.com>
//
// Linux-specific debug probes.

package control

import (
	"os"
	"runtime"

	"github.com/momentics/thermostress/affinity"
	"github.com/momentics/thermostress/api"
)

// RegisterPlatformProbes describes the host: CPU count and the affinity
// mask of the scheduler process itself.
func RegisterPlatformProbes(dp *DebugProbes) {
	dp.RegisterDebugProbe("platform.os", func() any {
		return runtime.GOOS
	})
	dp.RegisterDebugProbe("platform.cpus", func() any {
		return affinity.NumCPUs()
	})
	dp.RegisterDebugProbe("platform.scheduler_affinity", func() any {
		cores, err := affinity.New(api.ScopeProcess).Get(os.Getpid())
		if err != nil {
			return err.Error()
		}
		return cores.String()
	})
}
