//go:build linux
// +build linux

// File: affinity/affinity_linux.go
// Author: momentics <momentics@gmail.com>
//
// Linux implementation based on sched_setaffinity(2).

package affinity

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"unsafe"

	"golang.org/x/sys/unix"

	"github.com/momentics/thermostress/api"
)

// MaxCPUs is the capacity of a unix.CPUSet.
var MaxCPUs = len(unix.CPUSet{}) * int(unsafe.Sizeof(unix.CPUSet{}[0])) * 8

func pinPlatform(id int, cores api.CoreSet, scope api.AffinityScope) error {
	var set unix.CPUSet
	set.Zero()
	for _, c := range cores {
		set.Set(c)
	}

	ids := []int{id}
	if scope == api.ScopeProcess {
		ids = threadsOf(id)
	}
	for _, tid := range ids {
		if err := unix.SchedSetaffinity(tid, &set); err != nil {
			// a sibling thread may exit between listing and pinning
			if tid != id && errors.Is(err, unix.ESRCH) {
				continue
			}
			return fmt.Errorf("sched_setaffinity(%d): %w", tid, err)
		}
	}
	return nil
}

func getPlatform(id int) (api.CoreSet, error) {
	var set unix.CPUSet
	if err := unix.SchedGetaffinity(id, &set); err != nil {
		return nil, fmt.Errorf("sched_getaffinity(%d): %w", id, err)
	}
	cores := make([]int, 0, set.Count())
	for c := 0; c < MaxCPUs; c++ {
		if set.IsSet(c) {
			cores = append(cores, c)
		}
	}
	return api.NewCoreSet(cores...), nil
}

// threadsOf lists the thread IDs of pid, falling back to pid itself.
func threadsOf(pid int) []int {
	entries, err := os.ReadDir("/proc/" + strconv.Itoa(pid) + "/task")
	if err != nil || len(entries) == 0 {
		return []int{pid}
	}
	tids := make([]int, 0, len(entries))
	for _, e := range entries {
		tid, err := strconv.Atoi(e.Name())
		if err != nil {
			continue
		}
		tids = append(tids, tid)
	}
	if len(tids) == 0 {
		return []int{pid}
	}
	return tids
}
