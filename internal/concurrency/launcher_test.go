// File: internal/concurrency/launcher_test.go
// Author: momentics <momentics@gmail.com>

package concurrency

import (
	"context"
	"errors"
	"runtime"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/momentics/thermostress/api"
)

func TestProcessLauncher_Args(t *testing.T) {
	l := &ProcessLauncher{Workload: "matmul", Size: 500, ExtraArgs: []string{"--log-level", "debug"}}
	assert.Equal(t, []string{
		"work", "--workload", "matmul", "--size", "500", "--index", "3",
		"--log-level", "debug",
	}, l.Args(3))
	assert.Equal(t, api.ScopeProcess, l.Scope())

	l.Duration = 90 * time.Second
	assert.Equal(t, []string{
		"work", "--workload", "matmul", "--size", "500", "--index", "0",
		"--duration", "1m30s",
		"--log-level", "debug",
	}, l.Args(0))
}

func TestThreadLauncher_RepeatsForDuration(t *testing.T) {
	var calls atomic.Int32
	l := &ThreadLauncher{Size: 1, Duration: 20 * time.Millisecond, Workload: func(context.Context, int) error {
		calls.Add(1)
		time.Sleep(2 * time.Millisecond)
		return nil
	}}
	h, err := l.Launch(context.Background(), 0)
	require.NoError(t, err)
	<-h.Done()
	assert.NoError(t, h.Err())
	assert.Greater(t, calls.Load(), int32(1))
}

func TestProcessLauncher_MissingBinary(t *testing.T) {
	l := &ProcessLauncher{Path: "/nonexistent/thermostress", Workload: "spin", Size: 1}
	_, err := l.Launch(context.Background(), 0)
	assert.ErrorIs(t, err, api.ErrLaunchFailure)
}

func TestThreadLauncher_RunsOnOwnThread(t *testing.T) {
	if runtime.GOOS != "linux" {
		t.Skip("thread ids are linux-only")
	}
	ran := make(chan int, 1)
	l := &ThreadLauncher{Size: 7, Workload: func(_ context.Context, size int) error {
		tid, err := CurrentThreadID()
		if err != nil {
			return err
		}
		ran <- tid
		return nil
	}}
	assert.Equal(t, api.ScopeThread, l.Scope())

	h, err := l.Launch(context.Background(), 0)
	require.NoError(t, err)
	<-h.Done()
	require.NoError(t, h.Err())
	assert.Equal(t, h.ID(), <-ran)
	assert.Positive(t, h.ID())
}

func TestThreadLauncher_WorkloadFailure(t *testing.T) {
	if runtime.GOOS != "linux" {
		t.Skip("thread ids are linux-only")
	}
	l := &ThreadLauncher{Workload: func(context.Context, int) error { return errors.New("bad matrix") }}
	h, err := l.Launch(context.Background(), 1)
	require.NoError(t, err)
	<-h.Done()
	assert.ErrorIs(t, h.Err(), api.ErrWorkloadFailure)
}

func TestThreadLauncher_NoWorkload(t *testing.T) {
	_, err := (&ThreadLauncher{}).Launch(context.Background(), 0)
	assert.ErrorIs(t, err, api.ErrLaunchFailure)
}
