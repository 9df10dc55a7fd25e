// File: affinity/affinity_test.go
// Author: momentics <momentics@gmail.com>

package affinity

import (
	"errors"
	"os"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/momentics/thermostress/api"
)

func TestPin_RejectsEmptySet(t *testing.T) {
	err := New(api.ScopeThread).Pin(os.Getpid(), nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, api.ErrAffinityDenied))
}

func TestPin_RejectsOutOfRangeCore(t *testing.T) {
	c := New(api.ScopeThread)
	assert.ErrorIs(t, c.Pin(os.Getpid(), api.NewCoreSet(-1)), api.ErrAffinityDenied)
	assert.ErrorIs(t, c.Pin(os.Getpid(), api.NewCoreSet(MaxCPUs)), api.ErrAffinityDenied)
}

func TestPin_RoundTripsCurrentMask(t *testing.T) {
	if runtime.GOOS != "linux" {
		t.Skip("affinity is linux-only")
	}
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	c := New(api.ScopeProcess)
	before, err := c.Get(os.Getpid())
	require.NoError(t, err)
	require.NotEmpty(t, before)

	// re-applying the current mask is a no-op in effect
	require.NoError(t, c.Pin(os.Getpid(), before))
	after, err := c.Get(os.Getpid())
	require.NoError(t, err)
	assert.True(t, before.Equal(after), "before=%v after=%v", before, after)
}

func TestPin_UnknownProcess(t *testing.T) {
	if runtime.GOOS != "linux" {
		t.Skip("affinity is linux-only")
	}
	// PIDs above pid_max never exist
	err := New(api.ScopeThread).Pin(1<<30, api.NewCoreSet(0))
	require.Error(t, err)
	assert.ErrorIs(t, err, api.ErrAffinityDenied)
}
