// File: control/debug_test.go
// Author: momentics <momentics@gmail.com>

package control

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDebugProbes_Stats(t *testing.T) {
	dp := NewDebugProbes()
	calls := 0
	dp.RegisterDebugProbe("scheduler.mode", func() any { return "hybrid-single" })
	dp.RegisterDebugProbe("workers.alive", func() any { calls++; return calls })

	assert.Equal(t, []string{"scheduler.mode", "workers.alive"}, dp.Names())
	assert.Equal(t, map[string]any{"scheduler.mode": "hybrid-single", "workers.alive": 1}, dp.Stats())
	assert.Equal(t, 2, dp.Stats()["workers.alive"])
}

func TestDebugProbes_ServeHTTP(t *testing.T) {
	dp := NewDebugProbes()
	dp.RegisterDebugProbe("hysteresis.hot_applied", func() any { return true })
	RegisterPlatformProbes(dp)

	rec := httptest.NewRecorder()
	dp.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/debug/state", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, true, body["hysteresis.hot_applied"])
	assert.Contains(t, body, "platform.cpus")

	rec = httptest.NewRecorder()
	dp.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/debug/state", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}
