// File: telemetry/csv_sink_test.go
// Author: momentics <momentics@gmail.com>

package telemetry

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/momentics/thermostress/api"
)

func TestPathFor(t *testing.T) {
	assert.Equal(t, filepath.Join("out", "stress_hybrid-double.csv"), PathFor("out", api.ModeHybridDouble))
	assert.Equal(t, "stress_concurrent.csv", PathFor("", api.ModeConcurrent))
}

func TestCSVSink_WritesHeaderAndRows(t *testing.T) {
	var buf bytes.Buffer
	s, err := NewCSVSink(&buf, api.AggregateMax)
	require.NoError(t, err)

	require.NoError(t, s.Append(api.ThermalSample{Elapsed: 1500 * time.Millisecond, Readings: []float64{41.5, 43}}))
	require.NoError(t, s.Append(api.ThermalSample{Elapsed: 2 * time.Second, Readings: []float64{40}}))
	require.NoError(t, s.Flush())

	assert.Equal(t, "time,temp\n1.5,43\n2,40\n", buf.String())
}

func TestCSVSink_MeanAggregation(t *testing.T) {
	var buf bytes.Buffer
	s, err := NewCSVSink(&buf, api.AggregateMean)
	require.NoError(t, err)
	require.NoError(t, s.Append(api.ThermalSample{Elapsed: time.Second, Readings: []float64{40, 44}}))
	require.NoError(t, s.Close())
	assert.Equal(t, "time,temp\n1,42\n", buf.String())
}

func TestCreateCSV_TruncatesAndCloses(t *testing.T) {
	path := filepath.Join(t.TempDir(), "runs", "stress_sequential.csv")
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte("stale\n"), 0o644))

	s, err := CreateCSV(path, api.AggregateMax, true)
	require.NoError(t, err)
	require.NoError(t, s.Append(api.ThermalSample{Elapsed: 0, Readings: []float64{35}}))
	require.NoError(t, s.Flush())
	require.NoError(t, s.Close())
	require.NoError(t, s.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "time,temp\n0,35\n", string(data))

	err = s.Append(api.ThermalSample{Readings: []float64{1}})
	assert.True(t, errors.Is(err, api.ErrLogWriteFailure))
}

func TestCreateCSV_UnwritableDir(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "file")
	require.NoError(t, os.WriteFile(blocker, nil, 0o644))

	_, err := CreateCSV(filepath.Join(blocker, "stress_concurrent.csv"), api.AggregateMax, false)
	assert.ErrorIs(t, err, api.ErrLogWriteFailure)
}
