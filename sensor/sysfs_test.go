// File: sensor/sysfs_test.go
// Author: momentics <momentics@gmail.com>

package sensor

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/momentics/thermostress/api"
)

func writeZone(t *testing.T, root string, idx int, content string) {
	t.Helper()
	dir := filepath.Join(root, fmt.Sprintf("thermal_zone%d", idx))
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "temp"), []byte(content), 0o644))
}

func TestSysfs_ConvertsMillidegrees(t *testing.T) {
	root := t.TempDir()
	writeZone(t, root, 0, "42500\n")

	s, err := NewSysfs(root, 0)
	require.NoError(t, err)
	temps, err := s.ReadTemperatures(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []float64{42.5}, temps)
}

func TestSysfs_DiscoversZonesInNumericOrder(t *testing.T) {
	root := t.TempDir()
	writeZone(t, root, 10, "30000")
	writeZone(t, root, 2, "20000")
	writeZone(t, root, 1, "10000")

	s, err := NewSysfs(root)
	require.NoError(t, err)
	temps, err := s.ReadTemperatures(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []float64{10, 20, 30}, temps)
}

func TestSysfs_NoZones(t *testing.T) {
	_, err := NewSysfs(t.TempDir())
	assert.ErrorIs(t, err, api.ErrSensorUnavailable)
}

func TestSysfs_UnreadableZoneIsSensorUnavailable(t *testing.T) {
	root := t.TempDir()
	writeZone(t, root, 0, "not-a-number")

	s, err := NewSysfs(root, 0)
	require.NoError(t, err)
	_, err = s.ReadTemperatures(context.Background())
	assert.ErrorIs(t, err, api.ErrSensorUnavailable)

	s, err = NewSysfs(root, 7)
	require.NoError(t, err)
	_, err = s.ReadTemperatures(context.Background())
	assert.ErrorIs(t, err, api.ErrSensorUnavailable)
}
