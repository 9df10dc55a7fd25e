// File: sensor/sysfs.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Thermal zone reader backed by the Linux sysfs thermal class.

package sensor

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/momentics/thermostress/api"
)

// DefaultRoot is where the kernel exposes thermal zones.
const DefaultRoot = "/sys/class/thermal"

// milli converts sysfs millidegree values to degrees.
const milli = 1000.0

// Sysfs reads thermal_zone<N>/temp files.
type Sysfs struct {
	paths []string
}

var _ api.TemperatureSampler = (*Sysfs)(nil)

// NewSysfs builds a sampler for the given zone indices under root. With no
// zones every thermal_zone* directory found under root is used.
func NewSysfs(root string, zones ...int) (*Sysfs, error) {
	if root == "" {
		root = DefaultRoot
	}
	var paths []string
	if len(zones) == 0 {
		matches, err := filepath.Glob(filepath.Join(root, "thermal_zone*", "temp"))
		if err != nil {
			return nil, err
		}
		sort.Slice(matches, func(i, j int) bool { return zoneIndex(matches[i]) < zoneIndex(matches[j]) })
		paths = matches
	} else {
		for _, z := range zones {
			paths = append(paths, filepath.Join(root, fmt.Sprintf("thermal_zone%d", z), "temp"))
		}
	}
	if len(paths) == 0 {
		return nil, api.NewError(api.ErrCodeSensorUnavailable, "no thermal zones found").WithContext("root", root)
	}
	return &Sysfs{paths: paths}, nil
}

// Paths returns the files read per call, in reading order.
func (s *Sysfs) Paths() []string {
	return append([]string(nil), s.paths...)
}

// ReadTemperatures reads every configured zone once.
func (s *Sysfs) ReadTemperatures(ctx context.Context) ([]float64, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	temps := make([]float64, 0, len(s.paths))
	for _, p := range s.paths {
		raw, err := os.ReadFile(p)
		if err != nil {
			return nil, api.Wrap(api.ErrCodeSensorUnavailable, "read thermal zone", err).WithContext("path", p)
		}
		v, err := strconv.ParseFloat(strings.TrimSpace(string(raw)), 64)
		if err != nil {
			return nil, api.Wrap(api.ErrCodeSensorUnavailable, "parse thermal zone", err).WithContext("path", p)
		}
		temps = append(temps, v/milli)
	}
	return temps, nil
}

func zoneIndex(path string) int {
	dir := filepath.Base(filepath.Dir(path))
	n, err := strconv.Atoi(strings.TrimPrefix(dir, "thermal_zone"))
	if err != nil {
		return -1
	}
	return n
}
