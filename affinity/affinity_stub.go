//go:build !linux
// +build !linux

// File: affinity/affinity_stub.go
// Author: momentics <momentics@gmail.com>
//
// Stub implementation for unsupported platforms.
// Returns api.ErrNotSupported to indicate unavailability.

package affinity

import "github.com/momentics/thermostress/api"

// MaxCPUs bounds accepted core indices.
var MaxCPUs = 1024

func pinPlatform(id int, cores api.CoreSet, scope api.AffinityScope) error {
	return api.ErrNotSupported
}

func getPlatform(id int) (api.CoreSet, error) {
	return nil, api.ErrNotSupported
}
