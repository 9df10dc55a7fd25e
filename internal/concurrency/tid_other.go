//go:build !linux
// +build !linux

// File: internal/concurrency/tid_other.go
// Author: momentics <momentics@gmail.com>

package concurrency

import "github.com/momentics/thermostress/api"

// CurrentThreadID is unavailable outside Linux.
func CurrentThreadID() (int, error) {
	return -1, api.ErrNotSupported
}
