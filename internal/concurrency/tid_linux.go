//go:build linux
// +build linux

// File: internal/concurrency/tid_linux.go
// Author: momentics <momentics@gmail.com>

package concurrency

import "golang.org/x/sys/unix"

// CurrentThreadID returns the kernel thread ID of the calling OS thread.
// Callers must hold runtime.LockOSThread for the ID to stay meaningful.
func CurrentThreadID() (int, error) {
	return unix.Gettid(), nil
}
