// File: internal/concurrency/launcher_process.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// ProcessLauncher runs each workload as a child process by re-executing the
// current binary with the hidden "work" command.

package concurrency

import (
	"context"
	"io"
	"os"
	"os/exec"
	"strconv"
	"time"

	"github.com/momentics/thermostress/api"
)

// WorkCommand is the hidden CLI command a child process is started with.
const WorkCommand = "work"

// ProcessLauncher starts one OS process per worker.
type ProcessLauncher struct {
	// Path of the executable; defaults to os.Executable().
	Path     string
	Workload string
	Size     int
	// Duration the child repeats its workload for; zero runs one pass.
	Duration time.Duration
	// ExtraArgs are appended after the work command flags.
	ExtraArgs []string
	Stdout    io.Writer
	Stderr    io.Writer
}

var _ Launcher = (*ProcessLauncher)(nil)

// Scope reports that handles carry PIDs.
func (l *ProcessLauncher) Scope() api.AffinityScope { return api.ScopeProcess }

// Args returns the command line a child is started with.
func (l *ProcessLauncher) Args(index int) []string {
	args := []string{
		WorkCommand,
		"--workload", l.Workload,
		"--size", strconv.Itoa(l.Size),
		"--index", strconv.Itoa(index),
	}
	if l.Duration > 0 {
		args = append(args, "--duration", l.Duration.String())
	}
	return append(args, l.ExtraArgs...)
}

// Launch starts the child. The child is not bound to ctx: the pool never
// kills workers.
func (l *ProcessLauncher) Launch(_ context.Context, index int) (Handle, error) {
	path := l.Path
	if path == "" {
		exe, err := os.Executable()
		if err != nil {
			return nil, api.Wrap(api.ErrCodeLaunchFailure, "resolve executable", err)
		}
		path = exe
	}
	cmd := exec.Command(path, l.Args(index)...)
	cmd.Stdout = l.Stdout
	cmd.Stderr = l.Stderr
	if err := cmd.Start(); err != nil {
		return nil, api.Wrap(api.ErrCodeLaunchFailure, "start worker process", err).
			WithContext("path", path).
			WithContext("worker", index)
	}
	h := &procHandle{cmd: cmd, done: make(chan struct{})}
	go h.wait()
	return h, nil
}

type procHandle struct {
	cmd  *exec.Cmd
	done chan struct{}
	err  error
}

func (h *procHandle) ID() int               { return h.cmd.Process.Pid }
func (h *procHandle) Done() <-chan struct{} { return h.done }
func (h *procHandle) Err() error            { return h.err }

func (h *procHandle) wait() {
	if err := h.cmd.Wait(); err != nil {
		h.err = api.Wrap(api.ErrCodeWorkloadFailure, "worker process exited abnormally", err).
			WithContext("pid", h.cmd.Process.Pid)
	}
	close(h.done)
}
