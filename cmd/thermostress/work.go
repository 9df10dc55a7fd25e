// File: cmd/thermostress/work.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v2"

	"github.com/momentics/thermostress/internal/concurrency"
	"github.com/momentics/thermostress/workload"
)

// workCommand is what the process launcher re-executes: one workload, in
// this process, then exit.
func workCommand() *cli.Command {
	return &cli.Command{
		Name:   concurrency.WorkCommand,
		Hidden: true,
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "workload", Required: true},
			&cli.IntFlag{Name: "size", Required: true},
			&cli.IntFlag{Name: "index"},
			&cli.DurationFlag{Name: "duration"},
		},
		Action: func(c *cli.Context) error {
			fn, err := workload.Lookup(c.String("workload"))
			if err != nil {
				return cli.Exit(err.Error(), 2)
			}
			ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
			defer stop()
			if err := workload.Run(ctx, workload.ForDuration(fn, c.Duration("duration")), c.Int("size")); err != nil {
				return cli.Exit(err.Error(), 1)
			}
			return nil
		},
	}
}
