// File: cmd/thermostress/main.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// thermostress drives a CPU stress workload under a thermal-feedback affinity
// scheduler and records the temperature trace of the run as CSV.

package main

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"
)

func newApp() *cli.App {
	return &cli.App{
		Name:  "thermostress",
		Usage: "thermal stress test with hysteresis-driven core affinity",
		Commands: []*cli.Command{
			runCommand(),
			workCommand(),
		},
	}
}

func main() {
	if err := newApp().Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
