// Package main implements a command line host for the deterministic
// CHIP-8 machine: it loads a program image or snapshot, executes a bounded
// number of steps and optionally shows the display in a terminal viewer.
package main

import (
	"context"
	"errors"
	"os"

	"github.com/retroenv/retrogolib/app"
	"github.com/retroenv/retrogolib/buildinfo"
	"github.com/retroenv/retrogolib/log"
	"github.com/subchip8/subchip8/internal/cli"
	"github.com/subchip8/subchip8/internal/config"
	"github.com/subchip8/subchip8/internal/runner"
)

var (
	version = "dev"
	commit  = ""
	date    = ""
)

func main() {
	ctx := app.Context()

	opts, err := cli.ParseFlags()
	if err != nil {
		logger := config.CreateLogger(opts.Debug, opts.Quiet)
		var usageErr *cli.UsageError
		if errors.As(err, &usageErr) {
			printBanner(logger, opts)
			usageErr.ShowUsage()
		} else {
			logger.Fatal(err.Error())
		}
		os.Exit(1)
	}

	logger := config.CreateLogger(opts.Debug, opts.Quiet)
	printBanner(logger, opts)

	if err := runner.Run(ctx, logger, opts); err != nil {
		// Handle context cancellation (Ctrl+C) gracefully
		if errors.Is(err, context.Canceled) {
			logger.Info("Operation cancelled")
			return
		}
		logger.Error("Running program failed", log.Err(err))
		os.Exit(1)
	}
}

func printBanner(logger *log.Logger, opts config.Program) {
	if opts.Quiet {
		return
	}
	logger.Info("subchip8", log.String("version", buildinfo.Version(version, commit, date)))
}
