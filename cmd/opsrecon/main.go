// Package main provides the entry point for the opsrecon CLI tool.
package main

import (
	"context"
	"os"

	"github.com/cosmo-lgtm/ops-command-center/cmd/opsrecon/app"
)

// Version information populated by goreleaser.
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

func main() {
	application, err := app.New(version, commit, date)
	if err != nil {
		app.ExitOnError(err)
	}

	// Cancel the run context on SIGINT/SIGTERM so a long scoring pass
	// aborts cleanly instead of being killed mid-write.
	ctx, cancel := app.ContextWithSignals(context.Background())
	defer cancel()

	if err := application.Execute(ctx, os.Args[1:]); err != nil {
		app.ExitOnError(err)
	}
}
