// Package main is the entry point for the pyfmt CLI.
package main

import (
	"os"

	"github.com/yaklabco/pyfmt/internal/cli"
	"github.com/yaklabco/pyfmt/internal/logging"
)

// Build-time variables set by GoReleaser via ldflags.
//
//nolint:gochecknoglobals // Version variables must be package-level for ldflags injection
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	os.Exit(run())
}

func run() int {
	info := cli.BuildInfo{
		Version: version,
		Commit:  commit,
		Date:    date,
	}

	rootCmd := cli.NewRootCommand(info)

	err := rootCmd.Execute()
	code := cli.ExitCode(err)
	if err != nil && code == cli.ExitUsage {
		logger := logging.Default()
		logger.Error("command failed", logging.FieldError, err)
	}
	return code
}
