// Package main is the entry point for the lode launcher.
//
// The binary itself is thin: it reads environment settings, hands the raw
// arguments to the dispatcher in internal/shim, and exits with whatever
// code the dispatcher returns. The dispatcher decides whether the
// invocation is handled in-process (internal/cli) or delegated to the
// repository-local lode installation under node_modules.
//
// Build-time variables (version, commit, date) are injected via ldflags
// by GoReleaser during the release process. During development, they
// default to "dev", "none", and "unknown" respectively.
package main

import (
	"os"

	"github.com/mmr-tortoise/lode/internal/cli"
	"github.com/mmr-tortoise/lode/internal/config"
	"github.com/mmr-tortoise/lode/internal/shim"
)

// version, commit, and date are set by GoReleaser at build time
// via ldflags (see .goreleaser.yml). They provide binary identification
// for the --version flag output and for the local-version comparison the
// dispatcher performs.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	// Inject build-time version info into the CLI package.
	// This decouples the build system (GoReleaser ldflags) from the
	// CLI framework (cobra), keeping main.go minimal.
	cli.Version = version
	cli.Commit = commit
	cli.Date = date

	d := shim.NewDispatcher(cli.Run, config.FromEnv(), version)
	os.Exit(d.Run(os.Args[1:]))
}
