// Package cli implements the cobra-based command surface executed when the
// dispatcher decides the current binary should handle the invocation.
//
// Each subcommand (bin, login, logout, link, unlink) is defined in its own
// file within this package. This file defines the root command and the Run
// entry point the dispatcher hands off to.
//
// Task execution (`lode run ...`) deliberately has no in-process
// implementation here: running tasks is the job of the project-local lode
// installation the dispatcher delegates to. What must work in-process — and
// therefore without any repository at all — are the global commands.
package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mmr-tortoise/lode/internal/model"
)

// Global flag variables shared across all subcommands.
// These are bound to cobra persistent flags on the root command,
// which makes them available to every subcommand automatically.
var (
	// jsonOutput controls whether command output is formatted as JSON.
	// When true, all output uses structured JSON format for machine
	// consumption.
	jsonOutput bool

	// singlePackage mirrors the --single-package compatibility flag. A
	// delegating parent appends it for the child's benefit; the engine
	// accepts it so such invocations parse, even though the commands
	// implemented here don't branch on it.
	singlePackage bool
)

// version, commit, and date are set at build time via ldflags.
// They are injected from the main package to display version information.
var (
	// Version is the semantic version of the binary (e.g., "1.7.0").
	Version = "dev"

	// Commit is the Git commit hash the binary was built from.
	Commit = "none"

	// Date is the build timestamp.
	Date = "unknown"
)

// NewRootCommand creates and configures the root cobra command.
//
// The repository state comes from the dispatcher's inference and may be nil
// (inference skipped or failed); commands that need a repository check for
// nil and fail with ExitNoRepository.
func NewRootCommand(state *model.RepoState) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "lode",
		Short: "High-speed build tool for JavaScript and TypeScript monorepos",
		Long: `lode runs your repository's tasks with the version of lode the repository
was built against: invocations are transparently handed to the local
installation under node_modules when one exists.

This binary also provides the global commands (login, logout, link, unlink)
that work outside any repository.`,

		// SilenceUsage prevents cobra from printing usage on every error.
		// We handle error output ourselves for cleaner UX.
		SilenceUsage: true,

		// SilenceErrors prevents cobra from printing errors automatically.
		// We format errors ourselves (text or JSON based on --json flag).
		SilenceErrors: true,

		// Version is displayed when --version flag is used.
		Version: fmt.Sprintf("%s (commit: %s, built: %s)", Version, Commit, Date),
	}

	// PersistentFlags are inherited by all subcommands.
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output in JSON format")
	rootCmd.PersistentFlags().BoolVar(&singlePackage, "single-package", false, "Treat the repository as a single package")

	// Register subcommands. Each subcommand is defined in its own file
	// (bin.go, login.go, etc.) and returns a *cobra.Command.
	rootCmd.AddCommand(NewBinCommand())
	rootCmd.AddCommand(NewLoginCommand())
	rootCmd.AddCommand(NewLogoutCommand())
	rootCmd.AddCommand(NewLinkCommand(state))
	rootCmd.AddCommand(NewUnlinkCommand(state))

	return rootCmd
}

// Run executes the engine for the given repository state and argument list
// and returns the process exit code. This is the in-process hand-off target
// for the dispatcher.
//
// It inspects errors returned by cobra commands and translates them into
// appropriate OS exit codes. CLIError types carry their own exit codes;
// other errors default to exit code 1.
func Run(state *model.RepoState, args []string) int {
	rootCmd := NewRootCommand(state)
	rootCmd.SetArgs(args)

	if err := rootCmd.Execute(); err != nil {
		var cliErr *model.CLIError
		if errors.As(err, &cliErr) {
			printError(cliErr.Message, cliErr.Err)
			return int(cliErr.Code)
		}

		// Generic error — exit with code 1.
		printError(err.Error(), nil)
		return int(model.ExitGeneralError)
	}
	return int(model.ExitSuccess)
}

// printError outputs an error message in the appropriate format
// (JSON or text) based on the --json global flag.
func printError(message string, underlying error) {
	if jsonOutput {
		errObj := map[string]interface{}{
			"error": map[string]interface{}{
				"message": message,
			},
		}
		if underlying != nil {
			if errMap, ok := errObj["error"].(map[string]interface{}); ok {
				errMap["detail"] = underlying.Error()
			}
		}
		// Errors go to stderr even in JSON mode, because stdout is
		// reserved for successful command output.
		data, _ := json.MarshalIndent(errObj, "", "  ")
		fmt.Fprintln(os.Stderr, string(data))
	} else {
		if underlying != nil {
			fmt.Fprintf(os.Stderr, "Error: %s: %v\n", message, underlying)
		} else {
			fmt.Fprintf(os.Stderr, "Error: %s\n", message)
		}
	}
}

// IsJSONOutput returns whether the --json flag is set.
// Subcommands use this to decide their output format.
func IsJSONOutput() bool {
	return jsonOutput
}
