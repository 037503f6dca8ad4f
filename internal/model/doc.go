// Package model defines the domain types and value objects for the lode
// launcher.
//
// This package contains pure data structures with no external dependencies.
// The central entity is RepoState — the inferred repository root and its
// mode (single-package or multi-package) — which is recomputed fresh on
// every invocation and never persisted.
//
// The package also defines exit codes (ExitCode) and a custom error type
// (CLIError) that carries exit codes for proper OS process exit handling.
package model
