package packagemanager

import "errors"

// Kind identifies a supported package manager.
type Kind string

const (
	// KindNpm covers npm and yarn, both of which declare workspaces in
	// package.json.
	KindNpm Kind = "npm"

	// KindPnpm declares workspaces in a separate pnpm-workspace.yaml file.
	KindPnpm Kind = "pnpm"
)

// ErrNoWorkspaces is returned by a Probe when the directory exists but
// carries no workspace declaration for that package manager. Callers use
// errors.Is to distinguish this expected outcome from genuine read or
// parse failures.
var ErrNoWorkspaces = errors.New("no workspace declaration found")

// Probe reports workspace membership for a single package manager.
//
// Probes are consumed as an opaque query by the repository locator: the
// locator never looks inside the globs, it only cares whether a directory
// is a workspace root.
type Probe interface {
	// Kind returns the package manager this probe understands.
	Kind() Kind

	// WorkspaceGlobs returns the member globs declared at dir. It returns
	// an error wrapping ErrNoWorkspaces when dir declares no workspaces
	// for this package manager.
	WorkspaceGlobs(dir string) ([]string, error)
}

// DefaultProbes returns the probes for all supported package managers,
// in the order they are consulted during inference.
func DefaultProbes() []Probe {
	return []Probe{Pnpm{}, Npm{}}
}
