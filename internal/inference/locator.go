package inference

import (
	"errors"
	"fmt"
	"iter"
	"os"
	"path/filepath"

	"github.com/mmr-tortoise/lode/internal/model"
	"github.com/mmr-tortoise/lode/internal/packagemanager"
)

const (
	// markerFile is the canonical project marker. Its presence at a
	// directory unambiguously identifies that directory as a project root.
	markerFile = "lode.json"

	// descriptorFile is the package descriptor used as a fallback root
	// signal when no marker exists anywhere in the ancestry.
	descriptorFile = "package.json"
)

// ErrNoRoot indicates that no project marker or package descriptor was
// found in the working directory or any of its ancestors. It is a
// recoverable condition, not a crash: callers fall back to running
// without repository context.
var ErrNoRoot = errors.New("could not find lode.json or package.json in any ancestor directory")

// Locator infers repository state from a starting directory.
//
// The workspace probes are injectable so tests can exercise the walk
// without real package-manager manifests; NewLocator defaults to the
// probes for all supported package managers.
type Locator struct {
	probes []packagemanager.Probe
}

// NewLocator creates a Locator. With no arguments it uses the default
// workspace probes (pnpm, npm).
func NewLocator(probes ...packagemanager.Probe) *Locator {
	if len(probes) == 0 {
		probes = packagemanager.DefaultProbes()
	}
	return &Locator{probes: probes}
}

// Infer computes the RepoState governing dir.
//
// The returned root is absolute and existed on disk at inference time.
// Nothing is cached: calling Infer twice on an unchanged filesystem yields
// the same result both times.
func (l *Locator) Infer(dir string) (*model.RepoState, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("cannot resolve starting directory %s: %w", dir, err)
	}

	// Phase 1: the closest ancestor with a lode.json is the root. The
	// probes are consulted only at that directory, and only to pick the
	// mode — the marker alone settles the root.
	if root, ok := firstAncestor(abs, func(p string) bool {
		return fileExists(filepath.Join(p, markerFile))
	}); ok {
		mode := model.ModeSinglePackage
		if l.declaresWorkspaces(root) {
			mode = model.ModeMultiPackage
		}
		return &model.RepoState{Root: root, Mode: mode}, nil
	}

	// Phase 2: no marker anywhere. Walk the same ancestry looking at
	// package.json directories. The first workspace-bearing ancestor wins
	// immediately; failing that, the closest descriptor-bearing ancestor
	// becomes the single-package fallback.
	var fallback string
	for p := range ancestors(abs) {
		if !fileExists(filepath.Join(p, descriptorFile)) {
			continue
		}
		if fallback == "" {
			fallback = p
		}
		if l.declaresWorkspaces(p) {
			return &model.RepoState{Root: p, Mode: model.ModeMultiPackage}, nil
		}
	}
	if fallback != "" {
		return &model.RepoState{Root: fallback, Mode: model.ModeSinglePackage}, nil
	}

	return nil, ErrNoRoot
}

// declaresWorkspaces reports whether any probe finds a workspace
// declaration at dir. Probe errors — including the expected
// ErrNoWorkspaces — all count as "no": a directory we cannot positively
// identify as a workspace root is treated as not being one.
func (l *Locator) declaresWorkspaces(dir string) bool {
	for _, probe := range l.probes {
		if globs, err := probe.WorkspaceGlobs(dir); err == nil && len(globs) > 0 {
			return true
		}
	}
	return false
}

// ancestors yields dir and each of its parents, closest first, ending at
// the filesystem root. The sequence is evaluated on demand so searches
// short-circuit at the first match without statting the rest of the chain.
func ancestors(dir string) iter.Seq[string] {
	return func(yield func(string) bool) {
		for p := dir; ; {
			if !yield(p) {
				return
			}
			parent := filepath.Dir(p)
			if parent == p {
				return
			}
			p = parent
		}
	}
}

// firstAncestor returns the closest ancestor of dir satisfying pred.
func firstAncestor(dir string, pred func(string) bool) (string, bool) {
	for p := range ancestors(dir) {
		if pred(p) {
			return p, true
		}
	}
	return "", false
}

// fileExists reports whether path exists, mirroring the metadata check the
// walk is built on. Directories count too; in practice the names checked
// are always files.
func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
