package packagemanager

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// workspaceFile is the pnpm workspace manifest name.
const workspaceFile = "pnpm-workspace.yaml"

// Pnpm probes for workspaces declared in pnpm-workspace.yaml.
//
// Unlike npm, pnpm keeps the workspace declaration in a dedicated YAML
// file next to package.json:
//
//	packages:
//	  - "apps/*"
//	  - "packages/*"
type Pnpm struct{}

// Kind returns KindPnpm.
func (Pnpm) Kind() Kind {
	return KindPnpm
}

// WorkspaceGlobs reads <dir>/pnpm-workspace.yaml and extracts the package
// globs. A missing file or an empty packages list reports ErrNoWorkspaces.
func (Pnpm) WorkspaceGlobs(dir string) ([]string, error) {
	path := filepath.Join(dir, workspaceFile)

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%s: %w", path, ErrNoWorkspaces)
		}
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	var manifest struct {
		Packages []string `yaml:"packages"`
	}
	if err := yaml.Unmarshal(data, &manifest); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}

	// A pnpm-workspace.yaml without a packages list is not a workspace
	// root; pnpm itself refuses such a file.
	if len(manifest.Packages) == 0 {
		return nil, fmt.Errorf("%s: %w", path, ErrNoWorkspaces)
	}
	return manifest.Packages, nil
}
