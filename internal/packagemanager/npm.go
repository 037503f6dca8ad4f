package packagemanager

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/tidwall/jsonc"
)

// descriptorFile is the npm package descriptor read by the probe.
const descriptorFile = "package.json"

// Npm probes for workspaces declared in package.json.
//
// The npm "workspaces" field has two documented shapes:
//
//	{"workspaces": ["packages/*"]}
//	{"workspaces": {"packages": ["packages/*"]}}
//
// Both are accepted. The second form is the yarn-originated object syntax
// that npm also understands.
type Npm struct{}

// Kind returns KindNpm.
func (Npm) Kind() Kind {
	return KindNpm
}

// WorkspaceGlobs reads <dir>/package.json and extracts the workspace globs.
//
// A missing package.json or an absent/empty "workspaces" field both report
// ErrNoWorkspaces — from the locator's point of view, neither makes dir a
// workspace root. Unreadable or malformed files are real errors.
func (Npm) WorkspaceGlobs(dir string) ([]string, error) {
	path := filepath.Join(dir, descriptorFile)

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%s: %w", path, ErrNoWorkspaces)
		}
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	// The workspaces field is polymorphic, so it is decoded into an
	// interface{} and normalized afterwards. Comments and trailing commas
	// are stripped by jsonc before the standard parser runs.
	var pkg struct {
		Workspaces interface{} `json:"workspaces"`
	}
	if err := json.Unmarshal(jsonc.ToJSON(data), &pkg); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}

	globs := normalizeWorkspaces(pkg.Workspaces)
	if len(globs) == 0 {
		return nil, fmt.Errorf("%s: %w", path, ErrNoWorkspaces)
	}
	return globs, nil
}

// normalizeWorkspaces flattens the two accepted shapes of the workspaces
// field into a plain glob list. Entries that are not strings are skipped.
func normalizeWorkspaces(v interface{}) []string {
	switch w := v.(type) {
	case []interface{}:
		return stringSlice(w)
	case map[string]interface{}:
		if packages, ok := w["packages"].([]interface{}); ok {
			return stringSlice(packages)
		}
	}
	return nil
}

// stringSlice extracts the string elements of a decoded JSON array.
func stringSlice(items []interface{}) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		if s, ok := item.(string); ok {
			out = append(out, s)
		}
	}
	return out
}
