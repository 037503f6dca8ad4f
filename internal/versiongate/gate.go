// Package versiongate decides whether a locally installed copy of lode is
// new enough to be handed the --skip-infer compatibility flag.
//
// Old lode releases do not know the flag and would reject it, so before a
// delegating parent prepends it, the local installation's declared version
// (node_modules/lode/package.json) is checked against the first release
// that understands the flag. Comparison follows full semantic-versioning
// precedence: a pre-release of a version orders before its release, and
// the very first canary that shipped the flag already satisfies the gate.
package versiongate

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/mod/semver"
)

// minSkipInferVersion is the first version of lode that understands
// --skip-infer. Every version ordered at or after it (including its own
// pre-releases) receives the flag.
const minSkipInferVersion = "v1.7.0-canary.0"

// SupportsSkipInfer reads the version declared by the lode installation
// under root and reports whether it satisfies the skip-infer requirement.
//
// Failures are propagated, not recovered: an unreadable manifest, malformed
// JSON, or an invalid version string indicates a corrupted local
// installation, which is not a condition worth guessing around.
func SupportsSkipInfer(root string) (bool, error) {
	manifest := filepath.Join(root, "node_modules", "lode", "package.json")

	data, err := os.ReadFile(manifest)
	if err != nil {
		return false, fmt.Errorf("failed to read local lode manifest %s: %w", manifest, err)
	}

	var pkg struct {
		Version string `json:"version"`
	}
	if err := json.Unmarshal(data, &pkg); err != nil {
		return false, fmt.Errorf("failed to parse local lode manifest %s: %w", manifest, err)
	}

	// package.json versions are written without the leading "v" that
	// x/mod/semver requires.
	v := "v" + strings.TrimPrefix(pkg.Version, "v")
	if !semver.IsValid(v) {
		return false, fmt.Errorf("invalid version %q in local lode manifest %s", pkg.Version, manifest)
	}

	return semver.Compare(v, minSkipInferVersion) >= 0, nil
}
