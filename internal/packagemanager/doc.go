// Package packagemanager answers one question for repository inference:
// does a given directory declare a package-manager workspace, and if so,
// which member globs does it list?
//
// Two package managers are supported:
//   - npm: the "workspaces" field of package.json, which can be either a
//     plain array of globs or an object with a "packages" array
//   - pnpm: the "packages" list of pnpm-workspace.yaml
//
// package.json files are parsed through github.com/tidwall/jsonc so files
// with comments or trailing commas (common in hand-edited manifests) do not
// break inference. pnpm-workspace.yaml is parsed with yaml.v3.
//
// A directory that simply has no workspace declaration is reported with the
// ErrNoWorkspaces sentinel, distinct from real read/parse failures.
package packagemanager
