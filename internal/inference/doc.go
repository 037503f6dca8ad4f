// Package inference locates the repository root governing a working
// directory and classifies it as single-package or multi-package.
//
// The algorithm has two phases, both walking the directory ancestry from
// the working directory upward (closest first):
//
//  1. Marker phase: the first ancestor containing lode.json wins. The
//     marker alone is sufficient evidence of a project root, so this phase
//     never fails once a marker is found; workspace probes only decide the
//     mode of that one directory.
//  2. Descriptor phase: with no marker anywhere, ancestors containing
//     package.json are considered. The first one that declares workspaces
//     wins immediately as multi-package; otherwise the closest
//     descriptor-bearing ancestor is the single-package fallback.
//
// When neither phase finds anything, Infer fails with ErrNoRoot — a
// recoverable condition: the caller falls back to a rootless, global
// execution path so commands like login keep working outside projects.
package inference
