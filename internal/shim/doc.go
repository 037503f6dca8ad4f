// Package shim is the launcher front end that runs before anything else in
// a lode invocation.
//
// It splits the raw argument list (args.go), infers the repository root and
// mode, and then decides who actually executes the user's command
// (dispatch.go): the engine embedded in the current binary, or a different
// version of lode installed in the project's node_modules. In the latter
// case the shim negotiates which compatibility flags the local binary
// understands, spawns it with the user's arguments forwarded verbatim, and
// mirrors its exit code.
//
// The splitter is deliberately hand-rolled rather than built on a flag
// framework: every token it does not recognize must pass through to the
// delegated binary untouched and in order, including tokens that look like
// flags.
package shim
