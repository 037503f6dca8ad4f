package shim

import (
	"fmt"
	"os"
	"slices"
)

// Flag spellings the splitter recognizes outside forwarding mode.
const (
	flagSkipInfer     = "--skip-infer"
	flagCwd           = "--cwd"
	flagSinglePackage = "--single-package"

	// forwardingSeparator switches the splitter into forwarding mode
	// permanently; everything after it belongs to the task being run, not
	// to lode.
	forwardingSeparator = "--"
)

// pureOutputFlags are the flag spellings whose stdout must be directly
// machine-parseable and must not be mixed with additional output such as
// the update notice.
var pureOutputFlags = []string{
	"--json",
	"--dry",
	"--dry-run",
	"--dry=json",
	"--graph",
	"--dry-run=json",
}

// Args is the launcher's view of one invocation's argument list, split into
// the pieces the dispatcher cares about. It is constructed once per process
// and not mutated afterwards, except that the token slices are moved out
// when a delegated command line is assembled.
type Args struct {
	// CWD is the working directory inference starts from: the --cwd value
	// when given, the process working directory otherwise.
	CWD string

	// SkipInfer is set when the parent process already performed inference
	// and this (child) invocation should trust its result.
	SkipInfer bool

	// LodeArgs are the dispatcher-facing tokens, in original order.
	LodeArgs []string

	// ForwardedArgs are the tokens after the forwarding separator, in
	// original order, unexamined.
	ForwardedArgs []string
}

// ParseArgs splits the raw argument list (excluding the program name).
//
// The scan is a single left-to-right pass. Branch order matters and mirrors
// the splitter's contract: forwarding mode captures everything, --skip-infer
// and the separator are recognized next, then a pending --cwd consumes its
// value, and only then is a new --cwd token considered. Consequently a token
// following --cwd is taken as its value even when it looks like a flag, with
// two exceptions: --skip-infer and the separator are matched first, so
// neither can ever be consumed as a --cwd value.
func ParseArgs(raw []string) (*Args, error) {
	var (
		cwd           string
		cwdSet        bool
		pendingCwd    bool
		skipInfer     bool
		forwarding    bool
		lodeArgs      []string
		forwardedArgs []string
	)

	for _, arg := range raw {
		switch {
		case forwarding:
			forwardedArgs = append(forwardedArgs, arg)
		case arg == flagSkipInfer:
			skipInfer = true
		case arg == forwardingSeparator:
			forwarding = true
		case pendingCwd:
			cwd = arg
			cwdSet = true
			pendingCwd = false
		case arg == flagCwd:
			if cwdSet {
				return nil, fmt.Errorf("cannot have multiple `--cwd` flags in command")
			}
			pendingCwd = true
		default:
			lodeArgs = append(lodeArgs, arg)
		}
	}

	if pendingCwd {
		return nil, fmt.Errorf("no value assigned to `--cwd` argument")
	}

	if !cwdSet {
		wd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("cannot determine working directory: %w", err)
		}
		cwd = wd
	}

	return &Args{
		CWD:           cwd,
		SkipInfer:     skipInfer,
		LodeArgs:      lodeArgs,
		ForwardedArgs: forwardedArgs,
	}, nil
}

// HasPureOutputFlags reports whether any dispatcher-facing argument forces
// machine-parseable stdout. Callers use it to suppress decorative output so
// piped consumers see only the parseable payload.
func (a *Args) HasPureOutputFlags() bool {
	return slices.ContainsFunc(a.LodeArgs, func(arg string) bool {
		return slices.Contains(pureOutputFlags, arg)
	})
}
