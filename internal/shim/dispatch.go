package shim

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"slices"

	"github.com/charmbracelet/log"

	"github.com/mmr-tortoise/lode/internal/config"
	"github.com/mmr-tortoise/lode/internal/inference"
	"github.com/mmr-tortoise/lode/internal/model"
	"github.com/mmr-tortoise/lode/internal/update"
	"github.com/mmr-tortoise/lode/internal/versiongate"
)

// Engine is the in-process execution collaborator the dispatcher hands off
// to when the current binary is the one that should run the command. The
// state is nil when inference was skipped or failed; global commands must
// still work in that rootless mode.
type Engine func(state *model.RepoState, args []string) int

// Dispatcher decides, for one invocation, which installed copy of lode
// executes the user's command and hands execution over to it.
//
// All collaborators are injected: the engine, the settings (read from the
// environment once at startup), the locator, and — for tests — the notifier
// and the current-executable lookup. A Dispatcher holds no state between
// invocations.
type Dispatcher struct {
	engine   Engine
	settings config.Settings
	locator  *inference.Locator
	version  string

	// notify runs the best-effort update check. Swapped out in tests so no
	// network is touched.
	notify func(currentVersion string)

	// executable resolves the path of the currently running binary.
	// Test seam for os.Executable.
	executable func() (string, error)

	logger *log.Logger
}

// NewDispatcher wires a Dispatcher with production collaborators.
func NewDispatcher(engine Engine, settings config.Settings, version string) *Dispatcher {
	checker := update.NewChecker(update.WithBaseURL(settings.APIBaseURL))
	return &Dispatcher{
		engine:     engine,
		settings:   settings,
		locator:    inference.NewLocator(),
		version:    version,
		notify:     checker.Notify,
		executable: os.Executable,
		logger:     log.NewWithOptions(os.Stderr, log.Options{ReportTimestamp: false}),
	}
}

// Run executes one dispatch cycle and returns the process exit code.
//
// The flow follows a fixed order: parse arguments (fatal on conflict),
// maybe notify about updates, honor --skip-infer, honor the legacy binary
// path override, infer the repository, and finally run the correct lode.
func (d *Dispatcher) Run(rawArgs []string) int {
	args, err := ParseArgs(rawArgs)
	if err != nil {
		d.logger.Error(err.Error())
		return int(model.ExitGeneralError)
	}

	// The update notice is suppressed whenever stdout must stay
	// machine-parseable, and in CI. Whatever happens inside is discarded.
	if !args.HasPureOutputFlags() && !d.settings.DisableUpdateCheck {
		d.notify(d.version)
	}

	// A parent of a different version already inferred the repository and
	// told us to trust it. Re-inferring here could re-delegate and loop.
	if args.SkipInfer {
		return d.engine(nil, args.LodeArgs)
	}

	// Legacy override: LODE_BINARY_PATH callers pick the binary themselves,
	// which is incompatible with local delegation. Inference still runs so
	// mode-dependent decisions are made, and its failure here is fatal.
	if d.settings.BinaryPathOverride {
		state, err := d.locator.Infer(args.CWD)
		if err != nil {
			d.logger.Error("repository inference failed", "err", err)
			return int(model.ExitGeneralError)
		}
		return d.engine(state, args.LodeArgs)
	}

	state, err := d.locator.Infer(args.CWD)
	if err != nil {
		// Recoverable by design: global commands such as login must work
		// without a detected project.
		d.logger.Warn("repository inference failed; running as global lode", "err", err)
		return d.engine(nil, args.LodeArgs)
	}

	code, err := d.runCorrectLode(state, args)
	if err != nil {
		d.logger.Error(err.Error())
		return int(model.ExitGeneralError)
	}
	return code
}

// runCorrectLode runs the command with the right copy of lode: the current
// binary when there is nothing local to delegate to (or we already are the
// local copy), the local installation otherwise.
func (d *Dispatcher) runCorrectLode(state *model.RepoState, args *Args) (int, error) {
	localPath := filepath.Join(state.Root, "node_modules", ".bin", localBinaryName())

	runCurrent, err := d.shouldRunCurrent(localPath)
	if err != nil {
		return 0, err
	}
	if runCurrent {
		return d.engine(state, args.LodeArgs), nil
	}

	canonical, err := filepath.EvalSymlinks(localPath)
	if err != nil {
		return 0, fmt.Errorf("cannot resolve local lode binary %s: %w", localPath, err)
	}
	return d.spawnLocal(state, canonical, args)
}

// shouldRunCurrent reports whether the current binary is authoritative:
// either no local installation exists, or the local binary resolves to the
// file we are already running (delegating would spawn ourselves).
func (d *Dispatcher) shouldRunCurrent(localPath string) (bool, error) {
	// Existence is checked before canonicalization; EvalSymlinks fails on
	// paths that do not exist.
	if _, err := os.Stat(localPath); err != nil {
		if os.IsNotExist(err) {
			return true, nil
		}
		return false, fmt.Errorf("cannot stat local lode binary %s: %w", localPath, err)
	}

	localCanonical, err := filepath.EvalSymlinks(localPath)
	if err != nil {
		return false, fmt.Errorf("cannot resolve local lode binary %s: %w", localPath, err)
	}

	exe, err := d.executable()
	if err != nil {
		return false, fmt.Errorf("cannot determine current executable: %w", err)
	}
	exeCanonical, err := filepath.EvalSymlinks(exe)
	if err != nil {
		return false, fmt.Errorf("cannot resolve current executable %s: %w", exe, err)
	}

	return localCanonical == exeCanonical, nil
}

// buildChildArgv assembles the argument vector forwarded to the local
// binary. It consumes the token slices from args: once a child command line
// is built, the original Args are spent.
//
// Layout: [--skip-infer] <dispatcher-facing args> [--single-package] -- <forwarded args>
// --skip-infer is only prepended when the local version understands it, and
// --single-package only when the parent inferred single-package mode and
// the user did not pass the flag themselves.
func buildChildArgv(state *model.RepoState, args *Args, supportsSkipInfer bool) []string {
	var argv []string
	if supportsSkipInfer {
		argv = append(argv, flagSkipInfer)
	}

	hasSinglePackageFlag := slices.Contains(args.LodeArgs, flagSinglePackage)
	argv = append(argv, args.LodeArgs...)
	args.LodeArgs = nil

	if state.Mode == model.ModeSinglePackage && !hasSinglePackageFlag {
		argv = append(argv, flagSinglePackage)
	}

	argv = append(argv, forwardingSeparator)
	argv = append(argv, args.ForwardedArgs...)
	args.ForwardedArgs = nil

	return argv
}

// spawnLocal executes the local lode binary as a child process and blocks
// until it exits.
//
// The child runs with the canonicalized repository root as its working
// directory and inherits the parent's standard streams, so interactive
// output reaches the user unmodified. The returned code is the child's exit
// code, or ExitChildUnknown when it cannot be determined (e.g., the child
// was killed by a signal). A failure to spawn at all is fatal — the binary
// existed moments ago, so this indicates a broken installation.
func (d *Dispatcher) spawnLocal(state *model.RepoState, localPath string, args *Args) (int, error) {
	d.logger.Info("running local lode binary", "path", localPath)

	cwd, err := filepath.EvalSymlinks(state.Root)
	if err != nil {
		return 0, fmt.Errorf("cannot resolve repository root %s: %w", state.Root, err)
	}

	supportsSkipInfer, err := versiongate.SupportsSkipInfer(state.Root)
	if err != nil {
		return 0, err
	}

	cmd := exec.Command(localPath, buildChildArgv(state, args, supportsSkipInfer)...)
	cmd.Dir = cwd
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	if err := cmd.Run(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			if code := exitErr.ExitCode(); code >= 0 {
				return code, nil
			}
			// Terminated by signal; there is no exit code to mirror.
			return int(model.ExitChildUnknown), nil
		}
		return 0, fmt.Errorf("failed to execute local lode binary %s: %w", localPath, err)
	}
	return int(model.ExitSuccess), nil
}

// localBinaryName is the file name of the project-local lode entry point
// installed by the package manager under node_modules/.bin.
func localBinaryName() string {
	if runtime.GOOS == "windows" {
		return "lode.cmd"
	}
	return "lode"
}
