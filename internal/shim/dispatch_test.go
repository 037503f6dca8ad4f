package shim

import (
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmr-tortoise/lode/internal/config"
	"github.com/mmr-tortoise/lode/internal/inference"
	"github.com/mmr-tortoise/lode/internal/model"
)

// fakeEngine records the hand-off it receives and returns a fixed code.
type fakeEngine struct {
	called bool
	state  *model.RepoState
	args   []string
	code   int
}

func (f *fakeEngine) run(state *model.RepoState, args []string) int {
	f.called = true
	f.state = state
	f.args = args
	return f.code
}

// newTestDispatcher builds a Dispatcher with quiet collaborators: no update
// check, no log output.
func newTestDispatcher(engine Engine, settings config.Settings) *Dispatcher {
	return &Dispatcher{
		engine:     engine,
		settings:   settings,
		locator:    inference.NewLocator(),
		version:    "1.0.0",
		notify:     func(string) {},
		executable: os.Executable,
		logger:     log.New(io.Discard),
	}
}

// singlePackageRepo creates a marker-rooted repository with no workspace
// declaration and returns its root.
func singlePackageRepo(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "lode.json"), []byte(`{}`), 0o644))
	return root
}

// installLocalScript writes the given shell script as the project-local
// lode binary, with the given file mode.
func installLocalScript(t *testing.T, root, script string, mode os.FileMode) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("local-binary fixtures use shell scripts")
	}

	binDir := filepath.Join(root, "node_modules", ".bin")
	require.NoError(t, os.MkdirAll(binDir, 0o755))

	path := filepath.Join(binDir, "lode")
	require.NoError(t, os.WriteFile(path, []byte(script), mode))
	return path
}

// installLocalBinary writes an executable shell script as the project-local
// lode binary. The script records its arguments to argsFile and exits with
// the given code.
func installLocalBinary(t *testing.T, root, argsFile string, exitCode int) string {
	t.Helper()

	script := "#!/bin/sh\n"
	if argsFile != "" {
		script += `printf '%s\n' "$@" > "` + argsFile + `"` + "\n"
	}
	script += "exit " + strconv.Itoa(exitCode) + "\n"

	return installLocalScript(t, root, script, 0o755)
}

// installLocalManifest writes node_modules/lode/package.json with the given
// version string.
func installLocalManifest(t *testing.T, root, version string) {
	t.Helper()
	dir := filepath.Join(root, "node_modules", "lode")
	require.NoError(t, os.MkdirAll(dir, 0o755))
	manifest := `{"name": "lode", "version": "` + version + `"}`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "package.json"), []byte(manifest), 0o644))
}

// readRecordedArgs returns the newline-separated argv a script fixture
// recorded.
func readRecordedArgs(t *testing.T, argsFile string) []string {
	t.Helper()
	data, err := os.ReadFile(argsFile)
	require.NoError(t, err)
	return strings.Split(strings.TrimRight(string(data), "\n"), "\n")
}

// TestRun_ParseError verifies that argument conflicts abort before any
// inference, with a non-zero exit and no engine hand-off.
func TestRun_ParseError(t *testing.T) {
	engine := &fakeEngine{}
	d := newTestDispatcher(engine.run, config.Settings{})

	code := d.Run([]string{"--cwd", "/a", "--cwd", "/b"})

	assert.Equal(t, int(model.ExitGeneralError), code)
	assert.False(t, engine.called)
}

// TestRun_SkipInfer verifies the loop guard: with --skip-infer the engine
// runs immediately with no repository state, bypassing all inference.
func TestRun_SkipInfer(t *testing.T) {
	root := singlePackageRepo(t)
	engine := &fakeEngine{code: 3}
	d := newTestDispatcher(engine.run, config.Settings{})

	code := d.Run([]string{"--skip-infer", "--cwd", root, "bin"})

	assert.Equal(t, 3, code)
	require.True(t, engine.called)
	assert.Nil(t, engine.state, "skip-infer must not infer a repository")
	assert.Equal(t, []string{"bin"}, engine.args)
}

// TestRun_InferenceFailure_FallsBack verifies the designed recovery path:
// no project anywhere means a warning and a rootless engine run, never a
// crash.
func TestRun_InferenceFailure_FallsBack(t *testing.T) {
	dir := t.TempDir()
	if _, err := inference.NewLocator().Infer(dir); err == nil {
		t.Skip("an ancestor of the temp directory contains a project file")
	}

	engine := &fakeEngine{code: 5}
	d := newTestDispatcher(engine.run, config.Settings{})

	code := d.Run([]string{"--cwd", dir, "login"})

	assert.Equal(t, 5, code)
	require.True(t, engine.called)
	assert.Nil(t, engine.state)
	assert.Equal(t, []string{"login"}, engine.args)
}

// TestRun_BinaryPathOverride verifies the legacy override: inference runs
// for flag purposes, but the local binary is never spawned even though it
// exists and would exit differently.
func TestRun_BinaryPathOverride(t *testing.T) {
	root := singlePackageRepo(t)
	installLocalBinary(t, root, "", 9)
	installLocalManifest(t, root, "1.8.0")

	engine := &fakeEngine{}
	d := newTestDispatcher(engine.run, config.Settings{BinaryPathOverride: true})

	code := d.Run([]string{"--cwd", root, "build"})

	assert.Equal(t, 0, code)
	require.True(t, engine.called)
	require.NotNil(t, engine.state)
	assert.Equal(t, root, engine.state.Root)
	assert.Equal(t, model.ModeSinglePackage, engine.state.Mode)
}

// TestRun_NoLocalBinary_RunsCurrent verifies that without a local
// installation nothing is spawned and the current binary is authoritative.
func TestRun_NoLocalBinary_RunsCurrent(t *testing.T) {
	root := singlePackageRepo(t)
	engine := &fakeEngine{}
	d := newTestDispatcher(engine.run, config.Settings{})

	code := d.Run([]string{"--cwd", root, "build"})

	assert.Equal(t, 0, code)
	require.True(t, engine.called)
	require.NotNil(t, engine.state)
	assert.Equal(t, root, engine.state.Root)
}

// TestRun_LocalIsSelf_RunsCurrent verifies that when the local binary
// resolves to the currently running executable, the dispatcher does not
// spawn itself redundantly.
func TestRun_LocalIsSelf_RunsCurrent(t *testing.T) {
	root := singlePackageRepo(t)
	localPath := installLocalBinary(t, root, "", 9)

	engine := &fakeEngine{}
	d := newTestDispatcher(engine.run, config.Settings{})
	d.executable = func() (string, error) { return localPath, nil }

	code := d.Run([]string{"--cwd", root, "build"})

	assert.Equal(t, 0, code)
	assert.True(t, engine.called, "must run in-process instead of spawning itself")
}

// TestRun_Delegates verifies the full delegation path: the local binary is
// spawned with --skip-infer prepended (its version passes the gate), the
// dispatcher-facing args in order, --single-package appended for a
// single-package repository, the separator, and the forwarded args — and
// the child's exit code is mirrored.
func TestRun_Delegates(t *testing.T) {
	root := singlePackageRepo(t)
	argsFile := filepath.Join(t.TempDir(), "argv.txt")
	installLocalBinary(t, root, argsFile, 7)
	installLocalManifest(t, root, "1.7.0")

	engine := &fakeEngine{}
	d := newTestDispatcher(engine.run, config.Settings{})

	code := d.Run([]string{"run", "build", "--cwd", root, "--", "--watch"})

	assert.Equal(t, 7, code)
	assert.False(t, engine.called, "delegation must not also run the engine")
	assert.Equal(t,
		[]string{"--skip-infer", "run", "build", "--single-package", "--", "--watch"},
		readRecordedArgs(t, argsFile))
}

// TestRun_Delegates_OldLocalVersion verifies the version gate: a local
// installation older than the skip-infer requirement is spawned without the
// flag.
func TestRun_Delegates_OldLocalVersion(t *testing.T) {
	root := singlePackageRepo(t)
	argsFile := filepath.Join(t.TempDir(), "argv.txt")
	installLocalBinary(t, root, argsFile, 0)
	installLocalManifest(t, root, "1.6.3")

	d := newTestDispatcher((&fakeEngine{}).run, config.Settings{})

	code := d.Run([]string{"run", "build", "--cwd", root})

	assert.Equal(t, 0, code)
	argv := readRecordedArgs(t, argsFile)
	assert.NotContains(t, argv, "--skip-infer")
	assert.Equal(t, []string{"run", "build", "--single-package", "--"}, argv)
}

// TestRun_Delegates_ChildKilledBySignal verifies the exit-code fallback: a
// child terminated by a signal has no exit code to mirror, so the dispatcher
// reports the dedicated unknown-exit code instead.
func TestRun_Delegates_ChildKilledBySignal(t *testing.T) {
	root := singlePackageRepo(t)
	installLocalScript(t, root, "#!/bin/sh\nkill -KILL $$\n", 0o755)
	installLocalManifest(t, root, "1.8.0")

	engine := &fakeEngine{}
	d := newTestDispatcher(engine.run, config.Settings{})

	code := d.Run([]string{"build", "--cwd", root})

	assert.Equal(t, int(model.ExitChildUnknown), code)
	assert.False(t, engine.called)
}

// TestRun_Delegates_SpawnFailure_IsFatal verifies that a local binary that
// exists but cannot be started aborts the invocation. The file was found
// moments before the spawn, so a start failure means a broken installation,
// not a reason to silently run the current binary instead.
func TestRun_Delegates_SpawnFailure_IsFatal(t *testing.T) {
	root := singlePackageRepo(t)
	installLocalScript(t, root, "#!/bin/sh\nexit 0\n", 0o644) // execute bit missing
	installLocalManifest(t, root, "1.8.0")

	engine := &fakeEngine{}
	d := newTestDispatcher(engine.run, config.Settings{})

	code := d.Run([]string{"build", "--cwd", root})

	assert.Equal(t, int(model.ExitGeneralError), code)
	assert.False(t, engine.called)
}

// TestRun_GateFailure_IsFatal verifies that a corrupted local manifest
// aborts the invocation instead of guessing.
func TestRun_GateFailure_IsFatal(t *testing.T) {
	root := singlePackageRepo(t)
	installLocalBinary(t, root, "", 0)
	// Local binary exists but its manifest is garbage.
	dir := filepath.Join(root, "node_modules", "lode")
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "package.json"), []byte(`{"version":`), 0o644))

	engine := &fakeEngine{}
	d := newTestDispatcher(engine.run, config.Settings{})

	code := d.Run([]string{"build", "--cwd", root})

	assert.Equal(t, int(model.ExitGeneralError), code)
	assert.False(t, engine.called)
}

// TestRun_UpdateNotification verifies suppression rules: the notifier runs
// for ordinary invocations, and is skipped for pure-output flags and when
// disabled by settings.
func TestRun_UpdateNotification(t *testing.T) {
	root := singlePackageRepo(t)

	var notified int
	d := newTestDispatcher((&fakeEngine{}).run, config.Settings{})
	d.notify = func(string) { notified++ }

	d.Run([]string{"--cwd", root, "build"})
	assert.Equal(t, 1, notified)

	d.Run([]string{"--cwd", root, "build", "--json"})
	assert.Equal(t, 1, notified, "pure-output invocations must stay clean")

	d.settings.DisableUpdateCheck = true
	d.Run([]string{"--cwd", root, "build"})
	assert.Equal(t, 1, notified)
}

// --- buildChildArgv unit tests ---

// TestBuildChildArgv_SinglePackageDedup verifies --single-package is not
// appended twice when the user already passed it.
func TestBuildChildArgv_SinglePackageDedup(t *testing.T) {
	state := &model.RepoState{Root: "/repo", Mode: model.ModeSinglePackage}
	args := &Args{LodeArgs: []string{"run", "build", "--single-package"}}

	argv := buildChildArgv(state, args, true)

	assert.Equal(t, []string{"--skip-infer", "run", "build", "--single-package", "--"}, argv)
}

// TestBuildChildArgv_MultiPackage verifies no mode flag is added for
// multi-package repositories.
func TestBuildChildArgv_MultiPackage(t *testing.T) {
	state := &model.RepoState{Root: "/repo", Mode: model.ModeMultiPackage}
	args := &Args{LodeArgs: []string{"run", "build"}, ForwardedArgs: []string{"--watch"}}

	argv := buildChildArgv(state, args, false)

	assert.Equal(t, []string{"run", "build", "--", "--watch"}, argv)
}

// TestBuildChildArgv_ConsumesArgs verifies the token slices are moved out
// of the Args value when the child command line is built.
func TestBuildChildArgv_ConsumesArgs(t *testing.T) {
	state := &model.RepoState{Root: "/repo", Mode: model.ModeMultiPackage}
	args := &Args{LodeArgs: []string{"run"}, ForwardedArgs: []string{"x"}}

	buildChildArgv(state, args, false)

	assert.Nil(t, args.LodeArgs)
	assert.Nil(t, args.ForwardedArgs)
}
