package config

import (
	"github.com/spf13/viper"
)

// Environment variables understood by the launcher.
const (
	// envBinaryPath is a legacy override: when set to any value, the
	// launcher never delegates to a local installation. Inference still
	// runs so mode-dependent flags can be computed, but the current binary
	// always executes the command. Dynamically pointing at a binary is
	// fundamentally incompatible with local delegation, so the two features
	// exclude each other.
	envBinaryPath = "LODE_BINARY_PATH"

	// envNoUpdateNotifier suppresses the background update check when set
	// to any value.
	envNoUpdateNotifier = "LODE_NO_UPDATE_NOTIFIER"

	// envCI is the conventional CI marker; update notices are noise in
	// build logs.
	envCI = "CI"

	// envAPIBaseURL overrides the release API endpoint queried by the
	// update check, primarily for tests.
	envAPIBaseURL = "LODE_API"
)

// defaultAPIBaseURL is where released versions of lode are published.
const defaultAPIBaseURL = "https://api.github.com"

// Settings are the process-wide configuration values the dispatcher needs.
// They are read once at startup and passed by value; nothing re-reads the
// environment afterwards.
type Settings struct {
	// BinaryPathOverride reports whether LODE_BINARY_PATH is present in the
	// environment, which disables local-binary delegation (legacy behavior).
	// Presence alone matters: the launcher never interprets the value, and
	// an empty value still counts as set.
	BinaryPathOverride bool

	// DisableUpdateCheck suppresses the best-effort update notification.
	DisableUpdateCheck bool

	// APIBaseURL is the base URL for the release API used by the update
	// check.
	APIBaseURL string
}

// FromEnv reads launcher settings from the environment.
func FromEnv() Settings {
	v := viper.New()
	v.SetDefault("api_base_url", defaultAPIBaseURL)

	// AllowEmptyEnv makes IsSet treat a present-but-empty variable as set,
	// which is what the binary-path override needs.
	v.AllowEmptyEnv(true)

	// BindEnv associates each setting with its environment variable; the
	// bindings are explicit rather than prefix-derived because CI does not
	// share the LODE_ prefix.
	_ = v.BindEnv("binary_path", envBinaryPath)
	_ = v.BindEnv("no_update_notifier", envNoUpdateNotifier)
	_ = v.BindEnv("ci", envCI)
	_ = v.BindEnv("api_base_url", envAPIBaseURL)

	return Settings{
		BinaryPathOverride: v.IsSet("binary_path"),
		DisableUpdateCheck: v.GetString("no_update_notifier") != "" || v.GetString("ci") != "",
		APIBaseURL:         v.GetString("api_base_url"),
	}
}
