// Package config holds the launcher's ambient configuration.
//
// Two concerns live here:
//
//   - Settings: process-wide overrides read from the environment exactly
//     once at startup (via viper env bindings) and passed into the
//     dispatcher as an explicit value, so delegation decisions stay
//     testable without mutating real environment state.
//
//   - The user config directory and the auth token file inside it, used by
//     the login/logout commands. The token lives in
//     $XDG_CONFIG_HOME/lode/auth.yaml (~/.config/lode on most systems).
package config
