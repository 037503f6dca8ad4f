package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

// AppName is the directory name used under the user config root.
const AppName = "lode"

// authFileName holds the auth token written by `lode login`.
const authFileName = "auth.yaml"

// configDirOverride allows tests to override the config directory.
// os.UserHomeDir() doesn't reliably respect the HOME environment variable
// on all platforms, so tests use an explicit override instead.
var configDirOverride string

// Reset clears test overrides. Call from test cleanup to restore defaults.
func Reset() {
	configDirOverride = ""
}

// SetConfigDirOverride sets a custom config directory path, primarily
// for testing.
func SetConfigDirOverride(dir string) {
	configDirOverride = dir
}

// Dir returns the lode config directory: $XDG_CONFIG_HOME/lode when set,
// otherwise ~/.config/lode.
func Dir() (string, error) {
	if configDirOverride != "" {
		return configDirOverride, nil
	}

	configRoot := os.Getenv("XDG_CONFIG_HOME")
	if configRoot == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		configRoot = filepath.Join(home, ".config")
	}

	return filepath.Join(configRoot, AppName), nil
}

// SaveToken persists the auth token to the config directory, creating the
// directory if needed. The file is written with user-only permissions
// since the token is a credential.
func SaveToken(token string) error {
	dir, err := Dir()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("failed to create config directory %s: %w", dir, err)
	}

	v := viper.New()
	v.SetConfigFile(filepath.Join(dir, authFileName))
	v.SetConfigType("yaml")
	v.Set("token", token)
	if err := v.WriteConfig(); err != nil {
		return fmt.Errorf("failed to write auth config: %w", err)
	}
	return nil
}

// Token returns the stored auth token, or the empty string when the user
// has never logged in. Read errors other than a missing file are reported.
func Token() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}

	v := viper.New()
	v.SetConfigFile(filepath.Join(dir, authFileName))
	v.SetConfigType("yaml")
	if err := v.ReadInConfig(); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", nil
		}
		return "", fmt.Errorf("failed to read auth config: %w", err)
	}
	return v.GetString("token"), nil
}

// DeleteToken removes the stored auth token. Deleting when no token exists
// is not an error; logout is idempotent.
func DeleteToken() error {
	dir, err := Dir()
	if err != nil {
		return err
	}
	if err := os.Remove(filepath.Join(dir, authFileName)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove auth config: %w", err)
	}
	return nil
}
