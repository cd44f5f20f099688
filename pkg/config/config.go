// SPDX-License-Identifier: Apache-2.0
package config

import (
	"fmt"
	"os"
	"path/filepath"
)

const (
	// Configuration
	AppName          = "keep"
	EnvPrefix        = "KEEP"   // Environment variable prefix for Viper
	ConfigFileName   = "config" // Config file name for XDG config dir (without extension)
	ConfigType       = "yaml"   // Config file type
	DefaultConfigExt = ".yaml"  // Default config file extension

	// ConfigVersion is the config layout written by this build
	ConfigVersion = "1.0.0"

	// DefaultStoreDirName is created under the home directory when no store root is configured
	DefaultStoreDirName = ".password-store"
)

// Paths holds all XDG-compliant directory paths
type Paths struct {
	DataDir   string
	CacheDir  string
	ConfigDir string

	// Subdirectories
	KeysDir string // OpenPGP keyring directory
	LogFile string // Debug log written by the CLI
}

var (
	// GlobalPaths is the global paths instance
	GlobalPaths *Paths
)

func init() {
	GlobalPaths = GetPaths()
}

// GetPaths returns XDG-compliant directory paths
func GetPaths() *Paths {
	dataHome := xdgDir("XDG_DATA_HOME", ".local", "share")
	cacheHome := xdgDir("XDG_CACHE_HOME", ".cache")
	configHome := xdgDir("XDG_CONFIG_HOME", ".config")

	dataDir := filepath.Join(dataHome, AppName)

	return &Paths{
		DataDir:   dataDir,
		CacheDir:  filepath.Join(cacheHome, AppName),
		ConfigDir: filepath.Join(configHome, AppName),
		KeysDir:   filepath.Join(dataDir, "keys"),
		LogFile:   filepath.Join(dataDir, "debug.log"),
	}
}

func xdgDir(env string, fallback ...string) string {
	if dir := os.Getenv(env); dir != "" {
		return dir
	}
	home, err := os.UserHomeDir()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to get home directory: %v\n", err)
		os.Exit(1)
	}
	return filepath.Join(append([]string{home}, fallback...)...)
}

// DefaultConfigPath returns the user config file inside the XDG config dir
func DefaultConfigPath() string {
	return filepath.Join(GlobalPaths.ConfigDir, ConfigFileName+DefaultConfigExt)
}

// DefaultStorePath returns ~/.password-store, or "" when the home directory is unknown
func DefaultStorePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, DefaultStoreDirName)
}

// InitDirs creates all necessary directories
func InitDirs() error {
	dirs := []string{
		GlobalPaths.ConfigDir,
		GlobalPaths.DataDir,
		GlobalPaths.CacheDir,
	}

	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}

	// Private key material lives here
	if err := os.MkdirAll(GlobalPaths.KeysDir, 0700); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", GlobalPaths.KeysDir, err)
	}

	return nil
}
