// SPDX-License-Identifier: Apache-2.0
package config

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/hashicorp/go-version"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// ErrUnknownKey is returned when a setting name is not present in any section
var ErrUnknownKey = errors.New("unknown configuration key")

// Settings is the typed view of the effective configuration
type Settings struct {
	Store   StoreSettings   `mapstructure:"settings"`
	Keyring KeyringSettings `mapstructure:"keyring"`
	App     AppSettings     `mapstructure:"app"`
}

// StoreSettings holds the "settings" section
type StoreSettings struct {
	PathStore          string   `mapstructure:"path_store"`
	IgnoredFiles       []string `mapstructure:"ignored_files"`
	IgnoredDirectories []string `mapstructure:"ignored_directories"`
	DisabledKeys       []string `mapstructure:"disabled_keys"`
}

// KeyringSettings holds the "keyring" section
type KeyringSettings struct {
	Location string `mapstructure:"keyring_location"`
	Armor    bool   `mapstructure:"armor"`
}

// AppSettings holds the "app" section
type AppSettings struct {
	LogLevel           string `mapstructure:"log_level"`
	UseTUI             bool   `mapstructure:"use_tui"`
	RememberPassphrase bool   `mapstructure:"remember_passphrase"`
	ConfigVersion      string `mapstructure:"config_version"`
}

// Config is the effective configuration: bundled defaults deep-merged with the
// user file. Settings are addressed by bare name and located through a
// reverse index (setting name -> section).
type Config struct {
	v        *viper.Viper
	defaults *viper.Viper
	path     string

	index    map[string]string
	settings Settings
	extra    map[string]interface{}
}

// Load reads the bundled defaults and merges the user file at path on top.
// A missing user file is not an error.
func Load(path string) (*Config, error) {
	defaults, err := readDefaults()
	if err != nil {
		return nil, err
	}
	fillDynamicDefaults(defaults)

	v, err := readDefaults()
	if err != nil {
		return nil, err
	}

	user, err := readUserFile(path)
	if err != nil {
		return nil, err
	}
	if user != nil {
		if err := v.MergeConfigMap(user.AllSettings()); err != nil {
			return nil, fmt.Errorf("failed to merge config file %s: %w", path, err)
		}
		if !checkConfigVersion(path, user.GetString("app.config_version")) {
			v.Set("app.config_version", ConfigVersion)
		}
	}
	fillDynamicDefaults(v)

	c := &Config{v: v, defaults: defaults, path: path}
	if err := c.refresh(); err != nil {
		return nil, err
	}

	log.Debugf("Loaded config (%d settings) from %s", len(c.index), path)
	return c, nil
}

func readDefaults() (*viper.Viper, error) {
	v := viper.New()
	v.SetConfigType(ConfigType)
	if err := v.ReadConfig(bytes.NewReader(defaultsYAML)); err != nil {
		return nil, fmt.Errorf("failed to read bundled defaults: %w", err)
	}
	return v, nil
}

// readUserFile returns nil when the file does not exist
func readUserFile(path string) (*viper.Viper, error) {
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to access config file %s: %w", path, err)
	}

	// Temporary instance holding only the user file
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType(ConfigType)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	return v, nil
}

// fillDynamicDefaults resolves defaults that depend on the environment
func fillDynamicDefaults(v *viper.Viper) {
	if v.GetString("settings.path_store") == "" {
		v.Set("settings.path_store", DefaultStorePath())
	}
	if v.GetString("keyring.keyring_location") == "" {
		v.Set("keyring.keyring_location", GlobalPaths.KeysDir)
	}
}

// checkConfigVersion reports whether the file version is current or newer.
// Newer files are loaded anyway with a warning.
func checkConfigVersion(path, fileVersion string) bool {
	current := version.Must(version.NewVersion(ConfigVersion))
	if fileVersion == "" {
		return false
	}

	fv, err := version.NewVersion(fileVersion)
	if err != nil {
		log.Warnf("Ignoring invalid config_version %q in %s", fileVersion, path)
		return false
	}

	switch {
	case fv.GreaterThan(current):
		log.Warnf("Config file %s was written by a newer version (%s > %s)", path, fv, current)
		return true
	case fv.LessThan(current):
		log.Debugf("Upgrading config_version %s -> %s", fv, current)
		return false
	}
	return true
}

// refresh rebuilds the reverse index and the typed view after a change
func (c *Config) refresh() error {
	all := c.v.AllSettings()
	keys := flattenKeys(all, "")
	sort.Strings(keys)

	index := make(map[string]string, len(keys))
	extra := make(map[string]interface{})
	for _, full := range keys {
		section, name, ok := strings.Cut(full, ".")
		if !ok {
			// Top-level scalars have no section; they only pass through
			extra[full] = c.v.Get(full)
			continue
		}
		if existing, dup := index[name]; dup {
			log.Debugf("Setting %q exists in sections %q and %q, using %q", name, existing, section, existing)
		} else {
			index[name] = section
		}
		if GetKeyDefinition(full) == nil {
			extra[full] = c.v.Get(full)
		}
	}

	var settings Settings
	if err := c.v.Unmarshal(&settings); err != nil {
		return fmt.Errorf("failed to decode config: %w", err)
	}

	c.index = index
	c.extra = extra
	c.settings = settings
	return nil
}

// Settings returns the typed view of the effective configuration
func (c *Config) Settings() Settings {
	return c.settings
}

// Extra returns settings not known to this build, keyed "section.name"
func (c *Config) Extra() map[string]interface{} {
	out := make(map[string]interface{}, len(c.extra))
	for k, v := range c.extra {
		out[k] = v
	}
	return out
}

// Path returns the user config file path
func (c *Config) Path() string {
	return c.path
}

// Keys returns every setting name, sorted
func (c *Config) Keys() []string {
	keys := make([]string, 0, len(c.index))
	for k := range c.index {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Section returns the section holding the named setting
func (c *Config) Section(key string) (string, bool) {
	section, ok := c.index[key]
	return section, ok
}

// resolve accepts a bare setting name or a full "section.name" key
func (c *Config) resolve(key string) (string, error) {
	key = strings.ToLower(key)
	if section, ok := c.index[key]; ok {
		return section + "." + key, nil
	}
	if _, name, ok := strings.Cut(key, "."); ok {
		if _, known := c.index[name]; known && c.v.IsSet(key) {
			return key, nil
		}
	}
	return "", fmt.Errorf("%w: %s", ErrUnknownKey, key)
}

// Get returns the effective value of a setting
func (c *Config) Get(key string) (interface{}, error) {
	full, err := c.resolve(key)
	if err != nil {
		return nil, err
	}
	return c.v.Get(full), nil
}

// Change updates a setting and persists the whole configuration.
// It returns false without writing when the value is unchanged.
func (c *Config) Change(key string, value interface{}) (bool, error) {
	full, err := c.resolve(key)
	if err != nil {
		return false, err
	}

	if def := GetKeyDefinition(full); def != nil {
		if def.ReadOnly {
			return false, fmt.Errorf("key '%s' is read-only", full)
		}
		value = normalizeValue(def, value)
		if err := ValidateValue(full, value); err != nil {
			return false, err
		}
	}

	if sameValue(c.v.Get(full), value) {
		log.Debugf("Config %s unchanged", full)
		return false, nil
	}

	c.v.Set(full, value)
	if err := c.refresh(); err != nil {
		return false, err
	}
	if err := c.Save(); err != nil {
		return false, err
	}

	log.Debugf("Config %s changed", full)
	return true, nil
}

// Save writes the full effective configuration to the user file
func (c *Config) Save() error {
	if err := os.MkdirAll(filepath.Dir(c.path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	// Write config using the safe pattern - try SafeWriteConfigAs first
	if err := c.v.SafeWriteConfigAs(c.path); err != nil {
		// If file already exists, overwrite it
		if _, ok := err.(viper.ConfigFileAlreadyExistsError); ok {
			if err := c.v.WriteConfigAs(c.path); err != nil {
				return fmt.Errorf("failed to write config: %w", err)
			}
		} else {
			return fmt.Errorf("failed to create config: %w", err)
		}
	}

	return nil
}

// InitViper enables KEEP_* environment overrides for the CLI flags bound in BindFlags
func InitViper() {
	viper.SetEnvPrefix(EnvPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()
}

// BindFlags binds all relevant cobra flags to Viper
func BindFlags(flags *pflag.FlagSet) error {
	flagsToBind := []string{
		"use-tui",
		"log-level",
	}

	for _, flagName := range flagsToBind {
		if err := viper.BindPFlag(flagName, flags.Lookup(flagName)); err != nil {
			return fmt.Errorf("failed to bind flag %s: %w", flagName, err)
		}
	}

	return nil
}

// LogLevel returns the log level, preferring an explicit flag or KEEP_LOG_LEVEL
func (c *Config) LogLevel() string {
	if viper.IsSet("log-level") {
		return viper.GetString("log-level")
	}
	return c.settings.App.LogLevel
}

// UseTUI reports whether interactive prompts are enabled, preferring an explicit flag or KEEP_USE_TUI
func (c *Config) UseTUI() bool {
	if viper.IsSet("use-tui") {
		return viper.GetBool("use-tui")
	}
	return c.settings.App.UseTUI
}
