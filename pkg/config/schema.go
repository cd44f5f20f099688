// SPDX-License-Identifier: Apache-2.0
package config

import (
	"fmt"
	"os"
	"reflect"
	"regexp"
	"slices"
	"strings"

	"github.com/spf13/cast"
)

// ConfigKeyDefinition defines metadata for a configuration key
type ConfigKeyDefinition struct {
	Key         string      // Configuration key (section.name)
	Type        string      // "string", "bool", "enum", "list", "path"
	Default     interface{} // Default value
	Description string      // Help text

	EnumValues []string // Valid values for enum type (if Type="enum")
	Pattern    string   // Regex for strings, or for every item of a list
	ReadOnly   bool     // Maintained by keep itself
}

// ConfigRegistry holds all configuration keys known to this build.
// Keys outside the registry are preserved but not validated.
var ConfigRegistry = map[string]ConfigKeyDefinition{
	"settings.path_store": {
		Key:         "settings.path_store",
		Type:        "path",
		Default:     "~/" + DefaultStoreDirName,
		Description: "Root directory of the password store",
	},

	"settings.ignored_files": {
		Key:         "settings.ignored_files",
		Type:        "list",
		Default:     []string{},
		Description: "Secrets hidden from the tree (paths relative to the store root)",
	},

	"settings.ignored_directories": {
		Key:         "settings.ignored_directories",
		Type:        "list",
		Default:     []string{},
		Description: "Folders hidden from the tree (paths relative to the store root)",
	},

	"settings.disabled_keys": {
		Key:         "settings.disabled_keys",
		Type:        "list",
		Default:     []string{},
		Description: "Key ids excluded from the recipient set",
		Pattern:     "^[0-9A-F]{16}$",
	},

	"keyring.keyring_location": {
		Key:         "keyring.keyring_location",
		Type:        "path",
		Default:     "", // Resolved to GlobalPaths.KeysDir at load
		Description: "Directory holding the OpenPGP keyring",
	},

	"keyring.armor": {
		Key:         "keyring.armor",
		Type:        "bool",
		Default:     true,
		Description: "Write secrets and exported keys ASCII-armored",
	},

	"app.log_level": {
		Key:         "app.log_level",
		Type:        "enum",
		Default:     "info",
		Description: "Log verbosity level",
		EnumValues:  []string{"disabled", "debug", "info", "warn", "error"},
	},

	"app.use_tui": {
		Key:         "app.use_tui",
		Type:        "bool",
		Default:     true,
		Description: "Use TUI for interactive prompts",
	},

	"app.remember_passphrase": {
		Key:         "app.remember_passphrase",
		Type:        "bool",
		Default:     false,
		Description: "Cache the key passphrase in the OS keyring",
	},

	"app.config_version": {
		Key:         "app.config_version",
		Type:        "string",
		Default:     ConfigVersion,
		Description: "Config layout version",
		Pattern:     `^[0-9]+\.[0-9]+\.[0-9]+$`,
		ReadOnly:    true,
	},
}

// GetKeyDefinition returns the definition for a full key, or nil if unknown
func GetKeyDefinition(key string) *ConfigKeyDefinition {
	def, ok := ConfigRegistry[key]
	if !ok {
		return nil
	}
	return &def
}

// ValidateValue validates a value against the key's definition.
// Unknown keys are accepted as-is.
func ValidateValue(key string, value interface{}) error {
	def := GetKeyDefinition(key)
	if def == nil {
		return nil
	}

	switch def.Type {
	case "bool":
		if _, ok := value.(bool); !ok {
			return fmt.Errorf("key '%s' must be a boolean (got %T)", key, value)
		}

	case "string", "path":
		str, ok := value.(string)
		if !ok {
			return fmt.Errorf("key '%s' must be a string (got %T)", key, value)
		}
		if def.Pattern != "" {
			if err := matchPattern(key, def.Pattern, str); err != nil {
				return err
			}
		}
		if def.Type == "path" {
			if str == "" {
				return fmt.Errorf("key '%s' must not be empty", key)
			}
			if err := validateDirPath(str); err != nil {
				return fmt.Errorf("key '%s': %w", key, err)
			}
		}

	case "enum":
		str, ok := value.(string)
		if !ok {
			return fmt.Errorf("key '%s' must be a string (got %T)", key, value)
		}
		if !slices.Contains(def.EnumValues, str) {
			return fmt.Errorf("key '%s' must be one of %v (got '%s')", key, def.EnumValues, str)
		}

	case "list":
		items, ok := value.([]string)
		if !ok {
			return fmt.Errorf("key '%s' must be a list of strings (got %T)", key, value)
		}
		if def.Pattern != "" {
			for _, item := range items {
				if err := matchPattern(key, def.Pattern, item); err != nil {
					return err
				}
			}
		}
	}

	return nil
}

func matchPattern(key, pattern, value string) error {
	matched, err := regexp.MatchString(pattern, value)
	if err != nil {
		return fmt.Errorf("invalid pattern for key '%s': %w", key, err)
	}
	if !matched {
		return fmt.Errorf("key '%s' value '%s' does not match pattern %s", key, value, pattern)
	}
	return nil
}

// validateDirPath accepts an existing directory or a path that does not exist yet
func validateDirPath(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("cannot access path: %w", err)
	}

	if !info.IsDir() {
		return fmt.Errorf("path points to an existing file; must be a directory or non-existent path")
	}

	return nil
}

// ParseValue converts a command-line string into the key's declared type.
// Unknown keys fall back to smart type detection.
func ParseValue(key, valueStr string) (interface{}, error) {
	def := GetKeyDefinition(key)
	if def == nil {
		return parseValue(valueStr), nil
	}

	switch def.Type {
	case "bool":
		b, ok := parseBool(valueStr)
		if !ok {
			return nil, fmt.Errorf("key '%s' must be a boolean (got '%s')", key, valueStr)
		}
		return b, nil
	case "list":
		items := []string{}
		for _, item := range strings.Split(valueStr, ",") {
			if item = strings.TrimSpace(item); item != "" {
				items = append(items, item)
			}
		}
		return items, nil
	}
	return valueStr, nil
}

// normalizeValue coerces loosely typed values (YAML lists, flag strings) to the declared type
func normalizeValue(def *ConfigKeyDefinition, value interface{}) interface{} {
	switch def.Type {
	case "list":
		if _, ok := value.([]string); ok {
			return value
		}
		if isList(value) {
			return cast.ToStringSlice(value)
		}
	case "bool":
		if s, ok := value.(string); ok {
			if b, ok := parseBool(s); ok {
				return b
			}
		}
	}
	return value
}

// sameValue compares a stored value with a new one, treating all lists as string lists
func sameValue(current, next interface{}) bool {
	if isList(current) || isList(next) {
		return slices.Equal(cast.ToStringSlice(current), cast.ToStringSlice(next))
	}
	return fmt.Sprint(current) == fmt.Sprint(next)
}

func isList(v interface{}) bool {
	if v == nil {
		return false
	}
	kind := reflect.TypeOf(v).Kind()
	return kind == reflect.Slice || kind == reflect.Array
}
