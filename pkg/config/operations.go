// SPDX-License-Identifier: Apache-2.0
package config

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// ConfigValue represents a configuration key-value pair with its source
type ConfigValue struct {
	Key     string
	Section string
	Value   interface{}
	Source  string
}

// List returns every effective setting with its source, sorted by key
func (c *Config) List() []ConfigValue {
	values := make([]ConfigValue, 0, len(c.index))
	for _, key := range c.Keys() {
		section := c.index[key]
		full := section + "." + key
		values = append(values, ConfigValue{
			Key:     key,
			Section: section,
			Value:   c.v.Get(full),
			Source:  c.source(full),
		})
	}
	return values
}

// source reports "default" when the effective value matches the bundled default
func (c *Config) source(full string) string {
	if c.defaults.IsSet(full) && sameValue(c.defaults.Get(full), c.v.Get(full)) {
		return "default"
	}
	return "user"
}

func parseBool(valueStr string) (bool, bool) {
	switch strings.ToLower(valueStr) {
	case "true", "yes", "on", "enable", "enabled":
		return true, true
	case "false", "no", "off", "disable", "disabled":
		return false, true
	}
	return false, false
}

// parseValue attempts to parse a string value into its appropriate type
func parseValue(valueStr string) interface{} {
	// Try boolean aliases
	if b, ok := parseBool(valueStr); ok {
		return b
	}

	// Try integer
	if i, err := strconv.Atoi(valueStr); err == nil {
		return i
	}

	// Try float
	if f, err := strconv.ParseFloat(valueStr, 64); err == nil {
		return f
	}

	// Default to string
	return valueStr
}

// flattenKeys recursively flattens nested map keys with dot notation
func flattenKeys(m map[string]interface{}, prefix string) []string {
	var keys []string

	for k, v := range m {
		fullKey := k
		if prefix != "" {
			fullKey = prefix + "." + k
		}

		// If value is a nested map, recurse
		if nestedMap, ok := v.(map[string]interface{}); ok {
			keys = append(keys, flattenKeys(nestedMap, fullKey)...)
		} else {
			keys = append(keys, fullKey)
		}
	}

	sort.Strings(keys)
	return keys
}

// Reset restores a setting to its bundled default and persists it.
// It returns false when the setting already holds its default.
func (c *Config) Reset(key string) (bool, error) {
	full, err := c.resolve(key)
	if err != nil {
		return false, err
	}
	if !c.defaults.IsSet(full) {
		return false, fmt.Errorf("%w: %s has no default", ErrUnknownKey, full)
	}
	return c.Change(full, c.defaults.Get(full))
}
