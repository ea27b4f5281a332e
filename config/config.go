// Package config loads and holds simulator configuration. Configurations
// are flat KEY = VALUE files parsed with godotenv, wrapped with typed
// accessors and a derived parameter set for the device timing model.
package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config is a key/value configuration map.
type Config struct {
	values map[string]string
}

// New creates an empty configuration.
func New() *Config {
	return &Config{values: make(map[string]string)}
}

// FromMap creates a configuration holding a copy of the given values.
func FromMap(values map[string]string) *Config {
	c := New()
	for k, v := range values {
		c.values[k] = v
	}

	return c
}

// Load reads a KEY = VALUE configuration file.
func Load(path string) (*Config, error) {
	values, err := godotenv.Read(path)
	if err != nil {
		return nil, fmt.Errorf("config: cannot read %s: %w", path, err)
	}

	return FromMap(values), nil
}

// KeyExists reports whether the key is set.
func (c *Config) KeyExists(key string) bool {
	_, ok := c.values[key]
	return ok
}

// Set assigns a value to a key, overriding any file-loaded value.
func (c *Config) Set(key, value string) {
	c.values[key] = value
}

// GetString returns the value of the key, or the default if unset.
func (c *Config) GetString(key, def string) string {
	if v, ok := c.values[key]; ok {
		return v
	}

	return def
}

// GetUint returns the value of the key as an unsigned integer. Malformed
// values warn and fall back to the default.
func (c *Config) GetUint(key string, def uint64) uint64 {
	v, ok := c.values[key]
	if !ok {
		return def
	}

	n, err := strconv.ParseUint(v, 10, 64)
	if err != nil {
		fmt.Fprintf(os.Stderr,
			"config: warning: key %s has non-integer value %q, using %d\n",
			key, v, def)
		return def
	}

	return n
}

// GetFloat returns the value of the key as a float. Malformed values warn
// and fall back to the default.
func (c *Config) GetFloat(key string, def float64) float64 {
	v, ok := c.values[key]
	if !ok {
		return def
	}

	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		fmt.Fprintf(os.Stderr,
			"config: warning: key %s has non-float value %q, using %g\n",
			key, v, def)
		return def
	}

	return f
}

// GetBool returns the value of the key as a boolean. Accepts true/false and
// 1/0.
func (c *Config) GetBool(key string, def bool) bool {
	v, ok := c.values[key]
	if !ok {
		return def
	}

	switch v {
	case "true", "TRUE", "1":
		return true
	case "false", "FALSE", "0":
		return false
	}

	fmt.Fprintf(os.Stderr,
		"config: warning: key %s has non-boolean value %q, using %v\n",
		key, v, def)

	return def
}
