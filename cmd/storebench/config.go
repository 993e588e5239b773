package main

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/spf13/pflag"
	"gopkg.in/yaml.v2"
)

// applyConfigFile sets flags from a YAML file whose keys are flag names.
// Flags given on the command line keep their values. Keys naming flags
// the command does not have are ignored so one file serves every command.
func applyConfigFile(flags *pflag.FlagSet, path string) error {
	if path == "" {
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config: %w", err)
	}

	values := make(map[string]interface{})
	if err := yaml.Unmarshal(data, &values); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}

	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, name := range keys {
		if name == "config" || flags.Lookup(name) == nil || flags.Changed(name) {
			continue
		}

		value, err := configValue(values[name])
		if err != nil {
			return fmt.Errorf("config %s: %s: %w", path, name, err)
		}
		if err := flags.Set(name, value); err != nil {
			return fmt.Errorf("config %s: %s: %w", path, name, err)
		}
	}

	return nil
}

// configValue renders a YAML value the way it would be typed on the
// command line.
func configValue(v interface{}) (string, error) {
	switch v := v.(type) {
	case nil:
		return "", nil
	case string:
		return v, nil
	case int, int64, float64, bool:
		return fmt.Sprint(v), nil
	case []interface{}:
		parts := make([]string, len(v))
		for i, item := range v {
			s, err := configValue(item)
			if err != nil {
				return "", err
			}
			parts[i] = s
		}
		return strings.Join(parts, ","), nil
	default:
		return "", fmt.Errorf("unsupported value %v (%T)", v, v)
	}
}
