package config

import (
	"fmt"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// GetPath resolves a dot-separated path ("backend.durable_retry.delay")
// against the YAML form of the config. Keys follow the yaml tags.
func (c *Config) GetPath(path string) (any, error) {
	path = strings.Trim(strings.TrimSpace(path), ".")
	if path == "" {
		return nil, fmt.Errorf("empty config path")
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("marshal config: %w", err)
	}
	var tree map[string]any
	if err := yaml.Unmarshal(data, &tree); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	var current any = tree
	walked := make([]string, 0, 4)
	for _, key := range strings.Split(path, ".") {
		node, ok := current.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("path %q: %q is a value, not a section", path, strings.Join(walked, "."))
		}
		next, ok := node[key]
		if !ok {
			return nil, fmt.Errorf("path %q: key %q not found (have: %s)", path, key, strings.Join(keysOf(node), ", "))
		}
		walked = append(walked, key)
		current = next
	}
	return current, nil
}

func keysOf(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
