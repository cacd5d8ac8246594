// Package renconfig loads cmd/ren's optional on-disk defaults: a small YAML
// file so a user doesn't have to repeat the same flags on every invocation.
package renconfig

import (
	"os"

	"gopkg.in/yaml.v3"
)

// File is the shape of .ren.yaml: every field mirrors a cmd/ren flag and is
// overridden by the flag when the flag is explicitly set.
type File struct {
	DevLog      bool   `yaml:"dev_log"`
	ForceGC     bool   `yaml:"force_gc"`
	MetricsAddr string `yaml:"metrics_addr"`
	StackLimit  int    `yaml:"stack_limit"`
}

// Load reads and parses path. A missing file is not an error: it returns a
// zero-value File so the caller's flag defaults stand.
func Load(path string) (File, error) {
	var f File
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return f, nil
		}
		return f, err
	}
	if err := yaml.Unmarshal(data, &f); err != nil {
		return f, err
	}
	return f, nil
}

// DefaultPath returns ~/.ren.yaml, or "" if the home directory can't be
// resolved (Load on "" then just reads nothing and returns zero values).
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return home + "/.ren.yaml"
}
