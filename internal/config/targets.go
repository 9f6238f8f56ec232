package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/AaronLPS/ai4news/internal/domain"
)

// TargetEntry is one record of the human-editable targets.yaml mirror. The
// registry is the operational source of truth; this file mirrors it for
// editing and review.
type TargetEntry struct {
	Type string `yaml:"type"`
	Name string `yaml:"name"`
	URL  string `yaml:"url"`
}

type targetsFile struct {
	Targets []TargetEntry `yaml:"targets"`
}

// LoadTargets reads and validates the targets mirror. Every entry's type must
// be in the closed target-type set; the first invalid entry aborts the load
// with an error naming the value and the allowed set.
func LoadTargets(path string) ([]TargetEntry, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("load targets: %w", err)
	}

	var file targetsFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return nil, fmt.Errorf("load targets: parse %s: %w", path, err)
	}

	for _, entry := range file.Targets {
		if _, err := domain.ParseTargetType(entry.Type); err != nil {
			return nil, fmt.Errorf("load targets: %w", err)
		}
	}

	return file.Targets, nil
}

// SaveTargets writes the mirror back to disk.
func SaveTargets(path string, targets []TargetEntry) error {
	raw, err := yaml.Marshal(targetsFile{Targets: targets})
	if err != nil {
		return fmt.Errorf("save targets: marshal: %w", err)
	}

	if err := os.WriteFile(path, raw, 0o644); err != nil {
		return fmt.Errorf("save targets: %w", err)
	}

	return nil
}
