package script

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// WriteScript writes a script to a YAML file
func WriteScript(s *Script, path string) error {
	data, err := yaml.Marshal(s)
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

// ReadScript reads and validates a script from a YAML file
func ReadScript(path string) (*Script, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var s Script
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parse script %s: %w", path, err)
	}
	if err := s.Validate(); err != nil {
		return nil, fmt.Errorf("script %s: %w", path, err)
	}

	return &s, nil
}
