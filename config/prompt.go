package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// PromptSpec overrides the classifier prompt without a rebuild.
type PromptSpec struct {
	System string   `yaml:"system"`
	Models []string `yaml:"models"`
	Owner  string   `yaml:"owner"`
}

func LoadPromptSpec(path string) (*PromptSpec, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var spec PromptSpec
	if err := yaml.Unmarshal(b, &spec); err != nil {
		return nil, fmt.Errorf("parse prompt spec %s: %w", path, err)
	}
	return &spec, nil
}
