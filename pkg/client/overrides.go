package client

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type overridesFile struct {
	Hosts map[string][]string `yaml:"hosts"`
}

// LoadDNSOverrides reads a YAML file of the form
//
//	hosts:
//	  pup.example.com: [203.0.113.5, 203.0.113.6]
//
// Entries are validated later, when the client is built.
func LoadDNSOverrides(path string) (map[string][]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read dns overrides: %w", err)
	}
	var f overridesFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse dns overrides %s: %w", path, err)
	}
	return f.Hosts, nil
}
