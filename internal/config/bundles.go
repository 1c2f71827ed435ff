package config

import (
	"fmt"
	"os"

	"go.yaml.in/yaml/v3"

	"github.com/afishnamedqwerty/aime/internal/tools"
)

// bundlesFile is the on-disk shape of a tool bundle definition file.
type bundlesFile struct {
	Bundles []tools.Bundle `yaml:"bundles"`
}

// LoadBundles reads named tool bundles from a YAML file. When path is empty
// or the file does not exist, the built-in default bundle is returned alone.
func LoadBundles(path string) ([]tools.Bundle, error) {
	if path == "" {
		return []tools.Bundle{tools.DefaultBundle()}, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return []tools.Bundle{tools.DefaultBundle()}, nil
		}
		return nil, fmt.Errorf("reading bundles file %s: %w", path, err)
	}

	var file bundlesFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parsing bundles file %s: %w", path, err)
	}

	bundles := file.Bundles
	if !containsBundle(bundles, "default") {
		bundles = append([]tools.Bundle{tools.DefaultBundle()}, bundles...)
	}
	return bundles, nil
}

func containsBundle(bundles []tools.Bundle, name string) bool {
	for _, b := range bundles {
		if b.Name == name {
			return true
		}
	}
	return false
}
