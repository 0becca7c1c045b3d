// Package sources reads the operator-maintained list of manifest URLs and
// watches it for edits.
package sources

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// File is the on-disk layout of a sources file. Both a bare YAML sequence
// and a mapping with a "sources" key are accepted.
type File struct {
	Sources []string `yaml:"sources"`
}

// Load reads the sources file at path and returns its URLs in file order.
// Blank entries are dropped; duplicates are kept since each occupies its own
// catalog slot.
func Load(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("sources: read %s: %w", path, err)
	}
	return Parse(data)
}

// Parse decodes sources file content.
func Parse(data []byte) ([]string, error) {
	var node yaml.Node
	if err := yaml.Unmarshal(data, &node); err != nil {
		return nil, fmt.Errorf("sources: parse: %w", err)
	}
	if len(node.Content) == 0 {
		return []string{}, nil
	}

	var raw []string
	switch root := node.Content[0]; root.Kind {
	case yaml.SequenceNode:
		if err := root.Decode(&raw); err != nil {
			return nil, fmt.Errorf("sources: decode list: %w", err)
		}
	case yaml.MappingNode:
		var f File
		if err := root.Decode(&f); err != nil {
			return nil, fmt.Errorf("sources: decode file: %w", err)
		}
		raw = f.Sources
	default:
		return nil, fmt.Errorf("sources: expected a list of URLs")
	}

	out := make([]string, 0, len(raw))
	for _, u := range raw {
		if u = strings.TrimSpace(u); u != "" {
			out = append(out, u)
		}
	}
	return out, nil
}
