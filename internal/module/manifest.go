package module

import (
	"fmt"

	"github.com/goccy/go-yaml"
)

// Manifest describes a lyng package the way a directory-based package on
// disk would declare itself (§6.1 "optional package manifest"): a name
// to import by, a version for diagnostics, and an optional narrowed
// export list. The teacher carries goccy/go-yaml as a go.mod dependency
// with no manifest format of its own to spend it on; this is its first
// real consumer.
type Manifest struct {
	Name    string   `yaml:"name"`
	Version string   `yaml:"version"`
	Exports []string `yaml:"exports"`
}

// ParseManifest decodes a package.yaml document. An empty/absent
// `exports` list means "export everything Public", matching
// RegisterSource's default.
func ParseManifest(data []byte) (*Manifest, error) {
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("module: invalid package manifest: %w", err)
	}
	if m.Name == "" {
		return nil, fmt.Errorf("module: package manifest is missing a name")
	}
	return &m, nil
}
