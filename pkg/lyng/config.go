package lyng

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// Config is the host/project configuration file (`.lyng.toml`, §6.1
// "config file"), grounded on Creative-Workz-Studio-LLC-cpi-si-claude-code's
// BurntSushi/toml-based tool config — the pack's only other repo reaching
// for a config-file library, since the teacher itself has no config
// format of its own.
type Config struct {
	// Carriers bounds how many coroutines `launch(block)` runs
	// concurrently; 0 means unbounded (§5).
	Carriers int `toml:"carriers"`
	// DefaultImportPath is prepended when resolving a bare `import name`
	// that RegisterSource/RegisterManifest did not register directly
	// under its own name (consulted by a host's own import-path
	// convention, not by internal/module itself).
	DefaultImportPath string `toml:"default_import_path"`
	// OutputFile redirects print/println to a file instead of stdout
	// when set; empty means keep the Engine's current output.
	OutputFile string `toml:"output_file"`
	// TypeCheck mirrors the teacher's WithTypeCheck toggle. lyng has no
	// separate static-typing pass (§ Non-goals), so this only gates
	// RegisterFunction's native-argument conversion: on, an Int-typed Go
	// parameter rejects a Real argument instead of truncating it.
	// Default false keeps the permissive behavior.
	TypeCheck bool `toml:"type_check"`
}

// LoadConfig reads and parses a `.lyng.toml` file.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("lyng: reading config %s: %w", path, err)
	}
	var cfg Config
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("lyng: parsing config %s: %w", path, err)
	}
	return &cfg, nil
}

// Options builds the Engine options a Config implies, letting a host do
// `lyng.New(cfg.Options()...)` after LoadConfig.
func (c *Config) Options() []Option {
	var opts []Option
	if c.Carriers > 0 {
		opts = append(opts, WithCarriers(c.Carriers))
	}
	if c.TypeCheck {
		opts = append(opts, WithTypeCheck(true))
	}
	if c.OutputFile != "" {
		if f, err := os.Create(c.OutputFile); err == nil {
			opts = append(opts, WithOutput(f))
		}
	}
	return opts
}
