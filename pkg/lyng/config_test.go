package lyng

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadConfigParsesTOML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".lyng.toml")
	body := `
carriers = 4
default_import_path = "pkgs"
type_check = true
`
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Carriers != 4 || cfg.DefaultImportPath != "pkgs" || !cfg.TypeCheck {
		t.Fatalf("unexpected config: %+v", cfg)
	}
}

func TestLoadConfigMissingFileErrors(t *testing.T) {
	if _, err := LoadConfig(filepath.Join(t.TempDir(), "missing.toml")); err == nil {
		t.Fatal("expected an error for a missing config file")
	}
}

func TestConfigOptionsAppliesTypeCheck(t *testing.T) {
	cfg := &Config{TypeCheck: true}
	e, err := New(cfg.Options()...)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if !e.strict {
		t.Fatal("expected Config.Options() to enable strict mode")
	}
}
