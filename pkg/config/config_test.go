package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

type sample struct {
	Name    string        `yaml:"name"`
	Port    int           `yaml:"port"`
	Timeout time.Duration `yaml:"timeout"`
}

func (s *sample) Validate() error {
	if s.Port <= 0 {
		return errors.New("port must be positive")
	}
	return nil
}

func writeFile(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoad_ExpandsEnv(t *testing.T) {
	t.Setenv("SAMPLE_NAME", "from-env")
	path := writeFile(t, "name: ${SAMPLE_NAME}\nport: 9000\ntimeout: 1500ms\n")

	var cfg sample
	if err := Load(path, &cfg); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Name != "from-env" || cfg.Port != 9000 || cfg.Timeout != 1500*time.Millisecond {
		t.Errorf("cfg = %+v", cfg)
	}
}

func TestLoad_KeepsUnsetFields(t *testing.T) {
	path := writeFile(t, "port: 1\n")

	cfg := sample{Name: "default"}
	if err := Load(path, &cfg); err != nil {
		t.Fatal(err)
	}
	if cfg.Name != "default" {
		t.Errorf("name = %q, default overwritten", cfg.Name)
	}
}

func TestLoad_ValidationError(t *testing.T) {
	path := writeFile(t, "port: 0\n")

	var cfg sample
	err := Load(path, &cfg)
	if err == nil || !strings.Contains(err.Error(), "validation failed") {
		t.Fatalf("err = %v", err)
	}
}

func TestLoad_BadYAML(t *testing.T) {
	path := writeFile(t, "port: [\n")

	var cfg sample
	if err := Load(path, &cfg); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestLoadOptional_MissingFileUsesTarget(t *testing.T) {
	cfg := sample{Port: 8080}
	if err := LoadOptional(filepath.Join(t.TempDir(), "absent.yaml"), &cfg); err != nil {
		t.Fatalf("LoadOptional: %v", err)
	}
	if cfg.Port != 8080 {
		t.Errorf("port = %d", cfg.Port)
	}

	// Defaults are validated too.
	bad := sample{}
	if err := LoadOptional("", &bad); err == nil {
		t.Error("invalid defaults should fail")
	}
}

func TestLoadOptional_ExistingFile(t *testing.T) {
	path := writeFile(t, "port: 7000\n")

	cfg := sample{Port: 8080}
	if err := LoadOptional(path, &cfg); err != nil {
		t.Fatal(err)
	}
	if cfg.Port != 7000 {
		t.Errorf("port = %d, want 7000", cfg.Port)
	}
}
