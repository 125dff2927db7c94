package config

import (
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-endpointschema/pkg/schema"
)

func TestParse_OverlaysDefaults(t *testing.T) {
	t.Parallel()

	cfg, err := Parse([]byte(`
store_dir = "/var/lib/schemas"
log_level = "debug"
default_mode = "OUT"
`))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	want := Config{StoreDir: "/var/lib/schemas", Format: "yaml", LogLevel: "debug", DefaultMode: "OUT"}
	if diff := cmp.Diff(want, cfg); diff != "" {
		t.Fatalf("config mismatch (-want +got):\n%s", diff)
	}
	if cfg.Level() != slog.LevelDebug {
		t.Fatalf("expected debug level, got %v", cfg.Level())
	}
	if cfg.Mode() != schema.ModeOut {
		t.Fatalf("expected OUT, got %q", cfg.Mode())
	}
}

func TestParse_Rejects(t *testing.T) {
	t.Parallel()

	cases := map[string]string{
		"unknown key":  `colour = "blue"`,
		"bad format":   `format = "xml"`,
		"bad level":    `log_level = "loud"`,
		"bad mode":     `default_mode = "SIDEWAYS"`,
		"invalid toml": `store_dir = `,
	}
	for name, input := range cases {
		name, input := name, input
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			if _, err := Parse([]byte(input)); err == nil {
				t.Fatalf("expected %s to be rejected", name)
			}
		})
	}
}

func TestLoad_MissingFiles(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "absent.toml")
	if _, err := Load(missing); !errors.Is(err, fs.ErrNotExist) {
		t.Fatalf("explicit missing file must fail, got %v", err)
	}

	t.Setenv(EnvPath, "")
	cfg, err := load("", filepath.Join(t.TempDir(), DefaultPath))
	if err != nil {
		t.Fatalf("missing default file must not fail: %v", err)
	}
	if diff := cmp.Diff(Default(), cfg); diff != "" {
		t.Fatalf("expected defaults (-want +got):\n%s", diff)
	}
}

func TestLoad_FromEnvironment(t *testing.T) {
	path := filepath.Join(t.TempDir(), "schemactl.toml")
	if err := os.WriteFile(path, []byte(`format = "json"`), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	t.Setenv(EnvPath, path)

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Format != "json" || cfg.StoreDir != "schemas" {
		t.Fatalf("unexpected config %+v", cfg)
	}

	if err := os.WriteFile(path, []byte(`format = "xml"`), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := Load(""); err == nil || !strings.Contains(err.Error(), path) {
		t.Fatalf("expected error naming the file, got %v", err)
	}
}

func TestMerge(t *testing.T) {
	t.Parallel()

	got := Default().Merge(Config{LogLevel: "warn"})
	want := Config{StoreDir: "schemas", Format: "yaml", LogLevel: "warn"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("merge mismatch (-want +got):\n%s", diff)
	}
}
