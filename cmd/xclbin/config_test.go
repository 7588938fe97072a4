package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/urfave/cli/v3"
)

func writeFile(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func TestLoadConfig(t *testing.T) {
	t.Run("yaml", func(t *testing.T) {
		path := writeFile(t, "config.yaml", "log_level: debug\nbyte_order: big\nstrict: true\nserver_address: 0.0.0.0:9000\n")
		cfg, err := LoadConfig(path)
		if err != nil {
			t.Fatalf("LoadConfig: %v", err)
		}
		if cfg.LogLevel != "debug" || cfg.ByteOrder != "big" || cfg.ServerAddress != "0.0.0.0:9000" {
			t.Fatalf("unexpected config: %+v", cfg)
		}
		if cfg.Strict == nil || !*cfg.Strict {
			t.Fatalf("strict: got %v want true", cfg.Strict)
		}
	})

	t.Run("toml", func(t *testing.T) {
		path := writeFile(t, "config.toml", "log_format = \"json\"\nstrict = false\n")
		cfg, err := LoadConfig(path)
		if err != nil {
			t.Fatalf("LoadConfig: %v", err)
		}
		if cfg.LogFormat != "json" {
			t.Fatalf("log format: got %q want json", cfg.LogFormat)
		}
		if cfg.Strict == nil || *cfg.Strict {
			t.Fatalf("strict: got %v want explicit false", cfg.Strict)
		}
	})

	t.Run("missing explicit path", func(t *testing.T) {
		if _, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
			t.Fatal("expected error for a missing explicit config")
		}
	})

	t.Run("missing default path", func(t *testing.T) {
		t.Setenv("XDG_CONFIG_HOME", t.TempDir())
		t.Setenv("HOME", t.TempDir())
		cfg, err := LoadConfig("")
		if err != nil {
			t.Fatalf("LoadConfig: %v", err)
		}
		if cfg != (Config{}) {
			t.Fatalf("expected zero config, got %+v", cfg)
		}
	})

	t.Run("malformed", func(t *testing.T) {
		path := writeFile(t, "bad.yaml", "log_level: [unterminated\n")
		if _, err := LoadConfig(path); err == nil {
			t.Fatal("expected parse error")
		}
	})
}

func TestApplyGlobalConfigFlagWins(t *testing.T) {
	yes := true
	cfg := Config{LogLevel: "error", LogFormat: "json", ByteOrder: "big", Strict: &yes, ServerAddress: "0.0.0.0:9000"}

	var addr string
	cmd := &cli.Command{
		Name: "xclbin",
		Flags: append(globalFlags(), &cli.StringFlag{
			Name:        "addr",
			Value:       "127.0.0.1:8080",
			Destination: &addr,
		}),
		Action: func(ctx context.Context, c *cli.Command) error {
			applyGlobalConfig(c, cfg)
			applyServeConfig(c, cfg, &addr)
			return nil
		},
	}
	if err := cmd.Run(context.Background(), []string{"xclbin", "--log-level", "warn", "--addr", ":7000"}); err != nil {
		t.Fatalf("run: %v", err)
	}

	if logLevel != "warn" {
		t.Fatalf("log level: got %q want flag value warn", logLevel)
	}
	if logFormat != "json" || byteOrder != "big" || !strict {
		t.Fatalf("config values not applied: format=%q order=%q strict=%v", logFormat, byteOrder, strict)
	}
	if addr != ":7000" {
		t.Fatalf("addr: got %q want flag value :7000", addr)
	}

	opts, err := codecOptions()
	if err != nil {
		t.Fatalf("codecOptions: %v", err)
	}
	if len(opts) != 2 {
		t.Fatalf("codec options: got %d want 2", len(opts))
	}

	byteOrder = "middle"
	if _, err := codecOptions(); err == nil {
		t.Fatal("expected error for unknown byte order")
	}
	byteOrder, strict = "little", false
}
