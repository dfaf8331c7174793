package config

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"ddsconv/internal/dds"
)

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
	if cfg.DDS() != dds.BC1RgbaUnorm {
		t.Fatalf("default dds format %v", cfg.DDS())
	}
}

func TestLoadLayersFileAndEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ddsconv.yaml")
	yaml := "chunk_size: 8\nworkers: 2\ndds_format: dxt5\nlog_level: debug\n"
	if err := os.WriteFile(path, []byte(yaml), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	t.Setenv("DDSCONV_WORKERS", "4")
	t.Setenv("DDSCONV_AUTO_ORIENT", "true")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.ChunkSize != 8 || cfg.Workers != 4 || !cfg.AutoOrient || cfg.LogLevel != "debug" {
		t.Fatalf("unexpected config %+v", cfg)
	}
	if cfg.DDS() != dds.BC3RgbaUnorm {
		t.Fatalf("dds format %v", cfg.DDS())
	}
	if cfg.JPEGQuality != 90 {
		t.Fatalf("default lost: %+v", cfg)
	}
}

func TestLoadRejectsInvalid(t *testing.T) {
	t.Setenv("DDSCONV_JPEG_QUALITY", "101")
	if _, err := Load(""); err == nil {
		t.Fatalf("expected validation error")
	}

	t.Setenv("DDSCONV_JPEG_QUALITY", "high")
	if _, err := Load(""); err == nil {
		t.Fatalf("expected parse error")
	}
}

func TestLoadAcceptsAnyLogLevelCase(t *testing.T) {
	for _, raw := range []string{"INFO", "Warn", " debug "} {
		t.Setenv("DDSCONV_LOG_LEVEL", raw)
		cfg, err := Load("")
		if err != nil {
			t.Fatalf("%q: load: %v", raw, err)
		}
		if want := strings.ToLower(strings.TrimSpace(raw)); cfg.LogLevel != want {
			t.Fatalf("%q: log level %q want %q", raw, cfg.LogLevel, want)
		}
	}

	t.Setenv("DDSCONV_LOG_LEVEL", "loud")
	if _, err := Load(""); err == nil {
		t.Fatalf("expected unknown level to fail")
	}
}

func TestValidate(t *testing.T) {
	cfg := Default()
	cfg.DDSFormat = "bc7"
	cfg.ChunkSize = -1
	err := cfg.Validate()
	if err == nil {
		t.Fatalf("expected error")
	}
	msg := err.Error()
	if !strings.Contains(msg, "DDSFormat") || !strings.Contains(msg, "ChunkSize") {
		t.Fatalf("unexpected error %q", msg)
	}
}

func TestSetupLogFileKeepsNewest(t *testing.T) {
	dir := t.TempDir()
	for i := 0; i < 5; i++ {
		name := filepath.Join(dir, fmt.Sprintf("ddsconv-2020-01-0%dT00-00-00.log", i+1))
		if err := os.WriteFile(name, nil, 0o644); err != nil {
			t.Fatalf("write: %v", err)
		}
	}

	f, err := SetupLogFile(dir, 3)
	if err != nil {
		t.Fatalf("setup: %v", err)
	}
	defer f.Close()

	files, _ := filepath.Glob(filepath.Join(dir, "ddsconv-*.log"))
	if len(files) != 3 {
		t.Fatalf("expected 3 log files, got %v", files)
	}
	if _, err := os.Stat(f.Name()); err != nil {
		t.Fatalf("new log file removed: %v", err)
	}
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	log := NewLogger(&buf, "warn")
	log.Info("hidden")
	log.Warn("shown", "n", 1)
	out := buf.String()
	if strings.Contains(out, "hidden") || !strings.Contains(out, `"msg":"shown"`) {
		t.Fatalf("unexpected output %q", out)
	}
}
