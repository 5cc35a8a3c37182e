package config

import (
	"testing"

	"github.com/photoqc/photoqc-go/internal/locator"
)

func TestLoadFromEnvDefaults(t *testing.T) {
	cfg, err := LoadFromEnv()
	if err != nil {
		t.Fatalf("LoadFromEnv failed: %v", err)
	}
	if cfg.QCDirectory != locator.DefaultDirectory {
		t.Errorf("default QC directory = %q, want %q", cfg.QCDirectory, locator.DefaultDirectory)
	}
	if len(cfg.FormatPriority) != 3 || cfg.FormatPriority[0] != locator.FormatTIFF {
		t.Errorf("default priority = %v, want TIFF > PNG > JPEG", cfg.FormatPriority)
	}
	if cfg.ServerAddress() != "0.0.0.0:8080" {
		t.Errorf("server address = %q", cfg.ServerAddress())
	}
	if cfg.AzureEnabled() {
		t.Error("azure backend should be disabled without AZURE_ACCOUNT_NAME")
	}
}

func TestLoadFromEnvOverrides(t *testing.T) {
	t.Setenv("QC_DIRECTORY", "/data/qc")
	t.Setenv("FORMAT_PRIORITY", "png,jpg")
	t.Setenv("PORT", "9090")
	t.Setenv("AZURE_ACCOUNT_NAME", "qcstore")

	cfg, err := LoadFromEnv()
	if err != nil {
		t.Fatalf("LoadFromEnv failed: %v", err)
	}
	if cfg.QCDirectory != "/data/qc" {
		t.Errorf("QC directory = %q", cfg.QCDirectory)
	}
	want := []locator.Format{locator.FormatPNG, locator.FormatJPEG}
	if len(cfg.FormatPriority) != len(want) {
		t.Fatalf("priority = %v, want %v", cfg.FormatPriority, want)
	}
	for i := range want {
		if cfg.FormatPriority[i] != want[i] {
			t.Errorf("priority[%d] = %v, want %v", i, cfg.FormatPriority[i], want[i])
		}
	}
	if !cfg.AzureEnabled() {
		t.Error("azure backend should be enabled")
	}
}

func TestLoadFromEnvRejectsBadValues(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{"invalid port", "PORT", "not-a-port"},
		{"port out of range", "PORT", "70000"},
		{"unknown format", "FORMAT_PRIORITY", "tiff,bmp"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)
			if _, err := LoadFromEnv(); err == nil {
				t.Errorf("expected error for %s=%q", tt.key, tt.value)
			}
		})
	}
}

func TestParseFormatPriority(t *testing.T) {
	priority, err := ParseFormatPriority(" jpg , tif ")
	if err != nil {
		t.Fatalf("ParseFormatPriority failed: %v", err)
	}
	if priority[0] != locator.FormatJPEG || priority[1] != locator.FormatTIFF {
		t.Errorf("priority = %v", priority)
	}
}
