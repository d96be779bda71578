package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pelletier/go-toml/v2"

	"panograb/internal/config"
)

func TestLoadDefaultConfigExpandsPathsAndReadsEnv(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)
	t.Setenv("PANOPTO_USERNAME", "  S123456 ")
	t.Setenv("PANOPTO_PASSWORD", "secret")
	t.Chdir(t.TempDir())

	cfg, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if resolved == "" {
		t.Fatal("expected resolved path")
	}
	if exists {
		t.Fatal("expected config file to be absent in temp HOME")
	}

	wantLogs := filepath.Join(tempHome, ".local", "share", "panograb", "logs")
	if cfg.Paths.LogDir != wantLogs {
		t.Fatalf("unexpected log dir: got %q want %q", cfg.Paths.LogDir, wantLogs)
	}
	if !filepath.IsAbs(cfg.Paths.ExportDir) {
		t.Fatalf("expected absolute export dir, got %q", cfg.Paths.ExportDir)
	}
	if cfg.Auth.Username != "s123456" {
		t.Fatalf("expected lowercased username from env, got %q", cfg.Auth.Username)
	}
	if cfg.Auth.Password != "secret" {
		t.Fatalf("expected password from env, got %q", cfg.Auth.Password)
	}
	if cfg.Portal.PageSize != 250 {
		t.Fatalf("unexpected page size: %d", cfg.Portal.PageSize)
	}
	if cfg.Capture.ManifestSuffix != "/index.m3u8" || cfg.Capture.SegmentExtension != ".ts" {
		t.Fatalf("unexpected capture defaults: %+v", cfg.Capture)
	}
	if cfg.Retry.Attempts != 3 {
		t.Fatalf("unexpected retry attempts: %d", cfg.Retry.Attempts)
	}
	if got := cfg.ViewerURL("abc-123"); got != "https://panopto.dtu.dk/Panopto/Pages/Viewer.aspx?id=abc-123" {
		t.Fatalf("unexpected viewer url: %q", got)
	}
}

func TestLoadCustomConfigOverridesDefaults(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)
	t.Setenv("PANOPTO_USERNAME", "")
	t.Setenv("PANOPTO_PASSWORD", "")

	configPath := filepath.Join(tempHome, "config.toml")
	payload := map[string]any{
		"paths": map[string]any{
			"export_dir": "~/lectures",
		},
		"portal": map[string]any{
			"base_url":       "https://video.example.edu/",
			"page_size":      100,
			"kept_arguments": []string{" folderID ", ""},
		},
		"capture": map[string]any{
			"segment_extension": "TS",
		},
		"download": map[string]any{
			"format": ".MP3",
		},
		"logging": map[string]any{
			"format": "JSON",
			"level":  "Debug",
		},
	}
	data, err := toml.Marshal(payload)
	if err != nil {
		t.Fatalf("marshal config: %v", err)
	}
	if err := os.WriteFile(configPath, data, 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, resolved, exists, err := config.Load(configPath)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists || resolved != configPath {
		t.Fatalf("expected config to be read from %q, got %q (exists=%v)", configPath, resolved, exists)
	}
	if cfg.Paths.ExportDir != filepath.Join(tempHome, "lectures") {
		t.Fatalf("unexpected export dir: %q", cfg.Paths.ExportDir)
	}
	if cfg.Portal.BaseURL != "https://video.example.edu" {
		t.Fatalf("expected trailing slash trimmed, got %q", cfg.Portal.BaseURL)
	}
	if cfg.Portal.PageSize != 100 {
		t.Fatalf("unexpected page size: %d", cfg.Portal.PageSize)
	}
	if len(cfg.Portal.KeptArguments) != 1 || cfg.Portal.KeptArguments[0] != "folderID" {
		t.Fatalf("unexpected kept arguments: %v", cfg.Portal.KeptArguments)
	}
	if cfg.Capture.SegmentExtension != ".ts" {
		t.Fatalf("expected normalized segment extension, got %q", cfg.Capture.SegmentExtension)
	}
	if cfg.Download.Format != "mp3" {
		t.Fatalf("expected normalized download format, got %q", cfg.Download.Format)
	}
	if cfg.Logging.Format != "json" || cfg.Logging.Level != "debug" {
		t.Fatalf("unexpected logging config: %+v", cfg.Logging)
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*config.Config)
		want   string
	}{
		{"page size", func(c *config.Config) { c.Portal.PageSize = 0 }, "portal.page_size"},
		{"base url", func(c *config.Config) { c.Portal.BaseURL = "panopto.dtu.dk" }, "portal.base_url"},
		{"format", func(c *config.Config) { c.Download.Format = "mkv" }, "download.format"},
		{"attempts", func(c *config.Config) { c.Retry.Attempts = 0 }, "retry.attempts"},
		{"auth attempts", func(c *config.Config) { c.Auth.MaxAttempts = 0 }, "auth.max_attempts"},
		{"suffix", func(c *config.Config) { c.Capture.ManifestSuffix = "" }, "capture.manifest_suffix"},
		{"settle", func(c *config.Config) { c.Browser.SettleSeconds = -1 }, "browser.settle_seconds"},
		{"log format", func(c *config.Config) { c.Logging.Format = "xml" }, "logging.format"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := config.Default()
			tc.mutate(&cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("expected %q in error, got %v", tc.want, err)
			}
		})
	}
}

func TestCreateSampleIsLoadable(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	if err := config.CreateSample(path); err != nil {
		t.Fatalf("CreateSample returned error: %v", err)
	}
	cfg, _, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load sample returned error: %v", err)
	}
	if !exists {
		t.Fatal("expected sample config to exist")
	}
	if cfg.Download.Format != "mp4" {
		t.Fatalf("unexpected sample format: %q", cfg.Download.Format)
	}
}

func TestEncodeRedactsPassword(t *testing.T) {
	cfg := config.Default()
	cfg.Auth.Password = "hunter2"
	data, err := cfg.Encode()
	if err != nil {
		t.Fatalf("Encode returned error: %v", err)
	}
	if strings.Contains(string(data), "hunter2") {
		t.Fatalf("expected password to be redacted:\n%s", data)
	}
	if cfg.Auth.Password != "hunter2" {
		t.Fatal("Encode must not mutate the receiver")
	}
}
