package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory configuration.
type Paths struct {
	ExportDir string `toml:"export_dir"`
	LogDir    string `toml:"log_dir"`
	StateDir  string `toml:"state_dir"`
}

// Portal describes the video portal being harvested.
type Portal struct {
	BaseURL       string   `toml:"base_url"`
	ViewerPath    string   `toml:"viewer_path"`
	ListPath      string   `toml:"list_path"`
	PageSize      int      `toml:"page_size"`
	KeptArguments []string `toml:"kept_arguments"`
}

// Browser contains headless Chrome settings.
type Browser struct {
	Headless           bool   `toml:"headless"`
	ExecPath           string `toml:"exec_path"`
	UserAgent          string `toml:"user_agent"`
	SettleSeconds      int    `toml:"settle_seconds"`
	ListSettleSeconds  int    `toml:"list_settle_seconds"`
	WaitTimeoutSeconds int    `toml:"wait_timeout_seconds"`
}

// Retry controls the fixed-delay retry loops used while the portal renders.
type Retry struct {
	Attempts             int `toml:"attempts"`
	DelaySeconds         int `toml:"delay_seconds"`
	MetadataDelaySeconds int `toml:"metadata_delay_seconds"`
}

// Auth holds portal credentials. Empty values are prompted for interactively.
type Auth struct {
	Username    string `toml:"username"`
	Password    string `toml:"password"`
	MaxAttempts int    `toml:"max_attempts"`
}

// Capture describes how manifest traffic is recognised.
type Capture struct {
	ManifestSuffix   string `toml:"manifest_suffix"`
	SubtitleMarker   string `toml:"subtitle_marker"`
	SegmentExtension string `toml:"segment_extension"`
}

// Download contains transcoding settings.
type Download struct {
	Format         string `toml:"format"`
	FFmpegBinary   string `toml:"ffmpeg_binary"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for panograb.
//
// Configuration sections by subsystem:
//   - Paths: export, log, and state directories
//   - Portal: base URL, page paths, and listing page size
//   - Browser: headless Chrome and render waits
//   - Retry: attempt budget for transient page failures
//   - Auth: credentials and login attempt cap
//   - Capture: manifest recognition rules
//   - Download: ffmpeg transcoding
//   - Logging: log format and level
type Config struct {
	Paths    Paths    `toml:"paths"`
	Portal   Portal   `toml:"portal"`
	Browser  Browser  `toml:"browser"`
	Retry    Retry    `toml:"retry"`
	Auth     Auth     `toml:"auth"`
	Capture  Capture  `toml:"capture"`
	Download Download `toml:"download"`
	Logging  Logging  `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/panograb/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned config has all
// path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("panograb.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates the directories a run writes into.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.ExportDir, c.Paths.LogDir, c.Paths.StateDir} {
		if strings.TrimSpace(dir) == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// LedgerPath returns the SQLite database recording processed items.
func (c *Config) LedgerPath() string {
	return filepath.Join(c.Paths.StateDir, "ledger.db")
}

// ViewerURL returns the viewer page URL for a single item identifier.
func (c *Config) ViewerURL(id string) string {
	return strings.TrimRight(c.Portal.BaseURL, "/") + c.Portal.ViewerPath + "?id=" + id
}

// ListURL returns the root listing page used to start a login.
func (c *Config) ListURL() string {
	return strings.TrimRight(c.Portal.BaseURL, "/") + c.Portal.ListPath + "#"
}

// SettleDelay is the fixed pause after navigating to a viewer page.
func (c *Config) SettleDelay() time.Duration {
	return time.Duration(c.Browser.SettleSeconds) * time.Second
}

// ListSettleDelay is the fixed pause after navigating to a listing page.
func (c *Config) ListSettleDelay() time.Duration {
	return time.Duration(c.Browser.ListSettleSeconds) * time.Second
}

// WaitTimeout bounds explicit waits for a single element to become visible.
func (c *Config) WaitTimeout() time.Duration {
	return time.Duration(c.Browser.WaitTimeoutSeconds) * time.Second
}

// RetryDelay is the fixed backoff between navigation attempts.
func (c *Config) RetryDelay() time.Duration {
	return time.Duration(c.Retry.DelaySeconds) * time.Second
}

// MetadataRetryDelay is the fixed backoff between metadata scraping attempts.
func (c *Config) MetadataRetryDelay() time.Duration {
	return time.Duration(c.Retry.MetadataDelaySeconds) * time.Second
}

// DownloadTimeout bounds a single ffmpeg invocation; zero disables the limit.
func (c *Config) DownloadTimeout() time.Duration {
	return time.Duration(c.Download.TimeoutSeconds) * time.Second
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}

// Encode renders the configuration as TOML, with credentials redacted.
func (c *Config) Encode() ([]byte, error) {
	clone := *c
	if clone.Auth.Password != "" {
		clone.Auth.Password = "********"
	}
	data, err := toml.Marshal(clone)
	if err != nil {
		return nil, fmt.Errorf("encode config: %w", err)
	}
	return data, nil
}
