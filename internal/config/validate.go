package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validatePortal(); err != nil {
		return err
	}
	if err := c.validateBrowser(); err != nil {
		return err
	}
	if err := c.validateRetry(); err != nil {
		return err
	}
	if err := c.validateCapture(); err != nil {
		return err
	}
	if err := c.validateDownload(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validatePortal() error {
	parsed, err := url.Parse(c.Portal.BaseURL)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return fmt.Errorf("portal.base_url must be an absolute URL, got %q", c.Portal.BaseURL)
	}
	if !strings.HasPrefix(c.Portal.ViewerPath, "/") {
		return errors.New("portal.viewer_path must start with /")
	}
	if !strings.HasPrefix(c.Portal.ListPath, "/") {
		return errors.New("portal.list_path must start with /")
	}
	if c.Portal.PageSize <= 0 {
		return errors.New("portal.page_size must be positive")
	}
	if len(c.Portal.KeptArguments) == 0 {
		return errors.New("portal.kept_arguments must name at least one argument")
	}
	return nil
}

func (c *Config) validateBrowser() error {
	return ensureNonNegativeMap(map[string]int{
		"browser.settle_seconds":       c.Browser.SettleSeconds,
		"browser.list_settle_seconds":  c.Browser.ListSettleSeconds,
		"browser.wait_timeout_seconds": c.Browser.WaitTimeoutSeconds,
	})
}

func (c *Config) validateRetry() error {
	if c.Retry.Attempts < 1 {
		return errors.New("retry.attempts must be >= 1")
	}
	if c.Auth.MaxAttempts < 1 {
		return errors.New("auth.max_attempts must be >= 1")
	}
	return ensureNonNegativeMap(map[string]int{
		"retry.delay_seconds":          c.Retry.DelaySeconds,
		"retry.metadata_delay_seconds": c.Retry.MetadataDelaySeconds,
	})
}

func (c *Config) validateCapture() error {
	if c.Capture.ManifestSuffix == "" {
		return errors.New("capture.manifest_suffix must be set")
	}
	if c.Capture.SegmentExtension == "" || c.Capture.SegmentExtension == "." {
		return errors.New("capture.segment_extension must be set")
	}
	return nil
}

func (c *Config) validateDownload() error {
	switch c.Download.Format {
	case "mp4", "mp3":
	default:
		return fmt.Errorf("download.format must be mp4 or mp3, got %q", c.Download.Format)
	}
	if c.Download.TimeoutSeconds < 0 {
		return errors.New("download.timeout_seconds must be >= 0")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format: unsupported value %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level: unsupported value %q", c.Logging.Level)
	}
	return nil
}

func ensureNonNegativeMap(values map[string]int) error {
	for key, value := range values {
		if value < 0 {
			return fmt.Errorf("%s must be >= 0", key)
		}
	}
	return nil
}
