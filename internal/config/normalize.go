package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizePortal()
	c.normalizeAuth()
	c.normalizeCapture()
	c.normalizeDownload()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.ExportDir) == "" {
		c.Paths.ExportDir = defaultExportDir
	}
	if c.Paths.ExportDir, err = expandPath(c.Paths.ExportDir); err != nil {
		return fmt.Errorf("paths.export_dir: %w", err)
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.StateDir) == "" {
		c.Paths.StateDir = defaultStateDir
	}
	if c.Paths.StateDir, err = expandPath(c.Paths.StateDir); err != nil {
		return fmt.Errorf("paths.state_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizePortal() {
	c.Portal.BaseURL = strings.TrimRight(strings.TrimSpace(c.Portal.BaseURL), "/")
	if c.Portal.BaseURL == "" {
		c.Portal.BaseURL = defaultPortalBaseURL
	}
	if c.Portal.ViewerPath = strings.TrimSpace(c.Portal.ViewerPath); c.Portal.ViewerPath == "" {
		c.Portal.ViewerPath = defaultViewerPath
	}
	if c.Portal.ListPath = strings.TrimSpace(c.Portal.ListPath); c.Portal.ListPath == "" {
		c.Portal.ListPath = defaultListPath
	}
	kept := make([]string, 0, len(c.Portal.KeptArguments))
	for _, name := range c.Portal.KeptArguments {
		if name = strings.TrimSpace(name); name != "" {
			kept = append(kept, name)
		}
	}
	c.Portal.KeptArguments = kept
}

func (c *Config) normalizeAuth() {
	if strings.TrimSpace(c.Auth.Username) == "" {
		if value, ok := os.LookupEnv("PANOPTO_USERNAME"); ok {
			c.Auth.Username = value
		}
	}
	if c.Auth.Password == "" {
		if value, ok := os.LookupEnv("PANOPTO_PASSWORD"); ok {
			c.Auth.Password = value
		}
	}
	c.Auth.Username = strings.ToLower(strings.TrimSpace(c.Auth.Username))
	c.Auth.Password = strings.TrimSpace(c.Auth.Password)
}

func (c *Config) normalizeCapture() {
	c.Capture.ManifestSuffix = strings.TrimSpace(c.Capture.ManifestSuffix)
	c.Capture.SubtitleMarker = strings.TrimSpace(c.Capture.SubtitleMarker)
	ext := strings.TrimSpace(c.Capture.SegmentExtension)
	if ext != "" && !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	c.Capture.SegmentExtension = strings.ToLower(ext)
}

func (c *Config) normalizeDownload() {
	format := strings.ToLower(strings.TrimSpace(c.Download.Format))
	c.Download.Format = strings.TrimPrefix(format, ".")
	if c.Download.Format == "" {
		c.Download.Format = defaultDownloadFormat
	}
	if c.Download.FFmpegBinary = strings.TrimSpace(c.Download.FFmpegBinary); c.Download.FFmpegBinary == "" {
		c.Download.FFmpegBinary = defaultFFmpegBinary
	}
}

func (c *Config) normalizeLogging() {
	format := strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if format == "" {
		format = defaultLogFormat
	}
	c.Logging.Format = format
	level := strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if level == "" {
		level = defaultLogLevel
	}
	c.Logging.Level = level
}
