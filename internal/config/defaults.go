package config

const (
	defaultExportDir            = "./export"
	defaultLogDir               = "~/.local/share/panograb/logs"
	defaultStateDir             = "~/.local/share/panograb"
	defaultPortalBaseURL        = "https://panopto.dtu.dk"
	defaultViewerPath           = "/Panopto/Pages/Viewer.aspx"
	defaultListPath             = "/Panopto/Pages/Sessions/List.aspx"
	defaultPageSize             = 250
	defaultSettleSeconds        = 2
	defaultListSettleSeconds    = 5
	defaultWaitTimeoutSeconds   = 5
	defaultRetryAttempts        = 3
	defaultRetryDelaySeconds    = 5
	defaultMetadataDelaySeconds = 5
	defaultAuthMaxAttempts      = 3
	defaultManifestSuffix       = "/index.m3u8"
	defaultSubtitleMarker       = "subtitles"
	defaultSegmentExtension     = ".ts"
	defaultDownloadFormat       = "mp4"
	defaultFFmpegBinary         = "ffmpeg"
	defaultLogFormat            = "console"
	defaultLogLevel             = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			ExportDir: defaultExportDir,
			LogDir:    defaultLogDir,
			StateDir:  defaultStateDir,
		},
		Portal: Portal{
			BaseURL:       defaultPortalBaseURL,
			ViewerPath:    defaultViewerPath,
			ListPath:      defaultListPath,
			PageSize:      defaultPageSize,
			KeptArguments: []string{"isSubscriptionsPage", "folderID"},
		},
		Browser: Browser{
			Headless:           true,
			SettleSeconds:      defaultSettleSeconds,
			ListSettleSeconds:  defaultListSettleSeconds,
			WaitTimeoutSeconds: defaultWaitTimeoutSeconds,
		},
		Retry: Retry{
			Attempts:             defaultRetryAttempts,
			DelaySeconds:         defaultRetryDelaySeconds,
			MetadataDelaySeconds: defaultMetadataDelaySeconds,
		},
		Auth: Auth{
			MaxAttempts: defaultAuthMaxAttempts,
		},
		Capture: Capture{
			ManifestSuffix:   defaultManifestSuffix,
			SubtitleMarker:   defaultSubtitleMarker,
			SegmentExtension: defaultSegmentExtension,
		},
		Download: Download{
			Format:       defaultDownloadFormat,
			FFmpegBinary: defaultFFmpegBinary,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
