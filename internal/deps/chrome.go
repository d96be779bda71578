package deps

// ChromeCandidates are the executable names Chrome is commonly installed
// under. chromedp searches for the same names when no path is configured.
var ChromeCandidates = []string{
	"google-chrome",
	"google-chrome-stable",
	"chromium",
	"chromium-browser",
	"chrome",
	"headless-shell",
}

// ChromeRequirement describes the browser dependency. An explicit execPath
// takes precedence over PATH lookup.
func ChromeRequirement(execPath string) Requirement {
	return Requirement{
		Name:        "Chrome",
		Command:     execPath,
		Candidates:  ChromeCandidates,
		Description: "Required to sign in and capture playlists",
	}
}

// FFmpegRequirement describes the transcoder dependency. It is optional when
// only playlists and metadata are wanted.
func FFmpegRequirement(binary string, optional bool) Requirement {
	return Requirement{
		Name:        "FFmpeg",
		Command:     binary,
		Candidates:  []string{"ffmpeg"},
		Description: "Required to download media",
		Optional:    optional,
	}
}
