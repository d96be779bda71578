package manifest

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"panograb/internal/artifacts"
	"panograb/internal/capture"
	"panograb/internal/logging"
	"panograb/internal/services"
)

// Defaults for the portal's HLS layout.
const (
	DefaultSuffix           = "/index.m3u8"
	DefaultSubtitleMarker   = "subtitles"
	DefaultSegmentExtension = ".ts"
	fileExtension           = ".m3u8"
)

// Recovered is one rewritten playlist ready to be written.
type Recovered struct {
	Lines     []string
	Path      string
	Ordinal   int
	SourceURL string
}

// Content returns the newline-joined playlist text.
func (r Recovered) Content() string {
	return strings.Join(r.Lines, "\n")
}

// Option configures a Recoverer.
type Option func(*Recoverer)

// WithSuffix overrides the URL suffix that marks a playlist.
func WithSuffix(suffix string) Option {
	return func(r *Recoverer) {
		if suffix != "" {
			r.suffix = suffix
		}
	}
}

// WithSubtitleMarker overrides the substring that marks subtitle playlists.
func WithSubtitleMarker(marker string) Option {
	return func(r *Recoverer) {
		if marker != "" {
			r.subtitleMarker = marker
		}
	}
}

// WithSegmentExtension overrides the extension of segment references.
func WithSegmentExtension(ext string) Option {
	return func(r *Recoverer) {
		if ext != "" {
			r.segmentExt = ext
		}
	}
}

// WithLogger sets the recoverer's logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Recoverer) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// Recoverer turns captured playlist responses into standalone files.
type Recoverer struct {
	suffix         string
	subtitleMarker string
	segmentExt     string
	logger         *slog.Logger
}

// NewRecoverer constructs a recoverer using the portal defaults.
func NewRecoverer(opts ...Option) *Recoverer {
	r := &Recoverer{
		suffix:         DefaultSuffix,
		subtitleMarker: DefaultSubtitleMarker,
		segmentExt:     DefaultSegmentExtension,
		logger:         logging.NewNop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// IsCandidate reports whether a request URL names a video playlist.
func (r *Recoverer) IsCandidate(rawURL string) bool {
	return strings.HasSuffix(rawURL, r.suffix) && !strings.Contains(rawURL, r.subtitleMarker)
}

// Plan selects and rewrites the candidate playlists in snapshot without
// touching the filesystem. Paths carry the ordinal naming
// <title>_<NN>.m3u8 inside outDir. A candidate captured without a body
// fails the whole plan with ErrManifestNotFound.
func (r *Recoverer) Plan(snapshot capture.Snapshot, outDir, title string) ([]Recovered, error) {
	candidates := snapshot.Select(func(ex capture.Exchange) bool {
		return r.IsCandidate(ex.URL)
	})
	planned := make([]Recovered, 0, len(candidates))
	for i, ex := range candidates {
		if len(bytes.TrimSpace(ex.Body)) == 0 {
			return nil, services.Wrap(services.ErrManifestNotFound, "manifest", "plan",
				fmt.Sprintf("playlist %s was captured without a body", ex.URL), nil)
		}
		lines, err := r.Rewrite(ex.URL, ex.Body)
		if err != nil {
			return nil, err
		}
		ordinal := i + 1
		planned = append(planned, Recovered{
			Lines:     lines,
			Path:      filepath.Join(outDir, fmt.Sprintf("%s_%02d%s", title, ordinal, fileExtension)),
			Ordinal:   ordinal,
			SourceURL: ex.URL,
		})
	}
	return planned, nil
}

// Recover writes every candidate playlist in snapshot to outDir and returns
// the final paths in discovery order. A single playlist is renamed to
// <title>.m3u8; several keep their ordinal names. When no candidate exists
// nothing is written and ErrManifestNotFound is returned.
func (r *Recoverer) Recover(snapshot capture.Snapshot, outDir, title string) ([]string, error) {
	if strings.TrimSpace(title) == "" {
		return nil, services.Wrap(services.ErrValidation, "manifest", "recover", "title is empty", nil)
	}
	planned, err := r.Plan(snapshot, outDir, title)
	if err != nil {
		return nil, err
	}
	if len(planned) == 0 {
		message := fmt.Sprintf("no playlist ending in %s among %d captured responses", r.suffix, snapshot.Len())
		if excluded := snapshot.URLsWithSuffix(r.suffix); len(excluded) > 0 {
			message += fmt.Sprintf(" (excluded as %s: %s)", r.subtitleMarker, strings.Join(excluded, ", "))
		}
		return nil, services.Wrap(services.ErrManifestNotFound, "manifest", "recover", message, nil)
	}

	paths := make([]string, 0, len(planned))
	for _, rec := range planned {
		if err := artifacts.WriteText(rec.Path, rec.Content()); err != nil {
			return nil, fmt.Errorf("write manifest %d: %w", rec.Ordinal, err)
		}
		r.logger.Debug("manifest written",
			logging.Int(logging.FieldOrdinal, rec.Ordinal),
			logging.String(logging.FieldURL, rec.SourceURL),
			logging.Int("lines", len(rec.Lines)),
		)
		paths = append(paths, rec.Path)
	}

	if len(paths) == 1 {
		final := filepath.Join(outDir, title+fileExtension)
		if err := os.Rename(paths[0], final); err != nil {
			return nil, fmt.Errorf("rename manifest: %w", err)
		}
		paths[0] = final
	}
	return paths, nil
}

// Rewrite decodes body and makes every segment reference absolute relative
// to manifestURL. Other lines pass through unchanged.
func (r *Recoverer) Rewrite(manifestURL string, body []byte) ([]string, error) {
	if !utf8.Valid(body) {
		return nil, fmt.Errorf("manifest %s: body is not valid utf-8", manifestURL)
	}
	prefix, origin, err := segmentBase(manifestURL)
	if err != nil {
		return nil, err
	}

	var lines []string
	scanner := bufio.NewScanner(bytes.NewReader(body))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		text := scanner.Text()
		line := ParseLine(text, r.segmentExt)
		if line.Kind == LineSegment {
			text = absolutize(strings.TrimSpace(text), prefix, origin)
		}
		lines = append(lines, text)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("manifest %s: %w", manifestURL, err)
	}
	return lines, nil
}

// segmentBase returns the manifest URL with its file name removed and the
// scheme+host origin used for root-relative references.
func segmentBase(manifestURL string) (string, string, error) {
	parsed, err := url.Parse(manifestURL)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return "", "", errors.Join(fmt.Errorf("manifest url %q is not absolute", manifestURL), err)
	}
	idx := strings.LastIndex(manifestURL, "/")
	return manifestURL[:idx+1], parsed.Scheme + "://" + parsed.Host, nil
}

func absolutize(ref, prefix, origin string) string {
	switch {
	case strings.Contains(ref, "://"):
		return ref
	case strings.HasPrefix(ref, "/"):
		return origin + ref
	default:
		return prefix + ref
	}
}
