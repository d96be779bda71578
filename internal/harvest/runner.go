package harvest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"panograb/internal/artifacts"
	"panograb/internal/auth"
	"panograb/internal/capture"
	"panograb/internal/config"
	"panograb/internal/ledger"
	"panograb/internal/logging"
	"panograb/internal/manifest"
	"panograb/internal/portal"
	"panograb/internal/scrape"
	"panograb/internal/services"
	"panograb/internal/textutil"
	"panograb/internal/transcode"
)

// maxTitleLength bounds slugged titles used as file names.
const maxTitleLength = 120

// Browser is the browser session surface a run drives.
type Browser interface {
	auth.Page
	scrape.Page
	OuterHTML(ctx context.Context, selector string) (string, error)
	Visit(ctx context.Context, url string) (capture.Snapshot, error)
}

// Authenticator signs a page into the portal.
type Authenticator interface {
	Login(ctx context.Context, page auth.Page) error
}

// Transcoder turns a playlist into a media file.
type Transcoder interface {
	Transcode(ctx context.Context, manifestPath string, format transcode.Format) (string, error)
}

// Flags are the per-run switches exposed on the command line.
type Flags struct {
	CreateFolder bool
	NoVideo      bool
	SkipExisting bool
	Format       transcode.Format
}

// Option configures a Runner.
type Option func(*Runner)

// WithLogger sets the run logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Runner) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithAuthenticator replaces the portal login.
func WithAuthenticator(a Authenticator) Option {
	return func(r *Runner) {
		if a != nil {
			r.login = a
		}
	}
}

// WithTranscoder replaces the ffmpeg client.
func WithTranscoder(t Transcoder) Option {
	return func(r *Runner) {
		if t != nil {
			r.transcoder = t
		}
	}
}

// WithLedger records runs and items in store.
func WithLedger(store *ledger.Store) Option {
	return func(r *Runner) {
		r.ledger = store
	}
}

// WithProgress sets the per-item progress reporter.
func WithProgress(p Progress) Option {
	return func(r *Runner) {
		if p != nil {
			r.progress = p
		}
	}
}

// Runner executes fetch runs against one browser session.
type Runner struct {
	cfg        *config.Config
	flags      Flags
	browser    Browser
	login      Authenticator
	enumerator *portal.Enumerator
	recoverer  *manifest.Recoverer
	scraper    *scrape.Scraper
	transcoder Transcoder
	ledger     *ledger.Store
	progress   Progress
	logger     *slog.Logger
}

// NewRunner wires the run pipeline from cfg. The browser is owned by the
// caller.
func NewRunner(cfg *config.Config, browser Browser, flags Flags, opts ...Option) (*Runner, error) {
	if cfg == nil {
		return nil, services.Wrap(services.ErrConfiguration, "harvest", "init", "config is nil", nil)
	}
	if browser == nil {
		return nil, errors.New("harvest: browser is nil")
	}
	if flags.Format == "" {
		format, err := transcode.ParseFormat(cfg.Download.Format)
		if err != nil {
			return nil, services.Wrap(services.ErrConfiguration, "harvest", "init", "download format", err)
		}
		flags.Format = format
	}

	r := &Runner{
		cfg:      cfg,
		flags:    flags,
		browser:  browser,
		progress: nopProgress{},
		logger:   logging.NewNop(),
	}
	for _, opt := range opts {
		opt(r)
	}

	policy := services.RetryPolicy{Attempts: cfg.Retry.Attempts, Delay: cfg.RetryDelay()}
	r.enumerator = portal.NewEnumerator(
		portal.WithLogger(logging.NewComponentLogger(r.logger, "enumerate")),
		portal.WithPageSize(cfg.Portal.PageSize),
		portal.WithKeptArguments(cfg.Portal.KeptArguments),
		portal.WithSettle(cfg.ListSettleDelay()),
		portal.WithRetryPolicy(policy),
	)
	r.recoverer = manifest.NewRecoverer(
		manifest.WithSuffix(cfg.Capture.ManifestSuffix),
		manifest.WithSubtitleMarker(cfg.Capture.SubtitleMarker),
		manifest.WithSegmentExtension(cfg.Capture.SegmentExtension),
		manifest.WithLogger(logging.NewComponentLogger(r.logger, "manifest")),
	)
	r.scraper = &scrape.Scraper{
		Retry:    services.RetryPolicy{Attempts: cfg.Retry.Attempts, Delay: cfg.MetadataRetryDelay()},
		TabPause: cfg.SettleDelay(),
		Logger:   logging.NewComponentLogger(r.logger, "scrape"),
	}
	if r.login == nil {
		r.login = &auth.Authenticator{
			ListURL:     cfg.ListURL(),
			Source:      auth.Configured(cfg.Auth.Username, cfg.Auth.Password, auth.NewPrompter()),
			MaxAttempts: cfg.Auth.MaxAttempts,
			Retry:       policy,
			Timings:     auth.DefaultTimings,
			Logger:      logging.NewComponentLogger(r.logger, "auth"),
		}
	}
	if r.transcoder == nil && !flags.NoVideo {
		client, err := transcode.New(cfg.Download.FFmpegBinary, cfg.DownloadTimeout(),
			transcode.WithLogger(logging.NewComponentLogger(r.logger, "transcode")))
		if err != nil {
			return nil, err
		}
		r.transcoder = client
	}
	return r, nil
}

// Run fetches every item behind rawURL. The returned summary covers the items
// finished before any failure.
func (r *Runner) Run(ctx context.Context, rawURL string) (Summary, error) {
	kind, err := portal.Classify(rawURL, r.cfg.Portal.BaseURL)
	if err != nil {
		return Summary{}, err
	}

	summary := Summary{
		RunID:     uuid.NewString(),
		SourceURL: rawURL,
		StartedAt: time.Now(),
	}
	ctx = services.WithRunID(ctx, summary.RunID)
	logger := logging.WithContext(ctx, r.logger)

	if err := os.MkdirAll(r.cfg.Paths.ExportDir, 0o755); err != nil {
		return summary, fmt.Errorf("create export directory: %w", err)
	}
	lock, err := AcquireLock(r.cfg.Paths.ExportDir)
	if err != nil {
		return summary, err
	}
	logger.Debug("export lock acquired", logging.String("path", lock.Path()))
	defer func() {
		if err := lock.Release(); err != nil {
			logger.Warn("release export lock", logging.Error(err))
		}
	}()

	if r.ledger != nil {
		if err := r.ledger.BeginRun(ctx, summary.RunID, rawURL, summary.StartedAt); err != nil {
			return summary, err
		}
	}
	logger.Info("run started", logging.String(logging.FieldURL, rawURL), logging.String("kind", kind.String()))

	runErr := r.run(ctx, kind, rawURL, &summary)
	summary.FinishedAt = time.Now()

	if r.ledger != nil {
		if err := r.ledger.FinishRun(context.WithoutCancel(ctx), summary.RunID, summary.Processed(), runErr); err != nil {
			logger.Warn("record run outcome", logging.Error(err))
		}
	}
	if runErr != nil {
		logger.Error("run failed", logging.Error(runErr), logging.Int("processed", summary.Processed()))
		return summary, runErr
	}
	logger.Info("run finished",
		logging.Int("processed", summary.Processed()),
		logging.Int("skipped", summary.Skipped()),
		logging.String("duration", summary.TotalDuration().String()),
	)
	return summary, nil
}

// Resolve signs in and expands rawURL into item identifiers without
// fetching anything.
func (r *Runner) Resolve(ctx context.Context, rawURL string) ([]portal.ItemID, error) {
	kind, err := portal.Classify(rawURL, r.cfg.Portal.BaseURL)
	if err != nil {
		return nil, err
	}
	if err := r.login.Login(ctx, r.browser); err != nil {
		return nil, err
	}
	return r.resolveIDs(ctx, kind, rawURL)
}

func (r *Runner) run(ctx context.Context, kind portal.Kind, rawURL string, summary *Summary) error {
	if err := r.login.Login(ctx, r.browser); err != nil {
		return err
	}

	ids, err := r.resolveIDs(ctx, kind, rawURL)
	if err != nil {
		return err
	}
	summary.Expected = len(ids)

	r.progress.Start(len(ids))
	defer r.progress.Finish()

	for _, id := range ids {
		result, err := r.processItem(ctx, id)
		if err != nil {
			return err
		}
		summary.Items = append(summary.Items, result)
		r.progress.Advance(result.Title)
	}
	return nil
}

func (r *Runner) resolveIDs(ctx context.Context, kind portal.Kind, rawURL string) ([]portal.ItemID, error) {
	if kind != portal.KindListing {
		id, err := portal.ExtractID(rawURL)
		if err != nil {
			return nil, err
		}
		return []portal.ItemID{id}, nil
	}
	result, err := r.enumerator.Enumerate(ctx, r.browser, rawURL)
	if err != nil {
		return nil, err
	}
	return result.IDs, nil
}

func (r *Runner) processItem(ctx context.Context, id portal.ItemID) (ItemResult, error) {
	ctx = services.WithItemID(ctx, string(id))
	logger := logging.WithContext(ctx, r.logger)
	outDir := r.outDir(id)
	result := ItemResult{ID: string(id), OutDir: outDir}

	if r.flags.SkipExisting {
		reason, err := r.existing(ctx, id, outDir)
		if err != nil {
			return result, err
		}
		if reason != "" {
			logger.Info("item skipped", logging.String("reason", reason))
			result.Skipped = true
			result.Reason = reason
			return result, nil
		}
	}

	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return result, fmt.Errorf("create item directory: %w", err)
	}

	viewerURL := portal.ViewerURL(r.cfg.Portal.BaseURL, r.cfg.Portal.ViewerPath, id)
	snapshot, err := r.browser.Visit(ctx, viewerURL)
	if err != nil {
		return result, err
	}

	meta, err := r.scraper.Metadata(ctx, r.browser)
	if err != nil {
		return result, err
	}
	title := fileTitle(meta.Title, id)
	result.Title = title

	transcript, err := r.scraper.Subtitles(ctx, r.browser)
	if err != nil {
		return result, err
	}
	if err := artifacts.WriteText(filepath.Join(outDir, title+".txt"), transcript); err != nil {
		return result, err
	}

	manifests, err := r.recoverer.Recover(snapshot, outDir, title)
	if err != nil {
		return result, err
	}
	result.Manifests = manifests

	if !r.flags.NoVideo {
		for _, path := range manifests {
			media, err := r.transcoder.Transcode(ctx, path, r.flags.Format)
			if err != nil {
				return result, err
			}
			result.Media = append(result.Media, media)
		}
	}

	duration, err := manifest.Duration(manifests[0])
	if err != nil {
		return result, services.Wrap(services.ErrValidation, "harvest", "duration", manifests[0], err)
	}
	result.Duration = duration

	record := Record{
		Metadata:      meta,
		VideoDuration: duration,
		ID:            string(id),
		Manifests:     baseNames(manifests),
	}
	if info, err := manifest.Inspect(manifests[0]); err != nil {
		logger.Warn("playlist inspection failed", logging.Error(err))
	} else {
		record.SegmentCount = info.Segments
	}
	if err := artifacts.WriteJSON(filepath.Join(outDir, title+".json"), record); err != nil {
		return result, err
	}

	if r.ledger != nil {
		runID, _ := services.RunIDFromContext(ctx)
		err := r.ledger.RecordItem(ctx, ledger.Item{
			ItemID:          string(id),
			Title:           meta.Title,
			OutDir:          outDir,
			Manifests:       manifests,
			DurationSeconds: duration,
			Format:          r.recordedFormat(),
			RunID:           runID,
		})
		if err != nil {
			return result, err
		}
	}

	logger.Info("item fetched",
		logging.String("title", meta.Title),
		logging.Int("manifests", len(manifests)),
		logging.Float64("duration_seconds", duration),
	)
	return result, nil
}

// existing returns why an item can be skipped, or "" when it must be fetched.
func (r *Runner) existing(ctx context.Context, id portal.ItemID, outDir string) (string, error) {
	if r.flags.CreateFolder {
		populated, err := artifacts.NonEmptyDir(outDir)
		if err != nil {
			return "", fmt.Errorf("inspect %s: %w", outDir, err)
		}
		if populated {
			return "folder exists", nil
		}
	}
	if r.ledger != nil {
		item, err := r.ledger.GetItem(ctx, string(id))
		if err != nil {
			return "", err
		}
		if item != nil {
			return "recorded in ledger", nil
		}
	}
	return "", nil
}

func (r *Runner) outDir(id portal.ItemID) string {
	if r.flags.CreateFolder {
		return filepath.Join(r.cfg.Paths.ExportDir, string(id))
	}
	return r.cfg.Paths.ExportDir
}

func (r *Runner) recordedFormat() string {
	if r.flags.NoVideo {
		return ""
	}
	return string(r.flags.Format)
}

func fileTitle(title string, id portal.ItemID) string {
	slug := textutil.Truncate(textutil.Slugify(title), maxTitleLength)
	if slug == "" {
		return string(id)
	}
	return slug
}

func baseNames(paths []string) []string {
	names := make([]string, len(paths))
	for i, p := range paths {
		names[i] = filepath.Base(p)
	}
	return names
}
