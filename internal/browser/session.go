package browser

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"time"

	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"
	"github.com/chromedp/chromedp/kb"

	"panograb/internal/capture"
	"panograb/internal/config"
	"panograb/internal/logging"
	"panograb/internal/services"
)

const navigationTimeout = 90 * time.Second

// Options configures a browser session.
type Options struct {
	Headless     bool
	ExecPath     string
	UserAgent    string
	Settle       time.Duration
	WaitTimeout  time.Duration
	BodySuffixes []string
	Logger       *slog.Logger
}

// OptionsFromConfig maps the browser and capture sections onto Options.
func OptionsFromConfig(cfg *config.Config, debug bool) Options {
	return Options{
		Headless:     cfg.Browser.Headless && !debug,
		ExecPath:     cfg.Browser.ExecPath,
		UserAgent:    cfg.Browser.UserAgent,
		Settle:       cfg.SettleDelay(),
		WaitTimeout:  cfg.WaitTimeout(),
		BodySuffixes: []string{cfg.Capture.ManifestSuffix},
	}
}

// Session is a single Chrome tab with network recording.
type Session struct {
	ctx         context.Context
	cancel      context.CancelFunc
	rec         *recorder
	settle      time.Duration
	waitTimeout time.Duration
	logger      *slog.Logger
}

// New launches Chrome and enables network events.
func New(parent context.Context, opts Options) (*Session, error) {
	logger := opts.Logger
	if logger == nil {
		logger = logging.NewNop()
	}

	allocOpts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", opts.Headless),
		chromedp.Flag("disable-gpu", true),
		chromedp.WindowSize(1920, 1080),
	)
	if opts.ExecPath != "" {
		allocOpts = append(allocOpts, chromedp.ExecPath(opts.ExecPath))
	}
	if opts.UserAgent != "" {
		allocOpts = append(allocOpts, chromedp.UserAgent(opts.UserAgent))
	}

	allocCtx, allocCancel := chromedp.NewExecAllocator(parent, allocOpts...)
	tabCtx, tabCancel := chromedp.NewContext(allocCtx, chromedp.WithLogf(func(format string, args ...any) {
		logger.Debug(fmt.Sprintf(format, args...))
	}))

	s := &Session{
		ctx: tabCtx,
		cancel: func() {
			tabCancel()
			allocCancel()
		},
		rec:         newRecorder(opts.BodySuffixes),
		settle:      opts.Settle,
		waitTimeout: opts.WaitTimeout,
		logger:      logger,
	}

	chromedp.ListenTarget(tabCtx, s.rec.listen)
	if err := chromedp.Run(tabCtx, network.Enable()); err != nil {
		s.cancel()
		return nil, services.Wrap(services.ErrExternalTool, "browser", "start", "launch chrome", err)
	}
	logger.Debug("browser started", slog.Bool("headless", opts.Headless))
	return s, nil
}

// Close shuts the browser down.
func (s *Session) Close() {
	if s == nil || s.cancel == nil {
		return
	}
	s.cancel()
}

// run executes actions on the tab, bounded by timeout and by ctx.
func (s *Session) run(ctx context.Context, timeout time.Duration, actions ...chromedp.Action) error {
	runCtx := s.ctx
	var cancel context.CancelFunc
	if timeout > 0 {
		runCtx, cancel = context.WithTimeout(runCtx, timeout)
	} else {
		runCtx, cancel = context.WithCancel(runCtx)
	}
	defer cancel()
	stop := context.AfterFunc(ctx, cancel)
	defer stop()

	err := chromedp.Run(runCtx, actions...)
	if err != nil && ctx.Err() != nil {
		return ctx.Err()
	}
	return err
}

// Navigate loads target. A target that differs from the current page only
// in its fragment is loaded from scratch so the page re-renders.
func (s *Session) Navigate(ctx context.Context, target string) error {
	current, err := s.Location(ctx)
	if err == nil && sameDocument(current, target) && current != target {
		if err := s.run(ctx, navigationTimeout, chromedp.Navigate("about:blank")); err != nil {
			return fmt.Errorf("navigate %s: %w", target, err)
		}
	}
	if err := s.run(ctx, navigationTimeout, chromedp.Navigate(target)); err != nil {
		return fmt.Errorf("navigate %s: %w", target, err)
	}
	return nil
}

// Visit navigates to target, lets the page settle, and returns the network
// exchanges observed during this navigation only.
func (s *Session) Visit(ctx context.Context, target string) (capture.Snapshot, error) {
	rec := s.rec.begin()
	if err := s.Navigate(ctx, target); err != nil {
		return capture.Snapshot{}, err
	}
	if err := sleep(ctx, s.settle); err != nil {
		return capture.Snapshot{}, err
	}
	s.rec.awaitBodies(ctx, rec, s.waitTimeout)

	var snap capture.Snapshot
	err := s.run(ctx, s.waitTimeout+navigationTimeout, chromedp.ActionFunc(func(cdpCtx context.Context) error {
		var err error
		snap, err = s.rec.snapshot(cdpCtx, rec)
		return err
	}))
	if err != nil {
		return capture.Snapshot{}, err
	}
	s.logger.Debug("page captured",
		logging.String(logging.FieldURL, target),
		logging.Int("exchanges", snap.Len()),
	)
	return snap, nil
}

// Reload reloads the current page.
func (s *Session) Reload(ctx context.Context) error {
	return s.run(ctx, navigationTimeout, chromedp.Reload())
}

// Location returns the current page URL.
func (s *Session) Location(ctx context.Context) (string, error) {
	var loc string
	if err := s.run(ctx, s.waitTimeout, chromedp.Location(&loc)); err != nil {
		return "", err
	}
	return loc, nil
}

// Text waits for selector to be visible and returns its text.
func (s *Session) Text(ctx context.Context, selector string) (string, error) {
	var text string
	err := s.run(ctx, s.waitTimeout,
		chromedp.WaitVisible(selector, chromedp.ByQuery),
		chromedp.Text(selector, &text, chromedp.ByQuery),
	)
	if err != nil {
		return "", elementError(selector, err)
	}
	return text, nil
}

// OuterHTML waits for selector to exist and returns its outer markup.
func (s *Session) OuterHTML(ctx context.Context, selector string) (string, error) {
	var html string
	err := s.run(ctx, s.waitTimeout,
		chromedp.WaitReady(selector, chromedp.ByQuery),
		chromedp.OuterHTML(selector, &html, chromedp.ByQuery),
	)
	if err != nil {
		return "", elementError(selector, err)
	}
	return html, nil
}

// InnerHTML waits for selector to exist and returns its inner markup.
func (s *Session) InnerHTML(ctx context.Context, selector string) (string, error) {
	var html string
	err := s.run(ctx, s.waitTimeout,
		chromedp.WaitReady(selector, chromedp.ByQuery),
		chromedp.InnerHTML(selector, &html, chromedp.ByQuery),
	)
	if err != nil {
		return "", elementError(selector, err)
	}
	return html, nil
}

// Attribute returns the named attribute of selector, reporting whether it
// is set.
func (s *Session) Attribute(ctx context.Context, selector, name string) (string, bool, error) {
	var value string
	var ok bool
	err := s.run(ctx, s.waitTimeout,
		chromedp.WaitReady(selector, chromedp.ByQuery),
		chromedp.AttributeValue(selector, name, &value, &ok, chromedp.ByQuery),
	)
	if err != nil {
		return "", false, elementError(selector, err)
	}
	return value, ok, nil
}

// Click waits for selector to be visible and clicks it.
func (s *Session) Click(ctx context.Context, selector string) error {
	err := s.run(ctx, s.waitTimeout,
		chromedp.WaitVisible(selector, chromedp.ByQuery),
		chromedp.Click(selector, chromedp.ByQuery),
	)
	if err != nil {
		return elementError(selector, err)
	}
	return nil
}

// Fill replaces the value of the input at selector.
func (s *Session) Fill(ctx context.Context, selector, value string) error {
	err := s.run(ctx, s.waitTimeout,
		chromedp.WaitVisible(selector, chromedp.ByQuery),
		chromedp.Clear(selector, chromedp.ByQuery),
		chromedp.SendKeys(selector, value, chromedp.ByQuery),
	)
	if err != nil {
		return elementError(selector, err)
	}
	return nil
}

// Submit presses enter inside the input at selector.
func (s *Session) Submit(ctx context.Context, selector string) error {
	if err := s.run(ctx, s.waitTimeout, chromedp.SendKeys(selector, kb.Enter, chromedp.ByQuery)); err != nil {
		return elementError(selector, err)
	}
	return nil
}

// Exists reports whether selector currently matches any node, without
// waiting.
func (s *Session) Exists(ctx context.Context, selector string) (bool, error) {
	var nodes []*cdp.Node
	err := s.run(ctx, s.waitTimeout, chromedp.Nodes(selector, &nodes, chromedp.ByQueryAll, chromedp.AtLeast(0)))
	if err != nil {
		return false, elementError(selector, err)
	}
	return len(nodes) > 0, nil
}

// Sleep pauses for d unless ctx is cancelled first.
func (s *Session) Sleep(ctx context.Context, d time.Duration) error {
	return sleep(ctx, d)
}

func elementError(selector string, err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("element %s did not appear: %w", selector, err)
	}
	return fmt.Errorf("element %s: %w", selector, err)
}

func sameDocument(a, b string) bool {
	ua, err := url.Parse(a)
	if err != nil {
		return false
	}
	ub, err := url.Parse(b)
	if err != nil {
		return false
	}
	ua.Fragment, ub.Fragment = "", ""
	ua.RawFragment, ub.RawFragment = "", ""
	return ua.String() == ub.String()
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
