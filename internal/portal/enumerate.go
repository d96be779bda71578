package portal

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"panograb/internal/logging"
	"panograb/internal/services"
)

// Selectors for the listing page elements the enumerator reads.
const (
	PageRangeSelector = "#pageRange"
	ListBodySelector  = "#listTable tbody"
)

// Page is the slice of a browser session the enumerator needs.
type Page interface {
	Navigate(ctx context.Context, url string) error
	Text(ctx context.Context, selector string) (string, error)
	OuterHTML(ctx context.Context, selector string) (string, error)
}

// EnumerationResult holds the identifiers of a listing in portal order.
type EnumerationResult struct {
	IDs      []ItemID
	Expected int
	Pages    int
}

// Option configures an Enumerator.
type Option func(*Enumerator)

// WithLogger sets the logger used for page progress and retries.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Enumerator) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithPageSize overrides the page-size cap.
func WithPageSize(size int) Option {
	return func(e *Enumerator) {
		if size > 0 {
			e.pageSize = size
		}
	}
}

// WithKeptArguments overrides which fragment arguments survive.
func WithKeptArguments(names []string) Option {
	return func(e *Enumerator) {
		if len(names) > 0 {
			e.kept = append([]string(nil), names...)
		}
	}
}

// WithSettle sets the delay between navigating and reading the page.
func WithSettle(d time.Duration) Option {
	return func(e *Enumerator) {
		if d >= 0 {
			e.settle = d
		}
	}
}

// WithRetryPolicy sets the policy applied to each navigation.
func WithRetryPolicy(policy services.RetryPolicy) Option {
	return func(e *Enumerator) {
		e.policy = policy
	}
}

// WithPageObserver registers a callback invoked after each page is read.
func WithPageObserver(fn func(page, pages, collected int)) Option {
	return func(e *Enumerator) {
		e.observe = fn
	}
}

// Enumerator expands listing URLs into item identifiers.
type Enumerator struct {
	pageSize int
	kept     []string
	settle   time.Duration
	policy   services.RetryPolicy
	logger   *slog.Logger
	observe  func(page, pages, collected int)
}

// NewEnumerator constructs an enumerator with portal defaults.
func NewEnumerator(opts ...Option) *Enumerator {
	e := &Enumerator{
		pageSize: DefaultPageSize,
		kept:     append([]string(nil), DefaultKeptArguments...),
		settle:   5 * time.Second,
		policy:   services.RetryPolicy{Attempts: 3, Delay: 5 * time.Second},
		logger:   logging.NewNop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Enumerate collects every item identifier of the listing at listingURL. The
// result always holds exactly the number of items the portal reports; any
// other count fails with ErrEnumerationMismatch.
func (e *Enumerator) Enumerate(ctx context.Context, page Page, listingURL string) (EnumerationResult, error) {
	if page == nil {
		return EnumerationResult{}, errors.New("enumerate: page is nil")
	}
	query, err := ParseListingURL(listingURL, e.kept, e.pageSize)
	if err != nil {
		return EnumerationResult{}, err
	}

	total, err := e.readTotal(ctx, page, listingURL)
	if err != nil {
		return EnumerationResult{}, err
	}
	pages := PageCount(total, query.PageSize)
	e.logger.Info("listing total read",
		logging.Int("total", total),
		logging.Int("pages", pages),
		logging.Int("page_size", query.PageSize),
	)

	ids := make([]ItemID, 0, total)
	for k := 0; k < pages; k++ {
		pageIDs, err := e.readPage(ctx, page, query.PageURL(k))
		if err != nil {
			return EnumerationResult{}, err
		}
		ids = append(ids, pageIDs...)
		e.logger.Debug("listing page read",
			logging.Int(logging.FieldPage, k),
			logging.Int("rows", len(pageIDs)),
		)
		if e.observe != nil {
			e.observe(k+1, pages, len(ids))
		}
	}

	if len(ids) != total {
		return EnumerationResult{}, services.Wrap(
			services.ErrEnumerationMismatch,
			"portal",
			"enumerate",
			fmt.Sprintf("collected %d items but the listing reports %d", len(ids), total),
			nil,
		)
	}
	return EnumerationResult{IDs: ids, Expected: total, Pages: pages}, nil
}

func (e *Enumerator) readTotal(ctx context.Context, page Page, listingURL string) (int, error) {
	var total int
	err := services.Retry(ctx, e.policy, e.logger, func(ctx context.Context) error {
		if err := e.visit(ctx, page, listingURL); err != nil {
			return err
		}
		text, err := page.Text(ctx, PageRangeSelector)
		if err != nil {
			return err
		}
		if strings.TrimSpace(text) == "" {
			return errors.New("page range is empty")
		}
		total, err = ParseTotal(text)
		return err
	})
	if err != nil {
		return 0, navigationError(ctx, "read total", listingURL, err)
	}
	return total, nil
}

func (e *Enumerator) readPage(ctx context.Context, page Page, pageURL string) ([]ItemID, error) {
	var ids []ItemID
	err := services.Retry(ctx, e.policy, e.logger, func(ctx context.Context) error {
		if err := e.visit(ctx, page, pageURL); err != nil {
			return err
		}
		html, err := page.OuterHTML(ctx, ListBodySelector)
		if err != nil {
			return err
		}
		parsed, err := ParseRowIDs(html)
		if err != nil {
			return services.Permanent(err)
		}
		ids = parsed
		return nil
	})
	if err != nil {
		return nil, navigationError(ctx, "read page", pageURL, err)
	}
	return ids, nil
}

func (e *Enumerator) visit(ctx context.Context, page Page, target string) error {
	if err := page.Navigate(ctx, target); err != nil {
		return err
	}
	return sleep(ctx, e.settle)
}

func navigationError(ctx context.Context, operation, target string, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}
	return services.Wrap(services.ErrNavigation, "portal", operation, target, err)
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
