package scrape

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"panograb/internal/logging"
	"panograb/internal/services"
)

// Selectors on the viewer page.
const (
	ParentNameSelector    = "#parentName"
	ParentContextSelector = "#parentContext"
	ParentLinkSelector    = "#parentClickTarget"
	DetailsHeaderSelector = "#detailsTabHeader"
	DetailsSelector       = "#detailsTab"
	TitleSelector         = "#detailsTab > div:first-of-type"
	TranscriptSelector    = "#transcriptTabPane > div:nth-of-type(3) > div:nth-of-type(2)"
)

// Page is the browser surface the scrapers read from.
type Page interface {
	Location(ctx context.Context) (string, error)
	Text(ctx context.Context, selector string) (string, error)
	InnerHTML(ctx context.Context, selector string) (string, error)
	Attribute(ctx context.Context, selector, name string) (string, bool, error)
	Click(ctx context.Context, selector string) error
	Reload(ctx context.Context) error
	Sleep(ctx context.Context, d time.Duration) error
}

// Metadata describes one recording as shown on its viewer page.
type Metadata struct {
	URL        string `json:"url"`
	ParentName string `json:"parentName"`
	ParentURL  string `json:"parentURL"`
	Title      string `json:"title"`
	DetailsTab string `json:"detailsTab"`
}

// Scraper reads metadata and transcripts.
type Scraper struct {
	Retry    services.RetryPolicy
	TabPause time.Duration
	Logger   *slog.Logger
}

// Metadata reads the viewer page's details. A failed read reloads the page
// before the next attempt.
func (s *Scraper) Metadata(ctx context.Context, page Page) (Metadata, error) {
	logger := s.Logger
	if logger == nil {
		logger = logging.NewNop()
	}
	var meta Metadata
	err := services.Retry(ctx, s.Retry, logger, func(ctx context.Context) error {
		read, err := s.readMetadata(ctx, page)
		if err != nil {
			if reloadErr := page.Reload(ctx); reloadErr != nil {
				logger.Debug("reload after failed metadata read", logging.Error(reloadErr))
			}
			return err
		}
		meta = read
		return nil
	})
	if err != nil {
		if ctx.Err() != nil {
			return Metadata{}, ctx.Err()
		}
		return Metadata{}, services.Wrap(services.ErrNavigation, "scrape", "metadata", "", err)
	}
	return meta, nil
}

func (s *Scraper) readMetadata(ctx context.Context, page Page) (Metadata, error) {
	location, err := page.Location(ctx)
	if err != nil {
		return Metadata{}, err
	}
	parentHTML, err := page.InnerHTML(ctx, ParentNameSelector)
	if err != nil {
		return Metadata{}, err
	}
	if err := page.Click(ctx, DetailsHeaderSelector); err != nil {
		return Metadata{}, err
	}
	if err := page.Sleep(ctx, s.TabPause); err != nil {
		return Metadata{}, err
	}
	title, err := page.Text(ctx, TitleSelector)
	if err != nil {
		return Metadata{}, err
	}
	details, err := page.Text(ctx, DetailsSelector)
	if err != nil {
		return Metadata{}, err
	}
	if strings.TrimSpace(title) == "" {
		return Metadata{}, fmt.Errorf("recording title is empty")
	}
	parentURL, err := s.parentURL(ctx, page, location)
	if err != nil {
		return Metadata{}, err
	}
	return Metadata{
		URL:        location,
		ParentName: fragmentText(parentHTML),
		ParentURL:  parentURL,
		Title:      strings.TrimSpace(title),
		DetailsTab: strings.TrimSpace(details),
	}, nil
}

// parentURL resolves the folder link, preferring the link target and falling
// back to the first anchor inside the parent context.
func (s *Scraper) parentURL(ctx context.Context, page Page, location string) (string, error) {
	if href, ok, err := page.Attribute(ctx, ParentLinkSelector, "href"); err == nil && ok && strings.TrimSpace(href) != "" {
		return resolve(location, href), nil
	}
	html, err := page.InnerHTML(ctx, ParentContextSelector)
	if err != nil {
		return "", err
	}
	href := FirstLink(html)
	if href == "" {
		return "", nil
	}
	return resolve(location, href), nil
}

// FirstLink returns the href of the first anchor in an HTML fragment.
func FirstLink(html string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return ""
	}
	href, _ := doc.Find("a[href]").First().Attr("href")
	return strings.TrimSpace(href)
}

func fragmentText(html string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return strings.TrimSpace(html)
	}
	return strings.TrimSpace(doc.Text())
}

func resolve(base, ref string) string {
	baseURL, err := url.Parse(base)
	if err != nil {
		return ref
	}
	refURL, err := url.Parse(ref)
	if err != nil {
		return ref
	}
	return baseURL.ResolveReference(refURL).String()
}
