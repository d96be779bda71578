package scrape

import (
	"context"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"panograb/internal/logging"
)

// Subtitles returns the transcript shown on the viewer page as blocks of
// "time\ntext" separated by blank lines. A page without a transcript yields
// an empty string; the pane is not retried.
func (s *Scraper) Subtitles(ctx context.Context, page Page) (string, error) {
	html, err := page.InnerHTML(ctx, TranscriptSelector)
	if err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		if s.Logger != nil {
			s.Logger.Debug("no transcript pane", logging.Error(err))
		}
		return "", nil
	}
	return ParseTranscript(html)
}

// ParseTranscript converts transcript pane markup into text.
func ParseTranscript(html string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return "", fmt.Errorf("parse transcript: %w", err)
	}
	var blocks []string
	doc.Find("div.index-event-row").Each(func(_ int, row *goquery.Selection) {
		at := strings.TrimSpace(row.Find("div.event-time").First().Text())
		text := strings.TrimSpace(row.Find("span").First().Text())
		blocks = append(blocks, at+"\n"+text)
	})
	return strings.Join(blocks, "\n\n"), nil
}
