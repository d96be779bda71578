package portal

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"panograb/internal/services"
)

// DefaultPageSize is the largest page the portal serves.
const DefaultPageSize = 250

// DefaultKeptArguments are the fragment arguments that scope a listing.
var DefaultKeptArguments = []string{"isSubscriptionsPage", "folderID"}

// ListingQuery is a listing URL reduced to the arguments that select its
// contents, ready to be replayed page by page.
type ListingQuery struct {
	Base     string
	Retained []string
	PageSize int
}

// ParseListingURL splits rawURL into its base and fragment arguments and
// keeps only the arguments whose name is listed in kept. Retained arguments
// keep their raw text and input order.
func ParseListingURL(rawURL string, kept []string, pageSize int) (ListingQuery, error) {
	rawURL = strings.TrimSpace(rawURL)
	if rawURL == "" {
		return ListingQuery{}, services.Wrap(services.ErrMalformedURL, "portal", "parse listing", "empty url", nil)
	}
	if pageSize <= 0 {
		return ListingQuery{}, services.Wrap(services.ErrValidation, "portal", "parse listing", fmt.Sprintf("page size must be positive, got %d", pageSize), nil)
	}
	base, fragment, _ := strings.Cut(rawURL, "#")
	if base == "" {
		return ListingQuery{}, services.Wrap(services.ErrMalformedURL, "portal", "parse listing", "url has no base: "+rawURL, nil)
	}

	allowed := make(map[string]struct{}, len(kept))
	for _, name := range kept {
		allowed[name] = struct{}{}
	}

	query := ListingQuery{Base: base, PageSize: pageSize}
	for _, arg := range strings.Split(fragment, "&") {
		if arg == "" {
			continue
		}
		name, _, _ := strings.Cut(arg, "=")
		if _, ok := allowed[name]; ok {
			query.Retained = append(query.Retained, arg)
		}
	}
	return query, nil
}

// Arguments returns the fragment arguments shared by every page.
func (q ListingQuery) Arguments() []string {
	args := make([]string, 0, len(q.Retained)+2)
	args = append(args, q.Retained...)
	args = append(args, "maxResults="+strconv.Itoa(q.PageSize), "view=0")
	return args
}

// PageURL returns the URL of the zero-based page k.
func (q ListingQuery) PageURL(k int) string {
	return q.Base + "#" + strings.Join(q.Arguments(), "&") + "&page=" + strconv.Itoa(k)
}

// PageCount returns floor(total/pageSize)+1. A total that is an exact
// multiple of the page size therefore visits one trailing empty page.
func PageCount(total, pageSize int) int {
	if pageSize <= 0 {
		return 1
	}
	return total/pageSize + 1
}

// ParseTotal reads the integer after the last "of" (or Danish "af") in page
// range text such as "1 - 25 of 312". Thousands separators are ignored.
func ParseTotal(text string) (int, error) {
	words := strings.Fields(text)
	sep := -1
	for i, word := range words {
		if strings.EqualFold(word, "of") || strings.EqualFold(word, "af") {
			sep = i
		}
	}
	if sep < 0 || sep == len(words)-1 {
		return 0, fmt.Errorf("page range %q has no total", text)
	}
	digits := strings.Map(func(r rune) rune {
		if unicode.IsDigit(r) {
			return r
		}
		if r == ',' || r == '.' || r == '\'' {
			return -1
		}
		return r
	}, words[sep+1])
	total, err := strconv.Atoi(digits)
	if err != nil || total < 0 {
		return 0, fmt.Errorf("page range %q has no total", text)
	}
	return total, nil
}
