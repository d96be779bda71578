package portal

import (
	"net/url"
	"strings"

	"panograb/internal/services"
)

// ItemID is the portal's opaque identifier for a single recording.
type ItemID string

func (id ItemID) String() string { return string(id) }

// Kind describes what a user supplied URL points at.
type Kind int

const (
	KindUnknown Kind = iota
	KindViewer
	KindListing
)

func (k Kind) String() string {
	switch k {
	case KindViewer:
		return "viewer"
	case KindListing:
		return "listing"
	default:
		return "unknown"
	}
}

const (
	viewerMarker  = "Viewer.aspx"
	listingMarker = "List.aspx"
)

// ExtractID returns the value of the id query parameter. The value is
// returned as it appears in the URL.
func ExtractID(rawURL string) (ItemID, error) {
	_, query, ok := strings.Cut(rawURL, "?")
	if !ok {
		return "", services.Wrap(services.ErrMalformedURL, "portal", "extract id", "url has no query: "+rawURL, nil)
	}
	query, _, _ = strings.Cut(query, "#")
	for _, arg := range strings.Split(query, "&") {
		value, found := strings.CutPrefix(arg, "id=")
		if !found {
			continue
		}
		if value == "" {
			break
		}
		return ItemID(value), nil
	}
	return "", services.Wrap(services.ErrMalformedURL, "portal", "extract id", "url has no id argument: "+rawURL, nil)
}

// Classify accepts viewer and listing URLs hosted on the portal at baseURL and
// rejects everything else.
func Classify(rawURL, baseURL string) (Kind, error) {
	rawURL = strings.TrimSpace(rawURL)
	parsed, err := url.Parse(rawURL)
	if err != nil || parsed.Host == "" {
		return KindUnknown, services.Wrap(services.ErrMalformedURL, "portal", "classify", "not an absolute url: "+rawURL, err)
	}
	base, err := url.Parse(baseURL)
	if err != nil || base.Host == "" {
		return KindUnknown, services.Wrap(services.ErrConfiguration, "portal", "classify", "invalid portal base url: "+baseURL, err)
	}
	if !strings.EqualFold(parsed.Host, base.Host) {
		return KindUnknown, services.Wrap(services.ErrMalformedURL, "portal", "classify", "url is not on "+base.Host, nil)
	}

	switch {
	case strings.HasSuffix(parsed.Path, "/"+viewerMarker):
		if _, err := ExtractID(rawURL); err != nil {
			return KindUnknown, err
		}
		return KindViewer, nil
	case strings.HasSuffix(parsed.Path, "/"+listingMarker):
		return KindListing, nil
	default:
		return KindUnknown, services.Wrap(services.ErrMalformedURL, "portal", "classify", "neither a viewer nor a listing url: "+rawURL, nil)
	}
}

// ViewerURL builds the viewer address for id.
func ViewerURL(baseURL, viewerPath string, id ItemID) string {
	return strings.TrimRight(baseURL, "/") + viewerPath + "?id=" + string(id)
}
