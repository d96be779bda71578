package portal

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

const placeholderMarker = "rowPlaceholder"

// ParseRowIDs returns the id attribute of every result row in the listing
// table body markup, in document order. Placeholder rows rendered while the
// table loads are skipped.
func ParseRowIDs(html string) ([]ItemID, error) {
	// The body arrives as a bare <tbody> fragment; wrap it so the parser keeps
	// the rows instead of dropping them outside a table context.
	markup := html
	if !strings.Contains(strings.ToLower(html), "<table") {
		markup = "<table>" + html + "</table>"
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(markup))
	if err != nil {
		return nil, fmt.Errorf("parse listing rows: %w", err)
	}

	var ids []ItemID
	doc.Find("tr[id]").Each(func(_ int, row *goquery.Selection) {
		id, _ := row.Attr("id")
		id = strings.TrimSpace(id)
		if id == "" || strings.Contains(id, placeholderMarker) {
			return
		}
		if class, ok := row.Attr("class"); ok && strings.Contains(class, placeholderMarker) {
			return
		}
		ids = append(ids, ItemID(id))
	})
	return ids, nil
}
