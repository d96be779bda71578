package textutil

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// letters that do not decompose into an ASCII base under NFKD.
var transliterations = strings.NewReplacer(
	"æ", "ae", "Æ", "AE",
	"ø", "o", "Ø", "O",
	"œ", "oe", "Œ", "OE",
	"ß", "ss",
	"đ", "d", "Đ", "D",
	"ł", "l", "Ł", "L",
	"þ", "th", "Þ", "TH",
)

var lower = cases.Lower(language.Und)

// Slugify reduces title to lowercase ASCII words joined by hyphens, e.g.
// "Forelæsning 3: Ø-model" becomes "forelaesning-3-o-model". It returns an
// empty string when nothing usable remains.
func Slugify(title string) string {
	stripMarks := transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	ascii, _, err := transform.String(stripMarks, transliterations.Replace(title))
	if err != nil {
		ascii = title
	}
	ascii = lower.String(ascii)

	var b strings.Builder
	b.Grow(len(ascii))
	pendingDash := false
	for _, r := range ascii {
		if r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)) {
			if pendingDash && b.Len() > 0 {
				b.WriteByte('-')
			}
			pendingDash = false
			b.WriteRune(r)
			continue
		}
		pendingDash = true
	}
	return b.String()
}

// Truncate shortens a slug to at most limit bytes without leaving a trailing
// hyphen.
func Truncate(slug string, limit int) string {
	if limit <= 0 || len(slug) <= limit {
		return slug
	}
	return strings.TrimRight(slug[:limit], "-")
}
