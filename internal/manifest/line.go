package manifest

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// LineKind classifies one playlist line.
type LineKind int

const (
	LineBlank LineKind = iota
	LineDirective
	LineDuration
	LineSegment
	LineURI
)

const durationTag = "#EXTINF"

func (k LineKind) String() string {
	switch k {
	case LineBlank:
		return "blank"
	case LineDirective:
		return "directive"
	case LineDuration:
		return "duration"
	case LineSegment:
		return "segment"
	default:
		return "uri"
	}
}

// Line is one raw playlist line and its classification.
type Line struct {
	Kind LineKind
	Text string
}

// ParseLine classifies text. Segment references are recognised solely by
// segmentExt, compared against the path with any query string removed.
func ParseLine(text, segmentExt string) Line {
	trimmed := strings.TrimSpace(text)
	switch {
	case trimmed == "":
		return Line{Kind: LineBlank, Text: text}
	case strings.HasPrefix(trimmed, durationTag):
		return Line{Kind: LineDuration, Text: text}
	case strings.HasPrefix(trimmed, "#"):
		return Line{Kind: LineDirective, Text: text}
	}
	path, _, _ := strings.Cut(trimmed, "?")
	if segmentExt != "" && strings.HasSuffix(strings.ToLower(path), strings.ToLower(segmentExt)) {
		return Line{Kind: LineSegment, Text: text}
	}
	return Line{Kind: LineURI, Text: text}
}

// ParseDurationTag returns the seconds carried by an #EXTINF:<seconds>,<title>
// line.
func ParseDurationTag(text string) (float64, error) {
	trimmed := strings.TrimSpace(text)
	if !strings.HasPrefix(trimmed, durationTag) {
		return 0, fmt.Errorf("not a duration tag: %q", text)
	}
	_, rest, ok := strings.Cut(trimmed, ":")
	if !ok {
		return 0, fmt.Errorf("duration tag %q has no value", text)
	}
	value, _, _ := strings.Cut(rest, ",")
	value = strings.TrimSpace(value)
	if !isDecimal(value) {
		return 0, fmt.Errorf("duration tag %q: %q is not a non-negative decimal", text, value)
	}
	seconds, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, fmt.Errorf("duration tag %q: %w", text, err)
	}
	if math.IsInf(seconds, 0) {
		return 0, fmt.Errorf("duration tag %q is out of range", text)
	}
	return seconds, nil
}

// isDecimal reports whether value is digits with at most one '.', such as
// "10", "9.009" or ".5". Signs, exponents, hex and NaN/Inf spellings are refused.
func isDecimal(value string) bool {
	digits, dot := 0, false
	for _, r := range value {
		switch {
		case r >= '0' && r <= '9':
			digits++
		case r == '.' && !dot:
			dot = true
		default:
			return false
		}
	}
	return digits > 0
}
