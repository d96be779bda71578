package textutil_test

import (
	"testing"

	"panograb/internal/textutil"
)

func TestSlugify(t *testing.T) {
	cases := map[string]string{
		"Lecture 1: Introduction":  "lecture-1-introduction",
		"Forelæsning 3: Ø-model":   "forelaesning-3-o-model",
		"  Café -- Résumé  ":       "cafe-resume",
		"Straße & Co.":             "strasse-co",
		"???":                      "",
		"02450 Intro to ML (2024)": "02450-intro-to-ml-2024",
	}
	for in, want := range cases {
		if got := textutil.Slugify(in); got != want {
			t.Fatalf("Slugify(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestTruncate(t *testing.T) {
	if got := textutil.Truncate("abc-def-ghi", 8); got != "abc-def" {
		t.Fatalf("unexpected truncation %q", got)
	}
	if got := textutil.Truncate("abc", 8); got != "abc" {
		t.Fatalf("unexpected truncation %q", got)
	}
}
