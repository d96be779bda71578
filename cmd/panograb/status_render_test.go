package main

import (
	"strings"
	"testing"

	"panograb/internal/harvest"
)

func TestRenderStatusLine(t *testing.T) {
	line := renderStatusLine("FFmpeg", statusOK, "/usr/bin/ffmpeg", false)
	if line != "  FFmpeg:            [OK] /usr/bin/ffmpeg" {
		t.Fatalf("unexpected line %q", line)
	}
	colored := renderStatusLine("FFmpeg", statusError, "", true)
	if !strings.Contains(colored, ansiRed+"[FAIL]"+ansiReset) {
		t.Fatalf("expected red tag, got %q", colored)
	}
}

func TestRenderRunSummary(t *testing.T) {
	out := renderRunSummary(harvest.Summary{Items: []harvest.ItemResult{
		{ID: "a1", Title: "intro", Manifests: []string{"intro.m3u8"}, Duration: 90},
		{ID: "a2", Skipped: true, Reason: "folder exists"},
	}})
	for _, want := range []string{"a1", "intro", "1m30s", "skipped: folder exists", "1 fetched, 1 skipped"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in summary:\n%s", want, out)
		}
	}
}

func TestFormatSeconds(t *testing.T) {
	cases := map[float64]string{
		0:      "0s",
		-1:     "0s",
		59.6:   "1m0s",
		3725.2: "1h2m5s",
	}
	for in, want := range cases {
		if got := formatSeconds(in); got != want {
			t.Fatalf("formatSeconds(%v) = %q, want %q", in, got, want)
		}
	}
}
