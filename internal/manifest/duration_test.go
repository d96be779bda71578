package manifest_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"panograb/internal/manifest"
)

func writeManifest(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "lecture.m3u8")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write manifest: %v", err)
	}
	return path
}

func TestDurationSumsExtinf(t *testing.T) {
	path := writeManifest(t, "#EXTM3U\n#EXT-X-TARGETDURATION:6\n#EXTINF:6.000,\nhttps://h/p/seg1.ts\n#EXTINF:4.500,\nhttps://h/p/seg2.ts\n#EXT-X-ENDLIST")
	got, err := manifest.Duration(path)
	if err != nil {
		t.Fatalf("Duration returned error: %v", err)
	}
	if got != 10.5 {
		t.Fatalf("expected 10.5, got %v", got)
	}
}

func TestDurationWithoutTagsIsZero(t *testing.T) {
	got, err := manifest.SumDurations(strings.NewReader("#EXTM3U\nseg.ts\n"))
	if err != nil {
		t.Fatalf("SumDurations returned error: %v", err)
	}
	if got != 0 {
		t.Fatalf("expected 0, got %v", got)
	}
}

func TestDurationMalformedFails(t *testing.T) {
	path := writeManifest(t, "#EXTM3U\n#EXTINF:six,\nseg.ts")
	if _, err := manifest.Duration(path); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestSumDurationsRejectsNonFiniteValues(t *testing.T) {
	for _, value := range []string{"NaN", "Inf", "0x1p3"} {
		body := "#EXTM3U\n#EXTINF:6.0,\nseg1.ts\n#EXTINF:" + value + ",\nseg2.ts\n"
		if got, err := manifest.SumDurations(strings.NewReader(body)); err == nil {
			t.Fatalf("SumDurations with %s: expected error, got %v", value, got)
		}
	}
}

func TestDurationMissingFile(t *testing.T) {
	if _, err := manifest.Duration(filepath.Join(t.TempDir(), "missing.m3u8")); err == nil {
		t.Fatal("expected error for missing file")
	}
}
