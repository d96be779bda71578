package manifest_test

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"panograb/internal/capture"
	"panograb/internal/manifest"
	"panograb/internal/services"
)

const mediaBody = "#EXTM3U\n#EXT-X-TARGETDURATION:6\n#EXTINF:6.000,\nseg1.ts\n#EXTINF:4.500,\nseg2.ts\n#EXT-X-ENDLIST\n"

func exchange(url, body string) capture.Exchange {
	return capture.Exchange{URL: url, Status: 200, MIMEType: "application/x-mpegurl", Body: []byte(body)}
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read %s: %v", path, err)
	}
	return string(data)
}

func TestRewritePrefixesSegments(t *testing.T) {
	r := manifest.NewRecoverer()
	lines, err := r.Rewrite("https://h/p/index.m3u8", []byte("#EXTM3U\n#EXTINF:6.000,\nseg1.ts"))
	if err != nil {
		t.Fatalf("Rewrite returned error: %v", err)
	}
	want := []string{"#EXTM3U", "#EXTINF:6.000,", "https://h/p/seg1.ts"}
	if diff := cmp.Diff(want, lines); diff != "" {
		t.Fatalf("rewrite mismatch (-want +got):\n%s", diff)
	}
}

func TestRewriteHandlesAbsoluteAndRootRelative(t *testing.T) {
	r := manifest.NewRecoverer()
	body := "#EXTM3U\nhttps://cdn/x/seg1.ts\n/root/seg2.ts\n\nsub/seg3.ts?t=1\nother.m3u8"
	lines, err := r.Rewrite("https://h/sessions/abc/index.m3u8", []byte(body))
	if err != nil {
		t.Fatalf("Rewrite returned error: %v", err)
	}
	want := []string{
		"#EXTM3U",
		"https://cdn/x/seg1.ts",
		"https://h/root/seg2.ts",
		"",
		"https://h/sessions/abc/sub/seg3.ts?t=1",
		"other.m3u8",
	}
	if diff := cmp.Diff(want, lines); diff != "" {
		t.Fatalf("rewrite mismatch (-want +got):\n%s", diff)
	}
}

func TestRewriteRejectsInvalidUTF8(t *testing.T) {
	r := manifest.NewRecoverer()
	if _, err := r.Rewrite("https://h/p/index.m3u8", []byte{0xff, 0xfe}); err == nil {
		t.Fatal("expected error for invalid utf-8")
	}
}

func TestRecoverSingleCandidateDropsOrdinal(t *testing.T) {
	dir := t.TempDir()
	snap := capture.NewSnapshot([]capture.Exchange{
		exchange("https://h/app.js", "console.log(1)"),
		exchange("https://h/s/abc/index.m3u8", mediaBody),
	})

	paths, err := manifest.NewRecoverer().Recover(snap, dir, "intro")
	if err != nil {
		t.Fatalf("Recover returned error: %v", err)
	}
	want := []string{filepath.Join(dir, "intro.m3u8")}
	if diff := cmp.Diff(want, paths); diff != "" {
		t.Fatalf("paths mismatch (-want +got):\n%s", diff)
	}
	if _, err := os.Stat(filepath.Join(dir, "intro_01.m3u8")); !os.IsNotExist(err) {
		t.Fatalf("expected ordinal file to be renamed, stat err=%v", err)
	}
	content := readFile(t, paths[0])
	wantContent := "#EXTM3U\n#EXT-X-TARGETDURATION:6\n#EXTINF:6.000,\nhttps://h/s/abc/seg1.ts\n#EXTINF:4.500,\nhttps://h/s/abc/seg2.ts\n#EXT-X-ENDLIST"
	if content != wantContent {
		t.Fatalf("unexpected content:\n%s", content)
	}
}

func TestRecoverMultipleCandidatesKeepOrdinals(t *testing.T) {
	dir := t.TempDir()
	snap := capture.NewSnapshot([]capture.Exchange{
		exchange("https://h/s/camera/index.m3u8", mediaBody),
		exchange("https://h/s/subtitles/index.m3u8", "#EXTM3U\n"),
		exchange("https://h/s/screen/index.m3u8", mediaBody),
	})

	paths, err := manifest.NewRecoverer().Recover(snap, dir, "lecture")
	if err != nil {
		t.Fatalf("Recover returned error: %v", err)
	}
	want := []string{filepath.Join(dir, "lecture_01.m3u8"), filepath.Join(dir, "lecture_02.m3u8")}
	if diff := cmp.Diff(want, paths); diff != "" {
		t.Fatalf("paths mismatch (-want +got):\n%s", diff)
	}
	if got := readFile(t, paths[1]); !containsLine(got, "https://h/s/screen/seg1.ts") {
		t.Fatalf("second manifest should come from the screen feed:\n%s", got)
	}
}

func TestRecoverIgnoresSubtitlePlaylists(t *testing.T) {
	r := manifest.NewRecoverer()
	if r.IsCandidate("https://h/s/subtitles/eng/index.m3u8") {
		t.Fatal("subtitle playlist selected as candidate")
	}
	if !r.IsCandidate("https://h/s/video/index.m3u8") {
		t.Fatal("video playlist not selected")
	}
	if r.IsCandidate("https://h/s/video/master.m3u8") {
		t.Fatal("playlist without the index suffix selected")
	}
}

func TestRecoverWithoutCandidatesWritesNothing(t *testing.T) {
	dir := t.TempDir()
	snap := capture.NewSnapshot([]capture.Exchange{
		exchange("https://h/s/subtitles/index.m3u8", "#EXTM3U\n"),
	})

	_, err := manifest.NewRecoverer().Recover(snap, dir, "lecture")
	if !errors.Is(err, services.ErrManifestNotFound) {
		t.Fatalf("expected ErrManifestNotFound, got %v", err)
	}
	if !strings.Contains(err.Error(), "https://h/s/subtitles/index.m3u8") {
		t.Fatalf("expected excluded subtitle playlist in error, got %v", err)
	}
	entries, _ := os.ReadDir(dir)
	if len(entries) != 0 {
		t.Fatalf("expected empty directory, found %d entries", len(entries))
	}
}

func TestRecoverRefusesCandidateWithoutBody(t *testing.T) {
	for name, body := range map[string][]byte{"nil": nil, "blank": []byte(" \n\n")} {
		t.Run(name, func(t *testing.T) {
			dir := t.TempDir()
			snap := capture.NewSnapshot([]capture.Exchange{
				exchange("https://h/p/1/index.m3u8", mediaBody),
				{URL: "https://h/p/2/index.m3u8", Status: 200, Body: body},
			})

			paths, err := manifest.NewRecoverer().Recover(snap, dir, "lecture")
			if !errors.Is(err, services.ErrManifestNotFound) {
				t.Fatalf("expected ErrManifestNotFound, got paths=%v err=%v", paths, err)
			}
			if !strings.Contains(err.Error(), "https://h/p/2/index.m3u8") {
				t.Fatalf("expected empty playlist url in error, got %v", err)
			}
			entries, _ := os.ReadDir(dir)
			if len(entries) != 0 {
				t.Fatalf("expected empty directory, found %d entries", len(entries))
			}
		})
	}
}

func TestRecoverCustomSuffixAndExtension(t *testing.T) {
	dir := t.TempDir()
	r := manifest.NewRecoverer(
		manifest.WithSuffix("/playlist.m3u8"),
		manifest.WithSegmentExtension(".aac"),
		manifest.WithSubtitleMarker("captions"),
	)
	snap := capture.NewSnapshot([]capture.Exchange{
		exchange("https://h/a/playlist.m3u8", "#EXTM3U\n#EXTINF:2,\nchunk.aac\n"),
	})
	paths, err := r.Recover(snap, dir, "audio")
	if err != nil {
		t.Fatalf("Recover returned error: %v", err)
	}
	if got := readFile(t, paths[0]); !containsLine(got, "https://h/a/chunk.aac") {
		t.Fatalf("segment not rewritten:\n%s", got)
	}
}

func containsLine(content, line string) bool {
	for _, l := range strings.Split(content, "\n") {
		if l == line {
			return true
		}
	}
	return false
}
