package manifest_test

import (
	"testing"

	"panograb/internal/manifest"
)

func TestInspectMediaPlaylist(t *testing.T) {
	path := writeManifest(t, "#EXTM3U\n#EXT-X-VERSION:3\n#EXT-X-TARGETDURATION:6\n#EXT-X-MEDIA-SEQUENCE:0\n#EXTINF:6.000,\nhttps://h/p/seg1.ts\n#EXTINF:4.500,\nhttps://h/p/seg2.ts\n#EXT-X-ENDLIST\n")
	info, err := manifest.Inspect(path)
	if err != nil {
		t.Fatalf("Inspect returned error: %v", err)
	}
	if info.Master {
		t.Fatal("expected media playlist")
	}
	if info.Segments != 2 {
		t.Fatalf("expected 2 segments, got %d", info.Segments)
	}
	if info.Duration != 10.5 {
		t.Fatalf("expected 10.5s, got %v", info.Duration)
	}
}

func TestInspectMasterPlaylist(t *testing.T) {
	path := writeManifest(t, "#EXTM3U\n#EXT-X-STREAM-INF:BANDWIDTH=1280000,RESOLUTION=1280x720\nhttps://h/p/720/index.m3u8\n#EXT-X-STREAM-INF:BANDWIDTH=640000,RESOLUTION=640x360\nhttps://h/p/360/index.m3u8\n")
	info, err := manifest.Inspect(path)
	if err != nil {
		t.Fatalf("Inspect returned error: %v", err)
	}
	if !info.Master || info.Variants != 2 {
		t.Fatalf("unexpected info %+v", info)
	}
}
