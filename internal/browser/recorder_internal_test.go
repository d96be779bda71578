package browser

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/chromedp/cdproto/network"

	"panograb/internal/capture"
	"panograb/internal/services"
)

func responseEvent(id, url string) *network.EventResponseReceived {
	return &network.EventResponseReceived{
		RequestID: network.RequestID(id),
		Response:  &network.Response{URL: url, Status: 200, MimeType: "text/html"},
	}
}

func allExchanges(snap capture.Snapshot) []capture.Exchange {
	return snap.Select(func(capture.Exchange) bool { return true })
}

func TestRecorderKeepsObservationOrder(t *testing.T) {
	r := newRecorder(nil)
	rec := r.begin()
	r.listen(responseEvent("2", "https://h/b"))
	r.listen(responseEvent("1", "https://h/a"))
	r.listen(responseEvent("2", "https://h/b2"))

	snap, err := r.snapshot(context.Background(), rec)
	if err != nil {
		t.Fatalf("snapshot returned error: %v", err)
	}
	got := allExchanges(snap)
	if len(got) != 2 || got[0].URL != "https://h/b2" || got[1].URL != "https://h/a" {
		t.Fatalf("unexpected exchanges %+v", got)
	}
}

func TestRecorderBeginIsolatesNavigations(t *testing.T) {
	r := newRecorder(nil)
	first := r.begin()
	r.listen(responseEvent("1", "https://h/first"))
	second := r.begin()
	r.listen(responseEvent("2", "https://h/second"))

	firstSnap, _ := r.snapshot(context.Background(), first)
	secondSnap, _ := r.snapshot(context.Background(), second)
	if firstSnap.Len() != 1 || secondSnap.Len() != 1 {
		t.Fatalf("expected one exchange per recording, got %d and %d", firstSnap.Len(), secondSnap.Len())
	}
	if got := allExchanges(secondSnap); got[0].URL != "https://h/second" {
		t.Fatalf("second recording saw %q", got[0].URL)
	}
}

func TestRecorderPendingBodies(t *testing.T) {
	r := newRecorder([]string{"/index.m3u8"})
	rec := r.begin()
	r.listen(responseEvent("1", "https://h/a/index.m3u8"))
	r.listen(responseEvent("2", "https://h/app.js"))
	r.listen(responseEvent("3", "https://h/b/index.m3u8"))

	if got := r.pendingBodies(rec); got != 2 {
		t.Fatalf("expected 2 pending bodies, got %d", got)
	}
	r.listen(&network.EventLoadingFinished{RequestID: "1"})
	r.listen(&network.EventLoadingFailed{RequestID: "3", ErrorText: "net::ERR_ABORTED"})
	if got := r.pendingBodies(rec); got != 0 {
		t.Fatalf("expected no pending bodies, got %d", got)
	}

	start := time.Now()
	r.awaitBodies(context.Background(), rec, time.Second)
	if time.Since(start) > 500*time.Millisecond {
		t.Fatal("awaitBodies waited although nothing was pending")
	}
}

func TestRecorderSnapshotFailsOnMissingManifestBody(t *testing.T) {
	cases := map[string]func(r *recorder){
		"unfinished": func(*recorder) {},
		"failed": func(r *recorder) {
			r.listen(&network.EventLoadingFailed{RequestID: "1", ErrorText: "net::ERR_ABORTED"})
		},
	}
	for name, settle := range cases {
		t.Run(name, func(t *testing.T) {
			r := newRecorder([]string{"/index.m3u8"})
			rec := r.begin()
			r.listen(responseEvent("1", "https://h/a/index.m3u8"))
			r.listen(responseEvent("2", "https://h/app.js"))
			settle(r)

			_, err := r.snapshot(context.Background(), rec)
			if err == nil {
				t.Fatal("expected snapshot to fail without the manifest body")
			}
			if !errors.Is(err, services.ErrNavigation) {
				t.Fatalf("expected navigation error, got %v", err)
			}
			if !strings.Contains(err.Error(), "https://h/a/index.m3u8") {
				t.Fatalf("expected manifest url in error, got %v", err)
			}
		})
	}
}

func TestRecorderWantsBodyIgnoresQuery(t *testing.T) {
	r := newRecorder([]string{"/index.m3u8"})
	if !r.wantsBody("https://h/a/index.m3u8?token=1") {
		t.Fatal("expected manifest with query to want its body")
	}
	if r.wantsBody("https://h/a/segment.ts") {
		t.Fatal("segment should not want its body")
	}
}

func TestSameDocument(t *testing.T) {
	if !sameDocument("https://h/List.aspx#page=0", "https://h/List.aspx#page=1") {
		t.Fatal("fragment-only change should be the same document")
	}
	if sameDocument("https://h/List.aspx#page=0", "https://h/Viewer.aspx?id=1") {
		t.Fatal("different paths reported as the same document")
	}
}
