package browser

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/chromedp/cdproto/network"

	"panograb/internal/capture"
	"panograb/internal/services"
)

type response struct {
	url    string
	status int64
	mime   string
}

// recording holds the responses of one navigation cycle.
type recording struct {
	order     []network.RequestID
	responses map[network.RequestID]response
	finished  map[network.RequestID]bool
	failed    map[network.RequestID]string
}

func newRecording() *recording {
	return &recording{
		responses: make(map[network.RequestID]response),
		finished:  make(map[network.RequestID]bool),
		failed:    make(map[network.RequestID]string),
	}
}

// recorder feeds chromedp network events into the active recording.
type recorder struct {
	mu           sync.Mutex
	current      *recording
	bodySuffixes []string
}

func newRecorder(bodySuffixes []string) *recorder {
	return &recorder{current: newRecording(), bodySuffixes: bodySuffixes}
}

// begin starts a fresh recording; events from earlier navigations are not
// visible to it.
func (r *recorder) begin() *recording {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.current = newRecording()
	return r.current
}

func (r *recorder) listen(ev any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec := r.current
	switch e := ev.(type) {
	case *network.EventResponseReceived:
		if e.Response == nil {
			return
		}
		if _, seen := rec.responses[e.RequestID]; !seen {
			rec.order = append(rec.order, e.RequestID)
		}
		rec.responses[e.RequestID] = response{
			url:    e.Response.URL,
			status: e.Response.Status,
			mime:   e.Response.MimeType,
		}
	case *network.EventLoadingFinished:
		rec.finished[e.RequestID] = true
	case *network.EventLoadingFailed:
		rec.failed[e.RequestID] = e.ErrorText
	}
}

func (r *recorder) wantsBody(rawURL string) bool {
	path, _, _ := strings.Cut(rawURL, "?")
	for _, suffix := range r.bodySuffixes {
		if strings.HasSuffix(path, suffix) {
			return true
		}
	}
	return false
}

// pendingBodies lists wanted responses whose body has not finished loading.
func (r *recorder) pendingBodies(rec *recording) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	pending := 0
	for _, id := range rec.order {
		resp := rec.responses[id]
		if !r.wantsBody(resp.url) {
			continue
		}
		if _, failed := rec.failed[id]; failed {
			continue
		}
		if !rec.finished[id] {
			pending++
		}
	}
	return pending
}

// awaitBodies polls until every wanted body finished loading or timeout
// elapses.
func (r *recorder) awaitBodies(ctx context.Context, rec *recording, timeout time.Duration) {
	deadline := time.Now().Add(timeout)
	for r.pendingBodies(rec) > 0 && time.Now().Before(deadline) {
		select {
		case <-ctx.Done():
			return
		case <-time.After(100 * time.Millisecond):
		}
	}
}

// snapshot assembles the recording into exchanges, fetching bodies for
// wanted responses from the browser. A wanted response whose body failed or
// is still loading fails the capture. cdpCtx must carry a chromedp executor.
func (r *recorder) snapshot(cdpCtx context.Context, rec *recording) (capture.Snapshot, error) {
	r.mu.Lock()
	type entry struct {
		id     network.RequestID
		resp   response
		done   bool
		failed string
	}
	entries := make([]entry, 0, len(rec.order))
	for _, id := range rec.order {
		entries = append(entries, entry{id: id, resp: rec.responses[id], done: rec.finished[id], failed: rec.failed[id]})
	}
	r.mu.Unlock()

	exchanges := make([]capture.Exchange, 0, len(entries))
	for _, e := range entries {
		ex := capture.Exchange{URL: e.resp.url, Status: e.resp.status, MIMEType: e.resp.mime}
		if r.wantsBody(e.resp.url) {
			switch {
			case e.failed != "":
				return capture.Snapshot{}, services.Wrap(services.ErrNavigation, "browser", "capture",
					fmt.Sprintf("body of %s failed to load: %s", e.resp.url, e.failed), nil)
			case !e.done:
				return capture.Snapshot{}, services.Wrap(services.ErrNavigation, "browser", "capture",
					fmt.Sprintf("body of %s did not finish loading", e.resp.url), nil)
			}
			body, err := network.GetResponseBody(e.id).Do(cdpCtx)
			if err != nil {
				return capture.Snapshot{}, fmt.Errorf("fetch body of %s: %w", e.resp.url, err)
			}
			ex.Body = body
		}
		exchanges = append(exchanges, ex)
	}
	return capture.NewSnapshot(exchanges), nil
}
