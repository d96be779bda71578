package ledger_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"panograb/internal/ledger"
)

func openStore(t *testing.T) *ledger.Store {
	t.Helper()
	store, err := ledger.Open(filepath.Join(t.TempDir(), "state", "ledger.db"))
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestRecordAndGetItem(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()

	completed := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	item := ledger.Item{
		ItemID:          "abc-123",
		Title:           "lecture-1",
		OutDir:          "/export/abc-123",
		Manifests:       []string{"/export/abc-123/lecture-1.m3u8"},
		DurationSeconds: 3600.5,
		Format:          "mp4",
		RunID:           "run-1",
		CompletedAt:     completed,
	}
	if err := store.RecordItem(ctx, item); err != nil {
		t.Fatalf("RecordItem failed: %v", err)
	}

	got, err := store.GetItem(ctx, "abc-123")
	if err != nil {
		t.Fatalf("GetItem failed: %v", err)
	}
	if diff := cmp.Diff(&item, got); diff != "" {
		t.Fatalf("item mismatch (-want +got):\n%s", diff)
	}

	missing, err := store.GetItem(ctx, "nope")
	if err != nil || missing != nil {
		t.Fatalf("expected nil for missing item, got %+v err=%v", missing, err)
	}
}

func TestRecordItemUpserts(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()

	if err := store.RecordItem(ctx, ledger.Item{ItemID: "x", Title: "old", OutDir: "/a"}); err != nil {
		t.Fatalf("RecordItem failed: %v", err)
	}
	if err := store.RecordItem(ctx, ledger.Item{ItemID: "x", Title: "new", OutDir: "/b"}); err != nil {
		t.Fatalf("RecordItem failed: %v", err)
	}
	items, err := store.ListItems(ctx, 0)
	if err != nil {
		t.Fatalf("ListItems failed: %v", err)
	}
	if len(items) != 1 || items[0].Title != "new" || items[0].OutDir != "/b" {
		t.Fatalf("unexpected items %+v", items)
	}
}

func TestListItemsNewestFirst(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for i, id := range []string{"a", "b", "c"} {
		if err := store.RecordItem(ctx, ledger.Item{ItemID: id, Title: id, OutDir: "/x", CompletedAt: base.Add(time.Duration(i) * time.Hour)}); err != nil {
			t.Fatalf("RecordItem failed: %v", err)
		}
	}
	items, err := store.ListItems(ctx, 2)
	if err != nil {
		t.Fatalf("ListItems failed: %v", err)
	}
	if len(items) != 2 || items[0].ItemID != "c" || items[1].ItemID != "b" {
		t.Fatalf("unexpected order %+v", items)
	}
}

func TestRunLifecycle(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()

	if err := store.BeginRun(ctx, "run-1", "https://portal/List.aspx#", time.Now()); err != nil {
		t.Fatalf("BeginRun failed: %v", err)
	}
	if err := store.FinishRun(ctx, "run-1", 3, errors.New("navigation error")); err != nil {
		t.Fatalf("FinishRun failed: %v", err)
	}
	runs, err := store.ListRuns(ctx, 10)
	if err != nil {
		t.Fatalf("ListRuns failed: %v", err)
	}
	if len(runs) != 1 {
		t.Fatalf("expected one run, got %d", len(runs))
	}
	run := runs[0]
	if run.Status != ledger.RunFailed || run.ItemCount != 3 || run.Error != "navigation error" || run.FinishedAt.IsZero() {
		t.Fatalf("unexpected run %+v", run)
	}
}

func TestReopenKeepsData(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ledger.db")
	store, err := ledger.Open(path)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	if err := store.RecordItem(context.Background(), ledger.Item{ItemID: "keep", Title: "t", OutDir: "/x"}); err != nil {
		t.Fatalf("RecordItem failed: %v", err)
	}
	_ = store.Close()

	reopened, err := ledger.Open(path)
	if err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	defer reopened.Close()
	got, err := reopened.GetItem(context.Background(), "keep")
	if err != nil || got == nil {
		t.Fatalf("expected item after reopen, got %+v err=%v", got, err)
	}
}
