package ledger

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// Item is a completed recording.
type Item struct {
	ItemID          string
	Title           string
	OutDir          string
	Manifests       []string
	DurationSeconds float64
	Format          string
	RunID           string
	CompletedAt     time.Time
}

// RunStatus is the outcome of a run.
type RunStatus string

const (
	RunRunning   RunStatus = "running"
	RunSucceeded RunStatus = "succeeded"
	RunFailed    RunStatus = "failed"
)

// Run is one invocation of the fetch command.
type Run struct {
	ID         string
	SourceURL  string
	Status     RunStatus
	ItemCount  int
	Error      string
	StartedAt  time.Time
	FinishedAt time.Time
}

// RecordItem inserts or replaces the record for item.ItemID.
func (s *Store) RecordItem(ctx context.Context, item Item) error {
	if item.ItemID == "" {
		return errors.New("record item: item id is required")
	}
	manifests, err := json.Marshal(item.Manifests)
	if err != nil {
		return fmt.Errorf("marshal manifests: %w", err)
	}
	completed := item.CompletedAt
	if completed.IsZero() {
		completed = time.Now()
	}
	err = s.exec(ctx,
		`INSERT INTO items (item_id, title, out_dir, manifests_json, duration_seconds, format, run_id, completed_at)
         VALUES (?, ?, ?, ?, ?, ?, ?, ?)
         ON CONFLICT(item_id) DO UPDATE SET
            title = excluded.title,
            out_dir = excluded.out_dir,
            manifests_json = excluded.manifests_json,
            duration_seconds = excluded.duration_seconds,
            format = excluded.format,
            run_id = excluded.run_id,
            completed_at = excluded.completed_at`,
		item.ItemID,
		item.Title,
		item.OutDir,
		string(manifests),
		item.DurationSeconds,
		nullableString(item.Format),
		nullableString(item.RunID),
		completed.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("record item %s: %w", item.ItemID, err)
	}
	return nil
}

// GetItem returns the record for id, or nil when none exists.
func (s *Store) GetItem(ctx context.Context, id string) (*Item, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT item_id, title, out_dir, manifests_json, duration_seconds, format, run_id, completed_at
         FROM items WHERE item_id = ?`, id)
	item, err := scanItem(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get item %s: %w", id, err)
	}
	return item, nil
}

// ListItems returns the most recently completed items first. A limit of
// zero or less returns every item.
func (s *Store) ListItems(ctx context.Context, limit int) ([]Item, error) {
	query := `SELECT item_id, title, out_dir, manifests_json, duration_seconds, format, run_id, completed_at
         FROM items ORDER BY completed_at DESC, item_id`
	args := []any{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list items: %w", err)
	}
	defer rows.Close()

	var items []Item
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scan item: %w", err)
		}
		items = append(items, *item)
	}
	return items, rows.Err()
}

// BeginRun records the start of a run.
func (s *Store) BeginRun(ctx context.Context, id, sourceURL string, startedAt time.Time) error {
	err := s.exec(ctx,
		`INSERT INTO runs (id, source_url, status, started_at) VALUES (?, ?, ?, ?)`,
		id, sourceURL, RunRunning, startedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("begin run: %w", err)
	}
	return nil
}

// FinishRun stores the outcome of run id.
func (s *Store) FinishRun(ctx context.Context, id string, itemCount int, runErr error) error {
	status := RunSucceeded
	message := ""
	if runErr != nil {
		status = RunFailed
		message = runErr.Error()
	}
	err := s.exec(ctx,
		`UPDATE runs SET status = ?, item_count = ?, error_message = ?, finished_at = ? WHERE id = ?`,
		status, itemCount, nullableString(message), time.Now().UTC().Format(time.RFC3339Nano), id,
	)
	if err != nil {
		return fmt.Errorf("finish run: %w", err)
	}
	return nil
}

// ListRuns returns the most recent runs first.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, source_url, status, item_count, error_message, started_at, finished_at
         FROM runs ORDER BY started_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var (
			run                 Run
			status              string
			errMsg, finishedRaw sql.NullString
			startedRaw          string
		)
		if err := rows.Scan(&run.ID, &run.SourceURL, &status, &run.ItemCount, &errMsg, &startedRaw, &finishedRaw); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		run.Status = RunStatus(status)
		run.Error = errMsg.String
		run.StartedAt = parseTime(startedRaw)
		run.FinishedAt = parseTime(finishedRaw.String)
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanItem(row scanner) (*Item, error) {
	var (
		item          Item
		manifestsRaw  string
		format, runID sql.NullString
		completedRaw  string
	)
	if err := row.Scan(&item.ItemID, &item.Title, &item.OutDir, &manifestsRaw, &item.DurationSeconds, &format, &runID, &completedRaw); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(manifestsRaw), &item.Manifests); err != nil {
		return nil, fmt.Errorf("decode manifests: %w", err)
	}
	item.Format = format.String
	item.RunID = runID.String
	item.CompletedAt = parseTime(completedRaw)
	return &item, nil
}
