package harvest

import (
	"time"

	"panograb/internal/scrape"
)

// Record is the JSON document written beside each item's artifacts.
type Record struct {
	scrape.Metadata
	VideoDuration float64  `json:"video_duration"`
	ID            string   `json:"id"`
	Manifests     []string `json:"manifests"`
	SegmentCount  int      `json:"segment_count"`
}

// ItemResult describes how one item of a run ended.
type ItemResult struct {
	ID        string
	Title     string
	OutDir    string
	Manifests []string
	Media     []string
	Duration  float64
	Skipped   bool
	Reason    string
}

// Summary aggregates a run.
type Summary struct {
	RunID      string
	SourceURL  string
	Expected   int
	Items      []ItemResult
	StartedAt  time.Time
	FinishedAt time.Time
}

// Processed counts items that were fetched in this run.
func (s Summary) Processed() int {
	n := 0
	for _, item := range s.Items {
		if !item.Skipped {
			n++
		}
	}
	return n
}

// Skipped counts items left untouched because they were already present.
func (s Summary) Skipped() int {
	return len(s.Items) - s.Processed()
}

// TotalDuration sums the playlist durations of processed items.
func (s Summary) TotalDuration() time.Duration {
	var seconds float64
	for _, item := range s.Items {
		if !item.Skipped {
			seconds += item.Duration
		}
	}
	return time.Duration(seconds * float64(time.Second))
}
