package main

import (
	"fmt"
	"math"
	"strconv"
	"time"

	"panograb/internal/harvest"
)

func renderRunSummary(summary harvest.Summary) string {
	rows := make([][]string, 0, len(summary.Items))
	for _, item := range summary.Items {
		status := "fetched"
		duration := formatSeconds(item.Duration)
		if item.Skipped {
			status = "skipped: " + item.Reason
			duration = "-"
		}
		rows = append(rows, []string{
			item.ID,
			formatOptional(item.Title),
			strconv.Itoa(len(item.Manifests)),
			duration,
			status,
		})
	}
	footer := []string{
		"Total",
		fmt.Sprintf("%d fetched, %d skipped", summary.Processed(), summary.Skipped()),
		"",
		formatSeconds(summary.TotalDuration().Seconds()),
		"",
	}
	return renderTableWithFooter(
		[]string{"ID", "Title", "Playlists", "Duration", "Status"},
		rows,
		footer,
		[]columnAlignment{alignLeft, alignLeft, alignRight, alignRight, alignLeft},
	)
}

// formatSeconds renders a playlist duration rounded to whole seconds.
func formatSeconds(seconds float64) string {
	if seconds <= 0 || math.IsNaN(seconds) {
		return "0s"
	}
	return (time.Duration(seconds * float64(time.Second))).Round(time.Second).String()
}
