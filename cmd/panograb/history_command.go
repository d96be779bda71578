package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"panograb/internal/ledger"
)

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	var limit int
	var showRuns bool

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show downloaded recordings and past runs",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := ctx.openLedger()
			if err != nil {
				return err
			}
			defer store.Close()

			out := cmd.OutOrStdout()
			if showRuns {
				runs, err := store.ListRuns(cmd.Context(), limit)
				if err != nil {
					return err
				}
				if len(runs) == 0 {
					fmt.Fprintln(out, "No runs recorded")
					return nil
				}
				fmt.Fprintln(out, renderRuns(runs))
				return nil
			}

			items, err := store.ListItems(cmd.Context(), limit)
			if err != nil {
				return err
			}
			if len(items) == 0 {
				fmt.Fprintln(out, "No recordings downloaded yet")
				return nil
			}
			fmt.Fprintln(out, renderItems(items))
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum number of entries to show (0 for all)")
	cmd.Flags().BoolVar(&showRuns, "runs", false, "List runs instead of recordings")
	return cmd
}

func renderItems(items []ledger.Item) string {
	rows := make([][]string, 0, len(items))
	for _, item := range items {
		rows = append(rows, []string{
			item.ItemID,
			item.Title,
			strconv.Itoa(len(item.Manifests)),
			formatSeconds(item.DurationSeconds),
			formatOptional(item.Format),
			formatTime(item.CompletedAt),
		})
	}
	return renderTable(
		[]string{"ID", "Title", "Playlists", "Duration", "Format", "Completed"},
		rows,
		[]columnAlignment{alignLeft, alignLeft, alignRight, alignRight, alignLeft, alignLeft},
	)
}

func renderRuns(runs []ledger.Run) string {
	rows := make([][]string, 0, len(runs))
	for _, run := range runs {
		rows = append(rows, []string{
			shortID(run.ID),
			string(run.Status),
			strconv.Itoa(run.ItemCount),
			formatTime(run.StartedAt),
			run.SourceURL,
			formatOptional(run.Error),
		})
	}
	return renderTable(
		[]string{"Run", "Status", "Items", "Started", "URL", "Error"},
		rows,
		[]columnAlignment{alignLeft, alignLeft, alignRight, alignLeft, alignLeft, alignLeft},
	)
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Local().Format("2006-01-02 15:04")
}

func formatOptional(value string) string {
	if value == "" {
		return "-"
	}
	return value
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
