package cmd

import (
	"fmt"
	"time"

	"github.com/fairflowapp/fairflow/internal/history"
	"github.com/fairflowapp/fairflow/internal/ui"
	"github.com/spf13/cobra"
)

// historyCmd groups the history commands.
var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Inspect the action log",
	Long: `Every claim, completion, reset and rollover is logged. The log is
retention-capped to 90 days and 10,000 entries; the archive subcommands
mirror it into SQLite for longer-term queries.`,
}

var (
	historyListTab   string
	historyListLimit int
)

// historyListCmd prints recent events from the KV log.
var historyListCmd = &cobra.Command{
	Use:   "list",
	Short: "Show recent events",
	Run: func(cmd *cobra.Command, args []string) {
		data, kv, err := GetData()
		if err != nil {
			HandleFatalError("Error: Could not initialize the store.", err)
		}
		defer func() { _ = kv.Close() }()

		events := history.NewLog(data.KV()).Events()
		// Newest first for display.
		shown := 0
		table := ui.Table{Headers: []string{"When", "Actor", "Action", "Tab", "Task"}, MaxWidth: 30}
		for i := len(events) - 1; i >= 0; i-- {
			e := events[i]
			if historyListTab != "" && e.Tab != historyListTab {
				continue
			}
			table.Rows = append(table.Rows, []string{
				e.At.Format("2006-01-02 15:04"), orDash(e.Actor), e.Action, orDash(e.Tab), orDash(e.TaskID),
			})
			shown++
			if historyListLimit > 0 && shown >= historyListLimit {
				break
			}
		}
		if shown == 0 {
			fmt.Println("No history events recorded.")
			return
		}
		fmt.Print(table.Render())
	},
}

// historyArchiveCmd mirrors the KV log into the SQLite archive.
var historyArchiveCmd = &cobra.Command{
	Use:   "archive",
	Short: "Mirror the action log into the SQLite archive",
	Run: func(cmd *cobra.Command, args []string) {
		data, kv, err := GetData()
		if err != nil {
			HandleFatalError("Error: Could not initialize the store.", err)
		}
		defer func() { _ = kv.Close() }()

		archive, err := history.OpenArchive(GetArchivePath())
		if err != nil {
			HandleFatalError("Error: Could not open the history archive.", err)
		}
		defer func() { _ = archive.Close() }()

		events := history.NewLog(data.KV()).Events()
		for _, e := range events {
			if err := archive.Record(e); err != nil {
				HandleFatalError("Error: Failed to archive an event.", err)
			}
		}

		fmt.Printf("Archived %d event(s) to %s.\n", len(events), GetArchivePath())
	},
}

var (
	historyQueryTab   string
	historyQueryLimit int
)

// historyQueryCmd reads events back from the SQLite archive.
var historyQueryCmd = &cobra.Command{
	Use:   "query",
	Short: "Query the SQLite archive",
	Run: func(cmd *cobra.Command, args []string) {
		archive, err := history.OpenArchive(GetArchivePath())
		if err != nil {
			HandleFatalError("Error: Could not open the history archive.", err)
		}
		defer func() { _ = archive.Close() }()

		events, err := archive.Events(historyQueryTab, historyQueryLimit)
		if err != nil {
			HandleFatalError("Error: Archive query failed.", err)
		}
		if len(events) == 0 {
			fmt.Println("No archived events matched.")
			return
		}

		table := ui.Table{Headers: []string{"When", "Actor", "Action", "Tab", "Task"}, MaxWidth: 30}
		for _, e := range events {
			table.Rows = append(table.Rows, []string{
				e.At.Local().Format("2006-01-02 15:04"), orDash(e.Actor), e.Action, orDash(e.Tab), orDash(e.TaskID),
			})
		}
		fmt.Print(table.Render())
	},
}

var historyPruneDays int

// historyPruneCmd applies the retention policy to log and archive.
var historyPruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Apply the retention policy to the log and archive",
	Run: func(cmd *cobra.Command, args []string) {
		data, kv, err := GetData()
		if err != nil {
			HandleFatalError("Error: Could not initialize the store.", err)
		}
		defer func() { _ = kv.Close() }()

		if err := history.NewLog(data.KV()).Prune(); err != nil {
			HandleFatalError("Error: Failed to prune the action log.", err)
		}

		archive, err := history.OpenArchive(GetArchivePath())
		if err != nil {
			HandleFatalError("Error: Could not open the history archive.", err)
		}
		defer func() { _ = archive.Close() }()

		cutoff := time.Now().AddDate(0, 0, -historyPruneDays)
		if err := archive.Prune(cutoff); err != nil {
			HandleFatalError("Error: Failed to prune the archive.", err)
		}

		fmt.Printf("History pruned (archive cutoff: %s).\n", cutoff.Format("2006-01-02"))
	},
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func init() {
	historyListCmd.Flags().StringVarP(&historyListTab, "tab", "t", "", "limit to one tab")
	historyListCmd.Flags().IntVarP(&historyListLimit, "limit", "n", 20, "maximum number of events to show")

	historyQueryCmd.Flags().StringVarP(&historyQueryTab, "tab", "t", "", "limit to one tab")
	historyQueryCmd.Flags().IntVarP(&historyQueryLimit, "limit", "n", 100, "maximum number of events to return")

	historyPruneCmd.Flags().IntVar(&historyPruneDays, "days", history.RetentionDays, "archive retention in days")

	historyCmd.AddCommand(historyListCmd)
	historyCmd.AddCommand(historyArchiveCmd)
	historyCmd.AddCommand(historyQueryCmd)
	historyCmd.AddCommand(historyPruneCmd)
	rootCmd.AddCommand(historyCmd)
}
