package cmd

import (
	"fmt"

	"github.com/fairflowapp/fairflow/internal/ui"
	"github.com/fairflowapp/fairflow/models"
	"github.com/fairflowapp/fairflow/store"
	"github.com/spf13/cobra"
)

var (
	listTab    string
	listBucket string
	listAll    bool
)

// listCmd represents the list command
var listCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List the tasks on a tab",
	Example: `  # Active roster of the configured current tab
  fairflow list

  # Pending tasks on the closing list
  fairflow list --tab closing --bucket pending

  # Every tab's active roster
  fairflow list --all`,
	Run: func(cmd *cobra.Command, args []string) {
		data, kv, err := GetData()
		if err != nil {
			HandleFatalError("Error: Could not initialize the store.", err)
		}
		defer func() { _ = kv.Close() }()

		bucket, err := parseBucket(listBucket)
		if err != nil {
			HandleFatalError(fmt.Sprintf("Error: %v.", err), err)
		}

		tabs := []models.Tab{}
		if listAll {
			tabs = models.AllTabs()
		} else {
			tab, err := resolveTab(listTab)
			if err != nil {
				HandleFatalError(fmt.Sprintf("Error: %v.", err), err)
			}
			tabs = append(tabs, tab)
		}

		for _, tab := range tabs {
			tasks := data.ReadList(tab, bucket)
			fmt.Printf("%s (%s, %d task(s))\n", ui.StyleTitle.Render(tab.Label()), bucket, len(tasks))
			if len(tasks) == 0 {
				fmt.Println("  (empty)")
				continue
			}
			fmt.Print(ui.TaskTable(tasks))
		}
	},
}

func parseBucket(s string) (store.Bucket, error) {
	switch store.Bucket(s) {
	case store.BucketActive, store.BucketPending, store.BucketDone:
		return store.Bucket(s), nil
	default:
		return "", fmt.Errorf("unknown bucket %q (expected active, pending or done)", s)
	}
}

func init() {
	listCmd.Flags().StringVarP(&listTab, "tab", "t", "", "tab to list (default: configured current tab, else opening)")
	listCmd.Flags().StringVarP(&listBucket, "bucket", "b", "active", "bucket to list: active, pending or done")
	listCmd.Flags().BoolVar(&listAll, "all", false, "list every tab")
	rootCmd.AddCommand(listCmd)
}
