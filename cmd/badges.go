package cmd

import (
	"fmt"

	"github.com/fairflowapp/fairflow/internal/ui"
	"github.com/fairflowapp/fairflow/models"
	"github.com/spf13/cobra"
)

// badgesCmd represents the badges command
var badgesCmd = &cobra.Command{
	Use:   "badges",
	Short: "Show the per-tab uncompleted-task counts",
	Long: `The badge count for a tab covers its actionable roster: unfinished
active tasks plus never-claimed catalog entries, restricted to what the
tab's schedule makes due today.`,
	Run: func(cmd *cobra.Command, args []string) {
		data, kv, err := GetData()
		if err != nil {
			HandleFatalError("Error: Could not initialize the store.", err)
		}
		defer func() { _ = kv.Close() }()

		counts := NewCounter(data).Counts()
		fmt.Println(ui.BadgeLine(counts))

		total := 0
		for _, tab := range models.AllTabs() {
			total += counts[tab]
		}
		if total == 0 {
			fmt.Println("All lists are clear.")
		}
	},
}

func init() {
	rootCmd.AddCommand(badgesCmd)
}
