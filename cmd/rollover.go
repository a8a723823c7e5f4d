package cmd

import (
	"fmt"

	"github.com/fairflowapp/fairflow/models"
	"github.com/spf13/cobra"
)

var rolloverTab string

// rolloverCmd represents the rollover command
var rolloverCmd = &cobra.Command{
	Use:   "rollover",
	Short: "Roll over today's scheduled tasks on a weekly or monthly list",
	Long: `Selective daily rollover: only tasks whose schedule makes them due today
are returned to a fresh claimable state; everything else keeps its progress.
Applies to the weekly and monthly lists only.`,
	Run: func(cmd *cobra.Command, args []string) {
		tab, err := resolveTab(rolloverTab)
		if err != nil {
			HandleFatalError(fmt.Sprintf("Error: %v.", err), err)
		}
		if tab != models.TabWeekly && tab != models.TabMonthly {
			HandleFatalError(fmt.Sprintf("Error: Rollover applies to weekly and monthly lists, not %s.", tab.Label()), nil)
		}

		data, kv, err := GetData()
		if err != nil {
			HandleFatalError("Error: Could not initialize the store.", err)
		}
		defer func() { _ = kv.Close() }()

		n, err := NewEngine(data).RolloverToday(tab)
		if err != nil {
			HandleFatalError(fmt.Sprintf("Error: Failed to roll over the %s list.", tab.Label()), err)
		}

		if n == 0 {
			fmt.Printf("Nothing on the %s list is scheduled for today.\n", tab.Label())
			return
		}
		fmt.Printf("Rolled over %d task(s) on the %s list.\n", n, tab.Label())
	},
}

func init() {
	rolloverCmd.Flags().StringVarP(&rolloverTab, "tab", "t", "", "tab to roll over (weekly or monthly)")
	rootCmd.AddCommand(rolloverCmd)
}
