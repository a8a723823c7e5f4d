package cmd

import (
	"fmt"

	"github.com/fairflowapp/fairflow/internal/auth"
	"github.com/fairflowapp/fairflow/models"
	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
)

var (
	resetTab string
	resetPin string
	resetYes bool
)

// resetCmd represents the reset command
var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Reset a tab's progress, keeping the roster",
	Long: `State-only reset of one tab: pending and done progress is wiped (legacy
storage keys included) and the active roster is rebuilt from the union of
roster and catalog with all runtime fields stripped. The catalog is never
touched. Requires an admin or manager PIN.`,
	Run: func(cmd *cobra.Command, args []string) {
		if resetTab == "" {
			// Validation failure: abort before any storage mutation.
			HandleFatalError("No tab selected. Reset cannot proceed.", models.ErrNoTabSelected)
		}
		tab, err := models.ParseTab(resetTab)
		if err != nil {
			HandleFatalError(fmt.Sprintf("Error: %v.", err), err)
		}

		data, kv, err := GetData()
		if err != nil {
			HandleFatalError("Error: Could not initialize the store.", err)
		}
		defer func() { _ = kv.Close() }()

		pin := resetPin
		if pin == "" {
			entered, err := promptPin("Enter admin or manager PIN")
			if err != nil {
				HandleFatalError("Error: Could not read PIN.", err)
			}
			pin = entered
		}
		identity, err := auth.NewValidator(data).ValidatePin(pin)
		if err != nil {
			HandleFatalError("Error: PIN not accepted.", err)
		}
		if identity.Role == auth.RoleWorker {
			HandleFatalError("Error: Resetting a tab requires an admin or manager PIN.", nil)
		}

		if !resetYes {
			prompt := promptui.Prompt{
				Label:     fmt.Sprintf("Reset all progress on the %s list", tab.Label()),
				IsConfirm: true,
			}
			if _, err := prompt.Run(); err != nil {
				fmt.Println("Operation cancelled.")
				return
			}
		}

		engine := NewEngine(data)
		if err := engine.ResetTab(tab); err != nil {
			HandleFatalError(fmt.Sprintf("Error: Failed to reset the %s list.", tab.Label()), err)
		}

		fmt.Printf("The %s list was reset. Roster preserved, progress cleared.\n", tab.Label())
	},
}

func init() {
	resetCmd.Flags().StringVarP(&resetTab, "tab", "t", "", "tab to reset (required)")
	resetCmd.Flags().StringVarP(&resetPin, "pin", "p", "", "admin or manager PIN")
	resetCmd.Flags().BoolVarP(&resetYes, "yes", "y", false, "skip the confirmation prompt")
	rootCmd.AddCommand(resetCmd)
}
