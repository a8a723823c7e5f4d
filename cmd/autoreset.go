package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fairflowapp/fairflow/internal/autoreset"
	"github.com/fairflowapp/fairflow/internal/config"
	"github.com/fairflowapp/fairflow/internal/lifecycle"
	"github.com/fairflowapp/fairflow/internal/ui"
	"github.com/fairflowapp/fairflow/models"
	"github.com/spf13/cobra"
)

// NewScheduler builds the auto-reset scheduler over an engine, with the
// check cadence taken from configuration.
func NewScheduler(engine *lifecycle.Engine) *autoreset.Scheduler {
	interval := time.Duration(GetConfig().Tasks.AutoResetIntervalSeconds) * time.Second
	return autoreset.NewScheduler(engine, NewCounter(engine.Data())).
		WithInterval(interval).
		WithLogger(func(format string, args ...interface{}) {
			LogError(fmt.Sprintf(format, args...), nil)
		})
}

// autoresetCmd groups the auto-reset scheduler commands.
var autoresetCmd = &cobra.Command{
	Use:   "autoreset",
	Short: "Manage the daily auto-reset scheduler",
	Long: `Each tab can reset or roll over automatically once per day after a
configured cutoff time. Opening and closing lists wait until every task is
finished; weekly and monthly lists roll over the tasks scheduled for today.
The yearly list is never reset automatically.`,
}

var autoresetRunForeground bool

// autoresetRunCmd runs the scheduler loop or a single pass.
var autoresetRunCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the auto-reset check (once, or as a foreground loop)",
	Run: func(cmd *cobra.Command, args []string) {
		data, kv, err := GetData()
		if err != nil {
			HandleFatalError("Error: Could not initialize the store.", err)
		}
		defer func() { _ = kv.Close() }()

		scheduler := NewScheduler(NewEngine(data))

		if !autoresetRunForeground {
			scheduler.CheckAll()
			fmt.Println("Auto-reset check completed.")
			return
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		fmt.Printf("Auto-reset scheduler running every %ds. Press Ctrl+C to stop.\n",
			GetConfig().Tasks.AutoResetIntervalSeconds)
		scheduler.Run(ctx)
		fmt.Println("Auto-reset scheduler stopped.")
	},
}

var autoresetTime string

// autoresetEnableCmd turns auto-reset on for a tab.
var autoresetEnableCmd = &cobra.Command{
	Use:   "enable <tab>",
	Short: "Enable auto-reset for a tab",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		tab, err := models.ParseTab(args[0])
		if err != nil {
			HandleFatalError(fmt.Sprintf("Error: %v.", err), err)
		}
		if tab == models.TabYearly {
			HandleFatalError("Error: The yearly list has no auto-reset.", nil)
		}

		data, kv, err := GetData()
		if err != nil {
			HandleFatalError("Error: Could not initialize the store.", err)
		}
		defer func() { _ = kv.Close() }()

		windows := data.ReadAlertWindows()
		window := windows[tab]
		window.AutoResetEnabled = true
		if autoresetTime != "" {
			window.AutoResetTime = autoresetTime
		} else if window.AutoResetTime == "" {
			window.AutoResetTime = config.DefaultAutoResetTime
		}
		windows[tab] = window
		if err := data.WriteAlertWindows(windows); err != nil {
			HandleFatalError("Error: Failed to save the alert-window settings.", err)
		}

		fmt.Printf("Auto-reset enabled for the %s list at %s.\n", tab.Label(), window.AutoResetTime)
	},
}

// autoresetDisableCmd turns auto-reset off for a tab.
var autoresetDisableCmd = &cobra.Command{
	Use:   "disable <tab>",
	Short: "Disable auto-reset for a tab",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		tab, err := models.ParseTab(args[0])
		if err != nil {
			HandleFatalError(fmt.Sprintf("Error: %v.", err), err)
		}

		data, kv, err := GetData()
		if err != nil {
			HandleFatalError("Error: Could not initialize the store.", err)
		}
		defer func() { _ = kv.Close() }()

		windows := data.ReadAlertWindows()
		window := windows[tab]
		window.AutoResetEnabled = false
		windows[tab] = window
		if err := data.WriteAlertWindows(windows); err != nil {
			HandleFatalError("Error: Failed to save the alert-window settings.", err)
		}

		fmt.Printf("Auto-reset disabled for the %s list.\n", tab.Label())
	},
}

// autoresetSetTimeCmd changes a tab's cutoff without toggling enablement.
var autoresetSetTimeCmd = &cobra.Command{
	Use:   "set-time <tab> <HH:MM>",
	Short: "Change a tab's daily cutoff time",
	Args:  cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		tab, err := models.ParseTab(args[0])
		if err != nil {
			HandleFatalError(fmt.Sprintf("Error: %v.", err), err)
		}
		if _, err := autoreset.ParseCutoff(args[1]); err != nil {
			HandleFatalError(fmt.Sprintf("Error: %v.", err), err)
		}

		data, kv, err := GetData()
		if err != nil {
			HandleFatalError("Error: Could not initialize the store.", err)
		}
		defer func() { _ = kv.Close() }()

		windows := data.ReadAlertWindows()
		window := windows[tab]
		window.AutoResetTime = args[1]
		windows[tab] = window
		if err := data.WriteAlertWindows(windows); err != nil {
			HandleFatalError("Error: Failed to save the alert-window settings.", err)
		}

		fmt.Printf("Auto-reset cutoff for the %s list set to %s.\n", tab.Label(), args[1])
	},
}

// autoresetStatusCmd prints the per-tab scheduler state.
var autoresetStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the per-tab auto-reset configuration and last run dates",
	Run: func(cmd *cobra.Command, args []string) {
		data, kv, err := GetData()
		if err != nil {
			HandleFatalError("Error: Could not initialize the store.", err)
		}
		defer func() { _ = kv.Close() }()

		windows := data.ReadAlertWindows()
		state := data.ReadAutoResetState()

		table := ui.Table{Headers: []string{"Tab", "Enabled", "Time", "Last run"}}
		for _, tab := range models.AllTabs() {
			if tab == models.TabYearly {
				table.Rows = append(table.Rows, []string{tab.Label(), "n/a", "-", "-"})
				continue
			}
			window := windows[tab]
			enabled := "no"
			if window.AutoResetEnabled {
				enabled = "yes"
			}
			cutoff := window.AutoResetTime
			if cutoff == "" {
				cutoff = "-"
			}
			lastRun := state[tab].LastRunDate
			if lastRun == "" {
				lastRun = "never"
			}
			table.Rows = append(table.Rows, []string{tab.Label(), enabled, cutoff, lastRun})
		}
		fmt.Print(table.Render())
	},
}

func init() {
	autoresetRunCmd.Flags().BoolVarP(&autoresetRunForeground, "foreground", "f", false, "keep running on the configured interval instead of a single pass")
	autoresetEnableCmd.Flags().StringVar(&autoresetTime, "time", "", "daily cutoff time in HH:MM (default 09:00)")

	autoresetCmd.AddCommand(autoresetRunCmd)
	autoresetCmd.AddCommand(autoresetEnableCmd)
	autoresetCmd.AddCommand(autoresetDisableCmd)
	autoresetCmd.AddCommand(autoresetSetTimeCmd)
	autoresetCmd.AddCommand(autoresetStatusCmd)
	rootCmd.AddCommand(autoresetCmd)
}
