package cmd

import (
	"fmt"

	"github.com/fairflowapp/fairflow/models"
	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
)

var (
	doneTab   string
	doneActor string
	donePin   string
)

// doneCmd represents the done command
var doneCmd = &cobra.Command{
	Use:     "done [task_id]",
	Aliases: []string{"finish", "complete", "d"},
	Short:   "Mark a task as done",
	Long: `Mark a task as completed within a tab. The worker who claimed the task
is credited as the completer; the invoker is only credited when the task was
never claimed. Completing an already-done task changes nothing.`,
	Example: `  # Interactive mode on the opening list
  fairflow done --actor Alice

  # Complete a specific task on the closing list
  fairflow done t1 --tab closing --actor Bob`,
	Args: cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		data, kv, err := GetData()
		if err != nil {
			HandleFatalError("Error: Could not initialize the store.", err)
		}
		defer func() { _ = kv.Close() }()

		tab, err := resolveTab(doneTab)
		if err != nil {
			HandleFatalError(fmt.Sprintf("Error: %v.", err), err)
		}

		actor, err := resolveActor(doneActor, donePin, data)
		if err != nil {
			HandleFatalError("Error: Could not resolve who is completing the task.", err)
		}

		taskID := ""
		if len(args) > 0 {
			taskID = args[0]
		} else {
			pendingOnly := func(it pickItem) bool {
				return it.Tab == tab && it.Status == string(models.StatusPending)
			}
			item, err := selectTaskInteractive(data, pendingOnly, "Select task to mark as done")
			if err != nil {
				if err == promptui.ErrInterrupt {
					fmt.Println("Operation cancelled.")
					return
				}
				if err == ErrNoTasksFound {
					fmt.Println("No pending tasks available to mark as done.")
					return
				}
				HandleFatalError("Error: Could not select a task.", err)
			}
			taskID = item.ID
		}

		engine := NewEngine(data)
		completed, err := engine.MarkDone(tab, taskID, actor)
		if err != nil {
			HandleFatalError(fmt.Sprintf("Error: Failed to mark task '%s' as done.", taskID), err)
		}

		// The completion may have been the last one the auto-reset was
		// waiting on; evaluate the tab's eligibility right away.
		scheduler := NewScheduler(engine)
		if fired, err := scheduler.CheckTab(tab); err != nil {
			LogError("auto-reset check after completion failed", err)
		} else if fired {
			fmt.Printf("Auto-reset fired for the %s list.\n", tab.Label())
		}

		fmt.Printf("Task '%s' marked done by %s on the %s list.\n", completed.KeyID(), completed.CompletedBy, tab.Label())
	},
}

func init() {
	doneCmd.Flags().StringVarP(&doneTab, "tab", "t", "", "tab the task belongs to (default: configured current tab, else opening)")
	doneCmd.Flags().StringVarP(&doneActor, "actor", "a", "", "display name of the completing worker")
	doneCmd.Flags().StringVarP(&donePin, "pin", "p", "", "PIN used to resolve the actor")
	rootCmd.AddCommand(doneCmd)
}
