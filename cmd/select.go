package cmd

import (
	"errors"
	"fmt"

	"github.com/fairflowapp/fairflow/internal/lifecycle"
	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
)

var (
	selectActor string
	selectPin   string
)

// selectCmd represents the select command
var selectCmd = &cobra.Command{
	Use:     "select [task_id]",
	Aliases: []string{"claim", "s"},
	Short:   "Claim a task and move it to pending",
	Long: `Claim a task for a worker. The task is searched across every tab's
active roster first, then across the catalogs; a never-claimed catalog task
gets a fresh pending copy. Claiming a task twice is a no-op.`,
	Example: `  # Interactive mode
  fairflow select --actor Alice

  # Claim a specific task
  fairflow select t1 --actor Alice

  # Resolve the actor from a PIN
  fairflow select t1 --pin 4321`,
	Args: cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		data, kv, err := GetData()
		if err != nil {
			HandleFatalError("Error: Could not initialize the store.", err)
		}
		defer func() { _ = kv.Close() }()

		actor, err := resolveActor(selectActor, selectPin, data)
		if err != nil {
			HandleFatalError("Error: Could not resolve who is claiming the task.", err)
		}

		taskID := ""
		if len(args) > 0 {
			taskID = args[0]
		} else {
			selectable := func(it pickItem) bool { return it.Status == "" || it.Status == "catalog" }
			item, err := selectTaskInteractive(data, selectable, "Select task to claim")
			if err != nil {
				if err == promptui.ErrInterrupt {
					fmt.Println("Operation cancelled.")
					return
				}
				if err == ErrNoTasksFound {
					fmt.Println("No claimable tasks available.")
					return
				}
				HandleFatalError("Error: Could not select a task.", err)
			}
			taskID = item.ID
		}

		engine := NewEngine(data)
		tab, err := engine.Select(taskID, actor)
		if err != nil {
			if errors.Is(err, lifecycle.ErrTaskNotFound) {
				// Warning-level no-op: nothing was mutated.
				fmt.Printf("Warning: task %q was not found in any active list or catalog.\n", taskID)
				return
			}
			HandleFatalError(fmt.Sprintf("Error: Failed to claim task '%s'.", taskID), err)
		}

		fmt.Printf("Task '%s' claimed by %s on the %s list.\n", taskID, actor, tab.Label())
	},
}

func init() {
	selectCmd.Flags().StringVarP(&selectActor, "actor", "a", "", "display name of the claiming worker")
	selectCmd.Flags().StringVarP(&selectPin, "pin", "p", "", "PIN used to resolve the actor")
	rootCmd.AddCommand(selectCmd)
}
