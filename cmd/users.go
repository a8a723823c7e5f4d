package cmd

import (
	"fmt"
	"strings"

	"github.com/fairflowapp/fairflow/internal/ui"
	"github.com/fairflowapp/fairflow/models"
	"github.com/spf13/cobra"
)

// usersCmd groups the worker account commands.
var usersCmd = &cobra.Command{
	Use:   "users",
	Short: "Manage worker accounts and their PINs",
	Long: `Workers claim and complete tasks with a personal 4-6 digit PIN. These
commands manage the worker list; the admin and manager codes live in
settings and are managed through the pin commands.`,
}

// usersListCmd prints the workers.
var usersListCmd = &cobra.Command{
	Use:   "list",
	Short: "List workers",
	Run: func(cmd *cobra.Command, args []string) {
		data, kv, err := GetData()
		if err != nil {
			HandleFatalError("Error: Could not initialize the store.", err)
		}
		defer func() { _ = kv.Close() }()

		users := data.ReadUsers()
		if len(users) == 0 {
			fmt.Println("No workers registered.")
			return
		}
		table := ui.Table{Headers: []string{"Name", "PIN"}}
		for _, u := range users {
			table.Rows = append(table.Rows, []string{u.DisplayName, maskPin(u.Pin)})
		}
		fmt.Print(table.Render())
	},
}

var usersAddPin string

// usersAddCmd registers a worker.
var usersAddCmd = &cobra.Command{
	Use:   "add <name>",
	Short: "Register a worker with a 4-6 digit PIN",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		name := strings.TrimSpace(args[0])

		pin := usersAddPin
		if pin == "" {
			entered, err := promptPin(fmt.Sprintf("PIN for %s (4-6 digits)", name))
			if err != nil {
				HandleFatalError("Error: Could not read PIN.", err)
			}
			pin = entered
		}

		user := models.User{Pin: pin, DisplayName: name}
		if err := models.ValidateStruct(user); err != nil {
			HandleFatalError("Error: Worker PINs must be 4-6 digits.", err)
		}

		data, kv, err := GetData()
		if err != nil {
			HandleFatalError("Error: Could not initialize the store.", err)
		}
		defer func() { _ = kv.Close() }()

		users := data.ReadUsers()
		for _, u := range users {
			if u.Pin == pin {
				HandleFatalError(fmt.Sprintf("Error: That PIN is already registered to %s.", u.DisplayName), nil)
			}
		}
		users = append(users, user)
		if err := data.WriteUsers(users); err != nil {
			HandleFatalError("Error: Failed to save the worker list.", err)
		}

		fmt.Printf("Registered worker %s.\n", name)
	},
}

// usersRemoveCmd removes a worker by name.
var usersRemoveCmd = &cobra.Command{
	Use:     "remove <name>",
	Aliases: []string{"rm"},
	Short:   "Remove a worker",
	Args:    cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		name := strings.TrimSpace(args[0])

		data, kv, err := GetData()
		if err != nil {
			HandleFatalError("Error: Could not initialize the store.", err)
		}
		defer func() { _ = kv.Close() }()

		users := data.ReadUsers()
		kept := users[:0]
		removed := false
		for _, u := range users {
			if strings.EqualFold(u.DisplayName, name) {
				removed = true
				continue
			}
			kept = append(kept, u)
		}
		if !removed {
			HandleFatalError(fmt.Sprintf("Error: No worker named '%s'.", name), nil)
		}
		if err := data.WriteUsers(kept); err != nil {
			HandleFatalError("Error: Failed to save the worker list.", err)
		}

		fmt.Printf("Removed worker %s.\n", name)
	},
}

// maskPin shows only the last digit.
func maskPin(pin string) string {
	if len(pin) <= 1 {
		return "****"
	}
	return strings.Repeat("*", len(pin)-1) + pin[len(pin)-1:]
}

func init() {
	usersAddCmd.Flags().StringVarP(&usersAddPin, "pin", "p", "", "the worker's 4-6 digit PIN (prompted when omitted)")

	usersCmd.AddCommand(usersListCmd)
	usersCmd.AddCommand(usersAddCmd)
	usersCmd.AddCommand(usersRemoveCmd)
	rootCmd.AddCommand(usersCmd)
}
