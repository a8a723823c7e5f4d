package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/fairflowapp/fairflow/internal/auth"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

// promptPin reads a PIN from the terminal without echo.
func promptPin(label string) (string, error) {
	fmt.Fprintf(os.Stderr, "%s: ", label)
	raw, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", fmt.Errorf("failed to read PIN: %w", err)
	}
	return strings.TrimSpace(string(raw)), nil
}

// pinCmd groups the PIN commands.
var pinCmd = &cobra.Command{
	Use:   "pin",
	Short: "Verify PINs and manage the admin-PIN reset flow",
	Long: `PINs resolve in priority order: the admin code first, then manager
codes, then worker PINs (4-6 digits). The reset flow replaces a lost admin
code with a new one behind a single-use token valid for one hour.`,
}

// pinVerifyCmd checks a PIN and reports the matched identity.
var pinVerifyCmd = &cobra.Command{
	Use:   "verify [pin]",
	Short: "Check a PIN and show who it belongs to",
	Args:  cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		data, kv, err := GetData()
		if err != nil {
			HandleFatalError("Error: Could not initialize the store.", err)
		}
		defer func() { _ = kv.Close() }()

		pin := ""
		if len(args) > 0 {
			pin = args[0]
		} else {
			entered, err := promptPin("Enter PIN")
			if err != nil {
				HandleFatalError("Error: Could not read PIN.", err)
			}
			pin = entered
		}

		identity, err := auth.NewValidator(data).ValidatePin(pin)
		if err != nil {
			HandleFatalError("Error: PIN not accepted.", err)
		}

		fmt.Printf("PIN accepted: %s (%s).\n", identity.Name, identity.Role)
	},
}

// pinResetRequestCmd starts the admin-PIN reset flow.
var pinResetRequestCmd = &cobra.Command{
	Use:   "reset-request",
	Short: "Generate a single-use admin-PIN reset token",
	Long: `Generates a reset token valid for one hour. Hand the token to the
admin out of band; it is consumed by the first successful reset-confirm.`,
	Run: func(cmd *cobra.Command, args []string) {
		data, kv, err := GetData()
		if err != nil {
			HandleFatalError("Error: Could not initialize the store.", err)
		}
		defer func() { _ = kv.Close() }()

		token, err := auth.NewResetFlow(data).GenerateToken()
		if err != nil {
			HandleFatalError("Error: Failed to generate a reset token.", err)
		}

		fmt.Printf("Reset token (valid for 1 hour, single use):\n\n  %s\n", token)
	},
}

var pinResetNewPin string

// pinResetConfirmCmd completes the admin-PIN reset flow.
var pinResetConfirmCmd = &cobra.Command{
	Use:   "reset-confirm <token>",
	Short: "Set a new admin PIN using a reset token",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		token := args[0]

		data, kv, err := GetData()
		if err != nil {
			HandleFatalError("Error: Could not initialize the store.", err)
		}
		defer func() { _ = kv.Close() }()

		flow := auth.NewResetFlow(data)
		if err := flow.VerifyToken(token); err != nil {
			HandleFatalError(fmt.Sprintf("Error: %v.", err), err)
		}

		newPin := pinResetNewPin
		if newPin == "" {
			entered, err := promptPin("Enter new admin PIN (4-6 digits)")
			if err != nil {
				HandleFatalError("Error: Could not read PIN.", err)
			}
			confirm, err := promptPin("Confirm new admin PIN")
			if err != nil {
				HandleFatalError("Error: Could not read PIN.", err)
			}
			if entered != confirm {
				HandleFatalError("Error: PINs did not match.", nil)
			}
			newPin = entered
		}

		if err := flow.ConfirmReset(token, newPin); err != nil {
			HandleFatalError(fmt.Sprintf("Error: %v.", err), err)
		}

		fmt.Println("Admin PIN updated. The old code no longer works.")
	},
}

func init() {
	pinResetConfirmCmd.Flags().StringVar(&pinResetNewPin, "new-pin", "", "the replacement admin PIN (prompted when omitted)")

	pinCmd.AddCommand(pinVerifyCmd)
	pinCmd.AddCommand(pinResetRequestCmd)
	pinCmd.AddCommand(pinResetConfirmCmd)
	rootCmd.AddCommand(pinCmd)
}
