package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/fairflowapp/fairflow/types"
	"github.com/spf13/viper"
)

// HandleFatalError handles unrecoverable errors that should terminate the application.
func HandleFatalError(userMsg string, technicalErr error) {
	PrintError(userMsg, technicalErr)
	os.Exit(1)
}

// PrintError prints an error message without exiting, allowing for recovery.
// It prints a user-friendly message by default; with --verbose, the full
// technical error.
func PrintError(userMsg string, technicalErr error) {
	if viper.GetBool("verbose") && technicalErr != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", technicalErr)
		var flowErr *types.FlowError
		if errors.As(technicalErr, &flowErr) {
			for k, v := range flowErr.Details {
				fmt.Fprintf(os.Stderr, "  %s: %v\n", k, v)
			}
		}
	} else {
		fmt.Fprintln(os.Stderr, userMsg)
	}
}

// LogError logs an error without printing to stderr if verbose mode is off.
func LogError(msg string, err error) {
	if viper.GetBool("verbose") {
		if err != nil {
			fmt.Fprintf(os.Stderr, "[DEBUG] %s: %v\n", msg, err)
		} else {
			fmt.Fprintf(os.Stderr, "[DEBUG] %s\n", msg)
		}
	}
}
