package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "payadmin",
	Short: "Session and authorization engine for the payments admin portal",
	Long: `payadmin is the authorization and session-integrity layer of the payments
administrative portal. It issues and verifies signed session tokens, resolves
role and user-type permissions, and normalizes upstream audit history.`,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
