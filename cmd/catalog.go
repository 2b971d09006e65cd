package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/lumerapay/payadmin/internal/catalog"
)

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Inspect and validate permission catalog files",
}

var catalogValidateCmd = &cobra.Command{
	Use:   "validate <file>",
	Short: "Validate a catalog file against the catalog schema",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := args[0]
		cat, err := catalog.Load(path)
		if err != nil {
			return err
		}

		fmt.Printf("%s is valid: %d roles, %d user types\n", path, len(cat.Roles()), len(cat.UserTypes()))
		for _, userType := range cat.UserTypes() {
			fmt.Printf("  %s: %v\n", userType, cat.AllowedRoles(userType))
		}
		return nil
	},
}

func init() {
	catalogCmd.AddCommand(catalogValidateCmd)
	rootCmd.AddCommand(catalogCmd)
}
