package cmd

import (
	"fmt"

	"hrportal/onboarding-api/internal/service"

	"github.com/spf13/cobra"
)

var cleanupCmd = &cobra.Command{
	Use:   "cleanup",
	Short: "Deletes expired verification codes once and exits",
	RunE: func(cmd *cobra.Command, _ []string) error {
		a, err := setup(cmd)
		if err != nil {
			return err
		}
		defer a.close()

		n, err := service.CleanupCodes(cmd.Context(), a.store, a.codes)
		if err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Deleted %d expired codes\n", n)
		return nil
	},
}
