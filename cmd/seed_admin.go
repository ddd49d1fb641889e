package cmd

import (
	"fmt"

	"hrportal/onboarding-api/internal/seed"

	"github.com/spf13/cobra"
)

var seedAdminCmd = &cobra.Command{
	Use:   "seed-admin",
	Short: "Creates the configured administrator if it does not exist",
	RunE: func(cmd *cobra.Command, _ []string) error {
		a, err := setup(cmd)
		if err != nil {
			return err
		}
		defer a.close()

		created, err := seed.Admin(cmd.Context(), a.store, a.hasher, a.phoneRule(), a.cfg.Admin)
		if err != nil {
			return err
		}

		if created {
			fmt.Fprintln(cmd.OutOrStdout(), "Admin account created")
		} else {
			fmt.Fprintln(cmd.OutOrStdout(), "Admin account already exists")
		}

		return nil
	},
}
