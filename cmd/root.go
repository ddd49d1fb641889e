// Package cmd holds the command line entry points of the onboarding API
package cmd

import (
	"fmt"
	"os"

	"hrportal/onboarding-api/config"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var rootCmd = &cobra.Command{
	Use:           "onboarding-api",
	Short:         "Candidate onboarding and authentication API",
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return serveCmd.RunE(cmd, args)
	},
}

func init() {
	config.Flags(rootCmd.PersistentFlags())

	rootCmd.AddCommand(serveCmd, workerCmd, seedAdminCmd, cleanupCmd)
}

// Execute runs the command picked on the command line and exits with a non
// zero status when it fails
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		_ = zap.L().Sync()
		os.Exit(1)
	}
}
