package main

import (
	"github.com/spf13/cobra"
)

var version = "dev"

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "whitelabel",
		Short: "Custom domains and branding for tenant organizations",
		Long: `whitelabel verifies tenant custom domains, resolves the branding for
each request and injects it into responses of the upstream application.

Configuration is read from the environment; see "whitelabel serve --help".`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	cmd.AddCommand(
		newServeCmd(),
		newVerifyCmd(),
		newMigrateCmd(),
	)
	return cmd
}
