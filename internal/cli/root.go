// Package cli wires configuration, storage and the HTTP server into the console
// command line.
package cli

import (
	"context"

	"github.com/spf13/cobra"
)

// NewRootCommand builds the console command tree
func NewRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   "console",
		Short: "CRM admin console",
		Long: `console serves the CRM admin console: a login page, role and module gated
screens, and a per-visitor session persisted in a key-value store.

Configuration is read from environment variables. Flags override them.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := applyFlagOverrides(cmd.Flags()); err != nil {
				return err
			}
			level, _ := cmd.Flags().GetString("log-level")
			return setupLogging(level)
		},
	}

	addGlobalFlags(root.PersistentFlags())
	root.AddCommand(newServeCommand(), newRoutesCommand(), newCheckCommand())
	return root
}

// ExecuteContext runs the console command line until ctx is cancelled
func ExecuteContext(ctx context.Context) error {
	return NewRootCommand().ExecuteContext(ctx)
}
