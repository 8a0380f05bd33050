package cli

import (
	"fmt"

	"github.com/jrsteele09/crm-console/guard"
	"github.com/jrsteele09/crm-console/internal/config"
	apperrors "github.com/jrsteele09/crm-console/internal/errors"
	"github.com/jrsteele09/crm-console/server"
	"github.com/jrsteele09/crm-console/session"
	"github.com/spf13/cobra"
)

func newCheckCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check",
		Short: "Evaluate a stored visitor session against a screen",
		Long: `Load the session stored for a visitor cookie and report whether it may open a
screen, and why.

Examples:
  console check --session 6f1c1f0e-0d7e-4d53-9d0c-4f5d2f1b9a11 --path /admin/reports/hr`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			visitorID, _ := cmd.Flags().GetString("session")
			path, _ := cmd.Flags().GetString("path")

			cfg := config.New()
			c, err := loadConsole(cfg)
			if err != nil {
				return err
			}
			screen, ok := server.FindScreen(c.screens, path)
			if !ok {
				return apperrors.Wrapf(apperrors.ErrNotFound, "screen %q", path)
			}

			kv, closeStore, err := openStore(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer closeStore()

			store := session.New(server.VisitorStore(kv, visitorID), c.perms)
			store.Hydrate()
			snap := store.Current()
			decision := guard.Explain(snap, screen.Requirement)

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "screen:   %s (%s)\n", screen.Path, screen.Requirement)
			fmt.Fprintf(out, "role:     %s\n", snap.Role)
			fmt.Fprintf(out, "modules:  %d\n", len(snap.Modules))
			fmt.Fprintf(out, "verdict:  %s\n", decision.Verdict)
			fmt.Fprintf(out, "reason:   %s\n", decision.Reason)
			return nil
		},
	}

	cmd.Flags().String("session", "", "visitor id from the session cookie")
	cmd.Flags().String("path", "", "screen path, e.g. /admin/reports")
	_ = cmd.MarkFlagRequired("session")
	_ = cmd.MarkFlagRequired("path")
	return cmd
}
