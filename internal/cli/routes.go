package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/jrsteele09/crm-console/internal/config"
	"github.com/spf13/cobra"
)

func newRoutesCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "routes",
		Short: "Print the guarded screens and their access requirements",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := loadConsole(config.New())
			if err != nil {
				return err
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "PATH\tTITLE\tREQUIRES")
			for _, sc := range c.screens {
				fmt.Fprintf(tw, "%s\t%s\t%s\n", sc.Path, sc.Title, sc.Requirement)
			}
			return tw.Flush()
		},
	}
}
