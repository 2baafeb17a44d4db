package cmd

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/ginjaninja78/flat2tab/internal/layout"
)

// newLayoutCmd builds the 'layout' command, which prints the field layout an
// export type resolves to. Useful for checking a template before a run.
func newLayoutCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "layout",
		Short: "Print the field layout of an export type",
		Long: `Load the export type's XLSX template and print each field with its
start offset, end offset and width.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ec, err := loadExport(a)
			if err != nil {
				return err
			}

			l, err := layout.Load(ec.Files.Template, ec.LayoutOptions())
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "NAME\tSTART\tEND\tWIDTH")
			for i, e := range l {
				start := l.Start(i)
				fmt.Fprintf(w, "%s\t%d\t%d\t%d\n", e.Name, start, e.End, e.End-start)
			}
			if err := w.Flush(); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d fields, record width %d\n", len(l), l.Width())
			return nil
		},
	}
}
