package cmd

import (
	"fmt"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/applatix/claudiabuild/src/component"
)

func newComponentsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "components",
		Short: "List buildable components",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			defaults := component.NewSet(component.Defaults...)

			tw := table.NewWriter()
			tw.SetStyle(table.StyleRounded)
			tw.AppendHeader(table.Row{"Component", "Default", "Builds"})
			for _, n := range component.Catalog {
				def := ""
				if defaults.Has(n) {
					def = "yes"
				}
				tw.AppendRow(table.Row{string(n), def, component.Describe(n)})
			}
			fmt.Fprintln(cmd.OutOrStdout(), tw.Render())
			return nil
		},
	}
}
