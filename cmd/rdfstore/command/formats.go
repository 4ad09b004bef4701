package command

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/cayleygraph/rdfstore/format"
)

func NewFormatsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "formats",
		Short: "List supported RDF formats.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tNAME\tEXTENSIONS\tMIME")
			for _, s := range format.List() {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", s.Name, s.Label,
					strings.Join(s.Ext, ","), strings.Join(s.Mime, ","))
			}
			return w.Flush()
		},
	}
}
