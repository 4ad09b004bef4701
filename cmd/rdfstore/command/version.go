package command

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/cayleygraph/rdfstore/version"
)

func NewVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Version information for rdfstore.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintf(cmd.OutOrStdout(), "rdfstore %s %s/%s\n", version.String(), runtime.GOOS, runtime.GOARCH)
			return nil
		},
	}
}
