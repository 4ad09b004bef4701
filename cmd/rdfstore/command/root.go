// Package command implements the rdfstore command line.
package command

import (
	"flag"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/cayleygraph/rdfstore/clog"
	"github.com/cayleygraph/rdfstore/internal/config"
)

const flagConfig = "config"

// NewRootCmd creates the rdfstore command with all subcommands attached.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "rdfstore",
		Short:         "Store RDF documents and serve them in any serialization.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			file, _ := cmd.Flags().GetString(flagConfig)
			if err := config.Load(viper.GetViper(), file); err != nil {
				return err
			}
			if used := viper.ConfigFileUsed(); used != "" {
				clog.Infof("using config file %s", used)
			}
			return nil
		},
	}
	config.SetDefaults(viper.GetViper())

	pf := root.PersistentFlags()
	pf.String(flagConfig, "", "path to an explicit configuration file")
	pf.StringP("backend", "d", "memstore", "storage backend to use")
	pf.StringP("path", "a", "", "address or path of the storage backend")
	bindFlags(pf, map[string]string{
		"backend": config.KeyBackend,
		"path":    config.KeyPath,
	})
	pf.AddGoFlagSet(flag.CommandLine)

	root.AddCommand(
		NewServeCmd(),
		NewConvertCmd(),
		NewFormatsCmd(),
		NewHealthCmd(),
		NewVersionCmd(),
	)
	return root
}

// bindFlags binds flags to configuration keys. Flags without a key are
// left unbound.
func bindFlags(fs *pflag.FlagSet, keys map[string]string) {
	fs.VisitAll(func(f *pflag.Flag) {
		if key, ok := keys[f.Name]; ok {
			viper.BindPFlag(key, f)
		}
	})
}

func printBackendInfo(c config.Config) {
	path := c.Path
	if path != "" {
		path = " (" + path + ")"
	}
	clog.Infof("using backend %q%s", c.Backend, path)
}
