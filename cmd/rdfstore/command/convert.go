package command

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/cayleygraph/rdfstore/convert"
	"github.com/cayleygraph/rdfstore/format"
	"github.com/cayleygraph/rdfstore/internal/decompressor"
)

const (
	flagFrom   = "from"
	flagTo     = "to"
	flagBase   = "base"
	flagOutput = "output"
)

func NewConvertCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "convert [file]",
		Aliases: []string{"conv"},
		Short:   "Convert an RDF document between supported formats.",
		Long: "Convert an RDF document between supported formats.\n\n" +
			"The document is read from the given file, or from stdin when the file is missing or \"-\".\n" +
			"Formats default to the ones registered for the file extensions.",
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			in := "-"
			if len(args) == 1 {
				in = args[0]
			}
			out, _ := cmd.Flags().GetString(flagOutput)
			from, _ := cmd.Flags().GetString(flagFrom)
			to, _ := cmd.Flags().GetString(flagTo)
			base, _ := cmd.Flags().GetString(flagBase)

			src := format.Format(from)
			if src == format.None && in != "-" {
				src = format.ForPath(trimCompression(in))
			}
			dst := format.Format(to)
			if dst == format.None && out != "" && out != "-" {
				dst = format.ForPath(out)
			}
			if !format.Supported(dst) {
				return fmt.Errorf("unsupported target format %q; use --%s", dst, flagTo)
			}

			data, err := readInput(cmd, in)
			if err != nil {
				return err
			}
			res, err := convert.Default(data, src, dst, base)
			if err != nil {
				return fmt.Errorf("could not convert %s to %s: %w", in, dst, err)
			}
			return writeOutput(cmd, out, res)
		},
	}
	f := cmd.Flags()
	f.String(flagFrom, "", `source format; detected from the extension or the contents when empty`)
	f.String(flagTo, "", `target format; taken from the output extension when empty`)
	f.String(flagBase, "", "base URL used to resolve relative references")
	f.StringP(flagOutput, "o", "-", `output file ("-" for stdout)`)
	return cmd
}

// readInput reads a document from a file or stdin. Compressed input is
// unpacked.
func readInput(cmd *cobra.Command, in string) ([]byte, error) {
	if in == "-" {
		return decompressor.ReadAll(cmd.InOrStdin())
	}
	f, err := os.Open(in)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return decompressor.ReadAll(f)
}

func writeOutput(cmd *cobra.Command, out string, data []byte) error {
	if out == "" || out == "-" {
		_, err := cmd.OutOrStdout().Write(data)
		return err
	}
	return os.WriteFile(out, data, 0644)
}

// trimCompression drops a compression suffix, so that "card.ttl.gz" is
// detected as Turtle.
func trimCompression(name string) string {
	for _, ext := range []string{".gz", ".bz2", ".zst"} {
		if strings.HasSuffix(name, ext) {
			return strings.TrimSuffix(name, ext)
		}
	}
	return name
}
