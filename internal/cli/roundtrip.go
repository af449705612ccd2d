package cli

import (
	"io"

	"github.com/spf13/cobra"

	"github.com/jacoelho/gdata"
)

func newRoundtripCommand(sess func() *session) *cobra.Command {
	var (
		output      string
		declaration bool
	)
	cmd := &cobra.Command{
		Use:   "roundtrip <file>",
		Short: "Parse a document and write it back out",
		Long: `Parses the document and regenerates it from the element graph. With
--protocol-version the output uses the names bound in that version, which
converts documents between protocol versions.

Examples:
  gdatalint roundtrip feed.xml
  gdatalint roundtrip --protocol-version 1 -o v1.xml feed.xml`,
		Args: exactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s := sess()
			e, err := s.parseFile(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return writeOutput(cmd.OutOrStdout(), output, func(w io.Writer) error {
				if err := gdata.Generate(w, e, s.generateOptions(declaration)); err != nil {
					return err
				}
				_, err := io.WriteString(w, "\n")
				return err
			})
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "Write to file instead of stdout")
	cmd.Flags().BoolVar(&declaration, "xml-declaration", false, "Emit an XML declaration")
	cmd.Flags().String("indent", "  ", "Indentation of the generated document")
	return cmd
}
