package cli

import (
	"io"

	"github.com/spf13/cobra"
)

func newProfileCommand(sess func() *session) *cobra.Command {
	var (
		format string
		output string
	)
	cmd := &cobra.Command{
		Use:   "profile",
		Short: "Print the extension profile configuration",
		Long: `Prints the effective extension profile: the built-in OpenSearch, batch
and quota declarations plus whatever --profile adds. The output can be fed
back through --profile.

Examples:
  gdatalint profile
  gdatalint profile --format xml --profile extra.yaml`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s := sess()
			var write func(io.Writer) error
			switch format {
			case "yaml", "yml":
				write = func(w io.Writer) error { return s.profile.WriteYAML(w, nil) }
			case "xml":
				write = func(w io.Writer) error {
					if err := s.profile.GenerateConfig(w, nil); err != nil {
						return err
					}
					_, err := io.WriteString(w, "\n")
					return err
				}
			default:
				return usagef("unknown format %q, want yaml or xml", format)
			}
			return writeOutput(cmd.OutOrStdout(), output, write)
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", "yaml", "Output format: yaml or xml")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Write to file instead of stdout")
	return cmd
}
