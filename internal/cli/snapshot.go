package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/jacoelho/gdata"
)

func newSnapshotCommand(sess func() *session) *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "snapshot <file>",
		Short: "Encode a parsed document as a binary snapshot",
		Long: `Parses the document and stores the element graph in the binary
snapshot format. Snapshots are restored with the restore command.

Example:
  gdatalint snapshot -o feed.snap feed.xml`,
		Args: exactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s := sess()
			e, err := s.parseFile(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			data, err := gdata.Snapshot(e)
			if err != nil {
				return err
			}
			if err := os.WriteFile(output, data, 0o644); err != nil {
				return fmt.Errorf("write snapshot %s: %w", output, err)
			}
			s.logger.Debug("snapshot written", "path", output, "bytes", len(data))
			newPrinter(cmd.OutOrStdout()).success("%s written (%d bytes)", output, len(data))
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "Snapshot file to write")
	_ = cmd.MarkFlagRequired("output")
	return cmd
}

func newRestoreCommand(sess func() *session) *cobra.Command {
	var (
		output      string
		declaration bool
	)
	cmd := &cobra.Command{
		Use:   "restore <snapshot>",
		Short: "Decode a snapshot and write the document",
		Long: `Decodes a snapshot written by the snapshot command, binds it with the
configured profile and protocol version, and writes the document.

Example:
  gdatalint restore --protocol-version 1 feed.snap`,
		Args: exactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s := sess()
			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("read snapshot %s: %w", args[0], err)
			}
			e, err := gdata.Restore(data, s.parseOptions())
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
