package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jacoelho/gdata/atom"
	gdataerrors "github.com/jacoelho/gdata/errors"
	"github.com/jacoelho/gdata/model"
)

func newValidateCommand(sess func() *session) *cobra.Command {
	return &cobra.Command{
		Use:   "validate <file>",
		Short: "Check that a document binds against the declarations",
		Long: `Parses the document with the configured root kind, profile and protocol
version. Prints a summary on success; the first binding error otherwise.

Examples:
  gdatalint validate feed.xml
  gdatalint validate --root entry --protocol-version 1 entry.xml`,
		Args: exactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(cmd, sess(), args[0])
		},
	}
}

func runValidate(cmd *cobra.Command, s *session, path string) error {
	e, err := s.parseFile(cmd.Context(), path)
	if err != nil {
		if _, ok := gdataerrors.AsParseError(err); ok {
			return fmt.Errorf("%s fails to validate: %w", path, err)
		}
		return err
	}
	p := newPrinter(cmd.OutOrStdout())
	p.success("%s validates", path)
	p.detail("kind", e.Key().Kind.Name())
	if id := atom.ID(e); id != "" {
		p.detail("id", id)
	}
	if title := atom.Title(e); title != "" {
		p.detail("title", title)
	}
	if e.Key().Kind.Is(atom.Feed) {
		p.detail("entries", fmt.Sprint(len(atom.Entries(e))))
	}
	p.detail("elements", fmt.Sprint(countElements(e)))
	return nil
}

func countElements(e *model.Element) int {
	n := 1
	for _, c := range e.Children() {
		n += countElements(c)
	}
	return n
}
