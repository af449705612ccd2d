package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
)

// NewRootCommand returns the gdatalint command tree.
func NewRootCommand() *cobra.Command {
	var sess *session
	loader := func() *session { return sess }

	cmd := &cobra.Command{
		Use:   "gdatalint",
		Short: "Validate and convert GData Atom documents",
		Long: `gdatalint binds Atom feeds and entries against the GData element
declarations and an optional extension profile.

Configuration is read from gdatalint.yaml (or --config), then from
GDATALINT_* environment variables (a .env file supplies defaults),
then from flags.

Exit Codes:
  0 - Success
  1 - Document failed to validate or could not be processed
  2 - CLI usage error (invalid arguments, flags or configuration)
  3 - Panic or unexpected system error`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if cmd.Annotations[annotationNoSession] != "" || cmd.Name() == "help" {
				return nil
			}
			s, err := loadSettings(cmd)
			if err != nil {
				return err
			}
			sess, err = newSession(cmd.Context(), s, cmd.ErrOrStderr())
			return err
		},
	}
	cmd.CompletionOptions.DisableDefaultCmd = true
	cmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return &usageError{err: err}
	})

	pf := cmd.PersistentFlags()
	pf.BoolP("verbose", "v", false, "Enable debug logging on stderr")
	pf.String("config", "", "Path to a YAML configuration file (default "+defaultConfigFile+")")
	pf.String("env-file", defaultEnvFile, "Path to a .env file with GDATALINT_* defaults")
	pf.String("root", "feed", "Kind of the document element (feed, entry, aclFeed, ...)")
	pf.String("profile", "", "Extension profile document (.xml or .yaml)")
	pf.String("protocol-version", "", "Protocol version to bind with, e.g. 1 or 2.0")
	pf.Int("max-depth", 0, "Maximum element nesting depth (0 uses the default)")

	cmd.AddCommand(
		newValidateCommand(loader),
		newRoundtripCommand(loader),
		newSnapshotCommand(loader),
		newRestoreCommand(loader),
		newProfileCommand(loader),
		newVersionCommand(),
	)
	return cmd
}

// annotationNoSession marks commands that run without loading configuration.
const annotationNoSession = "gdatalint/no-session"

// Execute runs the root command and reports its error on stderr.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	cmd := NewRootCommand()
	err := cmd.ExecuteContext(ctx)
	if err != nil {
		p := newPrinter(cmd.ErrOrStderr())
		fmt.Fprintln(p.w, p.render(errorStyle, "error:"), err)
	}
	return err
}
