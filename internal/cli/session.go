package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/jacoelho/gdata"
	"github.com/jacoelho/gdata/atom"
	"github.com/jacoelho/gdata/extension"
	"github.com/jacoelho/gdata/model"
	protocol "github.com/jacoelho/gdata/version"
)

// session holds what the settings resolve to: the logger, the extension
// profile, the root kind and the protocol version.
type session struct {
	settings settings
	logger   *slog.Logger
	profile  *extension.Profile
	root     *model.Kind
	version  *protocol.Version
}

func newSession(ctx context.Context, s settings, stderr io.Writer) (*session, error) {
	sess := &session{settings: s}
	if s.Verbose {
		sess.logger = slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
	} else {
		sess.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	kind, ok := extension.DefaultCatalog().Kind(s.Root)
	if !ok {
		return nil, usagef("unknown root kind %q (known: %s)", s.Root,
			strings.Join(extension.DefaultCatalog().KindNames(), ", "))
	}
	sess.root = kind

	if s.ProtocolVersion != "" {
		v, err := protocol.Parse(atom.Service, s.ProtocolVersion)
		if err != nil {
			return nil, &usageError{err: err}
		}
		sess.version = v
	}

	profile, err := loadProfile(ctx, s.Profile)
	if err != nil {
		return nil, err
	}
	sess.profile = profile
	sess.logger.Debug("session ready", "root", kind.Name(), "profile", s.Profile, "version", sess.version)
	return sess, nil
}

// loadProfile returns the default profile extended with the declarations
// of path, which is an XML or YAML profile document.
func loadProfile(ctx context.Context, path string) (p *extension.Profile, err error) {
	p = gdata.NewProfile()
	if path == "" {
		return p, nil
	}
	ext := strings.ToLower(filepath.Ext(path))
	if ext != ".xml" && ext != ".yaml" && ext != ".yml" {
		return nil, usagef("profile %s: unsupported format, want .xml, .yaml or .yml", path)
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open profile %s: %w", path, err)
	}
	defer func() {
		if closeErr := f.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("close profile %s: %w", path, closeErr)
		}
	}()
	if ext == ".xml" {
		err = p.ParseConfig(ctx, f, nil)
	} else {
		err = p.LoadYAML(f, nil)
	}
	if err != nil {
		return nil, fmt.Errorf("load profile %s: %w", path, err)
	}
	return p, nil
}

func (s *session) parseOptions() gdata.ParseOptions {
	opts := gdata.NewParseOptions().
		WithProfile(s.profile).
		WithLogger(s.logger)
	if s.version != nil {
		opts = opts.WithVersion(s.version)
	}
	if s.settings.MaxDepth > 0 {
		opts = opts.WithMaxDepth(s.settings.MaxDepth)
	}
	return opts
}

func (s *session) generateOptions(declaration bool) gdata.GenerateOptions {
	opts := gdata.NewGenerateOptions().
		WithProfile(s.profile).
		WithLogger(s.logger).
		WithIndent(s.settings.Indent).
		WithXMLDeclaration(declaration)
	if s.version != nil {
		opts = opts.WithVersion(s.version)
	}
	return opts
}

func (s *session) parseFile(ctx context.Context, path string) (*model.Element, error) {
	return gdata.ParseFile(ctx, path, s.root.Key(), s.parseOptions())
}

// writeOutput writes through fn to path, or to stdout when path is empty or "-".
func writeOutput(stdout io.Writer, path string, fn func(io.Writer) error) (err error) {
	if path == "" || path == "-" {
		return fn(stdout)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer func() {
		if closeErr := f.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("close %s: %w", path, closeErr)
		}
	}()
	return fn(f)
}
