// Package generator writes one workflow file per e2e test identifier.
//
// The [Generator] processes identifiers sequentially in input order. Each
// file is fully rewritten on every run, so generating the same identifier
// twice leaves exactly the rendered document on disk. A filesystem error
// stops the run: files written for earlier identifiers stay in place and
// later identifiers are not processed.
package generator

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/afero"
	"go.trai.ch/zerr"

	"e2egen/internal/workflow"
)

var (
	// ErrInvalidIdentifier is returned in strict mode for identifiers that
	// would resolve outside the output directory.
	ErrInvalidIdentifier = zerr.New("invalid test identifier")

	// ErrCreateDir is returned when the output directory cannot be created.
	ErrCreateDir = zerr.New("failed to create output directory")

	// ErrWriteFile is returned when a workflow file cannot be written.
	ErrWriteFile = zerr.New("failed to write workflow file")
)

// Renderer renders the workflow document for one identifier.
// It is satisfied by [*workflow.Renderer].
type Renderer interface {
	Render(identifier string) ([]byte, error)
}

// Reporter receives one notification per processed identifier.
// It is satisfied by [*output.Printer].
type Reporter interface {
	Generated(identifier, extension string)
	DryRun(identifier, path string)
}

// Options configures a [Generator].
type Options struct {
	// OutputDir is the directory workflow files are written to.
	OutputDir string

	// Extension is the file extension without the leading dot.
	Extension string

	// Strict rejects identifiers containing path separators or equal to
	// "." or "..", before any file is written, and refuses to write a
	// rendered document that does not parse as a workflow.
	Strict bool

	// DryRun renders and reports without touching the filesystem.
	DryRun bool
}

// Generator writes workflow files for test identifiers.
type Generator struct {
	fs       afero.Fs
	renderer Renderer
	reporter Reporter
	logger   *log.Logger
	opts     Options
}

// New creates a [Generator].
//
// fs is the filesystem files are written to; pass afero.NewOsFs() for the
// real disk. A nil logger discards log output.
func New(fs afero.Fs, renderer Renderer, reporter Reporter, logger *log.Logger, opts Options) *Generator {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	if opts.Extension == "" {
		opts.Extension = "yml"
	}
	return &Generator{
		fs:       fs,
		renderer: renderer,
		reporter: reporter,
		logger:   logger,
		opts:     opts,
	}
}

// OutputPath returns the file path for identifier.
func (g *Generator) OutputPath(identifier string) string {
	return filepath.Join(g.opts.OutputDir, identifier+"."+g.opts.Extension)
}

// Generate writes one workflow file per non-empty identifier.
//
// Empty identifiers are skipped silently. Duplicates are written again, so
// the last write wins. The output directory, including parents, is created
// before the first file. Context cancellation is checked between
// identifiers.
func (g *Generator) Generate(ctx context.Context, identifiers []string) error {
	ids := NonEmpty(identifiers)

	if g.opts.Strict {
		for _, id := range ids {
			if err := ValidateIdentifier(id); err != nil {
				return err
			}
		}
	}

	if !g.opts.DryRun {
		if err := g.fs.MkdirAll(g.opts.OutputDir, 0755); err != nil {
			return fmt.Errorf("%w %s: %w", ErrCreateDir, g.opts.OutputDir, err)
		}
	}

	for _, id := range ids {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := g.generateOne(id); err != nil {
			return err
		}
	}

	g.logger.Debug("generation complete", "count", len(ids), "dir", g.opts.OutputDir)
	return nil
}

func (g *Generator) generateOne(id string) error {
	path := g.OutputPath(id)

	data, err := g.renderer.Render(id)
	if err != nil {
		return fmt.Errorf("render %q: %w", id, err)
	}
	if g.opts.Strict {
		if _, err := workflow.Parse(data); err != nil {
			return fmt.Errorf("render %q: %w", id, err)
		}
	}

	if g.opts.DryRun {
		g.reporter.DryRun(id, path)
		return nil
	}

	// Placeholder so the path exists before the rendered content lands.
	exists, err := afero.Exists(g.fs, path)
	if err != nil {
		return fmt.Errorf("%w %s: %w", ErrWriteFile, path, err)
	}
	if !exists {
		g.logger.Debug("creating placeholder", "path", path)
		if err := afero.WriteFile(g.fs, path, nil, 0644); err != nil {
			return fmt.Errorf("%w %s: %w", ErrWriteFile, path, err)
		}
	}

	if err := afero.WriteFile(g.fs, path, data, 0644); err != nil {
		return fmt.Errorf("%w %s: %w", ErrWriteFile, path, err)
	}
	g.logger.Debug("wrote workflow", "identifier", id, "path", path, "bytes", len(data))

	g.reporter.Generated(id, g.opts.Extension)
	return nil
}

// NonEmpty returns identifiers without empty strings, preserving order.
func NonEmpty(identifiers []string) []string {
	ids := make([]string, 0, len(identifiers))
	for _, id := range identifiers {
		if id != "" {
			ids = append(ids, id)
		}
	}
	return ids
}

// ValidateIdentifier rejects identifiers that would not name a file
// directly inside the output directory.
func ValidateIdentifier(id string) error {
	if id == "." || id == ".." || strings.ContainsAny(id, `/\`) {
		return fmt.Errorf("%w %q", ErrInvalidIdentifier, id)
	}
	return nil
}

var _ Renderer = (*workflow.Renderer)(nil)
