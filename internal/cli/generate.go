package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"e2egen/internal/discovery"
	"e2egen/internal/generator"
	"e2egen/internal/manifest"
)

// generateFlags are the root command's local flags.
type generateFlags struct {
	all      bool
	filter   string
	from     string
	dryRun   bool
	stdout   bool
	list     bool
	variants bool
}

// runGenerate collects identifiers from the arguments, then --all, then
// --from, and writes one workflow per identifier in that order. With
// --stdout the workflows are printed instead.
func runGenerate(cmd *cobra.Command, app *App, flags *generateFlags, args []string) error {
	if len(args) == 0 && !flags.all && flags.from == "" {
		fmt.Fprint(cmd.ErrOrStderr(), cmd.UsageString())
		return NewExitError(1)
	}

	identifiers := append([]string(nil), args...)

	if flags.all {
		names, err := discoverTests(app, flags.filter)
		if err != nil {
			return err
		}
		identifiers = append(identifiers, names...)
	}

	if flags.from != "" {
		m, err := manifest.ReadFromFile(app.Fs, flags.from)
		if err != nil {
			return err
		}
		app.Logger.Debug("read manifest", "path", flags.from, "entries", len(m.Entries))
		identifiers = append(identifiers, m.Tests()...)
	}

	renderer, err := app.renderer()
	if err != nil {
		return err
	}

	if flags.stdout {
		return renderAll(cmd.Context(), app, renderer, identifiers)
	}

	gen := generator.New(app.Fs, renderer, app.Printer, app.Logger, generator.Options{
		OutputDir: app.Config.OutputDir,
		Extension: app.Config.Extension,
		Strict:    app.Config.Strict,
		DryRun:    flags.dryRun,
	})
	return gen.Generate(cmd.Context(), identifiers)
}

// discoverTests scans the configured test package and applies pattern, or
// the configured pattern when pattern is empty.
func discoverTests(app *App, pattern string) ([]string, error) {
	if pattern == "" {
		pattern = app.Config.Discovery.Pattern
	}

	names, err := discovery.NewScanner(app.Fs).Scan(app.Config.Discovery.Dir)
	if err != nil {
		return nil, err
	}
	app.Logger.Debug("discovered tests", "dir", app.Config.Discovery.Dir, "count", len(names))

	names, err = discovery.Filter(names, pattern)
	if err != nil {
		return nil, err
	}
	if len(names) == 0 {
		return nil, discovery.ErrNoTestsFound
	}
	return names, nil
}
