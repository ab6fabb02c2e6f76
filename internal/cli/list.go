package cli

import (
	"fmt"
)

// runList prints the test functions found in the e2e test package.
//
// The package directory comes from --tests-dir or discovery.dir in the
// config file (default e2etest/setup).
func runList(app *App, filter string, args []string) error {
	if len(args) > 0 {
		return fmt.Errorf("--list takes no identifiers, got %d", len(args))
	}

	names, err := discoverTests(app, filter)
	if err != nil {
		return err
	}

	app.Printer.Header(fmt.Sprintf("Tests in %s", app.Config.Discovery.Dir))
	for _, name := range names {
		app.Printer.Item(name)
	}
	app.Printer.Muted(fmt.Sprintf("%d tests", len(names)))
	return nil
}
