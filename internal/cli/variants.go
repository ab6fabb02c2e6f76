package cli

import (
	"fmt"
	"strings"

	"e2egen/internal/workflow"
)

// runVariants prints the built-in presets and the variants declared in the
// config file. A config variant with a preset's name replaces the preset.
func runVariants(app *App, args []string) error {
	if len(args) > 0 {
		return fmt.Errorf("--variants takes no identifiers, got %d", len(args))
	}

	app.Printer.Header("Variants")
	for _, name := range app.Config.VariantNames() {
		v, err := app.Config.ResolveVariant(name)
		if err != nil {
			return err
		}
		app.Printer.ItemWithNote(name, "("+describeVariant(v)+")")
	}
	app.Printer.Muted(fmt.Sprintf("default: %s", app.Config.Variant))
	return nil
}

// describeVariant summarizes v on one line.
func describeVariant(v workflow.Variant) string {
	parts := []string{strings.Join(v.Triggers, ", ")}
	if v.Guard != "" {
		parts = append(parts, fmt.Sprintf("guard %q", v.Guard))
	}
	parts = append(parts, "go "+v.GoVersion)
	if v.CacheReset {
		parts = append(parts, "cache reset")
	}
	if v.Notify {
		parts = append(parts, "notify")
	}
	return strings.Join(parts, "; ")
}
