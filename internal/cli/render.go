package cli

import (
	"context"
	"fmt"

	"e2egen/internal/generator"
	"e2egen/internal/workflow"
)

// documentSeparator separates workflows printed by --stdout.
const documentSeparator = "---\n"

// renderAll prints the workflow for each non-empty identifier to the
// printer, separated as a YAML stream. Nothing is written to disk.
func renderAll(ctx context.Context, app *App, renderer *workflow.Renderer, identifiers []string) error {
	for i, id := range generator.NonEmpty(identifiers) {
		if err := ctx.Err(); err != nil {
			return err
		}

		data, err := renderer.Render(id)
		if err != nil {
			return err
		}
		if i > 0 {
			data = append([]byte(documentSeparator), data...)
		}
		if err := app.Printer.Raw(data); err != nil {
			return fmt.Errorf("failed to write workflow %s: %w", id, err)
		}
	}
	return nil
}
