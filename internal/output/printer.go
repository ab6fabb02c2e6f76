// Package output renders user-facing terminal output for e2egen.
//
// All styling goes through lipgloss. A [Printer] created for a writer that is
// not a terminal falls back to plain text, which keeps output stable in tests
// and when piped.
package output

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
)

// Printer writes styled output to a single writer.
type Printer struct {
	out io.Writer

	success lipgloss.Style
	header  lipgloss.Style
	muted   lipgloss.Style
	item    lipgloss.Style
}

// NewPrinter creates a [Printer] that writes to stdout.
func NewPrinter() *Printer {
	return NewPrinterWithWriter(os.Stdout)
}

// NewPrinterWithWriter creates a [Printer] that writes to w.
func NewPrinterWithWriter(w io.Writer) *Printer {
	r := lipgloss.NewRenderer(w)
	return &Printer{
		out:     w,
		success: r.NewStyle().Foreground(lipgloss.Color("42")),
		header:  r.NewStyle().Bold(true),
		muted:   r.NewStyle().Foreground(lipgloss.Color("245")),
		item:    r.NewStyle().PaddingLeft(2),
	}
}

// Generated prints the confirmation line for a written workflow file.
func (p *Printer) Generated(identifier, extension string) {
	fmt.Fprintln(p.out, p.success.Render(fmt.Sprintf("Generated e2e-%s.%s", identifier, extension)))
}

// DryRun prints the line for a workflow that would have been written to path.
func (p *Printer) DryRun(identifier, path string) {
	fmt.Fprintln(p.out, p.muted.Render(fmt.Sprintf("Would generate e2e-%s (%s)", identifier, path)))
}

// Header prints a bold section title.
func (p *Printer) Header(title string) {
	fmt.Fprintln(p.out, p.header.Render(title))
}

// Item prints an indented list entry.
func (p *Printer) Item(text string) {
	fmt.Fprintln(p.out, p.item.Render(text))
}

// ItemWithNote prints an indented list entry followed by a muted note.
func (p *Printer) ItemWithNote(text, note string) {
	fmt.Fprintln(p.out, p.item.Render(text)+" "+p.muted.Render(note))
}

// Muted prints a dimmed line.
func (p *Printer) Muted(text string) {
	fmt.Fprintln(p.out, p.muted.Render(text))
}

// Raw writes data unmodified.
func (p *Printer) Raw(data []byte) error {
	_, err := p.out.Write(data)
	return err
}
