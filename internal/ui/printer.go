// Package ui prints the colored status lines and tables users see.
package ui

import (
	"fmt"
	"io"
	"os"

	"github.com/mattn/go-colorable"
	"github.com/mattn/go-isatty"
	"github.com/olekukonko/tablewriter"
)

const (
	ansiReset  = "\x1b[0m"
	ansiRed    = "\x1b[31m"
	ansiGreen  = "\x1b[32m"
	ansiYellow = "\x1b[33m"
	ansiBlue   = "\x1b[34m"
	ansiBold   = "\x1b[1m"
)

// Printer writes user-facing messages. Colors are only emitted when the
// destination is a terminal.
type Printer struct {
	out   io.Writer
	color bool
}

// NewPrinter returns a Printer for f, enabling colors when f is a terminal.
func NewPrinter(f *os.File) *Printer {
	tty := isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
	if !tty {
		return &Printer{out: f}
	}
	return &Printer{out: colorable.NewColorable(f), color: true}
}

// NewPlainPrinter returns a Printer without colors, mostly for tests.
func NewPlainPrinter(w io.Writer) *Printer {
	return &Printer{out: w}
}

// Writer exposes the underlying writer.
func (p *Printer) Writer() io.Writer {
	return p.out
}

func (p *Printer) line(code, format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	if p.color && code != "" {
		msg = code + msg + ansiReset
	}
	fmt.Fprintln(p.out, msg)
}

// Success prints a green line.
func (p *Printer) Success(format string, args ...any) { p.line(ansiGreen, format, args...) }

// Info prints a blue line.
func (p *Printer) Info(format string, args ...any) { p.line(ansiBlue, format, args...) }

// Warn prints a bold yellow line.
func (p *Printer) Warn(format string, args ...any) { p.line(ansiBold+ansiYellow, format, args...) }

// Error prints a red line prefixed with "Error: ".
func (p *Printer) Error(format string, args ...any) {
	p.line(ansiRed, "Error: "+format, args...)
}

// Heading prints a bold line.
func (p *Printer) Heading(format string, args ...any) { p.line(ansiBold, format, args...) }

// Plain prints an uncolored line.
func (p *Printer) Plain(format string, args ...any) { p.line("", format, args...) }

// Table renders rows under the given headers.
func (p *Printer) Table(headers []string, rows [][]string) {
	table := tablewriter.NewWriter(p.out)
	table.SetHeader(headers)
	table.SetAutoWrapText(false)
	table.SetBorder(false)
	table.AppendBulk(rows)
	table.Render()
}
