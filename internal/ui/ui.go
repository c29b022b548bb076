// Package ui holds the console palette and table printing used by the CLI.
package ui

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
)

// Palette
var (
	Brand  = color.New(color.FgHiCyan, color.Bold)
	Subtle = color.New(color.FgHiBlack)
	Warn   = color.New(color.FgYellow)
	Info   = color.New(color.FgCyan)
	Good   = color.New(color.FgGreen)
	Bad    = color.New(color.FgRed)
)

// Out is where Banner and Table print. Tests swap it.
var Out io.Writer = os.Stdout

// Banner prints the product name and a subtitle.
func Banner(subtitle string) {
	fmt.Fprintf(Out, "%s %s\n\n", Brand.Sprint("floorlink"), Subtle.Sprint(subtitle))
}

// Table prints an aligned table. Nothing is printed for no rows.
func Table(headers []string, rows [][]string) {
	if len(rows) == 0 {
		return
	}

	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = len(h)
	}
	for _, row := range rows {
		for i, cell := range row {
			if i < len(widths) && len(cell) > widths[i] {
				widths[i] = len(cell)
			}
		}
	}

	var header, sep strings.Builder
	for i, h := range headers {
		fmt.Fprintf(&header, "  %-*s", widths[i], h)
		sep.WriteString("  " + strings.Repeat("─", widths[i]))
	}
	Subtle.Fprintln(Out, header.String())
	Subtle.Fprintln(Out, sep.String())

	for _, row := range rows {
		var line strings.Builder
		for i, cell := range row {
			if i < len(widths) {
				fmt.Fprintf(&line, "  %-*s", widths[i], cell)
			}
		}
		fmt.Fprintln(Out, strings.TrimRight(line.String(), " "))
	}
}

// StatusIcon returns a check or a cross.
func StatusIcon(ok bool) string {
	if ok {
		return Good.Sprint("✓")
	}
	return Bad.Sprint("✗")
}

// Success prints a green check line.
func Success(format string, args ...interface{}) {
	fmt.Fprintf(Out, "%s %s\n", StatusIcon(true), fmt.Sprintf(format, args...))
}

// Warning prints a yellow warning line.
func Warning(format string, args ...interface{}) {
	fmt.Fprintf(Out, "%s %s\n", Warn.Sprint("⚠"), fmt.Sprintf(format, args...))
}
