package cli

import (
	"fmt"
	"io"

	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/STNeto1/openapi-gen/internal/emitter/tsemitter"
)

var (
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#27ca3f"))
	warnStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#f9ca24"))
	labelStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#bababa"))
)

// theme is the huh theme used by interactive prompts.
func theme() *huh.Theme {
	t := huh.ThemeBase16()
	t.FieldSeparator = lipgloss.NewStyle().SetString("\n").MarginBottom(1)
	t.Form.Base = t.Form.Base.MarginTop(1)
	t.Focused.Title = t.Focused.Title.Foreground(lipgloss.Color("#f9ca24"))
	t.Blurred.Title = t.Blurred.Title.Foreground(lipgloss.Color("#bababa"))
	return t
}

type resultField struct {
	Label string
	Value string
}

// printResult prints a styled summary with checkmarks and gray labels.
func printResult(w io.Writer, fields []resultField, msg string) {
	check := successStyle.Render("✓")
	for _, f := range fields {
		fmt.Fprintf(w, "%s %s %s\n", check, labelStyle.Render(f.Label+":"), f.Value)
	}
	if msg != "" {
		fmt.Fprintln(w, successStyle.Render(msg))
	}
}

func printGenerateResult(w io.Writer, res *tsemitter.Result, diagnostics int, dryRun bool) {
	fields := []resultField{
		{Label: "Definitions", Value: fmt.Sprint(res.Definitions)},
		{Label: "Functions", Value: fmt.Sprint(len(res.Functions))},
		{Label: "Size", Value: fmt.Sprintf("%d bytes", res.Size)},
	}
	msg := "Wrote " + res.OutPath
	if dryRun {
		msg = "Dry run: would write " + res.OutPath
	}
	printResult(w, fields, msg)
	if diagnostics > 0 {
		fmt.Fprintln(w, warnStyle.Render(fmt.Sprintf("%d warning(s) logged to stderr", diagnostics)))
	}
}
