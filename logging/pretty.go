package logging

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// PrettyLogger prints user-facing results. Diagnostics go through the
// component loggers instead.
type PrettyLogger struct {
	writer io.Writer
	styles PrettyStyles
}

// PrettyStyles contains lipgloss styles for different output kinds
type PrettyStyles struct {
	Success lipgloss.Style
	Info    lipgloss.Style
	Warning lipgloss.Style
	Error   lipgloss.Style
	Key     lipgloss.Style
	Value   lipgloss.Style
	Path    lipgloss.Style
	Code    lipgloss.Style
	Current lipgloss.Style
}

// DefaultPrettyStyles returns the default styling for pretty output
func DefaultPrettyStyles() PrettyStyles {
	return PrettyStyles{
		Success: lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Bold(true),  // Green
		Info:    lipgloss.NewStyle().Foreground(lipgloss.Color("12")),             // Blue
		Warning: lipgloss.NewStyle().Foreground(lipgloss.Color("11")),             // Yellow
		Error:   lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true),   // Red
		Key:     lipgloss.NewStyle().Foreground(lipgloss.Color("8")),              // Gray
		Value:   lipgloss.NewStyle().Foreground(lipgloss.Color("14")).Bold(true),  // Cyan
		Path:    lipgloss.NewStyle().Foreground(lipgloss.Color("6")).Italic(true), // Dark cyan
		Code:    lipgloss.NewStyle(),
		Current: lipgloss.NewStyle().Foreground(lipgloss.Color("10")),
	}
}

// NewPrettyLogger creates a pretty printer writing to stdout
func NewPrettyLogger() *PrettyLogger {
	return &PrettyLogger{
		writer: os.Stdout,
		styles: DefaultPrettyStyles(),
	}
}

// WithWriter sets a custom writer for pretty output
func (p *PrettyLogger) WithWriter(w io.Writer) *PrettyLogger {
	p.writer = w
	return p
}

// Writer returns the destination of pretty output.
func (p *PrettyLogger) Writer() io.Writer {
	return p.writer
}

// Success prints a message with a checkmark
func (p *PrettyLogger) Success(message string) {
	fmt.Fprintf(p.writer, "%s %s\n",
		p.styles.Success.Render("✓"),
		p.styles.Success.Render(message))
}

// InfoPretty prints an informational line
func (p *PrettyLogger) InfoPretty(message string) {
	fmt.Fprintf(p.writer, "%s\n", p.styles.Info.Render(message))
}

// WarnPretty prints a warning
func (p *PrettyLogger) WarnPretty(message string) {
	fmt.Fprintf(p.writer, "%s %s\n",
		p.styles.Warning.Render("⚠"),
		p.styles.Warning.Render(message))
}

// ErrorPretty prints an error
func (p *PrettyLogger) ErrorPretty(message string, err error) {
	fmt.Fprintf(p.writer, "%s %s",
		p.styles.Error.Render("✗"),
		p.styles.Error.Render(message))
	if err != nil {
		fmt.Fprintf(p.writer, ": %s", p.styles.Error.Render(err.Error()))
	}
	fmt.Fprintln(p.writer)
}

// Field prints a key-value pair
func (p *PrettyLogger) Field(key string, value interface{}) {
	fmt.Fprintf(p.writer, "%s: %s\n",
		p.styles.Key.Render(key),
		p.styles.Value.Render(fmt.Sprint(value)))
}

// Path prints a labelled file path
func (p *PrettyLogger) Path(label string, path string) {
	fmt.Fprintf(p.writer, "%s: %s\n",
		p.styles.Key.Render(label),
		p.styles.Path.Render(path))
}

// Code prints captured tool output verbatim, without trailing blank lines
func (p *PrettyLogger) Code(content string) {
	content = strings.TrimRight(content, "\n")
	if content == "" {
		return
	}
	for _, line := range strings.Split(content, "\n") {
		fmt.Fprintln(p.writer, p.styles.Code.Render(line))
	}
}

// Choice prints one numbered entry of a selection list.
func (p *PrettyLogger) Choice(index int, label string) {
	fmt.Fprintf(p.writer, "  %s %s\n",
		p.styles.Key.Render(fmt.Sprintf("%d)", index)),
		label)
}

// Current prints the marked current item of a list.
func (p *PrettyLogger) Current(label, value string) {
	fmt.Fprintf(p.writer, "%s %s\n",
		p.styles.Key.Render(label),
		p.styles.Current.Render("* "+value))
}

// Blank prints a blank line
func (p *PrettyLogger) Blank() {
	fmt.Fprintln(p.writer)
}
