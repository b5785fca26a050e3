package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"golang.org/x/term"
)

const (
	helpMaxWidth = 72
	helpMinWidth = 40
)

var palette = struct {
	Title   lipgloss.Style
	Section lipgloss.Style
	Command lipgloss.Style
	Sub     lipgloss.Style
	Flag    lipgloss.Style
	Muted   lipgloss.Style
	Italic  lipgloss.Style
}{
	Title:   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("208")),
	Section: lipgloss.NewStyle().Italic(true).Foreground(lipgloss.Color("208")),
	Command: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12")),
	Sub:     lipgloss.NewStyle().Foreground(lipgloss.Color("14")),
	Flag:    lipgloss.NewStyle().Foreground(lipgloss.Color("13")),
	Muted:   lipgloss.NewStyle().Foreground(lipgloss.Color("8")),
	Italic:  lipgloss.NewStyle().Italic(true),
}

// SetStyledHelp installs the styled help on one command.
func SetStyledHelp(cmd *cobra.Command) {
	cmd.SetHelpFunc(renderHelp)
}

// ApplyStyledHelpRecursive installs styled help on cmd and every
// subcommand. Usage output is suppressed: the ErrorHandler reports errors.
// Call it once the tree is complete.
func ApplyStyledHelpRecursive(cmd *cobra.Command) {
	cmd.SetHelpFunc(renderHelp)
	cmd.SetUsageFunc(func(*cobra.Command) error { return nil })
	for _, sub := range cmd.Commands() {
		ApplyStyledHelpRecursive(sub)
	}
}

// helpPage writes one command's help, indented by one column.
type helpPage struct {
	w     io.Writer
	cmd   *cobra.Command
	width int
}

func renderHelp(cmd *cobra.Command, _ []string) {
	writeHelp(cmd.OutOrStdout(), cmd)
}

// UsageText returns the styled help of cmd as a string.
func UsageText(cmd *cobra.Command) string {
	var buf strings.Builder
	writeHelp(&buf, cmd)
	return buf.String()
}

func writeHelp(w io.Writer, cmd *cobra.Command) {
	p := &helpPage{w: w, cmd: cmd, width: helpWidth() - 2}
	description, examples := parseDescription(cmd.Long)
	if cmd.Example != "" {
		examples = cmd.Example
	}

	p.line(palette.Title.Render(strings.ToUpper(cmd.CommandPath())))
	p.paragraph(cmd.Short, palette.Italic)
	if description != "" && description != cmd.Short {
		fmt.Fprintln(p.w)
		p.paragraph(description, lipgloss.NewStyle())
	}
	p.usage()
	if len(cmd.Aliases) > 0 {
		fmt.Fprintln(p.w)
		p.line(palette.Muted.Render("Aliases: " + strings.Join(cmd.Aliases, ", ")))
	}
	p.commands()
	p.flags()
	if examples != "" {
		p.section("EXAMPLES")
		renderExamples(p.w, examples, cmd.Root().Name())
	}
	if cmd.HasAvailableSubCommands() {
		fmt.Fprintln(p.w)
		p.line(fmt.Sprintf("Use \"%s [command] --help\" for more information.", cmd.CommandPath()))
	}
}

func (p *helpPage) line(s string) {
	fmt.Fprintln(p.w, " "+s)
}

func (p *helpPage) section(title string) {
	fmt.Fprintln(p.w)
	p.line(palette.Section.Render(title))
}

func (p *helpPage) paragraph(text string, style lipgloss.Style) {
	if text == "" {
		return
	}
	for _, l := range strings.Split(wrapText(text, p.width), "\n") {
		p.line(style.Render(l))
	}
}

func (p *helpPage) usage() {
	if !p.cmd.Runnable() && !p.cmd.HasSubCommands() {
		return
	}
	p.section("USAGE")
	if p.cmd.Runnable() {
		p.line(p.cmd.UseLine())
	}
	if p.cmd.HasSubCommands() {
		p.line(p.cmd.CommandPath() + " [command]")
	}
}

func (p *helpPage) commands() {
	var subs []*cobra.Command
	width := 0
	for _, sub := range p.cmd.Commands() {
		if !sub.IsAvailableCommand() {
			continue
		}
		subs = append(subs, sub)
		width = max(width, len(sub.Name()))
	}
	if len(subs) == 0 {
		return
	}
	p.section("COMMANDS")
	for _, sub := range subs {
		pad := strings.Repeat(" ", width-len(sub.Name()))
		p.line(palette.Command.Render(sub.Name()) + pad + "  " + sub.Short)
	}
}

// flags lists a leaf command's own flags in full. Parents and inherited
// flags get a one-line summary.
func (p *helpPage) flags() {
	local := visibleFlags(p.cmd.LocalFlags())
	inherited := visibleFlags(p.cmd.InheritedFlags())

	if len(local) > 0 && p.cmd.HasAvailableSubCommands() {
		fmt.Fprintln(p.w)
		p.line(palette.Muted.Render("Flags: " + flagSummary(local)))
	} else if len(local) > 0 {
		p.section("FLAGS")
		width := 0
		for _, f := range local {
			width = max(width, len(formatFlagName(f)))
		}
		for _, f := range local {
			name := formatFlagName(f)
			usage := f.Usage
			if f.DefValue != "" && f.DefValue != "false" && f.DefValue != "[]" {
				usage += palette.Muted.Render(fmt.Sprintf(" (default: %s)", f.DefValue))
			}
			p.line(palette.Flag.Render(name) + strings.Repeat(" ", width-len(name)) + "  " + usage)
		}
	}

	if len(inherited) > 0 {
		fmt.Fprintln(p.w)
		p.line(palette.Muted.Render("Global flags: " + flagSummary(inherited)))
	}
}

func visibleFlags(set *pflag.FlagSet) []*pflag.Flag {
	var flags []*pflag.Flag
	set.VisitAll(func(f *pflag.Flag) {
		if !f.Hidden && f.Name != "help" {
			flags = append(flags, f)
		}
	})
	return flags
}

func flagSummary(flags []*pflag.Flag) string {
	names := make([]string, 0, len(flags))
	for _, f := range flags {
		if f.Shorthand != "" {
			names = append(names, "-"+f.Shorthand+"/--"+f.Name)
		} else {
			names = append(names, "--"+f.Name)
		}
	}
	return strings.Join(names, ", ")
}

// formatFlagName renders "-f, --flag", padding long-only flags to line up.
func formatFlagName(f *pflag.Flag) string {
	if f.Shorthand != "" {
		return fmt.Sprintf("-%s, --%s", f.Shorthand, f.Name)
	}
	return "    --" + f.Name
}

// helpWidth is the terminal width clamped to a readable range.
func helpWidth() int {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width < helpMinWidth {
		return helpMaxWidth
	}
	return min(width, helpMaxWidth)
}

// wrapText wraps each line of text at width, keeping existing breaks.
func wrapText(text string, width int) string {
	if width <= 0 {
		width = helpMaxWidth
	}
	var out []string
	for _, paragraph := range strings.Split(text, "\n") {
		if len(paragraph) <= width {
			out = append(out, paragraph)
			continue
		}
		line := ""
		for _, word := range strings.Fields(paragraph) {
			switch {
			case line == "":
				line = word
			case len(line)+1+len(word) <= width:
				line += " " + word
			default:
				out = append(out, line)
				line = word
			}
		}
		if line != "" {
			out = append(out, line)
		}
	}
	return strings.Join(out, "\n")
}

// parseDescription splits a long description at its "Examples:" line.
func parseDescription(long string) (description, examples string) {
	for _, marker := range []string{"\nExamples:\n", "\nExample:\n"} {
		if i := strings.Index(long, marker); i >= 0 {
			return strings.TrimSpace(long[:i]), strings.TrimSpace(long[i+len(marker):])
		}
	}
	return strings.TrimSpace(long), ""
}

// renderExamples prints example lines; "#" lines and trailing "  # ..."
// comments are muted, the program name, subcommand and flags are colored.
func renderExamples(w io.Writer, examples, program string) {
	for _, raw := range strings.Split(examples, "\n") {
		line := strings.TrimSpace(raw)
		switch {
		case line == "":
			fmt.Fprintln(w)
			continue
		case strings.HasPrefix(line, "#"):
			fmt.Fprintln(w, "   "+palette.Muted.Render(line))
			continue
		}

		var comment string
		if i := strings.Index(line, "  #"); i >= 0 {
			line, comment = strings.TrimSpace(line[:i]), strings.TrimSpace(line[i:])
		}
		fields := strings.Fields(line)
		for i, field := range fields {
			switch {
			case i == 0 && field == program:
				fields[i] = palette.Command.Render(field)
			case strings.HasPrefix(field, "-"):
				fields[i] = palette.Flag.Render(field)
			case i == 1:
				fields[i] = palette.Sub.Render(field)
			}
		}
		out := "   " + strings.Join(fields, " ")
		if comment != "" {
			out += "  " + palette.Muted.Render(comment)
		}
		fmt.Fprintln(w, out)
	}
}
