package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/muesli/termenv"
	"golang.org/x/term"

	"github.com/aretw0/rewind/pkg/domain"
)

// IsTerminal reports whether f is an interactive terminal.
func IsTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

// NewRenderer returns a function that renders markdown using glamour.
// The style follows the terminal background.
func NewRenderer() func(string) (string, error) {
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(100),
	)
	if err != nil {
		return func(markdown string) (string, error) { return markdown, nil }
	}
	return func(markdown string) (string, error) {
		return r.Render(markdown)
	}
}

// PrintBanner outputs the banner with a gradient when the terminal supports colour.
func PrintBanner(w io.Writer, version string) {
	p := termenv.ColorProfile()
	lines := []struct {
		text  string
		color string
	}{
		{`  ____                _           _ `, "#818cf8"},
		{` |  _ \ _____      _(_)_ __   __| |`, "#a78bfa"},
		{` | |_) / _ \ \ /\ / / | '_ \ / _' |`, "#c084fc"},
		{` |  _ <  __/\ V  V /| | | | | (_| |`, "#e879f9"},
		{` |_| \_\___| \_/\_/ |_|_| |_|\__,_|`, "#f472b6"},
	}

	fmt.Fprintln(w)
	for _, l := range lines {
		fmt.Fprintln(w, termenv.String(l.text).Foreground(p.Color(l.color)))
	}
	fmt.Fprintln(w, termenv.String("  v"+strings.TrimSpace(version)).Faint())
	fmt.Fprintln(w)
}

// TimelineMarkdown renders every document of a session as a markdown table,
// marking the active one.
func TimelineMarkdown(sess *domain.Session, slices []string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Session `%s`\n\n", sess.ID)
	fmt.Fprintf(&b, "Updated %s. Step %d of %d.\n\n",
		sess.UpdatedAt.Format("2006-01-02 15:04:05"), sess.Timeline.Cursor+1, sess.Timeline.Len())

	b.WriteString("| # | |")
	for _, name := range slices {
		fmt.Fprintf(&b, " %s |", name)
	}
	b.WriteString("\n|---|---|")
	for range slices {
		b.WriteString("---|")
	}
	b.WriteString("\n")

	for i, doc := range sess.Timeline.States {
		marker := ""
		if i == sess.Timeline.Cursor {
			marker = "**>**"
		}
		fmt.Fprintf(&b, "| %d | %s |", i+1, marker)
		for _, name := range slices {
			fmt.Fprintf(&b, " %s |", cell(doc[name]))
		}
		b.WriteString("\n")
	}
	return b.String()
}

func cell(v any) string {
	s := fmt.Sprint(v)
	if v == nil {
		s = ""
	}
	return strings.ReplaceAll(s, "|", `\|`)
}
