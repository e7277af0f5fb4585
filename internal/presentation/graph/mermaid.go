package graph

import (
	"fmt"
	"sort"
	"strings"

	"github.com/aretw0/rewind/pkg/domain"
)

const maxLabel = 40

// GenerateMermaid produces a Mermaid flowchart of a session's history.
// Every document is one node, left to right from oldest to newest:
// - Past (undo): visited style, solid edges
// - Active: current style, ((circle))
// - Future (redo): dashed edges and border
//
// Labels show the named slices, or every key when slices is empty.
func GenerateMermaid(sess *domain.Session, slices []string) string {
	var sb strings.Builder
	sb.WriteString("graph LR\n")

	cursor := sess.Timeline.Cursor
	for i, doc := range sess.Timeline.States {
		opener, closer := "[", "]"
		if i == cursor {
			opener, closer = "((", "))"
		}
		fmt.Fprintf(&sb, "    %s%s\"%s\"%s\n", nodeID(i), opener, label(i, doc, slices), closer)

		if i == 0 {
			continue
		}
		arrow := "-->"
		if i > cursor {
			arrow = "-.->"
		}
		fmt.Fprintf(&sb, "    %s %s %s\n", nodeID(i-1), arrow, nodeID(i))
	}

	if sess.Timeline.Len() == 0 {
		return sb.String()
	}

	sb.WriteString("\n    %% Overlay Styles\n")
	// Force black text (color:#000) for high-contrast regardless of theme
	sb.WriteString("    classDef visited fill:#e1f5fe,stroke:#01579b,stroke-width:2px,color:#000;\n")
	sb.WriteString("    classDef current fill:#ffeb3b,stroke:#fbc02d,stroke-width:4px,color:#000;\n")
	sb.WriteString("    classDef future fill:#fafafa,stroke:#9e9e9e,stroke-dasharray:5 5,color:#000;\n")
	for i := range sess.Timeline.States {
		class := "visited"
		switch {
		case i == cursor:
			class = "current"
		case i > cursor:
			class = "future"
		}
		fmt.Fprintf(&sb, "    class %s %s;\n", nodeID(i), class)
	}
	return sb.String()
}

func nodeID(i int) string {
	return fmt.Sprintf("s%d", i)
}

func label(i int, doc domain.Document, slices []string) string {
	keys := slices
	if len(keys) == 0 {
		for k := range doc {
			keys = append(keys, k)
		}
		sort.Strings(keys)
	}

	parts := []string{fmt.Sprintf("#%d", i+1)}
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s: %s", k, truncate(fmt.Sprint(doc[k]))))
	}
	return sanitizeLabel(strings.Join(parts, "<br/>"))
}

func truncate(s string) string {
	r := []rune(s)
	if len(r) <= maxLabel {
		return s
	}
	return string(r[:maxLabel-3]) + "..."
}

// Mermaid labels are quoted, so double quotes become single quotes.
func sanitizeLabel(s string) string {
	return strings.ReplaceAll(s, "\"", "'")
}
