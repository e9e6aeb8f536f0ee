package tui

import (
	"fmt"
	"io"
	"strings"

	"github.com/aretw0/loom/pkg/domain"
	"github.com/muesli/termenv"
)

// Report builds a markdown document describing every node and attribute.
func Report(title string, nodes []domain.NodeInfo) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "# %s\n\n", title)
	dirty := 0
	for _, n := range nodes {
		if n.Dirty() {
			dirty++
		}
	}
	fmt.Fprintf(&sb, "%d nodes, %d dirty.\n\n", len(nodes), dirty)

	for _, n := range nodes {
		fmt.Fprintf(&sb, "## %s\n\n", n.Path)
		fmt.Fprintf(&sb, "Type `%s`", n.Type)
		if n.Sliceable {
			fmt.Fprintf(&sb, ", sliceable (%d slices)", n.Slices)
		}
		if n.Preset != "" {
			fmt.Fprintf(&sb, ", preset `%s`", n.Preset)
		}
		sb.WriteString(".\n\n")
		if len(n.Attributes) == 0 {
			continue
		}
		sb.WriteString("| Attribute | Dir | Kind | State | Source | Value |\n")
		sb.WriteString("|---|---|---|---|---|---|\n")
		for _, a := range n.Attributes {
			kind := a.Kind
			if kind == "Any" && len(a.Allowed) > 0 && len(a.Allowed) <= 4 {
				kind = "Any (" + strings.Join(a.Allowed, ", ") + ")"
			}
			fmt.Fprintf(&sb, "| %s | %s | %s | %s | %s | `%s` |\n",
				a.Name, a.Direction, kind, state(a.Dirty), a.Source, truncate(a.Value, 40))
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

// Status colors a clean/dirty marker for w.
func Status(w io.Writer, dirty bool) string {
	p := Profile(w)
	if dirty {
		return termenv.String("dirty").Foreground(p.Color("#ff8f00")).String()
	}
	return termenv.String("clean").Foreground(p.Color("#2e7d32")).String()
}

func state(dirty bool) string {
	if dirty {
		return "dirty"
	}
	return "clean"
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n-1] + "…"
}
