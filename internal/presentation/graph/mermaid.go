package graph

import (
	"fmt"
	"strings"

	"github.com/aretw0/loom/pkg/domain"
)

// GenerateMermaid produces a Mermaid flowchart from node descriptions.
// Containers become subgraphs, connections become labelled edges
// ("out → in0"), and nodes are styled by their dirty state:
// - Dirty: dashed amber
// - Clean: solid green
func GenerateMermaid(nodes []domain.NodeInfo) string {
	var sb strings.Builder
	sb.WriteString("graph LR\n")

	children := make(map[string][]domain.NodeInfo)
	for _, n := range nodes {
		children[n.Parent] = append(children[n.Parent], n)
	}

	var write func(parent, indent string)
	write = func(parent, indent string) {
		for _, n := range children[parent] {
			id := sanitizeMermaidID(n.Path)
			if len(children[n.Path]) > 0 {
				fmt.Fprintf(&sb, "%ssubgraph %s_group[\"%s\"]\n", indent, id, n.Name)
				writeNode(&sb, indent+"    ", id, n)
				write(n.Path, indent+"    ")
				fmt.Fprintf(&sb, "%send\n", indent)
				continue
			}
			writeNode(&sb, indent, id, n)
		}
	}
	write("", "    ")

	for _, n := range nodes {
		for _, a := range n.Attributes {
			if a.Source == "" {
				continue
			}
			from, fromAttr := splitPath(a.Source)
			fmt.Fprintf(&sb, "    %s -- \"%s → %s\" --> %s\n", sanitizeMermaidID(from), fromAttr, a.Name, sanitizeMermaidID(n.Path))
		}
	}

	sb.WriteString("\n    %% State Styles\n")
	sb.WriteString("    classDef dirty fill:#fff8e1,stroke:#ff8f00,stroke-dasharray:4 2,color:#000;\n")
	sb.WriteString("    classDef clean fill:#e8f5e9,stroke:#2e7d32,color:#000;\n")
	for _, n := range nodes {
		class := "clean"
		if n.Dirty() {
			class = "dirty"
		}
		fmt.Fprintf(&sb, "    class %s %s;\n", sanitizeMermaidID(n.Path), class)
	}
	return sb.String()
}

// writeNode emits one node box: slicers and loops are stadiums, everything
// else a rectangle labelled with name and type.
func writeNode(sb *strings.Builder, indent, id string, n domain.NodeInfo) {
	opener, closer := "[", "]"
	if strings.HasPrefix(n.Type, "loop") {
		opener, closer = "([", "])"
	}
	label := fmt.Sprintf("%s <br/> <i>%s</i>", n.Name, n.Type)
	if n.Slices > 1 {
		label += fmt.Sprintf(" ×%d", n.Slices)
	}
	fmt.Fprintf(sb, "%s%s%s\"%s\"%s\n", indent, id, opener, label, closer)
}

func splitPath(path string) (node, attr string) {
	i := strings.LastIndexByte(path, '.')
	if i < 0 {
		return "", path
	}
	return path[:i], path[i+1:]
}

func sanitizeMermaidID(id string) string {
	s := strings.ReplaceAll(id, ".", "_")
	s = strings.ReplaceAll(s, "-", "_")
	s = strings.ReplaceAll(s, "/", "_")
	s = strings.ReplaceAll(s, "\\", "_")
	return s
}
