package scene

import (
	"errors"
	"fmt"
	"strings"

	"github.com/aretw0/loom/pkg/graph"
	"github.com/aretw0/loom/pkg/nodes"
	"github.com/aretw0/loom/pkg/value"
)

// Issue is one problem found by Validate.
type Issue struct {
	Path    string
	Message string
}

func (i Issue) String() string { return i.Path + ": " + i.Message }

// Validate builds the scene and reports the structural problems a host
// would hit at load time, plus the outputs that stay unresolved.
func (s *Scene) Validate(reg *nodes.Registry) []Issue {
	var issues []Issue
	seen := make(map[string]bool)
	var walk func(prefix string, ns []Node)
	walk = func(prefix string, ns []Node) {
		for _, n := range ns {
			path := prefix + n.Name
			switch {
			case n.Name == "" || strings.ContainsRune(n.Name, '.'):
				issues = append(issues, Issue{Path: path, Message: "invalid node name"})
			case seen[path]:
				issues = append(issues, Issue{Path: path, Message: "duplicate node"})
			}
			seen[path] = true
			walk(path+".", n.Children)
		}
	}
	walk("", s.Nodes)
	if len(issues) > 0 {
		return issues
	}

	g, err := s.Build(reg)
	if err != nil {
		return append(issues, Issue{Path: s.Name, Message: err.Error()})
	}
	for _, path := range s.Outputs {
		a, err := g.FindAttribute(path)
		if err != nil {
			issues = append(issues, Issue{Path: path, Message: "unknown output"})
			continue
		}
		if a.Kind() == value.Any {
			issues = append(issues, Issue{Path: path, Message: "unresolved specialization " + a.AllowedSpecialization().String()})
		}
	}
	return issues
}

// ResolveOutputs resolves the scene outputs in g. Without declared outputs every
// output attribute of g is returned.
func (s *Scene) ResolveOutputs(g *graph.Graph) ([]*graph.Attribute, error) {
	if len(s.Outputs) == 0 {
		var all []*graph.Attribute
		for _, n := range g.Nodes() {
			all = append(all, n.Outputs()...)
		}
		return all, nil
	}
	attrs := make([]*graph.Attribute, 0, len(s.Outputs))
	var errs []error
	for _, path := range s.Outputs {
		a, err := g.FindAttribute(path)
		if err != nil {
			errs = append(errs, fmt.Errorf("output %q: %w", path, err))
			continue
		}
		attrs = append(attrs, a)
	}
	return attrs, errors.Join(errs...)
}
