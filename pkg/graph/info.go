package graph

import "github.com/aretw0/loom/pkg/domain"

// Info describes a without evaluating anything.
func (a *Attribute) Info() domain.AttributeInfo {
	info := domain.AttributeInfo{
		Path:      a.FullName(),
		Name:      a.name,
		Direction: a.dir.String(),
		Kind:      a.Kind().String(),
		Dirty:     a.dirty,
		Dynamic:   a.dynamic,
		Value:     a.val.AsString(),
		Slices:    a.val.SlicesCount(),
	}
	for _, k := range a.allowed.Kinds() {
		info.Allowed = append(info.Allowed, k.String())
	}
	if src := a.Source(); src != nil {
		info.Source = src.FullName()
	}
	return info
}

// Info describes n and its attributes without evaluating anything.
func (n *Node) Info() domain.NodeInfo {
	info := domain.NodeInfo{
		Path:      n.FullName(),
		Name:      n.name,
		Type:      n.Type(),
		Sliceable: n.sliceable,
		Slices:    1,
		Preset:    n.preset,
	}
	if p := n.Parent(); p != nil && p != n.g.root {
		info.Parent = p.FullName()
	}
	for _, a := range n.Attributes() {
		ai := a.Info()
		info.Slices = max(info.Slices, ai.Slices)
		info.Attributes = append(info.Attributes, ai)
	}
	return info
}

// Inspect describes every node of g in depth-first order.
func (g *Graph) Inspect() []domain.NodeInfo {
	nodes := g.Nodes()
	out := make([]domain.NodeInfo, 0, len(nodes))
	for _, n := range nodes {
		out = append(out, n.Info())
	}
	return out
}
