package graph

import (
	"fmt"

	"github.com/aretw0/loom/pkg/domain"
)

// SetSlicer designates child as the slicer of the loop n contains. Every
// sliceable node below n without a closer slicer is evaluated once per slice
// reported by child. A nil child clears the designation.
func (n *Node) SetSlicer(child *Node) error {
	var id NodeID
	if child != nil {
		if !child.alive() || child.parent != n.id {
			return fmt.Errorf("set slicer of %q: %w", n.FullName(), domain.ErrNotSlicer)
		}
		if _, ok := child.behavior.(Slicer); !ok {
			return fmt.Errorf("set slicer %q: %w", child.FullName(), domain.ErrNotSlicer)
		}
		id = child.id
	}
	if n.slicer == id {
		return nil
	}
	n.g.beginDirty()
	defer n.g.endDirty()
	// Dirty both the old and the new loop body.
	for _, s := range n.g.sliceableIn(n) {
		s.dirtyComputed()
	}
	n.slicer = id
	for _, s := range n.g.sliceableIn(n) {
		s.dirtyComputed()
	}
	return nil
}

// Slicer returns the designated slicer child, or nil.
func (n *Node) Slicer() *Node { return n.g.node(n.slicer) }

// SlicesCount is the iteration count n is evaluated with: the count reported
// by its loop's slicer for sliceable nodes, 1 otherwise. Slicer inputs are
// pulled first.
func (n *Node) SlicesCount() int {
	if !n.sliceable {
		return 1
	}
	return n.g.sliceCount(n, evalOptions{recurse: true})
}

// slicerFor finds the slicer of the nearest enclosing loop.
func (g *Graph) slicerFor(n *Node) *Node {
	for p := n.Parent(); p != nil; p = p.Parent() {
		if s := g.node(p.slicer); s != nil {
			return s
		}
	}
	return nil
}

func (g *Graph) sliceCount(n *Node, opt evalOptions) int {
	s := g.slicerFor(n)
	if s == nil || s == n {
		return 1
	}
	slicer, ok := s.behavior.(Slicer)
	if !ok {
		return 1
	}
	if opt.recurse && !s.evaluating {
		s.evaluating = true
		for _, in := range s.Inputs() {
			g.pull(in, opt)
		}
		s.evaluating = false
	}
	return max(1, slicer.ComputeSlices(s))
}

// sliceableIn lists the sliceable nodes driven by the slicer of container.
func (g *Graph) sliceableIn(container *Node) []*Node {
	s := g.node(container.slicer)
	if s == nil {
		return nil
	}
	var out []*Node
	var walk func(n *Node)
	walk = func(n *Node) {
		for _, c := range n.Children() {
			if c.sliceable && g.slicerFor(c) == s {
				out = append(out, c)
			}
			walk(c)
		}
	}
	walk(container)
	return out
}
