package graph

import (
	"time"

	"github.com/aretw0/loom/pkg/domain"
)

func (g *Graph) beginDirty() { g.dirtyDepth++ }

// endDirty closes one dirtying operation; the outermost one flushes the
// dirtying-done listeners when anything flipped.
func (g *Graph) endDirty() {
	g.dirtyDepth--
	if g.dirtyDepth > 0 || g.dirtyCount == 0 {
		return
	}
	count := g.dirtyCount
	g.dirtyCount = 0
	for _, h := range append([]*doneHandler(nil), g.doneHandlers...) {
		h.fn()
	}
	if g.hooks.OnDirtyingDone != nil {
		g.hooks.OnDirtyingDone(&domain.DirtyEvent{
			EventBase: domain.EventBase{Timestamp: time.Now(), Type: domain.EventDirtyingDone},
			Dirtied:   count,
		})
	}
}

// dirty flips a and walks downstream. Already-dirty attributes stop the walk
// unless they were left dirty on purpose by their callback.
func (g *Graph) dirty(a *Attribute) {
	if a.dirty && !a.volatile {
		return
	}
	if !a.dirty {
		g.dirtyCount++
	}
	a.dirty = true
	a.volatile = false

	n := g.node(a.owner)
	if n == nil {
		return
	}
	if obs, ok := n.behavior.(DirtyObserver); ok {
		obs.AttributeDirtied(a)
	}
	g.dirtyDownstream(a)
}

// dirtyDownstream dirties what a drives without touching a itself.
func (g *Graph) dirtyDownstream(a *Attribute) {
	n := g.node(a.owner)
	if n == nil {
		return
	}
	for _, id := range n.affects[a.id] {
		if out := g.attr(id); out != nil {
			g.dirty(out)
		}
	}
	for _, id := range a.listeners {
		if l := g.attr(id); l != nil {
			g.dirty(l)
		}
	}
	// A slicer input changes the iteration count of every sliceable node in
	// its loop.
	if a.dir == Input && n.IsSlicer() {
		for _, s := range g.sliceableIn(n.Parent()) {
			for _, out := range s.Attributes() {
				if out.computed() {
					g.dirty(out)
				}
			}
		}
	}
}

// reaches reports whether to is downstream of from through affects and
// connections.
func (g *Graph) reaches(from, to *Attribute) bool {
	seen := make(map[AttrID]bool)
	stack := []AttrID{from.id}
	for len(stack) > 0 {
		id := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if id == to.id {
			return true
		}
		if seen[id] {
			continue
		}
		seen[id] = true
		a := g.attr(id)
		if a == nil {
			continue
		}
		if n := g.node(a.owner); n != nil {
			stack = append(stack, n.affects[id]...)
		}
		stack = append(stack, a.listeners...)
	}
	return false
}
