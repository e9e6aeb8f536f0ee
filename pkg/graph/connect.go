package graph

import (
	"fmt"
	"slices"

	"github.com/aretw0/loom/pkg/domain"
	"github.com/aretw0/loom/pkg/value"
)

// Connect makes src the single upstream of dst, replacing any previous
// source. The two attributes must share a specialization; the edge also acts
// as an identity link during resolution. A rejected edit leaves the graph as
// it was.
func (g *Graph) Connect(src, dst *Attribute) error {
	if !src.alive() || !dst.alive() {
		return fmt.Errorf("connect: %w", domain.ErrStaleHandle)
	}
	if src.g != g || dst.g != g {
		return fmt.Errorf("connect %s -> %s: %w", src.name, dst.name, domain.ErrForeignAttribute)
	}
	if dst.dir == Output || dst.IsPassThrough() || src == dst {
		return fmt.Errorf("connect %s -> %s: %w", src.FullName(), dst.FullName(), domain.ErrInvalidConnection)
	}
	if dst.source == src.id {
		return nil
	}
	if g.reaches(dst, src) {
		return fmt.Errorf("connect %s -> %s: %w", src.FullName(), dst.FullName(), domain.ErrCycle)
	}

	prev := dst.Source()
	g.unlink(dst)
	g.link(src, dst)

	sets, ok := g.solve(g.component(src, dst))
	if !ok {
		g.unlink(dst)
		if prev != nil {
			g.link(prev, dst)
		}
		return fmt.Errorf("connect %s (%s) -> %s (%s): %w",
			src.FullName(), src.allowed, dst.FullName(), dst.allowed, domain.ErrIncompatible)
	}

	g.beginDirty()
	defer g.endDirty()
	dst.local = value.Any
	g.commit(sets)
	if prev != nil {
		g.reresolve(prev)
	}
	g.dirty(dst)
	g.logger.Debug("connected", "src", src.FullName(), "dst", dst.FullName())
	return nil
}

// Disconnect drops the upstream edge of dst. Both sides are resolved again
// from their declared sets, so candidate sets may widen.
func (g *Graph) Disconnect(dst *Attribute) {
	if !dst.alive() {
		return
	}
	src := dst.Source()
	if src == nil {
		return
	}
	g.beginDirty()
	defer g.endDirty()
	g.unlink(dst)
	g.reresolve(src, dst)
	g.dirty(dst)
	g.logger.Debug("disconnected", "src", src.FullName(), "dst", dst.FullName())
}

func (g *Graph) link(src, dst *Attribute) {
	dst.source = src.id
	src.listeners = append(src.listeners, dst.id)
}

func (g *Graph) unlink(dst *Attribute) {
	if src := dst.Source(); src != nil {
		src.listeners = slices.DeleteFunc(src.listeners, func(id AttrID) bool { return id == dst.id })
	}
	dst.source = AttrID{}
}

// detachAttribute removes a from the arena after dropping every edge that
// references it. It returns the surviving neighbors whose specialization may
// need to widen.
func (g *Graph) detachAttribute(a *Attribute) []*Attribute {
	var touched []*Attribute
	n := g.node(a.owner)

	if src := a.Source(); src != nil {
		g.unlink(a)
		touched = append(touched, src)
	}
	for _, l := range a.Listeners() {
		g.unlink(l)
		touched = append(touched, l)
		g.dirty(l)
	}

	if n != nil {
		for _, id := range n.affects[a.id] {
			n.affectedBy[id] = slices.DeleteFunc(n.affectedBy[id], func(x AttrID) bool { return x == a.id })
			if out := g.attr(id); out != nil {
				g.dirty(out)
			}
		}
		for _, id := range n.affectedBy[a.id] {
			n.affects[id] = slices.DeleteFunc(n.affects[id], func(x AttrID) bool { return x == a.id })
		}
		delete(n.affects, a.id)
		delete(n.affectedBy, a.id)

		kept := n.links[:0]
		for _, l := range n.links {
			if l.a == a.id || l.b == a.id {
				other := l.a
				if other == a.id {
					other = l.b
				}
				if o := g.attr(other); o != nil {
					touched = append(touched, o)
				}
				continue
			}
			kept = append(kept, l)
		}
		n.links = kept

		for _, assign := range n.presets {
			delete(assign, a.id)
		}
		n.attrs = slices.DeleteFunc(n.attrs, func(id AttrID) bool { return id == a.id })
		delete(n.byName, a.name)
	}

	g.attrs.remove(a.id.index, a.id.gen)
	return slices.DeleteFunc(touched, func(t *Attribute) bool { return !t.alive() })
}

// reresolve recomputes the components of attrs from their declared sets.
// Components that no longer admit a solution keep their current sets.
func (g *Graph) reresolve(attrs ...*Attribute) {
	var live []*Attribute
	for _, a := range attrs {
		if a.alive() {
			live = append(live, a)
		}
	}
	if len(live) == 0 {
		return
	}
	if sets, ok := g.solve(g.component(live...)); ok {
		g.commit(sets)
	}
}
