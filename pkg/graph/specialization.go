package graph

import (
	"cmp"
	"fmt"
	"slices"
	"time"

	"github.com/aretw0/loom/pkg/domain"
	"github.com/aretw0/loom/pkg/value"
)

// LinkRule narrows the candidate sets of two linked attributes. Results are
// intersected with the inputs, so a rule can never widen a set.
type LinkRule func(a, b value.KindSet) (value.KindSet, value.KindSet)

// KindSets exposes the in-progress candidate sets during resolution.
type KindSets interface {
	Of(a *Attribute) value.KindSet
}

type specLink struct {
	a, b AttrID
	rule LinkRule
}

// SameKind keeps both sides on the same kinds.
func SameKind(a, b value.KindSet) (value.KindSet, value.KindSet) {
	x := a.Intersect(b)
	return x, x
}

// ScalarArray pairs a scalar attribute a with its array form b.
func ScalarArray(a, b value.KindSet) (value.KindSet, value.KindSet) {
	var scalars, arrays value.KindSet
	for _, k := range a.Kinds() {
		if !k.IsArray() && k.Array() != value.Any {
			arrays = arrays.Add(k.Array())
		}
	}
	for _, k := range b.Kinds() {
		if k.IsArray() && k.Scalar() != k {
			scalars = scalars.Add(k.Scalar())
		}
	}
	return a.Intersect(scalars), b.Intersect(arrays)
}

// ArrayScalar pairs an array attribute a with its scalar form b.
func ArrayScalar(a, b value.KindSet) (value.KindSet, value.KindSet) {
	nb, na := ScalarArray(b, a)
	return na, nb
}

// SetSpecializationLink links two attributes of n. A nil rule defers to the
// behavior's LinkNarrower, or SameKind when there is none.
func (n *Node) SetSpecializationLink(a, b *Attribute, rule LinkRule) error {
	if !n.owns(a) || !n.owns(b) || a == b {
		return fmt.Errorf("link on %q: %w", n.FullName(), domain.ErrForeignAttribute)
	}
	prev := n.links
	n.links = append(append([]specLink(nil), n.links...), specLink{a: a.id, b: b.id, rule: rule})
	sets, ok := n.g.solve(n.g.component(a, b))
	if !ok {
		n.links = prev
		return fmt.Errorf("link %s <-> %s: %w", a.FullName(), b.FullName(), domain.ErrIncompatible)
	}
	n.g.commit(sets)
	return nil
}

// SpecializationLinks lists the linked attribute pairs of n.
func (n *Node) SpecializationLinks() [][2]*Attribute {
	out := make([][2]*Attribute, 0, len(n.links))
	for _, l := range n.links {
		a, b := n.g.attr(l.a), n.g.attr(l.b)
		if a != nil && b != nil {
			out = append(out, [2]*Attribute{a, b})
		}
	}
	return out
}

// edge is a link or a connection seen by the resolver. Table edges come from
// a LinkNarrower and run only once every other edge is settled.
type edge struct {
	a, b  *Attribute
	table bool
	apply func(sets resolution) (value.KindSet, value.KindSet)
}

// resolution holds candidate sets while the fixed point is computed.
type resolution map[AttrID]value.KindSet

type resolutionView struct{ sets resolution }

func (v resolutionView) Of(a *Attribute) value.KindSet {
	if s, ok := v.sets[a.id]; ok {
		return s
	}
	return a.allowed
}

// component collects every attribute reachable from seeds through links and
// connections.
func (g *Graph) component(seeds ...*Attribute) []*Attribute {
	seen := make(map[AttrID]bool)
	var out []*Attribute
	queue := append([]*Attribute(nil), seeds...)
	for len(queue) > 0 {
		a := queue[0]
		queue = queue[1:]
		if a == nil || seen[a.id] || !a.alive() {
			continue
		}
		seen[a.id] = true
		out = append(out, a)
		if src := a.Source(); src != nil {
			queue = append(queue, src)
		}
		queue = append(queue, a.Listeners()...)
		if n := g.node(a.owner); n != nil {
			for _, l := range n.links {
				switch a.id {
				case l.a:
					queue = append(queue, g.attr(l.b))
				case l.b:
					queue = append(queue, g.attr(l.a))
				}
			}
		}
	}
	return out
}

func (g *Graph) edgesOf(a *Attribute) []edge {
	var out []edge
	identity := func(x, y *Attribute) edge {
		return edge{a: x, b: y, apply: func(s resolution) (value.KindSet, value.KindSet) {
			return SameKind(s[x.id], s[y.id])
		}}
	}
	if src := a.Source(); src != nil {
		out = append(out, identity(src, a))
	}
	for _, l := range a.Listeners() {
		out = append(out, identity(a, l))
	}
	n := g.node(a.owner)
	if n == nil {
		return out
	}
	for _, l := range n.links {
		if l.a != a.id && l.b != a.id {
			continue
		}
		x, y := g.attr(l.a), g.attr(l.b)
		if x == nil || y == nil {
			continue
		}
		rule := l.rule
		narrower, custom := n.behavior.(LinkNarrower)
		out = append(out, edge{a: x, b: y, table: rule == nil && custom, apply: func(s resolution) (value.KindSet, value.KindSet) {
			switch {
			case rule != nil:
				return rule(s[x.id], s[y.id])
			case custom:
				return narrower.NarrowLink(x, y, resolutionView{sets: s})
			}
			return SameKind(s[x.id], s[y.id])
		}})
	}
	return out
}

// seed is the starting candidate set of a: its declared set, narrowed by the
// active preset and by the kind of a local value.
func (g *Graph) seed(a *Attribute) value.KindSet {
	s := a.declared
	if n := g.node(a.owner); n != nil {
		if k, ok := n.presetKind(a); ok {
			s = s.Intersect(value.NewKindSet(k))
		}
	}
	if a.local != value.Any && !a.IsConnected() {
		s = s.Intersect(value.NewKindSet(a.local))
	}
	return s
}

// solve recomputes the candidate sets of a component from their seeds, then
// narrows breadth-first until nothing shrinks. Every step intersects with the
// previous set, so sets never grow and the loop ends after at most |kinds|
// shrinks per attribute. Connections and rule links settle before any table
// edge runs, so a narrower sees operands already pinned by their sources.
// Any edge that empties a side makes the whole component unsolvable; a
// narrower with no matching row returns its inputs unchanged instead.
func (g *Graph) solve(comp []*Attribute) (resolution, bool) {
	sets := make(resolution, len(comp))
	for _, a := range comp {
		s := g.seed(a)
		if s.IsEmpty() {
			return nil, false
		}
		sets[a.id] = s
	}

	var rules, tables []edge
	push := func(es []edge) {
		for _, e := range es {
			if e.table {
				tables = append(tables, e)
			} else {
				rules = append(rules, e)
			}
		}
	}
	for _, a := range comp {
		push(g.edgesOf(a))
	}
	for len(rules)+len(tables) > 0 {
		var e edge
		if len(rules) > 0 {
			e, rules = rules[0], rules[1:]
		} else {
			e, tables = tables[0], tables[1:]
		}
		pa, pb := sets[e.a.id], sets[e.b.id]
		na, nb := e.apply(sets)
		na, nb = na.Intersect(pa), nb.Intersect(pb)
		if na.IsEmpty() || nb.IsEmpty() {
			return nil, false
		}
		if na != pa {
			sets[e.a.id] = na
			push(g.edgesOf(e.a))
		}
		if nb != pb {
			sets[e.b.id] = nb
			push(g.edgesOf(e.b))
		}
	}
	return sets, true
}

// commit applies solved sets. Every value is retyped before any hook fires so
// observers see the whole component in its final state.
func (g *Graph) commit(sets resolution) {
	g.beginDirty()
	defer g.endDirty()

	ids := make([]AttrID, 0, len(sets))
	for id := range sets {
		ids = append(ids, id)
	}
	slices.SortFunc(ids, func(x, y AttrID) int { return cmp.Compare(x.index, y.index) })

	type change struct {
		a        *Attribute
		from, to value.Kind
	}
	var changed []change
	for _, id := range ids {
		a := g.attr(id)
		if a == nil {
			continue
		}
		a.allowed = sets[id]
		want := value.Any
		if k, ok := a.allowed.Single(); ok {
			want = k
		}
		if from := a.val.Kind(); from != want {
			a.val.SetKind(want)
			changed = append(changed, change{a: a, from: from, to: want})
		}
	}

	for _, c := range changed {
		g.dirty(c.a)
		g.logger.Debug("specialization changed", "attr", c.a.FullName(), "from", c.from, "to", c.to)
		if n := g.node(c.a.owner); n != nil {
			if obs, ok := n.behavior.(SpecializationObserver); ok {
				obs.AttributeSpecializationChanged(c.a)
			}
		}
		if g.hooks.OnSpecializationChanged != nil {
			g.hooks.OnSpecializationChanged(&domain.SpecializationEvent{
				EventBase: domain.EventBase{Timestamp: time.Now(), Type: domain.EventSpecializationChanged},
				Attribute: c.a.FullName(),
				From:      c.from.String(),
				To:        c.to.String(),
			})
		}
	}
}
