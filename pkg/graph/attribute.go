package graph

import (
	"fmt"

	"github.com/aretw0/loom/pkg/domain"
	"github.com/aretw0/loom/pkg/value"
)

// Direction tells whether an attribute receives or produces data.
type Direction int

const (
	Input Direction = iota
	Output
)

func (d Direction) String() string {
	if d == Output {
		return "output"
	}
	return "input"
}

// Attribute is a named, typed slot owned by one node. Its value is never
// shared: connected inputs receive a copy of their source on every pull.
type Attribute struct {
	g       *Graph
	id      AttrID
	owner   NodeID
	name    string
	dir     Direction
	dynamic bool

	declared value.KindSet
	allowed  value.KindSet
	// local pins the kind of a value set from a literal while a is
	// unconnected. It narrows resolution without touching declared.
	local value.Kind
	val   *value.Value

	dirty bool
	// volatile marks an output left dirty on purpose by its callback; readers
	// accept its value and dirtying passes through it.
	volatile bool

	source    AttrID
	listeners []AttrID
}

func (a *Attribute) alive() bool { return a != nil && a.g.attr(a.id) == a }

func (a *Attribute) ID() AttrID { return a.id }

func (a *Attribute) Name() string { return a.name }

// Node resolves the owner; it returns nil once the attribute is removed.
func (a *Attribute) Node() *Node {
	if !a.alive() {
		return nil
	}
	return a.g.node(a.owner)
}

// FullName is "node.path.attr".
func (a *Attribute) FullName() string {
	n := a.g.node(a.owner)
	if n == nil || n == a.g.root {
		return a.name
	}
	return n.FullName() + "." + a.name
}

func (a *Attribute) Direction() Direction { return a.dir }
func (a *Attribute) IsInput() bool        { return a.dir == Input }
func (a *Attribute) IsOutput() bool       { return a.dir == Output }
func (a *Attribute) IsDynamic() bool      { return a.dynamic }

// IsPassThrough reports whether an input is computed by its node.
func (a *Attribute) IsPassThrough() bool {
	if a.dir != Input {
		return false
	}
	n := a.g.node(a.owner)
	return n != nil && len(n.affectedBy[a.id]) > 0
}

// computed reports whether the owner's callback writes a.
func (a *Attribute) computed() bool {
	return a.dir == Output || a.IsPassThrough()
}

func (a *Attribute) IsDirty() bool { return a.dirty }
func (a *Attribute) IsClean() bool { return !a.dirty }

// Source returns the upstream attribute, or nil.
func (a *Attribute) Source() *Attribute { return a.g.attr(a.source) }

func (a *Attribute) IsConnected() bool { return a.Source() != nil }

// Listeners lists the attributes connected downstream.
func (a *Attribute) Listeners() []*Attribute { return a.g.resolveAttrs(a.listeners) }

// Value returns the current value, evaluating upstream first when dirty.
// During its owner's callback it never recomputes.
func (a *Attribute) Value() *value.Value {
	if a.dirty && a.alive() {
		a.g.pull(a, evalOptions{recurse: true})
	}
	return a.val
}

// OutValue gives direct mutable access to the value. It never recomputes
// and is meant for the owner's callback and for hosts writing unconnected
// inputs (followed by ValueChanged).
func (a *Attribute) OutValue() *value.Value { return a.val }

// Kind is the resolved kind, Any while unresolved.
func (a *Attribute) Kind() value.Kind { return a.val.Kind() }

// AllowedSpecialization is the current candidate set.
func (a *Attribute) AllowedSpecialization() value.KindSet { return a.allowed }

// DeclaredSpecialization is the candidate set before narrowing.
func (a *Attribute) DeclaredSpecialization() value.KindSet { return a.declared }

// SetAllowedSpecialization replaces the declared candidate set and resolves
// the link component again. When that would leave this or a linked attribute
// with no candidate, the previous set is kept.
func (a *Attribute) SetAllowedSpecialization(kinds ...value.Kind) {
	if !a.alive() {
		return
	}
	set := value.NewKindSet(kinds...)
	if len(kinds) == 0 {
		set = value.AllKinds
	}
	prev := a.declared
	if prev == set {
		return
	}
	a.declared = set
	sets, ok := a.g.solve(a.g.component(a))
	if !ok {
		a.declared = prev
		a.g.logger.Debug("specialization rejected", "attr", a.FullName(), "kinds", set)
		return
	}
	a.g.commit(sets)
}

// SetDirty invalidates a and everything reachable downstream of it.
func (a *Attribute) SetDirty() {
	if !a.alive() {
		return
	}
	a.g.beginDirty()
	defer a.g.endDirty()
	a.g.dirty(a)
}

// SetClean marks a clean without evaluating.
func (a *Attribute) SetClean() {
	a.dirty = false
	a.volatile = false
}

// ValueChanged notifies downstream attributes that a host edited a through
// OutValue. a itself stays clean.
func (a *Attribute) ValueChanged() {
	if !a.alive() {
		return
	}
	a.g.beginDirty()
	defer a.g.endDirty()
	a.dirty = false
	a.g.dirtyDownstream(a)
}

// SetValueFromString parses a value literal into an unconnected input and
// notifies downstream attributes. The literal's kind pins a until another
// literal replaces it or a source is connected.
func (a *Attribute) SetValueFromString(s string) error {
	if !a.alive() {
		return fmt.Errorf("set %s: %w", a.name, domain.ErrStaleHandle)
	}
	if a.dir != Input || a.IsConnected() || a.IsPassThrough() {
		return fmt.Errorf("set %s: only unconnected inputs hold local values: %w", a.FullName(), domain.ErrInvalidConnection)
	}
	next := value.New(value.Any)
	if err := next.SetFromString(s); err != nil {
		return fmt.Errorf("set %s: %w", a.FullName(), err)
	}
	if !a.declared.Has(next.Kind()) {
		return fmt.Errorf("set %s: %s not in %s: %w", a.FullName(), next.Kind(), a.declared, domain.ErrIncompatible)
	}
	a.g.beginDirty()
	defer a.g.endDirty()
	if next.Kind() != a.local || next.Kind() != a.val.Kind() {
		prev := a.local
		a.local = next.Kind()
		sets, ok := a.g.solve(a.g.component(a))
		if !ok {
			a.local = prev
			return fmt.Errorf("set %s: %s: %w", a.FullName(), next.Kind(), domain.ErrIncompatible)
		}
		a.g.commit(sets)
	}
	enum := a.val.EnumEntries()
	a.val.CopyFrom(next)
	a.val.SetEnumEntries(enum)
	a.ValueChanged()
	return nil
}

func (a *Attribute) String() string { return a.FullName() }
