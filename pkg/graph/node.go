package graph

import (
	"fmt"
	"reflect"
	"slices"
	"strings"

	"github.com/aretw0/loom/pkg/domain"
	"github.com/aretw0/loom/pkg/value"
)

// Node is a named container of attributes and child nodes, and the unit of
// evaluation. Nodes are created with Graph.AddNode.
type Node struct {
	g        *Graph
	id       NodeID
	name     string
	parent   NodeID
	children []NodeID
	behavior any

	attrs      []AttrID
	byName     map[string]AttrID
	affects    map[AttrID][]AttrID
	affectedBy map[AttrID][]AttrID
	links      []specLink

	presets     map[string]map[AttrID]value.Kind
	presetOrder []string
	preset      string

	sliceable     bool
	updateEnabled bool
	allowDynamic  bool
	slicer        NodeID

	evaluating bool
}

// Initializer is implemented by behaviors that declare their attributes when
// the node is created.
type Initializer interface {
	Init(n *Node) error
}

// Typed is implemented by behaviors that report a registry type name.
type Typed interface {
	TypeName() string
}

func (n *Node) alive() bool { return n != nil && n.g.node(n.id) == n }

// ID returns the node handle.
func (n *Node) ID() NodeID { return n.id }

// Graph returns the owning graph.
func (n *Node) Graph() *Graph { return n.g }

// Name is the node name, unique among its siblings.
func (n *Node) Name() string { return n.name }

// FullName is the dotted path from the root, e.g. "loop.index".
func (n *Node) FullName() string {
	var parts []string
	for cur := n; cur != nil && cur != n.g.root; cur = cur.Parent() {
		parts = append(parts, cur.name)
	}
	slices.Reverse(parts)
	return strings.Join(parts, ".")
}

// Type is the registry type name of the behavior, or its Go type name.
func (n *Node) Type() string {
	if t, ok := n.behavior.(Typed); ok {
		return t.TypeName()
	}
	if n.behavior == nil {
		return "container"
	}
	t := reflect.TypeOf(n.behavior)
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	return t.Name()
}

// Behavior returns the callbacks supplied at creation.
func (n *Node) Behavior() any { return n.behavior }

func (n *Node) Parent() *Node { return n.g.node(n.parent) }

func (n *Node) Children() []*Node {
	out := make([]*Node, 0, len(n.children))
	for _, id := range n.children {
		if c := n.g.node(id); c != nil {
			out = append(out, c)
		}
	}
	return out
}

// Child returns the direct child called name, or nil.
func (n *Node) Child(name string) *Node {
	for _, id := range n.children {
		if c := n.g.node(id); c != nil && c.name == name {
			return c
		}
	}
	return nil
}

// Attribute returns the attribute called name, or nil.
func (n *Node) Attribute(name string) *Attribute {
	id, ok := n.byName[name]
	if !ok {
		return nil
	}
	return n.g.attr(id)
}

// Attributes lists all attributes in declaration order.
func (n *Node) Attributes() []*Attribute {
	out := make([]*Attribute, 0, len(n.attrs))
	for _, id := range n.attrs {
		if a := n.g.attr(id); a != nil {
			out = append(out, a)
		}
	}
	return out
}

func (n *Node) Inputs() []*Attribute {
	return slices.DeleteFunc(n.Attributes(), func(a *Attribute) bool { return a.dir != Input })
}

func (n *Node) Outputs() []*Attribute {
	return slices.DeleteFunc(n.Attributes(), func(a *Attribute) bool { return a.dir != Output })
}

// AddInput declares an input attribute accepting kinds (Any when omitted).
func (n *Node) AddInput(name string, kinds ...value.Kind) (*Attribute, error) {
	return n.addAttribute(name, Input, false, kinds)
}

// AddOutput declares an output attribute accepting kinds (Any when omitted).
func (n *Node) AddOutput(name string, kinds ...value.Kind) (*Attribute, error) {
	return n.addAttribute(name, Output, false, kinds)
}

func (n *Node) addAttribute(name string, dir Direction, dynamic bool, kinds []value.Kind) (*Attribute, error) {
	if !n.alive() {
		return nil, fmt.Errorf("add attribute %q: %w", name, domain.ErrStaleHandle)
	}
	if name == "" || strings.ContainsRune(name, '.') {
		return nil, fmt.Errorf("add attribute %q: invalid name", name)
	}
	if _, ok := n.byName[name]; ok {
		return nil, fmt.Errorf("add attribute %q on %q: %w", name, n.FullName(), domain.ErrDuplicateName)
	}
	set := value.AllKinds
	if len(kinds) > 0 {
		set = value.NewKindSet(kinds...)
	}
	if set.IsEmpty() {
		return nil, fmt.Errorf("add attribute %q on %q: %w", name, n.FullName(), domain.ErrIncompatible)
	}

	a := &Attribute{
		g:        n.g,
		owner:    n.id,
		name:     name,
		dir:      dir,
		dynamic:  dynamic,
		declared: set,
		allowed:  set,
		val:      value.New(value.Any),
		dirty:    true,
	}
	if k, ok := set.Single(); ok {
		a.val.SetKind(k)
	}
	idx, gen := n.g.attrs.add(a)
	a.id = AttrID{index: idx, gen: gen}
	n.attrs = append(n.attrs, a.id)
	n.byName[name] = a.id
	return a, nil
}

func (n *Node) owns(a *Attribute) bool {
	return a != nil && a.alive() && a.owner == n.id
}

// SetAttributeAffect declares that in drives out. The edge is rejected when
// out already reaches in through affects and connections.
func (n *Node) SetAttributeAffect(in, out *Attribute) error {
	if !n.owns(in) || !n.owns(out) {
		return fmt.Errorf("affect on %q: %w", n.FullName(), domain.ErrForeignAttribute)
	}
	if in.dir != Input {
		return fmt.Errorf("affect %s -> %s: source is not an input: %w", in.FullName(), out.FullName(), domain.ErrInvalidConnection)
	}
	if out.dir == Input && out.IsConnected() {
		return fmt.Errorf("affect %s -> %s: target is connected: %w", in.FullName(), out.FullName(), domain.ErrInvalidConnection)
	}
	if in == out || n.g.reaches(out, in) {
		return fmt.Errorf("affect %s -> %s: %w", in.FullName(), out.FullName(), domain.ErrCycle)
	}
	if slices.Contains(n.affects[in.id], out.id) {
		return nil
	}
	n.affects[in.id] = append(n.affects[in.id], out.id)
	n.affectedBy[out.id] = append(n.affectedBy[out.id], in.id)
	if out.local != value.Any {
		out.local = value.Any
		n.g.reresolve(out)
	}
	out.SetDirty()
	return nil
}

// Affects lists the attributes driven by in.
func (n *Node) Affects(in *Attribute) []*Attribute {
	return n.g.resolveAttrs(n.affects[in.id])
}

// AffectedBy lists the inputs driving a.
func (n *Node) AffectedBy(a *Attribute) []*Attribute {
	return n.g.resolveAttrs(n.affectedBy[a.id])
}

func (g *Graph) resolveAttrs(ids []AttrID) []*Attribute {
	out := make([]*Attribute, 0, len(ids))
	for _, id := range ids {
		if a := g.attr(id); a != nil {
			out = append(out, a)
		}
	}
	return out
}

// SetSliceable makes the node evaluate once per slice of its enclosing loop.
func (n *Node) SetSliceable(on bool) {
	if n.sliceable == on {
		return
	}
	n.sliceable = on
	n.dirtyComputed()
}

func (n *Node) Sliceable() bool { return n.sliceable }

// SetUpdateEnabled controls whether reads may evaluate the node. Disabled
// nodes still answer ComputeSlices when they act as a slicer.
func (n *Node) SetUpdateEnabled(on bool) { n.updateEnabled = on }

func (n *Node) UpdateEnabled() bool { return n.updateEnabled }

// SetAllowDynamicAttributes gates AddDynamicInput, AddDynamicOutput and
// RemoveDynamicAttribute.
func (n *Node) SetAllowDynamicAttributes(on bool) { n.allowDynamic = on }

func (n *Node) AllowDynamicAttributes() bool { return n.allowDynamic }

// IsSlicer reports whether n is the slicer of its container.
func (n *Node) IsSlicer() bool {
	p := n.Parent()
	return p != nil && p.slicer == n.id
}

// dirtyComputed dirties every attribute the node computes.
func (n *Node) dirtyComputed() {
	n.g.beginDirty()
	defer n.g.endDirty()
	for _, a := range n.Attributes() {
		if a.computed() {
			a.SetDirty()
		}
	}
}

func (n *Node) String() string { return n.FullName() }
