package nodes

import (
	"fmt"
	"slices"

	"github.com/aretw0/loom/pkg/graph"
	"github.com/aretw0/loom/pkg/value"
)

// ArrayBuilder packs its variadic "itemN" inputs into the array "array".
// Items are dynamic attributes; their names are never reused.
type ArrayBuilder struct {
	Size int

	node  *graph.Node
	out   *graph.Attribute
	items []*graph.Attribute
	next  int
}

// ArrayBuilderParams are the registry parameters of an array builder.
type ArrayBuilderParams struct {
	Size int `mapstructure:"size"`
}

func newArrayBuilderFromParams(params map[string]any) (any, error) {
	var p ArrayBuilderParams
	if err := decodeParams(params, &p); err != nil {
		return nil, err
	}
	return &ArrayBuilder{Size: p.Size}, nil
}

func (b *ArrayBuilder) TypeName() string { return TypeArrayBuilder }

func (b *ArrayBuilder) Init(n *graph.Node) error {
	b.node = n
	var err error
	if b.out, err = n.AddOutput("array", arrayableKinds.Map(value.Kind.Array).Kinds()...); err != nil {
		return err
	}
	n.SetAllowDynamicAttributes(true)
	for range b.Size {
		if _, err := b.AddItem(); err != nil {
			return err
		}
	}
	return nil
}

// Out is the packed array.
func (b *ArrayBuilder) Out() *graph.Attribute { return b.out }

// Items lists the item inputs in array order.
func (b *ArrayBuilder) Items() []*graph.Attribute { return slices.Clone(b.items) }

// AddItem appends an item input.
func (b *ArrayBuilder) AddItem() (*graph.Attribute, error) {
	name := fmt.Sprintf("item%d", b.next)
	item, err := b.node.AddDynamicInput(name, arrayableKinds.Kinds()...)
	if err != nil {
		return nil, err
	}
	b.next++
	if err := b.node.SetAttributeAffect(item, b.out); err != nil {
		_ = b.node.RemoveDynamicAttribute(item)
		return nil, err
	}
	if err := b.node.SetSpecializationLink(item, b.out, graph.ScalarArray); err != nil {
		_ = b.node.RemoveDynamicAttribute(item)
		return nil, err
	}
	b.items = append(b.items, item)
	b.out.SetDirty()
	return item, nil
}

// RemoveItem drops an item input and its connection.
func (b *ArrayBuilder) RemoveItem(item *graph.Attribute) error {
	if err := b.node.RemoveDynamicAttribute(item); err != nil {
		return err
	}
	b.items = slices.DeleteFunc(b.items, func(a *graph.Attribute) bool { return a == item })
	return nil
}

func (b *ArrayBuilder) Update(ctx *graph.EvalContext) {
	out := b.out.OutValue()
	out.Resize(0, len(b.items))
	for i, item := range b.items {
		out.CopyElement(0, i, item.Value(), 0, 0)
	}
}
