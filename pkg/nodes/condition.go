package nodes

import (
	"github.com/aretw0/loom/pkg/graph"
	"github.com/aretw0/loom/pkg/value"
)

// Condition selects between "ifTrue" and "ifFalse". A Bool condition picks
// a whole operand; a BoolArray condition against array operands picks every
// element separately, over the whole length of the condition.
type Condition struct {
	cond, ifTrue, ifFalse, out *graph.Attribute
}

func (c *Condition) TypeName() string { return TypeCondition }

func (c *Condition) Init(n *graph.Node) error {
	var err error
	if c.cond, err = n.AddInput("condition", value.Bool, value.BoolArray); err != nil {
		return err
	}
	if c.ifTrue, err = n.AddInput("ifTrue"); err != nil {
		return err
	}
	if c.ifFalse, err = n.AddInput("ifFalse"); err != nil {
		return err
	}
	if c.out, err = n.AddOutput("out"); err != nil {
		return err
	}
	for _, in := range []*graph.Attribute{c.cond, c.ifTrue, c.ifFalse} {
		if err := n.SetAttributeAffect(in, c.out); err != nil {
			return err
		}
	}
	for _, in := range []*graph.Attribute{c.ifTrue, c.ifFalse} {
		if err := n.SetSpecializationLink(in, c.out, graph.SameKind); err != nil {
			return err
		}
	}
	n.SetSliceable(true)
	return nil
}

func (c *Condition) Condition() *graph.Attribute { return c.cond }
func (c *Condition) IfTrue() *graph.Attribute    { return c.ifTrue }
func (c *Condition) IfFalse() *graph.Attribute   { return c.ifFalse }
func (c *Condition) Out() *graph.Attribute       { return c.out }

func (c *Condition) UpdateSlice(ctx *graph.EvalContext) {
	i := ctx.Slice()
	cond, t, f, out := c.cond.Value(), c.ifTrue.Value(), c.ifFalse.Value(), c.out.OutValue()

	if cond.Kind() == value.Bool || !out.Kind().IsArray() {
		src := f
		if cond.Bool(i, 0) {
			src = t
		}
		out.CopySlice(i, src, i)
		return
	}

	n := cond.Size(i)
	out.Resize(i, n)
	for e := range n {
		src := f
		if cond.Bool(i, e) {
			src = t
		}
		out.CopyElement(i, e, src, i, e)
	}
}
