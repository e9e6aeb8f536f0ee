package graph_test

import (
	"testing"

	"github.com/aretw0/loom/pkg/graph"
	"github.com/aretw0/loom/pkg/value"
	"github.com/stretchr/testify/require"
)

// scale multiplies a Float input.
type scale struct {
	factor  float64
	in, out *graph.Attribute
	calls   int
}

func (s *scale) Init(n *graph.Node) error {
	var err error
	if s.in, err = n.AddInput("in", value.Float); err != nil {
		return err
	}
	if s.out, err = n.AddOutput("out", value.Float); err != nil {
		return err
	}
	return n.SetAttributeAffect(s.in, s.out)
}

func (s *scale) Update(ctx *graph.EvalContext) {
	s.calls++
	i := ctx.Slice()
	s.out.OutValue().SetFloat(i, 0, s.in.Value().Float(i, 0)*s.factor)
}

// sum adds two Float inputs.
type sum struct {
	in0, in1, out *graph.Attribute
	calls         int
}

func (s *sum) Init(n *graph.Node) error {
	var err error
	if s.in0, err = n.AddInput("in0", value.Float); err != nil {
		return err
	}
	if s.in1, err = n.AddInput("in1", value.Float); err != nil {
		return err
	}
	if s.out, err = n.AddOutput("out", value.Float); err != nil {
		return err
	}
	if err := n.SetAttributeAffect(s.in0, s.out); err != nil {
		return err
	}
	return n.SetAttributeAffect(s.in1, s.out)
}

func (s *sum) Update(ctx *graph.EvalContext) {
	s.calls++
	s.out.OutValue().SetFloat(0, 0, s.in0.Value().Float(0, 0)+s.in1.Value().Float(0, 0))
}

// pass copies a generic input to a generic output linked with rule.
type pass struct {
	kinds   []value.Kind
	rule    graph.LinkRule
	in, out *graph.Attribute
	calls   int
	retyped []string
}

func (p *pass) Init(n *graph.Node) error {
	var err error
	if p.in, err = n.AddInput("in", p.kinds...); err != nil {
		return err
	}
	if p.out, err = n.AddOutput("out", p.kinds...); err != nil {
		return err
	}
	if err := n.SetAttributeAffect(p.in, p.out); err != nil {
		return err
	}
	return n.SetSpecializationLink(p.in, p.out, p.rule)
}

func (p *pass) Update(ctx *graph.EvalContext) {
	p.calls++
	p.out.OutValue().CopyFrom(p.in.Value())
}

func (p *pass) AttributeSpecializationChanged(a *graph.Attribute) {
	p.retyped = append(p.retyped, a.Name()+"="+a.Kind().String())
}

// counter is a loop slicer reading its iteration count from "count".
type counter struct {
	count *graph.Attribute
}

func (c *counter) Init(n *graph.Node) error {
	var err error
	c.count, err = n.AddInput("count", value.Int)
	n.SetUpdateEnabled(false)
	return err
}

func (c *counter) ComputeSlices(n *graph.Node) int { return c.count.Value().Int(0, 0) }

// index writes the slice number of every iteration.
type index struct {
	out   *graph.Attribute
	calls int
}

func (x *index) Init(n *graph.Node) error {
	var err error
	x.out, err = n.AddOutput("index", value.Int)
	n.SetSliceable(true)
	return err
}

func (x *index) UpdateSlice(ctx *graph.EvalContext) {
	x.calls++
	x.out.OutValue().SetInt(ctx.Slice(), 0, ctx.Slice())
}

// collect gathers every slice of a sliced Int into one array.
type collect struct {
	in, out *graph.Attribute
}

func (c *collect) Init(n *graph.Node) error {
	var err error
	if c.in, err = n.AddInput("in", value.Int); err != nil {
		return err
	}
	if c.out, err = n.AddOutput("out", value.IntArray); err != nil {
		return err
	}
	return n.SetAttributeAffect(c.in, c.out)
}

func (c *collect) Update(ctx *graph.EvalContext) {
	v := c.in.Value()
	xs := make([]int, v.SlicesCount())
	for i := range xs {
		xs[i] = v.Int(i, 0)
	}
	c.out.OutValue().SetInts(0, xs)
}

func addNode[B any](t *testing.T, g *graph.Graph, name string, parent *graph.Node, b *B) *graph.Node {
	t.Helper()
	n, err := g.AddNode(name, parent, b)
	require.NoError(t, err)
	return n
}

func setFloat(t *testing.T, a *graph.Attribute, f float64) {
	t.Helper()
	v := value.New(value.Float)
	v.SetFloat(0, 0, f)
	require.NoError(t, a.SetValueFromString(v.AsString()))
}
