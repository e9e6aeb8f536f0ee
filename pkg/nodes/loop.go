package nodes

import (
	"fmt"

	"github.com/aretw0/loom/pkg/graph"
	"github.com/aretw0/loom/pkg/value"
)

// RangeName is the child a Loop creates to drive its iterations.
const RangeName = "range"

// Loop is a container whose sliceable children run once per iteration. It
// creates a LoopRange child named "range" and makes it the slicer.
type Loop struct {
	Count int

	rng *LoopRange
}

// LoopParams are the registry parameters of a loop.
type LoopParams struct {
	Count int `mapstructure:"count"`
}

func newLoopFromParams(params map[string]any) (any, error) {
	p := LoopParams{Count: 1}
	if err := decodeParams(params, &p); err != nil {
		return nil, err
	}
	return &Loop{Count: p.Count}, nil
}

func (l *Loop) TypeName() string { return TypeLoop }

func (l *Loop) Init(n *graph.Node) error {
	n.SetUpdateEnabled(false)
	l.rng = &LoopRange{}
	child, err := n.Graph().AddNode(RangeName, n, l.rng)
	if err != nil {
		return err
	}
	if err := n.SetSlicer(child); err != nil {
		return err
	}
	return l.rng.count.SetValueFromString(intLiteral(l.Count))
}

// CountInput is the iteration count attribute of the range child.
func (l *Loop) CountInput() *graph.Attribute { return l.rng.count }

// LoopRange reads its iteration count from "count". It is never evaluated
// itself.
type LoopRange struct {
	count *graph.Attribute
}

func (r *LoopRange) TypeName() string { return TypeLoopRange }

func (r *LoopRange) Init(n *graph.Node) error {
	var err error
	r.count, err = n.AddInput("count", value.Int)
	n.SetUpdateEnabled(false)
	return err
}

func (r *LoopRange) ComputeSlices(*graph.Node) int {
	return r.count.Value().Int(0, 0)
}

// LoopIndex publishes the iteration number on "index".
type LoopIndex struct {
	index *graph.Attribute
}

func (x *LoopIndex) TypeName() string { return TypeLoopIndex }

func (x *LoopIndex) Init(n *graph.Node) error {
	var err error
	x.index, err = n.AddOutput("index", value.Int)
	n.SetSliceable(true)
	return err
}

func (x *LoopIndex) Index() *graph.Attribute { return x.index }

func (x *LoopIndex) UpdateSlice(ctx *graph.EvalContext) {
	x.index.OutValue().SetInt(ctx.Slice(), 0, ctx.Slice())
}

// LoopOutput gathers every slice of a scalar "in" into the array "out".
type LoopOutput struct {
	in, out *graph.Attribute
}

func (o *LoopOutput) TypeName() string { return TypeLoopOutput }

func (o *LoopOutput) Init(n *graph.Node) error {
	var err error
	if o.in, err = n.AddInput("in", arrayableKinds.Kinds()...); err != nil {
		return err
	}
	if o.out, err = n.AddOutput("out", arrayableKinds.Map(value.Kind.Array).Kinds()...); err != nil {
		return err
	}
	if err := n.SetAttributeAffect(o.in, o.out); err != nil {
		return err
	}
	return n.SetSpecializationLink(o.in, o.out, graph.ScalarArray)
}

func (o *LoopOutput) In() *graph.Attribute  { return o.in }
func (o *LoopOutput) Out() *graph.Attribute { return o.out }

func (o *LoopOutput) Update(ctx *graph.EvalContext) {
	in, out := o.in.Value(), o.out.OutValue()
	n := in.SlicesCount()
	out.Resize(0, n)
	for i := range n {
		out.CopyElement(0, i, in, i, 0)
	}
}

// arrayableKinds are the scalar kinds with an array form.
var arrayableKinds = value.NewKindSet(
	value.Int, value.Float, value.Vec3, value.Col4, value.Quat,
	value.Matrix44, value.Bool, value.String, value.Path,
)

func intLiteral(n int) string {
	return fmt.Sprintf("[%d] %d", n, int(value.Int))
}
