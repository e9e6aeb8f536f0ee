package nodes

import (
	"fmt"

	"github.com/aretw0/loom/pkg/graph"
	"github.com/aretw0/loom/pkg/value"
)

// Type names of the built-in behaviors.
const (
	TypeConstant         = "constant"
	TypeLoop             = "loop"
	TypeLoopRange        = "loop_range"
	TypeLoopIndex        = "loop_index"
	TypeLoopOutput       = "loop_output"
	TypeArrayBuilder     = "array_builder"
	TypeCondition        = "condition"
	TypeSimulationStep   = "sim_step"
	TypeSimulationCommit = "sim_commit"
)

// Constant republishes its local "value" input on "out". With Kind Any the
// first literal written to the input decides the kind.
type Constant struct {
	Kind    value.Kind
	Literal string

	in, out *graph.Attribute
}

// ConstantParams are the registry parameters of a constant.
type ConstantParams struct {
	Kind  string `mapstructure:"kind"`
	Value string `mapstructure:"value"`
}

func newConstantFromParams(params map[string]any) (any, error) {
	var p ConstantParams
	if err := decodeParams(params, &p); err != nil {
		return nil, err
	}
	c := &Constant{Literal: p.Value}
	if p.Kind != "" {
		k, err := value.ParseKind(p.Kind)
		if err != nil {
			return nil, err
		}
		c.Kind = k
	}
	return c, nil
}

// NewConstant creates a constant of a fixed kind.
func NewConstant(kind value.Kind, literal string) *Constant {
	return &Constant{Kind: kind, Literal: literal}
}

func (c *Constant) TypeName() string { return TypeConstant }

func (c *Constant) Init(n *graph.Node) error {
	var err error
	if c.in, err = n.AddInput("value", c.Kind); err != nil {
		return err
	}
	if c.out, err = n.AddOutput("out", c.Kind); err != nil {
		return err
	}
	if err := n.SetAttributeAffect(c.in, c.out); err != nil {
		return err
	}
	if err := n.SetSpecializationLink(c.in, c.out, graph.SameKind); err != nil {
		return err
	}
	if c.Literal == "" {
		return nil
	}
	return c.Set(c.Literal)
}

// Set writes a value literal to the constant.
func (c *Constant) Set(literal string) error {
	if err := c.in.SetValueFromString(literal); err != nil {
		return fmt.Errorf("constant: %w", err)
	}
	return nil
}

// In is the editable "value" input.
func (c *Constant) In() *graph.Attribute { return c.in }

// Out is the published value.
func (c *Constant) Out() *graph.Attribute { return c.out }

func (c *Constant) Update(ctx *graph.EvalContext) {
	c.out.OutValue().CopyFrom(c.in.Value())
}
