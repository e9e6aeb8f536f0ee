package nodes_test

import (
	"testing"

	"github.com/aretw0/loom/pkg/domain"
	"github.com/aretw0/loom/pkg/graph"
	"github.com/aretw0/loom/pkg/nodes"
	"github.com/aretw0/loom/pkg/value"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistry_Builtin(t *testing.T) {
	reg := nodes.Builtin()
	assert.Equal(t, []string{
		"add", "array_builder", "condition", "constant", "loop", "loop_index",
		"loop_output", "loop_range", "mul", "sim_commit", "sim_step", "sub",
	}, reg.Types())

	g := graph.New()
	c := build(t, reg, g, nil, "c", nodes.TypeConstant, map[string]any{"kind": "float", "value": "[2.5] 3"})
	assert.Equal(t, nodes.TypeConstant, c.Type())
	assert.Equal(t, value.Float, c.Attribute("out").Kind())
	assert.Equal(t, 2.5, c.Attribute("out").Value().Float(0, 0))

	pack := build(t, reg, g, nil, "pack", nodes.TypeArrayBuilder, map[string]any{"size": 3})
	assert.Len(t, pack.Behavior().(*nodes.ArrayBuilder).Items(), 3)
}

func TestRegistry_Errors(t *testing.T) {
	reg := nodes.Builtin()
	g := graph.New()

	_, err := reg.Add(g, nil, "x", "teleport", nil)
	require.ErrorIs(t, err, domain.ErrUnknownNodeType)
	assert.Empty(t, g.Nodes())

	_, err = reg.New(nodes.TypeLoop, map[string]any{"count": 2, "speed": 3})
	assert.ErrorContains(t, err, "invalid parameters")

	_, err = reg.New(nodes.TypeSimulationStep, nil)
	assert.ErrorContains(t, err, "simulation key is required")

	_, err = reg.New(nodes.TypeConstant, map[string]any{"kind": "tensor"})
	assert.Error(t, err)
}

func TestRegistry_WeaklyTypedParams(t *testing.T) {
	reg := nodes.Builtin()
	g := graph.New()
	loop := build(t, reg, g, nil, "loop", nodes.TypeLoop, map[string]any{"count": "3"})
	assert.Equal(t, 3, loop.Behavior().(*nodes.Loop).CountInput().Value().Int(0, 0))

	reg.Register("twice", func(map[string]any) (any, error) { return nodes.NewArithmetic(nodes.OpMul), nil })
	n := build(t, reg, g, nil, "twice", "twice", nil)
	assert.Equal(t, "mul", n.Type())
}
