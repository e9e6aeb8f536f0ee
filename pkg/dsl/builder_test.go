package dsl_test

import (
	"context"
	"testing"

	"github.com/aretw0/loom/pkg/domain"
	"github.com/aretw0/loom/pkg/dsl"
	"github.com/aretw0/loom/pkg/graph"
	"github.com/aretw0/loom/pkg/nodes"
	"github.com/aretw0/loom/pkg/value"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuilder_SimpleFlow(t *testing.T) {
	b := dsl.New()

	b.Add("a", "constant").Param("value", "[1.5] 3")
	b.Add("sum", "add").
		From("in0", "a.out").
		Set("in1", "[2] 3")

	g, err := b.Build()
	require.NoError(t, err)

	out, err := g.FindAttribute("sum.out")
	require.NoError(t, err)
	assert.Equal(t, value.Float, out.Kind())
	assert.Equal(t, 3.5, out.Value().Float(0, 0))
}

func TestBuilder_Loop(t *testing.T) {
	g, err := dsl.New().
		Add("loop", nodes.TypeLoop).Param("count", 3).
		Add("loop.index", nodes.TypeLoopIndex).To("index", "collect.in").
		Add("collect", nodes.TypeLoopOutput).
		Build(graph.WithParallelism(2))
	require.NoError(t, err)

	out, err := g.FindAttribute("collect.out")
	require.NoError(t, err)
	require.NoError(t, g.Evaluate(context.Background(), out))
	assert.Equal(t, []int{0, 1, 2}, out.Value().Ints(0))
}

func TestBuilder_Preset(t *testing.T) {
	b := dsl.New()
	b.Add("sum", "add").Preset("float").Set("in0", "[1] 3").Set("in1", "[4] 3")

	g, err := b.Build()
	require.NoError(t, err)
	n, err := g.FindNode("sum")
	require.NoError(t, err)
	assert.Equal(t, "float", n.ActivePreset())
	assert.Equal(t, 5.0, n.Attribute("out").Value().Float(0, 0))
}

func TestBuilder_ReportsEveryError(t *testing.T) {
	b := dsl.New()
	b.Add("a", "teleport")
	b.Add("orphan.child", "constant")
	b.Add("sum", "add").From("in0", "nowhere.out")

	g, err := b.Build()
	assert.Nil(t, g)
	assert.ErrorIs(t, err, domain.ErrUnknownNodeType)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.ErrorContains(t, err, `node "orphan.child"`)
	assert.ErrorContains(t, err, "connect nowhere.out -> sum.in0")
}

func TestBuilder_AddReturnsExisting(t *testing.T) {
	b := dsl.New()
	first := b.Add("a", "constant")
	assert.Same(t, first, b.Add("a", "add"))
	assert.Equal(t, "a", first.Path())
}

func TestBuilder_CustomRegistry(t *testing.T) {
	reg := nodes.NewRegistry()
	reg.Register("half", func(map[string]any) (any, error) { return nodes.NewConstant(value.Float, "[0.5] 3"), nil })

	g, err := dsl.New(dsl.WithRegistry(reg)).Add("h", "half").Add("x", "add").Build()
	assert.Nil(t, g)
	assert.ErrorIs(t, err, domain.ErrUnknownNodeType, "only the given registry is consulted")
}
