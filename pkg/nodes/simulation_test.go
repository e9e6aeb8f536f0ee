package nodes_test

import (
	"context"
	"testing"

	"github.com/aretw0/loom/pkg/graph"
	"github.com/aretw0/loom/pkg/nodes"
	"github.com/aretw0/loom/pkg/simulation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// counterGraph wires previous + 1 back into the committed state.
func counterGraph(t *testing.T, g *graph.Graph) (*nodes.SimulationStep, *nodes.SimulationCommit) {
	t.Helper()
	reg := nodes.Builtin()
	step := build(t, reg, g, nil, "step", nodes.TypeSimulationStep, map[string]any{"key": "count"})
	inc := build(t, reg, g, nil, "inc", "add", nil)
	commit := build(t, reg, g, nil, "commit", nodes.TypeSimulationCommit, map[string]any{"key": "count"})

	connect(t, g, constant(t, g, "zero", "[0] 3").Out(), step.Attribute("initial"))
	connect(t, g, step.Attribute("previous"), inc.Attribute("in0"))
	connect(t, g, constant(t, g, "one", "[1] 3").Out(), inc.Attribute("in1"))
	connect(t, g, inc.Attribute("out"), commit.Attribute("value"))
	return step.Behavior().(*nodes.SimulationStep), commit.Behavior().(*nodes.SimulationCommit)
}

func TestSimulation_CarriesStateAcrossSteps(t *testing.T) {
	sess := simulation.NewSession("run")
	g := graph.New(graph.WithSimulation(sess))
	step, commit := counterGraph(t, g)

	require.NoError(t, g.Evaluate(context.Background()))
	assert.Equal(t, 1.0, commit.Out().Value().Float(0, 0))

	sess.Advance()
	nodes.DirtyStateful(g)
	assert.True(t, step.Previous().IsDirty())
	assert.True(t, commit.Out().IsDirty())
	assert.Equal(t, 2.0, commit.Out().Value().Float(0, 0))

	stored, ok := sess.Load("count")
	require.True(t, ok)
	assert.Equal(t, 2.0, stored.Float(0, 0))
}

func TestSimulation_WithoutSessionUsesInitial(t *testing.T) {
	g := graph.New()
	step, commit := counterGraph(t, g)

	assert.Equal(t, 1.0, commit.Out().Value().Float(0, 0))
	nodes.DirtyStateful(g)
	assert.Equal(t, 0.0, step.Previous().Value().Float(0, 0))
	assert.Equal(t, 1.0, commit.Out().Value().Float(0, 0))
}
