package scene_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/aretw0/loom/pkg/graph"
	"github.com/aretw0/loom/pkg/nodes"
	"github.com/aretw0/loom/pkg/scene"
	"github.com/aretw0/loom/pkg/simulation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_YAML(t *testing.T) {
	s, err := scene.Load(filepath.Join("testdata", "squares.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "squares", s.Name)
	require.Len(t, s.Nodes, 3)
	assert.Len(t, s.Nodes[0].Children, 2)

	g, err := s.Build(nodes.Builtin())
	require.NoError(t, err)

	outs, err := s.ResolveOutputs(g)
	require.NoError(t, err)
	require.Len(t, outs, 2)
	require.NoError(t, g.Evaluate(context.Background(), outs...))
	assert.Equal(t, []int{0, 1, 4, 9}, outs[0].Value().Ints(0))
	assert.Equal(t, []int{10, 11, 14, 19}, outs[1].Value().Ints(0))
}

func TestLoad_JSON(t *testing.T) {
	s, err := scene.Load(filepath.Join("testdata", "counter.json"))
	require.NoError(t, err)

	sess := simulation.NewSession("t")
	g, err := s.Build(nodes.Builtin(), graph.WithSimulation(sess))
	require.NoError(t, err)
	outs, err := s.ResolveOutputs(g)
	require.NoError(t, err)

	for want := 1.0; want <= 3; want++ {
		assert.Equal(t, want, outs[0].Value().Float(0, 0))
		sess.Advance()
		nodes.DirtyStateful(g)
	}
}

func TestLoad_Errors(t *testing.T) {
	_, err := scene.Load(filepath.Join("testdata", "missing.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)

	_, err = scene.Parse([]byte("name: x\nnodez: []\n"))
	assert.ErrorContains(t, err, "nodez")
}

func TestScene_MarshalRoundTrip(t *testing.T) {
	s, err := scene.Load(filepath.Join("testdata", "squares.yaml"))
	require.NoError(t, err)
	data, err := s.Marshal()
	require.NoError(t, err)

	again, err := scene.Parse(data)
	require.NoError(t, err)
	assert.Equal(t, s.Connections, again.Connections)
	assert.Equal(t, s.Outputs, again.Outputs)
	assert.Equal(t, s.Nodes[2].Values, again.Nodes[2].Values)
}

func TestValidate(t *testing.T) {
	reg := nodes.Builtin()

	s, err := scene.Load(filepath.Join("testdata", "squares.yaml"))
	require.NoError(t, err)
	assert.Empty(t, s.Validate(reg))

	bad := &scene.Scene{
		Name: "bad",
		Nodes: []scene.Node{
			{Name: "a", Type: "add"},
			{Name: "a", Type: "add"},
		},
	}
	issues := bad.Validate(reg)
	require.Len(t, issues, 1)
	assert.Equal(t, "a: duplicate node", issues[0].String())

	unresolved := &scene.Scene{
		Name:    "open",
		Nodes:   []scene.Node{{Name: "sum", Type: "add"}},
		Outputs: []string{"sum.out", "sum.nope"},
	}
	issues = unresolved.Validate(reg)
	require.Len(t, issues, 2)
	assert.Contains(t, issues[0].Message, "unresolved specialization")
	assert.Equal(t, "unknown output", issues[1].Message)

	broken := &scene.Scene{Name: "broken", Nodes: []scene.Node{{Name: "x", Type: "teleport"}}}
	issues = broken.Validate(reg)
	require.Len(t, issues, 1)
	assert.Contains(t, issues[0].Message, "unknown node type")
}
