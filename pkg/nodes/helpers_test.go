package nodes_test

import (
	"testing"

	"github.com/aretw0/loom/pkg/graph"
	"github.com/aretw0/loom/pkg/nodes"
	"github.com/aretw0/loom/pkg/value"
	"github.com/stretchr/testify/require"
)

func add(t *testing.T, g *graph.Graph, parent *graph.Node, name string, behavior any) *graph.Node {
	t.Helper()
	n, err := g.AddNode(name, parent, behavior)
	require.NoError(t, err)
	return n
}

// constant adds a constant whose kind follows the literal.
func constant(t *testing.T, g *graph.Graph, name, literal string) *nodes.Constant {
	t.Helper()
	c := nodes.NewConstant(value.Any, literal)
	add(t, g, nil, name, c)
	return c
}

func build(t *testing.T, reg *nodes.Registry, g *graph.Graph, parent *graph.Node, name, typ string, params map[string]any) *graph.Node {
	t.Helper()
	n, err := reg.Add(g, parent, name, typ, params)
	require.NoError(t, err)
	return n
}

func connect(t *testing.T, g *graph.Graph, src, dst *graph.Attribute) {
	t.Helper()
	require.NoError(t, g.Connect(src, dst))
}
