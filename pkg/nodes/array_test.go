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

func TestArrayBuilder_Items(t *testing.T) {
	g := graph.New()
	b := &nodes.ArrayBuilder{Size: 2}
	n := add(t, g, nil, "pack", b)
	one, two := constant(t, g, "one", "[1] 3"), constant(t, g, "two", "[2] 3")

	items := b.Items()
	require.Len(t, items, 2)
	connect(t, g, one.Out(), items[0])
	connect(t, g, two.Out(), items[1])

	assert.Equal(t, value.FloatArray, b.Out().Kind())
	assert.Equal(t, []float64{1, 2}, b.Out().Value().Floats(0))

	extra, err := b.AddItem()
	require.NoError(t, err)
	assert.Equal(t, "item2", extra.Name())
	assert.Equal(t, value.Float, extra.Kind(), "new items follow the array kind")
	assert.Equal(t, []float64{1, 2, 0}, b.Out().Value().Floats(0))

	require.NoError(t, b.RemoveItem(items[0]))
	assert.Nil(t, n.Attribute("item0"))
	assert.Empty(t, one.Out().Listeners())
	assert.Equal(t, []float64{2, 0}, b.Out().Value().Floats(0))

	again, err := b.AddItem()
	require.NoError(t, err)
	assert.Equal(t, "item3", again.Name(), "names are never reused")
}

func TestArrayBuilder_Empty(t *testing.T) {
	g := graph.New()
	b := &nodes.ArrayBuilder{}
	add(t, g, nil, "pack", b)

	assert.Equal(t, value.Any, b.Out().Kind())
	b.Out().Value()
	assert.True(t, b.Out().IsDirty(), "nothing decides the kind yet")
}

func TestArrayBuilder_MixedItemKindsRejected(t *testing.T) {
	g := graph.New()
	b := &nodes.ArrayBuilder{Size: 2}
	add(t, g, nil, "pack", b)
	f, i := constant(t, g, "f", "[1.5] 3"), constant(t, g, "i", "[7] 1")

	items := b.Items()
	connect(t, g, f.Out(), items[0])
	assert.ErrorIs(t, g.Connect(i.Out(), items[1]), domain.ErrIncompatible)

	assert.False(t, items[1].IsConnected())
	assert.Equal(t, value.Float, f.Out().Kind())
	assert.Equal(t, value.Int, i.Out().Kind())
	assert.Equal(t, value.FloatArray, b.Out().Kind())
	assert.Equal(t, []float64{1.5, 0}, b.Out().Value().Floats(0))
}
