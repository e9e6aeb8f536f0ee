package graph_test

import (
	"testing"

	"github.com/aretw0/loom/pkg/domain"
	"github.com/aretw0/loom/pkg/graph"
	"github.com/aretw0/loom/pkg/value"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSpecialization_ConnectNarrowsDisconnectWidens(t *testing.T) {
	g := graph.New()
	src, p := &scale{factor: 1}, &pass{}
	addNode(t, g, "src", nil, src)
	addNode(t, g, "p", nil, p)

	require.NoError(t, g.Connect(src.out, p.in))
	assert.Equal(t, value.Float, p.in.Kind())
	assert.Equal(t, value.Float, p.out.Kind(), "links carry the kind across the node")
	assert.Equal(t, []string{"in=Float", "out=Float"}, p.retyped)

	setFloat(t, src.in, 1.5)
	assert.Equal(t, 1.5, p.out.Value().Float(0, 0))

	g.Disconnect(p.in)
	assert.Equal(t, value.Any, p.in.Kind())
	assert.Equal(t, value.Any, p.out.Kind())
	assert.Equal(t, value.AllKinds, p.out.AllowedSpecialization())
	assert.True(t, p.out.IsDirty())
}

func TestSpecialization_ChainsAcrossNodes(t *testing.T) {
	g := graph.New()
	first := &pass{}
	second := &pass{kinds: []value.Kind{value.Int, value.Float, value.Vec3}}
	third := &pass{}
	addNode(t, g, "first", nil, first)
	addNode(t, g, "second", nil, second)
	addNode(t, g, "third", nil, third)
	require.NoError(t, g.Connect(first.out, second.in))
	require.NoError(t, g.Connect(second.out, third.in))

	// second's declared set flows both ways through connections.
	want := value.NewKindSet(value.Int, value.Float, value.Vec3)
	for _, a := range []*graph.Attribute{first.in, first.out, third.in, third.out} {
		assert.Equal(t, want, a.AllowedSpecialization(), a.FullName())
	}

	src := &scale{}
	addNode(t, g, "src", nil, src)
	require.NoError(t, g.Connect(src.out, first.in))
	assert.Equal(t, value.Float, third.out.Kind())
}

func TestSpecialization_ScalarArrayRule(t *testing.T) {
	a, b := graph.ScalarArray(
		value.NewKindSet(value.Float, value.Int, value.Geo),
		value.NewKindSet(value.FloatArray, value.Vec3Array),
	)
	assert.Equal(t, value.NewKindSet(value.Float), a)
	assert.Equal(t, value.NewKindSet(value.FloatArray), b)

	b, a = graph.ArrayScalar(value.NewKindSet(value.IntArray, value.BoolArray), value.NewKindSet(value.Bool))
	assert.Equal(t, value.NewKindSet(value.BoolArray), b)
	assert.Equal(t, value.NewKindSet(value.Bool), a)

	g := graph.New()
	src := &scale{}
	wrap := &pass{
		kinds: []value.Kind{value.Float, value.FloatArray, value.Int, value.IntArray},
		rule:  graph.ScalarArray,
	}
	addNode(t, g, "src", nil, src)
	addNode(t, g, "wrap", nil, wrap)
	assert.Equal(t, value.NewKindSet(value.Float, value.Int), wrap.in.AllowedSpecialization())
	assert.Equal(t, value.NewKindSet(value.FloatArray, value.IntArray), wrap.out.AllowedSpecialization())

	require.NoError(t, g.Connect(src.out, wrap.in))
	assert.Equal(t, value.FloatArray, wrap.out.Kind())
}

func TestSpecialization_RulesNeverWiden(t *testing.T) {
	sets := []value.KindSet{
		value.AllKinds,
		value.NumericKinds,
		value.NewKindSet(value.Float),
		value.NewKindSet(value.FloatArray, value.String),
		value.NewKindSet(value.Geo, value.Image),
	}
	rules := map[string]graph.LinkRule{
		"same":   graph.SameKind,
		"scalar": graph.ScalarArray,
		"array":  graph.ArrayScalar,
	}
	for name, rule := range rules {
		for _, a := range sets {
			for _, b := range sets {
				na, nb := rule(a, b)
				assert.Equal(t, na, na.Intersect(a), "%s(%s,%s)", name, a, b)
				assert.Equal(t, nb, nb.Intersect(b), "%s(%s,%s)", name, a, b)
				// A second pass is a fixed point.
				na2, nb2 := rule(na, nb)
				assert.Equal(t, na, na2, "%s(%s,%s)", name, a, b)
				assert.Equal(t, nb, nb2, "%s(%s,%s)", name, a, b)
			}
		}
	}
}

func TestSetAllowedSpecialization_KeepsPreviousOnConflict(t *testing.T) {
	g := graph.New()
	src, p := &scale{}, &pass{}
	addNode(t, g, "src", nil, src)
	addNode(t, g, "p", nil, p)
	require.NoError(t, g.Connect(src.out, p.in))

	p.in.SetAllowedSpecialization(value.Int)
	assert.Equal(t, value.AllKinds, p.in.DeclaredSpecialization())
	assert.Equal(t, value.Float, p.in.Kind())

	p.out.SetAllowedSpecialization(value.Float, value.Int)
	assert.Equal(t, value.NewKindSet(value.Float, value.Int), p.out.DeclaredSpecialization())
	assert.Equal(t, value.Float, p.out.Kind())
}

type switchable struct {
	in, out *graph.Attribute
}

func (s *switchable) Init(n *graph.Node) error {
	var err error
	if s.in, err = n.AddInput("in", value.Float, value.FloatArray); err != nil {
		return err
	}
	if s.out, err = n.AddOutput("out", value.Float, value.FloatArray); err != nil {
		return err
	}
	if err := n.SetSpecializationLink(s.in, s.out, graph.SameKind); err != nil {
		return err
	}
	if err := n.DefinePreset("single", map[*graph.Attribute]value.Kind{s.in: value.Float, s.out: value.Float}); err != nil {
		return err
	}
	return n.DefinePreset("array", map[*graph.Attribute]value.Kind{s.in: value.FloatArray, s.out: value.FloatArray})
}

func TestPresets(t *testing.T) {
	g := graph.New()
	sw := &switchable{}
	n := addNode(t, g, "sw", nil, sw)
	assert.Equal(t, []string{"single", "array"}, n.Presets())
	assert.Equal(t, value.Any, sw.out.Kind())

	require.NoError(t, n.EnablePreset("array"))
	assert.Equal(t, value.FloatArray, sw.in.Kind())
	assert.Equal(t, value.FloatArray, sw.out.Kind())

	src := &scale{}
	addNode(t, g, "src", nil, src)
	assert.ErrorIs(t, g.Connect(src.out, sw.in), domain.ErrIncompatible)

	require.NoError(t, n.EnablePreset("single"))
	require.NoError(t, g.Connect(src.out, sw.in))

	err := n.EnablePreset("array")
	assert.ErrorIs(t, err, domain.ErrPresetConflict)
	assert.Equal(t, "single", n.ActivePreset())
	assert.Equal(t, value.Float, sw.out.Kind())

	n.DisablePreset()
	assert.Empty(t, n.ActivePreset())
	assert.Equal(t, value.Float, sw.out.Kind(), "the connection still pins the kind")

	assert.ErrorIs(t, n.EnablePreset("nope"), domain.ErrUnknownPreset)
}

func TestSetAllowedSpecialization_RejectsLinkConflict(t *testing.T) {
	g := graph.New()
	p := &pass{}
	addNode(t, g, "p", nil, p)

	p.out.SetAllowedSpecialization(value.Float)
	assert.Equal(t, value.Float, p.in.Kind())

	p.in.SetAllowedSpecialization(value.Int)
	assert.Equal(t, value.AllKinds, p.in.DeclaredSpecialization(), "the previous set is kept")
	assert.Equal(t, value.Float, p.in.Kind())
	assert.Equal(t, value.Float, p.out.Kind())
	assert.Equal(t, []string{"in=Float", "out=Float"}, p.retyped, "a rejected edit fires no hook")
}

func TestSpecialization_RuleConflictAcrossNodesRejectsConnect(t *testing.T) {
	g := graph.New()
	first, second := &pass{}, &pass{}
	addNode(t, g, "first", nil, first)
	addNode(t, g, "second", nil, second)
	require.NoError(t, first.in.SetValueFromString("[1.5] 3"))
	second.out.SetAllowedSpecialization(value.Int)

	assert.ErrorIs(t, g.Connect(first.out, second.in), domain.ErrIncompatible)
	assert.False(t, second.in.IsConnected())
	assert.Equal(t, value.Float, first.out.Kind())
	assert.Equal(t, value.Int, second.in.Kind())
}

func TestSetValueFromString_PinsLocalKind(t *testing.T) {
	g := graph.New()
	p := &pass{kinds: []value.Kind{value.Float, value.Int}}
	addNode(t, g, "p", nil, p)

	require.NoError(t, p.in.SetValueFromString("[1.5] 3"))
	assert.Equal(t, value.Float, p.out.Kind())
	assert.Equal(t, value.NewKindSet(value.Float, value.Int), p.in.DeclaredSpecialization())

	require.NoError(t, p.in.SetValueFromString("[3] 1"))
	assert.Equal(t, value.Int, p.in.Kind())
	assert.Equal(t, value.Int, p.out.Kind())
	assert.Equal(t, 3, p.out.Value().Int(0, 0))

	assert.ErrorIs(t, p.in.SetValueFromString(`["x"] 15`), domain.ErrIncompatible)
	assert.Equal(t, value.Int, p.in.Kind())

	// A source replaces the local value and its kind.
	src := &scale{factor: 2}
	addNode(t, g, "src", nil, src)
	require.NoError(t, g.Connect(src.out, p.in))
	assert.Equal(t, value.Float, p.out.Kind())

	g.Disconnect(p.in)
	assert.Equal(t, value.NewKindSet(value.Float, value.Int), p.in.AllowedSpecialization())
}

func TestSetValueFromString_KeepsValueOnLinkConflict(t *testing.T) {
	g := graph.New()
	p := &pass{}
	addNode(t, g, "p", nil, p)
	require.NoError(t, p.in.SetValueFromString("[2.5] 3"))
	p.out.SetAllowedSpecialization(value.Float)

	assert.ErrorIs(t, p.in.SetValueFromString("[3] 1"), domain.ErrIncompatible)
	assert.Equal(t, value.Float, p.in.Kind())
	assert.Equal(t, 2.5, p.out.Value().Float(0, 0))
}
