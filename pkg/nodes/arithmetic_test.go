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

func TestAdd_NarrowsThroughAllowTable(t *testing.T) {
	evals := 0
	hooks := domain.LifecycleHooks{
		OnNodeEvaluated: func(e *domain.NodeEvent) {
			if e.Node == "add" {
				evals++
			}
		},
	}
	g := graph.New(graph.WithLifecycleHooks(hooks))
	f := nodes.NewConstant(value.Float, "[1.5] 3")
	i := nodes.NewConstant(value.Int, "[2] 1")
	sum := nodes.NewArithmetic(nodes.OpAdd)
	add(t, g, nil, "f", f)
	add(t, g, nil, "i", i)
	add(t, g, nil, "add", sum)

	for _, a := range []*graph.Attribute{sum.In0(), sum.In1(), sum.Out()} {
		assert.Equal(t, value.Any, a.Kind(), a.Name())
	}

	connect(t, g, f.Out(), sum.In0())
	assert.Equal(t, value.Float, sum.In0().Kind())
	assert.Equal(t, value.NewKindSet(value.Float, value.FloatArray), sum.Out().AllowedSpecialization())
	assert.Equal(t, value.NewKindSet(value.Int, value.Float, value.IntArray, value.FloatArray), sum.In1().AllowedSpecialization())
	assert.Equal(t, value.Any, sum.Out().Kind())

	connect(t, g, i.Out(), sum.In1())
	assert.Equal(t, value.Float, sum.Out().Kind())

	assert.Equal(t, 3.5, sum.Out().Value().Float(0, 0))
	assert.Equal(t, 3.5, sum.Out().Value().Float(0, 0))
	assert.Equal(t, 1, evals)

	sum.In0().SetDirty()
	assert.Equal(t, 3.5, sum.Out().Value().Float(0, 0))
	assert.Equal(t, 2, evals)

	g.Disconnect(sum.In1())
	assert.Equal(t, value.NewKindSet(value.Float, value.FloatArray), sum.Out().AllowedSpecialization())
}

func TestArithmetic_Kernels(t *testing.T) {
	identity := "[1,0,0,0,0,1,0,0,0,0,1,0,0,0,0,1] 11"
	tests := []struct {
		name     string
		op       nodes.Operator
		in0, in1 string
		want     string
	}{
		{"int add", nodes.OpAdd, "[2] 1", "[3] 1", "[5] 1"},
		{"float minus int", nodes.OpSub, "[1.5] 3", "[1] 1", "[0.5] 3"},
		{"int minus float keeps operand order", nodes.OpSub, "[1] 1", "[1.5] 3", "[-0.5] 3"},
		{"array plus scalar broadcasts", nodes.OpAdd, "[1,2] 4", "[0.5] 3", "[1.5,2.5] 4"},
		{"shorter array clamps", nodes.OpAdd, "[1,2,3] 2", "[10] 4", "[11,12,13] 4"},
		{"empty array", nodes.OpAdd, "[] 4", "[1] 3", "[] 4"},
		{"vec3 scaled", nodes.OpMul, "[1,2,3] 5", "[2] 3", "[2,4,6] 5"},
		{"vec3 sum", nodes.OpAdd, "[1,2,3] 5", "[1,1,1] 5", "[2,3,4] 5"},
		{"col4 product", nodes.OpMul, "[1,0.5,1,1] 7", "[0.5,0.5,0.5,1] 7", "[0.5,0.25,0.5,1] 7"},
		{"vec3 through identity", nodes.OpMul, "[1,2,3] 5", identity, "[1,2,3] 5"},
		{"int array product", nodes.OpMul, "[1,2,3] 2", "[2] 1", "[2,4,6] 2"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := graph.New()
			a, b := constant(t, g, "a", tt.in0), constant(t, g, "b", tt.in1)
			op := nodes.NewArithmetic(tt.op)
			add(t, g, nil, "op", op)
			connect(t, g, a.Out(), op.In0())
			connect(t, g, b.Out(), op.In1())

			assert.Equal(t, tt.want, op.Out().Value().AsString())
			assert.True(t, op.Out().IsClean())
		})
	}
}

func TestArithmetic_KindsOutsideTable(t *testing.T) {
	g := graph.New()
	op := nodes.NewArithmetic(nodes.OpAdd)
	add(t, g, nil, "op", op)

	s := constant(t, g, "s", `["x"] 15`)
	assert.ErrorIs(t, g.Connect(s.Out(), op.In0()), domain.ErrIncompatible, "string is not an operand kind")

	// vec3 + int has no row: the link cannot resolve, the output stays
	// unresolved and the node is never evaluated.
	v := constant(t, g, "v", "[1,2,3] 5")
	i := constant(t, g, "i", "[1] 1")
	connect(t, g, v.Out(), op.In0())
	connect(t, g, i.Out(), op.In1())
	assert.Equal(t, value.Any, op.Out().Kind())
	op.Out().Value()
	assert.True(t, op.Out().IsDirty())
}

func TestOperator_ResultKind(t *testing.T) {
	k, ok := nodes.OpMul.ResultKind(value.Float, value.Vec3Array)
	require.True(t, ok)
	assert.Equal(t, value.Vec3Array, k)

	_, ok = nodes.OpAdd.ResultKind(value.Float, value.Vec3)
	assert.False(t, ok)
}

func TestArithmetic_Presets(t *testing.T) {
	g := graph.New()
	op := nodes.NewArithmetic(nodes.OpSub)
	n := add(t, g, nil, "sub", op)
	assert.Contains(t, n.Presets(), "float")
	assert.Contains(t, n.Presets(), "vec3array")
	assert.NotContains(t, n.Presets(), "matrix44", "only mul multiplies matrices")

	require.NoError(t, n.EnablePreset("int"))
	assert.Equal(t, value.Int, op.Out().Kind())
	require.NoError(t, op.In0().SetValueFromString("[7] 1"))
	require.NoError(t, op.In1().SetValueFromString("[2] 1"))
	assert.Equal(t, 5, op.Out().Value().Int(0, 0))

	f := constant(t, g, "f", "[1] 3")
	assert.ErrorIs(t, g.Connect(f.Out(), op.In0()), domain.ErrIncompatible)
}

func TestAdd_LocalOperandAcceptsSourceOfAnotherKind(t *testing.T) {
	g := graph.New()
	sum := nodes.NewArithmetic(nodes.OpAdd)
	add(t, g, nil, "add", sum)

	require.NoError(t, sum.In0().SetValueFromString("[2.5] 3"))
	require.NoError(t, sum.In1().SetValueFromString("[3] 1"))
	assert.Equal(t, value.Float, sum.Out().Kind())
	assert.Equal(t, 5.5, sum.Out().Value().Float(0, 0))

	seven := constant(t, g, "seven", "[7] 1")
	connect(t, g, seven.Out(), sum.In0())
	assert.Equal(t, value.Int, sum.In0().Kind())
	assert.Equal(t, value.Int, sum.Out().Kind())
	assert.Equal(t, 10, sum.Out().Value().Int(0, 0))

	// The other operand keeps its own literal and may change kind.
	require.NoError(t, sum.In1().SetValueFromString("[0.5] 3"))
	assert.Equal(t, value.Float, sum.Out().Kind())
	assert.Equal(t, 7.5, sum.Out().Value().Float(0, 0))
}
