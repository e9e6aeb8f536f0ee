package nodes

import (
	"strings"

	"cogentcore.org/core/math32"
	"github.com/aretw0/loom/pkg/graph"
	"github.com/aretw0/loom/pkg/value"
)

// Operator selects the arithmetic of an Arithmetic node.
type Operator int

const (
	OpAdd Operator = iota
	OpSub
	OpMul
)

func (op Operator) String() string {
	switch op {
	case OpSub:
		return "sub"
	case OpMul:
		return "mul"
	}
	return "add"
}

// opRule is one row of the allow-table: operands a and b, in either order,
// produce out.
type opRule struct {
	a, b, out value.Kind
}

var additiveRules = []opRule{
	{value.Int, value.Int, value.Int},
	{value.Int, value.Float, value.Float},
	{value.Float, value.Float, value.Float},
	{value.Int, value.IntArray, value.IntArray},
	{value.IntArray, value.IntArray, value.IntArray},
	{value.Float, value.FloatArray, value.FloatArray},
	{value.Int, value.FloatArray, value.FloatArray},
	{value.Float, value.IntArray, value.FloatArray},
	{value.IntArray, value.FloatArray, value.FloatArray},
	{value.FloatArray, value.FloatArray, value.FloatArray},
	{value.Vec3, value.Vec3, value.Vec3},
	{value.Vec3, value.Vec3Array, value.Vec3Array},
	{value.Vec3Array, value.Vec3Array, value.Vec3Array},
	{value.Col4, value.Col4, value.Col4},
	{value.Col4, value.Col4Array, value.Col4Array},
	{value.Col4Array, value.Col4Array, value.Col4Array},
}

var multiplicativeRules = append([]opRule{
	{value.Vec3, value.Float, value.Vec3},
	{value.Vec3, value.Int, value.Vec3},
	{value.Vec3Array, value.Float, value.Vec3Array},
	{value.Vec3Array, value.Int, value.Vec3Array},
	{value.Col4, value.Float, value.Col4},
	{value.Col4Array, value.Float, value.Col4Array},
	{value.Vec3, value.Matrix44, value.Vec3},
	{value.Vec3Array, value.Matrix44, value.Vec3Array},
	{value.Matrix44, value.Matrix44, value.Matrix44},
}, additiveRules...)

func (op Operator) rules() []opRule {
	if op == OpMul {
		return multiplicativeRules
	}
	return additiveRules
}

// ResultKind looks up the allow-table of op.
func (op Operator) ResultKind(a, b value.Kind) (value.Kind, bool) {
	for _, r := range op.rules() {
		if (r.a == a && r.b == b) || (r.a == b && r.b == a) {
			return r.out, true
		}
	}
	return value.Any, false
}

// operandKinds and resultKinds are the declared sets of the attributes.
func (op Operator) operandKinds() []value.Kind {
	var s value.KindSet
	for _, r := range op.rules() {
		s = s.Add(r.a).Add(r.b)
	}
	return s.Kinds()
}

func (op Operator) resultKinds() []value.Kind {
	var s value.KindSet
	for _, r := range op.rules() {
		s = s.Add(r.out)
	}
	return s.Kinds()
}

// Arithmetic applies op element-wise to "in0" and "in1". The kernel is
// picked from the allow-table when the three attributes resolve. Every
// same-kind row of the table is also a preset named after the kind in
// lower case ("float", "vec3array").
type Arithmetic struct {
	op Operator

	in0, in1, out *graph.Attribute
	kernel        kernel
}

// NewArithmetic creates an arithmetic behavior.
func NewArithmetic(op Operator) *Arithmetic { return &Arithmetic{op: op} }

func (a *Arithmetic) TypeName() string { return a.op.String() }

func (a *Arithmetic) Init(n *graph.Node) error {
	var err error
	operands := a.op.operandKinds()
	if a.in0, err = n.AddInput("in0", operands...); err != nil {
		return err
	}
	if a.in1, err = n.AddInput("in1", operands...); err != nil {
		return err
	}
	if a.out, err = n.AddOutput("out", a.op.resultKinds()...); err != nil {
		return err
	}
	for _, in := range []*graph.Attribute{a.in0, a.in1} {
		if err := n.SetAttributeAffect(in, a.out); err != nil {
			return err
		}
		if err := n.SetSpecializationLink(in, a.out, nil); err != nil {
			return err
		}
	}
	for _, r := range a.op.rules() {
		if r.a != r.b || r.b != r.out {
			continue
		}
		pin := map[*graph.Attribute]value.Kind{a.in0: r.a, a.in1: r.a, a.out: r.a}
		if err := n.DefinePreset(strings.ToLower(r.a.String()), pin); err != nil {
			return err
		}
	}
	n.SetSliceable(true)
	return nil
}

func (a *Arithmetic) In0() *graph.Attribute { return a.in0 }
func (a *Arithmetic) In1() *graph.Attribute { return a.in1 }
func (a *Arithmetic) Out() *graph.Attribute { return a.out }

// NarrowLink keeps an operand and the result consistent with the other
// operand through the allow-table. When no row takes the two operands at
// all, the link is left as it is and the result stays unresolved.
func (a *Arithmetic) NarrowLink(x, out *graph.Attribute, sets graph.KindSets) (value.KindSet, value.KindSet) {
	other := a.in1
	if x == a.in1 {
		other = a.in0
	}
	xs, others, outs := sets.Of(x), sets.Of(other), sets.Of(out)
	var nx, nout value.KindSet
	rows := false
	for _, r := range a.op.rules() {
		for _, pair := range [2][2]value.Kind{{r.a, r.b}, {r.b, r.a}} {
			if !xs.Has(pair[0]) || !others.Has(pair[1]) {
				continue
			}
			rows = true
			if outs.Has(r.out) {
				nx = nx.Add(pair[0])
				nout = nout.Add(r.out)
			}
		}
	}
	if !rows {
		return xs, outs
	}
	return nx, nout
}

func (a *Arithmetic) AttributeSpecializationChanged(*graph.Attribute) {
	a.kernel = nil
	k0, k1, kout := a.in0.Kind(), a.in1.Kind(), a.out.Kind()
	if want, ok := a.op.ResultKind(k0, k1); ok && want == kout {
		a.kernel = pickKernel(a.op, k0, k1, kout)
	}
}

func (a *Arithmetic) UpdateSlice(ctx *graph.EvalContext) {
	if a.kernel == nil {
		ctx.Logger().Warn("no kernel for operand kinds", "in0", a.in0.Kind(), "in1", a.in1.Kind())
		ctx.KeepDirty(a.out)
		return
	}
	a.kernel(a.in0.Value(), a.in1.Value(), a.out.OutValue(), ctx.Slice())
}

// kernel computes one slice of out from the two operands.
type kernel func(x, y, out *value.Value, slice int)

type reader[T any] func(v *value.Value, slice, i int) T

type writer[T any] func(v *value.Value, slice, i int, x T)

// elementwise broadcasts scalars against arrays; array operands of
// different lengths produce the longest, shorter ones clamp.
func elementwise[A, B, R any](ra reader[A], rb reader[B], f func(A, B) R, w writer[R]) kernel {
	return func(x, y, out *value.Value, slice int) {
		n := 1
		if x.Kind().IsArray() || y.Kind().IsArray() {
			n = 0
			for _, v := range []*value.Value{x, y} {
				if v.Kind().IsArray() {
					n = max(n, v.Size(slice))
				}
			}
		}
		out.Resize(slice, n)
		for i := range n {
			w(out, slice, i, f(ra(x, slice, i), rb(y, slice, i)))
		}
	}
}

func readInt(v *value.Value, slice, i int) int { return v.Int(slice, i) }

func readMatrix(v *value.Value, slice, i int) math32.Matrix4 { return v.Matrix44(slice, i) }

func liftFloat(k value.Kind) reader[float64] {
	if k.Scalar() == value.Int {
		return func(v *value.Value, slice, i int) float64 { return float64(v.Int(slice, i)) }
	}
	return func(v *value.Value, slice, i int) float64 { return v.Float(slice, i) }
}

func liftVec3(k value.Kind) reader[math32.Vector3] {
	if k.Scalar() == value.Vec3 {
		return func(v *value.Value, slice, i int) math32.Vector3 { return v.Vec3(slice, i) }
	}
	f := liftFloat(k)
	return func(v *value.Value, slice, i int) math32.Vector3 {
		return math32.Vector3Scalar(float32(f(v, slice, i)))
	}
}

func liftCol4(k value.Kind) reader[math32.Vector4] {
	if k.Scalar() == value.Col4 {
		return func(v *value.Value, slice, i int) math32.Vector4 { return v.Col4(slice, i) }
	}
	f := liftFloat(k)
	return func(v *value.Value, slice, i int) math32.Vector4 {
		return math32.Vector4Scalar(float32(f(v, slice, i)))
	}
}

func writeInt(v *value.Value, slice, i int, x int)               { v.SetInt(slice, i, x) }
func writeFloat(v *value.Value, slice, i int, x float64)         { v.SetFloat(slice, i, x) }
func writeVec3(v *value.Value, slice, i int, x math32.Vector3)   { v.SetVec3(slice, i, x) }
func writeCol4(v *value.Value, slice, i int, x math32.Vector4)   { v.SetCol4(slice, i, x) }
func writeMatrix(v *value.Value, slice, i int, x math32.Matrix4) { v.SetMatrix44(slice, i, x) }

func pickKernel(op Operator, k0, k1, kout value.Kind) kernel {
	switch kout.Scalar() {
	case value.Int:
		return elementwise(readInt, readInt, intOp(op), writeInt)
	case value.Float:
		return elementwise(liftFloat(k0), liftFloat(k1), floatOp(op), writeFloat)
	case value.Vec3:
		if k1 == value.Matrix44 {
			return elementwise(liftVec3(k0), readMatrix, transform, writeVec3)
		}
		if k0 == value.Matrix44 {
			return elementwise(readMatrix, liftVec3(k1), func(m math32.Matrix4, p math32.Vector3) math32.Vector3 {
				return transform(p, m)
			}, writeVec3)
		}
		return elementwise(liftVec3(k0), liftVec3(k1), vec3Op(op), writeVec3)
	case value.Col4:
		return elementwise(liftCol4(k0), liftCol4(k1), col4Op(op), writeCol4)
	case value.Matrix44:
		return elementwise(readMatrix, readMatrix, func(a, b math32.Matrix4) math32.Matrix4 {
			return *a.Mul(&b)
		}, writeMatrix)
	}
	return nil
}

// transform applies m to the point p, dividing by the resulting w.
func transform(p math32.Vector3, m math32.Matrix4) math32.Vector3 {
	return math32.Vec4(p.X, p.Y, p.Z, 1).MulMatrix4(&m).PerspDiv()
}

func intOp(op Operator) func(a, b int) int {
	switch op {
	case OpSub:
		return func(a, b int) int { return a - b }
	case OpMul:
		return func(a, b int) int { return a * b }
	}
	return func(a, b int) int { return a + b }
}

func floatOp(op Operator) func(a, b float64) float64 {
	switch op {
	case OpSub:
		return func(a, b float64) float64 { return a - b }
	case OpMul:
		return func(a, b float64) float64 { return a * b }
	}
	return func(a, b float64) float64 { return a + b }
}

func vec3Op(op Operator) func(a, b math32.Vector3) math32.Vector3 {
	switch op {
	case OpSub:
		return math32.Vector3.Sub
	case OpMul:
		return math32.Vector3.Mul
	}
	return math32.Vector3.Add
}

func col4Op(op Operator) func(a, b math32.Vector4) math32.Vector4 {
	switch op {
	case OpSub:
		return math32.Vector4.Sub
	case OpMul:
		return math32.Vector4.Mul
	}
	return math32.Vector4.Add
}
