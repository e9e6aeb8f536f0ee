package value

import (
	"cogentcore.org/core/math32"
)

// EnumEntry is one selectable item of an Enum value.
type EnumEntry struct {
	Index int
	Label string
}

// Value is the typed, sliced payload held by exactly one attribute.
// The zero Value is not usable; construct with New.
type Value struct {
	kind Kind
	col  column
	enum []EnumEntry
}

// Identity4 is the default Matrix44 element.
var Identity4 = math32.Matrix4{
	1, 0, 0, 0,
	0, 1, 0, 0,
	0, 0, 1, 0,
	0, 0, 0, 1,
}

// New creates a single-slice value of the given kind holding defaults.
func New(kind Kind) *Value {
	return &Value{kind: kind, col: newColumn(kind)}
}

func newColumn(kind Kind) column {
	array := kind.IsArray()
	switch kind {
	case Int, IntArray, Enum:
		return newSliced(0, array, intCodec)
	case Float, FloatArray:
		return newSliced(0.0, array, floatCodec)
	case Vec3, Vec3Array:
		return newSliced(math32.Vector3{}, array, vec3Codec)
	case Col4, Col4Array:
		return newSliced(math32.Vector4{W: 1}, array, col4Codec)
	case Quat, QuatArray:
		return newSliced(math32.Quat{W: 1}, array, quatCodec)
	case Matrix44, Matrix44Array:
		return newSliced(Identity4, array, matrixCodec)
	case Bool, BoolArray:
		return newSliced(false, array, boolCodec)
	case String, StringArray, Path, PathArray:
		return newSliced("", array, stringCodec)
	case Geo, GeoInstanceArray, Image:
		return newSliced[any](nil, array, payloadCodec)
	}
	// Any: an unresolved value carries no data.
	return newSliced[any](nil, false, payloadCodec)
}

// Kind is the current concrete kind, Any when unresolved.
func (v *Value) Kind() Kind { return v.kind }

// SetKind retypes v to kind. Data is reset to defaults; the slice count is
// kept. Retyping to the current kind is a no-op.
func (v *Value) SetKind(kind Kind) {
	if kind == v.kind {
		return
	}
	n := v.col.slicesCount()
	v.kind = kind
	v.col = newColumn(kind)
	v.col.resizeSlices(n)
}

// SlicesCount is the number of per-iteration slots, always at least 1.
func (v *Value) SlicesCount() int { return v.col.slicesCount() }

// ResizeSlices grows or shrinks the slice count. New slices copy the last
// existing one; n < 1 is treated as 1.
func (v *Value) ResizeSlices(n int) { v.col.resizeSlices(n) }

// Size is the element count of a slice (1 for scalar kinds).
func (v *Value) Size(slice int) int { return v.col.size(slice) }

// Resize changes the element count of an array slice. Scalars ignore it.
func (v *Value) Resize(slice, n int) { v.col.resize(slice, n) }

// CopyFrom makes v a deep copy of src, including its kind.
func (v *Value) CopyFrom(src *Value) {
	v.kind = src.kind
	v.col = src.col.clone()
	v.enum = append([]EnumEntry(nil), src.enum...)
}

// Clone returns a deep copy.
func (v *Value) Clone() *Value {
	out := &Value{}
	out.CopyFrom(v)
	return out
}

// Equal reports whether both values have the same kind and bit-identical
// data in every slice.
func (v *Value) Equal(o *Value) bool {
	if v == nil || o == nil {
		return v == o
	}
	return v.kind == o.kind && v.col.equal(o.col)
}

func (v *Value) String() string { return v.AsString() }

// CopyElement copies element j of src's srcSlice into element i of v's
// slice. Scalar and array kinds sharing an element type mix freely, e.g.
// Float into FloatArray; other combinations are ignored. Array slices grow
// to hold i.
func (v *Value) CopyElement(slice, i int, src *Value, srcSlice, j int) {
	v.col.copyElem(slice, i, src.col, srcSlice, j)
}

// CopySlice replaces one slice of v with a copy of src's srcSlice, under the
// same element-type rule as CopyElement.
func (v *Value) CopySlice(slice int, src *Value, srcSlice int) {
	v.col.copySlice(slice, src.col, srcSlice)
}

// Enum entries are declared by the owning node and are not serialized.

func (v *Value) SetEnumEntries(entries []EnumEntry) {
	v.enum = append([]EnumEntry(nil), entries...)
}

func (v *Value) EnumEntries() []EnumEntry {
	return append([]EnumEntry(nil), v.enum...)
}

// EnumLabel returns the label of the current index of a slice.
func (v *Value) EnumLabel(slice int) string {
	idx := v.Int(slice, 0)
	for _, e := range v.enum {
		if e.Index == idx {
			return e.Label
		}
	}
	return ""
}

func get[T any](v *Value, slice, i int) T {
	if c, ok := v.col.(*sliced[T]); ok {
		return c.get(slice, i)
	}
	var zero T
	return zero
}

func all[T any](v *Value, slice int) []T {
	if c, ok := v.col.(*sliced[T]); ok {
		return c.all(slice)
	}
	return nil
}

func set[T any](v *Value, slice, i int, x T) {
	if c, ok := v.col.(*sliced[T]); ok {
		c.set(slice, i, x)
	}
}

func setAll[T any](v *Value, slice int, xs []T) {
	if c, ok := v.col.(*sliced[T]); ok {
		c.setAll(slice, xs)
	}
}

// Typed accessors. Reads on a mismatched kind return the zero element and
// writes are ignored; element and slice indices clamp.

func (v *Value) Int(slice, i int) int        { return get[int](v, slice, i) }
func (v *Value) Ints(slice int) []int        { return all[int](v, slice) }
func (v *Value) SetInt(slice, i int, x int)  { set(v, slice, i, x) }
func (v *Value) SetInts(slice int, xs []int) { setAll(v, slice, xs) }

func (v *Value) Float(slice, i int) float64        { return get[float64](v, slice, i) }
func (v *Value) Floats(slice int) []float64        { return all[float64](v, slice) }
func (v *Value) SetFloat(slice, i int, x float64)  { set(v, slice, i, x) }
func (v *Value) SetFloats(slice int, xs []float64) { setAll(v, slice, xs) }

func (v *Value) Vec3(slice, i int) math32.Vector3        { return get[math32.Vector3](v, slice, i) }
func (v *Value) Vec3s(slice int) []math32.Vector3        { return all[math32.Vector3](v, slice) }
func (v *Value) SetVec3(slice, i int, x math32.Vector3)  { set(v, slice, i, x) }
func (v *Value) SetVec3s(slice int, xs []math32.Vector3) { setAll(v, slice, xs) }

func (v *Value) Col4(slice, i int) math32.Vector4        { return get[math32.Vector4](v, slice, i) }
func (v *Value) Col4s(slice int) []math32.Vector4        { return all[math32.Vector4](v, slice) }
func (v *Value) SetCol4(slice, i int, x math32.Vector4)  { set(v, slice, i, x) }
func (v *Value) SetCol4s(slice int, xs []math32.Vector4) { setAll(v, slice, xs) }

func (v *Value) Quat(slice, i int) math32.Quat        { return get[math32.Quat](v, slice, i) }
func (v *Value) Quats(slice int) []math32.Quat        { return all[math32.Quat](v, slice) }
func (v *Value) SetQuat(slice, i int, x math32.Quat)  { set(v, slice, i, x) }
func (v *Value) SetQuats(slice int, xs []math32.Quat) { setAll(v, slice, xs) }

func (v *Value) Matrix44(slice, i int) math32.Matrix4        { return get[math32.Matrix4](v, slice, i) }
func (v *Value) Matrix44s(slice int) []math32.Matrix4        { return all[math32.Matrix4](v, slice) }
func (v *Value) SetMatrix44(slice, i int, x math32.Matrix4)  { set(v, slice, i, x) }
func (v *Value) SetMatrix44s(slice int, xs []math32.Matrix4) { setAll(v, slice, xs) }

func (v *Value) Bool(slice, i int) bool        { return get[bool](v, slice, i) }
func (v *Value) Bools(slice int) []bool        { return all[bool](v, slice) }
func (v *Value) SetBool(slice, i int, x bool)  { set(v, slice, i, x) }
func (v *Value) SetBools(slice int, xs []bool) { setAll(v, slice, xs) }

func (v *Value) Str(slice, i int) string        { return get[string](v, slice, i) }
func (v *Value) Strs(slice int) []string        { return all[string](v, slice) }
func (v *Value) SetStr(slice, i int, x string)  { set(v, slice, i, x) }
func (v *Value) SetStrs(slice int, xs []string) { setAll(v, slice, xs) }

func (v *Value) Payload(slice, i int) any        { return get[any](v, slice, i) }
func (v *Value) Payloads(slice int) []any        { return all[any](v, slice) }
func (v *Value) SetPayload(slice, i int, x any)  { set(v, slice, i, x) }
func (v *Value) SetPayloads(slice int, xs []any) { setAll(v, slice, xs) }
