package value

import (
	"fmt"
	"math/bits"
	"strings"
)

// Kind is the concrete type an attribute value can be specialized to.
type Kind int

// Kinds. The numeric code of a kind is its serialization tag, so new kinds
// must only ever be appended.
const (
	Any Kind = iota // unresolved
	Int
	IntArray
	Float
	FloatArray
	Vec3
	Vec3Array
	Col4
	Col4Array
	Quat
	QuatArray
	Matrix44
	Matrix44Array
	Bool
	BoolArray
	String
	StringArray
	Path
	PathArray
	Enum
	Geo
	GeoInstanceArray
	Image

	kindCount
)

var kindNames = [...]string{
	Any:              "Any",
	Int:              "Int",
	IntArray:         "IntArray",
	Float:            "Float",
	FloatArray:       "FloatArray",
	Vec3:             "Vec3",
	Vec3Array:        "Vec3Array",
	Col4:             "Col4",
	Col4Array:        "Col4Array",
	Quat:             "Quat",
	QuatArray:        "QuatArray",
	Matrix44:         "Matrix44",
	Matrix44Array:    "Matrix44Array",
	Bool:             "Bool",
	BoolArray:        "BoolArray",
	String:           "String",
	StringArray:      "StringArray",
	Path:             "Path",
	PathArray:        "PathArray",
	Enum:             "Enum",
	Geo:              "Geo",
	GeoInstanceArray: "GeoInstanceArray",
	Image:            "Image",
}

func (k Kind) String() string {
	if k < 0 || k >= kindCount {
		return fmt.Sprintf("Kind(%d)", int(k))
	}
	return kindNames[k]
}

// Valid reports whether k is a known kind (Any included).
func (k Kind) Valid() bool {
	return k >= 0 && k < kindCount
}

// ParseKind resolves a kind by name (case-insensitive).
func ParseKind(name string) (Kind, error) {
	for k, n := range kindNames {
		if strings.EqualFold(n, name) {
			return Kind(k), nil
		}
	}
	return Any, fmt.Errorf("unknown kind %q", name)
}

// IsArray reports whether k holds a homogeneous array per slice.
func (k Kind) IsArray() bool {
	switch k {
	case IntArray, FloatArray, Vec3Array, Col4Array, QuatArray, Matrix44Array,
		BoolArray, StringArray, PathArray, GeoInstanceArray:
		return true
	}
	return false
}

// Scalar strips the Array form, e.g. FloatArray -> Float.
// Kinds without a scalar counterpart are returned unchanged.
func (k Kind) Scalar() Kind {
	switch k {
	case IntArray, FloatArray, Vec3Array, Col4Array, QuatArray, Matrix44Array,
		BoolArray, StringArray, PathArray:
		return k - 1
	}
	return k
}

// Array adds the Array form, e.g. Float -> FloatArray. Kinds without an
// array form map to Any.
func (k Kind) Array() Kind {
	switch k {
	case Int, Float, Vec3, Col4, Quat, Matrix44, Bool, String, Path:
		return k + 1
	case IntArray, FloatArray, Vec3Array, Col4Array, QuatArray, Matrix44Array,
		BoolArray, StringArray, PathArray, GeoInstanceArray:
		return k
	}
	return Any
}

// IsOpaque reports whether k carries host payloads that the literal format
// cannot represent.
func (k Kind) IsOpaque() bool {
	return k == Geo || k == GeoInstanceArray || k == Image
}

// IsNumeric reports whether k is one of the arithmetic kinds.
func (k Kind) IsNumeric() bool {
	return NumericKinds.Has(k)
}

// KindSet is a set of concrete kinds. Any is never a member: an attribute
// whose set holds more than one kind is unresolved.
type KindSet uint64

// Predefined sets.
var (
	AllKinds     = allKinds()
	NumericKinds = NewKindSet(Int, IntArray, Float, FloatArray, Vec3, Vec3Array,
		Col4, Col4Array, Quat, QuatArray, Matrix44, Matrix44Array)
)

func allKinds() KindSet {
	var s KindSet
	for k := Int; k < kindCount; k++ {
		s = s.Add(k)
	}
	return s
}

// NewKindSet builds a set from kinds; Any expands to AllKinds.
func NewKindSet(kinds ...Kind) KindSet {
	var s KindSet
	for _, k := range kinds {
		if k == Any {
			return AllKinds
		}
		s = s.Add(k)
	}
	return s
}

// Add returns s with k included.
func (s KindSet) Add(k Kind) KindSet {
	if k <= Any || k >= kindCount {
		return s
	}
	return s | 1<<uint(k)
}

// Has reports whether k is a member.
func (s KindSet) Has(k Kind) bool {
	if k <= Any || k >= kindCount {
		return false
	}
	return s&(1<<uint(k)) != 0
}

// Len is the number of candidate kinds.
func (s KindSet) Len() int { return bits.OnesCount64(uint64(s)) }

// IsEmpty reports whether no candidate is left.
func (s KindSet) IsEmpty() bool { return s == 0 }

// Single returns the only member when the set is resolved.
func (s KindSet) Single() (Kind, bool) {
	if s.Len() != 1 {
		return Any, false
	}
	return Kind(bits.TrailingZeros64(uint64(s))), true
}

func (s KindSet) Intersect(o KindSet) KindSet { return s & o }
func (s KindSet) Union(o KindSet) KindSet     { return s | o }

// Kinds lists the members in tag order.
func (s KindSet) Kinds() []Kind {
	out := make([]Kind, 0, s.Len())
	for k := Int; k < kindCount; k++ {
		if s.Has(k) {
			out = append(out, k)
		}
	}
	return out
}

// Map applies fn to every member and collects the results, dropping Any.
func (s KindSet) Map(fn func(Kind) Kind) KindSet {
	var out KindSet
	for _, k := range s.Kinds() {
		out = out.Add(fn(k))
	}
	return out
}

func (s KindSet) String() string {
	if s == AllKinds {
		return "{Any}"
	}
	names := make([]string, 0, s.Len())
	for _, k := range s.Kinds() {
		names = append(names, k.String())
	}
	return "{" + strings.Join(names, ",") + "}"
}
