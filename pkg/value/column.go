package value

import (
	"fmt"
	"slices"
)

// elemCodec describes how one element type is flattened into literal tokens.
type elemCodec[T any] struct {
	width  int // tokens per element
	format func(T) []string
	parse  func([]string) (T, error)
	equal  func(a, b T) bool
}

// column is the type-erased storage behind a Value.
type column interface {
	slicesCount() int
	resizeSlices(n int)
	size(slice int) int
	resize(slice, n int)
	tokens(slice int) []string
	parseSlice(slice int, tokens []string) error
	clone() column
	equal(other column) bool
	copyElem(slice, i int, src column, srcSlice, j int)
	copySlice(slice int, src column, srcSlice int)
}

// sliced stores one logical value per slice. Scalar columns hold exactly one
// element per slice; array columns may hold zero, in which case reads return
// the default element.
type sliced[T any] struct {
	data  [][]T
	def   T
	array bool
	codec elemCodec[T]
}

func newSliced[T any](def T, array bool, codec elemCodec[T]) *sliced[T] {
	c := &sliced[T]{def: def, array: array, codec: codec}
	c.data = [][]T{c.fresh()}
	return c
}

func (c *sliced[T]) fresh() []T {
	if c.array {
		return []T{}
	}
	return []T{c.def}
}

func (c *sliced[T]) clamp(slice int) int {
	if slice < 0 {
		return 0
	}
	if slice >= len(c.data) {
		return len(c.data) - 1
	}
	return slice
}

func (c *sliced[T]) slicesCount() int { return len(c.data) }

func (c *sliced[T]) resizeSlices(n int) {
	if n < 1 {
		n = 1
	}
	switch {
	case n < len(c.data):
		c.data = c.data[:n]
	case n > len(c.data):
		last := c.data[len(c.data)-1]
		for len(c.data) < n {
			c.data = append(c.data, slices.Clone(last))
		}
	}
}

func (c *sliced[T]) size(slice int) int { return len(c.data[c.clamp(slice)]) }

func (c *sliced[T]) resize(slice, n int) {
	if !c.array {
		return
	}
	if n < 0 {
		n = 0
	}
	s := c.clamp(slice)
	cur := c.data[s]
	switch {
	case n < len(cur):
		c.data[s] = cur[:n]
	case n > len(cur):
		for len(cur) < n {
			cur = append(cur, c.def)
		}
		c.data[s] = cur
	}
}

func (c *sliced[T]) get(slice, i int) T {
	cur := c.data[c.clamp(slice)]
	if len(cur) == 0 {
		return c.def
	}
	if i < 0 {
		i = 0
	}
	if i >= len(cur) {
		i = len(cur) - 1
	}
	return cur[i]
}

func (c *sliced[T]) all(slice int) []T {
	return slices.Clone(c.data[c.clamp(slice)])
}

func (c *sliced[T]) set(slice, i int, v T) {
	s := c.clamp(slice)
	if i < 0 {
		return
	}
	if !c.array {
		c.data[s][0] = v
		return
	}
	if i >= len(c.data[s]) {
		c.resize(s, i+1)
	}
	c.data[s][i] = v
}

func (c *sliced[T]) setAll(slice int, vs []T) {
	s := c.clamp(slice)
	if !c.array {
		if len(vs) > 0 {
			c.data[s][0] = vs[0]
		}
		return
	}
	c.data[s] = append(make([]T, 0, len(vs)), vs...)
}

// copyElem and copySlice ignore sources of another element type.

func (c *sliced[T]) copyElem(slice, i int, src column, srcSlice, j int) {
	if o, ok := src.(*sliced[T]); ok {
		c.set(slice, i, o.get(srcSlice, j))
	}
}

func (c *sliced[T]) copySlice(slice int, src column, srcSlice int) {
	if o, ok := src.(*sliced[T]); ok {
		c.setAll(slice, o.data[o.clamp(srcSlice)])
	}
}

func (c *sliced[T]) tokens(slice int) []string {
	cur := c.data[c.clamp(slice)]
	out := make([]string, 0, len(cur)*c.codec.width)
	for _, e := range cur {
		out = append(out, c.codec.format(e)...)
	}
	return out
}

func (c *sliced[T]) parseSlice(slice int, tokens []string) error {
	if c.codec.width == 0 {
		c.data[c.clamp(slice)] = c.fresh()
		return nil
	}
	if len(tokens)%c.codec.width != 0 {
		return fmt.Errorf("expected a multiple of %d components, got %d", c.codec.width, len(tokens))
	}
	elems := make([]T, 0, len(tokens)/c.codec.width)
	for i := 0; i < len(tokens); i += c.codec.width {
		e, err := c.codec.parse(tokens[i : i+c.codec.width])
		if err != nil {
			return err
		}
		elems = append(elems, e)
	}
	if !c.array {
		switch len(elems) {
		case 0:
			elems = []T{c.def}
		case 1:
		default:
			return fmt.Errorf("scalar holds one element, got %d", len(elems))
		}
	}
	c.data[c.clamp(slice)] = elems
	return nil
}

func (c *sliced[T]) clone() column {
	out := &sliced[T]{def: c.def, array: c.array, codec: c.codec}
	out.data = make([][]T, len(c.data))
	for i, s := range c.data {
		out.data[i] = slices.Clone(s)
		if out.data[i] == nil {
			out.data[i] = []T{}
		}
	}
	return out
}

func (c *sliced[T]) equal(other column) bool {
	o, ok := other.(*sliced[T])
	if !ok || o.array != c.array || len(o.data) != len(c.data) {
		return false
	}
	for i := range c.data {
		if len(c.data[i]) != len(o.data[i]) {
			return false
		}
		for j := range c.data[i] {
			if !c.codec.equal(c.data[i][j], o.data[i][j]) {
				return false
			}
		}
	}
	return true
}
