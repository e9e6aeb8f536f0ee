package value

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"cogentcore.org/core/math32"
)

func formatFloat32(f float32) string { return strconv.FormatFloat(float64(f), 'g', -1, 32) }

func parseFloat32(s string) (float32, error) {
	f, err := strconv.ParseFloat(s, 32)
	return float32(f), err
}

func parseFloat32s(tokens []string, out []float32) error {
	for i, t := range tokens {
		f, err := parseFloat32(t)
		if err != nil {
			return err
		}
		out[i] = f
	}
	return nil
}

func sameFloat32(a, b float32) bool { return math.Float32bits(a) == math.Float32bits(b) }

var intCodec = elemCodec[int]{
	width:  1,
	format: func(v int) []string { return []string{strconv.Itoa(v)} },
	parse:  func(t []string) (int, error) { return strconv.Atoi(t[0]) },
	equal:  func(a, b int) bool { return a == b },
}

var floatCodec = elemCodec[float64]{
	width:  1,
	format: func(v float64) []string { return []string{strconv.FormatFloat(v, 'g', -1, 64)} },
	parse:  func(t []string) (float64, error) { return strconv.ParseFloat(t[0], 64) },
	equal:  func(a, b float64) bool { return math.Float64bits(a) == math.Float64bits(b) },
}

var boolCodec = elemCodec[bool]{
	width:  1,
	format: func(v bool) []string { return []string{strconv.FormatBool(v)} },
	parse:  func(t []string) (bool, error) { return strconv.ParseBool(t[0]) },
	equal:  func(a, b bool) bool { return a == b },
}

var stringCodec = elemCodec[string]{
	width:  1,
	format: func(v string) []string { return []string{strconv.Quote(v)} },
	parse:  func(t []string) (string, error) { return strconv.Unquote(t[0]) },
	equal:  func(a, b string) bool { return a == b },
}

var vec3Codec = elemCodec[math32.Vector3]{
	width: 3,
	format: func(v math32.Vector3) []string {
		return []string{formatFloat32(v.X), formatFloat32(v.Y), formatFloat32(v.Z)}
	},
	parse: func(t []string) (math32.Vector3, error) {
		var c [3]float32
		err := parseFloat32s(t, c[:])
		return math32.Vector3{X: c[0], Y: c[1], Z: c[2]}, err
	},
	equal: func(a, b math32.Vector3) bool {
		return sameFloat32(a.X, b.X) && sameFloat32(a.Y, b.Y) && sameFloat32(a.Z, b.Z)
	},
}

var col4Codec = elemCodec[math32.Vector4]{
	width: 4,
	format: func(v math32.Vector4) []string {
		return []string{formatFloat32(v.X), formatFloat32(v.Y), formatFloat32(v.Z), formatFloat32(v.W)}
	},
	parse: func(t []string) (math32.Vector4, error) {
		var c [4]float32
		err := parseFloat32s(t, c[:])
		return math32.Vector4{X: c[0], Y: c[1], Z: c[2], W: c[3]}, err
	},
	equal: func(a, b math32.Vector4) bool {
		return sameFloat32(a.X, b.X) && sameFloat32(a.Y, b.Y) && sameFloat32(a.Z, b.Z) && sameFloat32(a.W, b.W)
	},
}

var quatCodec = elemCodec[math32.Quat]{
	width: 4,
	format: func(v math32.Quat) []string {
		return []string{formatFloat32(v.X), formatFloat32(v.Y), formatFloat32(v.Z), formatFloat32(v.W)}
	},
	parse: func(t []string) (math32.Quat, error) {
		var c [4]float32
		err := parseFloat32s(t, c[:])
		return math32.Quat{X: c[0], Y: c[1], Z: c[2], W: c[3]}, err
	},
	equal: func(a, b math32.Quat) bool {
		return sameFloat32(a.X, b.X) && sameFloat32(a.Y, b.Y) && sameFloat32(a.Z, b.Z) && sameFloat32(a.W, b.W)
	},
}

var matrixCodec = elemCodec[math32.Matrix4]{
	width: 16,
	format: func(v math32.Matrix4) []string {
		out := make([]string, 16)
		for i, f := range v {
			out[i] = formatFloat32(f)
		}
		return out
	},
	parse: func(t []string) (math32.Matrix4, error) {
		var m math32.Matrix4
		err := parseFloat32s(t, m[:])
		return m, err
	},
	equal: func(a, b math32.Matrix4) bool {
		for i := range a {
			if !sameFloat32(a[i], b[i]) {
				return false
			}
		}
		return true
	},
}

// payloadCodec never writes host payloads; they are recomputed upstream.
var payloadCodec = elemCodec[any]{
	width:  0,
	format: func(any) []string { return nil },
	parse:  func([]string) (any, error) { return nil, nil },
	equal:  func(a, b any) bool { return a == b },
}

// ErrInvalidLiteral is returned by SetFromString for malformed literals.
var ErrInvalidLiteral = errors.New("invalid value literal")

// AsString serializes v as a bracketed literal followed by the kind tag,
// e.g. "[1,2] 4". Values with several slices nest one level per slice.
func (v *Value) AsString() string {
	var sb strings.Builder
	n := v.col.slicesCount()
	if n == 1 {
		writeSlice(&sb, v.col.tokens(0))
	} else {
		sb.WriteByte('[')
		for i := 0; i < n; i++ {
			if i > 0 {
				sb.WriteByte(',')
			}
			writeSlice(&sb, v.col.tokens(i))
		}
		sb.WriteByte(']')
	}
	sb.WriteByte(' ')
	sb.WriteString(strconv.Itoa(int(v.kind)))
	return sb.String()
}

func writeSlice(sb *strings.Builder, tokens []string) {
	sb.WriteByte('[')
	sb.WriteString(strings.Join(tokens, ","))
	sb.WriteByte(']')
}

// SetFromString restores a value written by AsString, retyping v to the
// literal's kind tag. On error v is left unchanged.
func (v *Value) SetFromString(s string) error {
	s = strings.TrimSpace(s)
	cut := strings.LastIndexByte(s, ' ')
	if cut < 0 {
		return fmt.Errorf("%w %q: missing kind tag", ErrInvalidLiteral, s)
	}
	tag, err := strconv.Atoi(s[cut+1:])
	if err != nil || !Kind(tag).Valid() {
		return fmt.Errorf("%w %q: invalid kind tag", ErrInvalidLiteral, s)
	}
	groups, err := splitLiteral(strings.TrimSpace(s[:cut]))
	if err != nil {
		return fmt.Errorf("%w %q: %w", ErrInvalidLiteral, s, err)
	}

	next := New(Kind(tag))
	next.enum = v.enum
	next.col.resizeSlices(len(groups))
	for i, g := range groups {
		if err := next.col.parseSlice(i, g); err != nil {
			return fmt.Errorf("%w %q: slice %d: %w", ErrInvalidLiteral, s, i, err)
		}
	}
	*v = *next
	return nil
}

// splitLiteral parses "[a,b]" or "[[a],[b,c]]" into per-slice token lists.
func splitLiteral(body string) ([][]string, error) {
	if len(body) < 2 || body[0] != '[' || body[len(body)-1] != ']' {
		return nil, fmt.Errorf("expected bracketed literal")
	}
	inner := body[1 : len(body)-1]
	if strings.HasPrefix(strings.TrimSpace(inner), "[") {
		var groups [][]string
		parts, err := tokenize(inner, true)
		if err != nil {
			return nil, err
		}
		for _, p := range parts {
			g, err := splitLiteral(p)
			if err != nil {
				return nil, err
			}
			if len(g) != 1 {
				return nil, fmt.Errorf("slices nest at most one level")
			}
			groups = append(groups, g[0])
		}
		return groups, nil
	}
	tokens, err := tokenize(inner, false)
	if err != nil {
		return nil, err
	}
	return [][]string{tokens}, nil
}

// tokenize splits on top-level commas, honoring Go-quoted strings and, when
// nested is set, bracket groups.
func tokenize(s string, nested bool) ([]string, error) {
	var (
		out   []string
		start int
		depth int
		quote bool
	)
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case quote:
			if c == '\\' {
				i++
			} else if c == '"' {
				quote = false
			}
		case c == '"':
			quote = true
		case nested && c == '[':
			depth++
		case nested && c == ']':
			depth--
			if depth < 0 {
				return nil, fmt.Errorf("unbalanced brackets")
			}
		case c == ',' && depth == 0:
			out = append(out, strings.TrimSpace(s[start:i]))
			start = i + 1
		}
	}
	if quote || depth != 0 {
		return nil, fmt.Errorf("unterminated literal")
	}
	return append(out, strings.TrimSpace(s[start:])), nil
}
