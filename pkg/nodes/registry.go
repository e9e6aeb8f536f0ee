package nodes

import (
	"fmt"
	"maps"
	"slices"
	"sync"

	"github.com/aretw0/loom/pkg/domain"
	"github.com/aretw0/loom/pkg/graph"
	"github.com/mitchellh/mapstructure"
)

// Factory builds a fresh behavior from loosely typed parameters.
type Factory func(params map[string]any) (any, error)

// Registry manages the available node types.
type Registry struct {
	mu        sync.RWMutex
	factories map[string]Factory
}

// NewRegistry creates a new empty registry.
func NewRegistry() *Registry {
	return &Registry{
		factories: make(map[string]Factory),
	}
}

// Builtin returns a registry holding every node type of this package.
func Builtin() *Registry {
	r := NewRegistry()
	r.Register(TypeConstant, newConstantFromParams)
	for _, op := range []Operator{OpAdd, OpSub, OpMul} {
		r.Register(op.String(), func(map[string]any) (any, error) { return NewArithmetic(op), nil })
	}
	r.Register(TypeLoop, newLoopFromParams)
	r.Register(TypeLoopRange, func(map[string]any) (any, error) { return &LoopRange{}, nil })
	r.Register(TypeLoopIndex, func(map[string]any) (any, error) { return &LoopIndex{}, nil })
	r.Register(TypeLoopOutput, func(map[string]any) (any, error) { return &LoopOutput{}, nil })
	r.Register(TypeArrayBuilder, newArrayBuilderFromParams)
	r.Register(TypeCondition, func(map[string]any) (any, error) { return &Condition{}, nil })
	r.Register(TypeSimulationStep, newSimulationStepFromParams)
	r.Register(TypeSimulationCommit, newSimulationCommitFromParams)
	return r
}

// Register adds a node type.
// If a type with the same name exists, it is overwritten.
func (r *Registry) Register(name string, f Factory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.factories[name] = f
}

// Types lists the registered type names in sorted order.
func (r *Registry) Types() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Sorted(maps.Keys(r.factories))
}

// New builds a behavior of the named type.
func (r *Registry) New(typeName string, params map[string]any) (any, error) {
	r.mu.RLock()
	f, ok := r.factories[typeName]
	r.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("node type %q: %w", typeName, domain.ErrUnknownNodeType)
	}
	b, err := f(params)
	if err != nil {
		return nil, fmt.Errorf("node type %q: %w", typeName, err)
	}
	return b, nil
}

// Add builds a behavior of the named type and adds it to g under parent.
func (r *Registry) Add(g *graph.Graph, parent *graph.Node, name, typeName string, params map[string]any) (*graph.Node, error) {
	b, err := r.New(typeName, params)
	if err != nil {
		return nil, err
	}
	return g.AddNode(name, parent, b)
}

// decodeParams fills out from params. Numbers and strings convert loosely,
// unknown keys are rejected.
func decodeParams(params map[string]any, out any) error {
	if len(params) == 0 {
		return nil
	}
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           out,
		WeaklyTypedInput: true,
		ErrorUnused:      true,
	})
	if err != nil {
		return err
	}
	if err := dec.Decode(params); err != nil {
		return fmt.Errorf("invalid parameters: %w", err)
	}
	return nil
}
