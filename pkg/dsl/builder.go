package dsl

import (
	"errors"
	"fmt"
	"strings"

	"github.com/aretw0/loom/pkg/graph"
	"github.com/aretw0/loom/pkg/nodes"
)

// Builder manages the graph construction.
type Builder struct {
	registry *nodes.Registry
	order    []string
	nodes    map[string]*NodeBuilder
	links    []link
}

type link struct {
	from, to string
}

// Option configures a Builder.
type Option func(*Builder)

// WithRegistry sets the node types available to Add. Defaults to nodes.Builtin().
func WithRegistry(r *nodes.Registry) Option {
	return func(b *Builder) {
		b.registry = r
	}
}

// New creates a new graph builder.
func New(opts ...Option) *Builder {
	b := &Builder{
		nodes: make(map[string]*NodeBuilder),
	}
	for _, opt := range opts {
		opt(b)
	}
	if b.registry == nil {
		b.registry = nodes.Builtin()
	}
	return b
}

// Add declares a node by its full path ("loop.index" is the child "index"
// of "loop"). If the node already exists, it returns the existing builder.
// Parents must be added before their children.
func (b *Builder) Add(path, typeName string) *NodeBuilder {
	if nb, ok := b.nodes[path]; ok {
		return nb
	}
	nb := &NodeBuilder{
		path:     path,
		typeName: typeName,
		params:   make(map[string]any),
		values:   make(map[string]string),
		builder:  b,
	}
	b.nodes[path] = nb
	b.order = append(b.order, path)
	return nb
}

// Connect declares a connection between two attribute paths.
func (b *Builder) Connect(from, to string) *Builder {
	b.links = append(b.links, link{from: from, to: to})
	return b
}

// Build creates the graph. Nodes are created in declaration order, then
// presets are enabled, local values written and connections made. Every
// failing step is reported; the graph is returned only when all succeed.
func (b *Builder) Build(opts ...graph.Option) (*graph.Graph, error) {
	g := graph.New(opts...)
	var errs []error

	for _, path := range b.order {
		nb := b.nodes[path]
		var parent *graph.Node
		name := path
		if i := strings.LastIndexByte(path, '.'); i >= 0 {
			p, err := g.FindNode(path[:i])
			if err != nil {
				errs = append(errs, fmt.Errorf("node %q: parent: %w", path, err))
				continue
			}
			parent, name = p, path[i+1:]
		}
		n, err := b.registry.Add(g, parent, name, nb.typeName, nb.params)
		if err != nil {
			errs = append(errs, fmt.Errorf("node %q: %w", path, err))
			continue
		}
		if nb.preset != "" {
			if err := n.EnablePreset(nb.preset); err != nil {
				errs = append(errs, fmt.Errorf("node %q: %w", path, err))
			}
		}
	}

	for _, path := range b.order {
		for _, attr := range b.nodes[path].valueOrder {
			full := path + "." + attr
			a, err := g.FindAttribute(full)
			if err != nil {
				errs = append(errs, fmt.Errorf("value %q: %w", full, err))
				continue
			}
			if err := a.SetValueFromString(b.nodes[path].values[attr]); err != nil {
				errs = append(errs, err)
			}
		}
	}

	for _, l := range b.links {
		if err := connect(g, l.from, l.to); err != nil {
			errs = append(errs, err)
		}
	}

	if err := errors.Join(errs...); err != nil {
		return nil, fmt.Errorf("failed to build graph: %w", err)
	}
	return g, nil
}

func connect(g *graph.Graph, from, to string) error {
	src, err := g.FindAttribute(from)
	if err != nil {
		return fmt.Errorf("connect %s -> %s: %w", from, to, err)
	}
	dst, err := g.FindAttribute(to)
	if err != nil {
		return fmt.Errorf("connect %s -> %s: %w", from, to, err)
	}
	if err := g.Connect(src, dst); err != nil {
		return fmt.Errorf("connect %s -> %s: %w", from, to, err)
	}
	return nil
}
