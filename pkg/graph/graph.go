package graph

import (
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"sync/atomic"

	"github.com/aretw0/loom/internal/logging"
	"github.com/aretw0/loom/pkg/domain"
	"github.com/aretw0/loom/pkg/value"
)

// Graph owns every node and attribute of one dataflow document.
//
// A Graph is not safe for concurrent use. Structural edits, reads through
// Attribute.Value and Evaluate must be serialized by the caller; the parallel
// mode only fans out work internally while Evaluate is running.
type Graph struct {
	nodes arena[Node]
	attrs arena[Attribute]
	root  *Node

	logger      *slog.Logger
	hooks       domain.LifecycleHooks
	parallelism int
	sim         Simulation

	dirtyDepth   int
	dirtyCount   int
	doneHandlers []*doneHandler
	nextHandler  int

	evaluations atomic.Int64
}

type doneHandler struct {
	id int
	fn func()
}

// Option configures a Graph.
type Option func(*Graph)

// WithLogger sets the logger used for skipped evaluations, resolution
// rejections and recovered panics.
func WithLogger(logger *slog.Logger) Option {
	return func(g *Graph) {
		if logger != nil {
			g.logger = logger
		}
	}
}

// WithParallelism lets Evaluate run up to n independent nodes at once.
// Values below 2 keep evaluation on the calling goroutine.
func WithParallelism(n int) Option {
	return func(g *Graph) {
		g.parallelism = n
	}
}

// WithSimulation attaches the storage surfaced to callbacks through
// EvalContext.Simulation.
func WithSimulation(sim Simulation) Option {
	return func(g *Graph) {
		g.sim = sim
	}
}

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(g *Graph) {
		g.hooks = hooks
	}
}

// New creates an empty graph holding only the root node.
func New(opts ...Option) *Graph {
	g := &Graph{
		logger:      logging.NewNop(),
		parallelism: 1,
	}
	for _, opt := range opts {
		opt(g)
	}
	g.root = g.newNode("", NodeID{}, nil)
	g.root.updateEnabled = false
	return g
}

// Root is the unnamed top-level container.
func (g *Graph) Root() *Node { return g.root }

// Logger returns the graph logger.
func (g *Graph) Logger() *slog.Logger { return g.logger }

// SetSimulation replaces the simulation storage.
func (g *Graph) SetSimulation(sim Simulation) { g.sim = sim }

// Simulation returns the attached storage, or nil.
func (g *Graph) Simulation() Simulation { return g.sim }

// Evaluations counts node evaluation passes since the graph was created.
func (g *Graph) Evaluations() int64 { return g.evaluations.Load() }

func (g *Graph) node(id NodeID) *Node { return g.nodes.get(id.index, id.gen) }

func (g *Graph) attr(id AttrID) *Attribute { return g.attrs.get(id.index, id.gen) }

// Node resolves a handle; stale handles return nil.
func (g *Graph) Node(id NodeID) *Node { return g.node(id) }

// Attribute resolves a handle; stale handles return nil.
func (g *Graph) Attribute(id AttrID) *Attribute { return g.attr(id) }

func (g *Graph) newNode(name string, parent NodeID, behavior any) *Node {
	n := &Node{
		g:             g,
		name:          name,
		parent:        parent,
		behavior:      behavior,
		byName:        make(map[string]AttrID),
		affects:       make(map[AttrID][]AttrID),
		affectedBy:    make(map[AttrID][]AttrID),
		presets:       make(map[string]map[AttrID]value.Kind),
		updateEnabled: true,
	}
	idx, gen := g.nodes.add(n)
	n.id = NodeID{index: idx, gen: gen}
	return n
}

// AddNode creates a node under parent (the root when nil). behavior supplies
// the evaluation callbacks; when it implements Initializer, Init runs before
// AddNode returns and a failure removes the node again.
func (g *Graph) AddNode(name string, parent *Node, behavior any) (*Node, error) {
	if parent == nil {
		parent = g.root
	}
	if !parent.alive() {
		return nil, fmt.Errorf("add node %q: %w", name, domain.ErrStaleHandle)
	}
	if name == "" || strings.ContainsRune(name, '.') {
		return nil, fmt.Errorf("add node %q: invalid name", name)
	}
	if parent.Child(name) != nil {
		return nil, fmt.Errorf("add node %q under %q: %w", name, parent.FullName(), domain.ErrDuplicateName)
	}

	n := g.newNode(name, parent.id, behavior)
	parent.children = append(parent.children, n.id)

	if init, ok := behavior.(Initializer); ok {
		if err := init.Init(n); err != nil {
			g.RemoveNode(n)
			return nil, fmt.Errorf("init node %q: %w", name, err)
		}
	}
	g.logger.Debug("node added", "node", n.FullName(), "type", n.Type())
	return n, nil
}

// RemoveNode destroys n, its children and every attribute they own. All
// connections touching those attributes are dropped and the affected
// specialization components are resolved again.
func (g *Graph) RemoveNode(n *Node) {
	if n == nil || !n.alive() || n == g.root {
		return
	}
	g.beginDirty()
	defer g.endDirty()

	for _, c := range n.Children() {
		g.RemoveNode(c)
	}

	var touched []*Attribute
	for _, a := range n.Attributes() {
		touched = append(touched, g.detachAttribute(a)...)
	}
	if p := n.Parent(); p != nil {
		p.children = slices.DeleteFunc(p.children, func(id NodeID) bool { return id == n.id })
		if p.slicer == n.id {
			p.slicer = NodeID{}
		}
	}
	g.nodes.remove(n.id.index, n.id.gen)
	g.reresolve(touched...)
}

// FindNode resolves a dotted path relative to the root, e.g. "loop.index".
func (g *Graph) FindNode(path string) (*Node, error) {
	n := g.root
	if path == "" {
		return n, nil
	}
	for _, part := range strings.Split(path, ".") {
		if n = n.Child(part); n == nil {
			return nil, fmt.Errorf("node %q: %w", path, domain.ErrNotFound)
		}
	}
	return n, nil
}

// FindAttribute resolves "node.path.attr".
func (g *Graph) FindAttribute(path string) (*Attribute, error) {
	cut := strings.LastIndexByte(path, '.')
	if cut < 0 {
		return nil, fmt.Errorf("attribute %q: %w", path, domain.ErrNotFound)
	}
	n, err := g.FindNode(path[:cut])
	if err != nil {
		return nil, fmt.Errorf("attribute %q: %w", path, domain.ErrNotFound)
	}
	a := n.Attribute(path[cut+1:])
	if a == nil {
		return nil, fmt.Errorf("attribute %q: %w", path, domain.ErrNotFound)
	}
	return a, nil
}

// Nodes lists every node below the root in depth-first order.
func (g *Graph) Nodes() []*Node {
	var out []*Node
	var walk func(n *Node)
	walk = func(n *Node) {
		for _, c := range n.Children() {
			out = append(out, c)
			walk(c)
		}
	}
	walk(g.root)
	return out
}

// Connections lists every (source, destination) edge in node order.
func (g *Graph) Connections() [][2]*Attribute {
	var out [][2]*Attribute
	for _, n := range g.Nodes() {
		for _, a := range n.Attributes() {
			if src := a.Source(); src != nil {
				out = append(out, [2]*Attribute{src, a})
			}
		}
	}
	return out
}

// OnDirtyingDone registers fn to run once at the end of every outermost
// dirtying operation that flipped at least one attribute. The returned
// function unregisters it.
func (g *Graph) OnDirtyingDone(fn func()) (cancel func()) {
	g.nextHandler++
	h := &doneHandler{id: g.nextHandler, fn: fn}
	g.doneHandlers = append(g.doneHandlers, h)
	return func() {
		g.doneHandlers = slices.DeleteFunc(g.doneHandlers, func(x *doneHandler) bool { return x.id == h.id })
	}
}

// Batch runs fn as one dirtying operation: listeners registered with
// OnDirtyingDone fire at most once, after fn returns.
func (g *Graph) Batch(fn func()) {
	g.beginDirty()
	defer g.endDirty()
	fn()
}
