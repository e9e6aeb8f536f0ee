package loom

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"

	"github.com/aretw0/loom/internal/logging"
	presentation "github.com/aretw0/loom/internal/presentation/graph"
	"github.com/aretw0/loom/pkg/adapters/memory"
	"github.com/aretw0/loom/pkg/domain"
	"github.com/aretw0/loom/pkg/graph"
	"github.com/aretw0/loom/pkg/nodes"
	"github.com/aretw0/loom/pkg/observability"
	"github.com/aretw0/loom/pkg/ports"
	"github.com/aretw0/loom/pkg/scene"
	"github.com/aretw0/loom/pkg/simulation"
)

// Engine is the high-level entry point for the Loom library.
// It owns one graph built from a scene and serializes every access to it,
// so hosts (CLI, HTTP) can share it between goroutines.
type Engine struct {
	mu    sync.Mutex
	graph *graph.Graph
	scene *scene.Scene

	registry    *nodes.Registry
	hooks       domain.LifecycleHooks
	metrics     *observability.Metrics
	parallelism int
	store       ports.SimulationStore
	locker      ports.DistributedLocker
	sessions    *simulation.Manager
	logger      *slog.Logger
	Name        string
}

// Option defines a functional option for configuring the Engine.
type Option func(*Engine)

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(e *Engine) {
		e.hooks = hooks
	}
}

// WithMetrics records evaluator activity in m, next to any lifecycle hooks.
func WithMetrics(m *observability.Metrics) Option {
	return func(e *Engine) {
		e.metrics = m
	}
}

// WithRegistry sets the node types scenes can use. Defaults to nodes.Builtin().
func WithRegistry(r *nodes.Registry) Option {
	return func(e *Engine) {
		e.registry = r
	}
}

// WithParallelism evaluates independent nodes on up to n goroutines.
func WithParallelism(n int) Option {
	return func(e *Engine) {
		e.parallelism = n
	}
}

// WithSimulationStore persists simulation sessions. Defaults to an in-memory store.
func WithSimulationStore(s ports.SimulationStore) Option {
	return func(e *Engine) {
		e.store = s
	}
}

// WithLocker guards simulation steps with a distributed lock.
func WithLocker(l ports.DistributedLocker) Option {
	return func(e *Engine) {
		e.locker = l
	}
}

// WithLogger sets a custom structured logger for the engine.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// Open loads a scene file and builds an Engine for it.
func Open(path string, opts ...Option) (*Engine, error) {
	s, err := scene.Load(path)
	if err != nil {
		return nil, err
	}
	return New(s, opts...)
}

// New builds the graph described by s.
func New(s *scene.Scene, opts ...Option) (*Engine, error) {
	eng := &Engine{scene: s, Name: s.Name}
	for _, opt := range opts {
		opt(eng)
	}

	if eng.logger == nil {
		eng.logger = logging.NewNop()
	}
	if eng.Name != "" {
		eng.logger = eng.logger.With("graph", eng.Name)
	}
	if eng.registry == nil {
		eng.registry = nodes.Builtin()
	}
	if eng.store == nil {
		eng.store = memory.NewStore()
	}

	hooks := eng.hooks
	if eng.metrics != nil {
		hooks = observability.Chain(eng.metrics.Hooks(), hooks)
	}
	g, err := s.Build(eng.registry,
		graph.WithLogger(eng.logger),
		graph.WithParallelism(eng.parallelism),
		graph.WithLifecycleHooks(hooks),
	)
	if err != nil {
		return nil, err
	}
	eng.graph = g

	managerOpts := []simulation.Option{simulation.WithLogger(eng.logger)}
	if eng.locker != nil {
		managerOpts = append(managerOpts, simulation.WithLocker(eng.locker))
	}
	eng.sessions = simulation.NewManager(eng.store, managerOpts...)

	eng.logger.Debug("engine ready", "nodes", len(g.Nodes()), "parallelism", eng.parallelism)
	return eng, nil
}

// Scene returns the scene the graph was built from.
func (e *Engine) Scene() *scene.Scene { return e.scene }

// Sessions returns the simulation session manager.
func (e *Engine) Sessions() *simulation.Manager { return e.sessions }

// Graph runs fn with exclusive access to the graph.
func (e *Engine) Graph(fn func(g *graph.Graph) error) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return fn(e.graph)
}

// Inspect describes every node without evaluating anything.
func (e *Engine) Inspect() []domain.NodeInfo {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.graph.Inspect()
}

// Mermaid renders the graph as a Mermaid flowchart.
func (e *Engine) Mermaid() string {
	return presentation.GenerateMermaid(e.Inspect())
}

// Get evaluates the attribute at path when dirty and describes it.
func (e *Engine) Get(ctx context.Context, path string) (domain.AttributeInfo, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	a, err := e.graph.FindAttribute(path)
	if err != nil {
		return domain.AttributeInfo{}, err
	}
	if err := e.graph.Evaluate(ctx, a); err != nil {
		return domain.AttributeInfo{}, err
	}
	return a.Info(), nil
}

// Set writes a value literal to the unconnected input at path.
func (e *Engine) Set(ctx context.Context, path, literal string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	a, err := e.graph.FindAttribute(path)
	if err != nil {
		return err
	}
	if err := a.SetValueFromString(literal); err != nil {
		return err
	}
	e.logger.Debug("attribute set", "attr", path, "value", literal)
	return nil
}

// Evaluate pulls the scene outputs (every output when the scene declares
// none) and returns their value literals by path. Outputs that stay dirty
// are reported with an empty literal.
func (e *Engine) Evaluate(ctx context.Context) (map[string]string, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.evaluate(ctx)
}

func (e *Engine) evaluate(ctx context.Context) (map[string]string, error) {
	outs, err := e.scene.ResolveOutputs(e.graph)
	if err != nil {
		return nil, err
	}
	if err := e.graph.Evaluate(ctx, outs...); err != nil {
		return nil, fmt.Errorf("evaluate: %w", err)
	}
	values := make(map[string]string, len(outs))
	for _, a := range outs {
		if a.IsDirty() {
			values[a.FullName()] = ""
			continue
		}
		values[a.FullName()] = a.OutValue().AsString()
	}
	return values, nil
}

// StepResult is the outcome of one simulation step.
type StepResult struct {
	SessionID string            `json:"session_id"`
	Step      int               `json:"step"`
	Outputs   map[string]string `json:"outputs"`
}

// Step runs one simulation step of the session id: the session is restored
// from the store, stateful nodes are dirtied, the outputs are evaluated and
// the session is advanced and saved.
func (e *Engine) Step(ctx context.Context, id string) (*StepResult, error) {
	var outputs map[string]string
	sess, err := e.sessions.Step(ctx, id, func(ctx context.Context, s *simulation.Session) error {
		e.mu.Lock()
		defer e.mu.Unlock()

		e.graph.SetSimulation(s)
		defer e.graph.SetSimulation(nil)
		nodes.DirtyStateful(e.graph)

		var err error
		outputs, err = e.evaluate(ctx)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("step %q: %w", id, err)
	}
	return &StepResult{SessionID: id, Step: sess.Step(), Outputs: outputs}, nil
}

// Reset deletes the stored state of the session id.
func (e *Engine) Reset(ctx context.Context, id string) error {
	return e.sessions.Delete(ctx, id)
}

// Watch streams a JSON message listing the dirty outputs after every
// outermost dirtying operation, until ctx is done.
func (e *Engine) Watch(ctx context.Context) (<-chan string, error) {
	ch := make(chan string, 16)

	e.mu.Lock()
	cancel := e.graph.OnDirtyingDone(func() {
		msg := e.dirtyMessage()
		select {
		case ch <- msg:
		default:
			e.logger.Warn("watch buffer full, dropping notification")
		}
	})
	e.mu.Unlock()

	go func() {
		<-ctx.Done()
		e.mu.Lock()
		cancel()
		e.mu.Unlock()
		close(ch)
	}()
	return ch, nil
}

// dirtyMessage runs inside a dirtying operation, with e.mu held.
func (e *Engine) dirtyMessage() string {
	var dirty []string
	for _, n := range e.graph.Nodes() {
		for _, a := range n.Outputs() {
			if a.IsDirty() {
				dirty = append(dirty, a.FullName())
			}
		}
	}
	data, _ := json.Marshal(map[string][]string{"dirty": dirty})
	return string(data)
}
