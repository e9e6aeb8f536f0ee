package nodes

import (
	"errors"

	"github.com/aretw0/loom/pkg/graph"
)

// Stateful nodes read simulation storage. Hosts dirty their step outputs
// after every simulation step.
type Stateful interface {
	StepOutputs() []*graph.Attribute
}

// DirtyStateful dirties the step outputs of every stateful node of g in one
// batch.
func DirtyStateful(g *graph.Graph) {
	g.Batch(func() {
		for _, n := range g.Nodes() {
			if s, ok := n.Behavior().(Stateful); ok {
				for _, a := range s.StepOutputs() {
					a.SetDirty()
				}
			}
		}
	})
}

// SimulationParams are the registry parameters of the simulation nodes.
type SimulationParams struct {
	Key string `mapstructure:"key"`
}

var errMissingKey = errors.New("simulation key is required")

func simulationKey(params map[string]any) (string, error) {
	var p SimulationParams
	if err := decodeParams(params, &p); err != nil {
		return "", err
	}
	if p.Key == "" {
		return "", errMissingKey
	}
	return p.Key, nil
}

func newSimulationStepFromParams(params map[string]any) (any, error) {
	key, err := simulationKey(params)
	if err != nil {
		return nil, err
	}
	return &SimulationStep{Key: key}, nil
}

func newSimulationCommitFromParams(params map[string]any) (any, error) {
	key, err := simulationKey(params)
	if err != nil {
		return nil, err
	}
	return &SimulationCommit{Key: key}, nil
}

// SimulationStep publishes on "previous" the value committed under Key by
// the previous step, or "initial" before the first commit or without a
// simulation.
type SimulationStep struct {
	Key string

	initial, previous *graph.Attribute
}

func (s *SimulationStep) TypeName() string { return TypeSimulationStep }

func (s *SimulationStep) Init(n *graph.Node) error {
	var err error
	if s.initial, err = n.AddInput("initial"); err != nil {
		return err
	}
	if s.previous, err = n.AddOutput("previous"); err != nil {
		return err
	}
	if err := n.SetAttributeAffect(s.initial, s.previous); err != nil {
		return err
	}
	return n.SetSpecializationLink(s.initial, s.previous, graph.SameKind)
}

func (s *SimulationStep) Initial() *graph.Attribute  { return s.initial }
func (s *SimulationStep) Previous() *graph.Attribute { return s.previous }

func (s *SimulationStep) StepOutputs() []*graph.Attribute {
	return []*graph.Attribute{s.previous}
}

func (s *SimulationStep) Update(ctx *graph.EvalContext) {
	out := s.previous.OutValue()
	if sim := ctx.Simulation(); sim != nil {
		if v, ok := sim.Load(s.Key); ok && v.Kind() == out.Kind() {
			out.CopyFrom(v)
			return
		}
	}
	out.CopyFrom(s.initial.Value())
}

// SimulationCommit stores "value" under Key whenever it is evaluated and
// passes it through on "out".
type SimulationCommit struct {
	Key string

	in, out *graph.Attribute
}

func (s *SimulationCommit) TypeName() string { return TypeSimulationCommit }

func (s *SimulationCommit) Init(n *graph.Node) error {
	var err error
	if s.in, err = n.AddInput("value"); err != nil {
		return err
	}
	if s.out, err = n.AddOutput("out"); err != nil {
		return err
	}
	if err := n.SetAttributeAffect(s.in, s.out); err != nil {
		return err
	}
	return n.SetSpecializationLink(s.in, s.out, graph.SameKind)
}

func (s *SimulationCommit) In() *graph.Attribute  { return s.in }
func (s *SimulationCommit) Out() *graph.Attribute { return s.out }

func (s *SimulationCommit) Update(ctx *graph.EvalContext) {
	v := s.in.Value()
	if sim := ctx.Simulation(); sim != nil {
		sim.Store(s.Key, v)
	}
	s.out.OutValue().CopyFrom(v)
}
