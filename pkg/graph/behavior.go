package graph

import (
	"context"
	"log/slog"

	"github.com/aretw0/loom/pkg/value"
)

// Node authoring contract. A behavior passed to Graph.AddNode implements any
// subset of these interfaces.

// Updater computes the node outputs in one call.
type Updater interface {
	Update(ctx *EvalContext)
}

// SliceUpdater computes one slice of the node outputs. Sliceable nodes get
// one call per slice.
type SliceUpdater interface {
	UpdateSlice(ctx *EvalContext)
}

// SpecializationObserver is told when an attribute of the node is retyped,
// typically to pick the kernel used by the next evaluation.
type SpecializationObserver interface {
	AttributeSpecializationChanged(a *Attribute)
}

// LinkNarrower narrows links declared without a rule. sets gives the
// in-progress candidate set of any attribute of the node.
type LinkNarrower interface {
	NarrowLink(a, b *Attribute, sets KindSets) (value.KindSet, value.KindSet)
}

// DirtyObserver is told when an attribute of the node flips to dirty.
type DirtyObserver interface {
	AttributeDirtied(a *Attribute)
}

// Slicer computes the iteration count of the loop it drives. Its inputs are
// clean when ComputeSlices runs.
type Slicer interface {
	ComputeSlices(n *Node) int
}

// Simulation is storage that survives across evaluations, keyed by string.
// Implementations must be safe for concurrent use.
type Simulation interface {
	Load(key string) (*value.Value, bool)
	Store(key string, v *value.Value)
}

// EvalContext is handed to evaluation callbacks.
type EvalContext struct {
	ctx       context.Context
	node      *Node
	slice     int
	slices    int
	keepDirty map[AttrID]bool
}

// Context is the context of the Evaluate call, or Background for reads.
func (c *EvalContext) Context() context.Context { return c.ctx }

// Node is the node being evaluated.
func (c *EvalContext) Node() *Node { return c.node }

// Slice is the slice being computed, 0 for whole-value updates.
func (c *EvalContext) Slice() int { return c.slice }

// Slices is the slice count of this evaluation pass.
func (c *EvalContext) Slices() int { return c.slices }

// Simulation returns the graph's simulation storage, or nil.
func (c *EvalContext) Simulation() Simulation { return c.node.g.sim }

func (c *EvalContext) Logger() *slog.Logger {
	return c.node.g.logger.With("node", c.node.FullName())
}

// KeepDirty leaves an output dirty after this pass, so the next read of it
// evaluates the node again.
func (c *EvalContext) KeepDirty(a *Attribute) {
	if c.keepDirty == nil {
		c.keepDirty = make(map[AttrID]bool)
	}
	c.keepDirty[a.id] = true
}
