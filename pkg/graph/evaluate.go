package graph

import (
	"context"
	"time"

	"github.com/aretw0/loom/pkg/domain"
	"github.com/aretw0/loom/pkg/value"
)

type evalOptions struct {
	ctx context.Context
	// recurse lets a pull evaluate upstream nodes. Parallel workers run with
	// it off and rely on the plan having cleaned upstream first.
	recurse bool
}

func (o evalOptions) context() context.Context {
	if o.ctx == nil {
		return context.Background()
	}
	return o.ctx
}

// Evaluate pulls attrs, or every output of the graph when none are given.
// With WithParallelism the dirty upstream closure is evaluated level by level
// on a bounded worker pool. Cancellation is checked between nodes; a node
// that already started always runs to completion.
func (g *Graph) Evaluate(ctx context.Context, attrs ...*Attribute) error {
	if len(attrs) == 0 {
		for _, n := range g.Nodes() {
			attrs = append(attrs, n.Outputs()...)
		}
	}
	if g.parallelism > 1 {
		if err := g.evaluateParallel(ctx, attrs); err != nil {
			return err
		}
	}
	opt := evalOptions{ctx: ctx, recurse: true}
	for _, a := range attrs {
		if err := ctx.Err(); err != nil {
			return err
		}
		if a.alive() {
			g.pull(a, opt)
		}
	}
	return nil
}

// pull makes a clean when possible. Computed attributes evaluate their node,
// connected inputs copy their source, local inputs are clean by definition.
func (g *Graph) pull(a *Attribute, opt evalOptions) {
	if !a.dirty {
		return
	}
	n := g.node(a.owner)
	if n == nil {
		return
	}
	if a.computed() {
		if opt.recurse {
			g.evaluateNode(n, opt)
		}
		return
	}
	if src := a.Source(); src != nil {
		if opt.recurse {
			g.pull(src, opt)
		}
		if src.dirty && !src.volatile {
			return
		}
		a.val.CopyFrom(src.val)
	}
	a.dirty = false
}

// evaluateNode runs the node callback once per slice when every input is
// clean and every attribute is resolved. Otherwise the computed attributes
// simply stay dirty.
func (g *Graph) evaluateNode(n *Node, opt evalOptions) {
	if !n.updateEnabled || n.evaluating {
		return
	}
	n.evaluating = true
	defer func() { n.evaluating = false }()

	attrs := n.Attributes()
	for _, a := range attrs {
		if a.dir == Input && !a.computed() {
			g.pull(a, opt)
		}
	}
	if reason := blocked(attrs); reason != "" {
		g.skip(n, reason)
		return
	}

	count := 1
	if n.sliceable {
		count = g.sliceCount(n, opt)
	}
	ctx := &EvalContext{ctx: opt.context(), node: n, slices: count}
	start := time.Now()
	if !g.run(n, attrs, ctx) {
		g.skip(n, "panic")
		return
	}

	for _, a := range attrs {
		if !a.computed() {
			continue
		}
		a.dirty = ctx.keepDirty[a.id]
		a.volatile = a.dirty
	}
	g.evaluations.Add(1)
	if g.hooks.OnNodeEvaluated != nil {
		g.hooks.OnNodeEvaluated(&domain.NodeEvent{
			EventBase: domain.EventBase{Timestamp: time.Now(), Type: domain.EventNodeEvaluated},
			Node:      n.FullName(),
			NodeType:  n.Type(),
			Slices:    count,
			Duration:  time.Since(start),
		})
	}
}

func blocked(attrs []*Attribute) string {
	for _, a := range attrs {
		if a.dir == Input && !a.computed() && a.dirty {
			return "dirty input " + a.name
		}
		if a.val.Kind() == value.Any {
			return "unresolved " + a.name
		}
	}
	return ""
}

// run invokes the callbacks. A panic is recovered and logged; the node then
// counts as skipped.
func (g *Graph) run(n *Node, attrs []*Attribute, ctx *EvalContext) (ok bool) {
	defer func() {
		if r := recover(); r != nil {
			g.logger.Error("node callback panicked", "node", n.FullName(), "panic", r)
			ok = false
		}
	}()

	whole, hasWhole := n.behavior.(Updater)
	perSlice, hasSlice := n.behavior.(SliceUpdater)
	if !n.sliceable {
		switch {
		case hasWhole:
			whole.Update(ctx)
		case hasSlice:
			perSlice.UpdateSlice(ctx)
		}
		return true
	}

	for _, a := range attrs {
		a.val.ResizeSlices(ctx.slices)
	}
	for i := 0; i < ctx.slices; i++ {
		ctx.slice = i
		switch {
		case hasSlice:
			perSlice.UpdateSlice(ctx)
		case hasWhole:
			whole.Update(ctx)
		}
	}
	return true
}

func (g *Graph) skip(n *Node, reason string) {
	g.logger.Debug("evaluation skipped", "node", n.FullName(), "reason", reason)
	if g.hooks.OnNodeSkipped != nil {
		g.hooks.OnNodeSkipped(&domain.NodeEvent{
			EventBase: domain.EventBase{Timestamp: time.Now(), Type: domain.EventNodeSkipped},
			Node:      n.FullName(),
			NodeType:  n.Type(),
			Reason:    reason,
		})
	}
}
