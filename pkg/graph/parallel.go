package graph

import (
	"cmp"
	"context"
	"slices"

	"golang.org/x/sync/errgroup"
)

// plan groups the nodes that must run before targets are clean into levels.
// A node is placed after every planned node it reads from, clean or not, so
// no worker reads an attribute another worker may be writing.
func (g *Graph) plan(targets []*Attribute) [][]*Node {
	need := make(map[*Node]bool)
	var collectNode func(n *Node)
	collectAttr := func(a *Attribute) {
		for a != nil && a.dirty {
			if a.computed() {
				collectNode(g.node(a.owner))
				return
			}
			a = a.Source()
		}
	}
	collectNode = func(n *Node) {
		if n == nil || need[n] {
			return
		}
		need[n] = true
		for _, in := range n.Inputs() {
			if !in.computed() {
				collectAttr(in)
			}
		}
		if n.sliceable {
			if s := g.slicerFor(n); s != nil && s != n {
				collectNode(s)
			}
		}
	}
	for _, a := range targets {
		if a.alive() {
			collectAttr(a)
		}
	}

	upstream := func(n *Node) []*Node {
		var out []*Node
		for _, in := range n.Inputs() {
			if in.computed() {
				continue
			}
			for a := in.Source(); a != nil; a = a.Source() {
				if a.computed() {
					if o := g.node(a.owner); need[o] && o != n {
						out = append(out, o)
					}
					break
				}
			}
		}
		if n.sliceable {
			if s := g.slicerFor(n); s != nil && s != n && need[s] {
				out = append(out, s)
			}
		}
		return out
	}

	depth := make(map[*Node]int, len(need))
	onStack := make(map[*Node]bool)
	var depthOf func(n *Node) int
	depthOf = func(n *Node) int {
		if d, ok := depth[n]; ok {
			return d
		}
		if onStack[n] {
			return 0
		}
		onStack[n] = true
		d := 0
		for _, u := range upstream(n) {
			d = max(d, depthOf(u)+1)
		}
		onStack[n] = false
		depth[n] = d
		return d
	}

	var levels [][]*Node
	for n := range need {
		d := depthOf(n)
		for len(levels) <= d {
			levels = append(levels, nil)
		}
		levels[d] = append(levels[d], n)
	}
	for _, level := range levels {
		slices.SortFunc(level, func(a, b *Node) int { return cmp.Compare(a.FullName(), b.FullName()) })
	}
	return levels
}

func (g *Graph) evaluateParallel(ctx context.Context, targets []*Attribute) error {
	opt := evalOptions{ctx: ctx}
	for i, level := range g.plan(targets) {
		for _, n := range level {
			g.settleInputs(n, opt)
		}
		eg, egctx := errgroup.WithContext(ctx)
		eg.SetLimit(g.parallelism)
		for _, n := range level {
			eg.Go(func() error {
				if err := egctx.Err(); err != nil {
					return err
				}
				g.runPlanned(n, opt)
				return nil
			})
		}
		if err := eg.Wait(); err != nil {
			return err
		}
		g.logger.Debug("level evaluated", "level", i, "nodes", len(level))
	}
	return nil
}

// settleInputs copies the plain inputs of n from their sources on the
// coordinating goroutine. Input-to-input chains may cross nodes of the same
// level, so workers must find them already settled and only read them.
func (g *Graph) settleInputs(n *Node, opt evalOptions) {
	var settle func(a *Attribute)
	settle = func(a *Attribute) {
		if !a.dirty || a.computed() {
			return
		}
		if src := a.Source(); src != nil {
			settle(src)
		}
		g.pull(a, opt)
	}
	for _, in := range n.Inputs() {
		settle(in)
	}
}

// runPlanned evaluates n without recursing. Nodes that cannot be updated
// (slicers) only get their inputs cleaned so ComputeSlices sees fresh data.
func (g *Graph) runPlanned(n *Node, opt evalOptions) {
	if n.updateEnabled {
		g.evaluateNode(n, opt)
		return
	}
	for _, in := range n.Inputs() {
		g.pull(in, opt)
	}
}
