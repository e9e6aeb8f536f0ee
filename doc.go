/*
Package loom is a lazy, incremental dataflow engine for node graphs.

Graphs are made of typed nodes connected through attributes. Values are pulled on demand:
reading a dirty output evaluates just the upstream nodes whose inputs changed, and every
clean value is reused. Attribute kinds are inferred across connections, so generic nodes
specialize themselves to whatever is wired into them.

# Concept

A scene (YAML or JSON) declares nodes, their parameters, connections and the outputs a host
cares about. The Engine builds the graph once and then serves reads and edits. Loops run
their body once per slice, and simulation nodes carry values from one step to the next
through sessions persisted in a ports.SimulationStore (in memory or Redis).

# Key Features

  - Lazy Evaluation: Dirty flags propagate on edit; work happens only on read.
  - Specialization: Kinds narrow through links and connections until each attribute resolves.
  - Slicing: Loop containers evaluate their sliceable children once per iteration.
  - Durable Simulation: Step state survives restarts and is guarded by per-session locks.

# Usage

	package main

	import (
		"context"
		"fmt"
		"log"

		"github.com/aretw0/loom"
	)

	func main() {
		eng, err := loom.Open("scene.yaml")
		if err != nil {
			log.Fatal(err)
		}

		ctx := context.Background()
		if err := eng.Set(ctx, "offset.in1", "[10] 2"); err != nil {
			log.Fatal(err)
		}
		values, err := eng.Evaluate(ctx)
		if err != nil {
			log.Fatal(err)
		}
		fmt.Println(values)

		// Simulation: each call advances the session by one step.
		res, err := eng.Step(ctx, "run-1")
		if err != nil {
			log.Fatal(err)
		}
		fmt.Println(res.Step, res.Outputs)
	}
*/
package loom
