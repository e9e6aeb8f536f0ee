/*
Package dsl provides a fluent builder for programmatically constructing Loom graphs.

It allows developers to declare nodes, connections, local values and presets with a
type-safe, chainable API instead of wiring attributes by hand. Nodes are created through
a nodes.Registry, so every registered type (built-in or custom) is available by name.
Errors are collected and reported together by Build.

Example usage:

	package main

	import (
		"github.com/aretw0/loom/pkg/dsl"
	)

	func main() {
		b := dsl.New()

		b.Add("a", "constant").Param("value", "[1] 3")
		b.Add("sum", "add").
			From("in0", "a.out").
			Set("in1", "[2] 3")

		g, err := b.Build()
		// ... g.FindAttribute("sum.out")
	}
*/
package dsl
