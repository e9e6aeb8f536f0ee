/*
Package nodes is a small library of node behaviors built on the graph
authoring contract: constants, numeric operations, loops, array building,
conditional selection and simulation state.

Behaviors are plain structs passed to graph.AddNode. A Registry maps type
names to factories so scenes and the DSL can create nodes by name with
loosely typed parameters.

	reg := nodes.Builtin()
	add, _ := reg.Add(g, nil, "sum", "add", nil)
	_ = add
*/
package nodes
