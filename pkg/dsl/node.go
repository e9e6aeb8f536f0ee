package dsl

import "github.com/aretw0/loom/pkg/graph"

// NodeBuilder provides a fluent API for configuring a node.
type NodeBuilder struct {
	path     string
	typeName string
	params   map[string]any
	preset   string

	values     map[string]string
	valueOrder []string

	builder *Builder
}

// Path returns the full path of the node.
func (n *NodeBuilder) Path() string { return n.path }

// Param sets a registry parameter of the node type.
func (n *NodeBuilder) Param(key string, value any) *NodeBuilder {
	n.params[key] = value
	return n
}

// Params merges several registry parameters.
func (n *NodeBuilder) Params(params map[string]any) *NodeBuilder {
	for k, v := range params {
		n.params[k] = v
	}
	return n
}

// Set writes a value literal (e.g. "[1.5] 3") to an unconnected input.
func (n *NodeBuilder) Set(attr, literal string) *NodeBuilder {
	if _, ok := n.values[attr]; !ok {
		n.valueOrder = append(n.valueOrder, attr)
	}
	n.values[attr] = literal
	return n
}

// Preset enables a specialization preset once the node exists.
func (n *NodeBuilder) Preset(name string) *NodeBuilder {
	n.preset = name
	return n
}

// From connects the attribute path src to the input attr of this node.
func (n *NodeBuilder) From(attr, src string) *NodeBuilder {
	n.builder.Connect(src, n.path+"."+attr)
	return n
}

// To connects the output attr of this node to the attribute path dst.
func (n *NodeBuilder) To(attr, dst string) *NodeBuilder {
	n.builder.Connect(n.path+"."+attr, dst)
	return n
}

// Add returns to the graph builder to declare the next node.
func (n *NodeBuilder) Add(path, typeName string) *NodeBuilder {
	return n.builder.Add(path, typeName)
}

// Build finishes the chain and builds the graph.
func (n *NodeBuilder) Build(opts ...graph.Option) (*graph.Graph, error) {
	return n.builder.Build(opts...)
}
