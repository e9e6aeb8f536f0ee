// Package scene loads graph descriptions from YAML or JSON files and builds
// them through the dsl builder.
package scene

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/aretw0/loom/pkg/dsl"
	"github.com/aretw0/loom/pkg/graph"
	"github.com/aretw0/loom/pkg/nodes"
	"gopkg.in/yaml.v3"
)

// Scene is a serializable graph description.
type Scene struct {
	Name        string       `yaml:"name" json:"name"`
	Description string       `yaml:"description,omitempty" json:"description,omitempty"`
	Nodes       []Node       `yaml:"nodes" json:"nodes"`
	Connections []Connection `yaml:"connections,omitempty" json:"connections,omitempty"`
	// Outputs lists the attribute paths a host evaluates and reports.
	Outputs []string `yaml:"outputs,omitempty" json:"outputs,omitempty"`
}

// Node declares one node and, recursively, its children.
type Node struct {
	Name     string            `yaml:"name" json:"name"`
	Type     string            `yaml:"type" json:"type"`
	Params   map[string]any    `yaml:"params,omitempty" json:"params,omitempty"`
	Values   map[string]string `yaml:"values,omitempty" json:"values,omitempty"`
	Preset   string            `yaml:"preset,omitempty" json:"preset,omitempty"`
	Children []Node            `yaml:"children,omitempty" json:"children,omitempty"`
}

// Connection joins two attribute paths.
type Connection struct {
	From string `yaml:"from" json:"from"`
	To   string `yaml:"to" json:"to"`
}

// Load reads a scene file. Files ending in ".json" are decoded as JSON,
// everything else as YAML.
func Load(path string) (*Scene, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scene: %w", err)
	}
	if strings.ToLower(filepath.Ext(path)) == ".json" {
		var s Scene
		if err := json.Unmarshal(data, &s); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", filepath.Base(path), err)
		}
		return &s, nil
	}
	return Parse(data)
}

// Parse decodes a YAML scene. Unknown fields are rejected.
func Parse(data []byte) (*Scene, error) {
	var s Scene
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&s); err != nil {
		return nil, fmt.Errorf("failed to parse scene: %w", err)
	}
	return &s, nil
}

// Marshal encodes the scene as YAML.
func (s *Scene) Marshal() ([]byte, error) {
	return yaml.Marshal(s)
}

// Builder translates the scene into a dsl builder using reg.
func (s *Scene) Builder(reg *nodes.Registry) *dsl.Builder {
	b := dsl.New(dsl.WithRegistry(reg))
	var walk func(prefix string, ns []Node)
	walk = func(prefix string, ns []Node) {
		for _, n := range ns {
			path := prefix + n.Name
			nb := b.Add(path, n.Type).Params(n.Params)
			if n.Preset != "" {
				nb.Preset(n.Preset)
			}
			for _, attr := range sortedKeys(n.Values) {
				nb.Set(attr, n.Values[attr])
			}
			walk(path+".", n.Children)
		}
	}
	walk("", s.Nodes)
	for _, c := range s.Connections {
		b.Connect(c.From, c.To)
	}
	return b
}

// Build creates the graph described by the scene.
func (s *Scene) Build(reg *nodes.Registry, opts ...graph.Option) (*graph.Graph, error) {
	g, err := s.Builder(reg).Build(opts...)
	if err != nil {
		return nil, fmt.Errorf("scene %q: %w", s.Name, err)
	}
	return g, nil
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
