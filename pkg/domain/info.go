package domain

// AttributeInfo is a read-only view of an attribute for hosts and tools.
type AttributeInfo struct {
	Path      string   `json:"path"`
	Name      string   `json:"name"`
	Direction string   `json:"direction"`
	Kind      string   `json:"kind"`
	Allowed   []string `json:"allowed,omitempty"`
	Dirty     bool     `json:"dirty"`
	Dynamic   bool     `json:"dynamic,omitempty"`
	// Source is the path of the upstream attribute, empty when unconnected.
	Source string `json:"source,omitempty"`
	// Value is the current value literal; it is not recomputed.
	Value  string `json:"value,omitempty"`
	Slices int    `json:"slices"`
}

// NodeInfo is a read-only view of a node and its attributes.
type NodeInfo struct {
	Path      string `json:"path"`
	Name      string `json:"name"`
	Type      string `json:"type"`
	Parent    string `json:"parent,omitempty"`
	Sliceable bool   `json:"sliceable,omitempty"`
	// Slices is the slice count of the last evaluation.
	Slices     int             `json:"slices"`
	Preset     string          `json:"preset,omitempty"`
	Attributes []AttributeInfo `json:"attributes"`
}

// Dirty reports whether any output of the node is dirty.
func (n NodeInfo) Dirty() bool {
	for _, a := range n.Attributes {
		if a.Direction == "output" && a.Dirty {
			return true
		}
	}
	return false
}
