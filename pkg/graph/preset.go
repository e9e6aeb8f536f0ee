package graph

import (
	"fmt"
	"maps"
	"slices"

	"github.com/aretw0/loom/pkg/domain"
	"github.com/aretw0/loom/pkg/value"
)

// DefinePreset records a named bundle of per-attribute kinds. Redefining a
// name replaces it; the active preset is applied again when it changes.
func (n *Node) DefinePreset(name string, assign map[*Attribute]value.Kind) error {
	if name == "" {
		return fmt.Errorf("define preset on %q: empty name", n.FullName())
	}
	ids := make(map[AttrID]value.Kind, len(assign))
	for a, k := range assign {
		if !n.owns(a) {
			return fmt.Errorf("define preset %q on %q: %w", name, n.FullName(), domain.ErrForeignAttribute)
		}
		ids[a.id] = k
	}
	if _, ok := n.presets[name]; !ok {
		n.presetOrder = append(n.presetOrder, name)
	}
	prev := n.presets[name]
	n.presets[name] = ids
	if n.preset == name {
		if err := n.applyPreset(name, prev); err != nil {
			n.presets[name] = prev
			return err
		}
	}
	return nil
}

// Presets lists preset names in definition order.
func (n *Node) Presets() []string { return slices.Clone(n.presetOrder) }

// ActivePreset is the enabled preset name, empty when none.
func (n *Node) ActivePreset() string { return n.preset }

// PresetAssignments returns the kinds a preset assigns, keyed by attribute
// name.
func (n *Node) PresetAssignments(name string) (map[string]value.Kind, error) {
	assign, ok := n.presets[name]
	if !ok {
		return nil, fmt.Errorf("preset %q on %q: %w", name, n.FullName(), domain.ErrUnknownPreset)
	}
	out := make(map[string]value.Kind, len(assign))
	for id, k := range assign {
		if a := n.g.attr(id); a != nil {
			out[a.name] = k
		}
	}
	return out, nil
}

// EnablePreset applies every assignment of the preset and then resolves once,
// so no partial bundle is ever propagated. On conflict the previous preset
// stays active and ErrPresetConflict is returned.
func (n *Node) EnablePreset(name string) error {
	if _, ok := n.presets[name]; !ok {
		return fmt.Errorf("enable preset %q on %q: %w", name, n.FullName(), domain.ErrUnknownPreset)
	}
	prev := n.preset
	if prev == name {
		return nil
	}
	if err := n.applyPreset(name, n.presets[prev]); err != nil {
		return err
	}
	n.g.logger.Debug("preset enabled", "node", n.FullName(), "preset", name)
	return nil
}

// DisablePreset drops the active preset and resolves from declared sets.
func (n *Node) DisablePreset() {
	if n.preset == "" {
		return
	}
	prev := n.presets[n.preset]
	n.preset = ""
	n.g.reresolve(n.g.resolveAttrs(slices.Collect(maps.Keys(prev)))...)
}

func (n *Node) applyPreset(name string, previous map[AttrID]value.Kind) error {
	old := n.preset
	n.preset = name

	var seeds []*Attribute
	for id := range previous {
		seeds = append(seeds, n.g.attr(id))
	}
	for id := range n.presets[name] {
		seeds = append(seeds, n.g.attr(id))
	}
	sets, ok := n.g.solve(n.g.component(seeds...))
	if !ok {
		n.preset = old
		n.g.logger.Warn("preset rejected", "node", n.FullName(), "preset", name)
		return fmt.Errorf("enable preset %q on %q: %w", name, n.FullName(), domain.ErrPresetConflict)
	}
	n.g.commit(sets)
	return nil
}

func (n *Node) presetKind(a *Attribute) (value.Kind, bool) {
	if n.preset == "" {
		return value.Any, false
	}
	k, ok := n.presets[n.preset][a.id]
	return k, ok
}
