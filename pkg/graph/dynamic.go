package graph

import (
	"fmt"

	"github.com/aretw0/loom/pkg/domain"
	"github.com/aretw0/loom/pkg/value"
)

// AddDynamicInput adds an input at runtime, e.g. one more element of a
// variadic array builder.
func (n *Node) AddDynamicInput(name string, kinds ...value.Kind) (*Attribute, error) {
	if !n.allowDynamic {
		return nil, fmt.Errorf("add dynamic input %q on %q: %w", name, n.FullName(), domain.ErrDynamicDisabled)
	}
	return n.addAttribute(name, Input, true, kinds)
}

// AddDynamicOutput adds an output at runtime.
func (n *Node) AddDynamicOutput(name string, kinds ...value.Kind) (*Attribute, error) {
	if !n.allowDynamic {
		return nil, fmt.Errorf("add dynamic output %q on %q: %w", name, n.FullName(), domain.ErrDynamicDisabled)
	}
	return n.addAttribute(name, Output, true, kinds)
}

// RemoveDynamicAttribute destroys a dynamic attribute. Its connections,
// affect edges, specialization links and preset entries go with it in the
// same call; neighbors are resolved again and everything it drove is dirtied.
func (n *Node) RemoveDynamicAttribute(a *Attribute) error {
	if !n.allowDynamic {
		return fmt.Errorf("remove attribute on %q: %w", n.FullName(), domain.ErrDynamicDisabled)
	}
	if !n.owns(a) {
		return fmt.Errorf("remove attribute on %q: %w", n.FullName(), domain.ErrForeignAttribute)
	}
	if !a.dynamic {
		return fmt.Errorf("remove attribute %s: %w", a.FullName(), domain.ErrNotDynamic)
	}
	n.g.beginDirty()
	defer n.g.endDirty()
	touched := n.g.detachAttribute(a)
	n.g.reresolve(touched...)
	n.dirtyComputed()
	return nil
}
