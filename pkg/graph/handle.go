package graph

import "fmt"

// NodeID is a generation-checked handle to a node. The zero value never
// resolves.
type NodeID struct {
	index uint32
	gen   uint32
}

// AttrID is a generation-checked handle to an attribute. The zero value never
// resolves.
type AttrID struct {
	index uint32
	gen   uint32
}

func (id NodeID) IsZero() bool   { return id.gen == 0 }
func (id AttrID) IsZero() bool   { return id.gen == 0 }
func (id NodeID) String() string { return fmt.Sprintf("n%d.%d", id.index, id.gen) }
func (id AttrID) String() string { return fmt.Sprintf("a%d.%d", id.index, id.gen) }

// arena stores items addressed by (index, generation). Removing an item bumps
// the generation of its slot so outstanding handles go stale instead of
// silently resolving to whatever reuses the slot.
type arena[T any] struct {
	items []*T
	gens  []uint32
	free  []uint32
	count int
}

func (a *arena[T]) add(item *T) (index, gen uint32) {
	a.count++
	if n := len(a.free); n > 0 {
		index = a.free[n-1]
		a.free = a.free[:n-1]
		a.items[index] = item
		return index, a.gens[index]
	}
	a.items = append(a.items, item)
	a.gens = append(a.gens, 1)
	return uint32(len(a.items) - 1), 1
}

func (a *arena[T]) get(index, gen uint32) *T {
	if gen == 0 || int(index) >= len(a.items) || a.gens[index] != gen {
		return nil
	}
	return a.items[index]
}

func (a *arena[T]) remove(index, gen uint32) {
	if a.get(index, gen) == nil {
		return
	}
	a.items[index] = nil
	a.count--
	a.gens[index]++
	if a.gens[index] == 0 {
		// Retire the slot rather than let the generation wrap to zero.
		return
	}
	a.free = append(a.free, index)
}

func (a *arena[T]) len() int { return a.count }
