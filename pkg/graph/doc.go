/*
Package graph is the loom evaluation engine: a tree of nodes owning typed
attributes, wired by connections and per-node affect edges, evaluated lazily.

# Evaluation

Reading Attribute.Value on a dirty attribute pulls its upstream first. A
connected input copies its source; an output (or pass-through input) runs its
node once all the node's inputs are clean. Outputs are marked clean after the
callback unless it called EvalContext.KeepDirty. Dirtying walks affect edges
and connections and stops at attributes that are already dirty, so repeated
invalidation stays linear.

A node whose attributes are not all resolved, or whose inputs could not be
cleaned, is skipped: its outputs stay dirty and no error is raised. A
panicking callback is recovered and treated the same way.

# Specialization

Every attribute carries a declared and a current value.KindSet. Connections
and specialization links tie sets together; on every structural edit the
affected component is solved again from the declared sets by a breadth-first
fixed point in which sets only shrink. An attribute whose set holds a single
kind is retyped to it and its node is told through SpecializationObserver.
Presets assign kinds to several attributes at once and are applied in a
single resolution.

# Loops

A container designates one child as its slicer. Sliceable nodes beneath it
are evaluated once per slice and their values hold one slot per slice.
Readers outside the loop see slice 0 unless they aggregate every slice.

# Handles

Nodes and attributes live in generation-checked arenas. NodeID and AttrID
never resolve to a different object after a removal, and every side table is
keyed by handle rather than position.
*/
package graph
