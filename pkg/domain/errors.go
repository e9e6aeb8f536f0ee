package domain

import "errors"

// Structural edit errors. A call that returns one of these left the graph
// untouched.
var (
	// ErrCycle is returned when a connection or affect edge would close a loop.
	ErrCycle = errors.New("edge would create a cycle")

	// ErrInvalidConnection is returned when the destination of a connection
	// cannot receive data (an output, or the source itself).
	ErrInvalidConnection = errors.New("invalid connection")

	// ErrIncompatible is returned when two attributes share no specialization.
	ErrIncompatible = errors.New("incompatible specializations")

	// ErrDuplicateName is returned when a sibling node or attribute already
	// uses the requested name.
	ErrDuplicateName = errors.New("duplicate name")

	// ErrNotFound is returned when a path does not name a node or attribute.
	ErrNotFound = errors.New("not found")

	// ErrStaleHandle is returned when a node or attribute has been removed.
	ErrStaleHandle = errors.New("stale handle")

	// ErrForeignAttribute is returned when an attribute does not belong to the
	// node it is used with.
	ErrForeignAttribute = errors.New("attribute belongs to another node")

	ErrDynamicDisabled = errors.New("node does not allow dynamic attributes")
	ErrNotDynamic      = errors.New("attribute is not dynamic")
)

// Specialization errors.
var (
	ErrUnknownPreset = errors.New("unknown preset")

	// ErrPresetConflict is returned when a preset cannot be applied without
	// emptying a candidate set. The previous preset stays active.
	ErrPresetConflict = errors.New("preset conflicts with current connections")
)

// ErrNotSlicer is returned when a node designated as slicer does not compute
// slice counts, or is not a child of the container.
var ErrNotSlicer = errors.New("node is not a slicer")

// ErrSessionNotFound is returned when a session ID cannot be found in the store.
var ErrSessionNotFound = errors.New("session not found")

// ErrUnknownNodeType is returned by the node registry for unregistered types.
var ErrUnknownNodeType = errors.New("unknown node type")

// ErrNotSerializable is returned when a value kind carries host payloads that
// cannot be written as literals.
var ErrNotSerializable = errors.New("value is not serializable")
