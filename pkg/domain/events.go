package domain

import (
	"time"
)

// EventType defines the category of the event.
type EventType string

const (
	EventNodeEvaluated          EventType = "node_evaluated"
	EventNodeSkipped            EventType = "node_skipped"
	EventDirtyingDone           EventType = "dirtying_done"
	EventSpecializationChanged  EventType = "specialization_changed"
	EventSpecializationRejected EventType = "specialization_rejected"
)

// EventBase contains common fields for all events.
type EventBase struct {
	Timestamp time.Time `json:"timestamp"`
	Type      EventType `json:"type"`
}

// NodeEvent reports one evaluation pass of a node.
type NodeEvent struct {
	EventBase
	Node     string        `json:"node"`
	NodeType string        `json:"node_type"`
	Slices   int           `json:"slices"`
	Duration time.Duration `json:"duration"`
	// Reason is set for skipped evaluations (unresolved, dirty input, panic).
	Reason string `json:"reason,omitempty"`
}

// DirtyEvent reports the end of an outermost dirtying operation.
type DirtyEvent struct {
	EventBase
	// Dirtied counts the attributes that flipped from clean to dirty.
	Dirtied int `json:"dirtied"`
}

// SpecializationEvent reports an attribute whose kind was retyped.
type SpecializationEvent struct {
	EventBase
	Attribute string `json:"attribute"`
	From      string `json:"from"`
	To        string `json:"to"`
}

// LifecycleHooks defines callbacks for engine observability.
// Hooks run synchronously on the evaluating goroutine; in parallel mode they
// may be called concurrently.
type LifecycleHooks struct {
	OnNodeEvaluated         func(*NodeEvent)
	OnNodeSkipped           func(*NodeEvent)
	OnDirtyingDone          func(*DirtyEvent)
	OnSpecializationChanged func(*SpecializationEvent)
}
