/*
Package domain contains the vocabulary shared by every loom package.

It holds the sentinel errors returned by structural edits, the lifecycle
events emitted by the evaluator, and the persisted snapshot of a simulation
session. The package has no dependencies on the graph engine or on any
adapter, so ports and adapters can import it freely.

# Errors

All structural edits (connect, affect, dynamic attributes, presets) return
one of the sentinels wrapped with context; test them with errors.Is.

# Events

LifecycleHooks receives NodeEvent, DirtyEvent and SpecializationEvent values.
The observability package turns them into Prometheus metrics.
*/
package domain
