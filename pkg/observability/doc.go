/*
Package observability provides tools for monitoring the Loom evaluator.

Metrics turns the graph lifecycle hooks into Prometheus collectors (evaluations,
skips, dirtying passes and retyped attributes) that hosts expose on /metrics.
Chain composes several hook sets, so metrics can run alongside structured logging.
*/
package observability
