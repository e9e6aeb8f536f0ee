package observability

import (
	"log/slog"

	"github.com/aretw0/loom/pkg/domain"
)

// Chain returns hooks calling every non-nil hook of sets in order.
func Chain(sets ...domain.LifecycleHooks) domain.LifecycleHooks {
	var out domain.LifecycleHooks
	for _, h := range sets {
		out.OnNodeEvaluated = chain(out.OnNodeEvaluated, h.OnNodeEvaluated)
		out.OnNodeSkipped = chain(out.OnNodeSkipped, h.OnNodeSkipped)
		out.OnDirtyingDone = chain(out.OnDirtyingDone, h.OnDirtyingDone)
		out.OnSpecializationChanged = chain(out.OnSpecializationChanged, h.OnSpecializationChanged)
	}
	return out
}

func chain[E any](a, b func(E)) func(E) {
	switch {
	case a == nil:
		return b
	case b == nil:
		return a
	}
	return func(e E) {
		a(e)
		b(e)
	}
}

// LogHooks logs every lifecycle event at debug level.
func LogHooks(logger *slog.Logger) domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnNodeEvaluated: func(e *domain.NodeEvent) {
			logger.Debug("node evaluated", "node", e.Node, "type", e.NodeType, "slices", e.Slices, "duration", e.Duration)
		},
		OnNodeSkipped: func(e *domain.NodeEvent) {
			logger.Debug("node skipped", "node", e.Node, "type", e.NodeType, "reason", e.Reason)
		},
		OnDirtyingDone: func(e *domain.DirtyEvent) {
			logger.Debug("dirtying done", "dirtied", e.Dirtied)
		},
		OnSpecializationChanged: func(e *domain.SpecializationEvent) {
			logger.Debug("specialization changed", "attr", e.Attribute, "from", e.From, "to", e.To)
		},
	}
}
