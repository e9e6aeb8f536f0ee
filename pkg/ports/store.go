package ports

import (
	"context"

	"github.com/aretw0/loom/pkg/domain"
)

// SimulationStore persists simulation snapshots so a simulation can be
// stopped and resumed, possibly by another process.
type SimulationStore interface {
	// Save persists the snapshot under snap.SessionID.
	Save(ctx context.Context, snap *domain.Snapshot) error

	// Load retrieves the snapshot for a session ID.
	// Returns domain.ErrSessionNotFound if the session does not exist.
	Load(ctx context.Context, sessionID string) (*domain.Snapshot, error)

	// Delete removes the snapshot. Deleting a missing session is not an error.
	Delete(ctx context.Context, sessionID string) error

	// List returns the IDs of stored sessions.
	List(ctx context.Context) ([]string, error)
}
