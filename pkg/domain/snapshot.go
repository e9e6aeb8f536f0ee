package domain

import "time"

// Snapshot is the persisted form of a simulation session: every stored value
// serialized as a value literal, keyed by its simulation key.
type Snapshot struct {
	SessionID string            `json:"session_id"`
	Step      int               `json:"step"`
	Values    map[string]string `json:"values"`
	UpdatedAt time.Time         `json:"updated_at"`
}

// NewSnapshot creates an empty snapshot at step 0.
func NewSnapshot(sessionID string) *Snapshot {
	return &Snapshot{
		SessionID: sessionID,
		Values:    make(map[string]string),
	}
}
