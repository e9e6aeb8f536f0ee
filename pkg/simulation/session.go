package simulation

import (
	"fmt"
	"maps"
	"slices"
	"sync"
	"time"

	"github.com/aretw0/loom/pkg/domain"
	"github.com/aretw0/loom/pkg/value"
)

// Session holds the values a simulation carries from one step to the next.
// Safe for concurrent use; values are copied on the way in and out.
type Session struct {
	id string

	mu     sync.RWMutex
	step   int
	values map[string]*value.Value
}

// NewSession creates an empty session at step 0.
func NewSession(id string) *Session {
	return &Session{
		id:     id,
		values: make(map[string]*value.Value),
	}
}

// ID returns the session identifier.
func (s *Session) ID() string { return s.id }

// Load returns a copy of the value stored under key.
func (s *Session) Load(key string) (*value.Value, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.values[key]
	if !ok {
		return nil, false
	}
	return v.Clone(), true
}

// Store keeps a copy of v under key.
func (s *Session) Store(key string, v *value.Value) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = v.Clone()
}

// Keys lists the stored keys in sorted order.
func (s *Session) Keys() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Sorted(maps.Keys(s.values))
}

// Step is the number of completed steps.
func (s *Session) Step() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.step
}

// Advance completes one step and returns the new step number.
func (s *Session) Advance() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.step++
	return s.step
}

// Reset drops every value and rewinds to step 0.
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.step = 0
	clear(s.values)
}

// Snapshot serializes the session. Values of opaque kinds cannot be
// restored and make Snapshot fail with domain.ErrNotSerializable.
func (s *Session) Snapshot() (*domain.Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := domain.NewSnapshot(s.id)
	snap.Step = s.step
	snap.UpdatedAt = time.Now()
	for k, v := range s.values {
		if v.Kind().IsOpaque() {
			return nil, fmt.Errorf("snapshot %q key %q (%s): %w", s.id, k, v.Kind(), domain.ErrNotSerializable)
		}
		snap.Values[k] = v.AsString()
	}
	return snap, nil
}

// Restore replaces the session contents with snap. On a parse error the
// session is left unchanged.
func (s *Session) Restore(snap *domain.Snapshot) error {
	values := make(map[string]*value.Value, len(snap.Values))
	for k, lit := range snap.Values {
		v := value.New(value.Any)
		if err := v.SetFromString(lit); err != nil {
			return fmt.Errorf("restore %q key %q: %w", snap.SessionID, k, err)
		}
		values[k] = v
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.step = snap.Step
	s.values = values
	return nil
}
