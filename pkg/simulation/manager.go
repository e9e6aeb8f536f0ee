package simulation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/aretw0/loom/internal/logging"
	"github.com/aretw0/loom/pkg/domain"
	"github.com/aretw0/loom/pkg/ports"
)

// DefaultLockTTL bounds how long a crashed holder keeps a distributed lock.
const DefaultLockTTL = 30 * time.Second

// lockEntry holds the mutex and the reference count.
type lockEntry struct {
	mu   sync.Mutex
	refs int
}

// Manager persists sessions and serializes access to each of them.
// Lock entries are reference counted and dropped when unused.
type Manager struct {
	store ports.SimulationStore

	mu    sync.Mutex
	locks map[string]*lockEntry

	locker  ports.DistributedLocker
	lockTTL time.Duration
	logger  *slog.Logger
}

// Option configures the Manager.
type Option func(*Manager)

// WithLocker enables distributed locking.
func WithLocker(locker ports.DistributedLocker) Option {
	return func(m *Manager) {
		m.locker = locker
	}
}

// WithLockTTL overrides DefaultLockTTL.
func WithLockTTL(ttl time.Duration) Option {
	return func(m *Manager) {
		if ttl > 0 {
			m.lockTTL = ttl
		}
	}
}

// WithLogger configures a logger for the Manager.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) {
		if logger != nil {
			m.logger = logger
		}
	}
}

// NewManager creates a Manager backed by store.
func NewManager(store ports.SimulationStore, opts ...Option) *Manager {
	m := &Manager{
		store:   store,
		locks:   make(map[string]*lockEntry),
		lockTTL: DefaultLockTTL,
		logger:  logging.NewNop(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// acquire gets or creates a lock entry and increments its reference count.
// The caller MUST lock entry.mu, and call release(id) after unlocking.
func (m *Manager) acquire(id string) *lockEntry {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, ok := m.locks[id]
	if !ok {
		entry = &lockEntry{}
		m.locks[id] = entry
	}
	entry.refs++
	return entry
}

// release decrements the reference count and deletes the entry at zero.
func (m *Manager) release(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, ok := m.locks[id]
	if !ok {
		return
	}
	entry.refs--
	if entry.refs <= 0 {
		delete(m.locks, id)
	}
}

// activeLocks reports the number of live lock entries.
func (m *Manager) activeLocks() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.locks)
}

// WithLock executes fn while holding the lock for the session.
func (m *Manager) WithLock(ctx context.Context, id string, fn func(context.Context) error) error {
	entry := m.acquire(id)
	entry.mu.Lock()
	defer func() {
		entry.mu.Unlock()
		m.release(id)
	}()

	if m.locker != nil {
		unlock, err := m.locker.Lock(ctx, id, m.lockTTL)
		if err != nil {
			return fmt.Errorf("failed to acquire distributed lock: %w", err)
		}
		defer func() {
			if err := unlock(ctx); err != nil {
				m.logger.Warn("Failed to release distributed lock (will expire via TTL)",
					"session_id", id,
					"err", err,
				)
			}
		}()
	}

	return fn(ctx)
}

func (m *Manager) load(ctx context.Context, id string) (*Session, error) {
	snap, err := m.store.Load(ctx, id)
	if err != nil {
		return nil, err
	}
	s := NewSession(id)
	if err := s.Restore(snap); err != nil {
		return nil, err
	}
	return s, nil
}

func (m *Manager) save(ctx context.Context, s *Session) error {
	snap, err := s.Snapshot()
	if err != nil {
		return err
	}
	if err := m.store.Save(ctx, snap); err != nil {
		return fmt.Errorf("save session %q: %w", s.ID(), err)
	}
	return nil
}

// Load restores a stored session.
// Returns domain.ErrSessionNotFound if it does not exist.
func (m *Manager) Load(ctx context.Context, id string) (*Session, error) {
	var s *Session
	err := m.WithLock(ctx, id, func(ctx context.Context) error {
		var err error
		s, err = m.load(ctx, id)
		return err
	})
	return s, err
}

// LoadOrStart restores a session, or creates and persists an empty one.
func (m *Manager) LoadOrStart(ctx context.Context, id string) (*Session, error) {
	var s *Session
	err := m.WithLock(ctx, id, func(ctx context.Context) error {
		var err error
		s, err = m.load(ctx, id)
		if err == nil {
			return nil
		}
		if !errors.Is(err, domain.ErrSessionNotFound) {
			return fmt.Errorf("failed to check session existence: %w", err)
		}
		s = NewSession(id)
		if err := m.save(ctx, s); err != nil {
			return fmt.Errorf("failed to initialize session: %w", err)
		}
		m.logger.Debug("simulation started", "session_id", id)
		return nil
	})
	return s, err
}

// Commit persists the session.
func (m *Manager) Commit(ctx context.Context, s *Session) error {
	return m.WithLock(ctx, s.ID(), func(ctx context.Context) error {
		return m.save(ctx, s)
	})
}

// Step loads the session (creating it when missing), runs fn, advances the
// step counter and persists the result, all under the session lock. When fn
// fails nothing is persisted.
func (m *Manager) Step(ctx context.Context, id string, fn func(context.Context, *Session) error) (*Session, error) {
	var s *Session
	err := m.WithLock(ctx, id, func(ctx context.Context) error {
		var err error
		s, err = m.load(ctx, id)
		if errors.Is(err, domain.ErrSessionNotFound) {
			s, err = NewSession(id), nil
		}
		if err != nil {
			return err
		}
		if err := fn(ctx, s); err != nil {
			return err
		}
		step := s.Advance()
		m.logger.Debug("simulation stepped", "session_id", id, "step", step)
		return m.save(ctx, s)
	})
	if err != nil {
		return nil, err
	}
	return s, nil
}

// Delete removes the session from the store.
func (m *Manager) Delete(ctx context.Context, id string) error {
	return m.WithLock(ctx, id, func(ctx context.Context) error {
		return m.store.Delete(ctx, id)
	})
}

// List delegates to the store.
func (m *Manager) List(ctx context.Context) ([]string, error) {
	return m.store.List(ctx)
}

// Store returns the underlying snapshot store.
func (m *Manager) Store() ports.SimulationStore {
	return m.store
}
