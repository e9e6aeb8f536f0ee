package simulation_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/aretw0/loom/pkg/adapters/memory"
	"github.com/aretw0/loom/pkg/domain"
	"github.com/aretw0/loom/pkg/ports"
	"github.com/aretw0/loom/pkg/simulation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// slowStore adds latency to provoke lost updates if locking is missing.
type slowStore struct {
	*memory.Store
}

func (s slowStore) Load(ctx context.Context, id string) (*domain.Snapshot, error) {
	time.Sleep(2 * time.Millisecond)
	return s.Store.Load(ctx, id)
}

func (s slowStore) Save(ctx context.Context, snap *domain.Snapshot) error {
	time.Sleep(2 * time.Millisecond)
	return s.Store.Save(ctx, snap)
}

func TestManager_StepSerializesUpdates(t *testing.T) {
	mgr := simulation.NewManager(slowStore{memory.NewStore()})
	ctx := context.Background()

	var wg sync.WaitGroup
	for range 10 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := mgr.Step(ctx, "race", func(_ context.Context, s *simulation.Session) error {
				total := 0.0
				if v, ok := s.Load("total"); ok {
					total = v.Float(0, 0)
				}
				s.Store("total", floatValue(total+1))
				return nil
			})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	s, err := mgr.Load(ctx, "race")
	require.NoError(t, err)
	assert.Equal(t, 10, s.Step())
	total, _ := s.Load("total")
	assert.Equal(t, 10.0, total.Float(0, 0))
}

func TestManager_StepFailureIsNotPersisted(t *testing.T) {
	mgr := simulation.NewManager(memory.NewStore())
	ctx := context.Background()
	boom := errors.New("boom")

	_, err := mgr.Step(ctx, "s", func(context.Context, *simulation.Session) error { return boom })
	assert.ErrorIs(t, err, boom)

	_, err = mgr.Load(ctx, "s")
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)
}

func TestManager_LoadOrStartAndCommit(t *testing.T) {
	mgr := simulation.NewManager(memory.NewStore())
	ctx := context.Background()

	s, err := mgr.LoadOrStart(ctx, "s")
	require.NoError(t, err)
	assert.Zero(t, s.Step())

	s.Store("x", floatValue(3))
	s.Advance()
	require.NoError(t, mgr.Commit(ctx, s))

	again, err := mgr.LoadOrStart(ctx, "s")
	require.NoError(t, err)
	assert.Equal(t, 1, again.Step())

	ids, err := mgr.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"s"}, ids)

	require.NoError(t, mgr.Delete(ctx, "s"))
	_, err = mgr.Load(ctx, "s")
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)
}

type mockLocker struct {
	mock.Mock
}

func (m *mockLocker) Lock(ctx context.Context, key string, ttl time.Duration) (ports.UnlockFunc, error) {
	args := m.Called(ctx, key, ttl)
	unlock, _ := args.Get(0).(ports.UnlockFunc)
	return unlock, args.Error(1)
}

func TestManager_DistributedLock(t *testing.T) {
	locker := &mockLocker{}
	released := 0
	unlock := ports.UnlockFunc(func(context.Context) error {
		released++
		return nil
	})
	locker.On("Lock", mock.Anything, "s", 5*time.Second).Return(unlock, nil).Once()

	mgr := simulation.NewManager(memory.NewStore(), simulation.WithLocker(locker), simulation.WithLockTTL(5*time.Second))
	_, err := mgr.Step(context.Background(), "s", func(context.Context, *simulation.Session) error { return nil })
	require.NoError(t, err)
	assert.Equal(t, 1, released)
	locker.AssertExpectations(t)
}

func TestManager_DistributedLockFailure(t *testing.T) {
	locker := &mockLocker{}
	locker.On("Lock", mock.Anything, "s", simulation.DefaultLockTTL).Return(nil, context.DeadlineExceeded)

	mgr := simulation.NewManager(memory.NewStore(), simulation.WithLocker(locker))
	called := false
	err := mgr.WithLock(context.Background(), "s", func(context.Context) error {
		called = true
		return nil
	})
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.False(t, called)
}
