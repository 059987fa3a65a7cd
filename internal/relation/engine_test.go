package relation

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"socialcore/internal/model"
)

// =============================================================================
// MOCK STORE
// =============================================================================

type mockStore struct {
	mu      sync.Mutex
	present map[Key]bool

	existsFn func(ctx context.Context, key Key) (bool, error)
	insertFn func(ctx context.Context, key Key) error
	deleteFn func(ctx context.Context, key Key) error
}

func newMockStore() *mockStore {
	return &mockStore{present: make(map[Key]bool)}
}

func (m *mockStore) Exists(ctx context.Context, key Key) (bool, error) {
	if m.existsFn != nil {
		return m.existsFn(ctx, key)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.present[key], nil
}

func (m *mockStore) Insert(ctx context.Context, key Key) error {
	if m.insertFn != nil {
		return m.insertFn(ctx, key)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.present[key] {
		return model.ErrRelationExists
	}
	m.present[key] = true
	return nil
}

func (m *mockStore) Delete(ctx context.Context, key Key) error {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, key)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.present[key] {
		return model.ErrRelationAbsent
	}
	delete(m.present, key)
	return nil
}

// recorder collects the transitions effects were called with.
type recorder struct {
	mu  sync.Mutex
	got []Transition
}

func (r *recorder) effect(_ context.Context, t Transition) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.got = append(r.got, t)
	return nil
}

func (r *recorder) transitions() []Transition {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Transition(nil), r.got...)
}

var testKey = Key{
	Kind:       KindLike,
	ActorID:    "0190a6f4-0000-7000-8000-000000000001",
	TargetType: model.TargetPost,
	TargetID:   "0190a6f4-0000-7000-8000-000000000002",
}

// =============================================================================
// TOGGLE TESTS
// =============================================================================

func TestEngine_Toggle_CreatesThenDeletes(t *testing.T) {
	store := newMockStore()
	rec := &recorder{}
	engine := NewEngine(store, zap.NewNop())
	ctx := context.Background()

	active, err := engine.Toggle(ctx, testKey, rec.effect)
	require.NoError(t, err)
	assert.True(t, active)

	active, err = engine.Toggle(ctx, testKey, rec.effect)
	require.NoError(t, err)
	assert.False(t, active)

	assert.Equal(t, []Transition{
		{Key: testKey, Active: true},
		{Key: testKey, Active: false},
	}, rec.transitions())
	assert.False(t, store.present[testKey])
}

func TestEngine_Toggle_InsertRaceLostRunsNoEffects(t *testing.T) {
	store := newMockStore()
	// Another request inserts between our read and our write.
	store.insertFn = func(ctx context.Context, key Key) error {
		return model.ErrRelationExists
	}
	rec := &recorder{}
	engine := NewEngine(store, zap.NewNop())

	active, err := engine.Toggle(context.Background(), testKey, rec.effect)

	require.NoError(t, err)
	assert.True(t, active, "loser reports the state the winner produced")
	assert.Empty(t, rec.transitions())
}

func TestEngine_Toggle_DeleteRaceLostRunsNoEffects(t *testing.T) {
	store := newMockStore()
	store.present[testKey] = true
	store.deleteFn = func(ctx context.Context, key Key) error {
		return model.ErrRelationAbsent
	}
	rec := &recorder{}
	engine := NewEngine(store, zap.NewNop())

	active, err := engine.Toggle(context.Background(), testKey, rec.effect)

	require.NoError(t, err)
	assert.False(t, active)
	assert.Empty(t, rec.transitions())
}

func TestEngine_Toggle_LookupFailure(t *testing.T) {
	store := newMockStore()
	store.existsFn = func(ctx context.Context, key Key) (bool, error) {
		return false, errors.New("connection reset")
	}
	engine := NewEngine(store, zap.NewNop())

	_, err := engine.Toggle(context.Background(), testKey)

	require.Error(t, err)
	assert.Equal(t, model.KindDependencyFailure, model.KindOf(err))
}

func TestEngine_Toggle_EffectFailureKeepsRelation(t *testing.T) {
	store := newMockStore()
	engine := NewEngine(store, zap.NewNop())
	secondRan := false

	failing := func(ctx context.Context, tr Transition) error { return errors.New("counter down") }
	second := func(ctx context.Context, tr Transition) error {
		secondRan = true
		return nil
	}

	_, err := engine.Toggle(context.Background(), testKey, failing, second)

	require.Error(t, err)
	assert.Equal(t, model.KindDependencyFailure, model.KindOf(err))
	assert.True(t, store.present[testKey], "relation change is not rolled back")
	assert.False(t, secondRan, "effects after a failure do not run")
}

func TestEngine_Toggle_ConcurrentCreatesPersistOnce(t *testing.T) {
	store := newMockStore()
	rec := &recorder{}
	engine := NewEngine(store, zap.NewNop())

	// Every caller sees "absent" so all of them race to insert.
	gate := make(chan struct{})
	store.existsFn = func(ctx context.Context, key Key) (bool, error) {
		<-gate
		return false, nil
	}

	const n = 20
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			active, err := engine.Toggle(context.Background(), testKey, rec.effect)
			assert.NoError(t, err)
			assert.True(t, active)
		}()
	}
	close(gate)
	wg.Wait()

	assert.Len(t, store.present, 1)
	assert.Len(t, rec.transitions(), 1, "only the winning insert runs effects")
}

// =============================================================================
// ADD / REMOVE TESTS
// =============================================================================

func TestEngine_Add_ExistingFails(t *testing.T) {
	store := newMockStore()
	store.present[testKey] = true
	rec := &recorder{}
	engine := NewEngine(store, zap.NewNop())

	err := engine.Add(context.Background(), testKey, rec.effect)

	assert.ErrorIs(t, err, model.ErrRelationExists)
	assert.Empty(t, rec.transitions())
}

func TestEngine_Add_RaceLostSucceedsSilently(t *testing.T) {
	store := newMockStore()
	store.insertFn = func(ctx context.Context, key Key) error { return model.ErrRelationExists }
	rec := &recorder{}
	engine := NewEngine(store, zap.NewNop())

	err := engine.Add(context.Background(), testKey, rec.effect)

	require.NoError(t, err)
	assert.Empty(t, rec.transitions())
}

func TestEngine_Add_StorageErrorIsDependencyFailure(t *testing.T) {
	store := newMockStore()
	store.insertFn = func(ctx context.Context, key Key) error { return errors.New("disk full") }
	engine := NewEngine(store, zap.NewNop())

	err := engine.Add(context.Background(), testKey)

	require.Error(t, err)
	assert.Equal(t, model.KindDependencyFailure, model.KindOf(err))
}

func TestEngine_Add_PassesTypedStoreErrors(t *testing.T) {
	store := newMockStore()
	store.insertFn = func(ctx context.Context, key Key) error { return model.ErrCannotFollowSelf }
	engine := NewEngine(store, zap.NewNop())

	err := engine.Add(context.Background(), testKey)

	assert.ErrorIs(t, err, model.ErrCannotFollowSelf)
}

func TestEngine_Remove_MissingFails(t *testing.T) {
	engine := NewEngine(newMockStore(), zap.NewNop())

	err := engine.Remove(context.Background(), testKey)

	assert.ErrorIs(t, err, model.ErrRelationAbsent)
}

func TestEngine_Remove_RunsEffectsWithInactiveTransition(t *testing.T) {
	store := newMockStore()
	store.present[testKey] = true
	rec := &recorder{}
	engine := NewEngine(store, zap.NewNop())

	err := engine.Remove(context.Background(), testKey, rec.effect)

	require.NoError(t, err)
	assert.Equal(t, []Transition{{Key: testKey, Active: false}}, rec.transitions())
}
