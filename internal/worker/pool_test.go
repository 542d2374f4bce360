package worker

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"puzzleboard/internal/game"
	"puzzleboard/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeStore struct {
	mu       sync.Mutex
	upserted []models.ParsedResult
	groups   map[string][]string
	fail     error
	panics   bool
}

func (f *fakeStore) UpsertResult(_ context.Context, r *models.ParsedResult) error {
	if f.panics {
		panic("storage exploded")
	}
	if f.fail != nil {
		return f.fail
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.upserted = append(f.upserted, *r)
	return nil
}

func (f *fakeStore) GroupsForUser(_ context.Context, userID string) ([]string, error) {
	return f.groups[userID], nil
}

type fakeVersions struct {
	mu     sync.Mutex
	bumped map[string]int
	global int64
}

func (f *fakeVersions) BumpVersion(_ context.Context, groupIDs ...string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.bumped == nil {
		f.bumped = map[string]int{}
	}
	for _, id := range groupIDs {
		f.bumped[id]++
	}
	f.global++
	return f.global, nil
}

func task(user string, puzzle int) PersistTask {
	return PersistTask{Result: models.ParsedResult{
		UserID:       user,
		GameID:       game.Wordle,
		PuzzleNumber: models.PuzzleInt(puzzle),
	}}
}

func TestPoolPersistsAndBumpsVersions(t *testing.T) {
	store := &fakeStore{groups: map[string][]string{
		"ana": {"family", "office"},
		"bob": {"office"},
	}}
	versions := &fakeVersions{}

	pool := NewWorkerPool(2, 10, store, versions, zap.NewNop())
	pool.Start()

	require.NoError(t, pool.Submit(task("ana", 1)))
	require.NoError(t, pool.Submit(task("bob", 1)))
	require.NoError(t, pool.Submit(task("ana", 2)))

	require.NoError(t, pool.Shutdown(time.Second))

	assert.Len(t, store.upserted, 3)
	assert.Equal(t, map[string]int{"family": 2, "office": 3}, versions.bumped)
	assert.Equal(t, int64(3), versions.global)

	metrics := pool.GetMetrics()
	assert.Equal(t, int64(3), metrics["processed"])
	assert.Equal(t, int64(0), metrics["failed"])
}

func TestPoolBackpressure(t *testing.T) {
	pool := NewWorkerPool(1, 1, &fakeStore{}, &fakeVersions{}, nil)

	require.NoError(t, pool.Submit(task("ana", 1)))
	err := pool.Submit(task("ana", 2))
	assert.ErrorIs(t, err, ErrQueueFull)
	assert.Equal(t, int64(1), pool.GetMetrics()["backpressure_events"])

	pool.Start()
	require.NoError(t, pool.Shutdown(time.Second))
	assert.Equal(t, int64(1), pool.GetMetrics()["processed"])
}

func TestPoolCountsFailures(t *testing.T) {
	tests := map[string]*fakeStore{
		"error": {fail: errors.New("connection refused")},
		"panic": {panics: true},
	}
	for name, store := range tests {
		t.Run(name, func(t *testing.T) {
			versions := &fakeVersions{}
			pool := NewWorkerPool(1, 4, store, versions, zap.NewNop())
			pool.Start()

			require.NoError(t, pool.Submit(task("ana", 1)))
			require.NoError(t, pool.Shutdown(time.Second))

			assert.Equal(t, int64(1), pool.GetMetrics()["failed"])
			assert.Zero(t, versions.global)
		})
	}
}

func TestSubmitAfterShutdown(t *testing.T) {
	pool := NewWorkerPool(1, 4, &fakeStore{}, &fakeVersions{}, nil)
	pool.Start()
	require.NoError(t, pool.Shutdown(time.Second))

	assert.NotPanics(t, func() {
		assert.ErrorIs(t, pool.Submit(task("ana", 1)), ErrPoolClosed)
	})
	// A second Shutdown is harmless.
	assert.NotPanics(t, func() { _ = pool.Shutdown(time.Second) })
}
