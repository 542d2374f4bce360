package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"testing"
	"time"

	"puzzleboard/internal/game"
	"puzzleboard/internal/models"
	"puzzleboard/internal/parser"
	"puzzleboard/internal/ranking"
	"puzzleboard/internal/repository"
	"puzzleboard/internal/scoring"
	"puzzleboard/internal/worker"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var today = time.Date(2024, 11, 4, 9, 0, 0, 0, time.UTC)

type memStore struct {
	members map[string][]string
	results []models.ParsedResult
	loads   int
}

func (m *memStore) inGroup(groupID string, keep func(models.ParsedResult) bool) []models.ParsedResult {
	m.loads++
	var out []models.ParsedResult
	for _, r := range m.results {
		if slices.Contains(m.members[groupID], r.UserID) && keep(r) {
			out = append(out, r)
		}
	}
	return out
}

func (m *memStore) ResultsForDate(_ context.Context, groupID string, gameID game.ID, date string) ([]models.ParsedResult, error) {
	return m.inGroup(groupID, func(r models.ParsedResult) bool { return r.GameID == gameID && r.Date == date }), nil
}

func (m *memStore) ResultsForGame(_ context.Context, groupID string, gameID game.ID) ([]models.ParsedResult, error) {
	return m.inGroup(groupID, func(r models.ParsedResult) bool { return r.GameID == gameID }), nil
}

func (m *memStore) ResultsForGroupOnDate(_ context.Context, groupID, date string) ([]models.ParsedResult, error) {
	return m.inGroup(groupID, func(r models.ParsedResult) bool { return r.Date == date }), nil
}

func (m *memStore) ResultsForGroup(_ context.Context, groupID string) ([]models.ParsedResult, error) {
	return m.inGroup(groupID, func(models.ParsedResult) bool { return true }), nil
}

func (m *memStore) AddMember(_ context.Context, groupID, userID string) error {
	if !slices.Contains(m.members[groupID], userID) {
		m.members[groupID] = append(m.members[groupID], userID)
		slices.Sort(m.members[groupID])
	}
	return nil
}

func (m *memStore) RemoveMember(_ context.Context, groupID, userID string) error {
	i := slices.Index(m.members[groupID], userID)
	if i < 0 {
		return repository.ErrNotFound
	}
	m.members[groupID] = slices.Delete(m.members[groupID], i, i+1)
	return nil
}

func (m *memStore) Members(_ context.Context, groupID string) ([]string, error) {
	return slices.Clone(m.members[groupID]), nil
}

func (m *memStore) Ping(context.Context) error { return nil }

type memCache struct {
	versions map[string]int64
	payloads map[string][]byte
	down     bool
}

func newMemCache() *memCache {
	return &memCache{versions: map[string]int64{}, payloads: map[string][]byte{}}
}

func (c *memCache) Version(_ context.Context, groupID string) (int64, error) {
	if c.down {
		return 0, errors.New("connection refused")
	}
	return c.versions[groupID], nil
}

func (c *memCache) BumpVersion(_ context.Context, groupIDs ...string) (int64, error) {
	for _, id := range groupIDs {
		c.versions[id]++
	}
	return 0, nil
}

func (c *memCache) CacheRankings(_ context.Context, key string, payload []byte, _ time.Duration) error {
	c.payloads[key] = payload
	return nil
}

func (c *memCache) CachedRankings(_ context.Context, key string) ([]byte, error) {
	p, ok := c.payloads[key]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return p, nil
}

func (c *memCache) Ping(context.Context) error {
	if c.down {
		return errors.New("connection refused")
	}
	return nil
}

type memQueue struct {
	tasks []worker.PersistTask
	err   error
}

func (q *memQueue) Submit(task worker.PersistTask) error {
	if q.err != nil {
		return q.err
	}
	q.tasks = append(q.tasks, task)
	return nil
}

func result(user string, id game.ID, date string, value float64, ts int64) models.ParsedResult {
	return models.ParsedResult{
		UserID:       user,
		GameID:       id,
		Date:         date,
		PuzzleNumber: models.PuzzleNumber(date),
		ScoreValue:   value,
		Won:          true,
		Timestamp:    ts,
	}
}

type fixture struct {
	svc   *ResultService
	store *memStore
	cache *memCache
	queue *memQueue
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	clock := func() time.Time { return today }
	store := &memStore{
		members: map[string][]string{"office": {"ana", "bob", "cy"}},
		results: []models.ParsedResult{
			result("ana", game.Wordle, "2024-11-04", 3, 1),
			result("bob", game.Wordle, "2024-11-04", 5, 2),
			result("bob", game.Wordle, "2024-11-04", 2, 3),
			result("ana", game.Mini, "2024-11-04", 50, 4),
			result("bob", game.Mini, "2024-11-04", 40, 5),
			result("ana", game.Wordle, "2024-11-03", 4, 0),
			result("zed", game.Wordle, "2024-11-04", 1, 6),
		},
	}
	cache := newMemCache()
	queue := &memQueue{}
	svc := NewResultService(
		parser.Default(parser.Config{Clock: clock}, zap.NewNop()),
		scoring.Default(),
		store, cache, queue,
		Options{RankingTTL: time.Minute, Clock: clock},
		zap.NewNop(),
	)
	return fixture{svc: svc, store: store, cache: cache, queue: queue}
}

func decode[T any](t *testing.T, resp *models.RankingsResponse) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(resp.Data, &out))
	return out
}

func TestPreview(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Preview("hello world")
	assert.ErrorIs(t, err, ErrUnrecognized)

	res, err := f.svc.Preview("Wordle 1,234 4/6\n🟩🟩🟩🟩🟩")
	require.NoError(t, err)
	assert.Equal(t, game.Wordle, res.GameID)
	assert.Empty(t, f.queue.tasks)
}

func TestSubmit(t *testing.T) {
	f := newFixture(t)

	res, err := f.svc.Submit(context.Background(), "ana", "Wordle 1,234 4/6")
	require.NoError(t, err)
	assert.Equal(t, "ana", res.UserID)

	require.Len(t, f.queue.tasks, 1)
	assert.Equal(t, "ana", f.queue.tasks[0].Result.UserID)
	assert.Equal(t, models.PuzzleNumber("1234"), f.queue.tasks[0].Result.PuzzleNumber)

	_, err = f.svc.Submit(context.Background(), "ana", "not a puzzle")
	assert.ErrorIs(t, err, ErrUnrecognized)
}

func TestSubmitBackpressure(t *testing.T) {
	for _, queueErr := range []error{worker.ErrQueueFull, worker.ErrPoolClosed} {
		t.Run(queueErr.Error(), func(t *testing.T) {
			f := newFixture(t)
			f.queue.err = fmt.Errorf("wrapped: %w", queueErr)

			_, err := f.svc.Submit(context.Background(), "ana", "Wordle 1,234 4/6")
			assert.ErrorIs(t, err, ErrBusy)
		})
	}
}

func TestDailyRankingsUsesLatestResultAndCaches(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	resp, err := f.svc.DailyRankings(ctx, "office", "wordle", "")
	require.NoError(t, err)
	assert.Equal(t, "2024-11-04", resp.Date)
	assert.Equal(t, ScopeDaily, resp.Scope)

	want := []ranking.RankingEntry{
		{UserID: "bob", Score: 2, FormattedScore: "2/6", Rank: 1},
		{UserID: "ana", Score: 3, FormattedScore: "3/6", Rank: 2},
	}
	if diff := cmp.Diff(want, decode[[]ranking.RankingEntry](t, resp)); diff != "" {
		t.Errorf("DailyRankings() mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, 1, f.store.loads)

	_, err = f.svc.DailyRankings(ctx, "office", "wordle", "2024-11-04")
	require.NoError(t, err)
	assert.Equal(t, 1, f.store.loads, "second read should come from cache")

	require.NoError(t, f.svc.AddMember(ctx, "office", "zed"))
	resp, err = f.svc.DailyRankings(ctx, "office", "wordle", "2024-11-04")
	require.NoError(t, err)
	assert.Equal(t, 2, f.store.loads)
	assert.Equal(t, int64(1), resp.Version)

	entries := decode[[]ranking.RankingEntry](t, resp)
	require.Len(t, entries, 3)
	assert.Equal(t, "zed", entries[0].UserID)
}

func TestRankingsWithCacheDown(t *testing.T) {
	f := newFixture(t)
	f.cache.down = true

	resp, err := f.svc.DailyRankings(context.Background(), "office", "wordle", "2024-11-04")
	require.NoError(t, err)
	assert.Len(t, decode[[]ranking.RankingEntry](t, resp), 2)
	assert.Empty(t, f.cache.payloads)
}

func TestRankingsErrors(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.DailyRankings(ctx, "office", "chess", "")
	assert.ErrorIs(t, err, ErrUnknownGame)

	_, err = f.svc.DailyRankings(ctx, "office", "wordle", "04/11/2024")
	assert.ErrorIs(t, err, ErrInvalidDate)

	_, err = f.svc.HistoricalRankings(ctx, "nobody", "wordle")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = f.svc.CombinedHistorical(ctx, "nobody")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestHistoricalRankings(t *testing.T) {
	f := newFixture(t)

	resp, err := f.svc.HistoricalRankings(context.Background(), "office", "wordle")
	require.NoError(t, err)
	assert.Equal(t, ScopeAllTime, resp.Scope)

	got := decode[[]ranking.HistoricalEntry](t, resp)
	require.Len(t, got, 2)
	assert.Equal(t, "ana", got[0].UserID)
	assert.Equal(t, 2, got[0].GamesPlayed)
	assert.InDelta(t, 3.5, got[0].AverageScore, 1e-9)
	assert.Equal(t, 3.5, got[1].AverageScore)
	assert.Equal(t, 1, got[1].Rank)
}

func TestCombinedDaily(t *testing.T) {
	f := newFixture(t)

	resp, err := f.svc.CombinedDaily(context.Background(), "office", "2024-11-04")
	require.NoError(t, err)

	want := []ranking.CombinedEntry{
		{UserID: "bob", TotalPoints: 20, GamesPlayed: 2, FirstPlaces: 2, Rank: 1},
		{UserID: "ana", TotalPoints: 14, GamesPlayed: 2, FirstPlaces: 0, Rank: 2},
	}
	if diff := cmp.Diff(want, decode[[]ranking.CombinedEntry](t, resp)); diff != "" {
		t.Errorf("CombinedDaily() mismatch (-want +got):\n%s", diff)
	}
}

func TestMembership(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	require.NoError(t, f.svc.AddMember(ctx, "family", "ana"))
	assert.Equal(t, []string{"ana"}, f.store.members["family"])
	assert.Equal(t, int64(1), f.cache.versions["family"])

	require.NoError(t, f.svc.RemoveMember(ctx, "family", "ana"))
	assert.Equal(t, int64(2), f.cache.versions["family"])

	err := f.svc.RemoveMember(ctx, "family", "ana")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestGames(t *testing.T) {
	f := newFixture(t)

	games := f.svc.Games()
	require.Len(t, games, len(game.All()))

	assert.Equal(t, "wordle", games[0].ID)
	assert.Equal(t, "asc", games[0].SortOrder)
	require.NotNil(t, games[0].BestPossible)
	assert.Equal(t, 1.0, *games[0].BestPossible)

	for _, g := range games {
		if g.ID == string(game.Connections) {
			assert.Equal(t, "RP", g.BestLabel)
		}
	}
}

func TestHealthCheck(t *testing.T) {
	f := newFixture(t)
	assert.NoError(t, f.svc.HealthCheck(context.Background()))

	f.cache.down = true
	assert.Error(t, f.svc.HealthCheck(context.Background()))
}
