package jobs

import (
	"context"
	"errors"
	"math/rand"
	"sync"
	"testing"
	"time"

	"puzzleboard/internal/game"
	"puzzleboard/internal/models"
	"puzzleboard/internal/parser"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestShareTextRoundTrip(t *testing.T) {
	day := time.Date(2025, 10, 14, 9, 30, 0, 0, time.UTC)
	registry := parser.Default(parser.Config{Clock: func() time.Time { return day }}, nil)

	for _, id := range DemoGames {
		t.Run(string(id), func(t *testing.T) {
			for seed := int64(1); seed <= 20; seed++ {
				text, err := ShareText(id, day, rand.New(rand.NewSource(seed)))
				require.NoError(t, err)

				res := registry.Parse(text)
				require.NotNil(t, res, "unparsed text:\n%s", text)
				assert.Equal(t, id, res.GameID, text)
				assert.Equal(t, "2025-10-14", res.Date, text)
			}
		})
	}
}

func TestShareTextUnsupportedGame(t *testing.T) {
	_, err := ShareText(game.Thrice, time.Now(), rand.New(rand.NewSource(1)))
	assert.Error(t, err)
}

func TestThousands(t *testing.T) {
	assert.Equal(t, "7", thousands(7))
	assert.Equal(t, "999", thousands(999))
	assert.Equal(t, "1,234", thousands(1234))
	assert.Equal(t, "50,000", thousands(50000))
	assert.Equal(t, "1,000,000", thousands(1000000))
}

type fakeFeed struct {
	mu      sync.Mutex
	members []string
	failing bool
	posted  []string
}

func (f *fakeFeed) Submit(_ context.Context, userID, text string) (*models.ParsedResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failing {
		return nil, errors.New("queue full")
	}
	f.posted = append(f.posted, userID)
	return &models.ParsedResult{UserID: userID, RawText: text}, nil
}

func (f *fakeFeed) Members(context.Context, string) ([]string, error) {
	return f.members, nil
}

func (f *fakeFeed) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.posted)
}

func TestSimulatorSubmitsForMembers(t *testing.T) {
	feed := &fakeFeed{members: []string{"ana", "bob"}}
	sim := NewSimulationManager(feed, SimulatorConfig{GroupID: "demo", TickInterval: 5 * time.Millisecond, Seed: 42}, nil)

	require.NoError(t, sim.Start(context.Background()))
	assert.True(t, sim.IsRunning())
	assert.Error(t, sim.Start(context.Background()), "second start")

	assert.Eventually(t, func() bool { return feed.count() >= 3 }, 2*time.Second, 5*time.Millisecond)
	sim.Stop()
	sim.Stop()
	assert.False(t, sim.IsRunning())

	feed.mu.Lock()
	for _, user := range feed.posted {
		assert.Contains(t, feed.members, user)
	}
	feed.mu.Unlock()

	metrics := sim.GetMetrics()
	assert.Equal(t, "demo", metrics["group"])
	assert.Equal(t, metrics["submissions"], metrics["successful"])
	assert.Equal(t, int64(0), metrics["errors"])
}

func TestSimulatorCountsFailures(t *testing.T) {
	feed := &fakeFeed{members: []string{"ana"}, failing: true}
	sim := NewSimulationManager(feed, SimulatorConfig{GroupID: "demo", TickInterval: 5 * time.Millisecond, Seed: 7}, nil)

	require.NoError(t, sim.Start(context.Background()))
	assert.Eventually(t, func() bool { return sim.errorCount.Load() >= 2 }, 2*time.Second, 5*time.Millisecond)
	sim.Stop()

	assert.Equal(t, int64(0), sim.successCount.Load())
}

func TestSimulatorNeedsMembers(t *testing.T) {
	sim := NewSimulationManager(&fakeFeed{}, SimulatorConfig{GroupID: "empty"}, nil)
	assert.Error(t, sim.Start(context.Background()))
	assert.False(t, sim.IsRunning())
}
