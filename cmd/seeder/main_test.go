package main

import (
	"math/rand"
	"testing"
	"time"

	"puzzleboard/internal/jobs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func resetFlags(t *testing.T) {
	t.Helper()
	t.Cleanup(func() {
		members, days, seed = 8, 7, 0
	})
}

func TestSeederFlags(t *testing.T) {
	tests := []struct {
		name        string
		args        []string
		wantMembers int
		wantDays    int
		wantSeed    int64
	}{
		{name: "defaults", wantMembers: 8, wantDays: 7},
		{name: "members only", args: []string{"--members", "3"}, wantMembers: 3, wantDays: 7},
		{name: "all flags", args: []string{"--members=2", "--days=30", "--seed=42"}, wantMembers: 2, wantDays: 30, wantSeed: 42},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resetFlags(t)
			members, days, seed = 8, 7, 0

			require.NoError(t, rootCmd.Flags().Parse(tt.args))
			assert.Equal(t, tt.wantMembers, members)
			assert.Equal(t, tt.wantDays, days)
			assert.Equal(t, tt.wantSeed, seed)
		})
	}
}

func TestRunSeedRejectsBadCounts(t *testing.T) {
	tests := []struct {
		name    string
		members int
		days    int
	}{
		{name: "no members", members: 0, days: 7},
		{name: "negative days", members: 3, days: -1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resetFlags(t)
			members, days = tt.members, tt.days
			assert.Error(t, runSeed(rootCmd, nil))
		})
	}
}

func TestGenerateResults(t *testing.T) {
	today := time.Date(2025, 10, 14, 12, 0, 0, 0, time.UTC)
	users := []string{"player_1", "player_2", "player_3"}

	results, err := generateResults(users, 3, today, rand.New(rand.NewSource(1)), nil)
	require.NoError(t, err)
	require.NotEmpty(t, results)

	wantDates := map[string]bool{"2025-10-12": true, "2025-10-13": true, "2025-10-14": true}
	for _, res := range results {
		assert.Contains(t, users, res.UserID)
		assert.Contains(t, jobs.DemoGames, res.GameID)
		assert.True(t, wantDates[res.Date], "unexpected date %s", res.Date)
		assert.NotZero(t, res.Timestamp)
	}

	again, err := generateResults(users, 3, today, rand.New(rand.NewSource(1)), nil)
	require.NoError(t, err)
	assert.Equal(t, len(results), len(again), "same seed gives the same history")
}
