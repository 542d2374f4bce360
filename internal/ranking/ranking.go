// Package ranking orders group members within a game and across games.
//
// Every calculator is a pure function of its arguments and the scoring
// table: inputs are never mutated and the output is rebuilt on each call.
package ranking

import (
	"cmp"
	"math"
	"slices"

	"puzzleboard/internal/game"
	"puzzleboard/internal/models"
	"puzzleboard/internal/scoring"
)

// AverageTolerance is the largest difference between two historical
// averages that still counts as a tie.
const AverageTolerance = 0.01

// MemberResult is one member's result for a single day. A nil Result means
// the member did not play.
type MemberResult struct {
	UserID string
	Result *models.ParsedResult
}

// MemberHistory is every result a member has recorded for one game.
type MemberHistory struct {
	UserID  string
	Results []models.ParsedResult
}

// RankingEntry is a member's placement for one game on one day.
type RankingEntry struct {
	UserID         string  `json:"userId"`
	Score          float64 `json:"score"`
	FormattedScore string  `json:"formattedScore"`
	Rank           int     `json:"rank"`
}

// HistoricalEntry is a member's placement by average over all plays.
type HistoricalEntry struct {
	UserID           string  `json:"userId"`
	GamesPlayed      int     `json:"gamesPlayed"`
	AverageScore     float64 `json:"averageScore"`
	BestScore        float64 `json:"bestScore"`
	FormattedAverage string  `json:"formattedAverage"`
	Rank             int     `json:"rank"`
}

// Daily ranks the members who played id on a given day. Members without a
// result are left out rather than ranked last.
func Daily(table *scoring.Table, id game.ID, members []MemberResult) []RankingEntry {
	cfg := lookup(table, id)
	entries := make([]RankingEntry, 0, len(members))

	for _, m := range members {
		if m.Result == nil {
			continue
		}
		entries = append(entries, RankingEntry{
			UserID:         m.UserID,
			Score:          cfg.Score(*m.Result),
			FormattedScore: cfg.Format(*m.Result),
		})
	}

	slices.SortStableFunc(entries, func(a, b RankingEntry) int {
		if c := cfg.Compare(a.Score, b.Score); c != 0 {
			return c
		}
		return cmp.Compare(a.UserID, b.UserID)
	})

	ranks := competitionRanks(len(entries), func(i, first int) bool {
		return entries[i].Score == entries[first].Score
	})
	for i := range entries {
		entries[i].Rank = ranks[i]
	}

	return entries
}

// Historical ranks members by their average score for id. An average within
// AverageTolerance of the first entry of a tie group shares that rank; ties
// do not chain through intermediate entries.
func Historical(table *scoring.Table, id game.ID, members []MemberHistory) []HistoricalEntry {
	cfg := lookup(table, id)
	entries := make([]HistoricalEntry, 0, len(members))

	for _, m := range members {
		if len(m.Results) == 0 {
			continue
		}

		var sum float64
		best := cfg.Score(m.Results[0])
		for _, r := range m.Results {
			s := cfg.Score(r)
			sum += s
			best = cfg.Best(best, s)
		}
		avg := sum / float64(len(m.Results))

		entries = append(entries, HistoricalEntry{
			UserID:           m.UserID,
			GamesPlayed:      len(m.Results),
			AverageScore:     avg,
			BestScore:        best,
			FormattedAverage: cfg.FormatAverage(avg),
		})
	}

	slices.SortStableFunc(entries, func(a, b HistoricalEntry) int {
		if c := cfg.Compare(a.AverageScore, b.AverageScore); c != 0 {
			return c
		}
		return cmp.Compare(a.UserID, b.UserID)
	})

	ranks := competitionRanks(len(entries), func(i, first int) bool {
		return math.Abs(entries[i].AverageScore-entries[first].AverageScore) <= AverageTolerance
	})
	for i := range entries {
		entries[i].Rank = ranks[i]
	}

	return entries
}

// competitionRanks assigns "1224" ranks to n entries already in ranked
// order. tied(i, first) reports whether entry i belongs to the tie group
// opened by entry first; an entry that does not tie takes its 1-based
// position and opens a new group.
func competitionRanks(n int, tied func(i, first int) bool) []int {
	ranks := make([]int, n)
	for i := 0; i < n; i++ {
		if i > 0 && tied(i, ranks[i-1]-1) {
			ranks[i] = ranks[i-1]
			continue
		}
		ranks[i] = i + 1
	}
	return ranks
}

// lookup tolerates a nil table by ranking with scoring.Fallback.
func lookup(table *scoring.Table, id game.ID) scoring.Config {
	if table == nil {
		return scoring.Fallback
	}
	return table.Lookup(id)
}
