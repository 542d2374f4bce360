package ranking

import (
	"cmp"
	"slices"

	"puzzleboard/internal/game"
)

// Placement is one member's rank inside a single game's ranking.
type Placement struct {
	UserID string
	Rank   int
}

// GameRanking is the ranking of one game, daily or historical.
type GameRanking struct {
	GameID     game.ID
	Placements []Placement
}

// CombinedEntry is a member's standing on the cross-game leaderboard.
type CombinedEntry struct {
	UserID      string `json:"userId"`
	TotalPoints int    `json:"totalPoints"`
	GamesPlayed int    `json:"gamesPlayed"`
	FirstPlaces int    `json:"firstPlaces"`
	Rank        int    `json:"rank"`
}

var rankPoints = [...]int{10, 7, 5, 3, 2}

// PointsForRank returns the combined-leaderboard award for a rank:
// 1st 10, 2nd 7, 3rd 5, 4th 3, 5th 2, anything lower 1.
func PointsForRank(rank int) int {
	if rank >= 1 && rank <= len(rankPoints) {
		return rankPoints[rank-1]
	}
	return 1
}

// DailyPlacements adapts a Daily ranking for Combined.
func DailyPlacements(id game.ID, entries []RankingEntry) GameRanking {
	p := make([]Placement, len(entries))
	for i, e := range entries {
		p[i] = Placement{UserID: e.UserID, Rank: e.Rank}
	}
	return GameRanking{GameID: id, Placements: p}
}

// HistoricalPlacements adapts a Historical ranking for Combined.
func HistoricalPlacements(id game.ID, entries []HistoricalEntry) GameRanking {
	p := make([]Placement, len(entries))
	for i, e := range entries {
		p[i] = Placement{UserID: e.UserID, Rank: e.Rank}
	}
	return GameRanking{GameID: id, Placements: p}
}

// Combined merges per-game rankings into one leaderboard. GamesPlayed counts
// the game rankings a member appears in. Entries are ordered by points, then
// first places, then games played; the rank itself only looks at points.
func Combined(rankings []GameRanking) []CombinedEntry {
	byUser := make(map[string]*CombinedEntry)
	order := make([]string, 0)

	for _, gr := range rankings {
		for _, p := range gr.Placements {
			e, ok := byUser[p.UserID]
			if !ok {
				e = &CombinedEntry{UserID: p.UserID}
				byUser[p.UserID] = e
				order = append(order, p.UserID)
			}
			e.TotalPoints += PointsForRank(p.Rank)
			e.GamesPlayed++
			if p.Rank == 1 {
				e.FirstPlaces++
			}
		}
	}

	entries := make([]CombinedEntry, 0, len(order))
	for _, id := range order {
		entries = append(entries, *byUser[id])
	}

	slices.SortStableFunc(entries, func(a, b CombinedEntry) int {
		if c := cmp.Compare(b.TotalPoints, a.TotalPoints); c != 0 {
			return c
		}
		if c := cmp.Compare(b.FirstPlaces, a.FirstPlaces); c != 0 {
			return c
		}
		if c := cmp.Compare(b.GamesPlayed, a.GamesPlayed); c != 0 {
			return c
		}
		return cmp.Compare(a.UserID, b.UserID)
	})

	ranks := competitionRanks(len(entries), func(i, first int) bool {
		return entries[i].TotalPoints == entries[first].TotalPoints
	})
	for i := range entries {
		entries[i].Rank = ranks[i]
	}

	return entries
}
