package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"puzzleboard/internal/game"
	"puzzleboard/internal/models"
	"puzzleboard/internal/ranking"
	"puzzleboard/internal/repository"

	"go.uber.org/zap"
)

const (
	ScopeDaily   = "daily"
	ScopeAllTime = "alltime"
)

// rankingQuery identifies one cacheable ranking of a group.
type rankingQuery struct {
	group string
	scope string
	game  game.ID
	date  string
}

func (q rankingQuery) key(version int64) string {
	g := string(q.game)
	if g == "" {
		g = "combined"
	}
	return fmt.Sprintf("%s:v%d:%s:%s:%s", q.group, version, q.scope, g, q.date)
}

// DailyRankings ranks a group's results for one game on one date.
// An empty date means today.
func (s *ResultService) DailyRankings(ctx context.Context, groupID, gameID, date string) (*models.RankingsResponse, error) {
	id, err := parseGame(gameID)
	if err != nil {
		return nil, err
	}
	date, err = s.resolveDate(date)
	if err != nil {
		return nil, err
	}

	q := rankingQuery{group: groupID, scope: ScopeDaily, game: id, date: date}
	return s.rankings(ctx, q, func(members []string) (any, error) {
		results, err := s.store.ResultsForDate(ctx, groupID, id, date)
		if err != nil {
			return nil, err
		}
		return ranking.Daily(s.table, id, latestByUser(members, results)), nil
	})
}

// HistoricalRankings ranks a group's averages for one game over all dates
func (s *ResultService) HistoricalRankings(ctx context.Context, groupID, gameID string) (*models.RankingsResponse, error) {
	id, err := parseGame(gameID)
	if err != nil {
		return nil, err
	}

	q := rankingQuery{group: groupID, scope: ScopeAllTime, game: id}
	return s.rankings(ctx, q, func(members []string) (any, error) {
		results, err := s.store.ResultsForGame(ctx, groupID, id)
		if err != nil {
			return nil, err
		}
		return ranking.Historical(s.table, id, historyByUser(members, results)), nil
	})
}

// CombinedDaily awards placement points across every game played on a date
func (s *ResultService) CombinedDaily(ctx context.Context, groupID, date string) (*models.RankingsResponse, error) {
	date, err := s.resolveDate(date)
	if err != nil {
		return nil, err
	}

	q := rankingQuery{group: groupID, scope: ScopeDaily, date: date}
	return s.rankings(ctx, q, func(members []string) (any, error) {
		results, err := s.store.ResultsForGroupOnDate(ctx, groupID, date)
		if err != nil {
			return nil, err
		}

		var games []ranking.GameRanking
		for _, id := range gamesIn(results) {
			daily := ranking.Daily(s.table, id, latestByUser(members, filterGame(results, id)))
			games = append(games, ranking.DailyPlacements(id, daily))
		}
		return ranking.Combined(games), nil
	})
}

// CombinedHistorical awards placement points from every game's all-time ranking
func (s *ResultService) CombinedHistorical(ctx context.Context, groupID string) (*models.RankingsResponse, error) {
	q := rankingQuery{group: groupID, scope: ScopeAllTime}
	return s.rankings(ctx, q, func(members []string) (any, error) {
		results, err := s.store.ResultsForGroup(ctx, groupID)
		if err != nil {
			return nil, err
		}

		var games []ranking.GameRanking
		for _, id := range gamesIn(results) {
			hist := ranking.Historical(s.table, id, historyByUser(members, filterGame(results, id)))
			games = append(games, ranking.HistoricalPlacements(id, hist))
		}
		return ranking.Combined(games), nil
	})
}

// rankings serves q from the cache when the group version still matches,
// otherwise computes it and caches the encoded result. Cache failures are
// logged and the ranking is computed from storage.
func (s *ResultService) rankings(ctx context.Context, q rankingQuery, compute func(members []string) (any, error)) (*models.RankingsResponse, error) {
	resp := &models.RankingsResponse{
		GroupID: q.group,
		GameID:  string(q.game),
		Date:    q.date,
		Scope:   q.scope,
	}

	version, err := s.cache.Version(ctx, q.group)
	cacheable := err == nil
	if err != nil {
		s.log.Warn("Failed to read group version", zap.String("group", q.group), zap.Error(err))
	}
	resp.Version = version
	key := q.key(version)

	if cacheable {
		payload, err := s.cache.CachedRankings(ctx, key)
		switch {
		case err == nil:
			resp.Data = payload
			return resp, nil
		case !errors.Is(err, repository.ErrNotFound):
			s.log.Warn("Failed to read cached rankings", zap.String("key", key), zap.Error(err))
		}
	}

	members, err := s.store.Members(ctx, q.group)
	if err != nil {
		return nil, fmt.Errorf("failed to load members: %w", err)
	}
	if len(members) == 0 {
		return nil, fmt.Errorf("group %s: %w", q.group, ErrNotFound)
	}

	entries, err := compute(members)
	if err != nil {
		return nil, fmt.Errorf("failed to load results: %w", err)
	}
	payload, err := json.Marshal(entries)
	if err != nil {
		return nil, fmt.Errorf("failed to encode rankings: %w", err)
	}
	resp.Data = payload

	if cacheable {
		if err := s.cache.CacheRankings(ctx, key, payload, s.ttl); err != nil {
			s.log.Warn("Failed to cache rankings", zap.String("key", key), zap.Error(err))
		}
	}
	return resp, nil
}

func (s *ResultService) resolveDate(date string) (string, error) {
	if date == "" {
		return s.clock().Format(dateLayout), nil
	}
	if _, err := time.Parse(dateLayout, date); err != nil {
		return "", fmt.Errorf("%q: %w", date, ErrInvalidDate)
	}
	return date, nil
}

func parseGame(raw string) (game.ID, error) {
	id, ok := game.Parse(raw)
	if !ok {
		return "", fmt.Errorf("%q: %w", raw, ErrUnknownGame)
	}
	return id, nil
}

// latestByUser pairs every member with their most recent result, or nil.
func latestByUser(members []string, results []models.ParsedResult) []ranking.MemberResult {
	latest := make(map[string]*models.ParsedResult, len(results))
	for i := range results {
		r := &results[i]
		if prev, ok := latest[r.UserID]; !ok || r.Timestamp > prev.Timestamp {
			latest[r.UserID] = r
		}
	}

	out := make([]ranking.MemberResult, 0, len(members))
	for _, m := range members {
		out = append(out, ranking.MemberResult{UserID: m, Result: latest[m]})
	}
	return out
}

func historyByUser(members []string, results []models.ParsedResult) []ranking.MemberHistory {
	byUser := make(map[string][]models.ParsedResult, len(members))
	for _, r := range results {
		byUser[r.UserID] = append(byUser[r.UserID], r)
	}

	out := make([]ranking.MemberHistory, 0, len(members))
	for _, m := range members {
		out = append(out, ranking.MemberHistory{UserID: m, Results: byUser[m]})
	}
	return out
}

// gamesIn lists the games present in results in catalog order.
func gamesIn(results []models.ParsedResult) []game.ID {
	seen := make(map[game.ID]bool)
	for _, r := range results {
		seen[r.GameID] = true
	}

	var ids []game.ID
	for _, id := range game.All() {
		if seen[id] {
			ids = append(ids, id)
		}
	}
	return ids
}

func filterGame(results []models.ParsedResult, id game.ID) []models.ParsedResult {
	var out []models.ParsedResult
	for _, r := range results {
		if r.GameID == id {
			out = append(out, r)
		}
	}
	return out
}
