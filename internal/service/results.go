package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"puzzleboard/internal/game"
	"puzzleboard/internal/models"
	"puzzleboard/internal/parser"
	"puzzleboard/internal/repository"
	"puzzleboard/internal/scoring"
	"puzzleboard/internal/worker"

	"go.uber.org/zap"
)

var (
	// ErrUnrecognized means no parser accepted the share text.
	ErrUnrecognized = errors.New("could not recognize this format")

	// ErrNotFound means the group or member does not exist.
	ErrNotFound = errors.New("not found")

	ErrUnknownGame = errors.New("unknown game")
	ErrInvalidDate = errors.New("invalid date, expected YYYY-MM-DD")

	// ErrBusy means the persistence queue rejected the result, either
	// because it is full or because the server is shutting down.
	ErrBusy = errors.New("too many pending results, try again shortly")
)

const dateLayout = "2006-01-02"

// ResultStore is the durable storage the service reads and writes.
type ResultStore interface {
	ResultsForDate(ctx context.Context, groupID string, gameID game.ID, date string) ([]models.ParsedResult, error)
	ResultsForGame(ctx context.Context, groupID string, gameID game.ID) ([]models.ParsedResult, error)
	ResultsForGroupOnDate(ctx context.Context, groupID, date string) ([]models.ParsedResult, error)
	ResultsForGroup(ctx context.Context, groupID string) ([]models.ParsedResult, error)
	AddMember(ctx context.Context, groupID, userID string) error
	RemoveMember(ctx context.Context, groupID, userID string) error
	Members(ctx context.Context, groupID string) ([]string, error)
	Ping(ctx context.Context) error
}

// RankingCache holds group versions and encoded rankings.
type RankingCache interface {
	Version(ctx context.Context, groupID string) (int64, error)
	BumpVersion(ctx context.Context, groupIDs ...string) (int64, error)
	CacheRankings(ctx context.Context, key string, payload []byte, ttl time.Duration) error
	CachedRankings(ctx context.Context, key string) ([]byte, error)
	Ping(ctx context.Context) error
}

// ResultQueue accepts results for asynchronous persistence.
type ResultQueue interface {
	Submit(task worker.PersistTask) error
}

// Options tunes a ResultService.
type Options struct {
	RankingTTL time.Duration
	Clock      func() time.Time
}

// ResultService turns share text into stored results and group rankings
type ResultService struct {
	registry *parser.Registry
	table    *scoring.Table
	store    ResultStore
	cache    RankingCache
	queue    ResultQueue
	ttl      time.Duration
	clock    func() time.Time
	log      *zap.Logger
}

// NewResultService creates a new result service
func NewResultService(
	registry *parser.Registry,
	table *scoring.Table,
	store ResultStore,
	cache RankingCache,
	queue ResultQueue,
	opts Options,
	log *zap.Logger,
) *ResultService {
	if opts.Clock == nil {
		opts.Clock = time.Now
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &ResultService{
		registry: registry,
		table:    table,
		store:    store,
		cache:    cache,
		queue:    queue,
		ttl:      opts.RankingTTL,
		clock:    opts.Clock,
		log:      log.Named("service"),
	}
}

// Preview parses share text without storing it
func (s *ResultService) Preview(text string) (*models.ParsedResult, error) {
	res := s.registry.Parse(text)
	if res == nil {
		return nil, ErrUnrecognized
	}
	return res, nil
}

// Submit parses share text for a user and queues it for persistence.
// Rankings reflect the result once a worker has stored it and bumped the
// versions of the user's groups.
func (s *ResultService) Submit(ctx context.Context, userID, text string) (*models.ParsedResult, error) {
	res, err := s.Preview(text)
	if err != nil {
		return nil, err
	}
	res.UserID = userID

	if err := s.queue.Submit(worker.PersistTask{Result: *res}); err != nil {
		if errors.Is(err, worker.ErrQueueFull) || errors.Is(err, worker.ErrPoolClosed) {
			return nil, ErrBusy
		}
		return nil, fmt.Errorf("failed to queue result: %w", err)
	}

	s.log.Info("Result accepted",
		zap.String("user", userID),
		zap.String("game", string(res.GameID)),
		zap.String("puzzle", string(res.PuzzleNumber)),
		zap.String("score", res.Score),
	)
	return res, nil
}

// Games lists every supported game with its scoring metadata
func (s *ResultService) Games() []models.GameInfo {
	ids := game.All()
	games := make([]models.GameInfo, 0, len(ids))
	for _, id := range ids {
		cfg := s.table.Lookup(id)
		info := models.GameInfo{
			ID:        string(id),
			Name:      id.Name(),
			SortOrder: string(cfg.SortOrder),
		}
		if cfg.BestPossible != nil {
			best := cfg.BestPossible.Value
			info.BestPossible = &best
			info.BestLabel = cfg.BestPossible.Label
		}
		games = append(games, info)
	}
	return games
}

// AddMember adds a user to a group, creating the group on first use
func (s *ResultService) AddMember(ctx context.Context, groupID, userID string) error {
	if err := s.store.AddMember(ctx, groupID, userID); err != nil {
		return fmt.Errorf("failed to add member: %w", err)
	}
	s.invalidate(ctx, groupID)
	return nil
}

// RemoveMember removes a user from a group
func (s *ResultService) RemoveMember(ctx context.Context, groupID, userID string) error {
	if err := s.store.RemoveMember(ctx, groupID, userID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return fmt.Errorf("member %s of group %s: %w", userID, groupID, ErrNotFound)
		}
		return fmt.Errorf("failed to remove member: %w", err)
	}
	s.invalidate(ctx, groupID)
	return nil
}

// invalidate moves a group to a new version so cached rankings are skipped.
// A failure only delays freshness until the cache TTL expires.
func (s *ResultService) invalidate(ctx context.Context, groupID string) {
	if _, err := s.cache.BumpVersion(ctx, groupID); err != nil {
		s.log.Warn("Failed to bump group version", zap.String("group", groupID), zap.Error(err))
	}
}

// Members lists the user ids of a group
func (s *ResultService) Members(ctx context.Context, groupID string) ([]string, error) {
	members, err := s.store.Members(ctx, groupID)
	if err != nil {
		return nil, fmt.Errorf("failed to load members: %w", err)
	}
	if len(members) == 0 {
		return nil, fmt.Errorf("group %s: %w", groupID, ErrNotFound)
	}
	return members, nil
}

// HealthCheck checks the health of both Redis and PostgreSQL
func (s *ResultService) HealthCheck(ctx context.Context) error {
	if err := s.cache.Ping(ctx); err != nil {
		return fmt.Errorf("Redis health check failed: %w", err)
	}

	if err := s.store.Ping(ctx); err != nil {
		return fmt.Errorf("PostgreSQL health check failed: %w", err)
	}

	return nil
}
