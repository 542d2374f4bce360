package repository

import (
	"context"
	"errors"
	"fmt"

	"puzzleboard/internal/game"
	"puzzleboard/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ErrNotFound is returned when a requested row does not exist.
var ErrNotFound = errors.New("not found")

// resultUpdateColumns are overwritten when the same play is submitted again.
var resultUpdateColumns = []string{
	"game_name", "date", "score", "score_value", "max_score", "won",
	"grid", "raw_text", "timestamp", "extras", "updated_at",
}

// PostgresRepository handles all PostgreSQL operations
type PostgresRepository struct {
	db *gorm.DB
}

// NewPostgresRepository creates a new Postgres repository
func NewPostgresRepository(db *gorm.DB) *PostgresRepository {
	return &PostgresRepository{
		db: db,
	}
}

// UpsertResult stores a result, replacing an earlier submission of the same
// (user, game, puzzle) play. The original row id is kept.
func (r *PostgresRepository) UpsertResult(ctx context.Context, result *models.ParsedResult) error {
	return r.db.WithContext(ctx).Clauses(resultConflict()).Create(result).Error
}

// BulkUpsertResults upserts results in batches (used by the seeder)
func (r *PostgresRepository) BulkUpsertResults(ctx context.Context, results []models.ParsedResult, batchSize int) error {
	if len(results) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Clauses(resultConflict()).CreateInBatches(results, batchSize).Error
}

func resultConflict() clause.OnConflict {
	return clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "game_id"}, {Name: "puzzle_number"}},
		DoUpdates: clause.AssignmentColumns(resultUpdateColumns),
	}
}

// ResultsForDate returns a group's results for one game on one date.
func (r *PostgresRepository) ResultsForDate(ctx context.Context, groupID string, gameID game.ID, date string) ([]models.ParsedResult, error) {
	var results []models.ParsedResult
	err := r.inGroup(ctx, groupID).
		Where("results.game_id = ? AND results.date = ?", gameID, date).
		Order("results.user_id, results.timestamp").
		Find(&results).Error
	return results, err
}

// ResultsForGame returns every result a group has recorded for a game.
func (r *PostgresRepository) ResultsForGame(ctx context.Context, groupID string, gameID game.ID) ([]models.ParsedResult, error) {
	var results []models.ParsedResult
	err := r.inGroup(ctx, groupID).
		Where("results.game_id = ?", gameID).
		Order("results.user_id, results.date").
		Find(&results).Error
	return results, err
}

// ResultsForGroupOnDate returns a group's results for all games on a date.
func (r *PostgresRepository) ResultsForGroupOnDate(ctx context.Context, groupID, date string) ([]models.ParsedResult, error) {
	var results []models.ParsedResult
	err := r.inGroup(ctx, groupID).
		Where("results.date = ?", date).
		Order("results.game_id, results.user_id").
		Find(&results).Error
	return results, err
}

// ResultsForGroup returns every result of every member of a group.
func (r *PostgresRepository) ResultsForGroup(ctx context.Context, groupID string) ([]models.ParsedResult, error) {
	var results []models.ParsedResult
	err := r.inGroup(ctx, groupID).
		Order("results.game_id, results.user_id, results.date").
		Find(&results).Error
	return results, err
}

func (r *PostgresRepository) inGroup(ctx context.Context, groupID string) *gorm.DB {
	return r.db.WithContext(ctx).
		Model(&models.ParsedResult{}).
		Joins("JOIN group_members gm ON gm.user_id = results.user_id AND gm.group_id = ?", groupID)
}

// AddMember adds a user to a group. Adding an existing member is a no-op.
func (r *PostgresRepository) AddMember(ctx context.Context, groupID, userID string) error {
	member := models.GroupMember{GroupID: groupID, UserID: userID}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "group_id"}, {Name: "user_id"}},
		DoNothing: true,
	}).Create(&member).Error
}

// RemoveMember removes a user from a group
func (r *PostgresRepository) RemoveMember(ctx context.Context, groupID, userID string) error {
	res := r.db.WithContext(ctx).
		Where("group_id = ? AND user_id = ?", groupID, userID).
		Delete(&models.GroupMember{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("member %s of group %s: %w", userID, groupID, ErrNotFound)
	}
	return nil
}

// Members lists the user ids of a group in id order
func (r *PostgresRepository) Members(ctx context.Context, groupID string) ([]string, error) {
	var ids []string
	err := r.db.WithContext(ctx).
		Model(&models.GroupMember{}).
		Where("group_id = ?", groupID).
		Order("user_id").
		Pluck("user_id", &ids).Error
	return ids, err
}

// GroupsForUser lists the groups a user belongs to
func (r *PostgresRepository) GroupsForUser(ctx context.Context, userID string) ([]string, error) {
	var ids []string
	err := r.db.WithContext(ctx).
		Model(&models.GroupMember{}).
		Where("user_id = ?", userID).
		Order("group_id").
		Pluck("group_id", &ids).Error
	return ids, err
}

// CountResults returns the total number of stored results
func (r *PostgresRepository) CountResults(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.ParsedResult{}).Count(&count).Error
	return count, err
}

// Ping checks if database is reachable
func (r *PostgresRepository) Ping(ctx context.Context) error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// Close closes the database connection
func (r *PostgresRepository) Close() error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// AutoMigrate runs database migrations
func (r *PostgresRepository) AutoMigrate() error {
	return r.db.AutoMigrate(&models.ParsedResult{}, &models.GroupMember{})
}
