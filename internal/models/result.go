package models

import (
	"encoding/json"
	"strconv"
	"time"

	"puzzleboard/internal/game"

	"github.com/google/uuid"
)

// ParsedResult is the normalized record produced from a pasted share text.
// (UserID, GameID, PuzzleNumber) identifies a play; reparsing the same text
// yields the same GameID, PuzzleNumber, ScoreValue and Won.
type ParsedResult struct {
	ID           uuid.UUID    `gorm:"type:uuid;primaryKey" json:"id"`
	UserID       string       `gorm:"not null;uniqueIndex:idx_results_identity,priority:1" json:"userId,omitempty"`
	GameID       game.ID      `gorm:"type:varchar(32);not null;uniqueIndex:idx_results_identity,priority:2;index:idx_results_game_date,priority:1" json:"gameId"`
	GameName     string       `gorm:"not null" json:"gameName"`
	PuzzleNumber PuzzleNumber `gorm:"type:varchar(32);not null;uniqueIndex:idx_results_identity,priority:3" json:"puzzleNumber"`
	Date         string       `gorm:"type:char(10);not null;index:idx_results_game_date,priority:2" json:"date"`
	Score        string       `gorm:"not null" json:"score"`
	ScoreValue   float64      `gorm:"not null" json:"scoreValue"`
	MaxScore     *float64     `json:"maxScore"`
	Won          bool         `gorm:"not null" json:"won"`
	Grid         *string      `json:"grid"`
	RawText      string       `gorm:"type:text;not null" json:"rawText"`
	Timestamp    int64        `gorm:"not null" json:"timestamp"`
	Extras       Extras       `gorm:"serializer:json" json:"extras"`
	CreatedAt    time.Time    `json:"-"`
	UpdatedAt    time.Time    `json:"-"`
}

// TableName specifies the table name for GORM
func (ParsedResult) TableName() string {
	return "results"
}

// Extras holds optional game-specific fields. Only the scoring table of the
// owning game reads them.
type Extras struct {
	IsReversePerfect bool   `json:"isReversePerfect,omitempty"`
	IsPurpleFirst    bool   `json:"isPurpleFirst,omitempty"`
	Mistakes         *int   `json:"mistakes,omitempty"`
	Hints            *int   `json:"hints,omitempty"`
	HardMode         bool   `json:"hardMode,omitempty"`
	Difficulty       string `json:"difficulty,omitempty"`
}

// PuzzleNumber identifies the day's puzzle: a sequence number for most games,
// a YYYY-MM-DD date for games that only publish dates.
type PuzzleNumber string

// PuzzleInt builds a numeric PuzzleNumber.
func PuzzleInt(n int) PuzzleNumber {
	return PuzzleNumber(strconv.Itoa(n))
}

// Int returns the numeric value when the puzzle number is a sequence number.
func (p PuzzleNumber) Int() (int, bool) {
	n, err := strconv.Atoi(string(p))
	if err != nil {
		return 0, false
	}
	return n, true
}

// MarshalJSON encodes numeric puzzle numbers as JSON numbers and dates as strings.
func (p PuzzleNumber) MarshalJSON() ([]byte, error) {
	if n, ok := p.Int(); ok {
		return []byte(strconv.Itoa(n)), nil
	}
	return json.Marshal(string(p))
}

// UnmarshalJSON accepts either a number or a string.
func (p *PuzzleNumber) UnmarshalJSON(data []byte) error {
	var n json.Number
	if err := json.Unmarshal(data, &n); err == nil {
		*p = PuzzleNumber(n.String())
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	*p = PuzzleNumber(s)
	return nil
}
