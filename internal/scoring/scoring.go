// Package scoring describes how each game's results compare against each other.
package scoring

import (
	"fmt"
	"math"
	"strconv"

	"puzzleboard/internal/game"
	"puzzleboard/internal/models"
)

// SortOrder tells which end of the score range ranks first.
type SortOrder string

const (
	// Asc ranks lower scores first (times, attempts, mistakes, extra guesses).
	Asc SortOrder = "asc"
	// Desc ranks higher scores first (points, percentages, streaks).
	Desc SortOrder = "desc"
	// Custom compares ascending over sentinel-encoded scores, where
	// achievements map to negative values.
	Custom SortOrder = "custom"
)

// Reference is the informational best achievable score of a game.
type Reference struct {
	Value float64
	Label string
}

// Config holds the comparison semantics of one game. Score and Format are
// required; NewTable rejects configs without them.
type Config struct {
	SortOrder     SortOrder
	Score         func(models.ParsedResult) float64
	Format        func(models.ParsedResult) string
	FormatAverage func(float64) string
	BestPossible  *Reference
}

// Ascending reports whether lower scores rank first.
func (c Config) Ascending() bool {
	return c.SortOrder != Desc
}

// Compare orders two scores: negative when a ranks ahead of b.
func (c Config) Compare(a, b float64) int {
	switch {
	case a == b:
		return 0
	case (a < b) == c.Ascending():
		return -1
	default:
		return 1
	}
}

// Best returns the better of two scores.
func (c Config) Best(a, b float64) float64 {
	if c.Compare(b, a) < 0 {
		return b
	}
	return a
}

// Fallback is used for game ids missing from a table: higher ScoreValue
// wins and the result's own display string is shown.
var Fallback = Config{
	SortOrder: Desc,
	Score:     func(r models.ParsedResult) float64 { return r.ScoreValue },
	Format: func(r models.ParsedResult) string {
		if r.Score != "" {
			return r.Score
		}
		return strconv.FormatFloat(r.ScoreValue, 'g', -1, 64)
	},
	FormatAverage: formatDecimal,
}

// Table maps every supported game to its Config. It is immutable after
// construction and safe for concurrent use.
type Table struct {
	configs map[game.ID]Config
}

// NewTable validates that configs covers every game in game.All and that
// each entry is complete.
func NewTable(configs map[game.ID]Config) (*Table, error) {
	t := &Table{configs: make(map[game.ID]Config, len(configs))}

	for _, id := range game.All() {
		cfg, ok := configs[id]
		if !ok {
			return nil, fmt.Errorf("scoring: no config for game %q", id)
		}
		switch cfg.SortOrder {
		case Asc, Desc, Custom:
		default:
			return nil, fmt.Errorf("scoring: game %q has invalid sort order %q", id, cfg.SortOrder)
		}
		if cfg.Score == nil || cfg.Format == nil {
			return nil, fmt.Errorf("scoring: game %q is missing Score or Format", id)
		}
		if cfg.FormatAverage == nil {
			cfg.FormatAverage = formatDecimal
		}
		t.configs[id] = cfg
	}

	for id := range configs {
		if !id.Valid() {
			return nil, fmt.Errorf("scoring: unknown game %q", id)
		}
	}

	return t, nil
}

// Default returns the built-in table.
func Default() *Table {
	t, err := NewTable(defaultConfigs())
	if err != nil {
		panic(err)
	}
	return t
}

// Lookup returns the config for id, or Fallback for unknown games.
func (t *Table) Lookup(id game.ID) Config {
	if cfg, ok := t.configs[id]; ok {
		return cfg
	}
	return Fallback
}

// Has reports whether id has a dedicated config.
func (t *Table) Has(id game.ID) bool {
	_, ok := t.configs[id]
	return ok
}

func formatDecimal(v float64) string {
	return strconv.FormatFloat(math.Round(v*100)/100, 'f', 2, 64)
}
