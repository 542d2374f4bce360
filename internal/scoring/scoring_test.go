package scoring

import (
	"testing"

	"puzzleboard/internal/game"
	"puzzleboard/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultCoversEveryGame(t *testing.T) {
	table := Default()
	for _, id := range game.All() {
		assert.True(t, table.Has(id), "missing config for %s", id)
	}
}

func TestReferenceTable(t *testing.T) {
	table := Default()

	tests := []struct {
		id    game.ID
		order SortOrder
		best  *float64
	}{
		{game.Wordle, Asc, f(1)},
		{game.Connections, Custom, f(ReversePerfectScore)},
		{game.Strands, Asc, f(0)},
		{game.Mini, Asc, nil},
		{game.Bandle, Asc, f(1)},
		{game.Catfishing, Desc, f(10)},
		{game.TimeGuessr, Desc, f(50000)},
		{game.Travle, Asc, f(0)},
		{game.Flagle, Asc, f(1)},
		{game.KindaHardGolf, Asc, f(1)},
		{game.EncloseHorse, Desc, f(100)},
		{game.KickoffLeague, Asc, f(1)},
		{game.Scrandle, Desc, f(10)},
		{game.OneUpPuzzle, Asc, nil},
		{game.CluesBySam, Asc, nil},
		{game.MinuteCryptic, Asc, nil},
		{game.DailyDozen, Desc, f(12)},
		{game.MoreOrLess, Desc, nil},
		{game.Eruptle, Desc, f(10)},
		{game.Thrice, Desc, f(15)},
	}

	for _, tt := range tests {
		t.Run(string(tt.id), func(t *testing.T) {
			cfg := table.Lookup(tt.id)
			assert.Equal(t, tt.order, cfg.SortOrder)
			if tt.best == nil {
				assert.Nil(t, cfg.BestPossible)
				return
			}
			require.NotNil(t, cfg.BestPossible)
			assert.Equal(t, *tt.best, cfg.BestPossible.Value)
		})
	}

	assert.Equal(t, "RP", table.Lookup(game.Connections).BestPossible.Label)
}

func TestNewTableRejectsIncompleteConfigs(t *testing.T) {
	configs := defaultConfigs()
	delete(configs, game.Thrice)
	_, err := NewTable(configs)
	assert.ErrorContains(t, err, "thrice")

	configs = defaultConfigs()
	cfg := configs[game.Wordle]
	cfg.Format = nil
	configs[game.Wordle] = cfg
	_, err = NewTable(configs)
	assert.ErrorContains(t, err, "missing Score or Format")

	configs = defaultConfigs()
	configs["chess"] = Fallback
	_, err = NewTable(configs)
	assert.ErrorContains(t, err, "unknown game")
}

func TestLookupFallsBackForUnknownGame(t *testing.T) {
	cfg := Default().Lookup("chess")
	assert.Equal(t, Desc, cfg.SortOrder)
	assert.Equal(t, 7.0, cfg.Score(models.ParsedResult{ScoreValue: 7}))
	assert.Equal(t, "7", cfg.Format(models.ParsedResult{ScoreValue: 7}))
	assert.Equal(t, "seven", cfg.Format(models.ParsedResult{Score: "seven"}))
}

func TestCompare(t *testing.T) {
	asc := Config{SortOrder: Asc}
	assert.Negative(t, asc.Compare(1, 2))
	assert.Positive(t, asc.Compare(3, 2))
	assert.Zero(t, asc.Compare(2, 2))
	assert.Equal(t, 1.0, asc.Best(1, 2))

	desc := Config{SortOrder: Desc}
	assert.Negative(t, desc.Compare(2, 1))
	assert.Equal(t, 2.0, desc.Best(1, 2))

	custom := Config{SortOrder: Custom}
	assert.Negative(t, custom.Compare(ReversePerfectScore, PurpleFirstScore))
	assert.Negative(t, custom.Compare(PurpleFirstScore, 0))
}

func TestConnectionsScoreAndFormat(t *testing.T) {
	cfg := Default().Lookup(game.Connections)
	two := 2

	tests := []struct {
		name   string
		result models.ParsedResult
		score  float64
		format string
	}{
		{"reverse perfect", models.ParsedResult{ScoreValue: 4, Won: true, Extras: models.Extras{IsReversePerfect: true}}, -2, "Reverse Perfect!"},
		{"purple first", models.ParsedResult{ScoreValue: 4, Won: true, Extras: models.Extras{IsPurpleFirst: true}}, -1, "Purple First!"},
		{"perfect", models.ParsedResult{ScoreValue: 4, Won: true}, 0, "Perfect!"},
		{"two mistakes", models.ParsedResult{ScoreValue: 2, Won: true, Extras: models.Extras{Mistakes: &two}}, 2, "2 mistakes"},
		{"failed", models.ParsedResult{ScoreValue: 0, Won: false}, 4, "Failed"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.score, cfg.Score(tt.result))
			assert.Equal(t, tt.format, cfg.Format(tt.result))
		})
	}
}

func TestFormats(t *testing.T) {
	table := Default()
	six := 6.0

	assert.Equal(t, "4/6", table.Lookup(game.Wordle).Format(models.ParsedResult{ScoreValue: 4, MaxScore: &six, Won: true}))
	assert.Equal(t, "X/6", table.Lookup(game.Wordle).Format(models.ParsedResult{ScoreValue: 7, MaxScore: &six}))
	assert.Equal(t, "1:23", table.Lookup(game.Mini).Format(models.ParsedResult{ScoreValue: 83}))
	assert.Equal(t, "1:02:03", table.Lookup(game.CluesBySam).Format(models.ParsedResult{ScoreValue: 3723}))
	assert.Equal(t, "35,442/50,000", table.Lookup(game.TimeGuessr).Format(models.ParsedResult{ScoreValue: 35442}))
	assert.Equal(t, "7.5/10", table.Lookup(game.Catfishing).Format(models.ParsedResult{ScoreValue: 7.5}))
	assert.Equal(t, "Perfect", table.Lookup(game.Strands).Format(models.ParsedResult{ScoreValue: 0}))
	assert.Equal(t, "1 hint", table.Lookup(game.Strands).Format(models.ParsedResult{ScoreValue: 1}))
	assert.Equal(t, "+2", table.Lookup(game.Travle).Format(models.ParsedResult{ScoreValue: 2, Won: true}))
	assert.Equal(t, "87%", table.Lookup(game.EncloseHorse).Format(models.ParsedResult{ScoreValue: 87}))
	assert.Equal(t, "12 in a row", table.Lookup(game.MoreOrLess).Format(models.ParsedResult{ScoreValue: 12}))

	assert.Equal(t, "1:05", table.Lookup(game.Mini).FormatAverage(64.6))
	assert.Equal(t, "3.33", table.Lookup(game.Wordle).FormatAverage(10.0/3))
}

func TestWithThousands(t *testing.T) {
	assert.Equal(t, "999", withThousands(999))
	assert.Equal(t, "1,000", withThousands(1000))
	assert.Equal(t, "-1,234", withThousands(-1234))
	assert.Equal(t, "-123", withThousands(-123))
	assert.Equal(t, "1,234,567", withThousands(1234567))
}

func f(v float64) *float64 {
	return &v
}
