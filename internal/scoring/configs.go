package scoring

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"puzzleboard/internal/game"
	"puzzleboard/internal/models"
)

// Connections sentinel scores. Ascending order puts them ahead of any
// mistake count.
const (
	ReversePerfectScore = -2
	PurpleFirstScore    = -1
)

func defaultConfigs() map[game.ID]Config {
	return map[game.ID]Config{
		game.Wordle:        attempts(1),
		game.Bandle:        attempts(1),
		game.Flagle:        attempts(1),
		game.Connections:   connections(),
		game.Strands:       counted(Asc, ref(0), plural("hint", "hints", "Perfect")),
		game.Mini:          timed(),
		game.LATimesMini:   timed(),
		game.OneUpPuzzle:   timed(),
		game.CluesBySam:    timed(),
		game.MinuteCryptic: counted(Asc, nil, plural("hint", "hints", "No hints")),
		game.Catfishing:    outOf(10, 10),
		game.TimeGuessr:    outOf(50000, 50000),
		game.Scrandle:      outOf(10, 10),
		game.Eruptle:       outOf(10, 10),
		game.DailyDozen:    outOf(12, 12),
		game.Thrice:        outOf(15, 15),
		game.EncloseHorse: {
			SortOrder: Desc,
			Score:     scoreValue,
			Format: func(r models.ParsedResult) string {
				return trimFloat(r.ScoreValue) + "%"
			},
			BestPossible: ref(100),
		},
		game.Travle: {
			SortOrder: Asc,
			Score:     scoreValue,
			Format: func(r models.ParsedResult) string {
				if !r.Won {
					return "Failed"
				}
				return "+" + trimFloat(r.ScoreValue)
			},
			BestPossible: ref(0),
		},
		game.KindaHardGolf: counted(Asc, ref(1), plural("stroke", "strokes", "")),
		game.KickoffLeague: counted(Asc, ref(1), plural("guess", "guesses", "")),
		game.MoreOrLess:    counted(Desc, nil, plural("in a row", "in a row", "")),
	}
}

func ref(v float64) *Reference {
	return &Reference{Value: v}
}

func scoreValue(r models.ParsedResult) float64 {
	return r.ScoreValue
}

func attempts(best float64) Config {
	return Config{
		SortOrder: Asc,
		Score:     scoreValue,
		Format: func(r models.ParsedResult) string {
			limit := 6
			if r.MaxScore != nil {
				limit = int(*r.MaxScore)
			}
			if !r.Won {
				return fmt.Sprintf("X/%d", limit)
			}
			return fmt.Sprintf("%d/%d", int(r.ScoreValue), limit)
		},
		BestPossible: ref(best),
	}
}

func timed() Config {
	return Config{
		SortOrder: Asc,
		Score:     scoreValue,
		Format: func(r models.ParsedResult) string {
			return game.FormatSeconds(int(r.ScoreValue))
		},
		FormatAverage: func(v float64) string {
			return game.FormatSeconds(int(math.Round(v)))
		},
	}
}

func outOf(limit, best float64) Config {
	return Config{
		SortOrder: Desc,
		Score:     scoreValue,
		Format: func(r models.ParsedResult) string {
			return withThousands(r.ScoreValue) + "/" + withThousands(limit)
		},
		BestPossible: ref(best),
	}
}

func counted(order SortOrder, best *Reference, format func(float64) string) Config {
	return Config{
		SortOrder: order,
		Score:     scoreValue,
		Format: func(r models.ParsedResult) string {
			return format(r.ScoreValue)
		},
		BestPossible: best,
	}
}

func plural(one, many, zero string) func(float64) string {
	return func(v float64) string {
		switch {
		case v == 0 && zero != "":
			return zero
		case v == 1:
			return "1 " + one
		default:
			return trimFloat(v) + " " + many
		}
	}
}

func connections() Config {
	return Config{
		SortOrder: Custom,
		Score:     connectionsScore,
		Format: func(r models.ParsedResult) string {
			switch {
			case r.Extras.IsReversePerfect:
				return "Reverse Perfect!"
			case r.Extras.IsPurpleFirst:
				return "Purple First!"
			case !r.Won:
				return "Failed"
			}
			mistakes := int(connectionsScore(r))
			switch mistakes {
			case 0:
				return "Perfect!"
			case 1:
				return "1 mistake"
			default:
				return fmt.Sprintf("%d mistakes", mistakes)
			}
		},
		BestPossible: &Reference{Value: ReversePerfectScore, Label: "RP"},
	}
}

func connectionsScore(r models.ParsedResult) float64 {
	switch {
	case r.Extras.IsReversePerfect:
		return ReversePerfectScore
	case r.Extras.IsPurpleFirst:
		return PurpleFirstScore
	case r.Extras.Mistakes != nil:
		return float64(*r.Extras.Mistakes)
	default:
		return 4 - r.ScoreValue
	}
}

func trimFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// withThousands renders whole numbers with comma grouping (50000 -> 50,000).
func withThousands(v float64) string {
	if v != math.Trunc(v) {
		return trimFloat(v)
	}
	s := strconv.FormatInt(int64(math.Abs(v)), 10)
	var b strings.Builder
	if v < 0 {
		b.WriteByte('-')
	}
	pre := len(s) % 3
	if pre > 0 {
		b.WriteString(s[:pre])
	}
	for i := pre; i < len(s); i += 3 {
		if b.Len() > 0 && !(v < 0 && b.Len() == 1) {
			b.WriteByte(',')
		}
		b.WriteString(s[i : i+3])
	}
	return b.String()
}
