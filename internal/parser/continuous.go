package parser

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"puzzleboard/internal/game"
	"puzzleboard/internal/models"
)

// Win thresholds for continuous-score games. A result at or above the
// threshold counts as won. Config.WinThresholds overrides them per game.
const (
	CatfishingWinThreshold   = 5
	TimeGuessrWinThreshold   = 25000
	ScrandleWinThreshold     = 5
	EruptleWinThreshold      = 5
	DailyDozenWinThreshold   = 6
	ThriceWinThreshold       = 8
	EncloseHorseWinThreshold = 50
)

// DefaultWinThresholds returns a fresh copy of the built-in thresholds.
func DefaultWinThresholds() map[game.ID]float64 {
	return map[game.ID]float64{
		game.Catfishing:   CatfishingWinThreshold,
		game.TimeGuessr:   TimeGuessrWinThreshold,
		game.Scrandle:     ScrandleWinThreshold,
		game.Eruptle:      EruptleWinThreshold,
		game.DailyDozen:   DailyDozenWinThreshold,
		game.Thrice:       ThriceWinThreshold,
		game.EncloseHorse: EncloseHorseWinThreshold,
	}
}

// continuousParser handles a numeric score out of a fixed denominator. The
// pattern captures the puzzle number in group 1 and the score in group 2.
type continuousParser struct {
	base
	pattern   *regexp.Regexp
	limit     float64
	display   func(raw string, limit float64) string
	threshold float64
}

func (p *continuousParser) Extract(text string, now time.Time) (*models.ParsedResult, error) {
	m := p.pattern.FindStringSubmatch(text)
	if m == nil {
		return nil, p.noMatch("score")
	}

	puzzle, err := parsePuzzleNumber(m[1])
	if err != nil {
		return nil, fmt.Errorf("%s: %w", p.id, err)
	}
	score, err := parseNumber(m[2])
	if err != nil {
		return nil, fmt.Errorf("%s: %w", p.id, err)
	}
	if score < 0 || score > p.limit {
		return nil, fmt.Errorf("%s: score %v outside 0..%v", p.id, score, p.limit)
	}

	res := p.result(text, now)
	res.PuzzleNumber = models.PuzzleInt(puzzle)
	res.ScoreValue = score
	res.MaxScore = ptr(p.limit)
	res.Won = score >= p.threshold
	res.Score = p.display(strings.TrimSpace(m[2]), p.limit)

	return res, nil
}

func fraction(label string) func(string, float64) string {
	return func(raw string, _ float64) string {
		return raw + "/" + label
	}
}

func percent(raw string, _ float64) string {
	return raw + "%"
}

var (
	catfishingRecognize = regexp.MustCompile(`(?i)catfishing\.net`)
	catfishingPattern   = regexp.MustCompile(`#\s*(\d+)\s*[-–—:]\s*(\d+(?:\.\d+)?)\s*/\s*10\b`)

	timeGuessrRecognize = regexp.MustCompile(`(?i)\bTimeGuessr\s+#\s*\d+`)
	timeGuessrPattern   = regexp.MustCompile(`(?i)TimeGuessr\s+#\s*(\d+)\s+([\d,]+)\s*/\s*50,?000`)

	scrandleRecognize = regexp.MustCompile(`(?i)\bScrandle\b`)
	scrandlePattern   = regexp.MustCompile(`(?i)Scrandle\s*#?\s*(\d+)\s*[-–—:]?\s*(\d+)\s*/\s*10\b`)

	eruptleRecognize = regexp.MustCompile(`(?i)\bEruptle\b`)
	eruptlePattern   = regexp.MustCompile(`(?i)Eruptle\s*#?\s*(\d+)\s*[-–—:]?\s*(\d+)\s*/\s*10\b`)

	dailyDozenRecognize = regexp.MustCompile(`(?i)\bDaily\s+Dozen\b`)
	dailyDozenPattern   = regexp.MustCompile(`(?i)Daily\s+Dozen(?:\s+Trivia)?\s*#?\s*(\d+)[^\d]+?(\d+)\s*/\s*12\b`)

	thriceRecognize = regexp.MustCompile(`(?i)\bThrice\b`)
	thricePattern   = regexp.MustCompile(`(?i)Thrice(?:\s+Game)?\s*#?\s*(\d+)[^\d]+?(\d+)\s*(?:points?|pts|/\s*15)\b`)

	encloseRecognize = regexp.MustCompile(`(?i)\benclose\.horse\b`)
	enclosePattern   = regexp.MustCompile(`(?i)enclose\.horse\s+(?:Day\s*|#\s*)?(\d+)[^\d]+?(\d+(?:\.\d+)?)\s*%`)
)

func newCatfishing(threshold float64) Parser {
	return &continuousParser{
		base:      base{id: game.Catfishing, recognize: catfishingRecognize, alphabet: []string{"🐟", "🐈", "🐱"}},
		pattern:   catfishingPattern,
		limit:     10,
		display:   fraction("10"),
		threshold: threshold,
	}
}

func newTimeGuessr(threshold float64) Parser {
	return &continuousParser{
		base:      base{id: game.TimeGuessr, recognize: timeGuessrRecognize, alphabet: []string{"🌎", "📅", "🟩", "🟨", "⬛", "🟥"}},
		pattern:   timeGuessrPattern,
		limit:     50000,
		display:   fraction("50,000"),
		threshold: threshold,
	}
}

func newScrandle(threshold float64) Parser {
	return &continuousParser{
		base:      base{id: game.Scrandle, recognize: scrandleRecognize, alphabet: []string{"🟩", "🟥"}},
		pattern:   scrandlePattern,
		limit:     10,
		display:   fraction("10"),
		threshold: threshold,
	}
}

func newEruptle(threshold float64) Parser {
	return &continuousParser{
		base:      base{id: game.Eruptle, recognize: eruptleRecognize, alphabet: []string{"🌋", "🟩", "🟥", "🟨"}},
		pattern:   eruptlePattern,
		limit:     10,
		display:   fraction("10"),
		threshold: threshold,
	}
}

func newDailyDozen(threshold float64) Parser {
	return &continuousParser{
		base:      base{id: game.DailyDozen, recognize: dailyDozenRecognize, alphabet: []string{"🟩", "🟥", "⬜"}},
		pattern:   dailyDozenPattern,
		limit:     12,
		display:   fraction("12"),
		threshold: threshold,
	}
}

func newThrice(threshold float64) Parser {
	return &continuousParser{
		base:      base{id: game.Thrice, recognize: thriceRecognize, alphabet: []string{"1️⃣", "2️⃣", "3️⃣", "❌", "🟩", "🟥"}},
		pattern:   thricePattern,
		limit:     15,
		display:   fraction("15"),
		threshold: threshold,
	}
}

func newEncloseHorse(threshold float64) Parser {
	return &continuousParser{
		base:      base{id: game.EncloseHorse, recognize: encloseRecognize, alphabet: []string{"🐴", "🟩", "🟫", "⬛"}},
		pattern:   enclosePattern,
		limit:     100,
		display:   percent,
		threshold: threshold,
	}
}
