package parser

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"puzzleboard/internal/game"
	"puzzleboard/internal/models"
)

var clockPattern = regexp.MustCompile(`\b(\d{1,2}(?::[0-5]\d){1,2})\b`)

// timedParser handles solve-time games. A shared result always counts as a
// win; the score is the solve time in seconds.
type timedParser struct {
	base
	puzzle     *regexp.Regexp
	date       dateFinder
	difficulty *regexp.Regexp
}

func (p *timedParser) Extract(text string, now time.Time) (*models.ParsedResult, error) {
	// Dates like 10/14/2025 never contain a colon, so the first clock
	// match is the solve time.
	m := clockPattern.FindStringSubmatch(text)
	if m == nil {
		return nil, p.noMatch("solve time")
	}
	seconds, err := parseClock(m[1])
	if err != nil {
		return nil, fmt.Errorf("%s: %w", p.id, err)
	}

	res := p.result(text, now)
	res.ScoreValue = float64(seconds)
	res.Score = game.FormatSeconds(seconds)
	res.Won = true

	if p.date != nil {
		if d, ok := p.date.find(text, now); ok {
			res.Date = d.Format(dateLayout)
		}
	}
	res.PuzzleNumber = models.PuzzleNumber(res.Date)

	if p.puzzle != nil {
		if pm := p.puzzle.FindStringSubmatch(text); pm != nil {
			n, err := parsePuzzleNumber(pm[1])
			if err != nil {
				return nil, fmt.Errorf("%s: %w", p.id, err)
			}
			res.PuzzleNumber = models.PuzzleInt(n)
		}
	}

	if p.difficulty != nil {
		if dm := p.difficulty.FindStringSubmatch(text); dm != nil {
			res.Extras.Difficulty = strings.ToLower(dm[1])
		}
	}

	return res, nil
}

var (
	miniRecognize = regexp.MustCompile(`(?i)(New York Times Mini|NYT Mini|nytimes\.com/(?:crosswords|games)/\S*mini)`)
	miniDate      = &dateMatcher{pattern: regexp.MustCompile(`\b(\d{1,2}/\d{1,2}/\d{4})\b`), layout: "1/2/2006"}

	laMiniRecognize = regexp.MustCompile(`(?i)\b(LA|Los Angeles)\s+Times\s+Mini`)

	cluesRecognize  = regexp.MustCompile(`(?i)Clues\s*by\s*Sam`)
	cluesDifficulty = regexp.MustCompile(`(?i)\((easy|medium|hard|tricky|evil)\)`)

	oneUpRecognize = regexp.MustCompile(`(?i)\bOne\s*Up\s+Puzzle`)
	oneUpPuzzle    = regexp.MustCompile(`(?i)One\s*Up\s+Puzzle\s*#\s*(\d+)`)
)

func newMini() Parser {
	return &timedParser{
		base: base{id: game.Mini, recognize: miniRecognize},
		date: miniDate,
	}
}

func newLATimesMini() Parser {
	return &timedParser{
		base: base{id: game.LATimesMini, recognize: laMiniRecognize},
		date: miniDate,
	}
}

func newCluesBySam() Parser {
	return &timedParser{
		base:       base{id: game.CluesBySam, recognize: cluesRecognize, alphabet: []string{"🟩", "🟨", "🟡", "🟢", "⬜"}},
		date:       newMonthDate(),
		difficulty: cluesDifficulty,
	}
}

func newOneUpPuzzle() Parser {
	return &timedParser{
		base:   base{id: game.OneUpPuzzle, recognize: oneUpRecognize, alphabet: []string{"🟩", "🟦", "⬜", "⭐"}},
		puzzle: oneUpPuzzle,
	}
}
