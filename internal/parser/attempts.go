package parser

import (
	"fmt"
	"regexp"
	"strconv"
	"time"

	"puzzleboard/internal/game"
	"puzzleboard/internal/models"
)

// attemptsParser handles "<number> <digit|X>/<max>" games. The pattern must
// name the groups puzzle, attempt and max; a date group is optional.
type attemptsParser struct {
	base
	pattern *regexp.Regexp
	epoch   *epoch
	date    *dateMatcher
}

func (p *attemptsParser) Extract(text string, now time.Time) (*models.ParsedResult, error) {
	m := p.pattern.FindStringSubmatch(text)
	if m == nil {
		return nil, p.noMatch("attempt count")
	}
	group := func(name string) string {
		if i := p.pattern.SubexpIndex(name); i >= 0 {
			return m[i]
		}
		return ""
	}

	puzzle, err := parsePuzzleNumber(group("puzzle"))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", p.id, err)
	}
	limit, err := strconv.Atoi(group("max"))
	if err != nil || limit <= 0 {
		return nil, fmt.Errorf("%s: invalid attempt limit %q", p.id, group("max"))
	}

	res := p.result(text, now)
	res.PuzzleNumber = models.PuzzleInt(puzzle)
	res.MaxScore = ptr(float64(limit))

	switch attempt := group("attempt"); attempt {
	case "X", "x":
		res.Won = false
		res.ScoreValue = float64(limit + 1)
		res.Score = fmt.Sprintf("X/%d", limit)
	default:
		n, err := strconv.Atoi(attempt)
		if err != nil || n < 1 || n > limit {
			return nil, fmt.Errorf("%s: attempt %q outside 1..%d", p.id, attempt, limit)
		}
		res.Won = true
		res.ScoreValue = float64(n)
		res.Score = fmt.Sprintf("%d/%d", n, limit)
	}

	if group("hard") != "" {
		res.Extras.HardMode = true
	}

	if d, ok := p.date.find(text, now); ok {
		res.Date = d.Format(dateLayout)
	} else if p.epoch != nil {
		res.Date = p.epoch.dateOf(puzzle)
	}

	return res, nil
}

var (
	wordleRecognize = regexp.MustCompile(`(?i)\bWordle\s+[\d.,]+\s+[X\d]/\d`)
	wordlePattern   = regexp.MustCompile(`(?i)\bWordle\s+(?P<puzzle>\d{1,3}(?:[.,]\d{3})*|\d+)\s+(?P<attempt>[X\d])/(?P<max>\d)(?P<hard>\*)?`)

	bandleRecognize = regexp.MustCompile(`(?i)\bBandle\s+#\s*\d+\s+[X\d]/\d`)
	bandlePattern   = regexp.MustCompile(`(?i)\bBandle\s+#\s*(?P<puzzle>\d+)\s+(?P<attempt>[X\d])/(?P<max>\d+)`)

	flagleRecognize = regexp.MustCompile(`(?i)#Flagle\s+#\s*\d+`)
	flaglePattern   = regexp.MustCompile(`(?i)#Flagle\s+#\s*(?P<puzzle>\d+)\s+(?:\([\d.]+\)\s+)?(?P<attempt>[X\d])/(?P<max>\d+)`)
	flagleDate      = &dateMatcher{pattern: regexp.MustCompile(`\((\d{1,2}\.\d{1,2}\.\d{4})\)`), layout: "2.1.2006"}
)

func newWordle() Parser {
	return &attemptsParser{
		base:    base{id: game.Wordle, recognize: wordleRecognize, alphabet: []string{"🟩", "🟨", "⬛", "⬜", "🟧", "🟦"}},
		pattern: wordlePattern,
		epoch:   newEpoch(0, "2021-06-19"),
	}
}

func newBandle() Parser {
	return &attemptsParser{
		base:    base{id: game.Bandle, recognize: bandleRecognize, alphabet: []string{"🟥", "🟩", "🟨", "⬛", "⬜"}},
		pattern: bandlePattern,
	}
}

func newFlagle() Parser {
	return &attemptsParser{
		base:    base{id: game.Flagle, recognize: flagleRecognize, alphabet: []string{"🟩", "🟥", "⬛", "⬜"}},
		pattern: flaglePattern,
		date:    flagleDate,
	}
}
