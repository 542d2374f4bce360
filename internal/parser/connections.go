package parser

import (
	"fmt"
	"regexp"
	"slices"
	"strings"
	"time"

	"puzzleboard/internal/game"
	"puzzleboard/internal/models"
)

const (
	yellow = '🟨'
	green  = '🟩'
	blue   = '🟦'
	purple = '🟪'

	connectionsGroups = 4
)

// reverseOrder is the hardest-first solve order: purple, blue, green, yellow.
var reverseOrder = []rune{purple, blue, green, yellow}

var (
	connectionsRecognize = regexp.MustCompile(`(?i)\bConnections\s*\n\s*Puzzle\s*#\s*[\d,]+`)
	connectionsPuzzle    = regexp.MustCompile(`(?i)Puzzle\s*#\s*([\d,]+)`)
)

type connectionsParser struct {
	base
	epoch *epoch
}

func newConnections() Parser {
	return &connectionsParser{
		base:  base{id: game.Connections, recognize: connectionsRecognize, alphabet: []string{"🟨", "🟩", "🟦", "🟪"}},
		epoch: newEpoch(1, "2023-06-12"),
	}
}

// Extract reads the guess grid: every row of four coloured squares is one
// guess, a single-colour row is a solved group and any other row is a
// mistake.
func (p *connectionsParser) Extract(text string, now time.Time) (*models.ParsedResult, error) {
	m := connectionsPuzzle.FindStringSubmatch(text)
	if m == nil {
		return nil, p.noMatch("puzzle number")
	}
	puzzle, err := parsePuzzleNumber(m[1])
	if err != nil {
		return nil, fmt.Errorf("%s: %w", p.id, err)
	}

	rows := connectionsRows(text)
	if len(rows) == 0 {
		return nil, p.noMatch("guess grid")
	}

	var solved []rune
	mistakes := 0
	for _, row := range rows {
		if uniform(row) {
			solved = append(solved, row[0])
		} else {
			mistakes++
		}
	}

	res := p.result(text, now)
	res.PuzzleNumber = models.PuzzleInt(puzzle)
	res.Date = p.epoch.dateOf(puzzle)
	res.MaxScore = ptr(float64(connectionsGroups))
	res.Won = len(solved) == connectionsGroups
	res.ScoreValue = float64(max(connectionsGroups-mistakes, 0))
	res.Extras.Mistakes = ptr(mistakes)

	if mistakes == 0 && res.Won {
		if slices.Equal(solved, reverseOrder) {
			res.Extras.IsReversePerfect = true
		} else if solved[0] == purple {
			res.Extras.IsPurpleFirst = true
		}
	}

	switch {
	case res.Extras.IsReversePerfect:
		res.Score = "Reverse Perfect!"
	case res.Extras.IsPurpleFirst:
		res.Score = "Purple First!"
	case !res.Won:
		res.Score = fmt.Sprintf("%d/%d", len(solved), connectionsGroups)
	case mistakes == 0:
		res.Score = "Perfect!"
	default:
		res.Score = fmt.Sprintf("%d mistake%s", mistakes, plural(mistakes))
	}

	return res, nil
}

// connectionsRows collects lines holding exactly four colour squares.
func connectionsRows(text string) [][]rune {
	var rows [][]rune
	for _, line := range strings.Split(text, "\n") {
		var squares []rune
		for _, r := range line {
			switch r {
			case yellow, green, blue, purple:
				squares = append(squares, r)
			}
		}
		if len(squares) == connectionsGroups {
			rows = append(rows, squares)
		}
	}
	return rows
}

func uniform(row []rune) bool {
	for _, r := range row[1:] {
		if r != row[0] {
			return false
		}
	}
	return true
}

func plural(n int) string {
	if n == 1 {
		return ""
	}
	return "s"
}
