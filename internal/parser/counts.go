package parser

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"puzzleboard/internal/game"
	"puzzleboard/internal/models"
)

// countParser handles games whose score is a bare count. Whether a higher
// count is better is decided by the scoring table, not here.
//
// The count comes from the first submatch of count; when count does not
// match and glyph is set, occurrences of glyph are counted instead.
type countParser struct {
	base
	puzzle *regexp.Regexp
	count  *regexp.Regexp
	glyph  string
	epoch  *epoch
	date   *dateMatcher
	hints  bool
	format func(n int) string
}

func (p *countParser) Extract(text string, now time.Time) (*models.ParsedResult, error) {
	n, ok, err := p.readCount(text)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", p.id, err)
	}
	if !ok {
		return nil, p.noMatch("count")
	}

	res := p.result(text, now)
	res.ScoreValue = float64(n)
	res.Score = p.format(n)
	res.Won = true

	if d, ok := p.date.find(text, now); ok {
		res.Date = d.Format(dateLayout)
	}
	res.PuzzleNumber = models.PuzzleNumber(res.Date)

	if p.puzzle != nil {
		if m := p.puzzle.FindStringSubmatch(text); m != nil {
			puzzle, err := parsePuzzleNumber(m[1])
			if err != nil {
				return nil, fmt.Errorf("%s: %w", p.id, err)
			}
			res.PuzzleNumber = models.PuzzleInt(puzzle)
			if p.epoch != nil {
				res.Date = p.epoch.dateOf(puzzle)
			}
		} else if p.epoch != nil {
			return nil, p.noMatch("puzzle number")
		}
	}

	if p.hints {
		res.Extras.Hints = ptr(n)
	}

	return res, nil
}

func (p *countParser) readCount(text string) (int, bool, error) {
	if p.count != nil {
		if m := p.count.FindStringSubmatch(text); m != nil {
			if strings.EqualFold(m[1], "no") {
				return 0, true, nil
			}
			n, err := strconv.Atoi(m[1])
			if err != nil {
				return 0, false, fmt.Errorf("invalid count %q: %w", m[1], err)
			}
			return n, true, nil
		}
	}
	if p.glyph != "" {
		return strings.Count(text, p.glyph), true, nil
	}
	return 0, false, nil
}

func unit(one, many string) func(int) string {
	return func(n int) string {
		if n == 1 {
			return "1 " + one
		}
		return strconv.Itoa(n) + " " + many
	}
}

const hintGlyph = "💡"

var (
	strandsRecognize = regexp.MustCompile(`(?i)\bStrands\s+#\s*[\d,]+`)
	strandsPuzzle    = regexp.MustCompile(`(?i)Strands\s+#\s*([\d,]+)`)

	moreOrLessRecognize = regexp.MustCompile(`(?i)\bMore\s*or\s*Less\b`)
	moreOrLessPuzzle    = regexp.MustCompile(`(?i)More\s*or\s*Less\s*#\s*(\d+)`)
	moreOrLessCount     = regexp.MustCompile(`(?i)(?:streak(?:\s+of)?|score)\s*:?\s*(\d+)`)

	golfRecognize = regexp.MustCompile(`(?i)\bKinda\s+Hard\s+Golf\b`)
	golfPuzzle    = regexp.MustCompile(`(?i)Kinda\s+Hard\s+Golf\s*#\s*(\d+)`)
	golfCount     = regexp.MustCompile(`(?i)\b(\d+)\s*(?:strokes?|shots?)\b`)

	kickoffRecognize = regexp.MustCompile(`(?i)\bKick-?off\s+League\b`)
	kickoffPuzzle    = regexp.MustCompile(`(?i)Kick-?off\s+League\s*#\s*(\d+)`)
	kickoffCount     = regexp.MustCompile(`(?i)\b(\d+)\s*(?:guess(?:es)?|tries|attempts?)\b`)

	crypticRecognize = regexp.MustCompile(`(?i)\bMinute\s+Cryptic\b`)
	crypticPuzzle    = regexp.MustCompile(`(?i)Minute\s+Cryptic\s*#\s*(\d+)`)
	crypticCount     = regexp.MustCompile(`(?i)\b(\d+|no)\s+hints?\b`)
	crypticDate      = &dateMatcher{pattern: regexp.MustCompile(`\b(\d{1,2}/\d{1,2}/\d{4})\b`), layout: "2/1/2006"}
)

func newStrands() Parser {
	return &countParser{
		base:   base{id: game.Strands, recognize: strandsRecognize, alphabet: []string{"🔵", "🟡", hintGlyph}},
		puzzle: strandsPuzzle,
		glyph:  hintGlyph,
		epoch:  newEpoch(1, "2024-03-04"),
		hints:  true,
		format: func(n int) string {
			if n == 0 {
				return "Perfect"
			}
			return unit("hint", "hints")(n)
		},
	}
}

func newMoreOrLess() Parser {
	return &countParser{
		base:   base{id: game.MoreOrLess, recognize: moreOrLessRecognize, alphabet: []string{"✅", "❌", "🟩", "🟥"}},
		puzzle: moreOrLessPuzzle,
		count:  moreOrLessCount,
		format: unit("in a row", "in a row"),
	}
}

func newKindaHardGolf() Parser {
	return &countParser{
		base:   base{id: game.KindaHardGolf, recognize: golfRecognize, alphabet: []string{"⛳", "🟩", "🟨", "⬜"}},
		puzzle: golfPuzzle,
		count:  golfCount,
		format: unit("stroke", "strokes"),
	}
}

func newKickoffLeague() Parser {
	return &countParser{
		base:   base{id: game.KickoffLeague, recognize: kickoffRecognize, alphabet: []string{"⚽", "🟩", "🟥", "🟨", "⬜"}},
		puzzle: kickoffPuzzle,
		count:  kickoffCount,
		format: unit("guess", "guesses"),
	}
}

func newMinuteCryptic() Parser {
	return &countParser{
		base:   base{id: game.MinuteCryptic, recognize: crypticRecognize, alphabet: []string{"🟣", "⚪", hintGlyph}},
		puzzle: crypticPuzzle,
		count:  crypticCount,
		glyph:  hintGlyph,
		date:   crypticDate,
		hints:  true,
		format: func(n int) string {
			if n == 0 {
				return "No hints"
			}
			return unit("hint", "hints")(n)
		},
	}
}

// travleParser reads "#travle #N +K" (K extra guesses) or "#travle #N (K away)"
// for a failed route.
type travleParser struct {
	base
}

// TravleFailBase is added to the remaining distance of a failed route so any
// failure ranks behind every completed one.
const TravleFailBase = 10

var (
	travleRecognize = regexp.MustCompile(`(?i)#travle\b`)
	travlePattern   = regexp.MustCompile(`(?i)#travle\s+#\s*(\d+)\s+(?:\+(\d+)|\((\d+)\s+away\))`)
)

func newTravle() Parser {
	return &travleParser{
		base: base{id: game.Travle, recognize: travleRecognize, alphabet: []string{"✅", "🟧", "🟥", "🟩", "⬛"}},
	}
}

func (p *travleParser) Extract(text string, now time.Time) (*models.ParsedResult, error) {
	m := travlePattern.FindStringSubmatch(text)
	if m == nil {
		return nil, p.noMatch("extra guesses")
	}
	puzzle, err := parsePuzzleNumber(m[1])
	if err != nil {
		return nil, fmt.Errorf("%s: %w", p.id, err)
	}

	res := p.result(text, now)
	res.PuzzleNumber = models.PuzzleInt(puzzle)

	if m[2] != "" {
		extra, err := strconv.Atoi(m[2])
		if err != nil {
			return nil, fmt.Errorf("%s: invalid extra guesses %q: %w", p.id, m[2], err)
		}
		res.ScoreValue = float64(extra)
		res.Score = "+" + m[2]
		res.Won = true
		return res, nil
	}

	away, err := strconv.Atoi(m[3])
	if err != nil {
		return nil, fmt.Errorf("%s: invalid distance %q: %w", p.id, m[3], err)
	}
	res.ScoreValue = float64(TravleFailBase + away)
	res.Score = fmt.Sprintf("(%d away)", away)
	res.Won = false
	return res, nil
}
