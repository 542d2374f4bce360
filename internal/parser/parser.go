// Package parser turns pasted puzzle share text into models.ParsedResult.
//
// Each supported game has one Parser. Recognition is a cheap pattern test;
// extraction does the real work and reports failures as errors so the
// Registry can fall through to the next candidate.
package parser

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"puzzleboard/internal/game"
	"puzzleboard/internal/models"

	"github.com/google/uuid"
)

// ErrNoMatch is returned by Extract when recognised text lacks the fields
// the game needs.
var ErrNoMatch = errors.New("share text does not match game format")

const dateLayout = "2006-01-02"

// Parser recognises and extracts one game's share text.
type Parser interface {
	ID() game.ID
	Name() string
	Recognize(text string) bool
	Extract(text string, now time.Time) (*models.ParsedResult, error)
}

// base carries what every game parser shares: identity, the recognition
// pattern and the emoji alphabet of its grid.
type base struct {
	id        game.ID
	recognize *regexp.Regexp
	alphabet  []string
}

func (b base) ID() game.ID  { return b.id }
func (b base) Name() string { return b.id.Name() }

func (b base) Recognize(text string) bool {
	return b.recognize.MatchString(text)
}

// result starts a ParsedResult stamped with identity, timing and grid.
func (b base) result(text string, now time.Time) *models.ParsedResult {
	return &models.ParsedResult{
		ID:        uuid.New(),
		GameID:    b.id,
		GameName:  b.Name(),
		Date:      now.Format(dateLayout),
		RawText:   text,
		Timestamp: now.UnixMilli(),
		Grid:      extractGrid(text, b.alphabet),
	}
}

func (b base) noMatch(what string) error {
	return fmt.Errorf("%s: %w: missing %s", b.id, ErrNoMatch, what)
}

// epoch maps a puzzle number to a calendar date for games published once a
// day since a known start.
type epoch struct {
	number int
	date   time.Time
}

func newEpoch(number int, date string) *epoch {
	d, err := time.Parse(dateLayout, date)
	if err != nil {
		panic(err)
	}
	return &epoch{number: number, date: d}
}

func (e *epoch) dateOf(puzzle int) string {
	return e.date.AddDate(0, 0, puzzle-e.number).Format(dateLayout)
}

// dateMatcher pulls a numeric calendar date out of share text. The
// submatches are joined with single spaces before parsing with layout.
type dateMatcher struct {
	pattern *regexp.Regexp
	layout  string
}

func (d *dateMatcher) find(text string, _ time.Time) (time.Time, bool) {
	if d == nil {
		return time.Time{}, false
	}
	m := d.pattern.FindStringSubmatch(text)
	if m == nil {
		return time.Time{}, false
	}
	t, err := time.Parse(d.layout, strings.Join(m[1:], " "))
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// parsePuzzleNumber accepts grouped numbers such as 1,234 or 1.234.
func parsePuzzleNumber(s string) (int, error) {
	s = strings.NewReplacer(",", "", ".", "", " ", "").Replace(s)
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("invalid puzzle number %q: %w", s, err)
	}
	return n, nil
}

// parseNumber parses a score that may carry thousands separators.
func parseNumber(s string) (float64, error) {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", "")
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid number %q: %w", s, err)
	}
	return v, nil
}

// parseClock converts m:ss or h:mm:ss into seconds.
func parseClock(s string) (int, error) {
	parts := strings.Split(s, ":")
	if len(parts) < 2 || len(parts) > 3 {
		return 0, fmt.Errorf("invalid time %q", s)
	}
	total := 0
	for i, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil {
			return 0, fmt.Errorf("invalid time %q: %w", s, err)
		}
		if i > 0 && n > 59 {
			return 0, fmt.Errorf("invalid time %q", s)
		}
		total = total*60 + n
	}
	return total, nil
}

func ptr[T any](v T) *T {
	return &v
}
