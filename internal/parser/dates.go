package parser

import (
	"regexp"
	"strconv"
	"time"

	"github.com/olebedev/when"
	"github.com/olebedev/when/rules"
	"github.com/olebedev/when/rules/en"
)

// dateFinder locates the calendar date a share text was played on. now
// anchors dates written without a year.
type dateFinder interface {
	find(text string, now time.Time) (time.Time, bool)
}

var trailingYear = regexp.MustCompile(`^[\s,]*(\d{4})\b`)

// monthDate finds dates written with a month name, such as "Oct 14th 2025"
// or "October 14, 2025".
type monthDate struct {
	parser *when.Parser
}

func newMonthDate() *monthDate {
	w := when.New(nil)
	w.Add(en.ExactMonthDate(rules.Override))
	return &monthDate{parser: w}
}

func (m *monthDate) find(text string, now time.Time) (time.Time, bool) {
	r, err := m.parser.Parse(text, now)
	if err != nil || r == nil {
		return time.Time{}, false
	}

	year := r.Time.Year()
	if end := r.Index + len(r.Text); end <= len(r.Source) {
		if y := trailingYear.FindStringSubmatch(r.Source[end:]); y != nil {
			if n, err := strconv.Atoi(y[1]); err == nil {
				year = n
			}
		}
	}
	return time.Date(year, r.Time.Month(), r.Time.Day(), 0, 0, 0, 0, time.UTC), true
}
