// Package game enumerates the daily puzzle games the leaderboard understands.
package game

// ID is the stable lowercase identifier of a supported game.
type ID string

const (
	Wordle         ID = "wordle"
	Connections    ID = "connections"
	Strands        ID = "strands"
	Mini           ID = "mini"
	LATimesMini    ID = "latimes-mini"
	Bandle         ID = "bandle"
	Catfishing     ID = "catfishing"
	TimeGuessr     ID = "timeguessr"
	Travle         ID = "travle"
	Flagle         ID = "flagle"
	KindaHardGolf  ID = "kinda-hard-golf"
	EncloseHorse   ID = "enclose-horse"
	KickoffLeague  ID = "kickoff-league"
	Scrandle       ID = "scrandle"
	OneUpPuzzle    ID = "one-up-puzzle"
	CluesBySam     ID = "clues-by-sam"
	MinuteCryptic  ID = "minute-cryptic"
	DailyDozen     ID = "daily-dozen"
	MoreOrLess     ID = "more-or-less"
	Eruptle        ID = "eruptle"
	Thrice         ID = "thrice"
)

var names = map[ID]string{
	Wordle:        "Wordle",
	Connections:   "Connections",
	Strands:       "Strands",
	Mini:          "Mini Crossword",
	LATimesMini:   "LA Times Mini",
	Bandle:        "Bandle",
	Catfishing:    "Catfishing",
	TimeGuessr:    "TimeGuessr",
	Travle:        "Travle",
	Flagle:        "Flagle",
	KindaHardGolf: "Kinda Hard Golf",
	EncloseHorse:  "enclose.horse",
	KickoffLeague: "Kickoff League",
	Scrandle:      "Scrandle",
	OneUpPuzzle:   "One Up Puzzle",
	CluesBySam:    "Clues by Sam",
	MinuteCryptic: "Minute Cryptic",
	DailyDozen:    "Daily Dozen",
	MoreOrLess:    "More or Less",
	Eruptle:       "Eruptle",
	Thrice:        "Thrice",
}

// All returns every supported game in a fixed order.
func All() []ID {
	return []ID{
		Wordle, Connections, Strands, Mini, LATimesMini, Bandle, Catfishing,
		TimeGuessr, Travle, Flagle, KindaHardGolf, EncloseHorse, KickoffLeague,
		Scrandle, OneUpPuzzle, CluesBySam, MinuteCryptic, DailyDozen,
		MoreOrLess, Eruptle, Thrice,
	}
}

// Valid reports whether id names a supported game.
func (id ID) Valid() bool {
	_, ok := names[id]
	return ok
}

// Name returns the display name, or the raw id for unknown games.
func (id ID) Name() string {
	if n, ok := names[id]; ok {
		return n
	}
	return string(id)
}

func (id ID) String() string {
	return string(id)
}

// Parse converts a raw identifier into an ID.
func Parse(s string) (ID, bool) {
	id := ID(s)
	return id, id.Valid()
}
