package jobs

import (
	"fmt"
	"math/rand"
	"strconv"
	"strings"
	"time"

	"puzzleboard/internal/game"
)

// DemoGames are the games ShareText can produce
var DemoGames = []game.ID{
	game.Wordle,
	game.Connections,
	game.Strands,
	game.Mini,
	game.Travle,
	game.TimeGuessr,
	game.Catfishing,
	game.Scrandle,
}

var (
	wordleStart      = time.Date(2021, 6, 19, 0, 0, 0, 0, time.UTC)
	connectionsStart = time.Date(2023, 6, 11, 0, 0, 0, 0, time.UTC)
	strandsStart     = time.Date(2024, 3, 3, 0, 0, 0, 0, time.UTC)
	demoStart        = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
)

var connectionsColours = []string{"🟨", "🟩", "🟦", "🟪"}

// ShareText fabricates a plausible share text for id on date. The text
// round-trips through the parser registry.
func ShareText(id game.ID, date time.Time, rng *rand.Rand) (string, error) {
	switch id {
	case game.Wordle:
		return wordleText(daysSince(wordleStart, date), rng), nil
	case game.Connections:
		return connectionsText(daysSince(connectionsStart, date), rng), nil
	case game.Strands:
		hints := strings.Repeat("💡", rng.Intn(3))
		return fmt.Sprintf("Strands #%d\n“Demo theme”\n%s🔵🔵🟡\n🔵🔵🔵", daysSince(strandsStart, date), hints), nil
	case game.Mini:
		secs := 20 + rng.Intn(160)
		return fmt.Sprintf("I solved the %d/%d/%d New York Times Mini Crossword in %d:%02d!",
			int(date.Month()), date.Day(), date.Year(), secs/60, secs%60), nil
	case game.Travle:
		return fmt.Sprintf("#travle #%d +%d\n✅✅🟧✅", daysSince(demoStart, date), rng.Intn(5)), nil
	case game.TimeGuessr:
		score := 10000 + rng.Intn(40001)
		return fmt.Sprintf("TimeGuessr #%d %s/50,000\n🌎🟩🟨⬛", daysSince(demoStart, date), thousands(score)), nil
	case game.Catfishing:
		return fmt.Sprintf("catfishing.net\n#%d - %d/10\n🐟🐈🐟", daysSince(demoStart, date), rng.Intn(11)), nil
	case game.Scrandle:
		return fmt.Sprintf("Scrandle #%d %d/10\n🟩🟥🟩", daysSince(demoStart, date), rng.Intn(11)), nil
	}
	return "", fmt.Errorf("no demo share text for %s", id)
}

func daysSince(start, date time.Time) int {
	d := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, time.UTC)
	return int(d.Sub(start).Hours() / 24)
}

func wordleText(puzzle int, rng *rand.Rand) string {
	attempts := 1 + rng.Intn(7)

	var rows []string
	for i := 1; i < attempts && i <= 6; i++ {
		rows = append(rows, "⬛🟨⬛🟩⬛")
	}
	score := "X"
	if attempts <= 6 {
		score = strconv.Itoa(attempts)
		rows = append(rows, "🟩🟩🟩🟩🟩")
	}
	return fmt.Sprintf("Wordle %s %s/6\n\n%s", thousands(puzzle), score, strings.Join(rows, "\n"))
}

func connectionsText(puzzle int, rng *rand.Rand) string {
	order := append([]string(nil), connectionsColours...)
	rng.Shuffle(len(order), func(i, j int) { order[i], order[j] = order[j], order[i] })
	mistakes := rng.Intn(5)

	rows := []string{fmt.Sprintf("Connections\nPuzzle #%d", puzzle)}
	for i := 0; i < mistakes; i++ {
		rows = append(rows, order[0]+order[0]+order[1]+order[0])
	}
	if mistakes < 4 {
		for _, c := range order {
			rows = append(rows, strings.Repeat(c, 4))
		}
	}
	return strings.Join(rows, "\n")
}

// thousands renders n with comma separators
func thousands(n int) string {
	s := strconv.Itoa(n)
	for i := len(s) - 3; i > 0; i -= 3 {
		s = s[:i] + "," + s[i:]
	}
	return s
}
