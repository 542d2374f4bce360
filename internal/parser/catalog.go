package parser

import (
	"puzzleboard/internal/game"

	"go.uber.org/zap"
)

// Default returns a registry holding every built-in parser.
//
// Order matters. Specific formats come before broad ones so a looser
// pattern never claims text meant for another game:
//   - Wordle, Connections and Strands carry distinctive headers;
//   - LA Times Mini precedes NYT Mini;
//   - #travle and #Flagle hashtags precede score-only games;
//   - Daily Dozen, Thrice and More or Less match loose words and go last.
func Default(cfg Config, log *zap.Logger) *Registry {
	th := DefaultWinThresholds()
	for id, v := range cfg.WinThresholds {
		th[id] = v
	}

	return NewRegistry(cfg, log,
		newWordle(),
		newConnections(),
		newStrands(),
		newLATimesMini(),
		newMini(),
		newBandle(),
		newFlagle(),
		newTravle(),
		newCatfishing(th[game.Catfishing]),
		newTimeGuessr(th[game.TimeGuessr]),
		newCluesBySam(),
		newOneUpPuzzle(),
		newMinuteCryptic(),
		newKindaHardGolf(),
		newKickoffLeague(),
		newEncloseHorse(th[game.EncloseHorse]),
		newScrandle(th[game.Scrandle]),
		newEruptle(th[game.Eruptle]),
		newDailyDozen(th[game.DailyDozen]),
		newThrice(th[game.Thrice]),
		newMoreOrLess(),
	)
}
