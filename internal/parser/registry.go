package parser

import (
	"fmt"
	"strings"
	"time"

	"puzzleboard/internal/game"
	"puzzleboard/internal/models"

	"go.uber.org/zap"
)

// Config controls a Registry.
type Config struct {
	// Clock supplies "now" for timestamps and date fallback. Defaults to time.Now.
	Clock func() time.Time
	// WinThresholds overrides DefaultWinThresholds per game.
	WinThresholds map[game.ID]float64
}

// Registry dispatches share text to the first parser that both recognises
// and extracts it. It is immutable after construction and safe for
// concurrent use.
type Registry struct {
	parsers []Parser
	clock   func() time.Time
	log     *zap.Logger
}

// NewRegistry builds a registry that tries parsers in the given order.
func NewRegistry(cfg Config, log *zap.Logger, parsers ...Parser) *Registry {
	clock := cfg.Clock
	if clock == nil {
		clock = time.Now
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Registry{
		parsers: append([]Parser(nil), parsers...),
		clock:   clock,
		log:     log.Named("parser"),
	}
}

// Parse returns the first successful extraction, or nil when no parser
// accepts the text. A parser that errors or panics is logged and skipped.
func (r *Registry) Parse(text string) *models.ParsedResult {
	if strings.TrimSpace(text) == "" {
		return nil
	}

	now := r.clock()
	for _, p := range r.parsers {
		res, err := r.try(p, text, now)
		if err != nil {
			r.log.Warn("Parser failed, trying next",
				zap.String("game", string(p.ID())),
				zap.Error(err),
			)
			continue
		}
		if res != nil {
			return res
		}
	}
	return nil
}

// try runs one parser with panic isolation. A parser that does not
// recognise the text yields (nil, nil).
func (r *Registry) try(p Parser, text string, now time.Time) (res *models.ParsedResult, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			res = nil
			err = fmt.Errorf("panic: %v", rec)
		}
	}()

	if !p.Recognize(text) {
		return nil, nil
	}
	res, err = p.Extract(text, now)
	if err != nil {
		return nil, err
	}
	if res == nil {
		return nil, fmt.Errorf("%s: %w: empty result", p.ID(), ErrNoMatch)
	}
	return res, nil
}

// Games lists the registered game ids in dispatch order.
func (r *Registry) Games() []game.ID {
	ids := make([]game.ID, 0, len(r.parsers))
	for _, p := range r.parsers {
		ids = append(ids, p.ID())
	}
	return ids
}

// Lookup returns the parser registered for id.
func (r *Registry) Lookup(id game.ID) (Parser, bool) {
	for _, p := range r.parsers {
		if p.ID() == id {
			return p, true
		}
	}
	return nil, false
}
