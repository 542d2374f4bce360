package jobs

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"sync/atomic"
	"time"

	"puzzleboard/internal/models"

	"go.uber.org/zap"
)

// ResultFeed is the service surface the simulator drives. Submissions go
// through the same parse and queue path as HTTP requests.
type ResultFeed interface {
	Submit(ctx context.Context, userID, text string) (*models.ParsedResult, error)
	Members(ctx context.Context, groupID string) ([]string, error)
}

// SimulationManager posts generated share texts for the members of a demo
// group so rankings and WebSocket updates move without real players
type SimulationManager struct {
	feed    ResultFeed
	group   string
	members []string
	rng     *rand.Rand
	clock   func() time.Time
	log     *zap.Logger
	stopCh  chan struct{}
	wg      sync.WaitGroup
	running atomic.Bool

	// Metrics
	totalSubmissions atomic.Int64
	successCount     atomic.Int64
	errorCount       atomic.Int64
	startTime        time.Time

	tickInterval   time.Duration
	updatesPerTick int
	reportInterval time.Duration
}

// SimulatorConfig holds configuration for the simulator
type SimulatorConfig struct {
	GroupID        string
	TickInterval   time.Duration // Default: 2s
	UpdatesPerTick int           // Default: 1
	ReportInterval time.Duration // Default: 30s
	Seed           int64         // Zero seeds from the clock
	Clock          func() time.Time
}

// NewSimulationManager creates a new simulation manager
func NewSimulationManager(feed ResultFeed, config SimulatorConfig, log *zap.Logger) *SimulationManager {
	if config.TickInterval == 0 {
		config.TickInterval = 2 * time.Second
	}
	if config.UpdatesPerTick == 0 {
		config.UpdatesPerTick = 1
	}
	if config.ReportInterval == 0 {
		config.ReportInterval = 30 * time.Second
	}
	if config.Clock == nil {
		config.Clock = time.Now
	}
	if config.Seed == 0 {
		config.Seed = config.Clock().UnixNano()
	}
	if log == nil {
		log = zap.NewNop()
	}

	return &SimulationManager{
		feed:           feed,
		group:          config.GroupID,
		rng:            rand.New(rand.NewSource(config.Seed)),
		clock:          config.Clock,
		log:            log.Named("simulator"),
		stopCh:         make(chan struct{}),
		tickInterval:   config.TickInterval,
		updatesPerTick: config.UpdatesPerTick,
		reportInterval: config.ReportInterval,
	}
}

// Start loads the group's members and begins submitting results
func (sm *SimulationManager) Start(ctx context.Context) error {
	if sm.running.Load() {
		return fmt.Errorf("simulation already running")
	}

	members, err := sm.feed.Members(ctx, sm.group)
	if err != nil {
		return fmt.Errorf("failed to load members of %s: %w", sm.group, err)
	}
	if len(members) == 0 {
		return fmt.Errorf("no members in group %s", sm.group)
	}

	sm.members = members
	sm.startTime = time.Now()
	sm.running.Store(true)

	sm.log.Info("Simulation started",
		zap.String("group", sm.group),
		zap.Int("members", len(sm.members)),
		zap.Duration("tick", sm.tickInterval),
		zap.Int("updates_per_tick", sm.updatesPerTick),
	)

	sm.wg.Add(2)
	go sm.simulationLoop(ctx)
	go sm.metricsReporter(ctx)

	return nil
}

// Stop gracefully stops the simulation
func (sm *SimulationManager) Stop() {
	if !sm.running.CompareAndSwap(true, false) {
		return
	}

	close(sm.stopCh)
	sm.wg.Wait()

	sm.log.Info("Simulation stopped",
		zap.Int64("submitted", sm.totalSubmissions.Load()),
		zap.Int64("successful", sm.successCount.Load()),
		zap.Int64("errors", sm.errorCount.Load()),
		zap.Duration("duration", time.Since(sm.startTime).Round(time.Second)),
	)
}

// IsRunning returns whether the simulation is currently running
func (sm *SimulationManager) IsRunning() bool {
	return sm.running.Load()
}

// GetMetrics returns current simulation metrics
func (sm *SimulationManager) GetMetrics() map[string]interface{} {
	var elapsed time.Duration
	if !sm.startTime.IsZero() {
		elapsed = time.Since(sm.startTime)
	}

	return map[string]interface{}{
		"running":     sm.running.Load(),
		"group":       sm.group,
		"submissions": sm.totalSubmissions.Load(),
		"successful":  sm.successCount.Load(),
		"errors":      sm.errorCount.Load(),
		"uptime":      elapsed.Round(time.Second).String(),
	}
}

func (sm *SimulationManager) simulationLoop(ctx context.Context) {
	defer sm.wg.Done()

	ticker := time.NewTicker(sm.tickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-sm.stopCh:
			return
		case <-ticker.C:
			for i := 0; i < sm.updatesPerTick; i++ {
				sm.submitOne(ctx)
			}
		}
	}
}

// submitOne posts a generated result for a random member and demo game
func (sm *SimulationManager) submitOne(ctx context.Context) {
	user := sm.members[sm.rng.Intn(len(sm.members))]
	id := DemoGames[sm.rng.Intn(len(DemoGames))]

	text, err := ShareText(id, sm.clock(), sm.rng)
	if err != nil {
		sm.errorCount.Add(1)
		sm.log.Error("Failed to generate share text", zap.String("game", string(id)), zap.Error(err))
		return
	}

	sm.totalSubmissions.Add(1)
	if _, err := sm.feed.Submit(ctx, user, text); err != nil {
		// Only every hundredth failure is logged.
		if n := sm.errorCount.Add(1); n%100 == 1 {
			sm.log.Warn("Simulated submission failed",
				zap.Int64("errors", n),
				zap.String("user", user),
				zap.String("game", string(id)),
				zap.Error(err),
			)
		}
		return
	}
	sm.successCount.Add(1)
}

// metricsReporter logs metrics periodically
func (sm *SimulationManager) metricsReporter(ctx context.Context) {
	defer sm.wg.Done()

	ticker := time.NewTicker(sm.reportInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-sm.stopCh:
			return
		case <-ticker.C:
			sm.log.Info("Simulation metrics",
				zap.Int64("submitted", sm.totalSubmissions.Load()),
				zap.Int64("successful", sm.successCount.Load()),
				zap.Int64("errors", sm.errorCount.Load()),
				zap.Duration("uptime", time.Since(sm.startTime).Round(time.Second)),
			)
		}
	}
}
