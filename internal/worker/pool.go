package worker

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"puzzleboard/internal/models"

	"go.uber.org/zap"
)

var (
	// ErrQueueFull is returned by Submit when the queue has no free slot.
	ErrQueueFull = errors.New("worker pool queue full (backpressure)")

	// ErrPoolClosed is returned by Submit once Shutdown has started.
	ErrPoolClosed = errors.New("worker pool is shut down")
)

// taskTimeout bounds the storage calls of one task.
const taskTimeout = 5 * time.Second

// PersistTask represents a parsed result waiting to be stored
type PersistTask struct {
	Result models.ParsedResult
}

// ResultWriter stores results and resolves the groups a user belongs to.
type ResultWriter interface {
	UpsertResult(ctx context.Context, result *models.ParsedResult) error
	GroupsForUser(ctx context.Context, userID string) ([]string, error)
}

// VersionBumper signals that group rankings changed.
type VersionBumper interface {
	BumpVersion(ctx context.Context, groupIDs ...string) (int64, error)
}

// WorkerPool manages a pool of workers for asynchronous database writes
type WorkerPool struct {
	jobs        chan PersistTask
	workerCount int
	store       ResultWriter
	versions    VersionBumper
	log         *zap.Logger
	wg          sync.WaitGroup
	ctx         context.Context
	cancel      context.CancelFunc
	metrics     *PoolMetrics

	// closeMu guards closed and the close of jobs against concurrent sends
	closeMu sync.RWMutex
	closed  bool
}

// PoolMetrics tracks worker pool performance
type PoolMetrics struct {
	mu              sync.RWMutex
	processed       int64
	failed          int64
	backpressure    int64
	totalProcessing time.Duration
}

// NewWorkerPool creates a new worker pool
func NewWorkerPool(workerCount, queueSize int, store ResultWriter, versions VersionBumper, log *zap.Logger) *WorkerPool {
	ctx, cancel := context.WithCancel(context.Background())
	if log == nil {
		log = zap.NewNop()
	}

	return &WorkerPool{
		jobs:        make(chan PersistTask, queueSize),
		workerCount: workerCount,
		store:       store,
		versions:    versions,
		log:         log.Named("worker"),
		ctx:         ctx,
		cancel:      cancel,
		metrics:     &PoolMetrics{},
	}
}

// Start initializes and starts all worker goroutines
func (wp *WorkerPool) Start() {
	wp.log.Info("Starting worker pool",
		zap.Int("workers", wp.workerCount),
		zap.Int("queue_size", cap(wp.jobs)),
	)

	for i := 1; i <= wp.workerCount; i++ {
		wp.wg.Add(1)
		go wp.worker(i)
	}
}

// worker is the main worker loop that processes jobs
func (wp *WorkerPool) worker(id int) {
	defer wp.wg.Done()

	for {
		select {
		case <-wp.ctx.Done():
			wp.log.Debug("Worker shutting down", zap.Int("worker", id))
			return

		case task, ok := <-wp.jobs:
			if !ok {
				return
			}
			wp.processTask(id, task)
		}
	}
}

// processTask stores one result and bumps the versions of the owner's groups
func (wp *WorkerPool) processTask(workerID int, task PersistTask) {
	result := task.Result
	fields := []zap.Field{
		zap.Int("worker", workerID),
		zap.String("user", result.UserID),
		zap.String("game", string(result.GameID)),
		zap.String("puzzle", string(result.PuzzleNumber)),
	}

	defer func() {
		if r := recover(); r != nil {
			wp.log.Error("Worker panic recovered", append(fields, zap.Any("panic", r))...)
			wp.metrics.incrementFailed()
		}
	}()

	startTime := time.Now()

	ctx, cancel := context.WithTimeout(wp.ctx, taskTimeout)
	defer cancel()

	if err := wp.persist(ctx, &result); err != nil {
		wp.log.Error("Failed to persist result", append(fields, zap.Error(err), zap.Duration("took", time.Since(startTime)))...)
		wp.metrics.incrementFailed()
		return
	}

	processingTime := time.Since(startTime)
	wp.log.Debug("Persisted result", append(fields, zap.Duration("took", processingTime))...)
	wp.metrics.recordSuccess(processingTime)
}

func (wp *WorkerPool) persist(ctx context.Context, result *models.ParsedResult) error {
	if err := wp.store.UpsertResult(ctx, result); err != nil {
		return fmt.Errorf("upsert: %w", err)
	}

	groups, err := wp.store.GroupsForUser(ctx, result.UserID)
	if err != nil {
		return fmt.Errorf("lookup groups: %w", err)
	}
	if _, err := wp.versions.BumpVersion(ctx, groups...); err != nil {
		return fmt.Errorf("bump version: %w", err)
	}
	return nil
}

// Submit attempts to add a task to the queue with backpressure handling
func (wp *WorkerPool) Submit(task PersistTask) error {
	wp.closeMu.RLock()
	defer wp.closeMu.RUnlock()

	if wp.closed {
		return ErrPoolClosed
	}

	select {
	case wp.jobs <- task:
		return nil

	default:
		wp.log.Warn("Queue full, rejecting result",
			zap.String("user", task.Result.UserID),
			zap.String("game", string(task.Result.GameID)),
		)
		wp.metrics.incrementBackpressure()
		return ErrQueueFull
	}
}

// Shutdown gracefully stops the worker pool
func (wp *WorkerPool) Shutdown(timeout time.Duration) error {
	wp.log.Info("Shutting down worker pool")

	// No more jobs after this point; workers drain what is queued
	wp.closeMu.Lock()
	if !wp.closed {
		wp.closed = true
		close(wp.jobs)
	}
	wp.closeMu.Unlock()

	done := make(chan struct{})
	go func() {
		wp.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		wp.cancel()
		wp.logMetrics()
		return nil

	case <-time.After(timeout):
		wp.cancel()
		wp.log.Warn("Worker pool shutdown timed out", zap.Duration("timeout", timeout))
		return fmt.Errorf("shutdown timeout exceeded")
	}
}

// GetMetrics returns a snapshot of the pool metrics
func (wp *WorkerPool) GetMetrics() map[string]interface{} {
	wp.metrics.mu.RLock()
	defer wp.metrics.mu.RUnlock()

	avgProcessing := time.Duration(0)
	if wp.metrics.processed > 0 {
		avgProcessing = wp.metrics.totalProcessing / time.Duration(wp.metrics.processed)
	}

	return map[string]interface{}{
		"processed":           wp.metrics.processed,
		"failed":              wp.metrics.failed,
		"backpressure_events": wp.metrics.backpressure,
		"avg_processing_time": avgProcessing.String(),
		"queue_utilization":   fmt.Sprintf("%d/%d", len(wp.jobs), cap(wp.jobs)),
	}
}

func (wp *WorkerPool) logMetrics() {
	m := wp.GetMetrics()
	wp.log.Info("Worker pool metrics",
		zap.Any("processed", m["processed"]),
		zap.Any("failed", m["failed"]),
		zap.Any("backpressure_events", m["backpressure_events"]),
		zap.Any("avg_processing_time", m["avg_processing_time"]),
	)
}

// Metrics helper methods
func (pm *PoolMetrics) recordSuccess(duration time.Duration) {
	pm.mu.Lock()
	defer pm.mu.Unlock()
	pm.processed++
	pm.totalProcessing += duration
}

func (pm *PoolMetrics) incrementFailed() {
	pm.mu.Lock()
	defer pm.mu.Unlock()
	pm.failed++
}

func (pm *PoolMetrics) incrementBackpressure() {
	pm.mu.Lock()
	defer pm.mu.Unlock()
	pm.backpressure++
}
