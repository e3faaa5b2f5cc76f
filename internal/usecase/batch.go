package usecase

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	domrepo "wellpulse/internal/domain/repository"
	"wellpulse/pkg/config"
	"wellpulse/pkg/logger"
)

// ErrRunInProgress is returned when a batch run is requested while one is
// still executing. Triggers should surface it as a conflict, not a failure.
var ErrRunInProgress = errors.New("batch run already in progress")

// RunResult summarizes one batch pass.
type RunResult struct {
	DateKey     string        `json:"date_key"`
	ActiveUsers int           `json:"active_users"`
	Processed   int           `json:"processed"`
	Skipped     int           `json:"skipped"`
	Failed      int           `json:"failed"`
	Duration    time.Duration `json:"duration"`
}

// BatchRunner discovers active users and fans their pipeline passes out to
// a bounded worker pool. Per-user failures and panics are isolated and
// counted, never aborting the batch.
type BatchRunner struct {
	pipeline *PipelineRunner
	logs     domrepo.LogStore
	metrics  domrepo.Metrics
	cfg      *config.Config
	log      *logger.Logger
	running  atomic.Bool
}

func NewBatchRunner(
	pipeline *PipelineRunner,
	logs domrepo.LogStore,
	metrics domrepo.Metrics,
	cfg *config.Config,
	log *logger.Logger,
) *BatchRunner {
	return &BatchRunner{
		pipeline: pipeline,
		logs:     logs,
		metrics:  metrics,
		cfg:      cfg,
		log:      log,
	}
}

// Run processes every active user for the given target date. Only one run
// may execute at a time.
func (b *BatchRunner) Run(ctx context.Context, dateKey string) (*RunResult, error) {
	if !b.running.CompareAndSwap(false, true) {
		return nil, ErrRunInProgress
	}
	defer b.running.Store(false)

	start := time.Now()
	b.log.Info("batch started", logger.String("date_key", dateKey))

	cutoff := time.Now().UTC().AddDate(0, 0, -b.cfg.Pipeline.ActiveUserDays)
	users, err := b.logs.ActiveUsers(ctx, cutoff)
	if err != nil {
		return nil, fmt.Errorf("discover active users: %w", err)
	}
	b.metrics.RecordActiveUsers(len(users))
	b.log.Info("active users discovered", logger.Int("count", len(users)))

	var processed, skipped, failed atomic.Int64

	jobs := make(chan string)
	var wg sync.WaitGroup
	for w := 0; w < b.cfg.Pipeline.Workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for uid := range jobs {
				switch b.processOne(ctx, uid, dateKey) {
				case OutcomeProcessed:
					processed.Add(1)
				case OutcomeSkipped:
					skipped.Add(1)
				default:
					failed.Add(1)
				}
			}
		}()
	}

	for _, uid := range users {
		select {
		case <-ctx.Done():
			b.log.Warn("batch cancelled", logger.Error(ctx.Err()))
		case jobs <- uid:
			continue
		}
		break
	}
	close(jobs)
	wg.Wait()

	res := &RunResult{
		DateKey:     dateKey,
		ActiveUsers: len(users),
		Processed:   int(processed.Load()),
		Skipped:     int(skipped.Load()),
		Failed:      int(failed.Load()),
		Duration:    time.Since(start),
	}
	b.metrics.RecordBatchDuration(res.Duration.Seconds())
	b.log.Info("batch completed",
		logger.String("date_key", dateKey),
		logger.Int("processed", res.Processed),
		logger.Int("skipped", res.Skipped),
		logger.Int("failed", res.Failed),
		logger.Duration("took", res.Duration))
	return res, nil
}

// Running reports whether a batch pass is currently executing.
func (b *BatchRunner) Running() bool {
	return b.running.Load()
}

// processOne isolates a single user: errors and panics are logged and
// turned into a failed outcome.
func (b *BatchRunner) processOne(ctx context.Context, userID, dateKey string) (out Outcome) {
	defer func() {
		if r := recover(); r != nil {
			b.log.Error("panic while processing user",
				logger.String("user_id", userID),
				logger.Any("panic", r))
			out = OutcomeFailed
		}
		b.metrics.RecordUserProcessed(string(out))
	}()

	out, err := b.pipeline.ProcessUser(ctx, userID, dateKey)
	if err != nil {
		b.log.Error("user processing failed",
			logger.String("user_id", userID),
			logger.Error(err))
	}
	return out
}
