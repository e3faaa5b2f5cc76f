package usecase

import (
	"context"
	"fmt"
	"math"
	"time"

	"wellpulse/internal/domain/models"
	domrepo "wellpulse/internal/domain/repository"
	"wellpulse/internal/services/advice"
	"wellpulse/internal/services/confidence"
	"wellpulse/internal/services/features"
	"wellpulse/internal/services/labels"
	"wellpulse/internal/services/model"
	"wellpulse/pkg/cache"
	"wellpulse/pkg/config"
	"wellpulse/pkg/logger"
)

// Outcome classifies one user's pipeline pass for batch accounting.
type Outcome string

const (
	OutcomeProcessed Outcome = "processed"
	OutcomeSkipped   Outcome = "skipped"
	OutcomeFailed    Outcome = "failed"
)

const predictionCacheTTL = 48 * time.Hour

// PipelineRunner executes the full per-user pass: load history, build
// labels and features, train, predict, score confidence, generate advice
// and persist the result bundles. It holds no per-call state, so one
// instance is safe for concurrent use across users.
type PipelineRunner struct {
	logs    domrepo.LogStore
	store   domrepo.PredictionStore
	cache   cache.Service
	pub     domrepo.Publisher
	metrics domrepo.Metrics
	trainer *model.Trainer
	cfg     *config.Config
	log     *logger.Logger
}

func NewPipelineRunner(
	logs domrepo.LogStore,
	store domrepo.PredictionStore,
	cacheSvc cache.Service,
	pub domrepo.Publisher,
	metrics domrepo.Metrics,
	cfg *config.Config,
	log *logger.Logger,
) *PipelineRunner {
	trainer := model.NewTrainer(model.Config{
		MinDays:          cfg.Pipeline.MinDaysToday,
		ValidationDays:   cfg.Pipeline.ValidationDays,
		TreeMinDays:      cfg.Pipeline.TreeMinDays,
		TreeMinUnhealthy: cfg.Pipeline.TreeMinUnhealthy,
	}, log)
	return &PipelineRunner{
		logs:    logs,
		store:   store,
		cache:   cacheSvc,
		pub:     pub,
		metrics: metrics,
		trainer: trainer,
		cfg:     cfg,
		log:     log,
	}
}

// ProcessUser runs one user for one target date. A short history is a
// skip, not an error: the status bundle is still written so the user
// surface can show "still learning".
func (r *PipelineRunner) ProcessUser(ctx context.Context, userID, dateKey string) (Outcome, error) {
	start := time.Now()

	records, err := r.logs.GetUserHistory(ctx, userID)
	if err != nil {
		return OutcomeFailed, fmt.Errorf("load history for %s: %w", userID, err)
	}
	if len(records) == 0 {
		r.log.Debug("no daily logs, skipping", logger.String("user_id", userID))
		return OutcomeSkipped, nil
	}

	daysCollected := len(records)
	if daysCollected < r.cfg.Pipeline.MinDaysToday {
		r.log.Info("insufficient history, prediction skipped",
			logger.String("user_id", userID),
			logger.Int("days_collected", daysCollected),
			logger.Int("days_required", r.cfg.Pipeline.MinDaysToday))
		status := r.buildStatus(userID, daysCollected, 0, 0, models.KindLogistic, models.ConfidenceLow, false)
		if err := r.store.SaveStatus(ctx, status); err != nil {
			return OutcomeFailed, fmt.Errorf("save status for %s: %w", userID, err)
		}
		return OutcomeSkipped, nil
	}

	lbl := labels.Build(records)
	unhealthyCount := lbl.UnhealthyCount()
	rows := features.Build(records)
	missingRate := recentMissingRate(records, r.cfg.Pipeline.ActiveUserDays)

	todayRes := r.trainer.TrainAndPredict(rows, lbl.YToday, daysCollected, unhealthyCount)
	r.metrics.RecordModelSelected(string(todayRes.ModelKind), "today")

	var p3d *float64
	if daysCollected >= r.cfg.Pipeline.MinDays3d && unhealthyCount >= r.cfg.Pipeline.MinUnhealthy3d {
		res3d := r.trainer.TrainAndPredict(rows, lbl.Y3d, daysCollected, unhealthyCount)
		r.metrics.RecordModelSelected(string(res3d.ModelKind), "3d")
		p3d = res3d.Probability
	}

	level := confidence.Calculate(daysCollected, unhealthyCount, missingRate, confidence.Thresholds{
		MediumDays:       r.cfg.Confidence.MediumDays,
		MediumUnhealthy:  r.cfg.Confidence.MediumUnhealthy,
		HighDays:         r.cfg.Confidence.HighDays,
		HighUnhealthy:    r.cfg.Confidence.HighUnhealthy,
		MissingThreshold: r.cfg.Confidence.MissingThreshold,
	})

	advices := advice.Generate(records, todayRes.Probability)

	pred := &models.Prediction{
		UserID:        userID,
		DateKey:       dateKey,
		PToday:        roundProb(todayRes.Probability),
		P3d:           roundProb(p3d),
		Confidence:    level,
		ModelVersion:  fmt.Sprintf("%s_v1", todayRes.ModelKind),
		Contributions: todayRes.Contributions,
		Advices:       advices,
		GeneratedAt:   time.Now().UTC(),
	}
	if err := r.store.SavePrediction(ctx, pred); err != nil {
		return OutcomeFailed, fmt.Errorf("save prediction for %s: %w", userID, err)
	}

	status := r.buildStatus(userID, daysCollected, unhealthyCount, missingRate, todayRes.ModelKind, level, true)
	if err := r.store.SaveStatus(ctx, status); err != nil {
		return OutcomeFailed, fmt.Errorf("save status for %s: %w", userID, err)
	}

	if r.cache != nil {
		if err := r.cache.Set(ctx, cache.Key("prediction", userID), pred, predictionCacheTTL); err != nil {
			r.log.Warn("prediction cache update failed",
				logger.String("user_id", userID), logger.Error(err))
		}
	}
	if r.pub != nil {
		if err := r.pub.PublishResult(ctx, pred, status); err != nil {
			r.log.Warn("result publish failed",
				logger.String("user_id", userID), logger.Error(err))
		}
	}

	r.metrics.RecordUserDuration(time.Since(start).Seconds())
	r.log.Info("user processed",
		logger.String("user_id", userID),
		logger.String("date_key", dateKey),
		logger.Any("p_today", formatProb(pred.PToday)),
		logger.Any("p_3d", formatProb(pred.P3d)),
		logger.String("model_kind", string(todayRes.ModelKind)),
		logger.String("confidence", string(level)),
		logger.Duration("took", time.Since(start)))
	return OutcomeProcessed, nil
}

func (r *PipelineRunner) buildStatus(
	userID string,
	daysCollected, unhealthyCount int,
	missingRate float64,
	kind models.ModelKind,
	level models.ConfidenceLevel,
	ready bool,
) *models.ModelStatus {
	return &models.ModelStatus{
		UserID:            userID,
		DaysCollected:     daysCollected,
		DaysRequired:      r.cfg.Pipeline.MinDaysToday,
		Ready:             ready,
		UnhealthyCount:    unhealthyCount,
		RecentMissingRate: math.Round(missingRate*1000) / 1000,
		ModelKind:         kind,
		Confidence:        level,
		UpdatedAt:         time.Now().UTC(),
	}
}

// recentMissingRate is the fraction of the trailing window with no mood
// entry.
func recentMissingRate(records []models.DailyRecord, window int) float64 {
	if window < 1 || len(records) == 0 {
		return 0
	}
	tail := records
	if len(tail) > window {
		tail = tail[len(tail)-window:]
	}
	missing := 0
	for i := range tail {
		if tail[i].MoodScore == nil {
			missing++
		}
	}
	return float64(missing) / float64(len(tail))
}

func roundProb(p *float64) *float64 {
	if p == nil {
		return nil
	}
	v := math.Round(*p*10000) / 10000
	return &v
}

func formatProb(p *float64) interface{} {
	if p == nil {
		return "n/a"
	}
	return *p
}
