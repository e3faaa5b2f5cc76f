package repository

import (
	"context"
	"time"

	"wellpulse/internal/domain/models"
)

// LogStore provides read access to persisted daily logs.
type LogStore interface {
	// GetUserHistory returns the full history for one user, ascending by
	// date_key, no duplicate keys.
	GetUserHistory(ctx context.Context, userID string) ([]models.DailyRecord, error)

	// ActiveUsers returns ids of users with a log update after cutoff.
	ActiveUsers(ctx context.Context, cutoff time.Time) ([]string, error)
}

// PredictionStore persists per-run results and current model state.
type PredictionStore interface {
	SavePrediction(ctx context.Context, p *models.Prediction) error
	SaveStatus(ctx context.Context, s *models.ModelStatus) error
	GetLatestPrediction(ctx context.Context, userID string) (*models.Prediction, error)
	GetStatus(ctx context.Context, userID string) (*models.ModelStatus, error)
}

// Publisher emits prediction-completed events for downstream consumers.
type Publisher interface {
	PublishResult(ctx context.Context, p *models.Prediction, s *models.ModelStatus) error
	Close() error
}

// Metrics records pipeline observability signals.
type Metrics interface {
	RecordUserProcessed(outcome string)
	RecordModelSelected(kind, target string)
	RecordUserDuration(seconds float64)
	RecordBatchDuration(seconds float64)
	RecordActiveUsers(n int)
}
