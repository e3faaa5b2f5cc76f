package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"wellpulse/internal/domain/models"
	pkgch "wellpulse/pkg/clickhouse"
	applogger "wellpulse/pkg/logger"
)

// CHPredictionStore implements PredictionStore backed by ClickHouse.
// Contributions and advices are stored JSON-encoded; both lists are small
// and only ever read back whole.
type CHPredictionStore struct {
	db *sql.DB
	l  *applogger.Logger
}

func NewCHPredictionStore(ch *pkgch.Client) *CHPredictionStore {
	return &CHPredictionStore{db: ch.DB()}
}

// SetLogger injects a structured logger.
func (s *CHPredictionStore) SetLogger(l *applogger.Logger) { s.l = l }

func (s *CHPredictionStore) SavePrediction(ctx context.Context, p *models.Prediction) error {
	contrib, err := json.Marshal(p.Contributions)
	if err != nil {
		return fmt.Errorf("marshal contributions: %w", err)
	}
	advices, err := json.Marshal(p.Advices)
	if err != nil {
		return fmt.Errorf("marshal advices: %w", err)
	}

	const q = `
        INSERT INTO predictions
            (user_id, date_key, p_today, p_3d, confidence, model_version, contributions, advices, generated_at)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
    `
	if _, err := s.db.ExecContext(ctx, q,
		p.UserID, p.DateKey,
		floatOrNil(p.PToday), floatOrNil(p.P3d),
		string(p.Confidence), p.ModelVersion,
		string(contrib), string(advices),
		p.GeneratedAt,
	); err != nil {
		if s.l != nil {
			s.l.Error("clickhouse save_prediction error",
				applogger.String("user_id", p.UserID),
				applogger.String("date_key", p.DateKey),
				applogger.Error(err),
			)
		}
		return fmt.Errorf("save prediction: %w", err)
	}
	return nil
}

func (s *CHPredictionStore) SaveStatus(ctx context.Context, st *models.ModelStatus) error {
	ready := uint8(0)
	if st.Ready {
		ready = 1
	}
	const q = `
        INSERT INTO model_status
            (user_id, days_collected, days_required, ready, unhealthy_count,
             recent_missing_rate, model_kind, confidence, updated_at)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
    `
	if _, err := s.db.ExecContext(ctx, q,
		st.UserID, uint32(st.DaysCollected), uint32(st.DaysRequired), ready,
		uint32(st.UnhealthyCount), st.RecentMissingRate,
		string(st.ModelKind), string(st.Confidence), st.UpdatedAt,
	); err != nil {
		if s.l != nil {
			s.l.Error("clickhouse save_status error",
				applogger.String("user_id", st.UserID),
				applogger.Error(err),
			)
		}
		return fmt.Errorf("save status: %w", err)
	}
	return nil
}

func (s *CHPredictionStore) GetLatestPrediction(ctx context.Context, userID string) (*models.Prediction, error) {
	const q = `
        SELECT date_key, p_today, p_3d, confidence, model_version, contributions, advices, generated_at
        FROM predictions FINAL
        WHERE user_id = ?
        ORDER BY date_key DESC
        LIMIT 1
    `
	var (
		p       models.Prediction
		pToday  sql.NullFloat64
		p3d     sql.NullFloat64
		conf    string
		contrib string
		advices string
	)
	err := s.db.QueryRowContext(ctx, q, userID).Scan(
		&p.DateKey, &pToday, &p3d, &conf, &p.ModelVersion, &contrib, &advices, &p.GeneratedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get latest prediction: %w", err)
	}

	p.UserID = userID
	p.PToday = nullableFloat(pToday)
	p.P3d = nullableFloat(p3d)
	p.Confidence = models.ConfidenceLevel(conf)
	if err := json.Unmarshal([]byte(contrib), &p.Contributions); err != nil {
		return nil, fmt.Errorf("decode contributions: %w", err)
	}
	if err := json.Unmarshal([]byte(advices), &p.Advices); err != nil {
		return nil, fmt.Errorf("decode advices: %w", err)
	}
	return &p, nil
}

func (s *CHPredictionStore) GetStatus(ctx context.Context, userID string) (*models.ModelStatus, error) {
	const q = `
        SELECT days_collected, days_required, ready, unhealthy_count,
               recent_missing_rate, model_kind, confidence, updated_at
        FROM model_status FINAL
        WHERE user_id = ?
        LIMIT 1
    `
	var (
		st    models.ModelStatus
		ready uint8
		kind  string
		conf  string
	)
	err := s.db.QueryRowContext(ctx, q, userID).Scan(
		&st.DaysCollected, &st.DaysRequired, &ready, &st.UnhealthyCount,
		&st.RecentMissingRate, &kind, &conf, &st.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get status: %w", err)
	}

	st.UserID = userID
	st.Ready = ready == 1
	st.ModelKind = models.ModelKind(kind)
	st.Confidence = models.ConfidenceLevel(conf)
	return &st, nil
}
