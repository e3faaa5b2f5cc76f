package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"wellpulse/internal/domain/models"
	pkgch "wellpulse/pkg/clickhouse"
	applogger "wellpulse/pkg/logger"
)

// CHLogStore implements LogStore backed by ClickHouse.
type CHLogStore struct {
	db *sql.DB
	l  *applogger.Logger
}

func NewCHLogStore(ch *pkgch.Client) *CHLogStore {
	return &CHLogStore{db: ch.DB()}
}

// SetLogger injects a structured logger.
func (s *CHLogStore) SetLogger(l *applogger.Logger) { s.l = l }

func (s *CHLogStore) GetUserHistory(ctx context.Context, userID string) ([]models.DailyRecord, error) {
	const q = `
        SELECT date_key, mood_score, sleep_hours, steps, stress, updated_at
        FROM daily_logs FINAL
        WHERE user_id = ?
        ORDER BY date_key ASC
    `
	rows, err := s.db.QueryContext(ctx, q, userID)
	if err != nil {
		if s.l != nil {
			s.l.Error("clickhouse user_history query error",
				applogger.String("user_id", userID),
				applogger.Error(err),
			)
		}
		return nil, fmt.Errorf("get user history: %w", err)
	}
	defer rows.Close()

	out := make([]models.DailyRecord, 0, 128)
	for rows.Next() {
		var (
			rec   models.DailyRecord
			mood  sql.NullFloat64
			sleep sql.NullFloat64
			steps sql.NullFloat64
			strs  sql.NullFloat64
		)
		if err := rows.Scan(&rec.DateKey, &mood, &sleep, &steps, &strs, &rec.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan daily log: %w", err)
		}
		rec.UserID = userID
		rec.MoodScore = nullableFloat(mood)
		rec.SleepHours = nullableFloat(sleep)
		rec.Steps = nullableFloat(steps)
		rec.Stress = nullableFloat(strs)
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}
	return out, nil
}

func (s *CHLogStore) ActiveUsers(ctx context.Context, cutoff time.Time) ([]string, error) {
	const q = `
        SELECT user_id
        FROM daily_logs
        GROUP BY user_id
        HAVING max(updated_at) >= ?
        ORDER BY user_id
    `
	rows, err := s.db.QueryContext(ctx, q, cutoff)
	if err != nil {
		if s.l != nil {
			s.l.Error("clickhouse active_users query error", applogger.Error(err))
		}
		return nil, fmt.Errorf("active users: %w", err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var uid string
		if err := rows.Scan(&uid); err != nil {
			return nil, fmt.Errorf("scan user id: %w", err)
		}
		out = append(out, uid)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}
	return out, nil
}

// SaveRecords inserts daily logs. Used by the seeding tool; the service
// itself never writes logs.
func (s *CHLogStore) SaveRecords(ctx context.Context, records []models.DailyRecord) error {
	if len(records) == 0 {
		return nil
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	stmt, err := tx.PrepareContext(ctx, `
        INSERT INTO daily_logs (user_id, date_key, mood_score, sleep_hours, steps, stress, updated_at)
        VALUES (?, ?, ?, ?, ?, ?, ?)
    `)
	if err != nil {
		tx.Rollback()
		return fmt.Errorf("prepare: %w", err)
	}
	defer stmt.Close()

	for i := range records {
		r := &records[i]
		if _, err := stmt.ExecContext(ctx,
			r.UserID, r.DateKey,
			floatOrNil(r.MoodScore), floatOrNil(r.SleepHours),
			floatOrNil(r.Steps), floatOrNil(r.Stress),
			r.UpdatedAt,
		); err != nil {
			tx.Rollback()
			return fmt.Errorf("insert daily log %s/%s: %w", r.UserID, r.DateKey, err)
		}
	}
	return tx.Commit()
}

func nullableFloat(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	f := v.Float64
	return &f
}

func floatOrNil(p *float64) interface{} {
	if p == nil {
		return nil
	}
	return *p
}
