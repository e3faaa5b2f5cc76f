// Package scheduler triggers the nightly batch run on a cron schedule,
// sharing the exact code path of the manual trigger endpoint.
package scheduler

import (
	"context"
	"errors"
	"time"

	"github.com/robfig/cron/v3"

	"wellpulse/internal/usecase"
	"wellpulse/pkg/config"
	"wellpulse/pkg/logger"
)

// Scheduler owns the cron loop. Start and Stop are safe to call once each.
type Scheduler struct {
	cron  *cron.Cron
	batch *usecase.BatchRunner
	loc   *time.Location
	log   *logger.Logger
}

func New(batch *usecase.BatchRunner, cfg *config.Config, log *logger.Logger) (*Scheduler, error) {
	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}

	s := &Scheduler{
		cron:  cron.New(cron.WithLocation(loc)),
		batch: batch,
		loc:   loc,
		log:   log,
	}
	if _, err := s.cron.AddFunc(cfg.Scheduler.Spec, s.runOnce); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Scheduler) Start() {
	s.cron.Start()
	s.log.Info("scheduler started")
}

// Stop halts the cron loop and waits for a running job to finish.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
	s.log.Info("scheduler stopped")
}

func (s *Scheduler) runOnce() {
	dateKey := time.Now().In(s.loc).Format("2006-01-02")
	res, err := s.batch.Run(context.Background(), dateKey)
	if err != nil {
		if errors.Is(err, usecase.ErrRunInProgress) {
			s.log.Warn("scheduled run skipped, previous run still executing",
				logger.String("date_key", dateKey))
			return
		}
		s.log.Error("scheduled batch run failed",
			logger.String("date_key", dateKey), logger.Error(err))
		return
	}
	s.log.Info("scheduled batch run finished",
		logger.String("date_key", res.DateKey),
		logger.Int("processed", res.Processed),
		logger.Int("failed", res.Failed))
}
