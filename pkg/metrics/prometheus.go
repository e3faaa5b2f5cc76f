package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder implements domain.repository.Metrics using Prometheus.
type Recorder struct {
	usersProcessed *prometheus.CounterVec
	modelSelected  *prometheus.CounterVec
	activeUsers    prometheus.Gauge
	userDuration   prometheus.Histogram
	batchDuration  prometheus.Histogram
}

// New creates a new Prometheus metrics recorder.
func New() *Recorder {
	return &Recorder{
		usersProcessed: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "wellpulse_users_processed_total",
				Help: "Users processed per batch run by outcome",
			},
			[]string{"outcome"},
		),
		modelSelected: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "wellpulse_model_selected_total",
				Help: "Selected model candidate per prediction target",
			},
			[]string{"kind", "target"},
		),
		activeUsers: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "wellpulse_last_run_active_users",
				Help: "Active users discovered by the last batch run",
			},
		),
		userDuration: promauto.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "wellpulse_user_pipeline_duration_seconds",
				Help:    "Duration of one user's pipeline pass",
				Buckets: prometheus.DefBuckets,
			},
		),
		batchDuration: promauto.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "wellpulse_batch_run_duration_seconds",
				Help:    "Duration of a full batch run",
				Buckets: []float64{1, 5, 15, 30, 60, 120, 300, 600, 1800},
			},
		),
	}
}

// RecordUserProcessed counts one user pass by outcome (ok, skipped, failed).
func (r *Recorder) RecordUserProcessed(outcome string) {
	r.usersProcessed.WithLabelValues(outcome).Inc()
}

// RecordModelSelected counts a model selection for a prediction target.
func (r *Recorder) RecordModelSelected(kind, target string) {
	r.modelSelected.WithLabelValues(kind, target).Inc()
}

// RecordUserDuration records one user's pipeline latency in seconds.
func (r *Recorder) RecordUserDuration(seconds float64) {
	r.userDuration.Observe(seconds)
}

// RecordBatchDuration records full batch latency in seconds.
func (r *Recorder) RecordBatchDuration(seconds float64) {
	r.batchDuration.Observe(seconds)
}

// RecordActiveUsers records the active-user count of the last run.
func (r *Recorder) RecordActiveUsers(n int) {
	r.activeUsers.Set(float64(n))
}
