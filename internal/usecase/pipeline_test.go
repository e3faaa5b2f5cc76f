package usecase

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wellpulse/internal/domain/models"
	"wellpulse/pkg/config"
	"wellpulse/pkg/logger"
)

type fakeLogStore struct {
	histories map[string][]models.DailyRecord
	errors    map[string]error
	active    []string
}

func (f *fakeLogStore) GetUserHistory(_ context.Context, userID string) ([]models.DailyRecord, error) {
	if err := f.errors[userID]; err != nil {
		return nil, err
	}
	return f.histories[userID], nil
}

func (f *fakeLogStore) ActiveUsers(context.Context, time.Time) ([]string, error) {
	return f.active, nil
}

type fakePredictionStore struct {
	mu          sync.Mutex
	predictions map[string]*models.Prediction
	statuses    map[string]*models.ModelStatus
}

func newFakePredictionStore() *fakePredictionStore {
	return &fakePredictionStore{
		predictions: map[string]*models.Prediction{},
		statuses:    map[string]*models.ModelStatus{},
	}
}

func (f *fakePredictionStore) SavePrediction(_ context.Context, p *models.Prediction) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.predictions[p.UserID] = p
	return nil
}

func (f *fakePredictionStore) SaveStatus(_ context.Context, s *models.ModelStatus) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.statuses[s.UserID] = s
	return nil
}

func (f *fakePredictionStore) GetLatestPrediction(_ context.Context, userID string) (*models.Prediction, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.predictions[userID], nil
}

func (f *fakePredictionStore) GetStatus(_ context.Context, userID string) (*models.ModelStatus, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.statuses[userID], nil
}

type fakeMetrics struct {
	mu        sync.Mutex
	processed map[string]int
	selected  map[string]int
	active    int
}

func newFakeMetrics() *fakeMetrics {
	return &fakeMetrics{processed: map[string]int{}, selected: map[string]int{}}
}

func (f *fakeMetrics) RecordUserProcessed(outcome string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.processed[outcome]++
}

func (f *fakeMetrics) RecordModelSelected(kind, target string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.selected[kind+"/"+target]++
}

func (f *fakeMetrics) RecordUserDuration(float64)  {}
func (f *fakeMetrics) RecordBatchDuration(float64) {}
func (f *fakeMetrics) RecordActiveUsers(n int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.active = n
}

func testConfig() *config.Config {
	cfg := &config.Config{}
	cfg.Pipeline.MinDaysToday = 14
	cfg.Pipeline.MinDays3d = 30
	cfg.Pipeline.MinUnhealthy3d = 5
	cfg.Pipeline.TreeMinDays = 45
	cfg.Pipeline.TreeMinUnhealthy = 8
	cfg.Pipeline.ValidationDays = 14
	cfg.Pipeline.ActiveUserDays = 7
	cfg.Pipeline.Workers = 2
	cfg.Confidence.MediumDays = 30
	cfg.Confidence.MediumUnhealthy = 5
	cfg.Confidence.HighDays = 60
	cfg.Confidence.HighUnhealthy = 10
	cfg.Confidence.MissingThreshold = 0.3
	return cfg
}

func testLogger(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.New(&logger.Config{Level: "error", Format: "console", Output: "stdout"})
	require.NoError(t, err)
	return log
}

// testHistory builds n days of logs: mostly mood 4 with short unhealthy
// dips every 10 days, enough signal for training to go through.
func testHistory(userID string, n int) []models.DailyRecord {
	base := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	out := make([]models.DailyRecord, n)
	for i := range out {
		day := base.AddDate(0, 0, i)
		mood, sleep, steps, stress := 4.0, 7.5, 9000.0, 2.0
		if i%10 == 8 || i%10 == 9 {
			mood, sleep, steps, stress = 1.0, 5.5, 3000.0, 4.0
		}
		out[i] = models.DailyRecord{
			UserID:     userID,
			DateKey:    day.Format("2006-01-02"),
			MoodScore:  &mood,
			SleepHours: &sleep,
			Steps:      &steps,
			Stress:     &stress,
			UpdatedAt:  day,
		}
	}
	return out
}

func newTestRunner(t *testing.T, logs *fakeLogStore) (*PipelineRunner, *fakePredictionStore, *fakeMetrics) {
	t.Helper()
	store := newFakePredictionStore()
	metrics := newFakeMetrics()
	r := NewPipelineRunner(logs, store, nil, nil, metrics, testConfig(), testLogger(t))
	return r, store, metrics
}

func TestProcessUserNoData(t *testing.T) {
	logs := &fakeLogStore{histories: map[string][]models.DailyRecord{}}
	r, store, _ := newTestRunner(t, logs)

	out, err := r.ProcessUser(context.Background(), "ghost", "2025-06-01")
	require.NoError(t, err)
	assert.Equal(t, OutcomeSkipped, out)
	assert.Empty(t, store.statuses)
	assert.Empty(t, store.predictions)
}

func TestProcessUserShortHistoryWritesStatusOnly(t *testing.T) {
	logs := &fakeLogStore{histories: map[string][]models.DailyRecord{
		"u1": testHistory("u1", 5),
	}}
	r, store, _ := newTestRunner(t, logs)

	out, err := r.ProcessUser(context.Background(), "u1", "2025-06-01")
	require.NoError(t, err)
	assert.Equal(t, OutcomeSkipped, out)
	assert.Empty(t, store.predictions)

	st := store.statuses["u1"]
	require.NotNil(t, st)
	assert.False(t, st.Ready)
	assert.Equal(t, 5, st.DaysCollected)
	assert.Equal(t, 14, st.DaysRequired)
	assert.Equal(t, models.ConfidenceLow, st.Confidence)
}

func TestProcessUserFullPass(t *testing.T) {
	logs := &fakeLogStore{histories: map[string][]models.DailyRecord{
		"u1": testHistory("u1", 100),
	}}
	r, store, metrics := newTestRunner(t, logs)

	out, err := r.ProcessUser(context.Background(), "u1", "2025-06-09")
	require.NoError(t, err)
	assert.Equal(t, OutcomeProcessed, out)

	pred := store.predictions["u1"]
	require.NotNil(t, pred)
	assert.Equal(t, "2025-06-09", pred.DateKey)
	require.NotNil(t, pred.PToday)
	assert.GreaterOrEqual(t, *pred.PToday, 0.0)
	assert.LessOrEqual(t, *pred.PToday, 1.0)
	assert.NotNil(t, pred.P3d)
	assert.LessOrEqual(t, len(pred.Contributions), 3)
	assert.LessOrEqual(t, len(pred.Advices), 2)
	assert.Contains(t, pred.ModelVersion, "_v1")

	st := store.statuses["u1"]
	require.NotNil(t, st)
	assert.True(t, st.Ready)
	assert.Equal(t, 100, st.DaysCollected)
	assert.Greater(t, st.UnhealthyCount, 0)
	assert.Equal(t, 0.0, st.RecentMissingRate)

	// Both targets trained.
	total := 0
	for k, n := range metrics.selected {
		_ = k
		total += n
	}
	assert.Equal(t, 2, total)
}

func TestProcessUserMissingMoodRaisesMissingRate(t *testing.T) {
	hist := testHistory("u1", 40)
	for i := len(hist) - 3; i < len(hist); i++ {
		hist[i].MoodScore = nil
	}
	logs := &fakeLogStore{histories: map[string][]models.DailyRecord{"u1": hist}}
	r, store, _ := newTestRunner(t, logs)

	_, err := r.ProcessUser(context.Background(), "u1", "2025-06-09")
	require.NoError(t, err)

	st := store.statuses["u1"]
	require.NotNil(t, st)
	// 3 of the trailing 7 rows have no mood.
	assert.InDelta(t, 3.0/7.0, st.RecentMissingRate, 1e-3)
	// >= 0.3 missing downgrades the tier.
	assert.Equal(t, models.ConfidenceLow, st.Confidence)
}

func TestRecentMissingRate(t *testing.T) {
	hist := testHistory("u1", 10)
	hist[9].MoodScore = nil
	assert.InDelta(t, 1.0/7.0, recentMissingRate(hist, 7), 1e-12)
	assert.Equal(t, 0.0, recentMissingRate(nil, 7))
}

func TestBatchRunIsolatesFailures(t *testing.T) {
	logs := &fakeLogStore{
		histories: map[string][]models.DailyRecord{
			"good":  testHistory("good", 60),
			"young": testHistory("young", 3),
		},
		errors: map[string]error{"broken": fmt.Errorf("storage down")},
		active: []string{"good", "broken", "young"},
	}
	r, store, metrics := newTestRunner(t, logs)
	batch := NewBatchRunner(r, logs, metrics, testConfig(), testLogger(t))

	res, err := batch.Run(context.Background(), "2025-06-09")
	require.NoError(t, err)

	assert.Equal(t, 3, res.ActiveUsers)
	assert.Equal(t, 1, res.Processed)
	assert.Equal(t, 1, res.Skipped)
	assert.Equal(t, 1, res.Failed)
	assert.NotNil(t, store.predictions["good"])
	assert.Nil(t, store.predictions["broken"])
	assert.Equal(t, 3, metrics.active)
}

func TestBatchRunConcurrentGuard(t *testing.T) {
	logs := &fakeLogStore{active: []string{}}
	r, _, metrics := newTestRunner(t, logs)
	batch := NewBatchRunner(r, logs, metrics, testConfig(), testLogger(t))

	batch.running.Store(true)
	_, err := batch.Run(context.Background(), "2025-06-09")
	assert.ErrorIs(t, err, ErrRunInProgress)

	batch.running.Store(false)
	_, err = batch.Run(context.Background(), "2025-06-09")
	assert.NoError(t, err)
	assert.False(t, batch.Running())
}
