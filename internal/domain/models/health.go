package models

import (
	"math"
	"time"
)

// DailyRecord is one calendar day of self-reported logs for one user.
// Optional fields are nil when the user skipped that input.
type DailyRecord struct {
	UserID     string
	DateKey    string // YYYY-MM-DD, unique per user, ascending sort key
	MoodScore  *float64
	SleepHours *float64
	Steps      *float64
	Stress     *float64
	UpdatedAt  time.Time
}

// Mood returns the mood score or NaN when absent.
func (r *DailyRecord) Mood() float64 {
	return orNaN(r.MoodScore)
}

func orNaN(p *float64) float64 {
	if p == nil {
		return math.NaN()
	}
	return *p
}

// FeatureColumns is the ordered model-input contract. Column order matters
// for contribution reporting and must not change.
var FeatureColumns = []string{
	"day_of_week",
	"is_weekend",
	"mood_lag1",
	"mood_ma3",
	"mood_ma7",
	"mood_delta1",
	"mood_dev14",
	"sleep_hours_filled",
	"sleep_missing",
	"sleep_dev",
	"steps_filled",
	"steps_missing",
	"steps_dev",
	"stress_filled",
	"stress_missing",
}

// NumFeatures is len(FeatureColumns).
const NumFeatures = 15

// FeatureRow is one model-input row. Undefined values (early lag windows)
// are NaN; the trainer filters rows containing any NaN.
type FeatureRow struct {
	DateKey string
	Values  [NumFeatures]float64
}

// Labels holds derived supervision targets aligned with the input rows.
// NaN means undefined (insufficient history or missing mood).
type Labels struct {
	YToday []float64
	Y3d    []float64
}

// UnhealthyCount counts rows labeled unhealthy today.
func (l *Labels) UnhealthyCount() int {
	n := 0
	for _, y := range l.YToday {
		if y == 1 {
			n++
		}
	}
	return n
}

// ModelKind tags the selected classifier family.
type ModelKind string

const (
	KindLogistic ModelKind = "logistic"
	KindGBT      ModelKind = "gbt"
)

// Contribution is a signed per-feature attribution of a single prediction.
type Contribution struct {
	Feature string  `json:"feature"`
	Value   float64 `json:"value"`
}

// ModelResult is the outcome of one train/select/predict pass for one target.
// Probability is nil when no prediction is possible; AUC/PRAUC are nil when
// the validation split is missing or single-class.
type ModelResult struct {
	Probability   *float64
	ModelKind     ModelKind
	AUC           *float64
	PRAUC         *float64
	Contributions []Contribution
}

// ConfidenceLevel is the rule-based reliability tier.
type ConfidenceLevel string

const (
	ConfidenceLow    ConfidenceLevel = "low"
	ConfidenceMedium ConfidenceLevel = "medium"
	ConfidenceHigh   ConfidenceLevel = "high"
)

// Advice is one actionable recommendation derived from the user's own data.
type Advice struct {
	Param   string `json:"param"`
	Message string `json:"message"`
}

// Prediction is the per-user per-day result bundle persisted by the pipeline.
type Prediction struct {
	UserID        string
	DateKey       string
	PToday        *float64
	P3d           *float64
	Confidence    ConfidenceLevel
	ModelVersion  string
	Contributions []Contribution
	Advices       []Advice
	GeneratedAt   time.Time
}

// ModelStatus is the user's current model state, merged on every run.
type ModelStatus struct {
	UserID            string
	DaysCollected     int
	DaysRequired      int
	Ready             bool
	UnhealthyCount    int
	RecentMissingRate float64
	ModelKind         ModelKind
	Confidence        ConfidenceLevel
	UpdatedAt         time.Time
}
