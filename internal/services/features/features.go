// Package features builds leakage-safe model-input rows from daily logs.
//
// Leakage rule: mood and steps may only use data from strictly before the
// row's date. Sleep is logged at wake time and may use the same-day value.
// This asymmetry is deliberate and must not be generalized away.
package features

import (
	"math"

	"wellpulse/internal/domain/models"
	"wellpulse/pkg/util"
)

// fillWindow is the trailing-mean window used for missing-value imputation.
const fillWindow = 7

// Build computes one FeatureRow per input record, same order and cardinality.
// Early rows naturally carry NaN lag features; the trainer filters those.
func Build(records []models.DailyRecord) []models.FeatureRow {
	n := len(records)

	mood := column(records, func(r *models.DailyRecord) *float64 { return r.MoodScore })
	sleep := column(records, func(r *models.DailyRecord) *float64 { return r.SleepHours })
	steps := column(records, func(r *models.DailyRecord) *float64 { return r.Steps })
	stress := column(records, func(r *models.DailyRecord) *float64 { return r.Stress })

	moodLag := shift(mood, 1)
	moodMA3 := rollingMean(moodLag, 3, 1)
	moodMA7 := rollingMean(moodLag, 7, 1)
	moodMA14 := rollingMean(moodLag, 14, 7)

	sleepMean := rollingMean(sleep, fillWindow, 1)
	sleepFilled := fillMissing(sleep, sleepMean)

	stepsLag := shift(steps, 1)
	stepsMean := rollingMean(stepsLag, fillWindow, 1)
	stepsFilled := fillMissing(stepsLag, stepsMean)

	stressLag := shift(stress, 1)
	stressFilled := fillMissing(stressLag, rollingMean(stressLag, fillWindow, 1))

	rows := make([]models.FeatureRow, n)
	for i := 0; i < n; i++ {
		r := &rows[i]
		r.DateKey = records[i].DateKey

		dow, weekend := calendarFeatures(records[i].DateKey)
		r.Values[0] = dow
		r.Values[1] = weekend

		r.Values[2] = moodLag[i]
		r.Values[3] = moodMA3[i]
		r.Values[4] = moodMA7[i]
		r.Values[5] = delta1(mood, i)
		r.Values[6] = moodLag[i] - moodMA14[i]

		r.Values[7] = sleepFilled[i]
		r.Values[8] = missingFlag(sleep[i])
		r.Values[9] = sleepFilled[i] - sleepMean[i]

		r.Values[10] = stepsFilled[i]
		r.Values[11] = missingFlag(stepsLag[i])
		r.Values[12] = stepsFilled[i] - stepsMean[i]

		r.Values[13] = stressFilled[i]
		r.Values[14] = missingFlag(stressLag[i])
	}
	return rows
}

func calendarFeatures(dateKey string) (dow, weekend float64) {
	t, ok := util.ParseDateKey(dateKey)
	if !ok {
		return math.NaN(), math.NaN()
	}
	dow = float64(util.DayOfWeek(t))
	if util.IsWeekend(t) {
		weekend = 1
	}
	return dow, weekend
}

func column(records []models.DailyRecord, get func(*models.DailyRecord) *float64) []float64 {
	out := make([]float64, len(records))
	for i := range records {
		p := get(&records[i])
		if p == nil {
			out[i] = math.NaN()
		} else {
			out[i] = *p
		}
	}
	return out
}

// shift moves the series forward by k positions, NaN-padding the head.
func shift(vals []float64, k int) []float64 {
	out := make([]float64, len(vals))
	for i := range out {
		if i < k {
			out[i] = math.NaN()
		} else {
			out[i] = vals[i-k]
		}
	}
	return out
}

// rollingMean computes a trailing mean over the last `window` row slots
// ending at each index inclusive. The mean covers non-NaN values only and
// is NaN when fewer than minPeriods of them are present.
func rollingMean(vals []float64, window, minPeriods int) []float64 {
	out := make([]float64, len(vals))
	for i := range vals {
		lo := i - window + 1
		if lo < 0 {
			lo = 0
		}
		sum := 0.0
		count := 0
		for j := lo; j <= i; j++ {
			if math.IsNaN(vals[j]) {
				continue
			}
			sum += vals[j]
			count++
		}
		if count < minPeriods || count == 0 {
			out[i] = math.NaN()
		} else {
			out[i] = sum / float64(count)
		}
	}
	return out
}

// fillMissing imputes NaN entries with the trailing mean, else 0.
func fillMissing(vals, trailingMean []float64) []float64 {
	out := make([]float64, len(vals))
	for i := range vals {
		switch {
		case !math.IsNaN(vals[i]):
			out[i] = vals[i]
		case !math.IsNaN(trailingMean[i]):
			out[i] = trailingMean[i]
		default:
			out[i] = 0
		}
	}
	return out
}

func delta1(mood []float64, i int) float64 {
	if i < 2 {
		return math.NaN()
	}
	return mood[i-1] - mood[i-2]
}

func missingFlag(v float64) float64 {
	if math.IsNaN(v) {
		return 1
	}
	return 0
}
