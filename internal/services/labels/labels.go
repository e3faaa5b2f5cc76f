// Package labels derives binary "unhealthy day" outcomes from the mood series.
//
// A day is unhealthy when its mood is at least one full level below the
// trailing 14-day mood average (window ending on and including that day).
package labels

import (
	"math"

	"wellpulse/internal/domain/models"
)

// windowDays is the trailing mood-average window, counted in row slots.
const windowDays = 14

// horizonDays is the look-ahead for the 3-day risk label.
const horizonDays = 3

// Build derives y_today and y_3d for an ascending-by-date record sequence.
// Undefined labels are NaN: y_today needs 14 row slots of history and a
// non-null mood on the day itself; y_3d needs all three following y_today
// values defined, so the last 3 rows are always NaN.
func Build(records []models.DailyRecord) models.Labels {
	n := len(records)
	out := models.Labels{
		YToday: make([]float64, n),
		Y3d:    make([]float64, n),
	}

	for i := 0; i < n; i++ {
		out.YToday[i] = labelToday(records, i)
		out.Y3d[i] = math.NaN()
	}

	for i := 0; i+horizonDays < n; i++ {
		y3d := 0.0
		defined := true
		for j := i + 1; j <= i+horizonDays; j++ {
			y := out.YToday[j]
			if math.IsNaN(y) {
				defined = false
				break
			}
			if y == 1 {
				y3d = 1
			}
		}
		if defined {
			out.Y3d[i] = y3d
		}
	}

	return out
}

func labelToday(records []models.DailyRecord, i int) float64 {
	mood := records[i].Mood()
	if math.IsNaN(mood) {
		return math.NaN()
	}
	ma := movingAverage14(records, i)
	if math.IsNaN(ma) {
		return math.NaN()
	}
	if mood <= ma-1 {
		return 1
	}
	return 0
}

// movingAverage14 averages mood over the 14 row slots ending at i inclusive.
// The window must span 14 calendar positions; nulls within it are tolerated
// and excluded from the mean.
func movingAverage14(records []models.DailyRecord, i int) float64 {
	if i < windowDays-1 {
		return math.NaN()
	}
	sum := 0.0
	count := 0
	for j := i - windowDays + 1; j <= i; j++ {
		m := records[j].Mood()
		if math.IsNaN(m) {
			continue
		}
		sum += m
		count++
	}
	if count == 0 {
		return math.NaN()
	}
	return sum / float64(count)
}
