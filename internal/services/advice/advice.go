// Package advice turns the gap between a user's good and bad days into at
// most two concrete, same-day actionable recommendations. Every threshold
// is derived from the user's own history, never from population priors.
package advice

import (
	"fmt"
	"math"
	"strconv"

	"wellpulse/internal/domain/models"
)

const (
	minMoodRows      = 14
	minPartitionRows = 3
	wakeHour         = 7

	sleepDiffHours  = 0.3
	stepsDiffCount  = 500
	stressDiffLevel = 0.5
	stressDiffPct   = 5
)

// Generate produces up to two advices in fixed sleep, steps, stress order.
// Returns an empty list when there is no today-prediction or too little
// mood history to partition good and bad days.
func Generate(records []models.DailyRecord, pToday *float64) []models.Advice {
	if pToday == nil {
		return []models.Advice{}
	}
	if len(records) < minMoodRows {
		return []models.Advice{}
	}

	var valid []models.DailyRecord
	moodSum := 0.0
	for _, r := range records {
		if r.MoodScore != nil {
			valid = append(valid, r)
			moodSum += *r.MoodScore
		}
	}
	if len(valid) < minMoodRows {
		return []models.Advice{}
	}
	meanMood := moodSum / float64(len(valid))

	var good, bad []models.DailyRecord
	for _, r := range valid {
		switch {
		case *r.MoodScore >= meanMood+0.5:
			good = append(good, r)
		case *r.MoodScore <= meanMood-0.5:
			bad = append(bad, r)
		}
	}
	if len(good) < minPartitionRows || len(bad) < minPartitionRows {
		return []models.Advice{}
	}

	advices := []models.Advice{}
	if a := sleepAdvice(good, bad); a != nil {
		advices = append(advices, *a)
	}
	if a := stepsAdvice(good, bad); a != nil {
		advices = append(advices, *a)
	}
	if a := stressAdvice(valid, good, bad, meanMood); a != nil {
		advices = append(advices, *a)
	}
	if len(advices) > 2 {
		advices = advices[:2]
	}
	return advices
}

func sleepAdvice(good, bad []models.DailyRecord) *models.Advice {
	goodMean, nGood := partitionMean(good, func(r *models.DailyRecord) *float64 { return r.SleepHours })
	badMean, nBad := partitionMean(bad, func(r *models.DailyRecord) *float64 { return r.SleepHours })
	if nGood < minPartitionRows || nBad < minPartitionRows {
		return nil
	}
	if goodMean-badMean <= sleepDiffHours {
		return nil
	}

	recHours := math.Round(goodMean*10) / 10
	// Bedtime for a 07:00 wake target, hour truncated, minutes from the
	// fractional part.
	bedHour := int(24+wakeHour-recHours) % 24
	bedMin := int(math.Mod(recHours, 1) * 60)
	return &models.Advice{
		Param: "sleep",
		Message: fmt.Sprintf(
			"On your good days you sleep %s hours on average. Try to be in bed by around %d:%02d tonight",
			strconv.FormatFloat(recHours, 'f', 1, 64), bedHour, bedMin),
	}
}

func stepsAdvice(good, bad []models.DailyRecord) *models.Advice {
	goodMean, nGood := partitionMean(good, func(r *models.DailyRecord) *float64 { return r.Steps })
	badMean, nBad := partitionMean(bad, func(r *models.DailyRecord) *float64 { return r.Steps })
	if nGood < minPartitionRows || nBad < minPartitionRows {
		return nil
	}
	if goodMean-badMean <= stepsDiffCount {
		return nil
	}

	threshold := int(math.Round(goodMean/1000) * 1000)
	return &models.Advice{
		Param:   "steps",
		Message: fmt.Sprintf("Days with %s steps or more tend to be more stable for you", formatThousands(threshold)),
	}
}

// stressAdvice only fires when staying at or below the good-day stress level
// is associated with a meaningfully lower unhealthy-day rate across the whole
// history, not just the partitions.
func stressAdvice(valid, good, bad []models.DailyRecord, meanMood float64) *models.Advice {
	goodMean, nGood := partitionMean(good, func(r *models.DailyRecord) *float64 { return r.Stress })
	badMean, nBad := partitionMean(bad, func(r *models.DailyRecord) *float64 { return r.Stress })
	if nGood < minPartitionRows || nBad < minPartitionRows {
		return nil
	}
	if badMean-goodMean <= stressDiffLevel {
		return nil
	}

	recLevel := int(math.Round(goodMean))

	// Rows with no stress value belong to neither side.
	var lowN, lowBad, highN, highBad int
	for _, r := range valid {
		if r.Stress == nil {
			continue
		}
		unhealthy := *r.MoodScore <= meanMood-1
		if *r.Stress <= float64(recLevel) {
			lowN++
			if unhealthy {
				lowBad++
			}
		} else {
			highN++
			if unhealthy {
				highBad++
			}
		}
	}
	if lowN == 0 || highN == 0 {
		return nil
	}

	lowRate := float64(lowBad) / float64(lowN)
	highRate := float64(highBad) / float64(highN)
	diffPct := int(math.Round((highRate - lowRate) * 100))
	if diffPct <= stressDiffPct {
		return nil
	}
	return &models.Advice{
		Param:   "stress",
		Message: fmt.Sprintf("Days at stress level %d or below show a %d%% lower rate of unhealthy days", recLevel, diffPct),
	}
}

func partitionMean(rows []models.DailyRecord, pick func(*models.DailyRecord) *float64) (mean float64, n int) {
	sum := 0.0
	for i := range rows {
		if v := pick(&rows[i]); v != nil {
			sum += *v
			n++
		}
	}
	if n == 0 {
		return 0, 0
	}
	return sum / float64(n), n
}

func formatThousands(v int) string {
	s := strconv.Itoa(v)
	if len(s) <= 3 {
		return s
	}
	var out []byte
	for i, c := range []byte(s) {
		if i > 0 && (len(s)-i)%3 == 0 {
			out = append(out, ',')
		}
		out = append(out, c)
	}
	return string(out)
}
