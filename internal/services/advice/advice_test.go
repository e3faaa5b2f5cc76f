package advice

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wellpulse/internal/domain/models"
)

func fp(v float64) *float64 { return &v }

// history alternates good and bad days so both partitions clear the
// 3-sample minimum. Good days: mood 5, 8h sleep, 10k steps, stress 1.
// Bad days: mood 1, 6h sleep, 3k steps, stress 5.
func history(n int) []models.DailyRecord {
	out := make([]models.DailyRecord, n)
	for i := range out {
		out[i] = models.DailyRecord{
			UserID:  "u1",
			DateKey: fmt.Sprintf("2025-02-%02d", i+1),
		}
		if i%3 == 0 {
			out[i].MoodScore = fp(1)
			out[i].SleepHours = fp(6)
			out[i].Steps = fp(3000)
			out[i].Stress = fp(5)
		} else {
			out[i].MoodScore = fp(5)
			out[i].SleepHours = fp(8)
			out[i].Steps = fp(10000)
			out[i].Stress = fp(1)
		}
	}
	return out
}

func TestGenerateNoPredictionNoAdvice(t *testing.T) {
	assert.Empty(t, Generate(history(28), nil))
}

func TestGenerateShortHistoryNoAdvice(t *testing.T) {
	assert.Empty(t, Generate(history(13), fp(0.7)))
}

func TestGenerateRequiresBothPartitions(t *testing.T) {
	recs := history(28)
	// Flatten every mood to the same value: no good/bad split exists.
	for i := range recs {
		recs[i].MoodScore = fp(3)
	}
	assert.Empty(t, Generate(recs, fp(0.7)))
}

func TestGenerateCapAndOrder(t *testing.T) {
	advices := Generate(history(28), fp(0.7))

	// Sleep, steps and stress would all fire; the cap keeps the first two.
	require.Len(t, advices, 2)
	assert.Equal(t, "sleep", advices[0].Param)
	assert.Equal(t, "steps", advices[1].Param)
}

func TestGenerateSleepRecommendation(t *testing.T) {
	advices := Generate(history(28), fp(0.7))
	require.NotEmpty(t, advices)

	// Good days average 8.0 hours; bedtime for a 07:00 wake is 23:00.
	assert.Equal(t, "sleep", advices[0].Param)
	assert.Contains(t, advices[0].Message, "8.0 hours")
	assert.Contains(t, advices[0].Message, "23:00")
}

func TestGenerateStepsThresholdRounded(t *testing.T) {
	recs := history(28)
	// Push good-day steps off a round thousand.
	for i := range recs {
		if *recs[i].MoodScore == 5 {
			recs[i].Steps = fp(9400)
		}
	}
	advices := Generate(recs, fp(0.7))

	require.Len(t, advices, 2)
	assert.Equal(t, "steps", advices[1].Param)
	assert.Contains(t, advices[1].Message, "9,000")
}

func TestGenerateSleepSuppressedBelowThreshold(t *testing.T) {
	recs := history(28)
	// Narrow the sleep gap under 0.3h: sleep advice suppressed, steps and
	// stress take the two slots.
	for i := range recs {
		recs[i].SleepHours = fp(7)
	}
	advices := Generate(recs, fp(0.7))

	require.Len(t, advices, 2)
	assert.Equal(t, "steps", advices[0].Param)
	assert.Equal(t, "stress", advices[1].Param)
}

func TestGenerateStressAdvice(t *testing.T) {
	recs := history(28)
	for i := range recs {
		recs[i].SleepHours = fp(7)
		recs[i].Steps = fp(8000)
	}
	advices := Generate(recs, fp(0.7))

	// Only stress differs between partitions, and low-stress days have a
	// strictly lower unhealthy-day rate.
	require.Len(t, advices, 1)
	assert.Equal(t, "stress", advices[0].Param)
	assert.Contains(t, advices[0].Message, "level 1")
}

func TestGenerateMetricSuppressedWhenSamplesSparse(t *testing.T) {
	recs := history(28)
	// Strip steps from almost all bad days: under 3 samples in that
	// partition, so no steps advice.
	seen := 0
	for i := range recs {
		if *recs[i].MoodScore == 1 {
			seen++
			if seen > 2 {
				recs[i].Steps = nil
			}
		}
		recs[i].SleepHours = fp(7)
		recs[i].Stress = nil
	}
	advices := Generate(recs, fp(0.7))
	assert.Empty(t, advices)
}

func TestGenerateNullStressRowsExcluded(t *testing.T) {
	recs := history(28)
	// A few null-stress rows should not break the rate comparison.
	recs[4].Stress = nil
	recs[10].Stress = nil
	for i := range recs {
		recs[i].SleepHours = fp(7)
		recs[i].Steps = fp(8000)
	}
	advices := Generate(recs, fp(0.7))
	require.Len(t, advices, 1)
	assert.Equal(t, "stress", advices[0].Param)
}
