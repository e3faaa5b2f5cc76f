package labels

import (
	"fmt"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wellpulse/internal/domain/models"
)

// series builds records from mood values; NaN means the mood was skipped.
func series(moods ...float64) []models.DailyRecord {
	out := make([]models.DailyRecord, len(moods))
	for i, m := range moods {
		out[i] = models.DailyRecord{
			UserID:  "u1",
			DateKey: fmt.Sprintf("2025-01-%02d", i+1),
		}
		if !math.IsNaN(m) {
			v := m
			out[i].MoodScore = &v
		}
	}
	return out
}

func repeat(v float64, n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = v
	}
	return out
}

func TestBuildShortHistoryAllUndefined(t *testing.T) {
	for n := 1; n < 14; n++ {
		lbl := Build(series(repeat(3, n)...))
		for i, y := range lbl.YToday {
			assert.True(t, math.IsNaN(y), "n=%d i=%d", n, i)
		}
	}
}

func TestBuildConstantMoodNeverUnhealthy(t *testing.T) {
	lbl := Build(series(repeat(4, 20)...))
	for i := 0; i < 13; i++ {
		assert.True(t, math.IsNaN(lbl.YToday[i]), "i=%d", i)
	}
	for i := 13; i < 20; i++ {
		assert.Equal(t, 0.0, lbl.YToday[i], "i=%d", i)
	}
}

func TestBuildDropBelowTrailingMean(t *testing.T) {
	moods := append(repeat(4, 14), 1)
	lbl := Build(series(moods...))

	// Trailing window at row 15 averages thirteen 4s and the 1 itself:
	// (13*4+1)/14 = 3.79, and 1 <= 2.79.
	require.Len(t, lbl.YToday, 15)
	assert.Equal(t, 1.0, lbl.YToday[14])
}

func TestBuildThreeDayLabelIsOROfNextThree(t *testing.T) {
	moods := append(repeat(4, 16), 1, 4, 4, 4)
	lbl := Build(series(moods...))

	// Row 16 is the only unhealthy day.
	require.Equal(t, 1.0, lbl.YToday[16])
	assert.Equal(t, 1.0, lbl.Y3d[13])
	assert.Equal(t, 1.0, lbl.Y3d[14])
	assert.Equal(t, 1.0, lbl.Y3d[15])
	assert.Equal(t, 0.0, lbl.Y3d[16])
}

func TestBuildThreeDayLabelUndefinedTail(t *testing.T) {
	lbl := Build(series(repeat(3, 20)...))
	n := len(lbl.Y3d)
	for i := n - 3; i < n; i++ {
		assert.True(t, math.IsNaN(lbl.Y3d[i]), "i=%d", i)
	}
}

func TestBuildThreeDayLabelUndefinedWhenAnyNextUndefined(t *testing.T) {
	moods := append(repeat(4, 15), math.NaN(), 4, 4, 4, 4)
	lbl := Build(series(moods...))

	// y_today at the null-mood row 15 is undefined, so y_3d for the three
	// rows looking across it is too.
	assert.True(t, math.IsNaN(lbl.YToday[15]))
	assert.True(t, math.IsNaN(lbl.Y3d[12]))
	assert.True(t, math.IsNaN(lbl.Y3d[13]))
	assert.True(t, math.IsNaN(lbl.Y3d[14]))
	assert.False(t, math.IsNaN(lbl.Y3d[15]))
}

func TestBuildWindowToleratesGaps(t *testing.T) {
	// 14 row slots with two skipped moods: the label is still defined,
	// averaging the non-null values.
	moods := repeat(4, 15)
	moods[3] = math.NaN()
	moods[8] = math.NaN()
	moods[14] = 1
	lbl := Build(series(moods...))

	assert.Equal(t, 1.0, lbl.YToday[14])
}

func TestUnhealthyCount(t *testing.T) {
	moods := append(repeat(4, 16), 1, 4, 1, 4)
	lbl := Build(series(moods...))
	assert.Equal(t, 2, lbl.UnhealthyCount())
}
