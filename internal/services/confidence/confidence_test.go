package confidence

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"wellpulse/internal/domain/models"
)

var defaults = Thresholds{
	MediumDays:       30,
	MediumUnhealthy:  5,
	HighDays:         60,
	HighUnhealthy:    10,
	MissingThreshold: 0.3,
}

func TestCalculate(t *testing.T) {
	cases := []struct {
		name        string
		days        int
		unhealthy   int
		missingRate float64
		want        models.ConfidenceLevel
	}{
		{"short history", 20, 3, 0.0, models.ConfidenceLow},
		{"medium tier", 45, 7, 0.0, models.ConfidenceMedium},
		{"high tier", 60, 10, 0.0, models.ConfidenceHigh},
		{"high downgraded", 60, 10, 0.35, models.ConfidenceMedium},
		{"medium downgraded", 45, 7, 0.35, models.ConfidenceLow},
		{"low stays low", 10, 1, 0.5, models.ConfidenceLow},
		{"days without unhealthy stays low", 90, 2, 0.0, models.ConfidenceLow},
		{"unhealthy without days stays low", 20, 15, 0.0, models.ConfidenceLow},
		{"high days medium unhealthy", 90, 7, 0.0, models.ConfidenceMedium},
		{"threshold boundary downgrades", 60, 10, 0.3, models.ConfidenceMedium},
		{"just under threshold keeps tier", 60, 10, 0.29, models.ConfidenceHigh},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := Calculate(tc.days, tc.unhealthy, tc.missingRate, defaults)
			assert.Equal(t, tc.want, got)
		})
	}
}
