// Package confidence derives the rule-based reliability tier from data
// volume and completeness. It is a pure function of three scalars.
package confidence

import (
	"wellpulse/internal/domain/models"
)

// Thresholds configure the tier boundaries and the missing-rate downgrade.
type Thresholds struct {
	MediumDays       int
	MediumUnhealthy  int
	HighDays         int
	HighUnhealthy    int
	MissingThreshold float64
}

// Calculate returns the confidence tier. Base tier comes from history length
// and unhealthy-day count; a trailing-week missing rate at or above the
// threshold downgrades exactly one tier. Low never downgrades further.
func Calculate(daysCollected, unhealthyCount int, recentMissingRate float64, t Thresholds) models.ConfidenceLevel {
	level := models.ConfidenceLow
	switch {
	case daysCollected >= t.HighDays && unhealthyCount >= t.HighUnhealthy:
		level = models.ConfidenceHigh
	case daysCollected >= t.MediumDays && unhealthyCount >= t.MediumUnhealthy:
		level = models.ConfidenceMedium
	}

	if recentMissingRate >= t.MissingThreshold {
		switch level {
		case models.ConfidenceHigh:
			level = models.ConfidenceMedium
		case models.ConfidenceMedium:
			level = models.ConfidenceLow
		}
	}
	return level
}
