package model

import (
	"wellpulse/internal/domain/models"
)

// candidate is the shared capability of both classifier families: score the
// positive class and explain a single prediction. Keeping selection behind
// this interface keeps the kind switch exhaustive and testable.
type candidate interface {
	Kind() models.ModelKind

	// PredictProba returns P(y=1) for one raw feature vector.
	PredictProba(row []float64) float64

	// Contributions returns signed per-feature attributions for one raw
	// feature vector, in feature order (not yet ranked).
	Contributions(row []float64) ([]float64, error)
}
