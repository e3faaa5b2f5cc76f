package models

// Requests and responses for pipeline HTTP endpoints. Defined in domain for
// consistency and reuse.

type RunRequest struct {
	Date string `query:"date" json:"date" validate:"omitempty,datetime=2006-01-02"`
}

type RunResponse struct {
	Date      string  `json:"date"`
	Active    int     `json:"active_users"`
	Processed int     `json:"processed"`
	Skipped   int     `json:"skipped"`
	Failed    int     `json:"failed"`
	Duration  float64 `json:"duration_seconds"`
}

type PredictionResponse struct {
	DateKey       string         `json:"dateKey"`
	PToday        *float64       `json:"pToday,omitempty"`
	P3d           *float64       `json:"p3d,omitempty"`
	Confidence    string         `json:"confidence"`
	ModelVersion  string         `json:"modelVersion"`
	Contributions []Contribution `json:"contributions,omitempty"`
	Advices       []Advice       `json:"advices,omitempty"`
}

type ModelStatusResponse struct {
	DaysCollected     int     `json:"daysCollected"`
	DaysRequired      int     `json:"daysRequired"`
	Ready             bool    `json:"ready"`
	UnhealthyCount    int     `json:"unhealthyCount"`
	RecentMissingRate float64 `json:"recentMissingRate"`
	ModelKind         string  `json:"modelKind"`
	Confidence        string  `json:"confidenceLevel"`
}

// PredictionResponseFrom maps a persisted Prediction to its transport shape.
func PredictionResponseFrom(p *Prediction) *PredictionResponse {
	return &PredictionResponse{
		DateKey:       p.DateKey,
		PToday:        p.PToday,
		P3d:           p.P3d,
		Confidence:    string(p.Confidence),
		ModelVersion:  p.ModelVersion,
		Contributions: p.Contributions,
		Advices:       p.Advices,
	}
}

// ModelStatusResponseFrom maps a persisted ModelStatus to its transport shape.
func ModelStatusResponseFrom(s *ModelStatus) *ModelStatusResponse {
	return &ModelStatusResponse{
		DaysCollected:     s.DaysCollected,
		DaysRequired:      s.DaysRequired,
		Ready:             s.Ready,
		UnhealthyCount:    s.UnhealthyCount,
		RecentMissingRate: s.RecentMissingRate,
		ModelKind:         string(s.ModelKind),
		Confidence:        string(s.Confidence),
	}
}
