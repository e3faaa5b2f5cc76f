package repository

import (
	"context"
	"fmt"

	"wellpulse/internal/domain/models"
	pkgkafka "wellpulse/pkg/kafka"
)

// PredictionEvent is the payload published after a user's pipeline pass.
// Downstream consumers (notification fan-out, analytics sinks) key on the
// user id.
type PredictionEvent struct {
	UserID         string                `json:"user_id"`
	DateKey        string                `json:"date_key"`
	PToday         *float64              `json:"p_today,omitempty"`
	P3d            *float64              `json:"p_3d,omitempty"`
	Confidence     string                `json:"confidence"`
	ModelVersion   string                `json:"model_version"`
	Ready          bool                  `json:"ready"`
	DaysCollected  int                   `json:"days_collected"`
	UnhealthyCount int                   `json:"unhealthy_count"`
	Contributions  []models.Contribution `json:"contributions,omitempty"`
	Advices        []models.Advice       `json:"advices,omitempty"`
}

// KafkaPublisher implements Publisher on top of the shared producer.
type KafkaPublisher struct {
	producer *pkgkafka.Producer
	topic    string
}

func NewKafkaPublisher(producer *pkgkafka.Producer, topic string) *KafkaPublisher {
	return &KafkaPublisher{producer: producer, topic: topic}
}

func (k *KafkaPublisher) PublishResult(ctx context.Context, p *models.Prediction, s *models.ModelStatus) error {
	event := PredictionEvent{
		UserID:         p.UserID,
		DateKey:        p.DateKey,
		PToday:         p.PToday,
		P3d:            p.P3d,
		Confidence:     string(p.Confidence),
		ModelVersion:   p.ModelVersion,
		Ready:          s.Ready,
		DaysCollected:  s.DaysCollected,
		UnhealthyCount: s.UnhealthyCount,
		Contributions:  p.Contributions,
		Advices:        p.Advices,
	}
	if err := k.producer.Publish(ctx, k.topic, []byte(p.UserID), event); err != nil {
		return fmt.Errorf("publish prediction event: %w", err)
	}
	return nil
}

func (k *KafkaPublisher) Close() error {
	return k.producer.Close()
}
