// Package events publishes booking domain events to Kafka.
package events

import (
	"context"
	"encoding/json"
	"time"

	"alcyxob/gym-platform/internal/domain"

	"github.com/segmentio/kafka-go"
)

const (
	WorkoutBooked     = "workout.booked"
	WorkoutCancelled  = "workout.cancelled"
	FeedbackSubmitted = "feedback.submitted"
)

// Event is the JSON payload written to the events topic.
type Event struct {
	Type       string    `json:"type"`
	WorkoutID  string    `json:"workoutId"`
	CoachID    string    `json:"coachId"`
	ClientID   string    `json:"clientId"`
	Actor      string    `json:"actor"`
	Date       string    `json:"date,omitempty"`
	Time       string    `json:"time,omitempty"`
	Rating     *int      `json:"rating,omitempty"`
	OccurredAt time.Time `json:"occurredAt"`
}

func NewWorkoutEvent(eventType string, w *domain.Workout, actor domain.Role, at time.Time) Event {
	return Event{
		Type:       eventType,
		WorkoutID:  w.ID.Hex(),
		CoachID:    w.CoachID.Hex(),
		ClientID:   w.ClientID.Hex(),
		Actor:      string(actor),
		Date:       w.Date,
		Time:       w.Time,
		OccurredAt: at.UTC(),
	}
}

func NewFeedbackEvent(f *domain.Feedback, at time.Time) Event {
	return Event{
		Type:       FeedbackSubmitted,
		WorkoutID:  f.WorkoutID.Hex(),
		CoachID:    f.CoachID.Hex(),
		ClientID:   f.ClientID.Hex(),
		Actor:      string(f.Author),
		Rating:     f.Rating,
		OccurredAt: at.UTC(),
	}
}

type Publisher interface {
	Publish(ctx context.Context, evt Event) error
	Close() error
}

// NoopPublisher is used when no brokers are configured.
type NoopPublisher struct{}

func (NoopPublisher) Publish(context.Context, Event) error { return nil }
func (NoopPublisher) Close() error                          { return nil }

// messageWriter is the part of *kafka.Writer the publisher needs.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type KafkaPublisher struct {
	writer messageWriter
}

// NewKafkaPublisher writes every event to topic, keyed by workout id so
// all events of one workout land on the same partition.
func NewKafkaPublisher(brokers []string, topic string) *KafkaPublisher {
	return &KafkaPublisher{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Topic:        topic,
			Balancer:     &kafka.Hash{},
			RequiredAcks: kafka.RequireAll,
			Compression:  kafka.Snappy,
			BatchTimeout: 50 * time.Millisecond,
		},
	}
}

func (p *KafkaPublisher) Publish(ctx context.Context, evt Event) error {
	payload, err := json.Marshal(evt)
	if err != nil {
		return err
	}
	return p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(evt.WorkoutID),
		Value: payload,
		Headers: []kafka.Header{
			{Key: "event-type", Value: []byte(evt.Type)},
		},
		Time: evt.OccurredAt,
	})
}

func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}
