package sim

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"

	"fleetfusion/internal/fleet"
)

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaWriter publishes agent events and fleet states as JSON messages.
// Events are keyed by event type, fleet rows by truck id.
type KafkaWriter struct {
	events  messageWriter
	states  messageWriter
	timeout time.Duration
}

// NewKafkaWriter creates producers for the event and state topics. An empty
// stateTopic disables fleet state publishing.
func NewKafkaWriter(brokers []string, eventTopic, stateTopic string) (*KafkaWriter, error) {
	if len(brokers) == 0 {
		return nil, errors.New("kafka: no brokers configured")
	}
	if eventTopic == "" {
		return nil, errors.New("kafka: event topic required")
	}
	kw := &KafkaWriter{
		events:  newKafkaProducer(brokers, eventTopic),
		timeout: 5 * time.Second,
	}
	if stateTopic != "" {
		kw.states = newKafkaProducer(brokers, stateTopic)
	}
	return kw, nil
}

func newKafkaProducer(brokers []string, topic string) *kafka.Writer {
	return &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireAll,
	}
}

// WriteEvent publishes a single event.
func (k *KafkaWriter) WriteEvent(ev fleet.AgentEvent) error {
	return k.WriteEvents([]fleet.AgentEvent{ev})
}

// WriteEvents publishes several events in one request.
func (k *KafkaWriter) WriteEvents(evs []fleet.AgentEvent) error {
	msgs := make([]kafka.Message, 0, len(evs))
	for _, ev := range evs {
		value, err := json.Marshal(ev)
		if err != nil {
			return fmt.Errorf("kafka: encode event %s: %w", ev.ID, err)
		}
		msgs = append(msgs, kafka.Message{Key: []byte(ev.Type), Value: value, Time: ev.Timestamp})
	}
	return k.publish(k.events, msgs)
}

// WriteStates publishes one message per truck.
func (k *KafkaWriter) WriteStates(rows []fleet.StateRow) error {
	if k.states == nil {
		return nil
	}
	msgs := make([]kafka.Message, 0, len(rows))
	for _, r := range rows {
		value, err := json.Marshal(r)
		if err != nil {
			return fmt.Errorf("kafka: encode state %s: %w", r.TruckID, err)
		}
		msgs = append(msgs, kafka.Message{Key: []byte(r.TruckID), Value: value, Time: r.Timestamp})
	}
	return k.publish(k.states, msgs)
}

func (k *KafkaWriter) publish(w messageWriter, msgs []kafka.Message) error {
	if len(msgs) == 0 {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), k.timeout)
	defer cancel()
	if err := w.WriteMessages(ctx, msgs...); err != nil {
		return fmt.Errorf("kafka: publish: %w", err)
	}
	return nil
}

// Close flushes and closes the producers.
func (k *KafkaWriter) Close() error {
	var errs []error
	if err := k.events.Close(); err != nil {
		errs = append(errs, err)
	}
	if k.states != nil {
		if err := k.states.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
