package events

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/apache/pulsar-client-go/pulsar"
)

// Event types published by the API and consumed by the notification worker.
const (
	EventRequestSubmitted  = "request.submitted"
	EventRequestUpdated    = "request.updated"
	EventAgencyStale       = "agency.stale"
	EventCrowdfundLaunched = "crowdfund.launched"
	EventCrowdfundClosed   = "crowdfund.closed"
	EventProjectReviewed   = "project.reviewed"
)

// EventPayload describes something that happened to a tracked object. The
// notification worker turns these into emails.
type EventPayload struct {
	Type     string `json:"type"`
	ObjectID string `json:"object_id"`
	// Recipient is the email address to notify, when known at publish time.
	Recipient string            `json:"recipient,omitempty"`
	Data      map[string]string `json:"data,omitempty"`
}

// Notifier publishes events for asynchronous processing.
type Notifier interface {
	Notify(event EventPayload) error
	Close()
}

type EventPublisher struct {
	client   pulsar.Client
	producer pulsar.Producer
}

// NewEventPublisher initializes the Pulsar client and producer.
func NewEventPublisher(pulsarURL, topic string) (*EventPublisher, error) {
	client, err := pulsar.NewClient(pulsar.ClientOptions{
		URL: pulsarURL,
	})
	if err != nil {
		return nil, fmt.Errorf("could not create Pulsar client: %w", err)
	}

	producer, err := client.CreateProducer(pulsar.ProducerOptions{
		Topic: topic,
	})
	if err != nil {
		client.Close()
		return nil, fmt.Errorf("could not create Pulsar producer: %w", err)
	}

	return &EventPublisher{client: client, producer: producer}, nil
}

// Notify publishes an event to Pulsar.
func (p *EventPublisher) Notify(event EventPayload) error {
	message, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("could not serialize event payload: %w", err)
	}

	_, err = p.producer.Send(context.Background(), &pulsar.ProducerMessage{
		Payload: message,
	})
	if err != nil {
		return fmt.Errorf("could not send event to Pulsar: %w", err)
	}

	return nil
}

// Close closes the Pulsar client and producer.
func (p *EventPublisher) Close() {
	p.producer.Close()
	p.client.Close()
}
