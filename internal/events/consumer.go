package events

import (
	"context"
	"fmt"

	"github.com/apache/pulsar-client-go/pulsar"
)

// maxDeliveries is how many times a notification event is redelivered
// before it lands on the dead letter topic.
const maxDeliveries = 3

// Consumer reads notification events off a shared Pulsar subscription.
type Consumer struct {
	client   pulsar.Client
	consumer pulsar.Consumer
}

func NewConsumer(pulsarURL, topic, subscription string) (*Consumer, error) {
	client, err := pulsar.NewClient(pulsar.ClientOptions{URL: pulsarURL})
	if err != nil {
		return nil, fmt.Errorf("could not create Pulsar client: %w", err)
	}

	consumer, err := client.Subscribe(pulsar.ConsumerOptions{
		Topic:            topic,
		SubscriptionName: subscription,
		Type:             pulsar.Shared,
		DLQ: &pulsar.DLQPolicy{
			MaxDeliveries:   maxDeliveries,
			DeadLetterTopic: topic + "-dlq",
		},
	})
	if err != nil {
		client.Close()
		return nil, fmt.Errorf("could not subscribe to %s: %w", topic, err)
	}

	return &Consumer{client: client, consumer: consumer}, nil
}

// Receive blocks until the next event arrives or ctx is cancelled.
func (c *Consumer) Receive(ctx context.Context) (pulsar.Message, error) {
	msg, err := c.consumer.Receive(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to receive message: %w", err)
	}
	return msg, nil
}

func (c *Consumer) Ack(msg pulsar.Message) {
	c.consumer.Ack(msg)
}

func (c *Consumer) Nack(msg pulsar.Message) {
	c.consumer.Nack(msg)
}

func (c *Consumer) Close() {
	c.consumer.Close()
	c.client.Close()
}
