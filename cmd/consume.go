package cmd

import (
	"context"
	"encoding/json"

	awsclient "github.com/OpenRecords/foi-request-services/internal/aws"
	"github.com/OpenRecords/foi-request-services/internal/events"
	"github.com/OpenRecords/foi-request-services/internal/notify"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var consumeCmd = &cobra.Command{
	Use:   "consume",
	Short: "Run the Pulsar consumer to turn notification events into emails",
	Run: func(cmd *cobra.Command, args []string) {

		// Load the config, initialize the database and set up logging
		commonSetUp()

		// Initialize event consumer
		consumer, err := events.NewConsumer(appCfg.Pulsar.URL, appCfg.Pulsar.TopicConsumer, appCfg.Pulsar.Subscription)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to initialize event consumer")
		}
		defer consumer.Close()

		awsCfg, err := awsclient.LoadAWSConfig(appCfg.AWS.Region)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to load AWS config")
		}
		mailer := &notify.Mailer{
			Client: awsclient.NewSESClient(awsCfg),
			Sender: appCfg.AWS.SenderEmail,
		}

		log.Info().Str("topic", appCfg.Pulsar.TopicConsumer).Msg("Waiting for notification events...")

		for {
			msg, err := consumer.Receive(context.Background())
			if err != nil {
				log.Error().Err(err).Msg("Error receiving message")
				continue
			}

			var event events.EventPayload
			if err := json.Unmarshal(msg.Payload(), &event); err != nil {
				log.Error().Err(err).Msg("Error unmarshaling event, dropping")
				// malformed payloads never parse, do not redeliver
				consumer.Ack(msg)
				continue
			}

			recipient := event.Recipient
			if recipient == "" {
				// owner-addressed events carry their recipient; anything
				// else is informational only
				log.Debug().Str("type", event.Type).Msg("Event has no recipient, skipping")
				consumer.Ack(msg)
				continue
			}

			subject, body, ok := notify.Render(event)
			if !ok {
				log.Warn().Str("type", event.Type).Msg("Unknown event type, skipping")
				consumer.Ack(msg)
				continue
			}

			if err := mailer.Send(context.Background(), recipient, subject, body); err != nil {
				log.Error().Err(err).Str("recipient", recipient).Msg("Failed to send notification email")
				consumer.Nack(msg)
				continue
			}

			log.Info().Str("type", event.Type).Str("recipient", recipient).Msg("Notification email sent")
			consumer.Ack(msg)
		}
	},
}

func init() {
	rootCmd.AddCommand(consumeCmd)
}
