package cmd

import (
	"time"

	"github.com/OpenRecords/foi-request-services/api/services"
	"github.com/OpenRecords/foi-request-services/internal/events"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var followupsCmd = &cobra.Command{
	Use:   "followups",
	Short: "Send automatic follow ups on requests whose follow up date has passed",
	Run: func(cmd *cobra.Command, args []string) {

		// Load the config, initialize the database and set up logging
		commonSetUp()
		defer requestsDB.Close()

		publisher, err := events.NewEventPublisher(appCfg.Pulsar.URL, appCfg.Pulsar.TopicProducer)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to initialize event publisher")
		}
		defer publisher.Close()

		service := &services.Service{
			Config:    appCfg,
			DB:        requestsDB,
			Publisher: publisher,
		}

		logger := log.Logger
		sent, err := service.SendFollowups(&logger, time.Now().UTC())
		if err != nil {
			log.Fatal().Err(err).Msg("Follow up sweep failed")
		}

		log.Info().Int("sent", sent).Msg("Follow up sweep complete")
	},
}

func init() {
	rootCmd.AddCommand(followupsCmd)
}
