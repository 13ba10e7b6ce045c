package cmd

import (
	"time"

	"github.com/OpenRecords/foi-request-services/api/services"
	"github.com/OpenRecords/foi-request-services/internal/events"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var staleCmd = &cobra.Command{
	Use:   "detect-stale",
	Short: "Mark agencies that have gone silent on their open requests",
	Long: `Sweeps all approved agencies and marks those with no response on any
open request within the configured window, opening a review task for staff.
Agencies that have responded since the last sweep are unmarked.`,
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
		marked, err := service.DetectStaleAgencies(&logger, time.Now().UTC())
		if err != nil {
			log.Fatal().Err(err).Msg("Stale agency sweep failed")
		}

		log.Info().Int("marked", marked).Msg("Stale agency sweep complete")
	},
}

func init() {
	rootCmd.AddCommand(staleCmd)
}
