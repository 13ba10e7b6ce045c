package cmd

import (
	"github.com/OpenRecords/foi-request-services/api/services"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var embargoesCmd = &cobra.Command{
	Use:   "lift-embargoes",
	Short: "Clear expired, non-permanent embargoes on completed requests",
	Run: func(cmd *cobra.Command, args []string) {

		// Load the config, initialize the database and set up logging
		commonSetUp()
		defer requestsDB.Close()

		service := &services.Service{
			Config: appCfg,
			DB:     requestsDB,
		}

		logger := log.Logger
		lifted, err := service.LiftExpiredEmbargoes(&logger)
		if err != nil {
			log.Fatal().Err(err).Msg("Embargo sweep failed")
		}

		log.Info().Int("lifted", lifted).Msg("Embargo sweep complete")
	},
}

func init() {
	rootCmd.AddCommand(embargoesCmd)
}
