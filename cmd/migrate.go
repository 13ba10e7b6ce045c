package cmd

import (
	"fmt"
	"os"

	"github.com/OpenRecords/foi-request-services/db"
	"github.com/OpenRecords/foi-request-services/internal/appconfig"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:   "init-db-migrate",
	Short: "Initialize tables and run database migrations",
	Long:  `This job ensures tables exist and then runs goose migrations.`,
	Run: func(cmd *cobra.Command, args []string) {
		// Set the log level
		setLogging(logLevel)

		// Load the config file
		var err error
		appCfg, err = appconfig.LoadConfig(configPath)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to load config")
		}

		err = os.Setenv("DATABASE_URL", appCfg.Database.Source)
		if err != nil {
			fmt.Println("Error setting environment variable:", err)
			os.Exit(1)
		}

		logger := log.Logger
		requestsDB, err = db.NewRequestsDB(&logger)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to initialize RequestsDB")
			os.Exit(1)
		}

		// Set up the database
		defer requestsDB.Close()

		// Run the migrations
		log.Info().Msgf("Running migrations...")
		if err := requestsDB.Migrate(); err != nil {
			log.Fatal().Err(err).Msg("Failed to run migrations")
		}

		log.Info().Msg("Migrations complete")
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}
