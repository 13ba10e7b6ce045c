package cmd

import (
	"os"

	"github.com/OpenRecords/foi-request-services/db"
	"github.com/OpenRecords/foi-request-services/internal/appconfig"
	"github.com/rs/zerolog/log"
)

var (
	appCfg     *appconfig.Config
	requestsDB *db.RequestsDB
)

// commonSetUp loads the config, sets up logging, and connects to the
// database. Shared by the server and the background jobs.
func commonSetUp() {
	setLogging(logLevel)

	var err error
	appCfg, err = appconfig.LoadConfig(configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	if err := os.Setenv("DATABASE_URL", appCfg.Database.Source); err != nil {
		log.Fatal().Err(err).Msg("failed to set DATABASE_URL")
	}

	logger := log.Logger
	requestsDB, err = db.NewRequestsDB(&logger)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize RequestsDB")
	}
}
