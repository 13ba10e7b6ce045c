package db

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"os"
	"time"

	_ "github.com/lib/pq"
	"github.com/pressly/goose/v3"
	"github.com/rs/zerolog"
)

//go:embed migrations/*.sql
var migrations embed.FS

// RequestsDB wraps the records tracker database.
type RequestsDB struct {
	DB  *sql.DB
	Log *zerolog.Logger
}

// NewRequestsDB is a constructor that initializes RequestsDB with DB and Log
func NewRequestsDB(log *zerolog.Logger) (*RequestsDB, error) {
	// Get the database connection string from the environment
	connStr := os.Getenv("DATABASE_URL")
	if connStr == "" {
		log.Error().Msg("DATABASE_URL environment variable is not set")
		return nil, fmt.Errorf("DATABASE_URL environment variable is not set")
	}

	// Open the database connection
	db, err := sql.Open("postgres", connStr)
	if err != nil {
		log.Error().Err(err).Msg("Failed to open database connection")
		return nil, err
	}

	// Check we are actually connected
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	err = db.PingContext(ctx)
	if err != nil {
		log.Error().Err(err).Msg("Database connection failed during ping")
		return nil, err
	}

	return &RequestsDB{
		DB:  db,
		Log: log,
	}, nil
}

func (rdb *RequestsDB) Close() error {
	if err := rdb.DB.Close(); err != nil {
		return err
	}
	rdb.Log.Info().Msg("database connection closed")
	rdb.DB = nil

	return nil
}

// Migrate brings the schema up to date using the embedded goose migrations.
func (rdb *RequestsDB) Migrate() error {
	goose.SetBaseFS(migrations)

	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("error setting goose dialect: %w", err)
	}

	if err := goose.Up(rdb.DB, "migrations"); err != nil {
		return fmt.Errorf("error running migrations: %w", err)
	}

	rdb.Log.Info().Msg("migrations applied")
	return nil
}

func (rdb *RequestsDB) execQuery(tx *sql.Tx, query string, args ...interface{}) error {

	if rdb.DB == nil {
		return fmt.Errorf("database connection is not established")
	}

	var err error
	if tx != nil {
		_, err = tx.Exec(query, args...)
	} else {
		_, err = rdb.DB.Exec(query, args...)
	}
	if err != nil {
		return fmt.Errorf("failed to execute query: %v", err)
	}
	return nil
}

// CommitTransaction commits a transaction, rolling back on failure.
func (rdb *RequestsDB) CommitTransaction(tx *sql.Tx) error {
	if err := tx.Commit(); err != nil {
		tx.Rollback()
		return fmt.Errorf("error committing transaction: %w", err)
	}
	return nil
}
