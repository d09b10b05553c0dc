package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"github.com/aurasflow/backend/internal/config"
	"github.com/aurasflow/backend/internal/database"
	"github.com/aurasflow/backend/internal/logger"
	"github.com/aurasflow/backend/internal/migrations"
)

const dbName = "aurasflow"

func main() {
	godotenv.Load()

	var (
		command     = flag.String("cmd", "up", "Command: up, down, status")
		databaseURL = flag.String("db", "", "Database URL (or set DATABASE_URL env)")
	)
	flag.Parse()

	cfg := config.Load()
	logger.Init(logger.Config{Level: cfg.LogLevel, Pretty: true})
	log := logger.Get()

	dbURL := *databaseURL
	if dbURL == "" {
		dbURL = cfg.DatabaseURL
	}
	if dbURL == "" {
		log.Fatal().Msg("DATABASE_URL is required")
	}

	db, err := database.Connect(dbURL)
	if err != nil {
		log.Fatal().Err(err).Msg("database connection failed")
	}

	sqlDB, err := db.DB()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to unwrap sql.DB")
	}
	defer sqlDB.Close()

	switch *command {
	case "up":
		if err := migrations.Run(sqlDB, dbName); err != nil {
			log.Fatal().Err(err).Msg("migration up failed")
		}
	case "down":
		if err := migrations.Rollback(sqlDB, dbName); err != nil {
			log.Fatal().Err(err).Msg("migration down failed")
		}
	case "status":
		version, dirty, err := migrations.Status(sqlDB, dbName)
		if err != nil {
			log.Fatal().Err(err).Msg("status check failed")
		}
		fmt.Printf("version: %d dirty: %v\n", version, dirty)
	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n", *command)
		os.Exit(1)
	}
}
