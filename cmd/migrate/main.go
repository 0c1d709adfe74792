package main

import (
	"github.com/sirupsen/logrus"
	"github.com/yukikurage/renovation-tracker-api/internal/config"
	"github.com/yukikurage/renovation-tracker-api/internal/database"
	"github.com/yukikurage/renovation-tracker-api/internal/logging"
)

// Main entry point for migration
func main() {
	cfg := config.Load()
	logging.Setup(cfg.LogLevel, cfg.IsRelease())

	db, err := database.Connect(cfg)
	if err != nil {
		logrus.WithError(err).Fatal("Failed to connect to database")
	}
	defer database.Close(db)

	if err := database.Migrate(db); err != nil {
		logrus.WithError(err).Fatal("Failed to run migrations")
	}

	logrus.WithField("driver", cfg.DBDriver).Info("Migrations applied")
}
