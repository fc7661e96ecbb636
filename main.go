package main

import (
	"context"
	"os"
	"os/signal"

	"github.com/foopis23/art-of-the-week/archive"
	"github.com/foopis23/art-of-the-week/bot"
	"github.com/foopis23/art-of-the-week/config"
	"github.com/foopis23/art-of-the-week/dal"
	"github.com/foopis23/art-of-the-week/logging"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fallback := logging.New("info")
		fallback.Fatal().Err(err).Msg("Failed to load config")
	}

	log := logging.New(cfg.Logging.Level)

	db, err := dal.InitDB(cfg.DB.Path)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to DB")
	}
	log.Info().Str("path", cfg.DB.Path).Msg("Connected to database.")

	var backend archive.Strategy
	if cfg.Archive.CredentialsFile != "" {
		drive, err := archive.NewGoogleDrive(context.Background(), cfg.Archive.CredentialsFile)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to create Google Drive client")
		}
		backend = drive
		log.Info().Msg("Google Drive archiving available.")
	} else {
		log.Info().Msg("No Google credentials configured, archiving unavailable.")
	}

	b, err := bot.New(cfg, db, archive.NewFactory(backend), log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to start bot")
	}
	defer b.Shutdown()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt)
	<-stop
}
