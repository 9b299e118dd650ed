package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	configureLogging()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCommand().ExecuteContext(ctx); err != nil {
		log.Error().Err(err).Msg("command failed")
		stop()
		os.Exit(1)
	}
}

func configureLogging() {
	// default level is Info; CODELEARN_LOG_LEVEL narrows it once config loads
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr}).Level(zerolog.InfoLevel)

	if os.Getenv("ENV") == "development" {
		log.Logger = log.Logger.Level(zerolog.DebugLevel)
	}

	zerolog.DefaultContextLogger = &log.Logger
}
