package main

import (
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/travigo/pendler/pkg/api"
	"github.com/travigo/pendler/pkg/dataaggregator/source"
	"github.com/urfave/cli/v2"

	_ "time/tzdata"
)

func main() {
	// A local .env is optional, variables already set in the environment win
	envFileErr := godotenv.Load()

	if os.Getenv("PENDLER_LOG_FORMAT") != "JSON" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339})
	}

	if os.Getenv("PENDLER_DEBUG") == "YES" {
		log.Logger = log.Logger.Level(zerolog.DebugLevel)
	} else {
		log.Logger = log.Logger.Level(zerolog.InfoLevel)
	}

	if envFileErr == nil {
		log.Debug().Msg("Loaded environment from .env")
	}

	app := &cli.App{
		Name:        "pendler",
		Description: "Live departures and onward connections for the Muhen - Aarau - Zürich HB commute",

		Commands: []*cli.Command{
			api.RegisterCLI(),
		},
	}

	err := app.Run(os.Args)
	if source.IsConfigurationError(err) {
		log.Fatal().Err(err).Msg("Invalid configuration")
	} else if err != nil {
		log.Fatal().Err(err).Send()
	}
}
