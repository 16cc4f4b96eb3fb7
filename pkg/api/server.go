package api

import (
	"context"

	"github.com/rs/zerolog/log"
)

// SetupServer serves the API on listen until ctx is cancelled
func SetupServer(ctx context.Context, listen string, dependencies Dependencies) error {
	webApp := NewApp(dependencies)

	go func() {
		<-ctx.Done()

		log.Info().Msg("Shutting down web server")
		if err := webApp.Shutdown(); err != nil {
			log.Error().Err(err).Msg("Failed to shut down web server")
		}
	}()

	log.Info().Str("listen", listen).Msg("Starting web server")

	return webApp.Listen(listen)
}
