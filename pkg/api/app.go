package api

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/travigo/pendler/pkg/api/routes"
	"github.com/travigo/pendler/pkg/dataaggregator"
)

type Dependencies struct {
	Board      routes.BoardState
	Control    routes.BoardControl
	Aggregator *dataaggregator.Aggregator
	Now        func() time.Time
}

func NewApp(dependencies Dependencies) *fiber.App {
	webApp := fiber.New(fiber.Config{
		DisableStartupMessage: true,
	})
	webApp.Use(NewLogger())

	group := webApp.Group("/core")

	group.Get("version", routes.APIVersion)

	routes.BoardRouter(group.Group("/board"), dependencies.Board, dependencies.Control, dependencies.Now)
	routes.UpstreamRouter(group, dependencies.Aggregator)

	return webApp
}
