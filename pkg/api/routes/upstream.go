package routes

import (
	"errors"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/liip/sheriff"
	"github.com/travigo/pendler/pkg/ctdf"
	"github.com/travigo/pendler/pkg/dataaggregator"
	"github.com/travigo/pendler/pkg/dataaggregator/source"
)

const defaultUpstreamLimit = 15

// UpstreamRouter exposes the normalised upstream boards and connections directly
func UpstreamRouter(router fiber.Router, aggregator *dataaggregator.Aggregator) {
	router.Get("/stationboard", func(c *fiber.Ctx) error {
		return getStationboard(c, aggregator)
	})
	router.Get("/connections", func(c *fiber.Ctx) error {
		return getConnections(c, aggregator)
	})
}

func getStationboard(c *fiber.Ctx, aggregator *dataaggregator.Aggregator) error {
	station := c.Query("station")
	if station == "" {
		c.SendStatus(fiber.StatusBadRequest)
		return c.JSON(fiber.Map{
			"error": "Parameter station is required",
		})
	}

	query := ctdf.QueryStationboard{
		Station: station,
		Limit:   c.QueryInt("limit", defaultUpstreamLimit),
	}

	if dateTimeString := c.Query("datetime"); dateTimeString != "" {
		dateTime, err := time.Parse(time.RFC3339, dateTimeString)
		if err != nil {
			c.SendStatus(fiber.StatusBadRequest)
			return c.JSON(fiber.Map{
				"error": "Parameter datetime should be an RFC3339/ISO8601 datetime",
			})
		}
		query.DateTime = &dateTime
	}

	board, err := dataaggregator.Lookup[*ctdf.Stationboard](c.UserContext(), aggregator, query)
	if err != nil {
		return upstreamError(c, err)
	}

	return reducedJSON(c, board)
}

func getConnections(c *fiber.Ctx, aggregator *dataaggregator.Aggregator) error {
	from := c.Query("from")
	to := c.Query("to")
	if from == "" || to == "" {
		c.SendStatus(fiber.StatusBadRequest)
		return c.JSON(fiber.Map{
			"error": "Parameters from and to are required",
		})
	}

	query := ctdf.QueryConnections{
		From:       from,
		To:         to,
		Limit:      c.QueryInt("limit", defaultUpstreamLimit),
		Time:       c.Query("time"),
		Date:       c.Query("date"),
		DirectOnly: c.QueryBool("directOnly", false),
	}

	if via := c.Query("via"); via != "" {
		query.Via = strings.Split(via, "|")
	}

	connections, err := dataaggregator.Lookup[*ctdf.ConnectionsResult](c.UserContext(), aggregator, query)
	if err != nil {
		return upstreamError(c, err)
	}

	return reducedJSON(c, connections)
}

func reducedJSON(c *fiber.Ctx, value any) error {
	reduced, err := sheriff.Marshal(&sheriff.Options{
		Groups: []string{"basic", "detailed"},
	}, value)
	if err != nil {
		c.SendStatus(fiber.StatusInternalServerError)
		return c.JSON(fiber.Map{
			"error": "Sherrif could not reduce response",
		})
	}

	return c.JSON(reduced)
}

func upstreamError(c *fiber.Ctx, err error) error {
	var transportError *source.TransportError
	var protocolError *source.ProtocolError

	switch {
	case errors.Is(err, dataaggregator.ErrNoMatchingSource), source.IsUnsupported(err):
		c.SendStatus(fiber.StatusNotFound)
	case source.IsConfigurationError(err):
		c.SendStatus(fiber.StatusInternalServerError)
	case errors.As(err, &transportError), errors.As(err, &protocolError):
		c.SendStatus(fiber.StatusBadGateway)
	default:
		c.SendStatus(fiber.StatusInternalServerError)
	}

	return c.JSON(fiber.Map{
		"error": err.Error(),
	})
}
