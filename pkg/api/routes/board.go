package routes

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/liip/sheriff"
	"github.com/travigo/pendler/pkg/ctdf"
	"github.com/travigo/pendler/pkg/departureboard"
	"github.com/travigo/pendler/pkg/trainposition"
)

type BoardState interface {
	State() departureboard.State
	Journey(index int) (*ctdf.JourneyWithConnection, bool)
}

type BoardControl interface {
	ToggleDirection() ctdf.Direction
	SetActive(active bool) error
	Active() bool
}

type boardRouter struct {
	board   BoardState
	control BoardControl
	now     func() time.Time
}

func BoardRouter(router fiber.Router, board BoardState, control BoardControl, now func() time.Time) {
	if now == nil {
		now = time.Now
	}

	handlers := &boardRouter{board: board, control: control, now: now}

	router.Get("/", handlers.getBoard)
	router.Post("/direction", handlers.toggleDirection)
	router.Post("/visibility", handlers.setVisibility)
	router.Get("/journeys/:index", handlers.getJourney)
	router.Get("/journeys/:index/position", handlers.getJourneyPosition)
}

func responseGroups(c *fiber.Ctx) []string {
	if c.QueryBool("detailed", false) {
		return []string{"basic", "detailed"}
	}
	return []string{"basic"}
}

func (r *boardRouter) getBoard(c *fiber.Ctx) error {
	state := r.board.State()

	stateReduced, err := sheriff.Marshal(&sheriff.Options{
		Groups: responseGroups(c),
	}, state)
	if err != nil {
		c.SendStatus(fiber.StatusInternalServerError)
		return c.JSON(fiber.Map{
			"error": "Sherrif could not reduce board",
		})
	}

	return c.JSON(stateReduced)
}

func (r *boardRouter) toggleDirection(c *fiber.Ctx) error {
	direction := r.control.ToggleDirection()

	return c.JSON(fiber.Map{
		"direction": direction,
	})
}

func (r *boardRouter) setVisibility(c *fiber.Ctx) error {
	active, err := strconv.ParseBool(c.Query("active"))
	if err != nil {
		c.SendStatus(fiber.StatusBadRequest)
		return c.JSON(fiber.Map{
			"error": "Parameter active should be true or false",
		})
	}

	if err := r.control.SetActive(active); err != nil {
		c.SendStatus(fiber.StatusInternalServerError)
		return c.JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.JSON(fiber.Map{
		"active": r.control.Active(),
	})
}

func (r *boardRouter) lookupJourney(c *fiber.Ctx) (*ctdf.JourneyWithConnection, error) {
	index, err := strconv.Atoi(c.Params("index"))
	if err != nil {
		c.SendStatus(fiber.StatusBadRequest)
		return nil, c.JSON(fiber.Map{
			"error": "Journey index should be an integer",
		})
	}

	journey, ok := r.board.Journey(index)
	if !ok {
		c.SendStatus(fiber.StatusNotFound)
		return nil, c.JSON(fiber.Map{
			"error": "Could not find Journey at index",
		})
	}

	return journey, nil
}

func (r *boardRouter) getJourney(c *fiber.Ctx) error {
	journey, err := r.lookupJourney(c)
	if journey == nil {
		return err
	}

	journeyReduced, err := sheriff.Marshal(&sheriff.Options{
		Groups: []string{"basic", "detailed"},
	}, journey)
	if err != nil {
		c.SendStatus(fiber.StatusInternalServerError)
		return c.JSON(fiber.Map{
			"error": "Sherrif could not reduce Journey",
		})
	}

	now := r.now()

	response := fiber.Map{
		"journey":     journeyReduced,
		"delayStatus": ctdf.DelayStatusFor(journey.Stop.Delay),
		"isRunning":   trainposition.IsRunning(journey.PassList, now),
	}

	if minutes, ok := ctdf.MinutesUntil(ctdf.StringValue(journey.Stop.Departure), now); ok {
		response["minutesUntil"] = minutes
	}

	return c.JSON(response)
}

func (r *boardRouter) getJourneyPosition(c *fiber.Ctx) error {
	journey, err := r.lookupJourney(c)
	if journey == nil {
		return err
	}

	at := r.now()
	if atString := c.Query("at"); atString != "" {
		at, err = time.Parse(time.RFC3339, atString)
		if err != nil {
			c.SendStatus(fiber.StatusBadRequest)
			return c.JSON(fiber.Map{
				"error": "Parameter at should be an RFC3339/ISO8601 datetime",
			})
		}
	}

	position, ok := trainposition.Estimate(journey.PassList, at)
	if !ok {
		c.SendStatus(fiber.StatusNotFound)
		return c.JSON(fiber.Map{
			"error": "Journey is not running at this time",
		})
	}

	return c.JSON(position)
}
