package ctdf

import (
	"fmt"
	"time"
)

type Connection struct {
	From *Stop `json:"from" groups:"basic"`
	To   *Stop `json:"to" groups:"basic"`

	Duration  string             `json:"duration" groups:"basic"`
	Transfers int                `json:"transfers" groups:"basic"`
	Service   *ConnectionService `json:"service" groups:"basic"`
	Products  []string           `json:"products" groups:"basic"`

	Capacity1st *int `json:"capacity1st" groups:"basic"`
	Capacity2nd *int `json:"capacity2nd" groups:"basic"`

	Sections []*Section `json:"sections" groups:"detailed"`

	// FinalDestination is where the service actually terminates, which may be further than the riders destination
	FinalDestination string `json:"finalDestination,omitempty" groups:"basic"`
}

type ConnectionService struct {
	Regular   string `json:"regular" groups:"basic"`
	Irregular string `json:"irregular" groups:"basic"`
}

type Section struct {
	Journey   *SectionJourney `json:"journey" groups:"basic"`
	Walk      map[string]any  `json:"walk" groups:"basic"`
	Departure *Stop           `json:"departure" groups:"basic"`
	Arrival   *Stop           `json:"arrival" groups:"basic"`
}

type SectionJourney struct {
	Name     string  `json:"name" groups:"basic"`
	Category string  `json:"category" groups:"basic"`
	Number   string  `json:"number" groups:"basic"`
	Operator string  `json:"operator" groups:"basic"`
	To       string  `json:"to" groups:"basic"`
	PassList []*Stop `json:"passList" groups:"detailed"`

	Capacity1st *int `json:"capacity1st" groups:"basic"`
	Capacity2nd *int `json:"capacity2nd" groups:"basic"`
}

func (s *SectionJourney) LineLabel() string {
	if s.Number == "" {
		return s.Category
	}
	return s.Category + " " + s.Number
}

// FormatDuration renders a duration the way the journey planner API does, eg. "00d00:27:00"
func FormatDuration(d time.Duration) string {
	if d < 0 {
		d = 0
	}

	days := d / (24 * time.Hour)
	d -= days * 24 * time.Hour
	hours := d / time.Hour
	d -= hours * time.Hour
	minutes := d / time.Minute
	d -= minutes * time.Minute
	seconds := d / time.Second

	return fmt.Sprintf("%02dd%02d:%02d:%02d", days, hours, minutes, seconds)
}
