package connections

import (
	"fmt"

	"github.com/travigo/pendler/pkg/ctdf"
)

// FromItinerary turns a two section route planner result into a board entry. The first section
// is the journey to the transfer station and the second becomes its only onward connection.
// Itineraries with fewer sections or without a journey in the first are skipped.
func FromItinerary(itinerary *ctdf.Connection) (*ctdf.JourneyWithConnection, bool) {
	if itinerary == nil || len(itinerary.Sections) < 2 {
		return nil, false
	}

	first := itinerary.Sections[0]
	second := itinerary.Sections[1]

	if first == nil || first.Journey == nil || first.Departure == nil {
		return nil, false
	}

	departure := first.Departure

	journey := &ctdf.JourneyWithConnection{
		Journey: ctdf.Journey{
			Stop: ctdf.Stop{
				Station:              departure.Station,
				Departure:            departure.Departure,
				DepartureTimestamp:   departure.DepartureTimestamp,
				Delay:                departure.Delay,
				Platform:             departure.Platform,
				Prognosis:            departure.Prognosis,
				RealtimeAvailability: departure.RealtimeAvailability,
				Location:             departure.Location,
			},
			Name:        first.Journey.Name,
			Category:    first.Journey.Category,
			Number:      first.Journey.Number,
			Operator:    first.Journey.Operator,
			To:          first.Journey.To,
			PassList:    first.Journey.PassList,
			Capacity1st: first.Journey.Capacity1st,
			Capacity2nd: first.Journey.Capacity2nd,
		},
	}

	if journey.PassList == nil {
		journey.PassList = []*ctdf.Stop{}
	}

	if first.Arrival != nil {
		journey.TransferArrival = first.Arrival.Arrival
		journey.TransferPlatform = first.Arrival.Platform
		journey.TransferPrognosisPlatform = first.Arrival.Prognosis.Platform
	}

	if second != nil && second.Journey != nil && second.Departure != nil && second.Arrival != nil {
		journey.Connections = []*ctdf.Connection{onwardConnection(itinerary, second)}
	}

	return journey, true
}

func onwardConnection(itinerary *ctdf.Connection, section *ctdf.Section) *ctdf.Connection {
	from := *section.Departure
	from.Arrival = nil
	from.ArrivalTimestamp = nil

	to := *section.Arrival
	to.Departure = nil
	to.DepartureTimestamp = nil

	return &ctdf.Connection{
		From:             &from,
		To:               &to,
		Duration:         itinerary.Duration,
		Transfers:        0,
		Products:         []string{fmt.Sprintf("%s %s", section.Journey.Category, section.Journey.Number)},
		Capacity1st:      section.Journey.Capacity1st,
		Capacity2nd:      section.Journey.Capacity2nd,
		Sections:         []*ctdf.Section{section},
		FinalDestination: section.Journey.To,
	}
}
