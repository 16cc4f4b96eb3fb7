package connections

import (
	"fmt"
	"strings"
	"time"

	"github.com/travigo/pendler/pkg/ctdf"
)

const MinimumTransferTime = 4 * time.Minute

const MaxConnections = 3

// Find picks the onward journeys from the transfer station board that a rider arriving at
// transferArrival can catch towards destination. Board order is kept and at most
// MaxConnections are returned.
func Find(transferArrival time.Time, destination string, board []*ctdf.Journey) []*ctdf.Connection {
	connections := []*ctdf.Connection{}

	for _, journey := range board {
		if len(connections) >= MaxConnections {
			break
		}

		if journey == nil {
			continue
		}

		departure, ok := catchable(journey, transferArrival, destination)
		if !ok {
			continue
		}

		connections = append(connections, project(journey, departure, destination))
	}

	return connections
}

func catchable(journey *ctdf.Journey, transferArrival time.Time, destination string) (time.Time, bool) {
	if !strings.Contains(journey.To, destination) && !journey.CallsAt(destination) {
		return time.Time{}, false
	}

	departure, ok := ctdf.ParseTimePointer(journey.Stop.Departure)
	if !ok {
		return time.Time{}, false
	}

	if departure.UnixMilli()-transferArrival.UnixMilli() < MinimumTransferTime.Milliseconds() {
		return time.Time{}, false
	}

	// A service that passes the destination before reaching the transfer station runs the wrong way
	if destinationStop := journey.FindStop(destination); destinationStop != nil {
		if destinationTime, ok := ctdf.ParseTimePointer(destinationStop.ArrivalOrDeparture()); ok {
			if destinationTime.UnixMilli() <= departure.UnixMilli() {
				return time.Time{}, false
			}
		}
	}

	return departure, true
}

func project(journey *ctdf.Journey, departure time.Time, destination string) *ctdf.Connection {
	transferStation := ctdf.ConnectionEndpoint(ctdf.StationAarau)
	destinationStation := ctdf.ConnectionEndpoint(destination)

	departureTimestamp := departure.UnixMilli()

	to := &ctdf.Stop{
		Station:   destinationStation,
		Location:  destinationStation,
		Prognosis: ctdf.Prognosis{},
	}

	duration := ""

	if destinationStop := journey.FindStop(destination); destinationStop != nil {
		to.Arrival = destinationStop.ArrivalOrDeparture()
		to.ArrivalTimestamp = destinationStop.ArrivalTimestamp
		if to.ArrivalTimestamp == nil {
			to.ArrivalTimestamp = destinationStop.DepartureTimestamp
		}
		to.Platform = destinationStop.Platform

		if arrival, ok := ctdf.ParseTimePointer(to.Arrival); ok {
			duration = ctdf.FormatDuration(arrival.Sub(departure))
		}
	}

	return &ctdf.Connection{
		From: &ctdf.Stop{
			Station:            transferStation,
			Departure:          journey.Stop.Departure,
			DepartureTimestamp: &departureTimestamp,
			Delay:              journey.Stop.Delay,
			Platform:           journey.Stop.Platform,
			Prognosis:          journey.Stop.Prognosis,
			Location:           transferStation,
		},
		To:               to,
		Duration:         duration,
		Transfers:        0,
		Products:         []string{fmt.Sprintf("%s %s", journey.Category, journey.Number)},
		Sections:         []*ctdf.Section{},
		FinalDestination: journey.To,
	}
}
