package ojp

import (
	"fmt"
	"io"
	"regexp"

	"github.com/travigo/pendler/pkg/ctdf"
	"github.com/travigo/pendler/pkg/dataaggregator/source"
)

const (
	defaultCategory = "TRAIN"
	defaultOperator = "SBB"
)

var (
	categoryRegex = regexp.MustCompile(`^([A-Z]+)`)
	numberRegex   = regexp.MustCompile(`(\d+)`)
)

// ParseStopEventResponse decodes an OJP stop event delivery into the departure board of stationName.
// Line identities are taken from categories where a departure minute matches, otherwise from the published line name.
func ParseStopEventResponse(reader io.Reader, stationName string, categories ctdf.CategoryTable) (*ctdf.Stationboard, error) {
	delivery, err := decodeStopEventResponse(reader)
	if err != nil {
		return nil, err
	}

	journeys := make([]*ctdf.Journey, 0, len(delivery.Results))

	for index, result := range delivery.Results {
		journey, err := normaliseStopEvent(result.StopEvent, categories)
		if err != nil {
			return nil, &source.ProtocolError{
				Upstream: upstreamName,
				Message:  fmt.Sprintf("stop event %d", index),
				Err:      err,
			}
		}

		journeys = append(journeys, journey)
	}

	station, ok := ctdf.BoardStation(stationName)
	if !ok {
		station = ctdf.Station{Name: stationName, Coordinate: ctdf.UnknownCoordinate()}
	}

	return &ctdf.Stationboard{
		Station:      station,
		Stationboard: journeys,
	}, nil
}

func normaliseStopEvent(event stopEvent, categories ctdf.CategoryTable) (*ctdf.Journey, error) {
	thisCall := event.ThisCall
	if thisCall == nil {
		return nil, fmt.Errorf("missing ThisCall")
	}

	plannedDeparture := thisCall.ServiceDeparture.timetabled()
	if plannedDeparture == "" {
		plannedDeparture = thisCall.ServiceArrival.timetabled()
	}
	estimatedDeparture := thisCall.ServiceDeparture.estimated()

	departure := estimatedDeparture
	if departure == "" {
		departure = plannedDeparture
	}
	if departure == "" {
		return nil, fmt.Errorf("call at %q has no departure or arrival time", thisCall.StopPointName)
	}

	departureTimestamp, ok := ctdf.Timestamp(departure)
	if !ok {
		return nil, fmt.Errorf("call at %q has invalid time %q", thisCall.StopPointName, departure)
	}

	passList := make([]*ctdf.Stop, 0, len(event.PreviousCalls)+1+len(event.OnwardCalls))
	for _, call := range event.PreviousCalls {
		passList = append(passList, normaliseCall(call))
	}
	passList = append(passList, normaliseCall(*thisCall))
	for _, call := range event.OnwardCalls {
		passList = append(passList, normaliseCall(call))
	}

	stopStation := ctdf.Station{
		ID:         thisCall.StopPointRef,
		Name:       thisCall.StopPointName,
		Coordinate: ctdf.UnknownCoordinate(),
	}

	category, number := lineIdentity(event.Service.PublishedLineName, departureTimestamp, categories)

	operator := event.Service.OperatorRef
	if operator == "" {
		operator = defaultOperator
	}

	return &ctdf.Journey{
		Stop: ctdf.Stop{
			Station:            stopStation,
			Departure:          &departure,
			DepartureTimestamp: &departureTimestamp,
			Delay:              ctdf.Delay(ctdf.StringPointer(plannedDeparture), ctdf.StringPointer(estimatedDeparture)),
			Platform:           ctdf.StringPointer(thisCall.PlannedQuay),
			Prognosis: ctdf.Prognosis{
				Platform:  ctdf.StringPointer(thisCall.EstimatedQuay),
				Departure: ctdf.StringPointer(estimatedDeparture),
			},
			Location: stopStation,
		},
		Name:     event.Service.JourneyRef,
		Category: category,
		Number:   number,
		Operator: operator,
		To:       event.Service.DestinationText,
		PassList: passList,
	}, nil
}

func lineIdentity(publishedLineName string, departureTimestamp int64, categories ctdf.CategoryTable) (string, string) {
	if departureTimestamp != 0 {
		if identity, ok := categories[ctdf.MinuteKey(departureTimestamp)]; ok {
			return identity.Category, identity.Number
		}
	}

	if publishedLineName == "" {
		return defaultCategory, ""
	}

	category := defaultCategory
	if match := categoryRegex.FindStringSubmatch(publishedLineName); match != nil {
		category = match[1]
	}

	number := ""
	if match := numberRegex.FindStringSubmatch(publishedLineName); match != nil {
		number = match[1]
	}

	return category, number
}

// normaliseCall turns one call into a pass list stop. Arrival and departure are the estimated
// times where known, timestamps only exist when there is a timetabled time.
func normaliseCall(call callAtStop) *ctdf.Stop {
	plannedArrival := call.ServiceArrival.timetabled()
	estimatedArrival := call.ServiceArrival.estimated()
	plannedDeparture := call.ServiceDeparture.timetabled()
	estimatedDeparture := call.ServiceDeparture.estimated()

	stop := &ctdf.Stop{
		Station: ctdf.Station{
			ID:         call.StopPointRef,
			Name:       call.StopPointName,
			Coordinate: ctdf.CoordinateForName(call.StopPointName),
		},
		Arrival:   firstNonEmpty(estimatedArrival, plannedArrival),
		Departure: firstNonEmpty(estimatedDeparture, plannedDeparture),
		Platform:  ctdf.StringPointer(call.PlannedQuay),
		Prognosis: ctdf.Prognosis{
			Platform:  ctdf.StringPointer(call.EstimatedQuay),
			Arrival:   ctdf.StringPointer(estimatedArrival),
			Departure: ctdf.StringPointer(estimatedDeparture),
		},
		Location: ctdf.Station{
			ID:         call.StopPointRef,
			Name:       call.StopPointName,
			Coordinate: ctdf.UnknownCoordinate(),
		},
	}

	if plannedArrival != "" && stop.Arrival != nil {
		if timestamp, ok := ctdf.Timestamp(*stop.Arrival); ok {
			stop.ArrivalTimestamp = &timestamp
		}
	}
	if plannedDeparture != "" && stop.Departure != nil {
		if timestamp, ok := ctdf.Timestamp(*stop.Departure); ok {
			stop.DepartureTimestamp = &timestamp
		}
	}

	stop.Delay = ctdf.Delay(ctdf.StringPointer(plannedDeparture), ctdf.StringPointer(estimatedDeparture))
	if stop.Delay == 0 {
		stop.Delay = ctdf.Delay(ctdf.StringPointer(plannedArrival), ctdf.StringPointer(estimatedArrival))
	}

	return stop
}

func firstNonEmpty(values ...string) *string {
	for _, value := range values {
		if value != "" {
			return &value
		}
	}
	return nil
}
