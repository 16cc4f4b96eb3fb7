package trainposition

import (
	"time"

	"github.com/travigo/pendler/pkg/ctdf"
)

const unknownStopName = "Unknown"

// Arrivals within this window after the scheduled time still count as travelling the segment
const arrivalBuffer = time.Minute

// Without a known final arrival a service is assumed to run for this long after departing
const runningFallbackWindow = time.Hour

type Position struct {
	Lat      float64 `json:"lat"`
	Lon      float64 `json:"lon"`
	Progress float64 `json:"progress"`

	CurrentStop string `json:"currentStop"`
	NextStop    string `json:"nextStop"`

	IsMoving bool `json:"isMoving"`
}

// Estimate interpolates the position of a service between the stops of its pass list.
// Stops without coordinates are ignored and at least two are needed.
func Estimate(passList []*ctdf.Stop, now time.Time) (*Position, bool) {
	stops := make([]*ctdf.Stop, 0, len(passList))
	for _, stop := range passList {
		if stop != nil && stop.Station.Coordinate.Known() {
			stops = append(stops, stop)
		}
	}

	if len(stops) < 2 {
		return nil, false
	}

	nowMilliseconds := now.UnixMilli()

	for i := 0; i < len(stops)-1; i++ {
		current := stops[i]
		next := stops[i+1]

		departure, ok := ctdf.ParseTimePointer(current.Departure)
		if !ok {
			continue
		}
		arrival, ok := ctdf.ParseTimePointer(next.Arrival)
		if !ok {
			continue
		}

		departureMilliseconds := departure.UnixMilli()
		arrivalMilliseconds := arrival.UnixMilli()

		if nowMilliseconds < departureMilliseconds || nowMilliseconds > arrivalMilliseconds+arrivalBuffer.Milliseconds() {
			continue
		}

		duration := arrivalMilliseconds - departureMilliseconds
		elapsed := nowMilliseconds - departureMilliseconds

		progress := 0.0
		if duration > 0 {
			progress = clamp(float64(elapsed)/float64(duration), 0, 1)
		}

		lat, lon := current.Station.Coordinate.Interpolate(next.Station.Coordinate, progress)

		return &Position{
			Lat:         lat,
			Lon:         lon,
			Progress:    progress,
			CurrentStop: stopName(current),
			NextStop:    stopName(next),
			IsMoving:    true,
		}, true
	}

	first := stops[0]
	last := stops[len(stops)-1]

	if firstDeparture, ok := ctdf.ParseTimePointer(first.Departure); ok && nowMilliseconds < firstDeparture.UnixMilli() {
		return stationaryAt(first, stops[1], 0), true
	}

	if lastArrival, ok := ctdf.ParseTimePointer(last.Arrival); ok && nowMilliseconds > lastArrival.UnixMilli() {
		return stationaryAt(last, last, 1), true
	}

	// Gap in the timetable data, assume it has just left the first stop
	return &Position{
		Lat:         first.Station.Coordinate.Lat(),
		Lon:         first.Station.Coordinate.Lon(),
		Progress:    0,
		CurrentStop: stopName(first),
		NextStop:    stopName(stops[1]),
		IsMoving:    true,
	}, true
}

// IsRunning reports whether now lies between the first departure and the last arrival of the pass list
func IsRunning(passList []*ctdf.Stop, now time.Time) bool {
	stops := make([]*ctdf.Stop, 0, len(passList))
	for _, stop := range passList {
		if stop != nil && (ctdf.StringValue(stop.Departure) != "" || ctdf.StringValue(stop.Arrival) != "") {
			stops = append(stops, stop)
		}
	}

	if len(stops) == 0 {
		return false
	}

	start, ok := ctdf.ParseTimePointer(stops[0].Departure)
	if !ok {
		return false
	}

	end, ok := ctdf.ParseTimePointer(stops[len(stops)-1].Arrival)
	if !ok {
		end = start.Add(runningFallbackWindow)
	}

	nowMilliseconds := now.UnixMilli()

	return nowMilliseconds >= start.UnixMilli() && nowMilliseconds <= end.UnixMilli()
}

func stationaryAt(stop *ctdf.Stop, next *ctdf.Stop, progress float64) *Position {
	return &Position{
		Lat:         stop.Station.Coordinate.Lat(),
		Lon:         stop.Station.Coordinate.Lon(),
		Progress:    progress,
		CurrentStop: stopName(stop),
		NextStop:    stopName(next),
		IsMoving:    false,
	}
}

func stopName(stop *ctdf.Stop) string {
	if stop.Station.Name == "" {
		return unknownStopName
	}
	return stop.Station.Name
}

func clamp(value float64, min float64, max float64) float64 {
	if value < min {
		return min
	}
	if value > max {
		return max
	}
	return value
}
