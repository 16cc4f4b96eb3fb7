package ctdf

type Station struct {
	ID         string     `json:"id" groups:"basic"`
	Name       string     `json:"name" groups:"basic"`
	Score      *float64   `json:"score" groups:"basic"`
	Coordinate Coordinate `json:"coordinate" groups:"basic"`
	Distance   *float64   `json:"distance" groups:"basic"`
}

// Prognosis holds the realtime values that supersede the scheduled ones when present
type Prognosis struct {
	Platform    *string `json:"platform" groups:"basic"`
	Arrival     *string `json:"arrival" groups:"basic"`
	Departure   *string `json:"departure" groups:"basic"`
	Capacity1st *int    `json:"capacity1st" groups:"basic"`
	Capacity2nd *int    `json:"capacity2nd" groups:"basic"`
}

// Stop is a single call of a service at a station.
// Timestamps are milliseconds since the unix epoch.
// Delay is in whole minutes and is 0 whenever either planned or estimated time is unknown.
type Stop struct {
	Station Station `json:"station" groups:"basic"`

	Arrival            *string `json:"arrival" groups:"basic"`
	ArrivalTimestamp   *int64  `json:"arrivalTimestamp" groups:"basic"`
	Departure          *string `json:"departure" groups:"basic"`
	DepartureTimestamp *int64  `json:"departureTimestamp" groups:"basic"`

	Delay     int       `json:"delay" groups:"basic"`
	Platform  *string   `json:"platform" groups:"basic"`
	Prognosis Prognosis `json:"prognosis" groups:"basic"`

	RealtimeAvailability *string `json:"realtimeAvailability" groups:"basic"`
	Location             Station `json:"location" groups:"basic"`
}

func (s *Stop) StationName() string {
	if s == nil {
		return ""
	}
	return s.Station.Name
}

// ArrivalOrDeparture is the arrival time, falling back to the departure time for
// stops where the service only passes through
func (s *Stop) ArrivalOrDeparture() *string {
	if s.Arrival != nil && *s.Arrival != "" {
		return s.Arrival
	}
	if s.Departure != nil && *s.Departure != "" {
		return s.Departure
	}
	return nil
}

func StringPointer(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func StringValue(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
