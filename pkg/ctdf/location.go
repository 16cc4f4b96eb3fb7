package ctdf

const CoordinateTypeWGS84 = "WGS84"

// Coordinate follows the transport.opendata.ch convention where X is the
// latitude and Y the longitude. Both are nil when the position is unknown.
type Coordinate struct {
	Type string   `json:"type" groups:"basic"`
	X    *float64 `json:"x" groups:"basic"`
	Y    *float64 `json:"y" groups:"basic"`
}

func NewCoordinate(lat float64, lon float64) Coordinate {
	return Coordinate{
		Type: CoordinateTypeWGS84,
		X:    &lat,
		Y:    &lon,
	}
}

func UnknownCoordinate() Coordinate {
	return Coordinate{Type: CoordinateTypeWGS84}
}

func (c Coordinate) Known() bool {
	return c.X != nil && c.Y != nil
}

func (c Coordinate) Lat() float64 {
	if c.X == nil {
		return 0
	}
	return *c.X
}

func (c Coordinate) Lon() float64 {
	if c.Y == nil {
		return 0
	}
	return *c.Y
}

// Interpolate returns the point at progress (0..1) along the straight line from c to other.
func (c Coordinate) Interpolate(other Coordinate, progress float64) (float64, float64) {
	lat := c.Lat() + (other.Lat()-c.Lat())*progress
	lon := c.Lon() + (other.Lon()-c.Lon())*progress

	return lat, lon
}
