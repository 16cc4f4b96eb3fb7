package ctdf

type Direction string

const (
	DirectionToZurich Direction = "toZurich"
	DirectionToMuhen  Direction = "toMuhen"
)

func (d Direction) Valid() bool {
	return d == DirectionToZurich || d == DirectionToMuhen
}

func (d Direction) Opposite() Direction {
	if d == DirectionToMuhen {
		return DirectionToZurich
	}
	return DirectionToMuhen
}

// Route is the origin, transfer and destination station names for a direction
type Route struct {
	Origin      string
	Transfer    string
	Destination string
}

func (d Direction) Route() Route {
	if d == DirectionToMuhen {
		return Route{
			Origin:      StationZurichHB,
			Transfer:    StationAarau,
			Destination: StationMuhen,
		}
	}

	return Route{
		Origin:      StationMuhen,
		Transfer:    StationAarau,
		Destination: StationZurichHB,
	}
}
