package ctdf

// Stationboard is the departure board of a single station
type Stationboard struct {
	Station      Station    `json:"station" groups:"basic"`
	Stationboard []*Journey `json:"stationboard" groups:"basic"`
}

type ConnectionsResult struct {
	Connections []*Connection `json:"connections" groups:"basic"`
	From        *Station      `json:"from" groups:"basic"`
	To          *Station      `json:"to" groups:"basic"`
}

// LineIdentity is the category and line number of a service, eg. IR and 27
type LineIdentity struct {
	Category string
	Number   string
}

// CategoryTable maps the minute (epoch milliseconds / 60000, rounded down) of a departure
// to the line identity known for it
type CategoryTable map[int64]LineIdentity

func MinuteKey(timestampMilliseconds int64) int64 {
	if timestampMilliseconds < 0 && timestampMilliseconds%60000 != 0 {
		return timestampMilliseconds/60000 - 1
	}
	return timestampMilliseconds / 60000
}
