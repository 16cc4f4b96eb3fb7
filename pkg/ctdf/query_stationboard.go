package ctdf

import "time"

type QueryStationboard struct {
	Station  string
	Limit    int
	DateTime *time.Time
}
