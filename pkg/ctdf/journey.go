package ctdf

import (
	"golang.org/x/exp/slices"
)

type Journey struct {
	Stop Stop `json:"stop" groups:"basic"`

	Name     string `json:"name" groups:"basic"`
	Category string `json:"category" groups:"basic"`
	Number   string `json:"number" groups:"basic"`
	Operator string `json:"operator" groups:"basic"`
	To       string `json:"to" groups:"basic"`

	PassList []*Stop `json:"passList" groups:"detailed"`

	Capacity1st *int `json:"capacity1st" groups:"basic"`
	Capacity2nd *int `json:"capacity2nd" groups:"basic"`
}

// FindStop returns the pass list entry for the named station
func (j *Journey) FindStop(stationName string) *Stop {
	index := slices.IndexFunc(j.PassList, func(stop *Stop) bool {
		return stop != nil && stop.Station.Name == stationName
	})

	if index == -1 {
		return nil
	}

	return j.PassList[index]
}

func (j *Journey) CallsAt(stationName string) bool {
	return j.FindStop(stationName) != nil
}

// LineLabel is the rider facing product label, eg. "IR 27"
func (j *Journey) LineLabel() string {
	if j.Number == "" {
		return j.Category
	}
	return j.Category + " " + j.Number
}

// JourneyWithConnection is a board entry enriched with the arrival at the transfer
// station and the onward connections from there
type JourneyWithConnection struct {
	Journey `groups:"basic,detailed"`

	TransferArrival           *string `json:"aarauArrival,omitempty" groups:"basic"`
	TransferPlatform          *string `json:"aarauPlatform" groups:"basic"`
	TransferPrognosisPlatform *string `json:"aarauPrognosisPlatform" groups:"basic"`

	Connections []*Connection `json:"connections,omitempty" groups:"basic"`
}
