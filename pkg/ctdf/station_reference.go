package ctdf

import (
	_ "embed"

	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"
)

const (
	StationMuhen    = "Muhen"
	StationAarau    = "Aarau"
	StationZurichHB = "Zürich HB"
)

//go:embed data/stations.yaml
var stationsDocument []byte

type stationRecord struct {
	Name string  `yaml:"name"`
	ID   string  `yaml:"id"`
	Lat  float64 `yaml:"lat"`
	Lon  float64 `yaml:"lon"`
}

func (r stationRecord) station() Station {
	return Station{
		ID:         r.ID,
		Name:       r.Name,
		Coordinate: NewCoordinate(r.Lat, r.Lon),
	}
}

type stationReference struct {
	BoardStations       []stationRecord `yaml:"boardStations"`
	ConnectionEndpoints []stationRecord `yaml:"connectionEndpoints"`
	Coordinates         []stationRecord `yaml:"coordinates"`
}

var stations = loadStationReference(stationsDocument)

func loadStationReference(document []byte) *stationReference {
	var reference stationReference

	if err := yaml.Unmarshal(document, &reference); err != nil {
		log.Fatal().Err(err).Msg("Failed to decode station reference")
	}

	return &reference
}

func findRecord(records []stationRecord, name string) (stationRecord, bool) {
	for _, record := range records {
		if record.Name == name {
			return record, true
		}
	}
	return stationRecord{}, false
}

// StopPlaceRef returns the DiDok id for one of the stations with a stop event board
func StopPlaceRef(name string) (string, bool) {
	record, ok := findRecord(stations.BoardStations, name)
	return record.ID, ok
}

// BoardStation is the station metadata returned alongside an OJP board
func BoardStation(name string) (Station, bool) {
	record, ok := findRecord(stations.BoardStations, name)
	if !ok {
		return Station{}, false
	}
	return record.station(), true
}

// CoordinateForName returns the coordinate of a corridor station, or an unknown coordinate
func CoordinateForName(name string) Coordinate {
	record, ok := findRecord(stations.Coordinates, name)
	if !ok {
		return UnknownCoordinate()
	}
	return NewCoordinate(record.Lat, record.Lon)
}

// ConnectionEndpoint resolves the station used on either side of a projected connection.
// Names outside the table take the transfer station's id and coordinate but keep their own name.
func ConnectionEndpoint(name string) Station {
	if record, ok := findRecord(stations.ConnectionEndpoints, name); ok {
		return record.station()
	}

	fallback, _ := findRecord(stations.ConnectionEndpoints, StationAarau)
	station := fallback.station()
	station.Name = name

	return station
}

func BoardStationNames() []string {
	names := make([]string, 0, len(stations.BoardStations))
	for _, record := range stations.BoardStations {
		names = append(names, record.Name)
	}
	return names
}
