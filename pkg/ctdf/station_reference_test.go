package ctdf

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStopPlaceRef(t *testing.T) {
	ref, ok := StopPlaceRef(StationMuhen)
	require.True(t, ok)
	assert.Equal(t, "8502195", ref)

	ref, ok = StopPlaceRef(StationAarau)
	require.True(t, ok)
	assert.Equal(t, "8502113", ref)

	ref, ok = StopPlaceRef(StationZurichHB)
	require.True(t, ok)
	assert.Equal(t, "8503000", ref)

	_, ok = StopPlaceRef("Olten")
	assert.False(t, ok)
}

func TestBoardStation(t *testing.T) {
	station, ok := BoardStation(StationZurichHB)
	require.True(t, ok)

	assert.Equal(t, "8503000", station.ID)
	assert.Equal(t, StationZurichHB, station.Name)
	assert.Equal(t, 47.377847, station.Coordinate.Lat())
	assert.Equal(t, 8.540502, station.Coordinate.Lon())
	assert.Nil(t, station.Score)
	assert.Nil(t, station.Distance)
}

func TestCoordinateForName(t *testing.T) {
	coordinate := CoordinateForName("Schöftland Nordweg")
	require.True(t, coordinate.Known())
	assert.Equal(t, 47.306389, coordinate.Lat())
	assert.Equal(t, 8.051389, coordinate.Lon())

	// The corridor table carries its own Zürich HB position
	zurich := CoordinateForName(StationZurichHB)
	assert.Equal(t, 47.378177, zurich.Lat())
	assert.Equal(t, 8.540192, zurich.Lon())

	assert.Len(t, stations.Coordinates, 15)

	unknown := CoordinateForName("Winterthur")
	assert.False(t, unknown.Known())
	assert.Equal(t, CoordinateTypeWGS84, unknown.Type)
}

func TestConnectionEndpoint(t *testing.T) {
	muhen := ConnectionEndpoint(StationMuhen)
	assert.Equal(t, "8502211", muhen.ID)
	assert.Equal(t, 47.363889, muhen.Coordinate.Lat())

	unknown := ConnectionEndpoint("Lenzburg")
	assert.Equal(t, "Lenzburg", unknown.Name)
	assert.Equal(t, "8502113", unknown.ID)
	assert.Equal(t, 47.391361, unknown.Coordinate.Lat())
	assert.Equal(t, 8.051284, unknown.Coordinate.Lon())
}

func TestDirectionRoute(t *testing.T) {
	assert.Equal(t, Route{Origin: StationMuhen, Transfer: StationAarau, Destination: StationZurichHB}, DirectionToZurich.Route())
	assert.Equal(t, Route{Origin: StationZurichHB, Transfer: StationAarau, Destination: StationMuhen}, DirectionToMuhen.Route())

	assert.Equal(t, DirectionToMuhen, DirectionToZurich.Opposite())
	assert.Equal(t, DirectionToZurich, DirectionToMuhen.Opposite())

	assert.True(t, DirectionToMuhen.Valid())
	assert.False(t, Direction("sideways").Valid())
}

func TestFormatDuration(t *testing.T) {
	assert.Equal(t, "00d00:27:00", FormatDuration(27*time.Minute))
	assert.Equal(t, "01d02:03:04", FormatDuration(26*time.Hour+3*time.Minute+4*time.Second))
	assert.Equal(t, "00d00:00:00", FormatDuration(-time.Minute))
}

func TestJourneyFindStop(t *testing.T) {
	journey := &Journey{
		Category: "IR",
		Number:   "27",
		PassList: []*Stop{
			{Station: Station{Name: StationMuhen}},
			{Station: Station{Name: StationAarau}},
		},
	}

	assert.Same(t, journey.PassList[1], journey.FindStop(StationAarau))
	assert.Nil(t, journey.FindStop(StationZurichHB))
	assert.True(t, journey.CallsAt(StationMuhen))
	assert.Equal(t, "IR 27", journey.LineLabel())

	journey.Number = ""
	assert.Equal(t, "IR", journey.LineLabel())
}

func TestMinuteKey(t *testing.T) {
	assert.Equal(t, int64(28494780), MinuteKey(1709686800000))
	assert.Equal(t, int64(28494780), MinuteKey(1709686859999))
	assert.Equal(t, int64(-1), MinuteKey(-1))
}
