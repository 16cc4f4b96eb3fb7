package transportapi

import (
	"context"
	"net/url"
	"strconv"

	"github.com/travigo/pendler/pkg/ctdf"
	"github.com/travigo/pendler/pkg/dataaggregator/source"
)

const stationboardDateTimeFormat = "2006-01-02 15:04"

type stationboardResponse struct {
	Station      ctdf.Station     `json:"station"`
	Stationboard *[]*ctdf.Journey `json:"stationboard"`
}

func (s Source) StationboardQuery(ctx context.Context, q ctdf.QueryStationboard) (*ctdf.Stationboard, error) {
	params := url.Values{}
	params.Set("station", q.Station)
	if q.Limit > 0 {
		params.Set("limit", strconv.Itoa(q.Limit))
	}
	if q.DateTime != nil {
		params.Set("datetime", q.DateTime.Format(stationboardDateTimeFormat))
	}

	var response stationboardResponse
	if err := s.get(ctx, "stationboard", params, &response); err != nil {
		return nil, err
	}

	if response.Stationboard == nil {
		return nil, &source.ProtocolError{Upstream: upstreamName, Message: "response has no stationboard"}
	}

	journeys := *response.Stationboard
	for _, journey := range journeys {
		normaliseJourney(journey)
	}

	return &ctdf.Stationboard{
		Station:      response.Station,
		Stationboard: journeys,
	}, nil
}

func normaliseJourney(journey *ctdf.Journey) {
	if journey == nil {
		return
	}

	normaliseStop(&journey.Stop)
	normaliseStops(journey.PassList)
}

// CategoryTable indexes the line identity of each departure on the board by its departure minute
func CategoryTable(board *ctdf.Stationboard) ctdf.CategoryTable {
	table := ctdf.CategoryTable{}

	if board == nil {
		return table
	}

	for _, journey := range board.Stationboard {
		if journey == nil || journey.Stop.Departure == nil {
			continue
		}

		departure, ok := ctdf.Timestamp(*journey.Stop.Departure)
		if !ok {
			continue
		}

		category := journey.Category
		if category == "" {
			category = "TRAIN"
		}

		table[ctdf.MinuteKey(departure)] = ctdf.LineIdentity{
			Category: category,
			Number:   journey.Number,
		}
	}

	return table
}

// CategoryTableQuery fetches the board of a station only to index its line identities
func (s Source) CategoryTableQuery(ctx context.Context, station string, limit int) (ctdf.CategoryTable, error) {
	board, err := s.StationboardQuery(ctx, ctdf.QueryStationboard{
		Station: station,
		Limit:   limit,
	})
	if err != nil {
		return nil, err
	}

	return CategoryTable(board), nil
}
