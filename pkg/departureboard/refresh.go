package departureboard

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/sourcegraph/conc/iter"
	"github.com/travigo/pendler/pkg/connections"
	"github.com/travigo/pendler/pkg/ctdf"
	"github.com/travigo/pendler/pkg/dataaggregator"
)

// refreshOutbound builds the board from the origin departures that reach the transfer station,
// matching each against the transfer station board for onward connections
func (b *Board) refreshOutbound(ctx context.Context, direction ctdf.Direction, tier Tier) (*refreshResult, error) {
	route := direction.Route()

	originBoard, err := dataaggregator.Lookup[*ctdf.Stationboard](ctx, b.aggregator, ctdf.QueryStationboard{
		Station: route.Origin,
		Limit:   OriginBoardLimit,
	})
	if err != nil {
		return nil, fmt.Errorf("%s board: %w", route.Origin, err)
	}

	candidates := []*ctdf.Journey{}
	for _, journey := range originBoard.Stationboard {
		if journey == nil {
			continue
		}

		if transferStop := journey.FindStop(route.Transfer); transferStop == nil || transferStop.Arrival == nil {
			continue
		}

		candidates = append(candidates, journey)
	}

	result := &refreshResult{
		station: &originBoard.Station,
	}

	var transferBoard []*ctdf.Journey

	if len(candidates) > 0 {
		transferBoard, err = b.transferBoard(ctx, direction, route.Transfer, tier, result)
		if err != nil {
			return nil, err
		}
	}

	result.journeys = iter.Map(candidates, func(journey **ctdf.Journey) *ctdf.JourneyWithConnection {
		return withConnections(*journey, route, transferBoard)
	})

	return result, nil
}

// transferBoard reads the board from the last full refresh on a quick tier, fetching when there is none
func (b *Board) transferBoard(ctx context.Context, direction ctdf.Direction, station string, tier Tier, result *refreshResult) ([]*ctdf.Journey, error) {
	if tier == TierQuick {
		if cached, ok := b.cache.TransferBoard(ctx, direction); ok {
			log.Debug().Str("station", station).Msg("Using cached transfer board")
			return cached, nil
		}
	}

	limit := TransferBoardLimitFull
	if tier == TierQuick {
		limit = TransferBoardLimitQuick
	}

	log.Debug().Str("station", station).Int("limit", limit).Str("tier", string(tier)).Msg("Fetching transfer board")

	board, err := dataaggregator.Lookup[*ctdf.Stationboard](ctx, b.aggregator, ctdf.QueryStationboard{
		Station: station,
		Limit:   limit,
	})
	if err != nil {
		return nil, fmt.Errorf("%s board: %w", station, err)
	}

	if tier == TierFull {
		result.transferBoard = board.Stationboard
		if result.transferBoard == nil {
			result.transferBoard = []*ctdf.Journey{}
		}
	}

	return board.Stationboard, nil
}

func withConnections(journey *ctdf.Journey, route ctdf.Route, transferBoard []*ctdf.Journey) *ctdf.JourneyWithConnection {
	transferStop := journey.FindStop(route.Transfer)

	entry := &ctdf.JourneyWithConnection{
		Journey:                   *journey,
		TransferArrival:           transferStop.Arrival,
		TransferPlatform:          transferStop.Platform,
		TransferPrognosisPlatform: transferStop.Prognosis.Platform,
	}

	if len(transferBoard) == 0 {
		return entry
	}

	arrival, ok := ctdf.ParseTimePointer(transferStop.Arrival)
	if !ok {
		return entry
	}

	if found := connections.Find(arrival, route.Destination, transferBoard); len(found) > 0 {
		entry.Connections = found
	}

	return entry
}

// refreshInbound plans the whole trip with the route planner instead of using boards
func (b *Board) refreshInbound(ctx context.Context, direction ctdf.Direction, tier Tier) (*refreshResult, error) {
	route := direction.Route()

	station, ok := ctdf.BoardStation(route.Origin)
	if !ok {
		station = ctdf.ConnectionEndpoint(route.Origin)
	}

	if tier == TierQuick {
		if cached, ok := b.cache.Route(ctx, direction); ok {
			log.Debug().Msg("Quick refresh using cached route")
			return &refreshResult{journeys: cached, station: &station}, nil
		}
	}

	planned, err := dataaggregator.Lookup[*ctdf.ConnectionsResult](ctx, b.aggregator, ctdf.QueryConnections{
		From:  route.Origin,
		To:    route.Destination,
		Via:   []string{route.Transfer},
		Limit: RouteLimit,
	})
	if err != nil {
		return nil, fmt.Errorf("%s to %s connections: %w", route.Origin, route.Destination, err)
	}

	journeys := []*ctdf.JourneyWithConnection{}
	for _, itinerary := range planned.Connections {
		if journey, ok := connections.FromItinerary(itinerary); ok {
			journeys = append(journeys, journey)
		}
	}

	return &refreshResult{
		journeys: journeys,
		station:  &station,
		route:    journeys,
	}, nil
}
