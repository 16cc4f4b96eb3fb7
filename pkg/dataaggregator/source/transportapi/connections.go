package transportapi

import (
	"context"
	"net/url"
	"strconv"

	"github.com/travigo/pendler/pkg/ctdf"
	"github.com/travigo/pendler/pkg/dataaggregator/source"
	"github.com/travigo/pendler/pkg/util"
)

type connectionsResponse struct {
	Connections *[]*ctdf.Connection `json:"connections"`
	From        *ctdf.Station       `json:"from"`
	To          *ctdf.Station       `json:"to"`
}

func (s Source) ConnectionsQuery(ctx context.Context, q ctdf.QueryConnections) (*ctdf.ConnectionsResult, error) {
	params := url.Values{}
	params.Set("from", q.From)
	params.Set("to", q.To)
	if q.Limit > 0 {
		params.Set("limit", strconv.Itoa(q.Limit))
	}
	for _, via := range util.RemoveDuplicateStrings(q.Via, []string{q.From, q.To}) {
		params.Add("via[]", via)
	}
	if q.Time != "" {
		params.Set("time", q.Time)
	}
	if q.Date != "" {
		params.Set("date", q.Date)
	}

	var response connectionsResponse
	if err := s.get(ctx, "connections", params, &response); err != nil {
		return nil, err
	}

	if response.Connections == nil {
		return nil, &source.ProtocolError{Upstream: upstreamName, Message: "response has no connections"}
	}

	connections := *response.Connections

	if q.DirectOnly {
		util.InPlaceFilter(&connections, func(connection *ctdf.Connection) bool {
			return connection != nil && connection.Transfers == 0
		})
	}

	for _, connection := range connections {
		normaliseConnection(connection)
	}

	return &ctdf.ConnectionsResult{
		Connections: connections,
		From:        response.From,
		To:          response.To,
	}, nil
}

func normaliseConnection(connection *ctdf.Connection) {
	if connection == nil {
		return
	}

	normaliseStop(connection.From)
	normaliseStop(connection.To)

	for _, section := range connection.Sections {
		if section == nil {
			continue
		}

		normaliseStop(section.Departure)
		normaliseStop(section.Arrival)

		if section.Journey != nil {
			normaliseStops(section.Journey.PassList)
		}
	}
}
