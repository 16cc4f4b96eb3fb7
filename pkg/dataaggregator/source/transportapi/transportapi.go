package transportapi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"reflect"

	"github.com/rs/zerolog/log"
	"github.com/travigo/pendler/pkg/ctdf"
	"github.com/travigo/pendler/pkg/dataaggregator/source"
)

const DefaultBaseURL = "https://transport.opendata.ch/v1"

const upstreamName = "transport.opendata.ch"

type Source struct {
	BaseURL string
	Client  *http.Client
}

func (s Source) GetName() string {
	return "Swiss public transport API"
}

func (s Source) Supports() []reflect.Type {
	return []reflect.Type{
		reflect.TypeOf(ctdf.Stationboard{}),
		reflect.TypeOf(ctdf.ConnectionsResult{}),
	}
}

func (s Source) Lookup(ctx context.Context, q any) (interface{}, error) {
	switch q := q.(type) {
	case ctdf.QueryStationboard:
		return s.StationboardQuery(ctx, q)
	case ctdf.QueryConnections:
		return s.ConnectionsQuery(ctx, q)
	default:
		return nil, source.UnsupportedSourceError{Reason: fmt.Sprintf("query type %T", q)}
	}
}

func (s Source) baseURL() string {
	if s.BaseURL == "" {
		return DefaultBaseURL
	}
	return s.BaseURL
}

func (s Source) client() *http.Client {
	if s.Client == nil {
		return http.DefaultClient
	}
	return s.Client
}

// get performs the request and decodes the JSON body into target
func (s Source) get(ctx context.Context, path string, params url.Values, target any) error {
	endpoint := fmt.Sprintf("%s/%s?%s", s.baseURL(), path, params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return &source.TransportError{Upstream: upstreamName, Err: err}
	}
	req.Header.Set("Accept", "application/json")

	resp, err := s.client().Do(req)
	if err != nil {
		return &source.TransportError{Upstream: upstreamName, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		io.Copy(io.Discard, resp.Body)
		return &source.TransportError{Upstream: upstreamName, StatusCode: resp.StatusCode}
	}

	log.Debug().Str("path", path).Str("query", params.Encode()).Msg("Swiss public transport API request")

	if err := json.NewDecoder(resp.Body).Decode(target); err != nil {
		return &source.ProtocolError{Upstream: upstreamName, Message: "undecodable response body", Err: err}
	}

	return nil
}

// The API sends unix seconds, everything downstream works in milliseconds
func normaliseTimestamp(timestamp *int64) *int64 {
	if timestamp == nil || *timestamp == 0 {
		return timestamp
	}

	if *timestamp < 1e12 {
		milliseconds := *timestamp * 1000
		return &milliseconds
	}

	return timestamp
}

func normaliseStop(stop *ctdf.Stop) {
	if stop == nil {
		return
	}

	stop.ArrivalTimestamp = normaliseTimestamp(stop.ArrivalTimestamp)
	stop.DepartureTimestamp = normaliseTimestamp(stop.DepartureTimestamp)
}

func normaliseStops(stops []*ctdf.Stop) {
	for _, stop := range stops {
		normaliseStop(stop)
	}
}
