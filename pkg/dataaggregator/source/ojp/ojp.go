package ojp

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/sourcegraph/conc"
	"github.com/travigo/pendler/pkg/ctdf"
	"github.com/travigo/pendler/pkg/dataaggregator/source"
)

const DefaultEndpoint = "https://api.opentransportdata.swiss/ojp20"

const upstreamName = "OJP"

const defaultLimit = 15

// CategorySource supplies the line identities the stop event service does not carry reliably
type CategorySource interface {
	CategoryTableQuery(ctx context.Context, station string, limit int) (ctdf.CategoryTable, error)
}

type Source struct {
	Endpoint   string
	APIKey     string
	Client     *http.Client
	Categories CategorySource

	Now func() time.Time
}

func NewSource(endpoint string, apiKey string, categories CategorySource) (*Source, error) {
	if apiKey == "" {
		return nil, &source.ConfigurationError{Setting: "OJP API key"}
	}

	if endpoint == "" {
		endpoint = DefaultEndpoint
	}

	return &Source{
		Endpoint:   endpoint,
		APIKey:     apiKey,
		Client:     http.DefaultClient,
		Categories: categories,
		Now:        time.Now,
	}, nil
}

func (s *Source) GetName() string {
	return "OJP Stop Events"
}

func (s *Source) Supports() []reflect.Type {
	return []reflect.Type{
		reflect.TypeOf(ctdf.Stationboard{}),
	}
}

func (s *Source) Lookup(ctx context.Context, q any) (interface{}, error) {
	switch q := q.(type) {
	case ctdf.QueryStationboard:
		return s.StationboardQuery(ctx, q)
	default:
		return nil, source.UnsupportedSourceError{Reason: fmt.Sprintf("query type %T", q)}
	}
}

// StationboardQuery fetches the stop events of one of the known board stations together with
// the category table used to label them. Only the stop event fetch can fail the lookup.
func (s *Source) StationboardQuery(ctx context.Context, q ctdf.QueryStationboard) (*ctdf.Stationboard, error) {
	stopPlaceRef, ok := ctdf.StopPlaceRef(q.Station)
	if !ok {
		return nil, source.UnsupportedSourceError{Reason: fmt.Sprintf("no stop place ref for %s", q.Station)}
	}

	if s.APIKey == "" {
		return nil, &source.ConfigurationError{Setting: "OJP API key"}
	}

	limit := q.Limit
	if limit <= 0 {
		limit = defaultLimit
	}

	requestTime := s.now()
	if q.DateTime != nil {
		requestTime = *q.DateTime
	}

	var categories ctdf.CategoryTable
	var body []byte
	var fetchErr error

	var wg conc.WaitGroup
	wg.Go(func() {
		if s.Categories == nil {
			return
		}

		table, err := s.Categories.CategoryTableQuery(ctx, q.Station, limit*2)
		if err != nil {
			log.Warn().Err(err).Str("station", q.Station).Msg("Failed to fetch train categories")
			return
		}
		categories = table
	})
	wg.Go(func() {
		body, fetchErr = s.fetchStopEvents(ctx, stopPlaceRef, limit, requestTime)
	})
	wg.Wait()

	if fetchErr != nil {
		return nil, fetchErr
	}

	if categories == nil {
		categories = ctdf.CategoryTable{}
	}

	return ParseStopEventResponse(bytes.NewReader(body), q.Station, categories)
}

func (s *Source) fetchStopEvents(ctx context.Context, stopPlaceRef string, limit int, requestTime time.Time) ([]byte, error) {
	requestBody, err := BuildStopEventRequest(stopPlaceRef, limit, requestTime)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.Endpoint, bytes.NewReader(requestBody))
	if err != nil {
		return nil, &source.TransportError{Upstream: upstreamName, Err: err}
	}
	req.Header.Set("Content-Type", "application/xml")
	req.Header.Set("Authorization", "Bearer "+s.APIKey)

	client := s.Client
	if client == nil {
		client = http.DefaultClient
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, &source.TransportError{Upstream: upstreamName, Err: err}
	}
	defer resp.Body.Close()

	responseBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &source.TransportError{Upstream: upstreamName, Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		log.Error().Int("status", resp.StatusCode).Str("body", string(responseBody)).Msg("OJP API error")
		return nil, &source.TransportError{Upstream: upstreamName, StatusCode: resp.StatusCode}
	}

	return responseBody, nil
}

func (s *Source) now() time.Time {
	if s.Now == nil {
		return time.Now()
	}
	return s.Now()
}
