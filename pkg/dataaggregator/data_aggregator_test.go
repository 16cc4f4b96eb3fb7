package dataaggregator_test

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/travigo/pendler/pkg/ctdf"
	"github.com/travigo/pendler/pkg/dataaggregator"
	"github.com/travigo/pendler/pkg/dataaggregator/source"
	"github.com/travigo/pendler/pkg/dataaggregator/source/ojp"
	"github.com/travigo/pendler/pkg/dataaggregator/source/transportapi"
)

const aarauStopEvents = `<?xml version="1.0" encoding="UTF-8"?>
<OJP xmlns="http://www.vdv.de/ojp" xmlns:siri="http://www.siri.org.uk/siri" version="2.0">
  <OJPResponse>
    <siri:ServiceDelivery>
      <OJPStopEventDelivery>
        <StopEventResult>
          <StopEvent>
            <ThisCall>
              <CallAtStop>
                <siri:StopPointRef>8502113</siri:StopPointRef>
                <StopPointName><Text>Aarau</Text></StopPointName>
                <ServiceDeparture><TimetabledTime>2024-03-01T09:24:00Z</TimetabledTime></ServiceDeparture>
              </CallAtStop>
            </ThisCall>
            <Service>
              <JourneyRef>ch:1:sjyid:100001:2700-001</JourneyRef>
              <PublishedLineName><Text>IR27</Text></PublishedLineName>
              <DestinationText><Text>Zürich HB</Text></DestinationText>
            </Service>
          </StopEvent>
        </StopEventResult>
      </OJPStopEventDelivery>
    </siri:ServiceDelivery>
  </OJPResponse>
</OJP>`

type upstreams struct {
	aggregator *dataaggregator.Aggregator

	ojpHits          atomic.Int32
	transportAPIHits atomic.Int32
	ojpStatus        int
}

// newUpstreams registers OJP ahead of transport.opendata.ch, the same order the board runs with
func newUpstreams(t *testing.T, withTransportAPI bool) *upstreams {
	t.Helper()

	u := &upstreams{
		aggregator: &dataaggregator.Aggregator{},
		ojpStatus:  http.StatusOK,
	}

	ojpServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		u.ojpHits.Add(1)
		w.WriteHeader(u.ojpStatus)
		io.WriteString(w, aarauStopEvents)
	}))
	t.Cleanup(ojpServer.Close)

	ojpSource, err := ojp.NewSource(ojpServer.URL, "secret", nil)
	require.NoError(t, err)
	ojpSource.Client = ojpServer.Client()
	u.aggregator.RegisterSource(ojpSource)

	if withTransportAPI {
		transportAPIServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			u.transportAPIHits.Add(1)
			assert.Equal(t, "/stationboard", r.URL.Path)

			w.Header().Set("Content-Type", "application/json")
			io.WriteString(w, `{
				"station": {"id": "8500218", "name": "Olten"},
				"stationboard": [
					{"stop": {"departure": "2024-03-01T10:00:00+0100"}, "category": "IC", "number": "5", "to": "Zürich HB", "passList": []}
				]
			}`)
		}))
		t.Cleanup(transportAPIServer.Close)

		u.aggregator.RegisterSource(transportapi.Source{BaseURL: transportAPIServer.URL, Client: transportAPIServer.Client()})
	}

	return u
}

func TestLookupFallsThroughUnsupportedSource(t *testing.T) {
	u := newUpstreams(t, true)

	board, err := dataaggregator.Lookup[*ctdf.Stationboard](context.Background(), u.aggregator, ctdf.QueryStationboard{Station: "Olten"})
	require.NoError(t, err)

	assert.Equal(t, "Olten", board.Station.Name)
	require.Len(t, board.Stationboard, 1)
	assert.Equal(t, "IC 5", board.Stationboard[0].LineLabel())

	assert.Equal(t, int32(0), u.ojpHits.Load())
	assert.Equal(t, int32(1), u.transportAPIHits.Load())
}

func TestLookupUsesFirstSupportingSource(t *testing.T) {
	u := newUpstreams(t, true)

	board, err := dataaggregator.Lookup[*ctdf.Stationboard](context.Background(), u.aggregator, ctdf.QueryStationboard{Station: ctdf.StationAarau})
	require.NoError(t, err)

	require.Len(t, board.Stationboard, 1)
	assert.Equal(t, "IR 27", board.Stationboard[0].LineLabel())

	assert.Equal(t, int32(1), u.ojpHits.Load())
	assert.Equal(t, int32(0), u.transportAPIHits.Load())
}

func TestLookupReturnsUpstreamFailure(t *testing.T) {
	u := newUpstreams(t, true)
	u.ojpStatus = http.StatusInternalServerError

	_, err := dataaggregator.Lookup[*ctdf.Stationboard](context.Background(), u.aggregator, ctdf.QueryStationboard{Station: ctdf.StationAarau})

	var transportError *source.TransportError
	require.True(t, errors.As(err, &transportError))
	assert.Equal(t, http.StatusInternalServerError, transportError.StatusCode)
	assert.Equal(t, int32(0), u.transportAPIHits.Load())
}

func TestLookupWithoutMatchingSource(t *testing.T) {
	u := newUpstreams(t, false)

	connections, err := dataaggregator.Lookup[*ctdf.ConnectionsResult](context.Background(), u.aggregator, ctdf.QueryConnections{
		From: ctdf.StationZurichHB,
		To:   ctdf.StationMuhen,
	})
	assert.Nil(t, connections)
	assert.ErrorIs(t, err, dataaggregator.ErrNoMatchingSource)
	assert.EqualError(t, err, "failed to find a matching data source for type")

	_, err = dataaggregator.Lookup[*ctdf.Stationboard](context.Background(), &dataaggregator.Aggregator{}, ctdf.QueryStationboard{Station: "Olten"})
	assert.ErrorIs(t, err, dataaggregator.ErrNoMatchingSource)
}

func TestLookupReportsLastUnsupportedReason(t *testing.T) {
	u := newUpstreams(t, false)

	board, err := dataaggregator.Lookup[*ctdf.Stationboard](context.Background(), u.aggregator, ctdf.QueryStationboard{Station: "Olten"})
	assert.Nil(t, board)
	assert.True(t, source.IsUnsupported(err))
	assert.Equal(t, int32(0), u.ojpHits.Load())
}
