package api

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/travigo/pendler/pkg/ctdf"
	"github.com/travigo/pendler/pkg/dataaggregator"
	"github.com/travigo/pendler/pkg/dataaggregator/source/transportapi"
	"github.com/travigo/pendler/pkg/departureboard"
)

type fakeBoard struct {
	state departureboard.State
}

func (f *fakeBoard) State() departureboard.State {
	return f.state
}

func (f *fakeBoard) Journey(index int) (*ctdf.JourneyWithConnection, bool) {
	if index < 0 || index >= len(f.state.Journeys) {
		return nil, false
	}
	return f.state.Journeys[index], true
}

type fakeControl struct {
	direction ctdf.Direction
	active    bool
}

func (f *fakeControl) ToggleDirection() ctdf.Direction {
	f.direction = f.direction.Opposite()
	return f.direction
}

func (f *fakeControl) SetActive(active bool) error {
	f.active = active
	return nil
}

func (f *fakeControl) Active() bool {
	return f.active
}

func testState() departureboard.State {
	muhen, _ := ctdf.BoardStation(ctdf.StationMuhen)

	departure := &ctdf.Stop{
		Station:   ctdf.Station{Name: ctdf.StationMuhen, Coordinate: ctdf.NewCoordinate(47.0, 8.0)},
		Departure: ctdf.StringPointer("2024-03-01T10:00:00+0100"),
		Delay:     2,
	}
	arrival := &ctdf.Stop{
		Station: ctdf.Station{Name: ctdf.StationAarau, Coordinate: ctdf.NewCoordinate(47.2, 8.2)},
		Arrival: ctdf.StringPointer("2024-03-01T10:10:00+0100"),
	}

	return departureboard.State{
		Journeys: []*ctdf.JourneyWithConnection{
			{
				Journey: ctdf.Journey{
					Stop:     *departure,
					Category: "S",
					Number:   "14",
					To:       ctdf.StationAarau,
					PassList: []*ctdf.Stop{departure, arrival},
				},
				TransferArrival: arrival.Arrival,
			},
		},
		Station:    &muhen,
		LastUpdate: time.Date(2024, 3, 1, 8, 49, 0, 0, time.UTC),
		Direction:  ctdf.DirectionToZurich,
	}
}

type testServer struct {
	control *fakeControl
	test    func(req *http.Request) (*http.Response, error)
}

func newTestApp(t *testing.T, upstream http.HandlerFunc) *testServer {
	t.Helper()

	aggregator := &dataaggregator.Aggregator{}
	if upstream != nil {
		server := httptest.NewServer(upstream)
		t.Cleanup(server.Close)

		aggregator.RegisterSource(transportapi.Source{BaseURL: server.URL, Client: server.Client()})
	}

	control := &fakeControl{direction: ctdf.DirectionToZurich, active: true}

	app := NewApp(Dependencies{
		Board:      &fakeBoard{state: testState()},
		Control:    control,
		Aggregator: aggregator,
		Now: func() time.Time {
			return time.Date(2024, 3, 1, 8, 50, 0, 0, time.UTC)
		},
	})

	return &testServer{
		control: control,
		test: func(req *http.Request) (*http.Response, error) {
			return app.Test(req, -1)
		},
	}
}

func (s *testServer) do(t *testing.T, method string, target string) (int, map[string]any) {
	t.Helper()

	resp, err := s.test(httptest.NewRequest(method, target, nil))
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	decoded := map[string]any{}
	if len(body) > 0 {
		require.NoError(t, json.Unmarshal(body, &decoded), string(body))
	}

	return resp.StatusCode, decoded
}

func TestVersion(t *testing.T) {
	server := newTestApp(t, nil)

	status, body := server.do(t, http.MethodGet, "/core/version")
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "v1.0", body["version"])
}

func TestGetBoard(t *testing.T) {
	server := newTestApp(t, nil)

	status, body := server.do(t, http.MethodGet, "/core/board")
	require.Equal(t, http.StatusOK, status)

	assert.Equal(t, "toZurich", body["direction"])
	assert.Equal(t, false, body["loading"])
	assert.Nil(t, body["error"])

	station := body["station"].(map[string]any)
	assert.Equal(t, "8502195", station["id"])

	journeys := body["journeys"].([]any)
	require.Len(t, journeys, 1)
	journey := journeys[0].(map[string]any)
	assert.Equal(t, "S", journey["category"])
	assert.Equal(t, "2024-03-01T10:10:00+0100", journey["aarauArrival"])
	assert.NotContains(t, journey, "passList")

	status, body = server.do(t, http.MethodGet, "/core/board?detailed=true")
	require.Equal(t, http.StatusOK, status)

	journey = body["journeys"].([]any)[0].(map[string]any)
	assert.Len(t, journey["passList"], 2)
}

func TestBoardControls(t *testing.T) {
	server := newTestApp(t, nil)

	status, body := server.do(t, http.MethodPost, "/core/board/direction")
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "toMuhen", body["direction"])

	status, body = server.do(t, http.MethodPost, "/core/board/visibility?active=false")
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, false, body["active"])
	assert.False(t, server.control.active)

	status, _ = server.do(t, http.MethodPost, "/core/board/visibility?active=sometimes")
	assert.Equal(t, http.StatusBadRequest, status)
	assert.False(t, server.control.active)
}

func TestGetJourney(t *testing.T) {
	server := newTestApp(t, nil)

	status, body := server.do(t, http.MethodGet, "/core/board/journeys/0")
	require.Equal(t, http.StatusOK, status)

	assert.Equal(t, float64(10), body["minutesUntil"])
	assert.Equal(t, "Minor", body["delayStatus"])
	assert.Equal(t, false, body["isRunning"])

	journey := body["journey"].(map[string]any)
	assert.Equal(t, "14", journey["number"])
	assert.Len(t, journey["passList"], 2)

	status, _ = server.do(t, http.MethodGet, "/core/board/journeys/3")
	assert.Equal(t, http.StatusNotFound, status)

	status, _ = server.do(t, http.MethodGet, "/core/board/journeys/first")
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestGetJourneyPosition(t *testing.T) {
	server := newTestApp(t, nil)

	status, body := server.do(t, http.MethodGet, "/core/board/journeys/0/position?at=2024-03-01T09:05:00Z")
	require.Equal(t, http.StatusOK, status)

	assert.InDelta(t, 0.5, body["progress"], 0.0001)
	assert.InDelta(t, 47.1, body["lat"], 0.0001)
	assert.InDelta(t, 8.1, body["lon"], 0.0001)
	assert.Equal(t, ctdf.StationMuhen, body["currentStop"])
	assert.Equal(t, ctdf.StationAarau, body["nextStop"])
	assert.Equal(t, true, body["isMoving"])

	// Before departure it waits at the first stop
	status, body = server.do(t, http.MethodGet, "/core/board/journeys/0/position")
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, false, body["isMoving"])
	assert.Equal(t, float64(0), body["progress"])

	status, _ = server.do(t, http.MethodGet, "/core/board/journeys/0/position?at=yesterday")
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestGetStationboard(t *testing.T) {
	server := newTestApp(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/stationboard", r.URL.Path)
		assert.Equal(t, "Bern", r.URL.Query().Get("station"))
		assert.Equal(t, "5", r.URL.Query().Get("limit"))

		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{
			"station": {"id": "8507000", "name": "Bern"},
			"stationboard": [
				{"stop": {"departure": "2024-03-01T10:00:00+0100"}, "category": "IC", "number": "8", "to": "Brig", "passList": []}
			]
		}`)
	})

	status, body := server.do(t, http.MethodGet, "/core/stationboard?station=Bern&limit=5")
	require.Equal(t, http.StatusOK, status)

	assert.Equal(t, "Bern", body["station"].(map[string]any)["name"])
	journeys := body["stationboard"].([]any)
	require.Len(t, journeys, 1)
	assert.Equal(t, "Brig", journeys[0].(map[string]any)["to"])

	status, _ = server.do(t, http.MethodGet, "/core/stationboard")
	assert.Equal(t, http.StatusBadRequest, status)

	status, _ = server.do(t, http.MethodGet, "/core/stationboard?station=Bern&datetime=noon")
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestGetStationboardUpstreamFailure(t *testing.T) {
	server := newTestApp(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	})

	status, body := server.do(t, http.MethodGet, "/core/stationboard?station=Bern")
	assert.Equal(t, http.StatusBadGateway, status)
	assert.Contains(t, body["error"], "503")
}

func TestGetStationboardWithoutSources(t *testing.T) {
	server := newTestApp(t, nil)

	status, _ := server.do(t, http.MethodGet, "/core/stationboard?station=Bern")
	assert.Equal(t, http.StatusNotFound, status)
}

func TestGetConnections(t *testing.T) {
	server := newTestApp(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/connections", r.URL.Path)
		assert.Equal(t, []string{"Olten", "Lenzburg"}, r.URL.Query()["via[]"])
		assert.Equal(t, "14:05", r.URL.Query().Get("time"))

		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{
			"connections": [
				{"duration": "00d00:27:00", "transfers": 0, "products": ["IR 27"]},
				{"duration": "00d00:41:00", "transfers": 1, "products": ["S 14", "IR 36"]}
			],
			"from": {"name": "Aarau"},
			"to": {"name": "Zürich HB"}
		}`)
	})

	status, body := server.do(t, http.MethodGet, "/core/connections?from=Aarau&to=Z%C3%BCrich%20HB&via=Olten%7CLenzburg&time=14:05&directOnly=true")
	require.Equal(t, http.StatusOK, status)

	connections := body["connections"].([]any)
	require.Len(t, connections, 1)
	assert.Equal(t, "00d00:27:00", connections[0].(map[string]any)["duration"])

	status, _ = server.do(t, http.MethodGet, "/core/connections?from=Aarau")
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestUnknownRoute(t *testing.T) {
	server := newTestApp(t, nil)

	resp, err := server.test(httptest.NewRequest(http.MethodGet, "/core/nothing", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}
