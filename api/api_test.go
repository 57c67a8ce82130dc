package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"grid-seq/sequencer"
)

func newTestServer(t *testing.T) (*httptest.Server, *sequencer.Engine) {
	t.Helper()
	engine := sequencer.NewEngine(sequencer.NewSequence(), nil)
	srv := httptest.NewServer(NewHandler(engine))
	t.Cleanup(srv.Close)
	return srv, engine
}

func getSnapshot(t *testing.T, srv *httptest.Server) sequencer.Snapshot {
	t.Helper()
	resp, err := http.Get(srv.URL + "/api/sequence")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var snap sequencer.Snapshot
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&snap))
	return snap
}

func post(t *testing.T, srv *httptest.Server, path, body string) *http.Response {
	t.Helper()
	resp, err := http.Post(srv.URL+path, "application/json", strings.NewReader(body))
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func TestSnapshotEndpoint(t *testing.T) {
	srv, engine := newTestServer(t)
	engine.ToggleNote(0, 60, 0.27)

	snap := getSnapshot(t, srv)
	assert.Equal(t, 120, snap.BPM)
	require.Len(t, snap.Tracks, sequencer.NumTracks)
	require.Len(t, snap.Tracks[0].Notes, 1)
	assert.Equal(t, 0.25, snap.Tracks[0].Notes[0].Start)
}

func TestToggleEndpoint(t *testing.T) {
	srv, engine := newTestServer(t)

	resp := post(t, srv, "/api/notes/toggle", `{"track": 1, "pitch": 64, "beat": 2.1}`)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var res struct {
		Inserted bool `json:"inserted"`
		Removed  bool `json:"removed"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&res))
	assert.True(t, res.Inserted)

	snap := engine.Snapshot()
	require.Len(t, snap.Tracks[1].Notes, 1)
	assert.Equal(t, 2.0, snap.Tracks[1].Notes[0].Start)

	resp = post(t, srv, "/api/notes/toggle", `{"track": 1, "pitch": 64, "beat": 2.0}`)
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&res))
	assert.True(t, res.Removed)
	assert.Empty(t, engine.Snapshot().Tracks[1].Notes)
}

func TestToggleRejectsBadBody(t *testing.T) {
	srv, _ := newTestServer(t)
	resp := post(t, srv, "/api/notes/toggle", `{not json`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestBPMEndpointClamps(t *testing.T) {
	srv, engine := newTestServer(t)

	post(t, srv, "/api/sequence/bpm", `{"bpm": 90}`)
	assert.Equal(t, 90, engine.Snapshot().BPM)

	// Out-of-range tempo is ignored, prior value kept.
	post(t, srv, "/api/sequence/bpm", `{"bpm": 300}`)
	assert.Equal(t, 90, engine.Snapshot().BPM)
}

func TestMuteAndClearEndpoints(t *testing.T) {
	srv, engine := newTestServer(t)
	engine.ToggleNote(2, 60, 0)

	post(t, srv, "/api/tracks/2/mute", `{"muted": true}`)
	assert.True(t, engine.Snapshot().Tracks[2].Muted)

	post(t, srv, "/api/tracks/2/clear", `{}`)
	assert.Empty(t, engine.Snapshot().Tracks[2].Notes)
}

func TestRoutingEndpoint(t *testing.T) {
	srv, engine := newTestServer(t)

	resp := post(t, srv, "/api/tracks/0/routing", `{"channel": 7, "instrument": 25, "sink": "Synth:0"}`)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	tr := engine.Snapshot().Tracks[0]
	assert.Equal(t, uint8(7), tr.Channel)
	assert.Equal(t, 25, tr.Instrument)
	assert.Equal(t, "Synth:0", tr.SinkRef)
}

func TestTransportEndpoints(t *testing.T) {
	srv, engine := newTestServer(t)

	post(t, srv, "/api/transport/start", `{}`)
	assert.True(t, engine.Playing())

	post(t, srv, "/api/transport/stop", `{}`)
	assert.False(t, engine.Playing())

	snap := getSnapshot(t, srv)
	assert.False(t, snap.Playing)
	assert.Equal(t, 0.0, snap.Position)
}
