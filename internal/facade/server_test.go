package facade

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tomtom215/vigil/internal/model"
	"github.com/tomtom215/vigil/internal/systeminterface"
)

type fakeSubmitter struct {
	lastReq model.UserRequest
	reply   systeminterface.Reply
	err     error
}

func (f *fakeSubmitter) Submit(_ context.Context, req model.UserRequest) (systeminterface.Reply, error) {
	f.lastReq = req
	return f.reply, f.err
}

func newTestServer(fake *fakeSubmitter) *Server {
	return NewServer(zerolog.Nop(), fake, NewHub(zerolog.Nop()))
}

func TestProcessEventRoute(t *testing.T) {
	fake := &fakeSubmitter{reply: systeminterface.Reply{OK: true}}
	srv := newTestServer(fake)

	body, _ := json.Marshal(processEventBody{EventID: 101, CheckScene: true, Broadcast: false})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/process-event", bytes.NewReader(body))
	w := httptest.NewRecorder()

	srv.Handler().ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, model.RequestProcessEvent, fake.lastReq.Kind)
	assert.Equal(t, model.ItemID(101), fake.lastReq.ProcessEventID)
	assert.True(t, fake.lastReq.CheckScene)

	var reply systeminterface.Reply
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &reply))
	assert.True(t, reply.OK)
}

func TestAllStopRoute(t *testing.T) {
	fake := &fakeSubmitter{reply: systeminterface.Reply{OK: true}}
	srv := newTestServer(fake)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/all-stop", nil)
	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, model.RequestAllStop, fake.lastReq.Kind)
}

func TestQueryRouteUnknownKindIsBadRequest(t *testing.T) {
	fake := &fakeSubmitter{}
	srv := newTestServer(fake)

	body, _ := json.Marshal(queryBody{Kind: "nonsense"})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/query", bytes.NewReader(body))
	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestMalformedBodyIsBadRequest(t *testing.T) {
	fake := &fakeSubmitter{}
	srv := newTestServer(fake)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/scene", bytes.NewReader([]byte("{not json")))
	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}
