package cli

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iir20/amar-dokan-pos-system/internal/connectivity"
	"github.com/iir20/amar-dokan-pos-system/internal/metrics"
	"github.com/iir20/amar-dokan-pos-system/internal/model"
	"github.com/iir20/amar-dokan-pos-system/internal/queue"
	tu "github.com/iir20/amar-dokan-pos-system/internal/testutil"
)

func newRouterApp(t *testing.T) *App {
	t.Helper()
	st := tu.OpenStore(t)
	return &App{
		Logger:  slog.Default(),
		Metrics: metrics.New(),
		Store:   st,
		Queue:   queue.New(st),
		Monitor: connectivity.New(true),
	}
}

func serveGet(t *testing.T, h http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func TestDaemonRouter_Health(t *testing.T) {
	app := newRouterApp(t)
	m, err := model.NewMutation(model.NewFixedGenerator("k1"), model.CollectionExpenses, model.OpDelete,
		model.DeletePayload{ID: "e1"})
	require.NoError(t, err)
	_, err = app.Queue.Enqueue(context.Background(), m)
	require.NoError(t, err)

	router := app.daemonRouter()

	rec := serveGet(t, router, "/healthz")
	require.Equal(t, http.StatusOK, rec.Code)
	var status healthStatus
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &status))
	assert.Equal(t, healthStatus{Store: "ok", Online: true, Pending: 1}, status)

	require.NoError(t, app.Store.Close())
	rec = serveGet(t, router, "/healthz")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), `"store":"unavailable"`)
}

func TestDaemonRouter_Metrics(t *testing.T) {
	app := newRouterApp(t)
	app.Metrics.SetQueueDepth(3)

	rec := serveGet(t, app.daemonRouter(), "/metrics")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "dokan_sync_queue_depth 3")
}
