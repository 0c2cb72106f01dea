package remote

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iir20/amar-dokan-pos-system/internal/model"
)

func newMutation(t *testing.T, key string) model.Mutation {
	t.Helper()
	m, err := model.NewMutation(model.NewFixedGenerator(key),
		model.CollectionExpenses, model.OpDelete, model.DeletePayload{ID: "e1"})
	require.NoError(t, err)
	return m
}

func newStubServer(t *testing.T) (*Stub, *HTTPDeliverer) {
	t.Helper()
	stub := NewStub(nil)
	srv := httptest.NewServer(stub.Handler())
	t.Cleanup(srv.Close)
	return stub, NewHTTPDeliverer(srv.URL+"/", 5*time.Second)
}

func TestHTTPDeliverer_Deliver(t *testing.T) {
	stub, d := newStubServer(t)
	ctx := context.Background()

	require.NoError(t, d.Deliver(ctx, newMutation(t, "k1")))

	applied := stub.Applied()
	require.Len(t, applied, 1)
	assert.Equal(t, "k1", applied[0].IdempotencyKey)
	assert.Equal(t, model.CollectionExpenses, applied[0].Collection)
	assert.JSONEq(t, `{"id":"e1"}`, string(applied[0].Payload))
}

func TestHTTPDeliverer_DuplicateIsConfirmed(t *testing.T) {
	stub, d := newStubServer(t)
	ctx := context.Background()
	m := newMutation(t, "k1")

	require.NoError(t, d.Deliver(ctx, m))
	require.NoError(t, d.Deliver(ctx, m))

	assert.Len(t, stub.Applied(), 1)
	assert.Equal(t, 2, stub.Received())
}

func TestHTTPDeliverer_FailingRemote(t *testing.T) {
	stub, d := newStubServer(t)
	stub.SetFailing(true)
	ctx := context.Background()

	err := d.Deliver(ctx, newMutation(t, "k1"))
	require.Error(t, err)
	assert.True(t, model.IsRemoteDelivery(err))
	assert.Contains(t, err.Error(), "HTTP 503")
	assert.True(t, model.IsRemoteDelivery(d.Ping(ctx)))

	stub.SetFailing(false)
	assert.NoError(t, d.Ping(ctx))
	assert.Empty(t, stub.Applied())
}

func TestHTTPDeliverer_RejectsMalformedMutation(t *testing.T) {
	_, d := newStubServer(t)

	m := newMutation(t, "k1")
	m.Operation = "merge"
	err := d.Deliver(context.Background(), m)
	assert.True(t, model.IsRemoteDelivery(err))
	assert.Contains(t, err.Error(), "HTTP 422")
}

func TestHTTPDeliverer_Timeout(t *testing.T) {
	block := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-block:
		case <-r.Context().Done():
		}
	}))
	t.Cleanup(func() {
		close(block)
		srv.Close()
	})
	d := NewHTTPDeliverer(srv.URL, time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	start := time.Now()
	err := d.Deliver(ctx, newMutation(t, "k1"))
	assert.True(t, model.IsRemoteDelivery(err))
	assert.Less(t, time.Since(start), 5*time.Second)
}

func TestHTTPDeliverer_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	d := NewHTTPDeliverer(url, time.Second)
	assert.True(t, model.IsRemoteDelivery(d.Deliver(context.Background(), newMutation(t, "k1"))))
	assert.True(t, model.IsRemoteDelivery(d.Ping(context.Background())))
}

func TestStub_RequiresJSON(t *testing.T) {
	stub := NewStub(nil)

	req := httptest.NewRequest(http.MethodPost, MutationsPath, strings.NewReader("hello"))
	req.Header.Set("Content-Type", "text/plain")
	rec := httptest.NewRecorder()
	stub.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnsupportedMediaType, rec.Code)
}
