package dispatcher

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPSinkDeliversPayload(t *testing.T) {
	var got atomic.Value
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		got.Store(string(body))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	s := NewHTTPSink("test", srv.URL, "/hooks/membership", 1000, 3, 1000)
	require.True(t, s.Acquire())
	require.NoError(t, s.Notify(context.Background(), []byte(`{"user_id":"user_1"}`)))
	assert.Equal(t, `{"user_id":"user_1"}`, got.Load())
}

func TestHTTPSinkNon2xxIsFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	s := NewHTTPSink("test", srv.URL, "/hooks/membership", 1000, 2, 60000)

	require.Error(t, s.Notify(context.Background(), []byte(`{}`)))
	require.Error(t, s.Notify(context.Background(), []byte(`{}`)))
	assert.False(t, s.Ready(), "breaker opens after consecutive failures")
}
