package client

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vladislavdragonenkov/storefront/internal/domain"
)

func TestCartClientFetch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/cart", r.URL.Path)
		assert.Equal(t, "Bearer user-token", r.Header.Get("Authorization"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"user":"alice@example.com","items":{"p2":1,"p1":3}}`))
	}))
	defer srv.Close()

	client := NewCartClient(srv.URL, nil)
	snapshot, err := client.Fetch(context.Background(), "user-token")
	require.NoError(t, err)

	assert.Equal(t, "alice@example.com", snapshot.Identity)
	require.Len(t, snapshot.Lines, 2)
	// Порядок детерминированный: сортировка по product_id.
	assert.Equal(t, domain.CartLine{ProductID: "p1", Qty: 3}, snapshot.Lines[0])
	assert.Equal(t, domain.CartLine{ProductID: "p2", Qty: 1}, snapshot.Lines[1])
}

func TestCartClientFetchUpstreamDown(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	client := NewCartClient(srv.URL, nil)
	_, err := client.Fetch(context.Background(), "user-token")
	require.ErrorIs(t, err, domain.ErrUpstreamUnavailable)

	detail, _ := domain.DetailOf(err)
	assert.Equal(t, "cart unavailable", detail)
}

func TestCartClientClear(t *testing.T) {
	cleared := false
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/cart/clear", r.URL.Path)
		cleared = true
		_, _ = w.Write([]byte(`{"status":"cleared"}`))
	}))
	defer srv.Close()

	client := NewCartClient(srv.URL, nil)
	require.NoError(t, client.Clear(context.Background(), "user-token"))
	assert.True(t, cleared)
}

func TestCartClientMirrorOrder(t *testing.T) {
	var received []byte
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/cart/orders", r.URL.Path)
		received, _ = io.ReadAll(r.Body)
		w.WriteHeader(http.StatusCreated)
	}))
	defer srv.Close()

	client := NewCartClient(srv.URL, nil)
	require.NoError(t, client.MirrorOrder(context.Background(), "user-token", []byte(`{"id":"o1"}`)))
	assert.JSONEq(t, `{"id":"o1"}`, string(received))
}
