package transport

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"

	"github.com/kvantic-labs/xvenue/internal/classify"
	"github.com/kvantic-labs/xvenue/internal/venueauth"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	cfg := Config{Venue: "mexc", BaseURL: srv.URL, MaxConcurrent: 4}
	c := New(cfg, classify.NewMEXCClassifier(), NewMetrics(nil), zerolog.Nop())
	return c, srv
}

func TestClient_Do_Success(t *testing.T) {
	c, srv := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"ok":true}`))
	})
	defer srv.Close()

	resp, xerr, err := c.Do(context.Background(), "ping", http.MethodGet, "/api/v3/ping", venueauth.SignedRequest{})
	if err != nil || xerr != nil {
		t.Fatalf("unexpected error: xerr=%v err=%v", xerr, err)
	}
	if resp.StatusCode != 200 {
		t.Errorf("StatusCode = %d, want 200", resp.StatusCode)
	}
}

func TestClient_Do_ClassifiesClientError(t *testing.T) {
	c, srv := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"code":-1121,"msg":"Invalid symbol."}`))
	})
	defer srv.Close()

	resp, xerr, err := c.Do(context.Background(), "order", http.MethodPost, "/api/v3/order", venueauth.SignedRequest{})
	if err != nil {
		t.Fatalf("unexpected transport error: %v", err)
	}
	if xerr == nil {
		t.Fatal("expected classified error")
	}
	if xerr.VenueCode != "-1121" {
		t.Errorf("VenueCode = %s, want -1121", xerr.VenueCode)
	}
	if resp.StatusCode != 400 {
		t.Errorf("StatusCode = %d, want 400", resp.StatusCode)
	}
}

func TestClient_Do_QueryAndHeadersForwarded(t *testing.T) {
	var gotQuery, gotHeader string
	c, srv := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		gotHeader = r.Header.Get("X-MEXC-APIKEY")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{}`))
	})
	defer srv.Close()

	signed := venueauth.SignedRequest{
		Query: map[string]string{"symbol": "BTCUSDT"},
	}
	signed.Headers = http.Header{}
	signed.Headers.Set("X-MEXC-APIKEY", "test-key")

	_, xerr, err := c.Do(context.Background(), "order", http.MethodGet, "/api/v3/order", signed)
	if err != nil || xerr != nil {
		t.Fatalf("unexpected error: xerr=%v err=%v", xerr, err)
	}
	if gotQuery != "symbol=BTCUSDT" {
		t.Errorf("query = %q, want symbol=BTCUSDT", gotQuery)
	}
	if gotHeader != "test-key" {
		t.Errorf("header = %q, want test-key", gotHeader)
	}
}
