package venueauth

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"net/url"
	"sort"
	"strings"
	"testing"
)

func TestMEXCAuthenticator_Sign(t *testing.T) {
	a := NewMEXCAuthenticator("my-key", "my-secret")
	signed, err := a.Sign("POST", "/api/v3/order", "symbol=BTCUSDT&side=BUY", nil)
	if err != nil {
		t.Fatalf("Sign failed: %v", err)
	}

	if signed.Headers.Get("X-MEXC-APIKEY") != "my-key" {
		t.Errorf("X-MEXC-APIKEY = %q, want my-key", signed.Headers.Get("X-MEXC-APIKEY"))
	}
	if signed.Query["signature"] == "" {
		t.Fatal("expected a signature query param")
	}
	if signed.Query["symbol"] != "BTCUSDT" {
		t.Errorf("expected existing params to be preserved, got %v", signed.Query)
	}
	if signed.Query["timestamp"] == "" || signed.Query["recvWindow"] == "" {
		t.Error("expected timestamp and recvWindow to be injected")
	}

	// Recompute the expected signature to validate the sorted, URL-encoded
	// concatenation rule from spec §4.4.
	values := make(url.Values)
	for k, v := range signed.Query {
		if k == "signature" {
			continue
		}
		values.Set(k, v)
	}
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	var sb strings.Builder
	for i, k := range keys {
		if i > 0 {
			sb.WriteByte('&')
		}
		sb.WriteString(url.QueryEscape(k))
		sb.WriteByte('=')
		sb.WriteString(url.QueryEscape(values.Get(k)))
	}
	mac := hmac.New(sha256.New, []byte("my-secret"))
	mac.Write([]byte(sb.String()))
	want := hex.EncodeToString(mac.Sum(nil))

	if signed.Query["signature"] != want {
		t.Errorf("signature = %s, want %s", signed.Query["signature"], want)
	}
}

func TestMEXCAuthenticator_FreshTimestampAcrossRetries(t *testing.T) {
	a := NewMEXCAuthenticator("k", "s")
	first, err := a.Sign("GET", "/api/v3/account", "", nil)
	if err != nil {
		t.Fatal(err)
	}
	a.RefreshTimestamp() // simulate a requestExpired retry
	second, err := a.Sign("GET", "/api/v3/account", "", nil)
	if err != nil {
		t.Fatal(err)
	}
	if first.Query["timestamp"] == second.Query["timestamp"] && first.Query["signature"] == second.Query["signature"] {
		t.Error("expected RefreshTimestamp to change the signature on retry")
	}
}

func TestMEXCAuthenticator_RequiresAuth(t *testing.T) {
	a := NewMEXCAuthenticator("k", "s")
	if a.RequiresAuth("/api/v3/ping") {
		t.Error("ping should be public")
	}
	if !a.RequiresAuth("/api/v3/order") {
		t.Error("order placement should require auth")
	}
}
