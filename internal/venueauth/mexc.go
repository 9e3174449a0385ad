package venueauth

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"
)

// MEXCAuthenticator signs requests per spec §4.4: HMAC-SHA256 over the
// URL-encoded, sorted concatenation of existing params, data fields, and
// {timestamp, recvWindow}; the API key goes in the X-MEXC-APIKEY header and
// the signature is appended as a `signature` query parameter. Timestamps are
// milliseconds, offset by +500ms to compensate for local clock skew.
type MEXCAuthenticator struct {
	APIKey     string
	SecretKey  string
	RecvWindow int64 // milliseconds, default 5000

	mu           sync.Mutex
	clockOffsetMs int64
}

// NewMEXCAuthenticator constructs an authenticator with the spec-mandated
// +500ms base clock-skew offset.
func NewMEXCAuthenticator(apiKey, secretKey string) *MEXCAuthenticator {
	return &MEXCAuthenticator{
		APIKey:        apiKey,
		SecretKey:     secretKey,
		RecvWindow:    5000,
		clockOffsetMs: 500,
	}
}

func (a *MEXCAuthenticator) RequiresAuth(endpoint string) bool {
	switch endpoint {
	case "/api/v3/ping", "/api/v3/time", "/api/v3/exchangeInfo",
		"/api/v3/depth", "/api/v3/trades", "/api/v3/historicalTrades",
		"/api/v3/ticker/24hr", "/api/v3/klines":
		return false
	default:
		return true
	}
}

func (a *MEXCAuthenticator) RefreshTimestamp() {
	a.mu.Lock()
	defer a.mu.Unlock()
	// Widen the skew compensation; MEXC's recvWindow rejected our prior
	// offset, so lean further forward on the next attempt.
	a.clockOffsetMs += 500
}

func (a *MEXCAuthenticator) timestampMs() int64 {
	a.mu.Lock()
	offset := a.clockOffsetMs
	a.mu.Unlock()
	return time.Now().UnixMilli() + offset
}

// Sign builds the MEXC signature. params carries any existing query
// parameters (the "data fields" of a POST are expected to already be merged
// into params by the caller, matching the spec's "existing params ∪ data
// fields ∪ {timestamp, recvWindow}" rule) — body is accepted for interface
// symmetry but MEXC signs via query string, not a JSON body, for every
// endpoint this module targets.
func (a *MEXCAuthenticator) Sign(method, path, rawQuery string, body []byte) (SignedRequest, error) {
	values, err := url.ParseQuery(rawQuery)
	if err != nil {
		return SignedRequest{}, err
	}

	ts := a.timestampMs()
	values.Set("timestamp", strconv.FormatInt(ts, 10))
	values.Set("recvWindow", strconv.FormatInt(a.RecvWindow, 10))

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
	payload := sb.String()

	mac := hmac.New(sha256.New, []byte(a.SecretKey))
	mac.Write([]byte(payload))
	signature := hex.EncodeToString(mac.Sum(nil))

	values.Set("signature", signature)

	out := make(map[string]string, len(values))
	for k := range values {
		out[k] = values.Get(k)
	}

	headers := http.Header{}
	headers.Set("X-MEXC-APIKEY", a.APIKey)

	return SignedRequest{Headers: headers, Query: out}, nil
}
