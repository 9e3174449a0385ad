// Package venueauth implements the per-venue request authenticators from
// spec §4.4. Each authenticator generates a fresh timestamp immediately
// before signing — never cached across retries — and returns the headers,
// query parameters, and body augmentation the transport should apply to the
// outbound request. Grounded on the AuthStrategy ABC in
// _examples/original_source/src/infrastructure/networking/http/strategies/auth.py
// and on the Gate.io HMAC-SHA512 signer in
// _examples/other_examples/0494e4ca_svyatogor45-abitrage__internal-exchange-gate.go.go.
package venueauth

import "net/http"

// SignedRequest is the augmentation an Authenticator applies to an outbound
// REST call.
type SignedRequest struct {
	Headers http.Header
	Query   map[string]string // merged into the final query string, signature included
	Body    []byte            // exact bytes that were hashed/signed; transport must send these verbatim
}

// Authenticator produces headers/params/body for one outbound request. A
// fresh timestamp is generated inside Sign on every call; implementations
// must never reuse a timestamp across retries.
type Authenticator interface {
	// Sign augments the given method/path/query/body with venue-specific
	// authentication. body may be nil for GET/DELETE requests without a
	// payload.
	Sign(method, path, rawQuery string, body []byte) (SignedRequest, error)

	// RequiresAuth reports whether the given endpoint needs signing at all
	// (public endpoints bypass the authenticator entirely).
	RequiresAuth(endpoint string) bool

	// RefreshTimestamp is invoked by the retrier after a requestExpired
	// (RecvWindow) error; the default behavior nudges the clock-skew offset
	// used by Sign. It is explicit because venues differ in clock tolerance.
	RefreshTimestamp()
}
