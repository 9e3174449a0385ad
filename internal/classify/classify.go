// Package classify implements the per-venue error classifiers from spec
// §4.2: parse a venue's JSON error envelope and map it to a canonical
// xerrors.Kind, falling back to HTTP status alone when the body does not
// decode as JSON.
package classify

import "github.com/kvantic-labs/xvenue/internal/xerrors"

// Classifier maps a venue's raw HTTP response into a canonical error.
type Classifier interface {
	// Classify returns nil if status/body represent success (caller should
	// not invoke this for 2xx responses in the first place, but a well
	// behaved classifier is defensive regardless).
	Classify(httpStatus int, body []byte) *xerrors.Error
}

// classifyByStatusOnly is the shared fallback used by every venue classifier
// when the response body isn't decodable JSON, per spec §4.2.
func classifyByStatusOnly(venue string, httpStatus int) *xerrors.Error {
	switch {
	case httpStatus == 429:
		return xerrors.New(venue, xerrors.KindRateLimit, httpStatus, "", "rate limited (no decodable body)")
	case httpStatus == 401 || httpStatus == 403:
		return xerrors.New(venue, xerrors.KindInvalidCredentials, httpStatus, "", "authentication rejected (no decodable body)")
	case httpStatus == 404:
		return xerrors.New(venue, xerrors.KindNotFound, httpStatus, "", "not found (no decodable body)")
	case httpStatus == 405:
		return xerrors.New(venue, xerrors.KindMethodNotAllowed, httpStatus, "", "method not allowed (no decodable body)")
	case httpStatus == 503:
		return xerrors.New(venue, xerrors.KindServiceUnavailable, httpStatus, "", "service unavailable (no decodable body)")
	case httpStatus >= 500:
		return xerrors.New(venue, xerrors.KindServerError, httpStatus, "", "server error (no decodable body)")
	case httpStatus >= 400:
		return xerrors.New(venue, xerrors.KindInvalidParameter, httpStatus, "", "client error (no decodable body)")
	default:
		return xerrors.New(venue, xerrors.KindUnknown, httpStatus, "", "unclassified response")
	}
}
