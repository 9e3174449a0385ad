package xerrors

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Error is the canonical error value returned by every classifier, carrying
// enough context for the transport metrics pipeline and for structured
// logging, without callers needing to parse venue-specific payloads.
type Error struct {
	Kind          Kind
	Category      Category
	Venue         string
	HTTPStatus    int
	VenueCode     string
	Message       string
	RetryAfter    time.Duration // set only for KindRateLimit when the venue supplied one
	CorrelationID string
	Timestamp     time.Time
	wrapped       error
}

// New builds an Error, assigning a fresh correlation ID the way
// UnifiedExchangeRestError._generate_correlation_id does in the original
// implementation.
func New(venue string, kind Kind, httpStatus int, venueCode, message string) *Error {
	return &Error{
		Kind:          kind,
		Category:      CategoryOf(kind),
		Venue:         venue,
		HTTPStatus:    httpStatus,
		VenueCode:     venueCode,
		Message:       message,
		CorrelationID: fmt.Sprintf("%s_%d_%s", venue, time.Now().UnixMilli(), uuid.NewString()[:8]),
		Timestamp:     time.Now(),
	}
}

func (e *Error) Error() string {
	return fmt.Sprintf("[%s] %s/%s: %s (status=%d code=%s)",
		e.CorrelationID, e.Venue, e.Kind, e.Message, e.HTTPStatus, e.VenueCode)
}

// Unwrap supports errors.Is/As against the underlying transport error, if any.
func (e *Error) Unwrap() error { return e.wrapped }

// WithWrapped attaches an underlying cause (e.g. a net.Error) and returns e.
func (e *Error) WithWrapped(cause error) *Error {
	e.wrapped = cause
	return e
}

// Retryable reports whether this error should be retried per the matrix in
// spec §4.2.
func (e *Error) Retryable() bool {
	return Retryable(e.Kind)
}
