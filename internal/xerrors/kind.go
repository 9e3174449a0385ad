// Package xerrors implements the canonical error taxonomy shared by every
// venue's error classifier and consumed by the REST retrier and strategy
// callers. It mirrors the UnifiedExchangeRestError hierarchy of the original
// implementation (coarse ErrorType bucketing for logs/metrics) layered with
// the fine-grained Kind enumeration from the unified exchange access spec.
package xerrors

// Kind is a canonical, venue-agnostic error classification.
type Kind string

const (
	// Authentication
	KindInvalidCredentials     Kind = "invalidCredentials"
	KindInvalidKey             Kind = "invalidKey"
	KindSignatureMismatch      Kind = "signatureMismatch"
	KindIPNotWhitelisted       Kind = "ipNotWhitelisted"
	KindInsufficientPermissions Kind = "insufficientPermissions"
	KindReadOnlyKey            Kind = "readOnlyKey"
	KindRequestExpired         Kind = "requestExpired"

	// Request
	KindInvalidParameter Kind = "invalidParameter"
	KindInvalidSymbol    Kind = "invalidSymbol"
	KindNotFound         Kind = "notFound"
	KindMethodNotAllowed Kind = "methodNotAllowed"

	// Trading
	KindOrderNotFound      Kind = "orderNotFound"
	KindOrderAlreadyDone   Kind = "orderAlreadyDone"
	KindCancelFailed       Kind = "cancelFailed"
	KindOrderSizeError     Kind = "orderSizeError"
	KindTradingDisabled    Kind = "tradingDisabled"
	KindTradeRestricted    Kind = "tradeRestricted"
	KindInsufficientBalance Kind = "insufficientBalance"

	// Futures-specific
	KindLeverageOutOfRange   Kind = "leverageOutOfRange"
	KindRiskLimitExceeded    Kind = "riskLimitExceeded"
	KindLiquidationImminent Kind = "liquidationImminent"
	KindPositionEmpty        Kind = "positionEmpty"
	KindPositionModeConflict Kind = "positionModeConflict"

	// Transport
	KindConnectionError Kind = "connectionError"
	KindTimeout         Kind = "timeout"

	// Throttling
	KindRateLimit Kind = "rateLimit"

	// Server
	KindServerError        Kind = "serverError"
	KindServiceUnavailable Kind = "serviceUnavailable"
	KindMaintenance        Kind = "maintenance"

	// Used when no classifier rule matched and the HTTP status itself was 2xx;
	// should not normally surface.
	KindUnknown Kind = "unknown"
)

// Category is a coarse bucket matching the original implementation's
// ErrorType enum, used for log/metric grouping independent of the precise
// Kind.
type Category string

const (
	CategoryAuthentication Category = "authentication"
	CategoryRequest        Category = "validation"
	CategoryTrading        Category = "validation"
	CategoryFutures        Category = "validation"
	CategoryTransport      Category = "connection"
	CategoryThrottling     Category = "rate_limit"
	CategoryServer         Category = "connection"
	CategoryUnknown        Category = "unknown"
)

// CategoryOf returns the coarse Category for a Kind.
func CategoryOf(k Kind) Category {
	switch k {
	case KindInvalidCredentials, KindInvalidKey, KindSignatureMismatch, KindIPNotWhitelisted,
		KindInsufficientPermissions, KindReadOnlyKey, KindRequestExpired:
		return CategoryAuthentication
	case KindInvalidParameter, KindInvalidSymbol, KindNotFound, KindMethodNotAllowed:
		return CategoryRequest
	case KindOrderNotFound, KindOrderAlreadyDone, KindCancelFailed, KindOrderSizeError,
		KindTradingDisabled, KindTradeRestricted, KindInsufficientBalance:
		return CategoryTrading
	case KindLeverageOutOfRange, KindRiskLimitExceeded, KindLiquidationImminent,
		KindPositionEmpty, KindPositionModeConflict:
		return CategoryFutures
	case KindConnectionError, KindTimeout:
		return CategoryTransport
	case KindRateLimit:
		return CategoryThrottling
	case KindServerError, KindServiceUnavailable, KindMaintenance:
		return CategoryServer
	default:
		return CategoryUnknown
	}
}

// Retryable implements the retryability matrix from spec §4.2: retry is true
// only for the kinds listed below; every other kind is terminal.
func Retryable(k Kind) bool {
	switch k {
	case KindRateLimit, KindRequestExpired,
		KindConnectionError, KindTimeout,
		KindServerError, KindServiceUnavailable, KindMaintenance:
		return true
	default:
		return false
	}
}
