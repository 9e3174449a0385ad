package classify

import (
	"encoding/json"

	"github.com/kvantic-labs/xvenue/internal/xerrors"
)

// gateioErrorEnvelope matches Gate.io's `{"label": "...", "message": "..."}`
// error body (identical shape for spot and futures).
type gateioErrorEnvelope struct {
	Label   string `json:"label"`
	Message string `json:"message"`
}

// GateioClassifier maps Gate.io's string error labels to canonical kinds.
// The same table serves both spot and futures since Gate.io reuses labels
// across markets, adding a handful of futures-only labels.
type GateioClassifier struct{}

func NewGateioClassifier() *GateioClassifier { return &GateioClassifier{} }

var gateioLabelKind = map[string]xerrors.Kind{
	"INVALID_KEY":               xerrors.KindInvalidKey,
	"INVALID_SIGNATURE":         xerrors.KindSignatureMismatch,
	"IP_FORBIDDEN":              xerrors.KindIPNotWhitelisted,
	"FORBIDDEN":                 xerrors.KindInsufficientPermissions,
	"READ_ONLY":                 xerrors.KindReadOnlyKey,
	"REQUEST_EXPIRED":           xerrors.KindRequestExpired,
	"INVALID_PARAM_VALUE":       xerrors.KindInvalidParameter,
	"INVALID_CURRENCY_PAIR":     xerrors.KindInvalidSymbol,
	"INVALID_CONTRACT":          xerrors.KindInvalidSymbol,
	"ORDER_NOT_FOUND":           xerrors.KindOrderNotFound,
	"ORDER_CLOSED":              xerrors.KindOrderAlreadyDone,
	"ORDER_CANCELLED":           xerrors.KindOrderAlreadyDone,
	"ORDER_FINISHED":            xerrors.KindOrderAlreadyDone,
	"CANCEL_FAIL":               xerrors.KindCancelFailed,
	"TOO_MANY_CURRENCY_PAIRS":   xerrors.KindOrderSizeError,
	"AMOUNT_TOO_LITTLE":         xerrors.KindOrderSizeError,
	"AMOUNT_TOO_MUCH":           xerrors.KindOrderSizeError,
	"TRADE_RESTRICTED":          xerrors.KindTradeRestricted,
	"MARGIN_BALANCE_NOT_ENOUGH": xerrors.KindInsufficientBalance,
	"BALANCE_NOT_ENOUGH":        xerrors.KindInsufficientBalance,
	"POSITION_NOT_FOUND":        xerrors.KindPositionEmpty,
	"POSITION_EMPTY":            xerrors.KindPositionEmpty,
	"RISK_LIMIT_EXCEEDED":       xerrors.KindRiskLimitExceeded,
	"LEVERAGE_TOO_HIGH":         xerrors.KindLeverageOutOfRange,
	"LEVERAGE_TOO_LOW":          xerrors.KindLeverageOutOfRange,
	"LIQUIDATE_IMMEDIATELY":     xerrors.KindLiquidationImminent,
	"DUAL_MODE_NOT_ENABLED":     xerrors.KindPositionModeConflict,
	"TOO_MANY_REQUESTS":         xerrors.KindRateLimit,
	"SERVER_ERROR":              xerrors.KindServerError,
	"SERVICE_UNAVAILABLE":       xerrors.KindServiceUnavailable,
	"MAINTENANCE":               xerrors.KindMaintenance,
}

func (c *GateioClassifier) Classify(httpStatus int, body []byte) *xerrors.Error {
	if httpStatus < 400 {
		return nil
	}
	var env gateioErrorEnvelope
	if err := json.Unmarshal(body, &env); err != nil || env.Label == "" {
		return classifyByStatusOnly("gateio", httpStatus)
	}
	kind, ok := gateioLabelKind[env.Label]
	if !ok {
		kind = fallbackGateioKind(httpStatus)
	}
	return xerrors.New("gateio", kind, httpStatus, env.Label, env.Message)
}

func fallbackGateioKind(httpStatus int) xerrors.Kind {
	switch {
	case httpStatus == 429:
		return xerrors.KindRateLimit
	case httpStatus == 503:
		return xerrors.KindServiceUnavailable
	case httpStatus >= 500:
		return xerrors.KindServerError
	default:
		return xerrors.KindInvalidParameter
	}
}
