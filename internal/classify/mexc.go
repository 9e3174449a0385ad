package classify

import (
	"encoding/json"
	"strconv"

	"github.com/kvantic-labs/xvenue/internal/xerrors"
)

// mexcErrorEnvelope matches MEXC's `{"code": ..., "msg": "..."}` error body.
type mexcErrorEnvelope struct {
	Code int    `json:"code"`
	Msg   string `json:"msg"`
}

// MEXCClassifier maps MEXC's numeric error codes to canonical kinds.
type MEXCClassifier struct{}

func NewMEXCClassifier() *MEXCClassifier { return &MEXCClassifier{} }

// mexcCodeKind is the code -> Kind table for the MEXC spot REST error
// envelope, covering the families enumerated in spec §4.2.
var mexcCodeKind = map[int]xerrors.Kind{
	-1002: xerrors.KindInvalidCredentials,
	-2014: xerrors.KindInvalidKey,
	-2015: xerrors.KindIPNotWhitelisted,
	-1021: xerrors.KindRequestExpired, // timestamp outside recvWindow
	-1022: xerrors.KindSignatureMismatch,
	-1100: xerrors.KindInvalidParameter,
	-1121: xerrors.KindInvalidSymbol,
	-2013: xerrors.KindOrderNotFound,
	-2011: xerrors.KindCancelFailed,
	-1013: xerrors.KindOrderSizeError,
	-2010: xerrors.KindInsufficientBalance,
	-1003: xerrors.KindRateLimit,
}

func (c *MEXCClassifier) Classify(httpStatus int, body []byte) *xerrors.Error {
	if httpStatus < 400 {
		return nil
	}
	var env mexcErrorEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		return classifyByStatusOnly("mexc", httpStatus)
	}
	kind, ok := mexcCodeKind[env.Code]
	if !ok {
		kind = fallbackMEXCKind(httpStatus)
	}
	venueCode := ""
	if env.Code != 0 {
		venueCode = strconv.Itoa(env.Code)
	}
	return xerrors.New("mexc", kind, httpStatus, venueCode, env.Msg)
}

func fallbackMEXCKind(httpStatus int) xerrors.Kind {
	switch {
	case httpStatus == 429:
		return xerrors.KindRateLimit
	case httpStatus == 418:
		return xerrors.KindRateLimit // MEXC IP-ban-style throttle code
	case httpStatus >= 500:
		return xerrors.KindServerError
	default:
		return xerrors.KindInvalidParameter
	}
}
