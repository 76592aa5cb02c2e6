package tx

import "fmt"

// Result represents a transaction apply result code.
type Result int

// Result codes, organized by class the way the engine treats them:
// tes = applied, tec = guard rejected a well-formed call, tef = engine
// failure, tem = malformed transaction. A failing code never leaves partial
// state; the apply table is only committed on TesSUCCESS.
const (
	TesSUCCESS Result = 0

	// tec codes (100-199): a guard rejected a well-formed call.
	TecINVALID_ID             Result = 100
	TecWRONG_STATUS           Result = 101
	TecNOT_STARTED            Result = 102
	TecENDED                  Result = 103
	TecNOT_ENDED              Result = 104
	TecALREADY_CLAIMED        Result = 105
	TecALREADY_WITHDRAWN      Result = 106
	TecNO_SUBSCRIPTION        Result = 107
	TecCANCELLED              Result = 108
	TecNO_PERMISSION          Result = 120
	TecNO_KYC                 Result = 121
	TecTRANSFER_NOT_ALLOWED   Result = 122
	TecORACLE_INACTIVE        Result = 140
	TecORACLE_STALE           Result = 141
	TecSUPPLY_CAP_EXCEEDED    Result = 160
	TecINSUFFICIENT_FUNDS     Result = 161
	TecINSUFFICIENT_ALLOWANCE Result = 162
	TecNO_ENTRY               Result = 180
	TecDUPLICATE              Result = 181

	// tef codes (-199 to -100): engine-level failures.
	TefFAILURE        Result = -199
	TefINTERNAL       Result = -192
	TefREENTRANT_CALL Result = -191

	// tem codes (-299 to -200): malformed transactions, caught in preflight.
	TemMALFORMED       Result = -299
	TemBAD_AMOUNT      Result = -298
	TemBAD_TIME_RANGE  Result = -297
	TemBAD_FEE_RATE    Result = -296
	TemINVALID_ACCOUNT Result = -295
)

// Category classifies results for callers deciding whether a retry can help.
type Category int

const (
	CategorySuccess Category = iota
	// CategoryValidation: bad input, correct and resubmit.
	CategoryValidation
	// CategoryAuthorization: not retryable without a privilege change.
	CategoryAuthorization
	// CategoryState: the caller acted on a stale view of protocol state.
	CategoryState
	// CategoryOracle: retry after a fresh price update.
	CategoryOracle
	// CategoryResource: cap or balance exhausted.
	CategoryResource
	// CategoryInternal: engine failure, never expected in normal operation.
	CategoryInternal
)

// Success reports whether the transaction was applied.
func (r Result) Success() bool { return r == TesSUCCESS }

// Category returns the failure class of the result.
func (r Result) Category() Category {
	switch {
	case r == TesSUCCESS:
		return CategorySuccess
	case r >= TemMALFORMED && r <= -200:
		return CategoryValidation
	case r == TecNO_PERMISSION || r == TecNO_KYC || r == TecTRANSFER_NOT_ALLOWED:
		return CategoryAuthorization
	case r == TecORACLE_INACTIVE || r == TecORACLE_STALE:
		return CategoryOracle
	case r == TecSUPPLY_CAP_EXCEEDED || r == TecINSUFFICIENT_FUNDS || r == TecINSUFFICIENT_ALLOWANCE:
		return CategoryResource
	case r >= 100 && r <= 199:
		return CategoryState
	default:
		return CategoryInternal
	}
}

var resultNames = map[Result]string{
	TesSUCCESS:                "tesSUCCESS",
	TecINVALID_ID:             "tecINVALID_ID",
	TecWRONG_STATUS:           "tecWRONG_STATUS",
	TecNOT_STARTED:            "tecNOT_STARTED",
	TecENDED:                  "tecENDED",
	TecNOT_ENDED:              "tecNOT_ENDED",
	TecALREADY_CLAIMED:        "tecALREADY_CLAIMED",
	TecALREADY_WITHDRAWN:      "tecALREADY_WITHDRAWN",
	TecNO_SUBSCRIPTION:        "tecNO_SUBSCRIPTION",
	TecCANCELLED:              "tecCANCELLED",
	TecNO_PERMISSION:          "tecNO_PERMISSION",
	TecNO_KYC:                 "tecNO_KYC",
	TecTRANSFER_NOT_ALLOWED:   "tecTRANSFER_NOT_ALLOWED",
	TecORACLE_INACTIVE:        "tecORACLE_INACTIVE",
	TecORACLE_STALE:           "tecORACLE_STALE",
	TecSUPPLY_CAP_EXCEEDED:    "tecSUPPLY_CAP_EXCEEDED",
	TecINSUFFICIENT_FUNDS:     "tecINSUFFICIENT_FUNDS",
	TecINSUFFICIENT_ALLOWANCE: "tecINSUFFICIENT_ALLOWANCE",
	TecNO_ENTRY:               "tecNO_ENTRY",
	TecDUPLICATE:              "tecDUPLICATE",
	TefFAILURE:                "tefFAILURE",
	TefINTERNAL:               "tefINTERNAL",
	TefREENTRANT_CALL:         "tefREENTRANT_CALL",
	TemMALFORMED:              "temMALFORMED",
	TemBAD_AMOUNT:             "temBAD_AMOUNT",
	TemBAD_TIME_RANGE:         "temBAD_TIME_RANGE",
	TemBAD_FEE_RATE:           "temBAD_FEE_RATE",
	TemINVALID_ACCOUNT:        "temINVALID_ACCOUNT",
}

// String returns the canonical code name.
func (r Result) String() string {
	if name, ok := resultNames[r]; ok {
		return name
	}
	return fmt.Sprintf("Result(%d)", int(r))
}
