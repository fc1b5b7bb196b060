package extract

import "fmt"

// Kind classifies every way an extraction can fail. Each kind carries one
// distinct user-facing message so callers can tell the user whether to retry,
// rephrase input, or wait for quota reset.
type Kind string

const (
	KindEmptyInput        Kind = "EMPTY_INPUT"
	KindMalformedResponse Kind = "MALFORMED_RESPONSE"
	KindMissingVendor     Kind = "MISSING_VENDOR"
	KindMissingClient     Kind = "MISSING_CLIENT"
	KindRateLimited       Kind = "RATE_LIMITED"
	KindQuotaExhausted    Kind = "QUOTA_EXHAUSTED"
	KindServiceError      Kind = "SERVICE_ERROR"
	KindInvalidAmount     Kind = "INVALID_AMOUNT"
)

var userMessages = map[Kind]string{
	KindEmptyInput:        "Please provide invoice text.",
	KindMalformedResponse: "Failed to parse extracted data. Please try with clearer invoice text.",
	KindMissingVendor:     "Could not extract vendor information. Please provide clearer invoice data.",
	KindMissingClient:     "Could not extract client information. Please provide clearer invoice data.",
	KindRateLimited:       "AI rate limit exceeded. Please try again later.",
	KindQuotaExhausted:    "AI credits exhausted. Please add credits to continue.",
	KindServiceError:      "AI extraction failed. Please try again.",
	KindInvalidAmount:     "An amount in the invoice could not be read as a number.",
}

// Error is the typed outcome of a failed or rejected extraction.
type Error struct {
	Kind   Kind
	Status int // upstream HTTP status, for service-error diagnostics
	Cause  error
}

func (e *Error) Error() string {
	msg := string(e.Kind)
	if e.Status != 0 {
		msg = fmt.Sprintf("%s (upstream status %d)", msg, e.Status)
	}
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", msg, e.Cause)
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Cause }

// UserMessage is the stable text shown to the end user for this kind.
func (e *Error) UserMessage() string {
	if m, ok := userMessages[e.Kind]; ok {
		return m
	}
	return userMessages[KindServiceError]
}

// Retryable reports whether the user retrying with the same input can help.
func (e *Error) Retryable() bool {
	return e.Kind == KindRateLimited || e.Kind == KindServiceError
}

func newError(kind Kind, cause error) *Error {
	return &Error{Kind: kind, Cause: cause}
}
