package extract

import (
	"encoding/json"
	"regexp"
	"strings"

	"github.com/invoiceflow/invoice-server/internal/invoice"
)

// The inference service is prompted to return bare JSON but may wrap it in a
// markdown code fence. Stripping the outer fence is a fixed parsing pre-step.
var fenceRe = regexp.MustCompile("(?s)```(?:json)?\\s*(.*?)\\s*```")

// StripFence removes an outer markdown code fence if one is present, else
// returns the input trimmed.
func StripFence(text string) string {
	if m := fenceRe.FindStringSubmatch(text); m != nil {
		return strings.TrimSpace(m[1])
	}
	return strings.TrimSpace(text)
}

// ParsePayload turns raw response text into the untrusted payload the
// normalizer consumes. Text that is not a JSON object after fence-stripping
// fails with MalformedResponse.
func ParsePayload(text string) (invoice.Payload, error) {
	body := StripFence(text)
	var p invoice.Payload
	if err := json.Unmarshal([]byte(body), &p); err != nil {
		return nil, newError(KindMalformedResponse, err)
	}
	if p == nil {
		return nil, newError(KindMalformedResponse, nil)
	}
	return p, nil
}
