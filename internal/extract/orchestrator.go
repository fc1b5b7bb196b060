// Package extract drives AI-assisted invoice extraction: it calls the
// inference service, parses the textual response into an untrusted payload,
// and runs the normalize/validate/totals pipeline over it, mapping every
// failure to a typed outcome. It performs no retries and leaves no side
// effects on failure.
package extract

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/invoiceflow/invoice-server/internal/entity"
	"github.com/invoiceflow/invoice-server/internal/invoice"
)

// State tracks where an extraction run ended.
type State string

const (
	StateIdle       State = "idle"
	StateRequesting State = "requesting"
	StateParsing    State = "parsing"
	StateValidating State = "validating"
	StateAccepted   State = "accepted"
	StateRejected   State = "rejected"
	StateFailed     State = "failed"
)

// Result is a successful extraction: the normalized draft, its derived
// totals, and the normalization report of everything that was coerced.
type Result struct {
	Draft  entity.InvoiceDraft `json:"draft"`
	Totals entity.Totals       `json:"totals"`
	Report invoice.Report      `json:"report"`
	State  State               `json:"state"`
}

// Orchestrator wires the inference client to the draft pipeline. It is
// stateless across invocations; each Extract call is independent.
type Orchestrator struct {
	completer Completer
	norm      *invoice.Normalizer
	log       *slog.Logger
}

func NewOrchestrator(completer Completer, norm *invoice.Normalizer, logger *slog.Logger) *Orchestrator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Orchestrator{completer: completer, norm: norm, log: logger}
}

// Extract runs the full pipeline over raw invoice text:
//
//	idle → requesting → parsing → validating → {accepted, rejected, failed}
//
// Empty or whitespace-only input fails immediately with EmptyInput, without
// contacting the service. Failures come back as *Error with a Kind; the
// Result's State records where the run stopped.
func (o *Orchestrator) Extract(ctx context.Context, text string) (*Result, error) {
	rid := uuid.New().String()
	start := time.Now()

	if strings.TrimSpace(text) == "" {
		o.log.Warn("extract.empty_input", "req_id", rid)
		return &Result{State: StateFailed}, newError(KindEmptyInput, nil)
	}

	o.log.Info("extract.start", "req_id", rid, "text_len", len(text))

	content, err := o.completer.Complete(ctx, BuildSystemPrompt(""), BuildUserPrompt(text))
	if err != nil {
		o.log.Error("extract.request_failed",
			"req_id", rid, "error", err,
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return &Result{State: StateFailed}, asExtractError(err)
	}

	payload, err := ParsePayload(content)
	if err != nil {
		o.log.Error("extract.parse_failed",
			"req_id", rid, "error", err, "content_len", len(content),
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return &Result{State: StateFailed}, err
	}

	// Advisory shape check; the normalizer tolerates drift, so log only.
	if verr := ValidateAgainstSchema(BuildInvoiceJSONSchema(), []byte(StripFence(content))); verr != nil {
		o.log.Warn("extract.schema_mismatch", "req_id", rid, "error", verr)
	}

	draft, report := o.norm.Normalize(payload)
	if verr := invoice.ValidateDraft(draft); verr != nil {
		kind := KindMissingVendor
		if errors.Is(verr, invoice.ErrMissingClient) {
			kind = KindMissingClient
		}
		o.log.Warn("extract.rejected",
			"req_id", rid, "kind", kind,
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return &Result{State: StateRejected}, newError(kind, verr)
	}

	totals := invoice.ComputeTotals(draft)
	o.log.Info("extract.ok",
		"req_id", rid,
		"vendor", draft.Vendor.Name,
		"client", draft.Client.Name,
		"items", len(draft.Items),
		"grand_total", totals.GrandTotal.String(),
		"currency", draft.Currency,
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return &Result{Draft: draft, Totals: totals, Report: report, State: StateAccepted}, nil
}

// asExtractError passes typed outcomes through untouched and wraps anything
// else (transport faults, context cancellation) as a service error.
func asExtractError(err error) error {
	var ee *Error
	if errors.As(err, &ee) {
		return err
	}
	return newError(KindServiceError, err)
}
