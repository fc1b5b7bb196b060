// Package invoice holds the draft pipeline: normalization of untrusted
// payloads into the canonical draft shape, draft validation, and totals
// computation. All three are pure over their inputs.
package invoice

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/invoiceflow/invoice-server/constants"
	"github.com/invoiceflow/invoice-server/internal/entity"
	"github.com/invoiceflow/invoice-server/internal/money"
)

// Payload is the untrusted, loosely-typed input to normalization — either an
// extraction result or a partially-filled form object. Only the normalizer
// reads it, field by field, with explicit coercion per field.
type Payload map[string]any

// Report lists every field the normalizer defaulted or coerced. Coercion
// failures are recovered here, never raised; validation happens downstream.
type Report struct {
	Defaulted []string `json:"defaulted,omitempty"`
	Coerced   []string `json:"coerced,omitempty"`
}

func (r *Report) defaulted(field string) { r.Defaulted = append(r.Defaulted, field) }
func (r *Report) coerced(field string)   { r.Coerced = append(r.Coerced, field) }

// dateFormats we attempt, in order, before marking a date unparsed.
var dateFormats = []string{
	"2006-01-02",
	"2006/01/02",
	"01/02/2006",
	"02-01-2006",
	time.RFC3339,
}

// Normalizer converts payloads into canonical drafts. It never mutates its
// input and always returns a freshly-built draft.
type Normalizer struct {
	log *slog.Logger
	now func() time.Time
}

func NewNormalizer(logger *slog.Logger) *Normalizer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Normalizer{log: logger, now: time.Now}
}

// WithClock overrides the clock used for the issue-date default.
func (n *Normalizer) WithClock(now func() time.Time) *Normalizer {
	return &Normalizer{log: n.log, now: now}
}

// Normalize applies the canonical defaulting and coercion rules:
//   - currency → "NPR" when absent or not a 3-letter code
//   - issueDate → today when absent; unparsable non-empty dates are kept as
//     raw markers for save-time validation
//   - items → one empty line item when absent or empty
//   - numeric fields → coerced from string-or-number, 0 on failure (recorded)
//   - vendor/client → empty Party when the sub-object is missing
func (n *Normalizer) Normalize(p Payload) (entity.InvoiceDraft, Report) {
	var rep Report
	draft := entity.InvoiceDraft{
		InvoiceNumber: str(p["invoiceNumber"]),
		Vendor:        n.party(p["vendor"], "vendor", &rep),
		Client:        n.party(p["client"], "client", &rep),
		Notes:         str(p["notes"]),
		Terms:         str(p["terms"]),
	}

	draft.Currency = n.currency(p["currency"], &rep)
	draft.IssueDate = n.issueDate(p["issueDate"], &rep)
	draft.DueDate = n.optionalDate(p["dueDate"], "dueDate", &rep)
	draft.Shipping = n.amount(p["shipping"], "shipping", &rep)
	draft.Items = n.items(p["items"], &rep)
	draft.Discounts = n.discounts(p["discounts"], &rep)

	if len(rep.Defaulted) > 0 || len(rep.Coerced) > 0 {
		n.log.Info("normalize.report",
			"defaulted", rep.Defaulted,
			"coerced", rep.Coerced,
		)
	}
	return draft, rep
}

// NormalizeDraft applies the same defaulting rules to an already-typed draft
// (the form path). Normalizing a canonical draft is a no-op, so the operation
// is idempotent.
func (n *Normalizer) NormalizeDraft(d entity.InvoiceDraft) (entity.InvoiceDraft, Report) {
	var rep Report
	out := d

	if cur, ok := constants.CanonicalizeCurrency(d.Currency); !ok {
		out.Currency = cur
		rep.defaulted("currency")
	} else {
		out.Currency = cur
	}
	if d.IssueDate.IsZero() {
		out.IssueDate = entity.Date{YMD: n.now().UTC().Format("2006-01-02")}
		rep.defaulted("issueDate")
	}
	if len(d.Items) == 0 {
		out.Items = []entity.LineItem{emptyLineItem()}
		rep.defaulted("items")
	} else {
		out.Items = make([]entity.LineItem, len(d.Items))
		copy(out.Items, d.Items)
	}
	if len(d.Discounts) > 0 {
		out.Discounts = make([]entity.Discount, len(d.Discounts))
		copy(out.Discounts, d.Discounts)
		for i, disc := range out.Discounts {
			if disc.Type != entity.DiscountPercent {
				out.Discounts[i].Type = entity.DiscountFixed
				if disc.Type != entity.DiscountFixed {
					rep.coerced(fmt.Sprintf("discounts[%d].type", i))
				}
			}
		}
	}
	return out, rep
}

func (n *Normalizer) currency(v any, rep *Report) string {
	cur, ok := constants.CanonicalizeCurrency(str(v))
	if !ok {
		rep.defaulted("currency")
	}
	return cur
}

func (n *Normalizer) issueDate(v any, rep *Report) entity.Date {
	s := strings.TrimSpace(str(v))
	if s == "" {
		rep.defaulted("issueDate")
		return entity.Date{YMD: n.now().UTC().Format("2006-01-02")}
	}
	if d, ok := parseDate(s); ok {
		if d.YMD != s {
			rep.coerced("issueDate")
		}
		return d
	}
	// keep the raw text so save-time validation can surface it
	rep.coerced("issueDate")
	return entity.Date{Raw: s}
}

func (n *Normalizer) optionalDate(v any, field string, rep *Report) entity.Date {
	s := strings.TrimSpace(str(v))
	if s == "" {
		return entity.Date{}
	}
	if d, ok := parseDate(s); ok {
		if d.YMD != s {
			rep.coerced(field)
		}
		return d
	}
	rep.coerced(field)
	return entity.Date{Raw: s}
}

func (n *Normalizer) party(v any, field string, rep *Report) entity.Party {
	m, ok := v.(map[string]any)
	if !ok {
		if v != nil {
			rep.coerced(field)
		} else {
			rep.defaulted(field)
		}
		// never invent a business name
		return entity.Party{}
	}
	return entity.Party{
		Name:    strings.TrimSpace(str(m["name"])),
		Email:   strings.TrimSpace(str(m["email"])),
		Address: strings.TrimSpace(str(m["address"])),
	}
}

func (n *Normalizer) items(v any, rep *Report) []entity.LineItem {
	arr, ok := v.([]any)
	if !ok || len(arr) == 0 {
		// a draft never has zero line items
		rep.defaulted("items")
		return []entity.LineItem{emptyLineItem()}
	}
	out := make([]entity.LineItem, 0, len(arr))
	for i, el := range arr {
		m, ok := el.(map[string]any)
		if !ok {
			rep.coerced(fmt.Sprintf("items[%d]", i))
			out = append(out, emptyLineItem())
			continue
		}
		item := entity.LineItem{
			Description: strings.TrimSpace(str(m["description"])),
			Quantity:    n.amount(m["quantity"], fmt.Sprintf("items[%d].quantity", i), rep),
			UnitPrice:   n.amount(m["unitPrice"], fmt.Sprintf("items[%d].unitPrice", i), rep),
			TaxRate:     n.amount(m["taxRate"], fmt.Sprintf("items[%d].taxRate", i), rep),
		}
		out = append(out, item)
	}
	return out
}

func (n *Normalizer) discounts(v any, rep *Report) []entity.Discount {
	arr, ok := v.([]any)
	if !ok || len(arr) == 0 {
		return nil
	}
	out := make([]entity.Discount, 0, len(arr))
	for i, el := range arr {
		m, ok := el.(map[string]any)
		if !ok {
			rep.coerced(fmt.Sprintf("discounts[%d]", i))
			continue
		}
		typ := entity.DiscountType(strings.ToLower(strings.TrimSpace(str(m["type"]))))
		if typ != entity.DiscountPercent && typ != entity.DiscountFixed {
			if typ != "" {
				rep.coerced(fmt.Sprintf("discounts[%d].type", i))
			}
			typ = entity.DiscountFixed
		}
		out = append(out, entity.Discount{
			Description: strings.TrimSpace(str(m["description"])),
			Amount:      n.amount(m["amount"], fmt.Sprintf("discounts[%d].amount", i), rep),
			Type:        typ,
		})
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// amount coerces string-or-number input; failures default to 0 and are
// recorded, never raised at this stage.
func (n *Normalizer) amount(v any, field string, rep *Report) money.Amount {
	if v == nil {
		return money.Zero
	}
	a, err := money.Parse(v)
	if err != nil {
		rep.coerced(field)
		return money.Zero
	}
	if a.IsNegative() {
		rep.coerced(field)
		return money.Zero
	}
	if _, isStr := v.(string); isStr {
		rep.coerced(field)
	}
	return a
}

func emptyLineItem() entity.LineItem {
	one, _ := money.Parse(1)
	return entity.LineItem{Description: "", Quantity: one, UnitPrice: money.Zero, TaxRate: money.Zero}
}

func parseDate(s string) (entity.Date, bool) {
	for _, layout := range dateFormats {
		if t, err := time.Parse(layout, s); err == nil {
			return entity.Date{YMD: t.Format("2006-01-02")}, true
		}
	}
	return entity.Date{}, false
}

func str(v any) string {
	s, _ := v.(string)
	return s
}
