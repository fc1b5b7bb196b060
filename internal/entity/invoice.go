package entity

import (
	"time"

	"github.com/google/uuid"

	"github.com/invoiceflow/invoice-server/constants"
	"github.com/invoiceflow/invoice-server/internal/money"
)

// Party identifies one side of an invoice (vendor or client).
type Party struct {
	Name    string `json:"name"`
	Email   string `json:"email,omitempty"`
	Address string `json:"address,omitempty"`
}

// Date is a calendar date in draft form. YMD holds the canonical YYYY-MM-DD
// value when the input parsed; Raw preserves unparsable non-empty input so it
// can be surfaced at save-time validation instead of being silently dropped.
type Date struct {
	YMD string `json:"ymd,omitempty"`
	Raw string `json:"raw,omitempty"`
}

// Unparsed reports a non-empty date string that could not be coerced.
func (d Date) Unparsed() bool { return d.YMD == "" && d.Raw != "" }

// IsZero reports an absent date.
func (d Date) IsZero() bool { return d.YMD == "" && d.Raw == "" }

// Time converts a parsed date to midnight UTC; ok is false when unset or
// unparsed.
func (d Date) Time() (time.Time, bool) {
	if d.YMD == "" {
		return time.Time{}, false
	}
	t, err := time.ParseInLocation("2006-01-02", d.YMD, time.UTC)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// LineItem is one billed row. Amount (quantity × unitPrice) is derived by the
// totals calculator, never stored on the draft.
type LineItem struct {
	Description string       `json:"description"`
	Quantity    money.Amount `json:"quantity"`
	UnitPrice   money.Amount `json:"unit_price"`
	TaxRate     money.Amount `json:"tax_rate"` // percentage in [0,100]
}

// DiscountType distinguishes fixed-amount discounts from percentages of the
// subtotal.
type DiscountType string

const (
	DiscountFixed   DiscountType = "fixed"
	DiscountPercent DiscountType = "percent"
)

// Discount is a named reduction applied after tax.
type Discount struct {
	Description string       `json:"description"`
	Amount      money.Amount `json:"amount"`
	Type        DiscountType `json:"type"`
}

// InvoiceDraft is the canonical invoice shape all inputs normalize into.
// Drafts are immutable values: edits produce a replacement draft, and totals
// are always recomputed from the draft rather than carried along.
type InvoiceDraft struct {
	InvoiceNumber string       `json:"invoice_number,omitempty"`
	Vendor        Party        `json:"vendor"`
	Client        Party        `json:"client"`
	IssueDate     Date         `json:"issue_date"`
	DueDate       Date         `json:"due_date"`
	Currency      string       `json:"currency"`
	Items         []LineItem   `json:"items"`
	Shipping      money.Amount `json:"shipping"`
	Discounts     []Discount   `json:"discounts,omitempty"`
	Notes         string       `json:"notes,omitempty"`
	Terms         string       `json:"terms,omitempty"`
}

// Totals are the derived monetary aggregates of a draft. They are a pure
// function of items + shipping + discounts and are recomputed on every edit.
type Totals struct {
	Subtotal      money.Amount `json:"subtotal"`
	TaxTotal      money.Amount `json:"tax_total"`
	DiscountTotal money.Amount `json:"discount_total"`
	GrandTotal    money.Amount `json:"grand_total"`
}

// InvoiceStats are the dashboard aggregates for one profile: invoice counts
// by lifecycle stage and revenue collected from paid invoices.
type InvoiceStats struct {
	Total   int          `json:"total"`
	Paid    int          `json:"paid"`
	Pending int          `json:"pending"` // sent, awaiting payment
	Revenue money.Amount `json:"revenue"` // sum of paid grand totals
}

// Invoice is a persisted draft plus identity, lifecycle status, and totals.
type Invoice struct {
	ID        uuid.UUID               `json:"id"`
	ProfileID uuid.UUID               `json:"profile_id"`
	Draft     InvoiceDraft            `json:"draft"`
	Totals    Totals                  `json:"totals"`
	Status    constants.InvoiceStatus `json:"status"`
	SentAt    *time.Time              `json:"sent_at,omitempty"`
	PaidAt    *time.Time              `json:"paid_at,omitempty"`
	CreatedAt time.Time               `json:"created_at"`
	UpdatedAt time.Time               `json:"updated_at"`
}
