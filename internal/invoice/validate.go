package invoice

import (
	"errors"
	"strconv"
	"strings"

	"github.com/invoiceflow/invoice-server/internal/entity"
	"github.com/invoiceflow/invoice-server/internal/money"
)

var hundred = mustAmount("100")

func mustAmount(s string) money.Amount {
	a, err := money.Parse(s)
	if err != nil {
		panic(err)
	}
	return a
}

// Draft-stage acceptance errors. The two kinds stay distinct so callers can
// message the user precisely about which party could not be extracted.
var (
	ErrMissingVendor = errors.New("missing vendor name")
	ErrMissingClient = errors.New("missing client name")
)

// ValidateDraft enforces the minimal acceptance contract before a draft is
// surfaced: vendor and client names must be non-empty after normalization.
// Everything else stays optional at draft stage.
func ValidateDraft(d entity.InvoiceDraft) error {
	if strings.TrimSpace(d.Vendor.Name) == "" {
		return ErrMissingVendor
	}
	if strings.TrimSpace(d.Client.Name) == "" {
		return ErrMissingClient
	}
	return nil
}

// ValidateForSave returns the full list of fields that block persistence,
// rather than stopping at the first one, so a form can report every violation
// at once. An empty slice means the draft is saveable.
func ValidateForSave(d entity.InvoiceDraft) []string {
	var missing []string
	if strings.TrimSpace(d.Vendor.Name) == "" {
		missing = append(missing, "vendor.name")
	}
	if strings.TrimSpace(d.Client.Name) == "" {
		missing = append(missing, "client.name")
	}
	if strings.TrimSpace(d.InvoiceNumber) == "" {
		missing = append(missing, "invoice_number")
	}
	if d.IssueDate.Unparsed() || d.IssueDate.IsZero() {
		missing = append(missing, "issue_date")
	}
	if d.DueDate.Unparsed() {
		missing = append(missing, "due_date")
	}
	for i, item := range d.Items {
		if item.Quantity.IsNegative() || item.UnitPrice.IsNegative() {
			missing = append(missing, "items["+strconv.Itoa(i)+"]")
		}
		if item.TaxRate.IsNegative() || item.TaxRate.Cmp(hundred) > 0 {
			missing = append(missing, "items["+strconv.Itoa(i)+"].tax_rate")
		}
	}
	if ComputeTotals(d).GrandTotal.IsNegative() {
		missing = append(missing, "grand_total")
	}
	return missing
}
