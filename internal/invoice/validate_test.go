package invoice

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/invoiceflow/invoice-server/internal/entity"
)

func saveableDraft(t *testing.T) entity.InvoiceDraft {
	t.Helper()
	return entity.InvoiceDraft{
		InvoiceNumber: "INV-1",
		Vendor:        entity.Party{Name: "Vendor"},
		Client:        entity.Party{Name: "Client"},
		IssueDate:     entity.Date{YMD: "2025-01-01"},
		Currency:      "NPR",
		Items:         []entity.LineItem{item(t, "1", "100", "13")},
	}
}

func TestValidateDraft(t *testing.T) {
	d := saveableDraft(t)
	require.NoError(t, ValidateDraft(d))

	d.Vendor.Name = "   "
	assert.ErrorIs(t, ValidateDraft(d), ErrMissingVendor)

	// vendor wins when both are missing; the two errors stay distinct
	d.Client.Name = ""
	assert.ErrorIs(t, ValidateDraft(d), ErrMissingVendor)

	d.Vendor.Name = "Vendor"
	assert.ErrorIs(t, ValidateDraft(d), ErrMissingClient)
}

func TestValidateForSaveOK(t *testing.T) {
	assert.Empty(t, ValidateForSave(saveableDraft(t)))
}

func TestValidateForSaveCollectsAllViolations(t *testing.T) {
	d := entity.InvoiceDraft{
		Items: []entity.LineItem{
			{Quantity: amt(t, "-1"), UnitPrice: amt(t, "10"), TaxRate: amt(t, "150")},
		},
	}

	missing := ValidateForSave(d)

	assert.Contains(t, missing, "vendor.name")
	assert.Contains(t, missing, "client.name")
	assert.Contains(t, missing, "invoice_number")
	assert.Contains(t, missing, "issue_date")
	assert.Contains(t, missing, "items[0]")
	assert.Contains(t, missing, "items[0].tax_rate")
}

func TestValidateForSaveUnparsedDates(t *testing.T) {
	d := saveableDraft(t)
	d.IssueDate = entity.Date{Raw: "next tuesday"}
	d.DueDate = entity.Date{Raw: "whenever"}

	missing := ValidateForSave(d)
	assert.Contains(t, missing, "issue_date")
	assert.Contains(t, missing, "due_date")
}

func TestValidateForSaveNegativeGrandTotal(t *testing.T) {
	d := saveableDraft(t)
	d.Discounts = []entity.Discount{
		{Description: "over", Amount: amt(t, "1000"), Type: entity.DiscountFixed},
	}
	assert.Contains(t, ValidateForSave(d), "grand_total")
}
