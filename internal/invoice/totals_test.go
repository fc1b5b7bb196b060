package invoice

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/invoiceflow/invoice-server/internal/entity"
	"github.com/invoiceflow/invoice-server/internal/money"
)

func amt(t *testing.T, s string) money.Amount {
	t.Helper()
	a, err := money.Parse(s)
	require.NoError(t, err)
	return a
}

func item(t *testing.T, qty, price, rate string) entity.LineItem {
	t.Helper()
	return entity.LineItem{
		Quantity:  amt(t, qty),
		UnitPrice: amt(t, price),
		TaxRate:   amt(t, rate),
	}
}

func TestComputeTotalsBasic(t *testing.T) {
	draft := entity.InvoiceDraft{
		Items:    []entity.LineItem{item(t, "2", "100", "13")},
		Shipping: amt(t, "50"),
	}

	totals := ComputeTotals(draft)

	assert.Equal(t, "200.00", totals.Subtotal.String())
	assert.Equal(t, "26.00", totals.TaxTotal.String())
	assert.Equal(t, "0.00", totals.DiscountTotal.String())
	assert.Equal(t, "276.00", totals.GrandTotal.String())
}

func TestComputeTotalsPerLineRounding(t *testing.T) {
	// 3 × 0.335 = 1.005 → rounds to 1.01 per line, not accumulated raw
	draft := entity.InvoiceDraft{
		Items: []entity.LineItem{
			item(t, "3", "0.335", "0"),
			item(t, "3", "0.335", "0"),
		},
	}
	totals := ComputeTotals(draft)
	assert.Equal(t, "2.02", totals.Subtotal.String())
	assert.Equal(t, "2.02", totals.GrandTotal.String())
}

func TestComputeTotalsOrderIndependent(t *testing.T) {
	items := []entity.LineItem{
		item(t, "1", "19.99", "13"),
		item(t, "3", "0.335", "7.5"),
		item(t, "12", "1.05", "0"),
		item(t, "0.5", "99.99", "13"),
		item(t, "7", "3.33", "5"),
	}
	base := ComputeTotals(entity.InvoiceDraft{Items: items})

	rng := rand.New(rand.NewSource(1))
	for n := 0; n < 20; n++ {
		shuffled := make([]entity.LineItem, len(items))
		copy(shuffled, items)
		rng.Shuffle(len(shuffled), func(i, j int) {
			shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
		})
		got := ComputeTotals(entity.InvoiceDraft{Items: shuffled})
		assert.True(t, base.GrandTotal.Equal(got.GrandTotal), "grand total changed under reordering")
		assert.True(t, base.Subtotal.Equal(got.Subtotal))
		assert.True(t, base.TaxTotal.Equal(got.TaxTotal))
	}
}

func TestLineAmountsNonNegative(t *testing.T) {
	cases := [][3]string{
		{"0", "0", "0"},
		{"1", "0.01", "100"},
		{"2.5", "3.99", "13"},
		{"1000", "0.001", "7"},
	}
	for _, c := range cases {
		it := item(t, c[0], c[1], c[2])
		assert.False(t, LineAmount(it).IsNegative())
		assert.False(t, LineTax(it).IsNegative())
	}
}

func TestComputeTotalsDiscounts(t *testing.T) {
	draft := entity.InvoiceDraft{
		Items: []entity.LineItem{item(t, "1", "100", "0")},
		Discounts: []entity.Discount{
			{Description: "loyalty", Amount: amt(t, "10"), Type: entity.DiscountFixed},
			{Description: "seasonal", Amount: amt(t, "5"), Type: entity.DiscountPercent}, // 5% of 100
		},
	}

	totals := ComputeTotals(draft)

	assert.Equal(t, "15.00", totals.DiscountTotal.String())
	assert.Equal(t, "85.00", totals.GrandTotal.String())
}

func TestComputeTotalsNegativeGrandTotalNotClamped(t *testing.T) {
	draft := entity.InvoiceDraft{
		Items: []entity.LineItem{item(t, "1", "10", "0")},
		Discounts: []entity.Discount{
			{Description: "over", Amount: amt(t, "50"), Type: entity.DiscountFixed},
		},
	}

	totals := ComputeTotals(draft)
	assert.Equal(t, "-40.00", totals.GrandTotal.String())
	assert.True(t, totals.GrandTotal.IsNegative())

	// save-time validation is where the rejection happens
	draft.Vendor.Name = "V"
	draft.Client.Name = "C"
	draft.InvoiceNumber = "INV-1"
	draft.IssueDate = entity.Date{YMD: "2025-01-01"}
	assert.Contains(t, ValidateForSave(draft), "grand_total")
}

func TestTotalsRecomputationStable(t *testing.T) {
	n := newTestNormalizer()
	p := payloadFromJSON(t, `{
		"vendor": {"name": "V"}, "client": {"name": "C"},
		"items": [{"description":"a","quantity":2,"unitPrice":100,"taxRate":13}],
		"shipping": 50
	}`)
	draft, _ := n.Normalize(p)
	first := ComputeTotals(draft)

	renormalized, _ := n.NormalizeDraft(draft)
	second := ComputeTotals(renormalized)

	assert.True(t, first.GrandTotal.Equal(second.GrandTotal))
	assert.True(t, first.Subtotal.Equal(second.Subtotal))
	assert.True(t, first.TaxTotal.Equal(second.TaxTotal))
	assert.True(t, first.DiscountTotal.Equal(second.DiscountTotal))
}
