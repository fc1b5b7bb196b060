package invoice

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/invoiceflow/invoice-server/internal/entity"
)

var testClock = func() time.Time {
	return time.Date(2025, 3, 14, 12, 0, 0, 0, time.UTC)
}

func newTestNormalizer() *Normalizer {
	return NewNormalizer(nil).WithClock(testClock)
}

func payloadFromJSON(t *testing.T, raw string) Payload {
	t.Helper()
	var p Payload
	require.NoError(t, json.Unmarshal([]byte(raw), &p))
	return p
}

func TestNormalizeDefaults(t *testing.T) {
	n := newTestNormalizer()
	draft, rep := n.Normalize(Payload{})

	assert.Equal(t, "NPR", draft.Currency)
	assert.Equal(t, "2025-03-14", draft.IssueDate.YMD)
	require.Len(t, draft.Items, 1)
	assert.Equal(t, "", draft.Items[0].Description)
	assert.Equal(t, "1.00", draft.Items[0].Quantity.String())
	assert.True(t, draft.Items[0].UnitPrice.IsZero())
	assert.True(t, draft.Items[0].TaxRate.IsZero())
	assert.Equal(t, entity.Party{}, draft.Vendor)
	assert.Equal(t, entity.Party{}, draft.Client)

	assert.Contains(t, rep.Defaulted, "currency")
	assert.Contains(t, rep.Defaulted, "issueDate")
	assert.Contains(t, rep.Defaulted, "items")
	assert.Contains(t, rep.Defaulted, "vendor")
	assert.Contains(t, rep.Defaulted, "client")
}

func TestNormalizeEmptyItemsArray(t *testing.T) {
	n := newTestNormalizer()
	p := payloadFromJSON(t, `{"vendor":{},"client":{"name":"Acme"},"items":[]}`)

	draft, rep := n.Normalize(p)

	// an invoice never has zero line items at draft stage
	require.Len(t, draft.Items, 1)
	assert.Contains(t, rep.Defaulted, "items")
	assert.Equal(t, "", draft.Vendor.Name)
	assert.Equal(t, "Acme", draft.Client.Name)

	// and the empty vendor is a draft-stage rejection, not a crash
	assert.ErrorIs(t, ValidateDraft(draft), ErrMissingVendor)
}

func TestNormalizeCoercesNumericStrings(t *testing.T) {
	n := newTestNormalizer()
	p := payloadFromJSON(t, `{
		"vendor": {"name": "Vendor"},
		"client": {"name": "Client"},
		"items": [{"description": "Widget", "quantity": "2", "unitPrice": "100.50", "taxRate": "13"}],
		"shipping": "25"
	}`)

	draft, rep := n.Normalize(p)

	require.Len(t, draft.Items, 1)
	assert.Equal(t, "2.00", draft.Items[0].Quantity.String())
	assert.Equal(t, "100.50", draft.Items[0].UnitPrice.String())
	assert.Equal(t, "13.00", draft.Items[0].TaxRate.String())
	assert.Equal(t, "25.00", draft.Shipping.String())

	assert.Contains(t, rep.Coerced, "items[0].quantity")
	assert.Contains(t, rep.Coerced, "shipping")
}

func TestNormalizeRecoversBadNumbers(t *testing.T) {
	n := newTestNormalizer()
	p := payloadFromJSON(t, `{
		"items": [{"description": "x", "quantity": "lots", "unitPrice": -5, "taxRate": null}]
	}`)

	draft, rep := n.Normalize(p)

	// coercion failures default to 0 and are recorded, never raised
	require.Len(t, draft.Items, 1)
	assert.True(t, draft.Items[0].Quantity.IsZero())
	assert.True(t, draft.Items[0].UnitPrice.IsZero())
	assert.True(t, draft.Items[0].TaxRate.IsZero())
	assert.Contains(t, rep.Coerced, "items[0].quantity")
	assert.Contains(t, rep.Coerced, "items[0].unitPrice")
}

func TestNormalizeDates(t *testing.T) {
	n := newTestNormalizer()

	t.Run("iso date passes through", func(t *testing.T) {
		draft, rep := n.Normalize(Payload{"issueDate": "2024-12-01"})
		assert.Equal(t, "2024-12-01", draft.IssueDate.YMD)
		assert.NotContains(t, rep.Coerced, "issueDate")
	})

	t.Run("alternate format is coerced", func(t *testing.T) {
		draft, rep := n.Normalize(Payload{"issueDate": "2024/12/01"})
		assert.Equal(t, "2024-12-01", draft.IssueDate.YMD)
		assert.Contains(t, rep.Coerced, "issueDate")
	})

	t.Run("unparsable date is kept, not dropped", func(t *testing.T) {
		draft, rep := n.Normalize(Payload{"issueDate": "next tuesday"})
		assert.True(t, draft.IssueDate.Unparsed())
		assert.Equal(t, "next tuesday", draft.IssueDate.Raw)
		assert.Contains(t, rep.Coerced, "issueDate")
	})

	t.Run("absent due date stays unset", func(t *testing.T) {
		draft, _ := n.Normalize(Payload{})
		assert.True(t, draft.DueDate.IsZero())
	})
}

func TestNormalizeDiscounts(t *testing.T) {
	n := newTestNormalizer()
	p := payloadFromJSON(t, `{
		"discounts": [
			{"description": "loyalty", "amount": 10, "type": "fixed"},
			{"description": "seasonal", "amount": 5, "type": "percent"},
			{"description": "odd", "amount": 1, "type": "mystery"}
		]
	}`)

	draft, rep := n.Normalize(p)

	require.Len(t, draft.Discounts, 3)
	assert.Equal(t, entity.DiscountFixed, draft.Discounts[0].Type)
	assert.Equal(t, entity.DiscountPercent, draft.Discounts[1].Type)
	assert.Equal(t, entity.DiscountFixed, draft.Discounts[2].Type)
	assert.Contains(t, rep.Coerced, "discounts[2].type")
}

func TestNormalizeDoesNotMutateInput(t *testing.T) {
	n := newTestNormalizer()
	p := payloadFromJSON(t, `{"vendor":{"name":"V"},"items":[{"quantity":"3"}]}`)
	before, err := json.Marshal(p)
	require.NoError(t, err)

	_, _ = n.Normalize(p)

	after, err := json.Marshal(p)
	require.NoError(t, err)
	assert.JSONEq(t, string(before), string(after))
}

func TestNormalizeDraftIdempotent(t *testing.T) {
	n := newTestNormalizer()

	// start from a payload, normalize once, then normalize the draft again
	p := payloadFromJSON(t, `{
		"invoiceNumber": "INV-7",
		"vendor": {"name": "Vendor"},
		"client": {"name": "Client"},
		"issueDate": "2024-12-01",
		"currency": "USD",
		"items": [{"description": "Widget", "quantity": 2, "unitPrice": 100, "taxRate": 13}],
		"shipping": 50
	}`)
	first, _ := n.Normalize(p)

	second, rep := n.NormalizeDraft(first)
	assert.Equal(t, first, second)
	assert.Empty(t, rep.Defaulted)
	assert.Empty(t, rep.Coerced)
}

func TestNormalizeDraftFillsGaps(t *testing.T) {
	n := newTestNormalizer()
	draft, rep := n.NormalizeDraft(entity.InvoiceDraft{
		Vendor: entity.Party{Name: "V"},
		Client: entity.Party{Name: "C"},
	})

	assert.Equal(t, "NPR", draft.Currency)
	assert.Equal(t, "2025-03-14", draft.IssueDate.YMD)
	require.Len(t, draft.Items, 1)
	assert.Contains(t, rep.Defaulted, "currency")
	assert.Contains(t, rep.Defaulted, "issueDate")
	assert.Contains(t, rep.Defaulted, "items")
}
