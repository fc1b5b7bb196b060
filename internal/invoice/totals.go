package invoice

import (
	"github.com/invoiceflow/invoice-server/internal/entity"
	"github.com/invoiceflow/invoice-server/internal/money"
)

// LineAmount derives the billed amount of a single row:
// round2(quantity × unitPrice). Rounding happens per line, before summation,
// so totals cannot drift across many small items and are independent of item
// order.
func LineAmount(item entity.LineItem) money.Amount {
	return item.Quantity.Mul(item.UnitPrice).Round2()
}

// LineTax derives the tax charged on a single row:
// round2(amount × taxRate / 100).
func LineTax(item entity.LineItem) money.Amount {
	return LineAmount(item).ApplyRate(item.TaxRate)
}

// DiscountTotal sums the draft's discounts against a given subtotal. Fixed
// discounts contribute their amount; percent discounts apply to the subtotal.
// Each discount is rounded individually, half-up.
func DiscountTotal(subtotal money.Amount, discounts []entity.Discount) money.Amount {
	total := money.Zero
	for _, d := range discounts {
		switch d.Type {
		case entity.DiscountPercent:
			total = total.Add(subtotal.ApplyRate(d.Amount))
		default:
			total = total.Add(d.Amount.Round2())
		}
	}
	return total
}

// ComputeTotals derives all monetary aggregates of a draft:
//
//	subtotal   = Σ round2(quantity_i × unitPrice_i)
//	taxTotal   = Σ round2(amount_i × taxRate_i / 100)
//	grandTotal = round2(subtotal + taxTotal + shipping − discountTotal)
//
// A negative grand total is returned as-is; rejecting it is the caller's
// validation decision, not a silent clamp here.
func ComputeTotals(d entity.InvoiceDraft) entity.Totals {
	subtotal := money.Zero
	taxTotal := money.Zero
	for _, item := range d.Items {
		subtotal = subtotal.Add(LineAmount(item))
		taxTotal = taxTotal.Add(LineTax(item))
	}
	discountTotal := DiscountTotal(subtotal, d.Discounts)
	grand := subtotal.Add(taxTotal).Add(d.Shipping.Round2()).Sub(discountTotal).Round2()
	return entity.Totals{
		Subtotal:      subtotal,
		TaxTotal:      taxTotal,
		DiscountTotal: discountTotal,
		GrandTotal:    grand,
	}
}
