package entity

import (
	"time"

	"github.com/google/uuid"

	"github.com/invoiceflow/invoice-server/internal/money"
)

// Profile is the billing identity of the invoice issuer, used to prefill the
// vendor party and defaults on new drafts.
type Profile struct {
	ID              uuid.UUID    `json:"id"`
	Email           string       `json:"email"`
	BusinessName    string       `json:"business_name,omitempty"`
	BusinessAddress string       `json:"business_address,omitempty"`
	DefaultCurrency string       `json:"default_currency"`
	DefaultTaxRate  money.Amount `json:"default_tax_rate"`
	CreatedAt       time.Time    `json:"created_at"`
	UpdatedAt       time.Time    `json:"updated_at"`
}
