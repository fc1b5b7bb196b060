// Package money provides fixed-point monetary amounts for invoice math.
// Amounts are decimal values carried at full precision between operations and
// rounded to 2 decimal places (currency minor units, half-up) only at the
// points the totals rules define. Binary floats are never stored or compared.
package money

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/shopspring/decimal"
)

// ErrInvalidAmount reports input that cannot be used as a monetary quantity:
// not coercible to a number, non-finite, or negative where negativity is
// disallowed.
var ErrInvalidAmount = errors.New("invalid amount")

// Amount is a fixed-point monetary quantity.
type Amount struct {
	dec decimal.Decimal
}

// Zero is the additive identity.
var Zero = Amount{}

// FromDecimal wraps an existing decimal as an Amount.
func FromDecimal(d decimal.Decimal) Amount {
	return Amount{dec: d}
}

// FromFloat converts a binary float at the input boundary. It fails on NaN
// and infinities rather than producing a garbage amount.
func FromFloat(f float64) (Amount, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return Zero, fmt.Errorf("%w: non-finite value %v", ErrInvalidAmount, f)
	}
	return Amount{dec: decimal.NewFromFloat(f)}, nil
}

// Parse coerces loosely-typed input (string, float64, int, nil) into an
// Amount. This is the single entry point for untrusted numeric fields.
func Parse(v any) (Amount, error) {
	switch t := v.(type) {
	case nil:
		return Zero, fmt.Errorf("%w: nil", ErrInvalidAmount)
	case Amount:
		return t, nil
	case decimal.Decimal:
		return Amount{dec: t}, nil
	case float64:
		return FromFloat(t)
	case float32:
		return FromFloat(float64(t))
	case int:
		return Amount{dec: decimal.NewFromInt(int64(t))}, nil
	case int64:
		return Amount{dec: decimal.NewFromInt(t)}, nil
	case string:
		s := strings.TrimSpace(t)
		if s == "" {
			return Zero, fmt.Errorf("%w: empty string", ErrInvalidAmount)
		}
		d, err := decimal.NewFromString(s)
		if err != nil {
			return Zero, fmt.Errorf("%w: %q", ErrInvalidAmount, s)
		}
		return Amount{dec: d}, nil
	default:
		return Zero, fmt.Errorf("%w: unsupported type %T", ErrInvalidAmount, v)
	}
}

// ParseNonNegative is Parse plus a sign check, for fields where negative
// values are disallowed (quantity, unitPrice, shipping, taxRate).
func ParseNonNegative(v any) (Amount, error) {
	a, err := Parse(v)
	if err != nil {
		return Zero, err
	}
	if a.IsNegative() {
		return Zero, fmt.Errorf("%w: negative value %s", ErrInvalidAmount, a)
	}
	return a, nil
}

// Add returns a + b at full precision.
func (a Amount) Add(b Amount) Amount {
	return Amount{dec: a.dec.Add(b.dec)}
}

// Sub returns a - b at full precision.
func (a Amount) Sub(b Amount) Amount {
	return Amount{dec: a.dec.Sub(b.dec)}
}

// Mul returns a * b at full precision (quantity × unitPrice).
func (a Amount) Mul(b Amount) Amount {
	return Amount{dec: a.dec.Mul(b.dec)}
}

// ApplyRate applies a percentage rate and rounds to minor units:
// round2(a * rate / 100).
func (a Amount) ApplyRate(rate Amount) Amount {
	return Amount{dec: a.dec.Mul(rate.dec).Div(decimal.NewFromInt(100))}.Round2()
}

// Round2 rounds to 2 decimal places. Ties round half away from zero, which is
// half-up for the non-negative amounts the totals rules round (line amounts,
// taxes, shipping, discounts). Negative inputs only occur on an over-discounted
// grand total, where -1.005 rounds to -1.01; such drafts are rejected at save
// time regardless.
func (a Amount) Round2() Amount {
	return Amount{dec: a.dec.Round(2)}
}

// Cmp returns -1, 0, or +1 comparing a against b.
func (a Amount) Cmp(b Amount) int {
	return a.dec.Cmp(b.dec)
}

// Equal reports numeric equality (scale-insensitive).
func (a Amount) Equal(b Amount) bool {
	return a.dec.Equal(b.dec)
}

// IsNegative reports whether the amount is below zero.
func (a Amount) IsNegative() bool {
	return a.dec.IsNegative()
}

// IsZero reports whether the amount equals zero.
func (a Amount) IsZero() bool {
	return a.dec.IsZero()
}

// Decimal exposes the underlying decimal for persistence drivers.
func (a Amount) Decimal() decimal.Decimal {
	return a.dec
}

// Float64 is for display/export only, never for arithmetic.
func (a Amount) Float64() float64 {
	f, _ := a.dec.Float64()
	return f
}

// String renders the amount with exactly 2 decimal places.
func (a Amount) String() string {
	return a.dec.StringFixed(2)
}

// MarshalJSON emits the amount as a decimal string with 2 places, matching
// the wire convention for money fields.
func (a Amount) MarshalJSON() ([]byte, error) {
	return []byte(`"` + a.String() + `"`), nil
}

// UnmarshalJSON accepts both quoted decimal strings and bare JSON numbers.
func (a *Amount) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	if s == "null" || s == "" {
		*a = Zero
		return nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return fmt.Errorf("%w: %q", ErrInvalidAmount, s)
	}
	*a = Amount{dec: d}
	return nil
}
