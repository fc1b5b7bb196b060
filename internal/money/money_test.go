package money

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name  string
		input any
		want  string
		ok    bool
	}{
		{"decimal string", "12.34", "12.34", true},
		{"integer string", "7", "7.00", true},
		{"padded string", "  7.5 ", "7.50", true},
		{"float", 99.99, "99.99", true},
		{"int", 100, "100.00", true},
		{"negative string", "-3.50", "-3.50", true},
		{"empty string", "", "", false},
		{"garbage string", "twelve", "", false},
		{"nil", nil, "", false},
		{"bool", true, "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse(tt.input)
			if !tt.ok {
				require.ErrorIs(t, err, ErrInvalidAmount)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.String())
		})
	}
}

func TestParseRejectsNonFinite(t *testing.T) {
	for _, f := range []float64{math.NaN(), math.Inf(1), math.Inf(-1)} {
		_, err := Parse(f)
		assert.ErrorIs(t, err, ErrInvalidAmount)
	}
}

func TestParseNonNegative(t *testing.T) {
	_, err := ParseNonNegative("-0.01")
	require.ErrorIs(t, err, ErrInvalidAmount)

	a, err := ParseNonNegative("0.00")
	require.NoError(t, err)
	assert.True(t, a.IsZero())
}

func TestRound2HalfUp(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"1.005", "1.01"},
		{"1.004", "1.00"},
		{"2.675", "2.68"},
		{"0.125", "0.13"},
		{"10", "10.00"},
		// negative ties round away from zero; only reachable on an
		// over-discounted grand total
		{"-1.005", "-1.01"},
		{"-1.004", "-1.00"},
	}
	for _, tt := range tests {
		a, err := Parse(tt.in)
		require.NoError(t, err)
		assert.Equal(t, tt.want, a.Round2().String(), "round2(%s)", tt.in)
	}
}

func TestArithmetic(t *testing.T) {
	a, _ := Parse("10.10")
	b, _ := Parse("0.90")

	assert.Equal(t, "11.00", a.Add(b).String())
	assert.Equal(t, "9.20", a.Sub(b).String())
	assert.Equal(t, "9.09", a.Mul(b).Round2().String())
	assert.Equal(t, 1, a.Cmp(b))
	assert.Equal(t, -1, b.Cmp(a))
	assert.True(t, a.Equal(a.Add(Zero)))
}

func TestApplyRate(t *testing.T) {
	amount, _ := Parse("200")
	rate, _ := Parse("13")
	assert.Equal(t, "26.00", amount.ApplyRate(rate).String())

	small, _ := Parse("0.10")
	assert.Equal(t, "0.01", small.ApplyRate(rate).String()) // 0.013 rounds up
}

func TestJSONRoundTrip(t *testing.T) {
	a, _ := Parse("42.50")
	b, err := json.Marshal(a)
	require.NoError(t, err)
	assert.Equal(t, `"42.50"`, string(b))

	var back Amount
	require.NoError(t, json.Unmarshal(b, &back))
	assert.True(t, a.Equal(back))

	// bare JSON numbers are accepted too
	require.NoError(t, json.Unmarshal([]byte(`19.99`), &back))
	assert.Equal(t, "19.99", back.String())
}
