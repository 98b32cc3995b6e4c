package currency

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConvert_SARIdentity(t *testing.T) {
	rates := DefaultRates()

	for _, amount := range []string{"0", "0.01", "100", "350.5", "999999.99"} {
		d := decimal.RequireFromString(amount)
		got, err := Convert(d, SAR, rates)
		require.NoError(t, err)
		assert.True(t, d.Equal(got), "SAR conversion must be identity, got %s for %s", got, d)
	}
}

func TestConvert_USD(t *testing.T) {
	rates := DefaultRates() // divisor 3.75

	got, err := Convert(decimal.NewFromInt(375), USD, rates)
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(100).Equal(got), "375 SAR / 3.75 = 100 USD, got %s", got)

	// Rounded to 2 decimal places.
	got, err = Convert(decimal.NewFromInt(100), USD, rates)
	require.NoError(t, err)
	assert.Equal(t, "26.67", got.String())
}

func TestConvert_USDShrinksAmount(t *testing.T) {
	// With a divisor above 1, converted amounts are strictly smaller.
	rates := DefaultRates()
	for _, amount := range []string{"1", "37.5", "4500"} {
		d := decimal.RequireFromString(amount)
		got, err := Convert(d, USD, rates)
		require.NoError(t, err)
		assert.True(t, got.LessThan(d), "expected %s USD < %s SAR", got, d)
	}
}

func TestConvert_YERRoundsToWhole(t *testing.T) {
	rates := DefaultRates() // multiplier 145

	got, err := Convert(decimal.RequireFromString("10.5"), YER, rates)
	require.NoError(t, err)
	assert.Equal(t, "1523", got.String()) // 10.5 * 145 = 1522.5, rounds up
	assert.True(t, got.IsInteger())
}

func TestConvert_InvalidRates(t *testing.T) {
	tests := []struct {
		name   string
		rates  Rates
		target Currency
	}{
		{"zero divisor", Rates{USDDivisor: decimal.Zero, YERMultiplier: decimal.NewFromInt(145)}, USD},
		{"negative divisor", Rates{USDDivisor: decimal.NewFromInt(-1), YERMultiplier: decimal.NewFromInt(145)}, USD},
		{"zero multiplier", Rates{USDDivisor: decimal.NewFromInt(4), YERMultiplier: decimal.Zero}, YER},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Convert(decimal.NewFromInt(100), tt.target, tt.rates)
			require.ErrorIs(t, err, ErrInvalidRate)
		})
	}
}

func TestConvert_UnknownCurrency(t *testing.T) {
	_, err := Convert(decimal.NewFromInt(100), Currency("EUR"), DefaultRates())
	require.ErrorIs(t, err, ErrUnknownCurrency)
}

func TestDisplay_FallsBackToSAR(t *testing.T) {
	broken := Rates{USDDivisor: decimal.Zero, YERMultiplier: decimal.Zero}

	amount := decimal.NewFromInt(200)
	got := Display(amount, USD, broken)
	assert.True(t, amount.Equal(got), "broken rates must degrade to identity")
}

func TestRates_Validate(t *testing.T) {
	require.NoError(t, DefaultRates().Validate())
	require.ErrorIs(t, Rates{}.Validate(), ErrInvalidRate)
}

func TestCurrency_IsValid(t *testing.T) {
	assert.True(t, SAR.IsValid())
	assert.True(t, USD.IsValid())
	assert.True(t, YER.IsValid())
	assert.False(t, Currency("EUR").IsValid())
	assert.False(t, Currency("").IsValid())
}
