package domain

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestMoney_ToDecimal(t *testing.T) {
	m := NewMoney(10_500_000, "USD") // 10.50 USD
	d := m.ToDecimal()
	assert.Equal(t, "10.5", d.String())
}

func TestFromDecimal(t *testing.T) {
	d := decimal.NewFromFloat(10.50)
	micros := FromDecimal(d)
	assert.Equal(t, int64(10_500_000), micros)
}

func TestMoney_Add(t *testing.T) {
	a := NewMoney(100_000_000, "USD")
	b := NewMoney(250_500_000, "USD")

	sum, err := a.Add(b)
	assert.NoError(t, err)
	assert.Equal(t, int64(350_500_000), sum.Amount)
	assert.Equal(t, "USD", sum.Currency)
}

func TestMoney_Add_CurrencyMismatch(t *testing.T) {
	a := NewMoney(100_000_000, "USD")
	b := NewMoney(100_000_000, "EUR")

	_, err := a.Add(b)
	assert.Error(t, err)
}

func TestSumMicros(t *testing.T) {
	assert.Equal(t, int64(0), SumMicros(nil))
	assert.Equal(t, int64(0), SumMicros([]int64{0, 0}))
	assert.Equal(t, int64(300_000_000), SumMicros([]int64{100_000_000, 200_000_000}))

	// Large values that would lose precision in float64.
	large := []int64{9_007_199_254_740_993, 1, 1}
	assert.Equal(t, int64(9_007_199_254_740_995), SumMicros(large))
}

func TestMoney_String(t *testing.T) {
	m := NewMoney(1_234_560, "EUR")
	assert.Equal(t, "1.23 EUR", m.String())
}
