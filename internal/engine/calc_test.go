package engine

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func money(t *testing.T, s string) decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(s)
	require.NoError(t, err)
	return d
}

func TestRoundMoney(t *testing.T) {
	t.Parallel()

	d, err := RoundMoney("150.005")
	require.NoError(t, err)
	assert.Equal(t, "150.01", d.StringFixed(2))

	d, err = RoundMoney("1000")
	require.NoError(t, err)
	assert.Equal(t, "1000.00", d.StringFixed(2))

	d, err = RoundMoney("  12.3  ")
	require.NoError(t, err)
	assert.Equal(t, "12.30", d.StringFixed(2))
}

func TestRoundMoneyIdempotent(t *testing.T) {
	t.Parallel()

	for _, raw := range []string{"0", "0.005", "99.999", "-3.14159", "123456789.123"} {
		once, err := RoundMoney(raw)
		require.NoError(t, err)
		twice, err := RoundMoney(once.String())
		require.NoError(t, err)
		assert.True(t, once.Equal(twice), "RoundMoney not idempotent for %q: %s != %s", raw, once, twice)
	}
}

func TestRoundMoneyInvalid(t *testing.T) {
	t.Parallel()

	for _, raw := range []string{"", "abc", "12.3.4", "NaN"} {
		_, err := RoundMoney(raw)
		assert.True(t, IsKind(err, KindInvalidNumber), "expected InvalidNumber for %q", raw)
	}
}

func TestProfitLossAmount(t *testing.T) {
	t.Parallel()

	got := ProfitLossAmount(money(t, "100.00"), money(t, "120.00"), 10)
	assert.Equal(t, "200.00", got.StringFixed(2))

	got = ProfitLossAmount(money(t, "120.00"), money(t, "100.00"), 10)
	assert.Equal(t, "-200.00", got.StringFixed(2))

	// Zero quantity is not special-cased.
	got = ProfitLossAmount(money(t, "100.00"), money(t, "120.00"), 0)
	assert.True(t, got.IsZero())
}

func TestProfitLossPercent(t *testing.T) {
	t.Parallel()

	got := ProfitLossPercent(money(t, "100.00"), money(t, "120.00"))
	assert.Equal(t, "20.00", got.StringFixed(2))

	got = ProfitLossPercent(money(t, "150.00"), money(t, "100.00"))
	assert.Equal(t, "-33.33", got.StringFixed(2))

	// Zero entry price is defined total, not a division failure.
	got = ProfitLossPercent(decimal.Zero, money(t, "120.00"))
	assert.True(t, got.IsZero())
}

func TestProfitLossPercentMatchesRoundMoney(t *testing.T) {
	t.Parallel()

	entry := money(t, "37.50")
	exit := money(t, "41.13")

	want, err := RoundMoney(exit.Sub(entry).Div(entry).Mul(decimal.NewFromInt(100)).String())
	require.NoError(t, err)
	assert.True(t, ProfitLossPercent(entry, exit).Equal(want))
}

func TestInvestmentFromEntry(t *testing.T) {
	t.Parallel()

	inv, ok := InvestmentFromEntry("100.00", "10")
	assert.True(t, ok)
	assert.Equal(t, "1000.00", inv.StringFixed(2))

	inv, ok = InvestmentFromEntry("2.505", "3")
	assert.True(t, ok)
	assert.Equal(t, "7.52", inv.StringFixed(2))
}

func TestInvestmentFromEntryNoUpdate(t *testing.T) {
	t.Parallel()

	// A transient empty or zero field must not force investment to zero:
	// not-ok means "leave the stored value untouched".
	cases := []struct{ price, qty string }{
		{"", "10"},
		{"100", ""},
		{"0", "10"},
		{"100", "0"},
		{"-5", "10"},
		{"abc", "10"},
		{"100", "x"},
	}
	for _, c := range cases {
		_, ok := InvestmentFromEntry(c.price, c.qty)
		assert.False(t, ok, "expected no update for price=%q qty=%q", c.price, c.qty)
	}
}

func TestNiftyReturn(t *testing.T) {
	t.Parallel()

	ret, ok := NiftyReturn("24450", "25722")
	assert.True(t, ok)
	assert.Equal(t, "5.20", ret.StringFixed(2))

	ret, ok = NiftyReturn("25722", "24450")
	assert.True(t, ok)
	assert.Equal(t, "-4.95", ret.StringFixed(2))
}

func TestNiftyReturnBlank(t *testing.T) {
	t.Parallel()

	for _, c := range []struct{ from, to string }{
		{"", "25722"},
		{"24450", ""},
		{"0", "25722"},
		{"24450", "0"},
		{"n/a", "25722"},
	} {
		_, ok := NiftyReturn(c.from, c.to)
		assert.False(t, ok, "expected blank for from=%q close=%q", c.from, c.to)
	}
}
