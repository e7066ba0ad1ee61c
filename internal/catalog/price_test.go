package catalog

import (
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sneakify/feed-adapter/internal/market"
)

func newFormatter() *PriceFormatter {
	return NewPriceFormatter(market.NewRegistry())
}

func TestFormat_ZeroPriceIsSentinel(t *testing.T) {
	got, err := newFormatter().Format(decimal.Zero, "US")
	require.NoError(t, err)
	assert.Equal(t, "-", got)
}

func TestFormat_USDFractional(t *testing.T) {
	got, err := newFormatter().Format(decimal.NewFromFloat(129.99), "US")
	require.NoError(t, err)
	assert.Equal(t, "$129.99", got)
}

func TestFormat_USDIntegralDropsFraction(t *testing.T) {
	got, err := newFormatter().Format(decimal.NewFromInt(150), "US")
	require.NoError(t, err)
	assert.Equal(t, "$150", got)
}

func TestFormat_JPYIntegerGrouping(t *testing.T) {
	got, err := newFormatter().Format(decimal.NewFromInt(12000), "JP")
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(got, "12,000"), "got %q", got)
	assert.NotContains(t, got, ".")
}

func TestFormat_EURSymbolAfterAmount(t *testing.T) {
	got, err := newFormatter().Format(decimal.NewFromFloat(129.99), "FR")
	require.NoError(t, err)
	assert.Equal(t, "129,99 €", got)
}

func TestFormat_UnknownCountry(t *testing.T) {
	_, err := newFormatter().Format(decimal.NewFromInt(10), "ZZ")
	require.Error(t, err)
	assert.ErrorIs(t, err, market.ErrUnknownCountry)
}
