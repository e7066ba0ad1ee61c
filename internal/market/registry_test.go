package market

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProfile_Known(t *testing.T) {
	r := NewRegistry()

	p, err := r.Profile("JP")
	require.NoError(t, err)
	assert.Equal(t, "ja-JP", p.LocaleTag)
	assert.Equal(t, "JPY", p.CurrencyCode)
	assert.Equal(t, "ja", p.FeedLanguageTag)
	assert.False(t, p.SymbolSuffix)
}

func TestProfile_Unknown(t *testing.T) {
	r := NewRegistry()

	_, err := r.Profile("BR")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnknownCountry)
}

func TestValidate_DefaultCountryList(t *testing.T) {
	// The full operator list must be covered by the registry; a gap here is
	// a configuration error at startup, not a runtime one.
	countries := []string{"AU", "JP", "KR", "SG", "MY", "FR", "GB", "CA", "US", "MX"}

	require.NoError(t, NewRegistry().Validate(countries))
}

func TestValidate_RejectsUnregistered(t *testing.T) {
	err := NewRegistry().Validate([]string{"US", "ZZ"})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnknownCountry)
	assert.Contains(t, err.Error(), "ZZ")
}
