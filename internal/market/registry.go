package market

import (
	"errors"
	"fmt"
)

// ErrUnknownCountry is returned when a country code has no registered profile.
// Hitting it at runtime means the operator configured a country the registry
// does not cover; Validate at startup makes that impossible.
var ErrUnknownCountry = errors.New("market: country not registered")

// Profile describes the locale, currency and feed language of one country market.
type Profile struct {
	CountryCode     string
	LocaleTag       string // BCP 47, drives number/currency rendering
	CurrencyCode    string // ISO 4217
	FeedLanguageTag string // upstream filter=language(...) value

	// SymbolSuffix places the currency symbol after the amount, as the
	// locale writes prices (e.g. "129,99 €" in France).
	SymbolSuffix bool
}

// profiles is the static market table. Per-market behavior is data here,
// never branching at call sites.
var profiles = map[string]Profile{
	"AU": {CountryCode: "AU", LocaleTag: "en-AU", CurrencyCode: "AUD", FeedLanguageTag: "en-GB"},
	"CA": {CountryCode: "CA", LocaleTag: "en-CA", CurrencyCode: "CAD", FeedLanguageTag: "en-GB"},
	"FR": {CountryCode: "FR", LocaleTag: "fr-FR", CurrencyCode: "EUR", FeedLanguageTag: "fr", SymbolSuffix: true},
	"GB": {CountryCode: "GB", LocaleTag: "en-GB", CurrencyCode: "GBP", FeedLanguageTag: "en-GB"},
	"JP": {CountryCode: "JP", LocaleTag: "ja-JP", CurrencyCode: "JPY", FeedLanguageTag: "ja"},
	"KR": {CountryCode: "KR", LocaleTag: "ko-KR", CurrencyCode: "KRW", FeedLanguageTag: "ko"},
	"MX": {CountryCode: "MX", LocaleTag: "es-MX", CurrencyCode: "MXN", FeedLanguageTag: "es-419"},
	"MY": {CountryCode: "MY", LocaleTag: "en-MY", CurrencyCode: "MYR", FeedLanguageTag: "en-GB"},
	"SG": {CountryCode: "SG", LocaleTag: "en-SG", CurrencyCode: "SGD", FeedLanguageTag: "en-GB"},
	"US": {CountryCode: "US", LocaleTag: "en-US", CurrencyCode: "USD", FeedLanguageTag: "en"},
}

// Registry resolves country codes to market profiles. It is immutable after
// construction.
type Registry struct {
	profiles map[string]Profile
}

// NewRegistry returns the registry backed by the built-in market table.
func NewRegistry() *Registry {
	return &Registry{profiles: profiles}
}

// Profile looks up the market profile for a country code.
func (r *Registry) Profile(countryCode string) (Profile, error) {
	p, ok := r.profiles[countryCode]
	if !ok {
		return Profile{}, fmt.Errorf("%w: %q", ErrUnknownCountry, countryCode)
	}
	return p, nil
}

// Validate confirms every configured country has a profile. Called once at
// startup so per-call lookups over the configured list are total.
func (r *Registry) Validate(countries []string) error {
	for _, cc := range countries {
		if _, ok := r.profiles[cc]; !ok {
			return fmt.Errorf("%w: %q", ErrUnknownCountry, cc)
		}
	}
	return nil
}
