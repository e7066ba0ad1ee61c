package catalog

import (
	"fmt"

	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"

	"github.com/sneakify/feed-adapter/internal/market"
)

// FormatError is returned when a market's locale/currency pairing cannot be
// rendered. A raw unformatted number is never emitted instead.
type FormatError struct {
	Country string
	Err     error
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("price: formatting for %s: %v", e.Country, e.Err)
}

func (e *FormatError) Unwrap() error { return e.Err }

// noPrice is persisted when the feed carries no usable price.
const noPrice = "-"

// PriceFormatter renders raw feed prices as locale/currency strings using the
// market registry's profiles.
type PriceFormatter struct {
	registry *market.Registry
}

func NewPriceFormatter(registry *market.Registry) *PriceFormatter {
	return &PriceFormatter{registry: registry}
}

// Format renders price for a country market with locale grouping and symbol,
// minimum 0 and maximum 2 fraction digits (zero-decimal currencies always 0).
// A zero or absent price renders as "-".
func (f *PriceFormatter) Format(price decimal.Decimal, country string) (string, error) {
	if price.IsZero() {
		return noPrice, nil
	}

	prof, err := f.registry.Profile(country)
	if err != nil {
		return "", err
	}

	tag, err := language.Parse(prof.LocaleTag)
	if err != nil {
		return "", &FormatError{Country: country, Err: err}
	}
	unit, err := currency.ParseISO(prof.CurrencyCode)
	if err != nil {
		return "", &FormatError{Country: country, Err: err}
	}

	maxFraction := 2
	if scale, _ := currency.Standard.Rounding(unit); scale == 0 {
		maxFraction = 0
	}

	p := message.NewPrinter(tag)
	value, _ := price.Float64()
	amount := p.Sprint(number.Decimal(value,
		number.MinFractionDigits(0),
		number.MaxFractionDigits(maxFraction)))
	symbol := p.Sprint(currency.Symbol(unit))

	if prof.SymbolSuffix {
		return amount + " " + symbol, nil
	}
	return symbol + amount, nil
}
