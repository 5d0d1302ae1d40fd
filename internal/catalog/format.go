package catalog

import (
	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

var currencySymbols = map[string]string{
	"TRY": "₺",
	"USD": "$",
	"EUR": "€",
	"GBP": "£",
}

// FormatPrice renders a price the way Turkish listings show it: currency
// symbol first, dot grouping, no forced fraction digits.
func FormatPrice(price float64, code string) string {
	p := message.NewPrinter(language.Turkish)
	amount := p.Sprint(number.Decimal(price, number.MaxFractionDigits(2)))
	if sym, ok := currencySymbols[code]; ok {
		return sym + amount
	}
	if unit, err := currency.ParseISO(code); err == nil {
		return unit.String() + " " + amount
	}
	return amount
}
