package currency

import (
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
	xcurrency "golang.org/x/text/currency"
)

// DefaultBase is the pivot currency of the upstream rate feed and the
// offline table.
const DefaultBase = "USD"

// Info describes a supported currency.
type Info struct {
	Code   string `json:"code"`
	Name   string `json:"name"`
	Symbol string `json:"symbol"`
}

var supported = []Info{
	{Code: "USD", Name: "US Dollar", Symbol: "$"},
	{Code: "EUR", Name: "Euro", Symbol: "€"},
	{Code: "GBP", Name: "British Pound", Symbol: "£"},
	{Code: "JPY", Name: "Japanese Yen", Symbol: "¥"},
	{Code: "CAD", Name: "Canadian Dollar", Symbol: "C$"},
	{Code: "AUD", Name: "Australian Dollar", Symbol: "A$"},
	{Code: "CHF", Name: "Swiss Franc", Symbol: "Fr"},
	{Code: "CNY", Name: "Chinese Yuan", Symbol: "¥"},
	{Code: "BRL", Name: "Brazilian Real", Symbol: "R$"},
	{Code: "MXN", Name: "Mexican Peso", Symbol: "$"},
	{Code: "INR", Name: "Indian Rupee", Symbol: "₹"},
	{Code: "KRW", Name: "South Korean Won", Symbol: "₩"},
	{Code: "SGD", Name: "Singapore Dollar", Symbol: "S$"},
	{Code: "NOK", Name: "Norwegian Krone", Symbol: "kr"},
	{Code: "SEK", Name: "Swedish Krona", Symbol: "kr"},
	{Code: "DKK", Name: "Danish Krone", Symbol: "kr"},
	{Code: "PLN", Name: "Polish Zloty", Symbol: "zł"},
	{Code: "CZK", Name: "Czech Koruna", Symbol: "Kč"},
	{Code: "HUF", Name: "Hungarian Forint", Symbol: "Ft"},
	{Code: "RUB", Name: "Russian Ruble", Symbol: "₽"},
}

var offlineRates = map[string]string{
	"USD": "1.0",
	"EUR": "0.85",
	"GBP": "0.73",
	"JPY": "110.0",
	"CAD": "1.25",
	"AUD": "1.35",
	"CHF": "0.92",
	"CNY": "6.45",
	"BRL": "5.20",
	"MXN": "20.0",
	"INR": "74.5",
	"KRW": "1180.0",
	"SGD": "1.35",
	"NOK": "8.5",
	"SEK": "8.8",
	"DKK": "6.3",
	"PLN": "3.9",
	"CZK": "21.5",
	"HUF": "295.0",
	"RUB": "73.5",
}

// zero-decimal currencies
var noMinorUnit = map[string]bool{
	"JPY": true,
	"KRW": true,
	"VND": true,
	"CLP": true,
	"ISK": true,
	"HUF": true,
}

var symbolAfter = map[string]bool{
	"EUR": true,
	"NOK": true,
	"SEK": true,
	"DKK": true,
	"PLN": true,
	"CZK": true,
	"HUF": true,
}

var codePattern = regexp.MustCompile(`^[A-Z]{3}$`)

// Supported returns the currencies offered for trips and transactions.
func Supported() []Info {
	out := make([]Info, len(supported))
	copy(out, supported)
	return out
}

func Lookup(code string) (Info, bool) {
	for _, info := range supported {
		if info.Code == code {
			return info, true
		}
	}
	return Info{}, false
}

func IsSupported(code string) bool {
	_, ok := Lookup(code)
	return ok
}

// ValidCode reports whether code is a well-formed, recognised ISO 4217 code.
func ValidCode(code string) bool {
	if !codePattern.MatchString(code) {
		return false
	}
	_, err := xcurrency.ParseISO(code)
	return err == nil
}

// OfflineTable is the USD based table used when no fetched or cached
// rates are available. Its zero UpdatedAt makes it always stale.
func OfflineTable() RateTable {
	rates := make(map[string]decimal.Decimal, len(offlineRates))
	for code, v := range offlineRates {
		rates[code] = decimal.RequireFromString(v)
	}
	return RateTable{Base: DefaultBase, Rates: rates}
}

// Precision is the number of minor-unit digits shown for code.
func Precision(code string) int32 {
	if noMinorUnit[code] {
		return 0
	}
	return 2
}

// Round rounds amount half away from zero to the precision of code.
func Round(amount decimal.Decimal, code string) decimal.Decimal {
	return amount.Round(Precision(code))
}

type FormatOptions struct {
	ShowSymbol bool
	ShowCode   bool
}

// DefaultFormat shows the symbol only.
var DefaultFormat = FormatOptions{ShowSymbol: true}

// Format renders amount for display in code.
func Format(amount decimal.Decimal, code string, opts FormatOptions) string {
	out := amount.StringFixed(Precision(code))

	if opts.ShowSymbol {
		symbol := code
		if info, ok := Lookup(code); ok {
			symbol = info.Symbol
		}
		if symbolAfter[code] {
			out = out + " " + symbol
		} else {
			out = symbol + out
		}
	}
	if opts.ShowCode {
		out = strings.TrimSpace(out + " " + code)
	}
	return out
}
