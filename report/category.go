package report

import (
	"sort"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"nomadguide/model"
)

const (
	UncategorizedName  = "Uncategorized"
	UncategorizedColor = "#757575"
	UncategorizedIcon  = "help-circle"
)

// CategoryTotal is the spend attributed to one category. The
// uncategorized bucket has a nil CategoryID.
type CategoryTotal struct {
	CategoryID uuid.UUID       `json:"categoryId"`
	Name       string          `json:"name"`
	Icon       string          `json:"icon"`
	Color      string          `json:"color"`
	Total      decimal.Decimal `json:"total"`
	Count      int             `json:"count"`
}

// SpendingByCategory totals outcomes per category, largest first. Outcomes
// without a known category go to the uncategorized bucket and buckets
// with nothing spent are left out.
func SpendingByCategory(outcomes []model.Transaction, categories []model.Category) []CategoryTotal {
	buckets := make(map[uuid.UUID]*CategoryTotal, len(categories)+1)
	for _, c := range categories {
		buckets[c.ID] = &CategoryTotal{
			CategoryID: c.ID,
			Name:       c.Name,
			Icon:       c.Icon,
			Color:      c.Color,
			Total:      decimal.Zero,
		}
	}
	uncategorized := &CategoryTotal{
		CategoryID: uuid.Nil,
		Name:       UncategorizedName,
		Icon:       UncategorizedIcon,
		Color:      UncategorizedColor,
		Total:      decimal.Zero,
	}

	for _, tx := range outcomes {
		bucket := uncategorized
		if tx.CategoryID != nil {
			if b, ok := buckets[*tx.CategoryID]; ok {
				bucket = b
			}
		}
		amount, _ := tx.AmountOrZero()
		bucket.Total = bucket.Total.Add(amount)
		bucket.Count++
	}

	out := make([]CategoryTotal, 0, len(buckets)+1)
	for _, b := range buckets {
		if b.Total.IsPositive() {
			out = append(out, *b)
		}
	}
	if uncategorized.Total.IsPositive() {
		out = append(out, *uncategorized)
	}

	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].Total.Equal(out[j].Total) {
			return out[i].Total.GreaterThan(out[j].Total)
		}
		return out[i].Name < out[j].Name
	})
	return out
}

// CurrencyTotal is the amount recorded in one currency, unconverted.
type CurrencyTotal struct {
	Currency string          `json:"currency"`
	Total    decimal.Decimal `json:"total"`
	Count    int             `json:"count"`
}

const maxCurrencies = 10

// CurrencyDistribution totals transactions per currency and keeps the
// ten largest. A blank currency counts as USD.
func CurrencyDistribution(txs []model.Transaction) []CurrencyTotal {
	totals := make(map[string]*CurrencyTotal)
	for _, tx := range txs {
		code := tx.Currency
		if code == "" {
			code = "USD"
		}
		ct, ok := totals[code]
		if !ok {
			ct = &CurrencyTotal{Currency: code, Total: decimal.Zero}
			totals[code] = ct
		}
		amount, _ := tx.AmountOrZero()
		ct.Total = ct.Total.Add(amount)
		ct.Count++
	}

	out := make([]CurrencyTotal, 0, len(totals))
	for _, ct := range totals {
		out = append(out, *ct)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].Total.Equal(out[j].Total) {
			return out[i].Total.GreaterThan(out[j].Total)
		}
		return out[i].Currency < out[j].Currency
	})
	if len(out) > maxCurrencies {
		out = out[:maxCurrencies]
	}
	return out
}
