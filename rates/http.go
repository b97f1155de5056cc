package rates

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"nomadguide/currency"
)

// latestResponse is the payload of exchangerate-api's /v4/latest endpoint.
type latestResponse struct {
	Base            string                     `json:"base"`
	TimeLastUpdated int64                      `json:"time_last_updated"`
	Rates           map[string]decimal.Decimal `json:"rates"`
}

type HTTPFetcher struct {
	url    string
	client *http.Client
}

func NewHTTPFetcher(url string, timeout time.Duration) *HTTPFetcher {
	return &HTTPFetcher{
		url:    url,
		client: &http.Client{Timeout: timeout},
	}
}

func (f *HTTPFetcher) Fetch(ctx context.Context) (currency.RateTable, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.url, nil)
	if err != nil {
		return currency.RateTable{}, fmt.Errorf("build rates request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := f.client.Do(req)
	if err != nil {
		return currency.RateTable{}, fmt.Errorf("fetch rates: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return currency.RateTable{}, fmt.Errorf("fetch rates: unexpected status %d", resp.StatusCode)
	}

	var body latestResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return currency.RateTable{}, fmt.Errorf("decode rates: %w", err)
	}
	if body.Base == "" || len(body.Rates) == 0 {
		return currency.RateTable{}, fmt.Errorf("decode rates: empty payload")
	}

	table := currency.RateTable{Base: body.Base, Rates: body.Rates}
	if body.TimeLastUpdated > 0 {
		table.UpdatedAt = time.Unix(body.TimeLastUpdated, 0).UTC()
	}
	return table, nil
}
