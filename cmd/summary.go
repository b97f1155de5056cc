package cmd

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"nomadguide/balance"
	"nomadguide/currency"
	"nomadguide/model"
	"nomadguide/report"
)

const dateLayout = "2006-01-02"

// csvHeader is the expected column order of a transactions file.
var csvHeader = []string{"date", "type", "amount", "currency", "category", "description"}

type summaryOptions struct {
	input    string
	name     string
	budget   string
	currency string
	start    string
	end      string
	asOf     string
	offline  bool
	asJSON   bool
}

func summaryCommand() *cobra.Command {
	opts := &summaryOptions{}
	cmd := &cobra.Command{
		Use:     "summary",
		Short:   "summarize a trip from a CSV of transactions",
		Long:    `Reads a trip's transactions from a CSV file (` + strings.Join(csvHeader, ",") + `) and prints its balance, budget status and spending by category.`,
		Example: `nomadguide summary --input lisbon.csv --budget 1500 --currency EUR --start 2026-06-01 --end 2026-06-14`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSummary(cmd, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.input, "input", "i", "", "csv input file path (required)")
	cmd.Flags().StringVar(&opts.name, "name", "trip", "trip name")
	cmd.Flags().StringVar(&opts.budget, "budget", "0", "initial budget")
	cmd.Flags().StringVar(&opts.currency, "currency", currency.DefaultBase, "trip currency")
	cmd.Flags().StringVar(&opts.start, "start", "", "trip start date, YYYY-MM-DD (required)")
	cmd.Flags().StringVar(&opts.end, "end", "", "trip end date, YYYY-MM-DD (required)")
	cmd.Flags().StringVar(&opts.asOf, "as-of", "", "compute as of this date instead of now")
	cmd.Flags().BoolVar(&opts.offline, "offline", false, "convert with the built-in rates instead of fetching")
	cmd.Flags().BoolVar(&opts.asJSON, "json", false, "print the summary as JSON")
	_ = cmd.MarkFlagRequired("input")
	_ = cmd.MarkFlagRequired("start")
	_ = cmd.MarkFlagRequired("end")

	return cmd
}

func runSummary(cmd *cobra.Command, opts *summaryOptions) error {
	trip, err := opts.trip()
	if err != nil {
		return err
	}
	now := time.Now()
	if opts.asOf != "" {
		if now, err = time.Parse(dateLayout, opts.asOf); err != nil {
			return fmt.Errorf("invalid --as-of: %w", err)
		}
	}

	inputFile, err := os.Open(opts.input)
	if err != nil {
		return err
	}
	defer inputFile.Close()
	rows, err := csv.NewReader(inputFile).ReadAll()
	if err != nil {
		return err
	}

	categories := model.DefaultCategories(trip.ID)
	txs, err := ParseTransactionsCSV(rows, trip, categories)
	if err != nil {
		return fmt.Errorf("failed to parse CSV: %w", err)
	}

	var warnings []balance.Warning
	table := currency.OfflineTable()
	if !opts.offline && needsConversion(trip.Currency, txs) {
		cfg, log, err := setup()
		if err != nil {
			return err
		}
		provider, closeRates := openRates(cfg, log)
		defer closeRates()
		res := provider.GetRates(cmd.Context(), false)
		table = res.Table
		if !res.Success {
			warnings = append(warnings, balance.Warning{
				Kind:    balance.WarningRatesFallback,
				Message: "live exchange rates unavailable: " + res.Error,
			})
		}
	}
	txs, err = balance.NormalizeCurrency(trip.Currency, txs, table)
	if err != nil {
		return err
	}

	summary, err := report.Summarize(report.Input{
		Trip:       trip,
		Incomes:    model.FilterByType(txs, model.Income),
		Outcomes:   model.FilterByType(txs, model.Outcome),
		Categories: categories,
	}, now, balance.DefaultThresholds())
	if err != nil {
		return err
	}
	summary.Warnings = append(summary.Warnings, warnings...)

	if opts.asJSON {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(summary)
	}
	printSummary(cmd.OutOrStdout(), trip.Name, summary)
	return nil
}

func (o *summaryOptions) trip() (model.Trip, error) {
	budget, err := decimal.NewFromString(o.budget)
	if err != nil {
		return model.Trip{}, fmt.Errorf("invalid --budget %q: %w", o.budget, err)
	}
	start, err := time.Parse(dateLayout, o.start)
	if err != nil {
		return model.Trip{}, fmt.Errorf("invalid --start: %w", err)
	}
	end, err := time.Parse(dateLayout, o.end)
	if err != nil {
		return model.Trip{}, fmt.Errorf("invalid --end: %w", err)
	}
	code := strings.ToUpper(o.currency)
	if !currency.ValidCode(code) {
		return model.Trip{}, fmt.Errorf("invalid --currency %q", o.currency)
	}
	return model.Trip{
		ID:            uuid.New(),
		Name:          o.name,
		StartDate:     start,
		EndDate:       end,
		InitialBudget: budget,
		Currency:      code,
	}, nil
}

func needsConversion(target string, txs []model.Transaction) bool {
	for _, tx := range txs {
		if tx.Currency != "" && tx.Currency != target {
			return true
		}
	}
	return false
}

// ParseTransactionsCSV parses CSV content into transactions of trip. The
// first row is a header. An empty amount is kept as missing, an empty
// currency means the trip currency and a category is matched by name,
// case-insensitively, against categories of the same type.
func ParseTransactionsCSV(csvContent [][]string, trip model.Trip, categories []model.Category) ([]model.Transaction, error) {
	if len(csvContent) == 0 {
		return nil, fmt.Errorf("CSV is empty")
	}

	// skip the header row
	dataRows := csvContent[1:]

	txs := make([]model.Transaction, 0, len(dataRows))
	for i, row := range dataRows {
		line := i + 2
		if len(row) != len(csvHeader) {
			return nil, fmt.Errorf("row %d: expected %d columns, but got %d", line, len(csvHeader), len(row))
		}

		date, err := parseDate(row[0])
		if err != nil {
			return nil, fmt.Errorf("row %d: invalid date %q: %w", line, row[0], err)
		}
		txType := model.TransactionType(strings.ToLower(strings.TrimSpace(row[1])))
		if !txType.Valid() {
			return nil, fmt.Errorf("row %d: type must be income or outcome, got %q", line, row[1])
		}

		tx := model.Transaction{
			ID:          uuid.New(),
			TripID:      trip.ID,
			Type:        txType,
			Currency:    strings.ToUpper(strings.TrimSpace(row[3])),
			Description: strings.TrimSpace(row[5]),
			Date:        date,
		}
		if raw := strings.TrimSpace(row[2]); raw != "" {
			amount, err := decimal.NewFromString(raw)
			if err != nil {
				return nil, fmt.Errorf("row %d: failed to convert amount %q: %w", line, raw, err)
			}
			tx.Amount = model.Amount(amount)
		}
		if tx.Currency == "" {
			tx.Currency = trip.Currency
		}
		if name := strings.TrimSpace(row[4]); name != "" {
			for _, c := range categories {
				if c.Type == txType && strings.EqualFold(c.Name, name) {
					id := c.ID
					tx.CategoryID = &id
					break
				}
			}
		}
		txs = append(txs, tx)
	}
	return txs, nil
}

func parseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(dateLayout, s); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, s)
}

func printSummary(w io.Writer, name string, s report.Summary) {
	money := func(d decimal.Decimal) string {
		return currency.Format(d, s.Currency, currency.DefaultFormat)
	}
	fmt.Fprintf(w, "%s (%s)\n", name, s.Currency)
	fmt.Fprintf(w, "  budget:             %s\n", money(s.InitialBudget))
	fmt.Fprintf(w, "  current balance:    %s [%s]\n", money(s.CurrentBalance), s.Status)
	fmt.Fprintf(w, "  projected balance:  %s\n", money(s.ProjectedBalance))
	fmt.Fprintf(w, "  budget used:        %s%%\n", s.BudgetUsage.StringFixed(1))
	fmt.Fprintf(w, "  daily average:      %s\n", money(s.DailyAverageSpend))
	fmt.Fprintf(w, "  remaining per day:  %s\n", money(s.RemainingDailyBudget))
	fmt.Fprintf(w, "  progress:           %d%% (%d of %d days left)\n", s.ProgressPercent, s.DaysRemaining, s.DurationDays)

	if len(s.ByCategory) > 0 {
		fmt.Fprintln(w, "spending by category:")
		for _, c := range s.ByCategory {
			fmt.Fprintf(w, "  %-16s %12s  (%d)\n", c.Name, money(c.Total), c.Count)
		}
	}
	for _, warn := range s.Warnings {
		fmt.Fprintf(w, "warning: %s\n", warn.Message)
	}
}
