package cmd

import (
	"encoding/json"
	"fmt"
	"slices"

	"github.com/spf13/cobra"

	"nomadguide/rates"
)

func ratesCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rates",
		Short: "print the current exchange rates",
		Long:  `Prints the exchange rate table the server would use, and whether it is live, cached or a fallback.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			refresh, _ := cmd.Flags().GetBool("refresh")
			asJSON, _ := cmd.Flags().GetBool("json")

			cfg, log, err := setup()
			if err != nil {
				return err
			}
			provider, closeRates := openRates(cfg, log)
			defer closeRates()

			res := provider.GetRates(cmd.Context(), refresh)
			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(res)
			}
			printRates(cmd, res)
			return nil
		},
	}

	cmd.Flags().BoolP("refresh", "r", false, "fetch even when the cached table is fresh")
	cmd.Flags().Bool("json", false, "print the result as JSON")

	return cmd
}

func printRates(cmd *cobra.Command, res rates.Result) {
	w := cmd.OutOrStdout()
	source := "live"
	switch {
	case res.Cached && res.Success:
		source = "cached"
	case res.Cached:
		source = "cached (fetch failed)"
	case !res.Success:
		source = "offline fallback"
	}
	fmt.Fprintf(w, "base %s, %s, updated %s", res.Table.Base, source, res.Table.UpdatedAt.Format("2006-01-02 15:04 MST"))
	if res.Stale {
		fmt.Fprint(w, ", stale")
	}
	fmt.Fprintln(w)
	if res.Error != "" {
		fmt.Fprintf(w, "error: %s\n", res.Error)
	}

	codes := make([]string, 0, len(res.Table.Rates))
	for code := range res.Table.Rates {
		codes = append(codes, code)
	}
	slices.Sort(codes)
	for _, code := range codes {
		fmt.Fprintf(w, "  %s %s\n", code, res.Table.Rates[code].String())
	}
}
