package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/Tiliavir/freshtrack/internal/tracker"
)

// printAging writes the aging report as a markdown table, CSV or JSON.
func printAging(w io.Writer, rows []tracker.AgingRow, format string) error {
	switch format {
	case "json":
		data, err := json.MarshalIndent(rows, "", "  ")
		if err != nil {
			return fmt.Errorf("error encoding JSON: %w", err)
		}
		fmt.Fprintln(w, string(data))
	case "csv":
		fmt.Fprintln(w, "id,number,client,age_days,status,amount,owed")
		for _, r := range rows {
			fmt.Fprintf(w, "%d,%s,%s,%d,%s,%s,%s\n",
				r.ID,
				csvEscape(r.Number),
				csvEscape(r.Client),
				r.Age,
				csvEscape(r.Status),
				r.Amount.StringFixed(2),
				r.Owed.StringFixed(2),
			)
		}
	case "md":
		if len(rows) == 0 {
			fmt.Fprintln(w, "No open invoices.")
			return nil
		}
		fmt.Fprintln(w, "| Number | Client | Age (days) | Status | Amount | Owed |")
		fmt.Fprintln(w, "|--------|--------|-----------:|--------|-------:|-----:|")
		for _, r := range rows {
			fmt.Fprintf(w, "| %s | %s | %d | %s | %s | %s |\n",
				r.Number, r.Client, r.Age, r.Status, r.Amount.StringFixed(2), r.Owed.StringFixed(2))
		}
	default:
		return fmt.Errorf("unknown format %q (want md, csv or json)", format)
	}
	return nil
}

// csvEscape wraps a field in quotes if it contains a comma, quote, or newline.
func csvEscape(s string) string {
	if !strings.ContainsAny(s, ",\"\n\r") {
		return s
	}
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}
