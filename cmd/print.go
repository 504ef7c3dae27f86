package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"dexscout/models"

	"github.com/fatih/color"
	"github.com/shopspring/decimal"
)

func printRecords(w io.Writer, title string, recs []models.Record) error {
	if jsonFlag {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(recs)
	}

	fmt.Fprintln(w, color.New(color.Bold).Sprint(title))
	fmt.Fprintln(w, strings.Repeat("─", 96))
	if len(recs) == 0 {
		fmt.Fprintln(w, color.YellowString("no records"))
		fmt.Fprintln(w)
		return nil
	}

	fmt.Fprintf(w, "%-3s %-24s %-16s %10s %14s %14s  %s\n", "#", "PAIR", "PRICE", "24H", "LIQUIDITY", "VOLUME", "ADDRESS")
	for i, r := range recs {
		change := fmt.Sprintf("%+.2f%%", r.PriceChange24h)
		switch {
		case r.PriceChange24h > 0:
			change = color.GreenString("%10s", change)
		case r.PriceChange24h < 0:
			change = color.RedString("%10s", change)
		default:
			change = fmt.Sprintf("%10s", change)
		}
		name := truncate(r.PairName(), 24)
		if r.Incomplete {
			name = color.YellowString("%-24s", name)
		} else {
			name = fmt.Sprintf("%-24s", name)
		}
		fmt.Fprintf(w, "%-3d %s %-16s %s %14s %14s  %s\n",
			i+1, name, price(r.Price), change, usd(r.Liquidity), usd(r.Volume24h), r.Address)
	}
	fmt.Fprintln(w)
	return nil
}

func printChains(w io.Writer, recs []models.Record) error {
	if jsonFlag {
		return json.NewEncoder(w).Encode(recs)
	}
	for _, r := range recs {
		fmt.Fprintf(w, "%-16s %s\n", color.CyanString(r.Address), r.Name)
	}
	return nil
}

func price(f float64) string {
	d := decimal.NewFromFloat(f)
	if d.Abs().LessThan(decimal.NewFromInt(1)) {
		return "$" + d.Round(10).String()
	}
	return "$" + d.StringFixed(4)
}

func usd(f float64) string {
	return "$" + decimal.NewFromFloat(f).Round(0).String()
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
