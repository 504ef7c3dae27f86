package report

import (
	"fmt"
	"strings"

	"dexscout/models"
)

const maxDetailed = 5

// Summary writes a deterministic analysis from the records alone. It is used
// whenever the generator is unavailable.
func Summary(in Input) string {
	var b strings.Builder
	chain := in.Chain
	if chain == "" {
		chain = "the selected chain"
	}

	fmt.Fprintf(&b, "## Summary\n\nThis report covers %d %s on %s.", len(in.Records), subject(in.Operation), chain)
	incomplete := 0
	for _, r := range in.Records {
		if r.Incomplete {
			incomplete++
		}
	}
	if incomplete > 0 {
		fmt.Fprintf(&b, " %d of them came back with missing fields.", incomplete)
	}
	b.WriteString("\n\n")

	n := len(in.Records)
	if n > maxDetailed {
		n = maxDetailed
	}
	for _, r := range in.Records[:n] {
		name := r.Name
		if name == "" {
			name = "Unknown"
		}
		fmt.Fprintf(&b, "### %s (%s)\n", name, r.PairName())
		fmt.Fprintf(&b, "- **Price**: %s\n", formatPrice(r.Price))
		fmt.Fprintf(&b, "- **Price Change (24h)**: %+.2f%%\n", r.PriceChange24h)
		fmt.Fprintf(&b, "- **Volume (24h)**: $%s\n", formatMoney(r.Volume24h))
		fmt.Fprintf(&b, "- **Liquidity**: $%s\n", formatMoney(r.Liquidity))
		fmt.Fprintf(&b, "- **Created**: %s\n", formatDate(r.CreatedAt))
		fmt.Fprintf(&b, "- **Red flags**: %s\n\n", redFlags(r))
	}

	b.WriteString("## Risk Warnings\n\n")
	b.WriteString("- Large gains without matching volume or liquidity are easy to manipulate.\n")
	b.WriteString("- Recently created tokens carry a higher risk of rug pulls.\n")
	b.WriteString("- This summary was produced without a language model and contains no advice.\n")
	return b.String()
}

func redFlags(r models.Record) string {
	var flags []string
	if r.PriceChange24h > 100 {
		flags = append(flags, "price more than doubled in 24h")
	}
	if r.Liquidity < 10000 {
		flags = append(flags, "thin liquidity")
	}
	if r.Liquidity > 0 && r.Volume24h > 10*r.Liquidity {
		flags = append(flags, "volume far above liquidity")
	}
	if r.Incomplete {
		flags = append(flags, "incomplete data")
	}
	if len(flags) == 0 {
		return "none detected from market data"
	}
	return strings.Join(flags, "; ")
}
