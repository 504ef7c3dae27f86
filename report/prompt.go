package report

import (
	"fmt"
	"strings"
	"text/template"
	"time"

	"dexscout/models"

	"github.com/shopspring/decimal"
)

// Prompt is a system and user message pair with sampling parameters.
type Prompt struct {
	System      string
	User        string
	Temperature float64
	MaxTokens   int
}

// Input describes what a report covers.
type Input struct {
	Title        string
	Operation    models.Operation
	Chain        string
	Records      []models.Record
	MinLiquidity float64
	Window       time.Duration
}

const systemTemplate = `You are a cryptocurrency market analyst specializing in {{.Chain}} tokens.
Analyze the {{.Subject}} below and provide:

1. MARKET OVERVIEW: general assessment, current trends, notable observations.
2. PER-TOKEN ANALYSIS: price action, liquidity and volume, age, exchange.
3. RISK ASSESSMENT: red flags such as gains without supporting volume or liquidity.
4. CONCLUSION: key takeaways and a watchlist.

Be cautious: these tokens are volatile and high-risk. Format the answer as markdown
with clear headings, bullet points and tables where appropriate.`

const userTemplate = `Please analyze the top {{len .Records}} {{.Subject}} on {{.Chain}}{{if .Window}} from the past {{hours .Window}} hours{{end}}{{if .MinLiquidity}} with minimum liquidity of ${{money .MinLiquidity}}{{end}}.

| # | Token | Address | Price (USD) | 24h % | Liquidity | Volume 24h | Created | Exchange |
|---|-------|---------|-------------|-------|-----------|------------|---------|----------|
{{range $i, $r := .Records}}| {{inc $i}} | {{$r.Symbol}} ({{$r.Name}}) | {{$r.Address}} | {{price $r.Price}} | {{pct $r.PriceChange24h}} | {{money $r.Liquidity}} | {{money $r.Volume24h}} | {{date $r.CreatedAt}} | {{$r.ExchangeName}} |
{{end}}`

var funcs = template.FuncMap{
	"inc":   func(i int) int { return i + 1 },
	"price": formatPrice,
	"money": formatMoney,
	"pct":   func(f float64) string { return fmt.Sprintf("%+.2f%%", f) },
	"hours": func(d time.Duration) string { return fmt.Sprintf("%.0f", d.Hours()) },
	"date":  formatDate,
}

var (
	systemTmpl = template.Must(template.New("system").Funcs(funcs).Parse(systemTemplate))
	userTmpl   = template.Must(template.New("user").Funcs(funcs).Parse(userTemplate))
)

// BuildPrompt renders the analysis prompt for in.
func BuildPrompt(in Input) (Prompt, error) {
	data := struct {
		Input
		Subject string
	}{in, subject(in.Operation)}
	if data.Chain == "" {
		data.Chain = "the selected chain"
	}

	var sys, user strings.Builder
	if err := systemTmpl.Execute(&sys, data); err != nil {
		return Prompt{}, fmt.Errorf("failed to render system prompt: %w", err)
	}
	if err := userTmpl.Execute(&user, data); err != nil {
		return Prompt{}, fmt.Errorf("failed to render user prompt: %w", err)
	}
	return Prompt{
		System:      sys.String(),
		User:        user.String(),
		Temperature: 0.5,
		MaxTokens:   2000,
	}, nil
}

func subject(op models.Operation) string {
	switch op {
	case models.OpGainers:
		return "top gaining tokens"
	case models.OpLosers:
		return "top losing tokens"
	case models.OpHotPools:
		return "hot trading pairs"
	case models.OpRecentPools:
		return "newly created tokens"
	default:
		return "tokens"
	}
}

// formatPrice keeps sub-cent prices readable without exponent notation.
func formatPrice(f float64) string {
	d := decimal.NewFromFloat(f)
	if d.Abs().LessThan(decimal.NewFromInt(1)) {
		return "$" + d.Round(10).String()
	}
	return "$" + d.StringFixed(4)
}

func formatMoney(f float64) string {
	s := decimal.NewFromFloat(f).StringFixed(2)
	intPart, frac := s, ""
	if i := strings.IndexByte(s, '.'); i >= 0 {
		intPart, frac = s[:i], s[i:]
	}
	neg := strings.HasPrefix(intPart, "-")
	intPart = strings.TrimPrefix(intPart, "-")

	var b strings.Builder
	for i, ch := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(ch)
	}
	out := b.String() + frac
	if neg {
		out = "-" + out
	}
	return out
}

func formatDate(t time.Time) string {
	if t.IsZero() || t.Equal(models.Epoch) {
		return "unknown"
	}
	return t.UTC().Format("2006-01-02")
}
