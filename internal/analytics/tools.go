package analytics

import (
	"fmt"
	"math"
	"sort"
	"strings"
)

// Tool is one analytic capability the agent can invoke over loaded claims.
type Tool struct {
	Name        string
	Description string
	Run         func(claims []Claim) string
}

// Tools returns the fixed tool set in a stable order.
func Tools() []Tool {
	return []Tool{
		{
			Name:        "TotalClaims",
			Description: "Calculates total claimed amount",
			Run:         totalClaims,
		},
		{
			Name:        "DeniedClaims",
			Description: "Calculates % of denied claims",
			Run:         deniedPercentage,
		},
		{
			Name:        "HighCostProviders",
			Description: "Identifies top high-cost providers",
			Run:         highCostProviders,
		},
	}
}

func totalClaims(claims []Claim) string {
	var total float64
	for _, c := range claims {
		total += c.TotalClaimed
	}
	return fmt.Sprintf("Total claimed amount is $%s", formatAmount(total))
}

func deniedPercentage(claims []Claim) string {
	if len(claims) == 0 {
		return "No claims data available."
	}
	denied := 0
	for _, c := range claims {
		if c.Status == "Denied" {
			denied++
		}
	}
	pct := float64(denied) / float64(len(claims)) * 100
	return fmt.Sprintf("%.2f%% of claims were denied.", pct)
}

// highCostProviders counts claims per provider among claims above the 90th
// percentile of claimed amount and reports the top five by count.
func highCostProviders(claims []Claim) string {
	if len(claims) == 0 {
		return "No claims data available."
	}
	threshold := quantile(claims, 0.9)

	counts := map[string]int{}
	for _, c := range claims {
		if c.TotalClaimed > threshold {
			counts[c.Provider]++
		}
	}
	if len(counts) == 0 {
		return "No providers above the high-cost threshold."
	}

	type providerCount struct {
		provider string
		count    int
	}
	ranked := make([]providerCount, 0, len(counts))
	for p, n := range counts {
		ranked = append(ranked, providerCount{p, n})
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].count != ranked[j].count {
			return ranked[i].count > ranked[j].count
		}
		return ranked[i].provider < ranked[j].provider
	})
	if len(ranked) > 5 {
		ranked = ranked[:5]
	}

	var b strings.Builder
	b.WriteString("Top high-cost providers:\n")
	for _, pc := range ranked {
		fmt.Fprintf(&b, "%s    %d\n", pc.provider, pc.count)
	}
	return strings.TrimRight(b.String(), "\n")
}

// quantile computes the q-th quantile of claimed amounts with linear
// interpolation between order statistics.
func quantile(claims []Claim, q float64) float64 {
	values := make([]float64, len(claims))
	for i, c := range claims {
		values[i] = c.TotalClaimed
	}
	sort.Float64s(values)

	if len(values) == 1 {
		return values[0]
	}
	pos := q * float64(len(values)-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo == hi {
		return values[lo]
	}
	frac := pos - float64(lo)
	return values[lo]*(1-frac) + values[hi]*frac
}

// formatAmount renders 1234567.8 as "1,234,567.80".
func formatAmount(v float64) string {
	s := fmt.Sprintf("%.2f", v)
	dot := strings.Index(s, ".")
	intPart, fracPart := s[:dot], s[dot:]

	neg := strings.HasPrefix(intPart, "-")
	intPart = strings.TrimPrefix(intPart, "-")

	var b strings.Builder
	for i, d := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(d)
	}
	out := b.String() + fracPart
	if neg {
		out = "-" + out
	}
	return out
}
