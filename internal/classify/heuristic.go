package classify

import (
	"context"
	"fmt"
	"regexp"
	"strings"
)

// DefaultMinConfidence is the number of distinct insurance indicators a
// document must contain to pass the heuristic gate.
const DefaultMinConfidence = 3

var insuranceIndicators = []*regexp.Regexp{
	regexp.MustCompile(`\b(health|medical)\s+insurance\b`),
	regexp.MustCompile(`\b(plan|policy|coverage)\s+(summary|details|information)\b`),
	regexp.MustCompile(`\bbenefits?\s+(summary|overview|details)\b`),
	regexp.MustCompile(`\b(in|out)\s*-?\s*of\s*-?\s*network\b`),
	regexp.MustCompile(`\bdeductible\b`),
	regexp.MustCompile(`\bcopay(ment)?\b`),
	regexp.MustCompile(`\bcoinsurance\b`),
	regexp.MustCompile(`\b(covered|eligible)\s+services\b`),
	regexp.MustCompile(`\b(prescription|rx)\s+drugs?\b`),
	regexp.MustCompile(`\b(prior\s+)?authorization\b`),
	regexp.MustCompile(`\bpreventive\s+care\b`),
	regexp.MustCompile(`\bemergency\s+(room|services)\b`),
	regexp.MustCompile(`\bout\s*-?\s*of\s*-?\s*pocket\s+(maximum|limit)\b`),
	regexp.MustCompile(`\bpremium\b`),
	regexp.MustCompile(`\bprovider\s+network\b`),
	regexp.MustCompile(`\bclaims?\b`),
	regexp.MustCompile(`\benrollment\b`),
	regexp.MustCompile(`\beligibility\b`),
}

// Heuristic classifies by counting distinct insurance indicators in the
// opening of the document.
type Heuristic struct {
	MinConfidence int
}

func NewHeuristic(minConfidence int) *Heuristic {
	if minConfidence <= 0 {
		minConfidence = DefaultMinConfidence
	}
	return &Heuristic{MinConfidence: minConfidence}
}

func (h *Heuristic) Classify(_ context.Context, text string) (Verdict, error) {
	lower := strings.ToLower(sample(text))
	score := 0
	for _, re := range insuranceIndicators {
		if re.MatchString(lower) {
			score++
		}
	}
	if score >= h.MinConfidence {
		return Verdict{
			Accepted: true,
			Reason:   fmt.Sprintf("document matched %d insurance indicators", score),
		}, nil
	}
	return Verdict{
		Accepted: false,
		Reason:   fmt.Sprintf("document matched only %d of the required %d insurance indicators", score, h.MinConfidence),
	}, nil
}
