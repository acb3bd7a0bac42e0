// Package privacy redacts personally identifiable information from text and
// claims data before it leaves the service boundary.
package privacy

import (
	"regexp"
	"strings"
	"unicode"
)

type piiPattern struct {
	tag string
	re  *regexp.Regexp
}

// Patterns target disjoint token shapes, so application order does not change
// the outcome. MRN must run before SSN-like digit runs to keep its tag.
var patterns = []piiPattern{
	{"MRN", regexp.MustCompile(`(?:MRN|Medical Record Number):\s*\d{6,}`)},
	{"SSN", regexp.MustCompile(`\b\d{3}[-.]?\d{2}[-.]?\d{4}\b`)},
	{"EMAIL", regexp.MustCompile(`\b[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}\b`)},
	{"PHONE", regexp.MustCompile(`\b\d{3}[-.]?\d{3}[-.]?\d{4}\b`)},
	{"DOB", regexp.MustCompile(`\b(?:0[1-9]|1[0-2])[-/](?:0[1-9]|[12]\d|3[01])[-/](?:\d{2}|\d{4})\b`)},
	{"NAME", regexp.MustCompile(`\b(?:Mr\.|Mrs\.|Ms\.|Dr\.|Prof\.) [A-Z][a-z]+ [A-Z][a-z]+\b`)},
	{"ADDRESS", regexp.MustCompile(`\b\d{1,5} [A-Za-z\s]{1,30}(?:Street|St|Avenue|Ave|Road|Rd|Boulevard|Blvd)\b`)},
}

// Sanitize replaces recognized PII tokens with bracketed type tags, e.g.
// "[SSN]". Tokens outside these shapes pass through untouched.
func Sanitize(text string) string {
	for _, p := range patterns {
		text = p.re.ReplaceAllString(text, "["+p.tag+"]")
	}
	return text
}

// SensitiveColumn reports whether a CSV column holds identifying data and
// should be redacted wholesale. "id" must match as a whole token: a plain
// substring check would flag columns like "Provider".
func SensitiveColumn(column string) bool {
	lower := strings.ToLower(column)
	if strings.Contains(lower, "name") || strings.Contains(lower, "ssn") {
		return true
	}
	for _, tok := range strings.FieldsFunc(lower, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	}) {
		if tok == "id" {
			return true
		}
	}
	return false
}
