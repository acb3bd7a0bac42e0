// Package analytics answers canned questions over uploaded claims CSV data.
package analytics

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"policyqa/internal/privacy"
)

var ErrNoClaims = errors.New("claims file contains no rows")

// Claim is one row of the uploaded claims CSV.
type Claim struct {
	Provider     string
	TotalClaimed float64
	Status       string
}

// LoadClaims parses a claims CSV. Required columns: Provider, Total_Claimed,
// Claim_Status. Extra columns are ignored; rows with unparseable amounts are
// skipped.
func LoadClaims(r io.Reader) ([]Claim, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("read csv header failed: %w", err)
	}
	cols := map[string]int{}
	for i, name := range header {
		cols[strings.TrimSpace(name)] = i
	}
	for _, required := range []string{"Provider", "Total_Claimed", "Claim_Status"} {
		if _, ok := cols[required]; !ok {
			return nil, fmt.Errorf("claims csv is missing column %q", required)
		}
	}

	var claims []Claim
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read csv row failed: %w", err)
		}
		amount, err := parseAmount(row[cols["Total_Claimed"]])
		if err != nil {
			continue
		}
		claims = append(claims, Claim{
			Provider:     strings.TrimSpace(row[cols["Provider"]]),
			TotalClaimed: amount,
			Status:       strings.TrimSpace(row[cols["Claim_Status"]]),
		})
	}
	if len(claims) == 0 {
		return nil, ErrNoClaims
	}
	return claims, nil
}

// RedactCSV copies CSV from r to w with values in identifying columns
// replaced by "[REDACTED]".
func RedactCSV(r io.Reader, w io.Writer) error {
	reader := csv.NewReader(r)
	writer := csv.NewWriter(w)

	header, err := reader.Read()
	if err != nil {
		return fmt.Errorf("read csv header failed: %w", err)
	}
	sensitive := make([]bool, len(header))
	for i, name := range header {
		sensitive[i] = privacy.SensitiveColumn(name)
	}
	if err := writer.Write(header); err != nil {
		return fmt.Errorf("write csv header failed: %w", err)
	}

	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("read csv row failed: %w", err)
		}
		for i := range row {
			if i < len(sensitive) && sensitive[i] {
				row[i] = "[REDACTED]"
			}
		}
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("write csv row failed: %w", err)
		}
	}
	writer.Flush()
	return writer.Error()
}

func parseAmount(s string) (float64, error) {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "$")
	s = strings.ReplaceAll(s, ",", "")
	return strconv.ParseFloat(s, 64)
}
