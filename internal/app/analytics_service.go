package app

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"

	"policyqa/internal/analytics"
)

var ErrNoClaimsData = errors.New("claims data file not found")

// AnalyticsService answers aggregate questions over claims CSV data, either
// the configured default file or one uploaded with the question.
type AnalyticsService struct {
	agent      *analytics.Agent
	claimsPath string
	redactDir  string
}

func NewAnalyticsService(agent *analytics.Agent, claimsPath, redactDir string) *AnalyticsService {
	return &AnalyticsService{agent: agent, claimsPath: claimsPath, redactDir: redactDir}
}

// Ask routes the question against the configured claims file. The CSV is
// re-read per question so an updated file takes effect without a restart.
func (s *AnalyticsService) Ask(ctx context.Context, question string) (string, error) {
	f, err := os.Open(s.claimsPath)
	if err != nil {
		if os.IsNotExist(err) {
			return "", ErrNoClaimsData
		}
		return "", fmt.Errorf("open claims data failed: %w", err)
	}
	defer f.Close()

	claims, err := analytics.LoadClaims(f)
	if err != nil {
		return "", fmt.Errorf("load claims data failed: %w", err)
	}
	return s.agent.Answer(ctx, claims, question)
}

// AskCSV answers a question against an uploaded claims CSV. A copy with
// sensitive columns redacted is kept on disk; the raw upload is not.
func (s *AnalyticsService) AskCSV(ctx context.Context, r io.Reader, question string) (string, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("read claims upload failed: %w", err)
	}

	s.keepRedactedCopy(raw)

	claims, err := analytics.LoadClaims(bytes.NewReader(raw))
	if err != nil {
		return "", fmt.Errorf("load claims data failed: %w", err)
	}
	return s.agent.Answer(ctx, claims, question)
}

func (s *AnalyticsService) keepRedactedCopy(raw []byte) {
	if s.redactDir == "" {
		return
	}
	out, err := os.Create(filepath.Join(s.redactDir, "claims_redacted.csv"))
	if err != nil {
		log.Printf("create redacted claims copy failed: %v", err)
		return
	}
	defer out.Close()
	if err := analytics.RedactCSV(bytes.NewReader(raw), out); err != nil {
		log.Printf("write redacted claims copy failed: %v", err)
	}
}
