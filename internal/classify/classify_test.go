package classify

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"policyqa/internal/ai"
)

// exactly n distinct heuristic indicators, nothing else.
func textWithIndicators(n int) string {
	terms := []string{
		"deductible", "copay", "coinsurance", "premium", "enrollment",
		"eligibility", "preventive care", "provider network",
	}
	return strings.Join(terms[:n], ". ") + "."
}

func TestHeuristicBoundary(t *testing.T) {
	h := NewHeuristic(3)

	v, err := h.Classify(context.Background(), textWithIndicators(3))
	require.NoError(t, err)
	require.True(t, v.Accepted, "min_confidence matches must accept: %s", v.Reason)

	v, err = h.Classify(context.Background(), textWithIndicators(2))
	require.NoError(t, err)
	require.False(t, v.Accepted, "min_confidence-1 matches must reject")
	require.NotEmpty(t, v.Reason)
}

func TestHeuristicRejectsResume(t *testing.T) {
	resume := "Jane Doe. Senior software engineer with ten years of experience " +
		"in distributed systems. Skills: Go, Kubernetes, PostgreSQL. " +
		"Education: BSc Computer Science."
	v, err := NewHeuristic(0).Classify(context.Background(), resume)
	require.NoError(t, err)
	require.False(t, v.Accepted)
}

func TestHeuristicOnlyInspectsSample(t *testing.T) {
	// Indicators beyond the first 2000 characters must not count.
	padding := strings.Repeat("x", sampleLimit)
	v, err := NewHeuristic(3).Classify(context.Background(), padding+textWithIndicators(5))
	require.NoError(t, err)
	require.False(t, v.Accepted)
}

type stubCompleter struct {
	response string
	err      error
}

func (s *stubCompleter) Complete(context.Context, ai.ChatConfig, []ai.ChatMessage) (string, error) {
	return s.response, s.err
}

func llmVerdictJSON(isInsurance bool, confidence int) string {
	return fmt.Sprintf(`{"is_insurance": %t, "document_type": "Health Insurance Policy", "confidence_score": %d, "found_elements": ["Health plan benefits"], "found_indicators": ["deductible"], "reason": "policy language found"}`, isInsurance, confidence)
}

func TestLLMConfidenceBoundary(t *testing.T) {
	ctx := context.Background()

	c := NewLLM(&stubCompleter{response: llmVerdictJSON(true, 70)}, ai.ChatConfig{})
	v, err := c.Classify(ctx, "some policy text")
	require.NoError(t, err)
	require.True(t, v.Accepted, "confidence 70 must accept")

	c = NewLLM(&stubCompleter{response: llmVerdictJSON(true, 69)}, ai.ChatConfig{})
	v, err = c.Classify(ctx, "some policy text")
	require.NoError(t, err)
	require.False(t, v.Accepted, "confidence 69 must reject")
	require.Contains(t, v.Reason, "low confidence")
}

func TestLLMRejectsNonInsurance(t *testing.T) {
	c := NewLLM(&stubCompleter{response: `{"is_insurance": false, "confidence_score": 95, "reason": "a software engineering resume"}`}, ai.ChatConfig{})
	v, err := c.Classify(context.Background(), "resume text")
	require.NoError(t, err)
	require.False(t, v.Accepted)
	require.Contains(t, v.Reason, "resume")
}

func TestLLMFailsClosedOnMalformedJSON(t *testing.T) {
	c := NewLLM(&stubCompleter{response: "I think this is an insurance document."}, ai.ChatConfig{})
	v, err := c.Classify(context.Background(), "text")
	require.NoError(t, err, "malformed model output must not raise")
	require.False(t, v.Accepted)
	require.NotEmpty(t, v.Reason)
}

func TestLLMAcceptsFencedJSON(t *testing.T) {
	c := NewLLM(&stubCompleter{response: "```json\n" + llmVerdictJSON(true, 90) + "\n```"}, ai.ChatConfig{})
	v, err := c.Classify(context.Background(), "text")
	require.NoError(t, err)
	require.True(t, v.Accepted)
}

func TestLLMTransportErrorSurfaces(t *testing.T) {
	c := NewLLM(&stubCompleter{err: errors.New("connection refused")}, ai.ChatConfig{})
	_, err := c.Classify(context.Background(), "text")
	require.Error(t, err)
}
