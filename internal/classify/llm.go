package classify

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"

	"policyqa/internal/ai"
)

// minLLMConfidence is the lowest confidence score the model may report for a
// document to be accepted.
const minLLMConfidence = 70

const llmValidationPrompt = `Analyze this document text and determine if it is specifically a health insurance or medical insurance document.

Required Elements (document must contain at least 3 of these):
1. Health insurance policy details
2. Medical coverage information
3. Healthcare provider networks
4. Medical procedures or treatments
5. Insurance premiums or payments
6. Health plan benefits
7. Medical claims information

Return a JSON object with the following fields:
{
  "is_insurance": boolean,
  "document_type": string,
  "confidence_score": number,
  "found_elements": [string],
  "found_indicators": [string],
  "reason": string
}

If it is not a health/medical insurance document, explain what type of document it appears to be instead.

Text to analyze:
`

// Completer is the slice of the chat client the LLM classifier needs.
type Completer interface {
	Complete(ctx context.Context, cfg ai.ChatConfig, messages []ai.ChatMessage) (string, error)
}

type llmVerdictPayload struct {
	IsInsurance     bool     `json:"is_insurance"`
	DocumentType    string   `json:"document_type"`
	ConfidenceScore float64  `json:"confidence_score"`
	FoundElements   []string `json:"found_elements"`
	FoundIndicators []string `json:"found_indicators"`
	Reason          string   `json:"reason"`
}

// LLM classifies by asking the chat model for a structured verdict. Malformed
// model output never surfaces as an error: the policy is fail-closed, so an
// unparseable verdict rejects the document with a generic reason.
type LLM struct {
	client Completer
	cfg    ai.ChatConfig
}

func NewLLM(client Completer, cfg ai.ChatConfig) *LLM {
	return &LLM{client: client, cfg: cfg}
}

func (l *LLM) Classify(ctx context.Context, text string) (Verdict, error) {
	messages := []ai.ChatMessage{
		{Role: "user", Content: llmValidationPrompt + "\n" + sample(text)},
	}
	raw, err := l.client.Complete(ctx, l.cfg, messages)
	if err != nil {
		return Verdict{}, fmt.Errorf("classification request failed: %w", err)
	}

	var payload llmVerdictPayload
	if err := json.Unmarshal([]byte(ai.StripCodeFence(raw)), &payload); err != nil {
		log.Printf("classify: unparseable llm verdict, rejecting: %v", err)
		return Verdict{
			Accepted: false,
			Reason:   "the document could not be validated as an insurance document",
		}, nil
	}

	if payload.IsInsurance && payload.ConfidenceScore >= minLLMConfidence {
		return Verdict{Accepted: true, Reason: l.acceptReason(payload)}, nil
	}
	return Verdict{Accepted: false, Reason: l.rejectReason(payload)}, nil
}

func (l *LLM) acceptReason(p llmVerdictPayload) string {
	docType := p.DocumentType
	if docType == "" {
		docType = "health insurance document"
	}
	reason := fmt.Sprintf("This appears to be a %s.", docType)
	if len(p.FoundElements) > 0 {
		reason += " Found key elements: " + strings.Join(head(p.FoundElements, 3), ", ") + "."
	}
	if len(p.FoundIndicators) > 0 {
		reason += " Identified specific insurance indicators: " + strings.Join(head(p.FoundIndicators, 3), ", ") + "."
	}
	return reason
}

func (l *LLM) rejectReason(p llmVerdictPayload) string {
	if !p.IsInsurance {
		if p.Reason != "" {
			return "This appears to be " + p.Reason
		}
		return "This does not appear to be a health insurance document."
	}
	reason := fmt.Sprintf("This document has low confidence (%.0f%%) of being a valid health insurance document.", p.ConfidenceScore)
	if p.Reason != "" {
		reason += " " + p.Reason
	}
	return reason
}

func head(items []string, n int) []string {
	if len(items) > n {
		return items[:n]
	}
	return items
}
