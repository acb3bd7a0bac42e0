package app

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"

	"policyqa/internal/ai"
	"policyqa/internal/extract"
	"policyqa/internal/privacy"
	"policyqa/internal/session"
)

// PlanBenefits is the structured portion of a document summary. Fields the
// model could not find are pruned before the summary is returned.
type PlanBenefits struct {
	Deductible           string `json:"deductible,omitempty"`
	OutOfPocketMax       string `json:"outOfPocketMax,omitempty"`
	CoverageDetails      string `json:"coverageDetails,omitempty"`
	CopaysAndCoinsurance string `json:"copaysAndCoinsurance,omitempty"`
}

type SummaryResult struct {
	Summary  string       `json:"summary"`
	Benefits PlanBenefits `json:"benefits"`
}

const summaryPrompt = `You are an insurance document analyst. Summarize the following insurance document in 3-5 sentences for a policyholder, then extract key benefits.

Respond with JSON only, in this exact shape:
{
  "summary": "...",
  "benefits": {
    "deductible": "...",
    "outOfPocketMax": "...",
    "coverageDetails": "...",
    "copaysAndCoinsurance": "..."
  }
}

Use "Not specified" for any benefit the document does not state.

Document:
%s`

// Summarize produces a free-text summary plus structured benefits for a
// stored document.
func (s *DocumentService) Summarize(ctx context.Context, userID uint, filename string) (*SummaryResult, error) {
	if userID == 0 {
		return nil, ErrInvalidInput
	}
	doc, ok := s.store.GetDocument(userID, filename)
	if !ok {
		return nil, ErrDocumentNotFound
	}

	raw, err := s.chat.Complete(ctx, s.chatCfg, []ai.ChatMessage{
		{Role: "user", Content: fmt.Sprintf(summaryPrompt, head(doc.Text, 12000))},
	})
	if err != nil {
		return nil, fmt.Errorf("summary completion failed: %w", err)
	}

	var parsed SummaryResult
	if err := json.Unmarshal([]byte(ai.StripCodeFence(raw)), &parsed); err != nil {
		// Fall back to treating the whole response as the summary.
		return &SummaryResult{Summary: strings.TrimSpace(raw)}, nil
	}
	parsed.Summary = strings.TrimSpace(parsed.Summary)
	pruneBenefits(&parsed.Benefits)
	return &parsed, nil
}

func pruneBenefits(b *PlanBenefits) {
	b.Deductible = pruneValue(b.Deductible)
	b.OutOfPocketMax = pruneValue(b.OutOfPocketMax)
	b.CoverageDetails = pruneValue(b.CoverageDetails)
	b.CopaysAndCoinsurance = pruneValue(b.CopaysAndCoinsurance)
}

func pruneValue(v string) string {
	v = strings.TrimSpace(v)
	switch strings.ToLower(v) {
	case "", "not specified", "not found", "n/a", "unknown", "none":
		return ""
	}
	return v
}

// Copays holds the visit-type copays compared across plans.
type Copays struct {
	PrimaryCare   string `json:"primaryCare"`
	Specialist    string `json:"specialist"`
	EmergencyRoom string `json:"emergencyRoom"`
	UrgentCare    string `json:"urgentCare"`
}

// BenefitTier splits a dollar benefit into its individual and family levels.
type BenefitTier struct {
	Individual string `json:"individual"`
	Family     string `json:"family"`
}

// PlanComparison is one plan's extracted benefit grid.
type PlanComparison struct {
	Label                string      `json:"label"`
	Deductibles          BenefitTier `json:"deductibles"`
	OutOfPocketMax       BenefitTier `json:"outOfPocketMax"`
	Copays               Copays      `json:"copays"`
	PrescriptionCoverage string      `json:"prescriptionCoverage"`
	MentalHealthCoverage string      `json:"mentalHealthCoverage"`
}

type CompareResult struct {
	Plans   []PlanComparison `json:"plans"`
	Skipped []SkippedFile    `json:"skipped,omitempty"`
}

type SkippedFile struct {
	Label  string `json:"label"`
	Reason string `json:"reason"`
}

const comparePrompt = `Extract the following benefit values from this insurance plan document. Respond with JSON only:
{
  "deductibles": {
    "individual": "...",
    "family": "..."
  },
  "outOfPocketMax": {
    "individual": "...",
    "family": "..."
  },
  "copays": {
    "primaryCare": "...",
    "specialist": "...",
    "emergencyRoom": "...",
    "urgentCare": "..."
  },
  "prescriptionCoverage": "...",
  "mentalHealthCoverage": "..."
}

Use "Not specified" when the document does not state a value.

Document:
%s`

type CompareFile struct {
	Label string
	Path  string
}

// Compare extracts a fixed benefit grid from each uploaded plan file.
// Personal identifiers are stripped before any text reaches the model.
// Files that fail extraction or the insurance gate are reported as skipped
// rather than failing the whole comparison.
func (s *DocumentService) Compare(ctx context.Context, files []CompareFile) (*CompareResult, error) {
	if len(files) < 2 {
		return nil, ErrInvalidInput
	}

	result := &CompareResult{}
	for _, f := range files {
		text, err := extract.FromFile(f.Path)
		s.removeUpload(f.Path)
		if err != nil {
			result.Skipped = append(result.Skipped, SkippedFile{Label: f.Label, Reason: err.Error()})
			continue
		}

		text = privacy.Sanitize(text)
		verdict, err := s.compareGate.Classify(ctx, text)
		if err != nil || !verdict.Accepted {
			reason := "not recognized as an insurance document"
			if verdict.Reason != "" {
				reason = verdict.Reason
			}
			result.Skipped = append(result.Skipped, SkippedFile{Label: f.Label, Reason: reason})
			continue
		}

		plan := s.extractBenefits(ctx, text)
		plan.Label = f.Label
		result.Plans = append(result.Plans, *plan)
	}

	if len(result.Plans) == 0 {
		return nil, &RejectionError{Reason: "no comparable insurance documents among the uploads"}
	}
	return result, nil
}

// extractBenefits never fails: an unreachable model or an unparseable
// response degrades to the "Not specified" default grid so one bad
// extraction cannot sink a whole comparison.
func (s *DocumentService) extractBenefits(ctx context.Context, text string) *PlanComparison {
	raw, err := s.chat.Complete(ctx, s.chatCfg, []ai.ChatMessage{
		{Role: "user", Content: fmt.Sprintf(comparePrompt, head(text, 12000))},
	})
	if err != nil {
		log.Printf("benefit extraction failed, using defaults: %v", err)
		return defaultPlanComparison()
	}

	plan := defaultPlanComparison()
	if err := json.Unmarshal([]byte(ai.StripCodeFence(raw)), plan); err != nil {
		log.Printf("parse benefit extraction failed, using defaults: %v", err)
		return defaultPlanComparison()
	}
	fillNotSpecified(plan)
	return plan
}

func defaultPlanComparison() *PlanComparison {
	return &PlanComparison{
		Deductibles:          BenefitTier{Individual: "Not specified", Family: "Not specified"},
		OutOfPocketMax:       BenefitTier{Individual: "Not specified", Family: "Not specified"},
		PrescriptionCoverage: "Not specified",
		MentalHealthCoverage: "Not specified",
		Copays: Copays{
			PrimaryCare:   "Not specified",
			Specialist:    "Not specified",
			EmergencyRoom: "Not specified",
			UrgentCare:    "Not specified",
		},
	}
}

func fillNotSpecified(p *PlanComparison) {
	def := func(v *string) {
		if strings.TrimSpace(*v) == "" {
			*v = "Not specified"
		}
	}
	def(&p.Deductibles.Individual)
	def(&p.Deductibles.Family)
	def(&p.OutOfPocketMax.Individual)
	def(&p.OutOfPocketMax.Family)
	def(&p.PrescriptionCoverage)
	def(&p.MentalHealthCoverage)
	def(&p.Copays.PrimaryCare)
	def(&p.Copays.Specialist)
	def(&p.Copays.EmergencyRoom)
	def(&p.Copays.UrgentCare)
}

var defaultQuestions = []string{
	"What is my deductible?",
	"What is my out-of-pocket maximum?",
	"What services are covered under this plan?",
	"What are my copays for doctor visits?",
	"How do I file a claim?",
}

const suggestPrompt = `Based on these excerpts from an insurance document, suggest 5 short questions a policyholder would likely ask about it. Respond with a JSON array of strings only.

Excerpts:
%s`

// suggestQuestions asks the model for document-specific starter questions,
// falling back to a generic set when the response is unusable.
func (s *DocumentService) suggestQuestions(ctx context.Context, chunks []string) []string {
	sampleCount := 3
	if len(chunks) < sampleCount {
		sampleCount = len(chunks)
	}
	excerpt := strings.Join(chunks[:sampleCount], "\n\n")

	raw, err := s.chat.Complete(ctx, s.chatCfg, []ai.ChatMessage{
		{Role: "user", Content: fmt.Sprintf(suggestPrompt, excerpt)},
	})
	if err != nil {
		return defaultQuestions
	}
	var questions []string
	if err := json.Unmarshal([]byte(ai.StripCodeFence(raw)), &questions); err != nil || len(questions) == 0 {
		return defaultQuestions
	}
	if len(questions) > 5 {
		questions = questions[:5]
	}
	return questions
}

func encodeSources(sources []session.Source) string {
	data, err := json.Marshal(sources)
	if err != nil {
		return "[]"
	}
	return string(data)
}

// head truncates on runes so a multi-byte character is never split.
func head(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
