package analytics

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"

	"policyqa/internal/ai"
)

// Completer is the slice of the chat client the agent needs.
type Completer interface {
	Complete(ctx context.Context, cfg ai.ChatConfig, messages []ai.ChatMessage) (string, error)
}

// Agent picks an analytic tool for a question and runs it locally. The model
// only routes; it never sees the claims data.
type Agent struct {
	client Completer
	cfg    ai.ChatConfig
	tools  []Tool
}

func NewAgent(client Completer, cfg ai.ChatConfig) *Agent {
	return &Agent{client: client, cfg: cfg, tools: Tools()}
}

// Answer routes the question to one tool and returns its output.
func (a *Agent) Answer(ctx context.Context, claims []Claim, question string) (string, error) {
	if len(claims) == 0 {
		return "", ErrNoClaims
	}
	tool := a.pickTool(ctx, question)
	return tool.Run(claims), nil
}

func (a *Agent) pickTool(ctx context.Context, question string) Tool {
	var b strings.Builder
	b.WriteString("You route questions about insurance claims data to exactly one tool.\nAvailable tools:\n")
	for _, t := range a.tools {
		fmt.Fprintf(&b, "- %s: %s\n", t.Name, t.Description)
	}
	b.WriteString("\nReturn only a JSON object of the form {\"tool\": \"<name>\"}.\n\nQuestion: ")
	b.WriteString(question)

	raw, err := a.client.Complete(ctx, a.cfg, []ai.ChatMessage{
		{Role: "user", Content: b.String()},
	})
	if err != nil {
		log.Printf("analytics: tool routing failed, using keyword fallback: %v", err)
		return a.keywordFallback(question)
	}

	var choice struct {
		Tool string `json:"tool"`
	}
	if err := json.Unmarshal([]byte(ai.StripCodeFence(raw)), &choice); err != nil {
		log.Printf("analytics: unparseable tool choice %q, using keyword fallback", raw)
		return a.keywordFallback(question)
	}
	for _, t := range a.tools {
		if strings.EqualFold(t.Name, choice.Tool) {
			return t
		}
	}
	return a.keywordFallback(question)
}

func (a *Agent) keywordFallback(question string) Tool {
	lower := strings.ToLower(question)
	switch {
	case strings.Contains(lower, "denied"):
		return a.tools[1]
	case strings.Contains(lower, "provider") || strings.Contains(lower, "hospital"):
		return a.tools[2]
	default:
		return a.tools[0]
	}
}
