// Package classify decides whether uploaded text is an insurance document.
package classify

import "context"

// Verdict is a classification outcome with a human-readable reason that is
// safe to return to the uploader.
type Verdict struct {
	Accepted bool   `json:"accepted"`
	Reason   string `json:"reason"`
}

// Classifier gates document ingestion. Implementations must not fail on
// malformed model output; ambiguity degrades to a rejection.
type Classifier interface {
	Classify(ctx context.Context, text string) (Verdict, error)
}

// sampleLimit caps how much of the document is inspected. The opening pages
// of a policy carry its identifying language.
const sampleLimit = 2000

func sample(text string) string {
	runes := []rune(text)
	if len(runes) > sampleLimit {
		runes = runes[:sampleLimit]
	}
	return string(runes)
}
