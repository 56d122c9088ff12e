package news

import (
	"context"
	"strings"
)

// ClassProbabilities are the three-class probabilities a local classifier
// returns for one article text.
type ClassProbabilities struct {
	Negative, Neutral, Positive float64
}

// LocalClassifier is stage 1 of C5's two-stage scoring: a stateless,
// batch-capable in-process classifier. Concrete adapters are swappable
// without touching the orchestration in stage.go.
type LocalClassifier interface {
	ClassifyBatch(ctx context.Context, texts []string) ([]ClassProbabilities, error)
}

// EscalationResult is the parsed response from an escalation call.
type EscalationResult struct {
	Label      string // negative | neutral | positive
	Confidence float64
}

// EscalationClassifier is stage 2 of C5's two-stage scoring: a
// higher-latency classifier used only for articles that stage 1 scored with
// low confidence. §6.2 describes its wire contract generically as a
// stateless message API; this interface names neither a vendor nor a
// transport so HTTP, gRPC, or in-process adapters are equally valid.
type EscalationClassifier interface {
	Classify(ctx context.Context, text string) (EscalationResult, error)
}

// lexicalClassifier is a small keyword-weighted local classifier used as
// stage 1's default adapter when no richer model is configured. It is
// intentionally simple: its job is to produce a fast, cheap first pass and
// hand low-confidence cases to the escalation path, not to be definitive.
type lexicalClassifier struct {
	positive map[string]float64
	negative map[string]float64
}

// NewLexicalClassifier builds a stage-1 LocalClassifier from weighted
// keyword lexicons, grounded in the reference implementation's stage-1
// classifier being a lightweight, fast pre-filter ahead of LLM escalation.
func NewLexicalClassifier() LocalClassifier {
	return &lexicalClassifier{
		positive: map[string]float64{
			"surge": 1.5, "beat": 1.2, "record": 1.2, "growth": 1.0, "upgrade": 1.4,
			"profit": 1.0, "rally": 1.3, "expansion": 1.0, "strong": 0.8, "buyback": 1.1,
		},
		negative: map[string]float64{
			"plunge": 1.5, "miss": 1.2, "downgrade": 1.4, "loss": 1.2, "lawsuit": 1.1,
			"recall": 1.1, "decline": 1.0, "weak": 0.8, "delisting": 1.6, "fraud": 1.6,
		},
	}
}

func (c *lexicalClassifier) ClassifyBatch(ctx context.Context, texts []string) ([]ClassProbabilities, error) {
	out := make([]ClassProbabilities, len(texts))
	for i, text := range texts {
		out[i] = c.classifyOne(text)
	}
	return out, nil
}

func (c *lexicalClassifier) classifyOne(text string) ClassProbabilities {
	lower := strings.ToLower(text)
	var pos, neg float64
	for word, w := range c.positive {
		if strings.Contains(lower, word) {
			pos += w
		}
	}
	for word, w := range c.negative {
		if strings.Contains(lower, word) {
			neg += w
		}
	}
	total := pos + neg
	if total == 0 {
		return ClassProbabilities{Neutral: 1.0}
	}
	// Softer normalisation: residual mass goes to neutral, scaled so a
	// single weak hit doesn't claim near-certain confidence.
	signal := total / (total + 2.0)
	posShare := pos / total
	negShare := neg / total
	return ClassProbabilities{
		Positive: posShare * signal,
		Negative: negShare * signal,
		Neutral:  1 - signal,
	}
}
