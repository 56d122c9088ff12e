package kernels

import (
	"math"
	"time"
)

// ArticleInput is one scored news article ready for aggregation.
type ArticleInput struct {
	SentimentRaw  float64 // in [-1, 1]
	PublishedAt   time.Time
	SourceType    string // "financial", "portal", else general
	ArticleType   string // "disclosure", "analyst", "earnings", else general
	Importance    float64
}

func sourceWeight(sourceType string) float64 {
	switch sourceType {
	case "financial":
		return 1.5
	case "portal":
		return 0.7
	default:
		return 1.0
	}
}

func typeWeight(articleType string) float64 {
	switch articleType {
	case "disclosure":
		return 2.0
	case "analyst":
		return 1.8
	case "earnings":
		return 1.5
	default:
		return 1.0
	}
}

// SentimentResult is the 3-dimensional sentiment decomposition output.
type SentimentResult struct {
	Status          string // "no_data", "insufficient", "active"
	Direction       float64
	Intensity       float64
	Confidence      float64
	EffectiveScore  float64
	SentimentScore  float64 // 0..100
	Signal          string
	ArticleCount    int
}

// SentimentDecomposition implements SPEC_FULL.md §4.1's exact formulas.
func SentimentDecomposition(articles []ArticleInput, halfLifeDays float64, minArticles int) SentimentResult {
	n := len(articles)
	if n == 0 {
		return SentimentResult{Status: "no_data", Signal: "neutral"}
	}
	if n < minArticles {
		return SentimentResult{Status: "insufficient", ArticleCount: n, Signal: "neutral"}
	}

	newest := articles[0].PublishedAt
	for _, a := range articles[1:] {
		if a.PublishedAt.After(newest) {
			newest = a.PublishedAt
		}
	}

	lambda := math.Ln2 / halfLifeDays
	var weightedSum, weightSum float64
	raw := make([]float64, n)
	for i, a := range articles {
		ageDays := newest.Sub(a.PublishedAt).Hours() / 24.0
		if ageDays < 0 {
			ageDays = 0
		}
		w := math.Exp(-lambda*ageDays) * sourceWeight(a.SourceType) * typeWeight(a.ArticleType) * a.Importance
		weightedSum += a.SentimentRaw * w
		weightSum += w
		raw[i] = a.SentimentRaw
	}

	var direction float64
	if weightSum == 0 {
		direction = 0
	} else {
		direction = clip(weightedSum/weightSum, -1, 1)
	}

	intensity := math.Abs(direction) * math.Sqrt(math.Min(float64(n), 20)/20)

	sd := stddev(raw)
	if isMissing(sd) {
		sd = 0
	}
	confidence := (1 - sd) * math.Min(float64(n), 5) / 5
	if confidence < 0 {
		confidence = 0
	}
	if confidence > 1 {
		confidence = 1
	}

	effective := direction * intensity * confidence
	score := (effective + 1) / 2 * 100

	signal := "strong_sell"
	switch {
	case effective >= 0.40:
		signal = "strong_buy"
	case effective >= 0.15:
		signal = "buy"
	case effective >= -0.15:
		signal = "neutral"
	case effective >= -0.40:
		signal = "sell"
	}

	return SentimentResult{
		Status: "active", Direction: direction, Intensity: intensity, Confidence: confidence,
		EffectiveScore: effective, SentimentScore: score, Signal: signal, ArticleCount: n,
	}
}

// SimAdjustments carries the sentiment-derived parameter overrides fed into
// the Monte-Carlo models per SPEC_FULL.md §4.1.
type SimAdjustments struct {
	DriftAdjDaily   float64
	VolMultiplier   float64
	VarianceMultiplier float64
	HestoRhoShift   float64
	MertonLamMult   float64
	MertonMuJAdj    float64
	MertonSigJMult  float64
	EnsembleWeights map[string]float64 // gbm/garch/heston/merton overrides, sum=1
}

// SentimentAdjustments computes every simulation-parameter override named in
// SPEC_FULL.md §4.1's "Sentiment -> simulation adjustments" section. Only
// call this for active-status sentiment results.
func SentimentAdjustments(s SentimentResult, alpha, beta, delta, gammaLambda, gammaMu float64, baseWeights map[string]float64) SimAdjustments {
	S := s.EffectiveScore
	D, I, C := s.Direction, s.Intensity, s.Confidence

	driftAdj := clip(alpha*S/252, -0.10/252, 0.10/252)

	var volMult float64
	if D >= 0 {
		volMult = 1 - beta*D*I*C
	} else {
		volMult = 1 + beta*math.Abs(D)*(1+delta)*I*C
	}
	volMult = clip(volMult, 0.70, 1.50)
	varMult := volMult * volMult

	rhoShift := -0.10 * math.Max(0, -S)

	lamMult := clip(1+gammaLambda*math.Max(0, -S), 0.5, 3.0)
	muJAdj := -gammaMu * math.Max(0, -S)
	sigJMult := clip(1+0.5*math.Max(0, -S), 0.5, 2.0)

	weights := ensembleWeightOverrides(S, baseWeights)

	return SimAdjustments{
		DriftAdjDaily:      driftAdj,
		VolMultiplier:      volMult,
		VarianceMultiplier: varMult,
		HestoRhoShift:      rhoShift,
		MertonLamMult:      lamMult,
		MertonMuJAdj:       muJAdj,
		MertonSigJMult:     sigJMult,
		EnsembleWeights:    weights,
	}
}

// ensembleWeightOverrides computes the softmax-weighted ensemble override per
// SPEC_FULL.md §4.1: phi = (S, -0.8S, 0.6|S|, 1.2*max(0,-S)) against the base
// GBM/GARCH/Heston/Merton weights, renormalised to sum 1.
func ensembleWeightOverrides(S float64, baseWeights map[string]float64) map[string]float64 {
	phi := map[string]float64{
		"gbm":    S,
		"garch":  -0.8 * S,
		"heston": 0.6 * math.Abs(S),
		"merton": 1.2 * math.Max(0, -S),
	}

	raw := make(map[string]float64, 4)
	var total float64
	for _, model := range []string{"gbm", "garch", "heston", "merton"} {
		base := baseWeights[model]
		v := base * math.Exp(phi[model])
		raw[model] = v
		total += v
	}
	if total <= 0 {
		n := float64(len(raw))
		out := make(map[string]float64, len(raw))
		for k := range raw {
			out[k] = 1.0 / n
		}
		return out
	}
	out := make(map[string]float64, len(raw))
	for k, v := range raw {
		out[k] = v / total
	}
	return out
}
