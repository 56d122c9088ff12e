package news

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/riemannulus/whaleback/internal/engine/errs"
	"github.com/riemannulus/whaleback/internal/kernels"
)

// Snapshot is the per-ticker aggregated sentiment output, per SPEC_FULL.md
// §3's NewsSnapshot entity.
type Snapshot struct {
	Ticker           string
	kernels.SentimentResult
	SourceBreakdown map[string]int
}

// StageConfig controls C5's fetch/dedupe/score behaviour.
type StageConfig struct {
	MaxConcurrency      int
	EscalationThreshold float64 // stage-1 confidence below this escalates
	EscalationCap       int     // 0 = unbounded
	HalfLifeDays        float64
	MinArticles         int
}

// DefaultStageConfig matches SPEC_FULL.md §4.5's documented defaults.
func DefaultStageConfig() StageConfig {
	return StageConfig{
		MaxConcurrency:      5,
		EscalationThreshold: 0.70,
		EscalationCap:       0,
		HalfLifeDays:        3.0,
		MinArticles:         2,
	}
}

// TickerInput names the tickers the news stage fetches for.
type TickerInput struct {
	Ticker      string
	DisplayName string
}

// Result is the stage's output: per-ticker snapshots plus the full
// scored-article set for persistence.
type Result struct {
	Snapshots map[string]Snapshot
	Articles  []ScoredArticle
}

// Run implements C5 end to end: bounded-concurrency fetch per ticker,
// dedupe by source URL, two-stage scoring, and per-ticker aggregation via
// the sentiment decomposition kernel. A per-ticker fetch failure is logged
// by the caller (via the returned error wrapped as errs.PerTickerFailure)
// and does not abort the stage for other tickers.
func Run(ctx context.Context, inputs []TickerInput, fetcher Fetcher, local LocalClassifier, escalate EscalationClassifier, cfg StageConfig) (*Result, []error) {
	type fetchOutcome struct {
		ticker   string
		articles []RawArticle
		err      error
	}

	outcomes := make([]fetchOutcome, len(inputs))
	sem := make(chan struct{}, cfg.MaxConcurrency)
	var wg sync.WaitGroup

	for i, in := range inputs {
		i, in := i, in
		wg.Add(1)
		go func() {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			general, err := fetcher.FetchGeneralNews(ctx, in.Ticker, in.DisplayName)
			if err != nil {
				outcomes[i] = fetchOutcome{ticker: in.Ticker, err: errs.NewPerTickerFailure(in.Ticker, "news-fetch", err)}
				return
			}
			disclosures, err := fetcher.FetchDisclosures(ctx, in.Ticker)
			if err != nil {
				outcomes[i] = fetchOutcome{ticker: in.Ticker, err: errs.NewPerTickerFailure(in.Ticker, "news-fetch", err)}
				return
			}
			outcomes[i] = fetchOutcome{ticker: in.Ticker, articles: dedupe(append(general, disclosures...))}
		}()
	}
	wg.Wait()

	var fetchErrors []error
	byTicker := map[string][]RawArticle{}
	for _, o := range outcomes {
		if o.err != nil {
			fetchErrors = append(fetchErrors, o.err)
			continue
		}
		byTicker[o.ticker] = o.articles
	}

	scored, scoreErrors := scoreAll(ctx, byTicker, local, escalate, cfg)

	snapshots := make(map[string]Snapshot, len(byTicker))
	for ticker, arts := range scored {
		kernelInputs := make([]kernels.ArticleInput, 0, len(arts))
		breakdown := map[string]int{}
		for _, a := range arts {
			kernelInputs = append(kernelInputs, kernels.ArticleInput{
				SentimentRaw: a.Sentiment,
				PublishedAt:  a.PublishedAt,
				SourceType:   a.SourceType,
				ArticleType:  a.ArticleType,
				Importance:   a.Importance,
			})
			breakdown[a.SourceName]++
		}
		sent := kernels.SentimentDecomposition(kernelInputs, cfg.HalfLifeDays, cfg.MinArticles)
		if sent.Status == "no_data" {
			continue // §4.5: skip no-data status to save space
		}
		snapshots[ticker] = Snapshot{Ticker: ticker, SentimentResult: sent, SourceBreakdown: breakdown}
	}

	var allScored []ScoredArticle
	for _, arts := range scored {
		allScored = append(allScored, arts...)
	}

	return &Result{Snapshots: snapshots, Articles: allScored}, append(fetchErrors, scoreErrors...)
}

func dedupe(articles []RawArticle) []RawArticle {
	seen := map[string]bool{}
	out := make([]RawArticle, 0, len(articles))
	for _, a := range articles {
		if seen[a.SourceURL] {
			continue
		}
		seen[a.SourceURL] = true
		out = append(out, a)
	}
	return out
}

// scoreAll implements the two-stage scoring in §4.5: stage 1 batch-classify
// non-pre-scored articles, then escalate everything below the confidence
// threshold (lowest-confidence first, optionally capped).
func scoreAll(ctx context.Context, byTicker map[string][]RawArticle, local LocalClassifier, escalate EscalationClassifier, cfg StageConfig) (map[string][]ScoredArticle, []error) {
	out := make(map[string][]ScoredArticle, len(byTicker))
	var errors []error

	for ticker, articles := range byTicker {
		scored := make([]ScoredArticle, 0, len(articles))
		var toClassify []RawArticle
		for _, a := range articles {
			if a.PreScored {
				scored = append(scored, ScoredArticle{RawArticle: a, Sentiment: 0, Confidence: 1.0, Label: "neutral"})
				continue
			}
			toClassify = append(toClassify, a)
		}

		if len(toClassify) > 0 {
			texts := make([]string, len(toClassify))
			for i, a := range toClassify {
				texts[i] = a.Title + ". " + a.Description
			}
			probs, err := local.ClassifyBatch(ctx, texts)
			if err != nil {
				errors = append(errors, errs.NewPerTickerFailure(ticker, "news-classify", err))
				continue
			}
			for i, a := range toClassify {
				p := probs[i]
				sentiment := p.Positive - p.Negative
				confidence, label := argmax(p)
				scored = append(scored, ScoredArticle{RawArticle: a, Sentiment: sentiment, Confidence: confidence, Label: label})
			}
		}

		if escalate != nil {
			scored = escalateLowConfidence(ctx, ticker, scored, escalate, cfg, &errors)
		}

		out[ticker] = scored
	}

	return out, errors
}

func argmax(p ClassProbabilities) (float64, string) {
	best := p.Negative
	label := "negative"
	if p.Neutral > best {
		best = p.Neutral
		label = "neutral"
	}
	if p.Positive > best {
		best = p.Positive
		label = "positive"
	}
	return best, label
}

func escalateLowConfidence(ctx context.Context, ticker string, scored []ScoredArticle, escalate EscalationClassifier, cfg StageConfig, errors *[]error) []ScoredArticle {
	candidates := make([]int, 0, len(scored))
	for i, a := range scored {
		if !a.RawArticle.PreScored && a.Confidence < cfg.EscalationThreshold {
			candidates = append(candidates, i)
		}
	}
	sort.Slice(candidates, func(i, j int) bool {
		return scored[candidates[i]].Confidence < scored[candidates[j]].Confidence
	})
	if cfg.EscalationCap > 0 && len(candidates) > cfg.EscalationCap {
		candidates = candidates[:cfg.EscalationCap]
	}

	for _, idx := range candidates {
		a := scored[idx]
		result, err := escalate.Classify(ctx, a.Title+". "+a.Description)
		if err != nil {
			*errors = append(*errors, errs.NewPerTickerFailure(ticker, "news-escalate", fmt.Errorf("article %s: %w", a.SourceURL, err)))
			continue
		}
		sentiment := labelToSentiment(result.Label)
		scored[idx].Sentiment = sentiment
		scored[idx].Confidence = result.Confidence
		scored[idx].Label = result.Label
		scored[idx].Escalated = true
	}
	return scored
}

func labelToSentiment(label string) float64 {
	switch label {
	case "positive":
		return 1.0
	case "negative":
		return -1.0
	default:
		return 0.0
	}
}
