package news

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type fakeFetcher struct {
	general     map[string][]RawArticle
	disclosures map[string][]RawArticle
}

func (f *fakeFetcher) FetchGeneralNews(ctx context.Context, ticker, displayName string) ([]RawArticle, error) {
	return f.general[ticker], nil
}

func (f *fakeFetcher) FetchDisclosures(ctx context.Context, ticker string) ([]RawArticle, error) {
	return f.disclosures[ticker], nil
}

type fakeLocal struct {
	scores map[string]ClassProbabilities
}

func (f *fakeLocal) ClassifyBatch(ctx context.Context, texts []string) ([]ClassProbabilities, error) {
	out := make([]ClassProbabilities, len(texts))
	for i, t := range texts {
		p, ok := f.scores[t]
		if !ok {
			p = ClassProbabilities{Neutral: 1.0}
		}
		out[i] = p
	}
	return out, nil
}

type fakeEscalation struct {
	calls int
}

func (f *fakeEscalation) Classify(ctx context.Context, text string) (EscalationResult, error) {
	f.calls++
	return EscalationResult{Label: "positive", Confidence: 0.95}, nil
}

func TestRun_DedupesBySourceURL(t *testing.T) {
	now := time.Now()
	fetcher := &fakeFetcher{
		general: map[string][]RawArticle{
			"005930": {
				{Ticker: "005930", Title: "a", Description: "strong growth", SourceURL: "https://x/1", PublishedAt: now, SourceName: "wire"},
				{Ticker: "005930", Title: "a-dup", Description: "strong growth", SourceURL: "https://x/1", PublishedAt: now, SourceName: "wire"},
			},
		},
		disclosures: map[string][]RawArticle{
			"005930": {
				{Ticker: "005930", Title: "disclosure", SourceURL: "https://x/2", PublishedAt: now, SourceName: "krx", PreScored: true, ArticleType: "disclosure"},
			},
		},
	}
	local := &fakeLocal{scores: map[string]ClassProbabilities{
		"a. strong growth": {Positive: 0.9},
	}}

	result, errs := Run(context.Background(), []TickerInput{{Ticker: "005930", DisplayName: "Samsung"}}, fetcher, local, nil, DefaultStageConfig())
	require.Empty(t, errs)
	require.Len(t, result.Articles, 2)
}

func TestRun_EscalatesLowConfidenceAndRespectsCap(t *testing.T) {
	now := time.Now()
	fetcher := &fakeFetcher{
		general: map[string][]RawArticle{
			"000660": {
				{Ticker: "000660", Title: "t1", Description: "d1", SourceURL: "https://x/1", PublishedAt: now, SourceName: "wire"},
				{Ticker: "000660", Title: "t2", Description: "d2", SourceURL: "https://x/2", PublishedAt: now, SourceName: "wire"},
			},
		},
	}
	local := &fakeLocal{} // everything falls back to Neutral:1.0 -> confidence 1.0, above the default threshold
	escalation := &fakeEscalation{}

	cfg := DefaultStageConfig()
	cfg.EscalationThreshold = 1.1 // force every article below threshold
	cfg.EscalationCap = 1

	result, errs := Run(context.Background(), []TickerInput{{Ticker: "000660", DisplayName: "SK Hynix"}}, fetcher, local, escalation, cfg)
	require.Empty(t, errs)
	require.Equal(t, 1, escalation.calls)
	require.Len(t, result.Articles, 2)

	var escalatedCount int
	for _, a := range result.Articles {
		if a.Escalated {
			escalatedCount++
		}
	}
	require.Equal(t, 1, escalatedCount)
}

func TestRun_PreScoredArticlesSkipClassification(t *testing.T) {
	now := time.Now()
	fetcher := &fakeFetcher{
		disclosures: map[string][]RawArticle{
			"035420": {
				{Ticker: "035420", Title: "filing", SourceURL: "https://x/1", PublishedAt: now, SourceName: "krx", PreScored: true},
			},
		},
	}
	local := &fakeLocal{}

	result, errs := Run(context.Background(), []TickerInput{{Ticker: "035420", DisplayName: "Naver"}}, fetcher, local, nil, DefaultStageConfig())
	require.Empty(t, errs)
	require.Len(t, result.Articles, 1)
	require.Equal(t, "neutral", result.Articles[0].Label)
	require.Equal(t, 1.0, result.Articles[0].Confidence)
}
