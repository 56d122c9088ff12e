// Package news implements the optional sentiment stage (C5): fetching,
// deduplicating, and two-stage scoring of news articles per ticker, then
// aggregating via the sentiment decomposition kernel.
package news

import (
	"context"
	"time"
)

// RawArticle is a normalised article record before scoring, per SPEC_FULL.md
// §4.5's article-record shape.
type RawArticle struct {
	Ticker      string
	Title       string
	Description string
	PublishedAt time.Time
	SourceURL   string
	SourceName  string
	ArticleType string // earnings | analyst | disclosure | general
	SourceType  string // financial | portal | general
	Importance  float64
	// PreScored is true for disclosure headlines, which are rule-based
	// neutral with confidence 1.0 and never sent to a classifier.
	PreScored bool
}

// ScoredArticle attaches a sentiment label/score/confidence to a RawArticle.
type ScoredArticle struct {
	RawArticle
	Sentiment  float64 // P(pos) - P(neg), or the pre-scored/escalated value
	Confidence float64
	Label      string // negative | neutral | positive
	Escalated  bool
}

// Fetcher retrieves raw articles for one ticker from an external source.
// Concrete adapters (general-news search, official disclosures) implement
// this; the production HTTP adapter is NewHTTPFetcher in fetcher_http.go.
type Fetcher interface {
	FetchGeneralNews(ctx context.Context, ticker, displayName string) ([]RawArticle, error)
	FetchDisclosures(ctx context.Context, ticker string) ([]RawArticle, error)
}
