package news

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/time/rate"

	"github.com/riemannulus/whaleback/infra/breakers"
)

// httpFetcher implements Fetcher against the two external collaborators
// named in §6.2: a general news search endpoint and an official disclosure
// list endpoint. Each call is wrapped in a circuit breaker and rate limiter,
// one instance per collaborator, matching the teacher's per-provider
// breaker/limiter pairing; retries follow
// internal/infrastructure/httpclient.ClientPool's exponential-backoff-with-
// jitter shape, capped at five retries (six attempts in all) per §6.2.
type httpFetcher struct {
	newsSearchURL string
	newsClientID  string
	newsSecret    string

	disclosureURL string
	disclosureKey string

	client           *http.Client
	newsBreaker      *breakers.Breaker
	disclosureBreaker *breakers.Breaker
	newsLimiter      *rate.Limiter
	disclosureLimiter *rate.Limiter

	maxRetries  int
	backoffBase time.Duration
	backoffMax  time.Duration
}

// NewHTTPFetcher builds a Fetcher against the general-news-search and
// disclosure-list HTTP collaborators described in SPEC_FULL.md §6.2.
func NewHTTPFetcher(newsSearchURL, newsClientID, newsSecret, disclosureURL, disclosureKey string, requestsPerSecond float64) Fetcher {
	return &httpFetcher{
		newsSearchURL:     newsSearchURL,
		newsClientID:      newsClientID,
		newsSecret:        newsSecret,
		disclosureURL:     disclosureURL,
		disclosureKey:     disclosureKey,
		client:            &http.Client{Timeout: 12 * time.Second},
		newsBreaker:       breakers.New("news-search"),
		disclosureBreaker: breakers.New("disclosure-list"),
		newsLimiter:       rate.NewLimiter(rate.Limit(requestsPerSecond), 1),
		disclosureLimiter: rate.NewLimiter(rate.Limit(requestsPerSecond), 1),
		maxRetries:        5,
		backoffBase:       500 * time.Millisecond,
		backoffMax:        10 * time.Second,
	}
}

type newsSearchResponse struct {
	Items []struct {
		Title       string `json:"title"`
		Description string `json:"description"`
		Link        string `json:"link"`
		PubDate     string `json:"pubDate"`
	} `json:"items"`
}

// FetchGeneralNews queries the news-search endpoint with query=displayName,
// parsing each result into a general-type RawArticle.
func (f *httpFetcher) FetchGeneralNews(ctx context.Context, ticker, displayName string) ([]RawArticle, error) {
	if err := f.newsLimiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("news search rate limit wait: %w", err)
	}

	q := url.Values{}
	q.Set("query", displayName)
	q.Set("display", "50")
	q.Set("sort", "date")
	reqURL := f.newsSearchURL + "?" + q.Encode()

	result, err := f.newsBreaker.Execute(func() (any, error) {
		return f.doWithRetry(ctx, reqURL, map[string]string{
			"X-Naver-Client-Id":     f.newsClientID,
			"X-Naver-Client-Secret": f.newsSecret,
		})
	})
	if err != nil {
		return nil, fmt.Errorf("news search call for %s: %w", ticker, err)
	}

	var parsed newsSearchResponse
	if err := json.Unmarshal(result.([]byte), &parsed); err != nil {
		return nil, fmt.Errorf("unmarshal news search response for %s: %w", ticker, err)
	}

	articles := make([]RawArticle, 0, len(parsed.Items))
	for _, item := range parsed.Items {
		published, _ := time.Parse(time.RFC1123Z, item.PubDate)
		articles = append(articles, RawArticle{
			Ticker:      ticker,
			Title:       item.Title,
			Description: item.Description,
			PublishedAt: published,
			SourceURL:   item.Link,
			SourceName:  "news_search",
			ArticleType: "general",
			SourceType:  "portal",
			Importance:  1.0,
		})
	}
	return articles, nil
}

type disclosureListResponse struct {
	Status string `json:"status"`
	Message string `json:"message"`
	List   []struct {
		ReportNm string `json:"report_nm"`
		RceptDt  string `json:"rcept_dt"`
		RceptNo  string `json:"rcept_no"`
	} `json:"list"`
}

// FetchDisclosures queries the disclosure-list endpoint for the last 90 days
// and returns one pre-scored, rule-based-neutral RawArticle per filing,
// matching §4.5's "disclosure headlines are pre-scored, never sent to a
// classifier" rule. Status "013" (empty result) is not an error.
func (f *httpFetcher) FetchDisclosures(ctx context.Context, ticker string) ([]RawArticle, error) {
	if err := f.disclosureLimiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("disclosure list rate limit wait: %w", err)
	}

	now := time.Now()
	q := url.Values{}
	q.Set("crtfc_key", f.disclosureKey)
	q.Set("corp_code", ticker)
	q.Set("bgn_de", now.AddDate(0, 0, -90).Format("20060102"))
	q.Set("end_de", now.Format("20060102"))
	reqURL := f.disclosureURL + "?" + q.Encode()

	result, err := f.disclosureBreaker.Execute(func() (any, error) {
		return f.doWithRetry(ctx, reqURL, nil)
	})
	if err != nil {
		return nil, fmt.Errorf("disclosure list call for %s: %w", ticker, err)
	}

	var parsed disclosureListResponse
	if err := json.Unmarshal(result.([]byte), &parsed); err != nil {
		return nil, fmt.Errorf("unmarshal disclosure list response for %s: %w", ticker, err)
	}

	switch parsed.Status {
	case "000":
		// success, fall through
	case "013":
		return nil, nil // empty result, not an error
	default:
		return nil, fmt.Errorf("disclosure list returned status %s: %s", parsed.Status, parsed.Message)
	}

	articles := make([]RawArticle, 0, len(parsed.List))
	for _, item := range parsed.List {
		published, _ := time.Parse("20060102", item.RceptDt)
		articles = append(articles, RawArticle{
			Ticker:      ticker,
			Title:       item.ReportNm,
			PublishedAt: published,
			SourceURL:   "dart://" + item.RceptNo,
			SourceName:  "disclosure",
			ArticleType: "disclosure",
			SourceType:  "financial",
			Importance:  1.5,
			PreScored:   true,
		})
	}
	return articles, nil
}

func (f *httpFetcher) doWithRetry(ctx context.Context, reqURL string, headers map[string]string) ([]byte, error) {
	var lastErr error
	for attempt := 0; attempt <= f.maxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-time.After(f.calculateBackoff(attempt)):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
		if err != nil {
			return nil, fmt.Errorf("build request: %w", err)
		}
		for k, v := range headers {
			req.Header.Set(k, v)
		}

		resp, err := f.client.Do(req)
		if err != nil {
			lastErr = err
			continue
		}

		if isRetryableStatus(resp.StatusCode) && attempt < f.maxRetries {
			resp.Body.Close()
			lastErr = fmt.Errorf("HTTP %d", resp.StatusCode)
			continue
		}
		if resp.StatusCode != http.StatusOK {
			resp.Body.Close()
			return nil, fmt.Errorf("HTTP %d", resp.StatusCode)
		}

		body, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			return nil, fmt.Errorf("read response body: %w", err)
		}
		return body, nil
	}
	return nil, lastErr
}

func (f *httpFetcher) calculateBackoff(attempt int) time.Duration {
	backoff := f.backoffBase * time.Duration(1<<uint(attempt))
	if backoff > f.backoffMax {
		backoff = f.backoffMax
	}
	jitter := time.Duration(rand.Float64() * 0.1 * float64(backoff))
	return backoff + jitter
}

func isRetryableStatus(statusCode int) bool {
	switch statusCode {
	case http.StatusTooManyRequests, http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		return true
	}
	return false
}
