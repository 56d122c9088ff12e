package news

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/riemannulus/whaleback/infra/breakers"
)

// httpEscalationClient implements EscalationClassifier against a stateless
// message API (§6.2): a single request/response exchange with a strictly
// parsed response body. It is wrapped in the same circuit-breaker + rate
// limiter pattern the teacher's provider clients use for every external
// collaborator.
type httpEscalationClient struct {
	endpoint string
	apiKey   string
	client   *http.Client
	breaker  *breakers.Breaker
	limiter  *rate.Limiter
}

// NewHTTPEscalationClient builds an EscalationClassifier against a generic
// message-completion endpoint. The prompt asks for a strictly formatted
// "label|confidence" response so parsing stays trivial and adapter-agnostic.
func NewHTTPEscalationClient(endpoint, apiKey string, requestsPerSecond float64) EscalationClassifier {
	return &httpEscalationClient{
		endpoint: endpoint,
		apiKey:   apiKey,
		client:   &http.Client{Timeout: 15 * time.Second},
		breaker:  breakers.New("news-escalation"),
		limiter:  rate.NewLimiter(rate.Limit(requestsPerSecond), 1),
	}
}

type escalationRequest struct {
	Prompt string `json:"prompt"`
}

type escalationResponse struct {
	Text string `json:"text"`
}

func (c *httpEscalationClient) Classify(ctx context.Context, text string) (EscalationResult, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return EscalationResult{}, fmt.Errorf("escalation rate limit wait: %w", err)
	}

	result, err := c.breaker.Execute(func() (any, error) {
		return c.call(ctx, text)
	})
	if err != nil {
		return EscalationResult{}, fmt.Errorf("escalation call: %w", err)
	}
	return result.(EscalationResult), nil
}

func (c *httpEscalationClient) call(ctx context.Context, text string) (EscalationResult, error) {
	prompt := fmt.Sprintf(
		"Classify the sentiment of this financial news text as negative, neutral, or positive. "+
			"Respond with exactly \"label|confidence\" where confidence is a number in [0,1].\n\nText: %s", text)

	body, err := json.Marshal(escalationRequest{Prompt: prompt})
	if err != nil {
		return EscalationResult{}, fmt.Errorf("marshal escalation request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return EscalationResult{}, fmt.Errorf("build escalation request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return EscalationResult{}, fmt.Errorf("escalation request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return EscalationResult{}, fmt.Errorf("escalation endpoint returned status %d", resp.StatusCode)
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return EscalationResult{}, fmt.Errorf("read escalation response: %w", err)
	}

	var parsed escalationResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return EscalationResult{}, fmt.Errorf("unmarshal escalation response: %w", err)
	}

	return parseEscalationText(parsed.Text)
}

func parseEscalationText(text string) (EscalationResult, error) {
	parts := strings.SplitN(strings.TrimSpace(text), "|", 2)
	if len(parts) != 2 {
		return EscalationResult{}, fmt.Errorf("malformed escalation response: %q", text)
	}
	label := strings.ToLower(strings.TrimSpace(parts[0]))
	if label != "negative" && label != "neutral" && label != "positive" {
		return EscalationResult{}, fmt.Errorf("unknown escalation label: %q", label)
	}
	var confidence float64
	if _, err := fmt.Sscanf(strings.TrimSpace(parts[1]), "%f", &confidence); err != nil {
		return EscalationResult{}, fmt.Errorf("malformed escalation confidence: %q", parts[1])
	}
	if confidence < 0 || confidence > 1 {
		return EscalationResult{}, fmt.Errorf("escalation confidence out of range: %f", confidence)
	}
	return EscalationResult{Label: label, Confidence: confidence}, nil
}
