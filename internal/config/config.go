// Package config loads the engine's runtime configuration from environment
// variables, following the WB_ prefix convention of the reference
// implementation's settings module.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Config holds every tunable named in the engine entry point contract.
type Config struct {
	DatabaseURL string

	DBHost     string
	DBPort     int
	DBName     string
	DBUser     string
	DBPassword string

	RiskFreeRate      float64
	EquityRiskPremium float64
	WhaleLookbackDays int

	SimPathCount    int
	SimWeights      map[string]float64 // gbm/garch/heston/merton base ensemble weights
	SimMaxSigma     float64
	SimMinHistDays  int
	SimWorkerCount  int
	SimHorizonsDays []int

	GarchP int
	GarchQ int

	HestonKappa float64
	HestonTheta float64
	HestonXi    float64
	HestonRho   float64

	MertonLambda float64
	MertonMuJ    float64
	MertonSigmaJ float64

	SentimentAlpha       float64
	SentimentBeta        float64
	SentimentDelta       float64
	SentimentGammaLambda float64
	SentimentGammaMu     float64

	NewsHalfLifeDays     float64
	NewsMinArticles      int
	ClassifierConfidence float64
	NewsBatchMode        bool // read from WB_NEWS_BATCH_MODE; no stage consults it, and escalation always makes one call per article

	NewsAPIClientID     string
	NewsAPIClientSecret string
	DisclosureAPIKey    string
	LLMAPIKey           string

	NewsSearchURL string
	DisclosureURL string
	LLMEndpoint   string

	NewsConcurrency   int
	NewsMinSpacingMs  int
	NewsRequestTimeoutS int
	NewsMaxRetries    int

	AdminPort int
}

// Default returns the documented defaults from SPEC_FULL.md §6.3.
func Default() Config {
	return Config{
		DBHost: "localhost",
		DBPort: 5432,
		DBName: "whaleback",
		DBUser: "whaleback",

		RiskFreeRate:      0.035,
		EquityRiskPremium: 0.065,
		WhaleLookbackDays: 20,

		SimPathCount: 10000,
		SimWeights: map[string]float64{
			"gbm": 0.25, "garch": 0.30, "heston": 0.20, "merton": 0.25,
		},
		SimMaxSigma:     1.50,
		SimMinHistDays:  60,
		SimWorkerCount:  4,
		SimHorizonsDays: []int{21, 63, 126, 252},

		GarchP: 1,
		GarchQ: 1,

		HestonKappa: 2.0,
		HestonTheta: 0.04,
		HestonXi:    0.3,
		HestonRho:   -0.7,

		MertonLambda: 3.0,
		MertonMuJ:    0.0,
		MertonSigmaJ: 0.06,

		SentimentAlpha:       0.08,
		SentimentBeta:        0.15,
		SentimentDelta:       0.50,
		SentimentGammaLambda: 1.50,
		SentimentGammaMu:     0.03,

		NewsHalfLifeDays:     3.0,
		NewsMinArticles:      2,
		ClassifierConfidence: 0.70,
		NewsBatchMode:        false,

		NewsSearchURL: "https://openapi.naver.com/v1/search/news.json",
		DisclosureURL: "https://opendart.fss.or.kr/api/list.json",
		LLMEndpoint:   "https://api.openai.com/v1/chat/completions",

		NewsConcurrency:     3,
		NewsMinSpacingMs:    350,
		NewsRequestTimeoutS: 12,
		NewsMaxRetries:      5,

		AdminPort: 9190,
	}
}

// Load reads WB_-prefixed environment variables over the documented
// defaults, matching the reference settings module's field set.
func Load() (Config, error) {
	c := Default()

	c.DBHost = getString("WB_DB_HOST", c.DBHost)
	c.DBName = getString("WB_DB_NAME", c.DBName)
	c.DBUser = getString("WB_DB_USER", c.DBUser)
	c.DBPassword = getString("WB_DB_PASSWORD", c.DBPassword)
	if v, err := getInt("WB_DB_PORT", c.DBPort); err != nil {
		return c, err
	} else {
		c.DBPort = v
	}

	if url := os.Getenv("WB_DATABASE_URL"); url != "" {
		c.DatabaseURL = url
	} else {
		c.DatabaseURL = fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=disable",
			c.DBUser, c.DBPassword, c.DBHost, c.DBPort, c.DBName)
	}

	var err error
	if c.RiskFreeRate, err = getFloat("WB_RISK_FREE_RATE", c.RiskFreeRate); err != nil {
		return c, err
	}
	if c.EquityRiskPremium, err = getFloat("WB_EQUITY_RISK_PREMIUM", c.EquityRiskPremium); err != nil {
		return c, err
	}
	if c.WhaleLookbackDays, err = getInt("WB_WHALE_LOOKBACK_DAYS", c.WhaleLookbackDays); err != nil {
		return c, err
	}
	if c.SimPathCount, err = getInt("WB_SIM_PATH_COUNT", c.SimPathCount); err != nil {
		return c, err
	}
	if c.SimMaxSigma, err = getFloat("WB_SIM_MAX_SIGMA", c.SimMaxSigma); err != nil {
		return c, err
	}
	if c.SimMinHistDays, err = getInt("WB_SIM_MIN_HIST_DAYS", c.SimMinHistDays); err != nil {
		return c, err
	}
	if c.SimWorkerCount, err = getInt("WB_SIM_WORKER_COUNT", c.SimWorkerCount); err != nil {
		return c, err
	}
	if w := os.Getenv("WB_SIM_WEIGHTS"); w != "" {
		parsed, err := parseWeights(w)
		if err != nil {
			return c, fmt.Errorf("WB_SIM_WEIGHTS: %w", err)
		}
		c.SimWeights = parsed
	}

	if c.HestonKappa, err = getFloat("WB_HESTON_KAPPA", c.HestonKappa); err != nil {
		return c, err
	}
	if c.HestonTheta, err = getFloat("WB_HESTON_THETA", c.HestonTheta); err != nil {
		return c, err
	}
	if c.HestonXi, err = getFloat("WB_HESTON_XI", c.HestonXi); err != nil {
		return c, err
	}
	if c.HestonRho, err = getFloat("WB_HESTON_RHO", c.HestonRho); err != nil {
		return c, err
	}

	if c.MertonLambda, err = getFloat("WB_MERTON_LAMBDA", c.MertonLambda); err != nil {
		return c, err
	}
	if c.MertonMuJ, err = getFloat("WB_MERTON_MU_J", c.MertonMuJ); err != nil {
		return c, err
	}
	if c.MertonSigmaJ, err = getFloat("WB_MERTON_SIGMA_J", c.MertonSigmaJ); err != nil {
		return c, err
	}

	if c.SentimentAlpha, err = getFloat("WB_SENTIMENT_ALPHA", c.SentimentAlpha); err != nil {
		return c, err
	}
	if c.SentimentBeta, err = getFloat("WB_SENTIMENT_BETA", c.SentimentBeta); err != nil {
		return c, err
	}
	if c.SentimentDelta, err = getFloat("WB_SENTIMENT_DELTA", c.SentimentDelta); err != nil {
		return c, err
	}
	if c.SentimentGammaLambda, err = getFloat("WB_SENTIMENT_GAMMA_LAMBDA", c.SentimentGammaLambda); err != nil {
		return c, err
	}
	if c.SentimentGammaMu, err = getFloat("WB_SENTIMENT_GAMMA_MU", c.SentimentGammaMu); err != nil {
		return c, err
	}

	if c.NewsHalfLifeDays, err = getFloat("WB_NEWS_HALF_LIFE_DAYS", c.NewsHalfLifeDays); err != nil {
		return c, err
	}
	if c.NewsMinArticles, err = getInt("WB_NEWS_MIN_ARTICLES", c.NewsMinArticles); err != nil {
		return c, err
	}
	if c.ClassifierConfidence, err = getFloat("WB_CLASSIFIER_CONFIDENCE", c.ClassifierConfidence); err != nil {
		return c, err
	}
	if v, err := getBool("WB_NEWS_BATCH_MODE", c.NewsBatchMode); err != nil {
		return c, err
	} else {
		c.NewsBatchMode = v
	}

	c.NewsAPIClientID = getString("WB_NEWS_API_CLIENT_ID", c.NewsAPIClientID)
	c.NewsAPIClientSecret = getString("WB_NEWS_API_CLIENT_SECRET", c.NewsAPIClientSecret)
	c.DisclosureAPIKey = getString("WB_DISCLOSURE_API_KEY", c.DisclosureAPIKey)
	c.LLMAPIKey = getString("WB_LLM_API_KEY", c.LLMAPIKey)

	c.NewsSearchURL = getString("WB_NEWS_SEARCH_URL", c.NewsSearchURL)
	c.DisclosureURL = getString("WB_DISCLOSURE_URL", c.DisclosureURL)
	c.LLMEndpoint = getString("WB_LLM_ENDPOINT", c.LLMEndpoint)

	if c.NewsConcurrency, err = getInt("WB_NEWS_CONCURRENCY", c.NewsConcurrency); err != nil {
		return c, err
	}
	if c.NewsMinSpacingMs, err = getInt("WB_NEWS_MIN_SPACING_MS", c.NewsMinSpacingMs); err != nil {
		return c, err
	}
	if c.NewsRequestTimeoutS, err = getInt("WB_NEWS_REQUEST_TIMEOUT_S", c.NewsRequestTimeoutS); err != nil {
		return c, err
	}
	if c.NewsMaxRetries, err = getInt("WB_NEWS_MAX_RETRIES", c.NewsMaxRetries); err != nil {
		return c, err
	}
	if c.AdminPort, err = getInt("WB_ADMIN_PORT", c.AdminPort); err != nil {
		return c, err
	}

	if err := c.Validate(); err != nil {
		return c, err
	}
	return c, nil
}

// Validate walks every cross-field invariant the engine depends on,
// mirroring the teacher's providers.go Validate() shape.
func (c Config) Validate() error {
	if c.DatabaseURL == "" {
		return fmt.Errorf("database url must not be empty")
	}
	if c.WhaleLookbackDays <= 0 {
		return fmt.Errorf("whale lookback days must be positive, got %d", c.WhaleLookbackDays)
	}
	if c.SimPathCount <= 0 {
		return fmt.Errorf("sim path count must be positive, got %d", c.SimPathCount)
	}
	if c.SimWorkerCount <= 0 {
		return fmt.Errorf("sim worker count must be positive, got %d", c.SimWorkerCount)
	}
	if c.SimMaxSigma <= 0 {
		return fmt.Errorf("sim max sigma must be positive, got %f", c.SimMaxSigma)
	}
	if c.SimMinHistDays <= 0 {
		return fmt.Errorf("sim min history days must be positive, got %d", c.SimMinHistDays)
	}
	var sum float64
	for name, w := range c.SimWeights {
		if w < 0 {
			return fmt.Errorf("negative simulation weight for model %s: %f", name, w)
		}
		sum += w
	}
	for _, required := range []string{"gbm", "garch", "heston", "merton"} {
		if _, ok := c.SimWeights[required]; !ok {
			return fmt.Errorf("missing simulation weight for model %s", required)
		}
	}
	if sum <= 0 {
		return fmt.Errorf("simulation weights must sum to a positive value, got %f", sum)
	}
	if c.NewsConcurrency <= 0 {
		return fmt.Errorf("news concurrency must be positive, got %d", c.NewsConcurrency)
	}
	if c.NewsMinArticles < 0 {
		return fmt.Errorf("news min articles must be non-negative, got %d", c.NewsMinArticles)
	}
	if c.ClassifierConfidence < 0 || c.ClassifierConfidence > 1 {
		return fmt.Errorf("classifier confidence threshold must be in [0,1], got %f", c.ClassifierConfidence)
	}
	return nil
}

func parseWeights(raw string) (map[string]float64, error) {
	out := map[string]float64{}
	for _, pair := range strings.Split(raw, ",") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		kv := strings.SplitN(pair, "=", 2)
		if len(kv) != 2 {
			return nil, fmt.Errorf("malformed weight entry %q", pair)
		}
		v, err := strconv.ParseFloat(strings.TrimSpace(kv[1]), 64)
		if err != nil {
			return nil, fmt.Errorf("malformed weight value in %q: %w", pair, err)
		}
		out[strings.TrimSpace(kv[0])] = v
	}
	return out, nil
}

func getString(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getInt(key string, def int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def, fmt.Errorf("%s: invalid integer %q: %w", key, v, err)
	}
	return n, nil
}

func getFloat(key string, def float64) (float64, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return def, fmt.Errorf("%s: invalid float %q: %w", key, v, err)
	}
	return f, nil
}

func getBool(key string, def bool) (bool, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def, fmt.Errorf("%s: invalid bool %q: %w", key, v, err)
	}
	return b, nil
}
