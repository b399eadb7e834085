// v0
// internal/config/config.go
package config

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// AppConfig holds the full runtime configuration. Values layer in order:
// built-in defaults, then the properties file, then TANMIYA_* environment
// variables. Later layers win.
type AppConfig struct {
	HTTPBind       string // address:port for the HTTP server
	LogFile        string // optional log file mirrored alongside stdout
	PropertiesPath string // path to the properties file

	StoreBaseURL   string // item store base URL
	StoreToken     string // bearer token for the item store
	BackendBaseURL string // meeting backend base URL
	BackendToken   string // bearer token for the meeting backend

	TranslatorURL string // translation service endpoint
	RerankerURL   string // relevance model endpoint
	GeneratorURL  string // text generation endpoint

	KafkaBrokers   []string // bootstrap servers; empty disables the event bus
	RunEventsTopic string   // topic run completion events publish to

	CacheTTL            time.Duration // read-through cache lifetime
	RerankTopK          int           // sub-results requested from the relevance model
	ForecastSeed        int64         // forecaster weight/dropout seed
	BreakerMaxFailures  int           // consecutive failures before a breaker opens
	BreakerResetTimeout time.Duration // open-state cooldown before a probe
}

// Load resolves the layered configuration. A properties file at the default
// path is optional; a path set explicitly via TANMIYA_PROPERTIES_PATH must
// exist.
func Load() (*AppConfig, error) {
	cfg := &AppConfig{
		HTTPBind:            ":8080",
		PropertiesPath:      "./configs/tanmiya.properties",
		RunEventsTopic:      "tanmiya.runs",
		CacheTTL:            5 * time.Minute,
		RerankTopK:          4,
		ForecastSeed:        1,
		BreakerMaxFailures:  5,
		BreakerResetTimeout: 30 * time.Second,
	}

	explicitPath := os.Getenv("TANMIYA_PROPERTIES_PATH")
	if explicitPath != "" {
		cfg.PropertiesPath = explicitPath
	}
	if err := cfg.loadProperties(cfg.PropertiesPath); err != nil {
		if explicitPath != "" || !errors.Is(err, os.ErrNotExist) {
			return nil, err
		}
	}
	cfg.loadEnv()

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *AppConfig) validate() error {
	if c.StoreBaseURL == "" {
		return errors.New("store.url is required")
	}
	if c.BackendBaseURL == "" {
		return errors.New("backend.url is required")
	}
	if c.RerankTopK <= 0 {
		return fmt.Errorf("rerank.top_k must be positive, got %d", c.RerankTopK)
	}
	if c.CacheTTL <= 0 {
		return fmt.Errorf("cache.ttl must be positive, got %s", c.CacheTTL)
	}
	return nil
}

func (c *AppConfig) loadProperties(path string) error {
	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("cannot open properties file %s: %w", path, err)
	}
	defer file.Close()

	s := bufio.NewScanner(file)
	for s.Scan() {
		line := strings.TrimSpace(s.Text())
		if line == "" || strings.HasPrefix(line, "#") || strings.HasPrefix(line, "//") {
			continue
		}
		k, v, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		c.apply(strings.TrimSpace(k), strings.TrimSpace(v))
	}
	return s.Err()
}

// apply sets one key from either the properties file or the environment.
func (c *AppConfig) apply(key, value string) {
	switch key {
	case "http.bind":
		c.HTTPBind = value
	case "log.file":
		c.LogFile = value
	case "store.url":
		c.StoreBaseURL = value
	case "store.token":
		c.StoreToken = value
	case "backend.url":
		c.BackendBaseURL = value
	case "backend.token":
		c.BackendToken = value
	case "nlp.translator.url":
		c.TranslatorURL = value
	case "nlp.reranker.url":
		c.RerankerURL = value
	case "nlp.generator.url":
		c.GeneratorURL = value
	case "kafka.brokers":
		c.KafkaBrokers = splitAndTrim(value, ",")
	case "kafka.topic.runs":
		c.RunEventsTopic = value
	case "cache.ttl":
		if d, err := time.ParseDuration(value); err == nil {
			c.CacheTTL = d
		}
	case "rerank.top_k":
		if i, err := strconv.Atoi(value); err == nil {
			c.RerankTopK = i
		}
	case "forecast.seed":
		if i, err := strconv.ParseInt(value, 10, 64); err == nil {
			c.ForecastSeed = i
		}
	case "breaker.max_failures":
		if i, err := strconv.Atoi(value); err == nil {
			c.BreakerMaxFailures = i
		}
	case "breaker.reset_timeout":
		if d, err := time.ParseDuration(value); err == nil {
			c.BreakerResetTimeout = d
		}
	}
}

// envKeys maps TANMIYA_* variables onto property keys so both layers share
// one switch.
var envKeys = map[string]string{
	"TANMIYA_HTTP_BIND":             "http.bind",
	"TANMIYA_LOG_FILE":              "log.file",
	"TANMIYA_STORE_URL":             "store.url",
	"TANMIYA_STORE_TOKEN":           "store.token",
	"TANMIYA_BACKEND_URL":           "backend.url",
	"TANMIYA_BACKEND_TOKEN":         "backend.token",
	"TANMIYA_TRANSLATOR_URL":        "nlp.translator.url",
	"TANMIYA_RERANKER_URL":          "nlp.reranker.url",
	"TANMIYA_GENERATOR_URL":         "nlp.generator.url",
	"TANMIYA_KAFKA_BROKERS":         "kafka.brokers",
	"TANMIYA_KAFKA_TOPIC_RUNS":      "kafka.topic.runs",
	"TANMIYA_CACHE_TTL":             "cache.ttl",
	"TANMIYA_RERANK_TOP_K":          "rerank.top_k",
	"TANMIYA_FORECAST_SEED":         "forecast.seed",
	"TANMIYA_BREAKER_MAX_FAILURES":  "breaker.max_failures",
	"TANMIYA_BREAKER_RESET_TIMEOUT": "breaker.reset_timeout",
}

func (c *AppConfig) loadEnv() {
	for env, key := range envKeys {
		if v := os.Getenv(env); v != "" {
			c.apply(key, v)
		}
	}
}

func splitAndTrim(s, sep string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, sep)
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
