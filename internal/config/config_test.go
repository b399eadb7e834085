// v0
// internal/config/config_test.go
package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeProps(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "tanmiya.properties")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadLayersPropertiesThenEnv(t *testing.T) {
	path := writeProps(t, `
# comment
store.url = http://store.local
store.token = props-token
backend.url = http://backend.local
cache.ttl = 90s
kafka.brokers = k1:9092, k2:9092
`)
	t.Setenv("TANMIYA_PROPERTIES_PATH", path)
	t.Setenv("TANMIYA_STORE_TOKEN", "env-token")
	t.Setenv("TANMIYA_RERANK_TOP_K", "6")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if cfg.StoreBaseURL != "http://store.local" {
		t.Fatalf("properties value not applied: %q", cfg.StoreBaseURL)
	}
	if cfg.StoreToken != "env-token" {
		t.Fatalf("env should override properties, got %q", cfg.StoreToken)
	}
	if cfg.CacheTTL != 90*time.Second {
		t.Fatalf("ttl not parsed: %s", cfg.CacheTTL)
	}
	if len(cfg.KafkaBrokers) != 2 || cfg.KafkaBrokers[1] != "k2:9092" {
		t.Fatalf("brokers not split: %+v", cfg.KafkaBrokers)
	}
	if cfg.RerankTopK != 6 {
		t.Fatalf("env int not applied: %d", cfg.RerankTopK)
	}
	// Untouched keys keep their defaults.
	if cfg.HTTPBind != ":8080" || cfg.RunEventsTopic != "tanmiya.runs" {
		t.Fatalf("defaults lost: %q %q", cfg.HTTPBind, cfg.RunEventsTopic)
	}
}

func TestLoadEnvOnlyWithoutPropertiesFile(t *testing.T) {
	t.Setenv("TANMIYA_PROPERTIES_PATH", writeProps(t, "# empty\n"))
	t.Setenv("TANMIYA_STORE_URL", "http://store.env")
	t.Setenv("TANMIYA_BACKEND_URL", "http://backend.env")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if cfg.StoreBaseURL != "http://store.env" || cfg.BackendBaseURL != "http://backend.env" {
		t.Fatalf("env values not applied: %+v", cfg)
	}
}

func TestLoadExplicitMissingPropertiesFileFails(t *testing.T) {
	t.Setenv("TANMIYA_PROPERTIES_PATH", filepath.Join(t.TempDir(), "absent.properties"))
	if _, err := Load(); err == nil {
		t.Fatal("expected error for explicitly configured missing file")
	}
}

func TestLoadRequiresStoreAndBackendURLs(t *testing.T) {
	t.Setenv("TANMIYA_PROPERTIES_PATH", writeProps(t, "# empty\n"))
	t.Setenv("TANMIYA_STORE_URL", "")
	t.Setenv("TANMIYA_BACKEND_URL", "")
	if _, err := Load(); err == nil {
		t.Fatal("expected validation error without required URLs")
	}
}
