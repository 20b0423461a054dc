package config

import (
	"os"
	"path/filepath"
	"testing"
)

func validConfig() Config {
	return Config{
		HTTP:   HTTPConfig{Port: 8080},
		Redis:  RedisConfig{Addrs: []string{"localhost:6379"}},
		Search: SearchConfig{Index: "products"},
	}
}

func TestValidate_InvalidPort(t *testing.T) {
	cfg := validConfig()
	cfg.HTTP.Port = 0

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected error for invalid port")
	}
}

func TestValidate_MissingRedisAddrs(t *testing.T) {
	cfg := validConfig()
	cfg.Redis.Addrs = nil

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected error for missing redis addrs")
	}
}

func TestValidate_MissingIndex(t *testing.T) {
	cfg := validConfig()
	cfg.Search.Index = ""

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected error for missing search index")
	}
}

func TestValidate_EmptySortVariant(t *testing.T) {
	cfg := validConfig()
	cfg.Search.SortVariants = map[string]string{"price_asc": ""}

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected error for empty sort variant target")
	}

	expected := `search.sort_variants.price_asc must name a physical index`
	if err.Error() != expected {
		t.Errorf("unexpected error message:\ngot:  %q\nwant: %q", err.Error(), expected)
	}
}

func TestValidate_SortVariants(t *testing.T) {
	cfg := validConfig()
	cfg.Search.SortVariants = map[string]string{
		"price_asc": "products_price_asc",
		"rank_desc": "products_rank_desc",
	}

	if err := cfg.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestApplyDefaults(t *testing.T) {
	cfg := Config{}
	cfg.ApplyDefaults()

	if cfg.HTTP.ReadTimeoutSec != 10 {
		t.Errorf("expected ReadTimeoutSec=10, got %d", cfg.HTTP.ReadTimeoutSec)
	}
	if cfg.HTTP.WriteTimeoutSec != 10 {
		t.Errorf("expected WriteTimeoutSec=10, got %d", cfg.HTTP.WriteTimeoutSec)
	}
	if cfg.HTTP.ShutdownSec != 10 {
		t.Errorf("expected ShutdownSec=10, got %d", cfg.HTTP.ShutdownSec)
	}
	if cfg.Redis.ReadinessTimeout != 10 {
		t.Errorf("expected ReadinessTimeout=10, got %d", cfg.Redis.ReadinessTimeout)
	}
	if cfg.Search.HitsPerPage != 20 {
		t.Errorf("expected HitsPerPage=20, got %d", cfg.Search.HitsPerPage)
	}
	if cfg.Search.DebounceMS != 10 {
		t.Errorf("expected DebounceMS=10, got %d", cfg.Search.DebounceMS)
	}
	if cfg.Search.HighlightPreTag != "<em>" || cfg.Search.HighlightPostTag != "</em>" {
		t.Errorf("expected default highlight tags, got %q/%q",
			cfg.Search.HighlightPreTag, cfg.Search.HighlightPostTag)
	}
}

func TestApplyDefaults_NoOverride(t *testing.T) {
	cfg := Config{
		HTTP:  HTTPConfig{ReadTimeoutSec: 30, WriteTimeoutSec: 60, ShutdownSec: 5},
		Redis: RedisConfig{ReadinessTimeout: 15},
		Search: SearchConfig{
			HitsPerPage:      50,
			DebounceMS:       100,
			HighlightPreTag:  "<mark>",
			HighlightPostTag: "</mark>",
		},
	}
	cfg.ApplyDefaults()

	if cfg.HTTP.ReadTimeoutSec != 30 {
		t.Errorf("expected ReadTimeoutSec=30, got %d", cfg.HTTP.ReadTimeoutSec)
	}
	if cfg.Redis.ReadinessTimeout != 15 {
		t.Errorf("expected ReadinessTimeout=15, got %d", cfg.Redis.ReadinessTimeout)
	}
	if cfg.Search.HitsPerPage != 50 {
		t.Errorf("expected HitsPerPage=50, got %d", cfg.Search.HitsPerPage)
	}
	if cfg.Search.HighlightPreTag != "<mark>" {
		t.Errorf("expected HighlightPreTag='<mark>', got %q", cfg.Search.HighlightPreTag)
	}
}

func TestLoad_ExpandsEnvVars(t *testing.T) {
	dir := t.TempDir()
	raw := `
http:
  port: ${SEARCHKIT_TEST_PORT:-8080}
redis:
  addrs: ["${SEARCHKIT_TEST_REDIS:-localhost:6379}"]
search:
  index: products
  facets: [brand, category]
`
	if err := os.MkdirAll(filepath.Join(dir, "config"), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "config", "test.yaml"), []byte(raw), 0o644); err != nil {
		t.Fatal(err)
	}
	oldwd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = os.Chdir(oldwd) })
	t.Setenv("SEARCHKIT_TEST_PORT", "9090")

	cfg, err := Load("test")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.HTTP.Port != 9090 {
		t.Errorf("expected port from env, got %d", cfg.HTTP.Port)
	}
	if len(cfg.Redis.Addrs) != 1 || cfg.Redis.Addrs[0] != "localhost:6379" {
		t.Errorf("expected default addr, got %v", cfg.Redis.Addrs)
	}
	if len(cfg.Search.Facets) != 2 {
		t.Errorf("facets = %v", cfg.Search.Facets)
	}
}
