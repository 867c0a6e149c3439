package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeTestConfig(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	return path
}

func TestLoadConfig_AppliesDefaultsAndValidates(t *testing.T) {
	path := writeTestConfig(t, `
providers:
  openai:
    base_url: "https://api.openai.com/v1"
    api_key: "test-key"
`)

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Selector.CostCeiling != DefaultSelectorCostCeiling {
		t.Errorf("CostCeiling = %v, want default %v", cfg.Selector.CostCeiling, DefaultSelectorCostCeiling)
	}
	if cfg.Providers["openai"].MaxRetries != DefaultProviderMaxRetries {
		t.Errorf("provider MaxRetries not defaulted")
	}
}

func TestLoadConfig_InvalidConfigFails(t *testing.T) {
	path := writeTestConfig(t, `
consensus:
  default_n: 1
`)
	if _, err := LoadConfig(path); err == nil {
		t.Fatal("expected validation error for consensus.default_n=1")
	}
}

func TestLoadConfig_MissingFile(t *testing.T) {
	if _, err := LoadConfig("/nonexistent/config.yaml"); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestLoadConfigWithEnvOverrides_OverridesFileValues(t *testing.T) {
	path := writeTestConfig(t, `
providers:
  openai:
    base_url: "https://api.openai.com/v1"
selector:
  cost_ceiling: 0.1
`)
	t.Setenv("ORISON_SELECTOR_COST_CEILING", "0.2")

	cfg, err := LoadConfigWithEnvOverrides(path)
	if err != nil {
		t.Fatalf("LoadConfigWithEnvOverrides: %v", err)
	}
	if cfg.Selector.CostCeiling != 0.2 {
		t.Errorf("CostCeiling = %v, want 0.2 from env override", cfg.Selector.CostCeiling)
	}
}

func TestLoadConfigWithEnvOverrides_ProviderAPIKey(t *testing.T) {
	path := writeTestConfig(t, `
providers:
  openai:
    base_url: "https://api.openai.com/v1"
`)
	t.Setenv("ORISON_PROVIDERS_OPENAI_API_KEY", "sk-from-env")

	cfg, err := LoadConfigWithEnvOverrides(path)
	if err != nil {
		t.Fatalf("LoadConfigWithEnvOverrides: %v", err)
	}
	if cfg.Providers["openai"].APIKey != "sk-from-env" {
		t.Errorf("APIKey = %q, want sk-from-env", cfg.Providers["openai"].APIKey)
	}
}
