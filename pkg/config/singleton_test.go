package config

import (
	"os"
	"path/filepath"
	"sync"
	"testing"
)

func resetGlobalConfig() {
	configMutex.Lock()
	globalConfig = nil
	configMutex.Unlock()
	initOnce = sync.Once{}
}

func TestInitialize_SetsGlobalConfig(t *testing.T) {
	resetGlobalConfig()

	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
providers:
  openai:
    base_url: "https://api.openai.com/v1"
    api_key: "test-key"
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	if err := Initialize(path); err != nil {
		t.Fatalf("Initialize: %v", err)
	}

	cfg := GetConfig()
	if cfg == nil {
		t.Fatal("GetConfig returned nil after Initialize")
	}
	if cfg.Providers["openai"].BaseURL != "https://api.openai.com/v1" {
		t.Errorf("unexpected provider config: %+v", cfg.Providers["openai"])
	}
}

func TestGetConfig_NilBeforeInitialize(t *testing.T) {
	resetGlobalConfig()
	if GetConfig() != nil {
		t.Error("GetConfig should be nil before Initialize")
	}
}

func TestMustGetConfig_PanicsWhenUninitialized(t *testing.T) {
	resetGlobalConfig()
	defer func() {
		if r := recover(); r == nil {
			t.Error("expected MustGetConfig to panic when uninitialized")
		}
	}()
	MustGetConfig()
}

func TestSetConfig_OverridesGlobal(t *testing.T) {
	resetGlobalConfig()
	cfg := MinimalConfig()
	SetConfig(cfg)
	if GetConfig() != cfg {
		t.Error("SetConfig did not update the global instance")
	}
}
