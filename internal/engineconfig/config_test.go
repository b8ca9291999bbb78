package engineconfig

import "testing"

func TestLoadWithEmptyPathAppliesDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load(\"\"): %v", err)
	}
	if cfg.LLM.Model == "" || cfg.LLM.BaseURL == "" {
		t.Fatalf("LLM defaults not applied: %+v", cfg.LLM)
	}
	if cfg.Store.Driver == "" {
		t.Fatalf("Store defaults not applied: %+v", cfg.Store)
	}
}

func TestLLMConfigValidateRejectsBadTemperature(t *testing.T) {
	c := LLMConfig{BaseURL: "http://x", Model: "m", Temperature: 5}
	if err := c.Validate(); err == nil {
		t.Fatalf("expected validation error for temperature=5")
	}
}

func TestLoadRejectsMissingFile(t *testing.T) {
	if _, err := Load("/nonexistent/path/to/config.yaml"); err == nil {
		t.Fatalf("expected error for missing config file")
	}
}
