// Package engineconfig is the single entry point for this engine's
// configuration: which LLM endpoint to call and which relational store to
// query. Each sub-config carries a SetDefaults/Validate pair in the
// teacher's own configuration style.
package engineconfig

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/kadirpekel/alm-orchestrator/internal/almstore"
)

// LLMConfig configures the chat-completions endpoint both orchestration
// strategies call through.
type LLMConfig struct {
	BaseURL     string  `yaml:"base_url"`
	APIKey      string  `yaml:"api_key"`
	Model       string  `yaml:"model"`
	Temperature float64 `yaml:"temperature"`
	TimeoutSec  int     `yaml:"timeout_seconds"`
}

// SetDefaults fills in a local OpenAI-compatible endpoint when unset.
func (c *LLMConfig) SetDefaults() {
	if c.BaseURL == "" {
		c.BaseURL = "http://localhost:11434/v1"
	}
	if c.Model == "" {
		c.Model = "qwen2.5:32b"
	}
	if c.TimeoutSec <= 0 {
		c.TimeoutSec = 60
	}
}

// Validate rejects an LLMConfig that cannot be used to build an adapter.
func (c *LLMConfig) Validate() error {
	if c.BaseURL == "" {
		return fmt.Errorf("engineconfig: llm base_url is required")
	}
	if c.Model == "" {
		return fmt.Errorf("engineconfig: llm model is required")
	}
	if c.Temperature < 0 || c.Temperature > 2 {
		return fmt.Errorf("engineconfig: llm temperature must be between 0 and 2")
	}
	if c.TimeoutSec < 0 {
		return fmt.Errorf("engineconfig: llm timeout_seconds must be non-negative")
	}
	return nil
}

// EngineConfig is the complete configuration for one run of either
// orchestration strategy.
type EngineConfig struct {
	LLM   LLMConfig       `yaml:"llm"`
	Store almstore.Config `yaml:"store"`
}

// SetDefaults fills in every sub-config's defaults.
func (c *EngineConfig) SetDefaults() {
	c.LLM.SetDefaults()
	c.Store.SetDefaults()
}

// Validate validates every sub-config.
func (c *EngineConfig) Validate() error {
	if err := c.LLM.Validate(); err != nil {
		return err
	}
	if err := c.Store.Validate(); err != nil {
		return fmt.Errorf("engineconfig: store: %w", err)
	}
	return nil
}

// Load reads a YAML config from path, applies defaults, overlays any
// matching environment variables from a .env file in the working directory
// (if present),
// and validates the result. An empty path yields a fully-defaulted config.
func Load(path string) (*EngineConfig, error) {
	cfg := &EngineConfig{}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("engineconfig: read %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("engineconfig: parse %s: %w", path, err)
		}
	}

	// .env overrides take priority over the YAML file when both set the
	// same field, matching how a deployment typically layers secrets over
	// checked-in config.
	if err := godotenv.Load(); err == nil {
		applyEnvOverrides(cfg)
	}

	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func applyEnvOverrides(cfg *EngineConfig) {
	if v := os.Getenv("ALM_LLM_BASE_URL"); v != "" {
		cfg.LLM.BaseURL = v
	}
	if v := os.Getenv("ALM_LLM_API_KEY"); v != "" {
		cfg.LLM.APIKey = v
	}
	if v := os.Getenv("ALM_LLM_MODEL"); v != "" {
		cfg.LLM.Model = v
	}
	if v := os.Getenv("ALM_STORE_DRIVER"); v != "" {
		cfg.Store.Driver = v
	}
	if v := os.Getenv("ALM_STORE_DSN"); v != "" {
		cfg.Store.DSN = v
	}
}
