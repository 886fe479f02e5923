package config

import (
	"github.com/jackzampolin/draftly/internal/review/scoring"
)

// Config holds draftly configuration.
// Stored at: ~/.draftly/config.yaml
type Config struct {
	LLMProviders map[string]LLMProviderCfg `mapstructure:"llm_providers" yaml:"llm_providers" validate:"dive"`
	Defaults     DefaultsCfg               `mapstructure:"defaults" yaml:"defaults"`
	Review       ReviewCfg                 `mapstructure:"review" yaml:"review"`
	Server       ServerCfg                 `mapstructure:"server" yaml:"server"`
	Log          LogCfg                    `mapstructure:"log" yaml:"log"`
	Prompts      PromptsCfg                `mapstructure:"prompts" yaml:"prompts"`
}

// LLMProviderCfg configures an LLM provider.
type LLMProviderCfg struct {
	Type      string `mapstructure:"type" yaml:"type" validate:"required,oneof=openai openrouter"`
	Model     string `mapstructure:"model" yaml:"model"`                             // Model name
	APIKey    string `mapstructure:"api_key" yaml:"api_key"`                         // API key (supports ${ENV_VAR} syntax)
	BaseURL   string `mapstructure:"base_url" yaml:"base_url,omitempty" validate:"omitempty,url"`
	SiteURL   string `mapstructure:"site_url" yaml:"site_url,omitempty"`             // OpenRouter HTTP-Referer
	RateLimit int    `mapstructure:"rate_limit" yaml:"rate_limit" validate:"gte=0"` // Requests per minute
	Enabled   bool   `mapstructure:"enabled" yaml:"enabled"`
}

// DefaultsCfg specifies default provider selections.
type DefaultsCfg struct {
	LLMProvider string `mapstructure:"llm_provider" yaml:"llm_provider"` // Default LLM provider
	LLMModel    string `mapstructure:"llm_model" yaml:"llm_model"`       // Overrides the provider's model
	MaxWorkers  int    `mapstructure:"max_workers" yaml:"max_workers" validate:"gte=1,lte=64"`
}

// ReviewCfg tunes the review pipeline. The sectioning and candidate options
// treat zero as "use the default", so those fields must be positive here.
type ReviewCfg struct {
	MinSectionChars    int            `mapstructure:"min_section_chars" yaml:"min_section_chars" validate:"gte=1"`
	CandidateThreshold float64        `mapstructure:"candidate_threshold" yaml:"candidate_threshold" validate:"gt=0"`
	TopK               int            `mapstructure:"top_k" yaml:"top_k" validate:"gte=1"`
	SnippetChars       int            `mapstructure:"snippet_chars" yaml:"snippet_chars" validate:"gte=1"`
	MaxCandidateChars  int            `mapstructure:"max_candidate_chars" yaml:"max_candidate_chars" validate:"gte=100"`
	LooseMaxTokens     int            `mapstructure:"loose_max_tokens" yaml:"loose_max_tokens" validate:"gte=1"`
	TimeoutSeconds     int            `mapstructure:"timeout_seconds" yaml:"timeout_seconds" validate:"gte=0"` // Per grading call, 0 = none
	Risk               scoring.Params `mapstructure:"risk" yaml:"risk"`
}

// ServerCfg configures the HTTP server.
type ServerCfg struct {
	Host           string `mapstructure:"host" yaml:"host"`
	Port           string `mapstructure:"port" yaml:"port" validate:"required,numeric"`
	Env            string `mapstructure:"env" yaml:"env"`
	MaxJSONBytes   int64  `mapstructure:"max_json_bytes" yaml:"max_json_bytes" validate:"gte=1"`
	MaxUploadBytes int64  `mapstructure:"max_upload_bytes" yaml:"max_upload_bytes" validate:"gte=1"`
}

// LogCfg configures logging.
type LogCfg struct {
	Mode   string `mapstructure:"mode" yaml:"mode" validate:"omitempty,oneof=off compact verbose"`
	Format string `mapstructure:"format" yaml:"format" validate:"omitempty,oneof=text json"`
}

// PromptsCfg configures prompt overrides.
type PromptsCfg struct {
	// OverrideDir holds <key>.tmpl files that replace embedded prompts.
	OverrideDir string `mapstructure:"override_dir" yaml:"override_dir"`
}

// DefaultConfig returns configuration with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		LLMProviders: map[string]LLMProviderCfg{
			"openrouter": {
				Type:    "openrouter",
				Model:   "openai/gpt-4o-mini",
				APIKey:  "${OPENROUTER_API_KEY}",
				SiteURL: "${OPENROUTER_SITE_URL}",
				Enabled: true,
			},
			"openai": {
				Type:    "openai",
				Model:   "gpt-4o-mini",
				APIKey:  "${OPENAI_API_KEY}",
				Enabled: true,
			},
		},
		Defaults: DefaultsCfg{
			MaxWorkers: 5,
		},
		Review: ReviewCfg{
			MinSectionChars:    40,
			CandidateThreshold: 2.2,
			TopK:               1,
			SnippetChars:       280,
			MaxCandidateChars:  4000,
			LooseMaxTokens:     800,
			TimeoutSeconds:     60,
			Risk:               scoring.DefaultParams(),
		},
		Server: ServerCfg{
			Host:           "",
			Port:           "4000",
			Env:            "development",
			MaxJSONBytes:   5 << 20,
			MaxUploadBytes: 20 << 20,
		},
		Log: LogCfg{
			Mode:   "compact",
			Format: "text",
		},
	}
}

// GetLLMProvider returns an LLM provider config by name.
func (c *Config) GetLLMProvider(name string) (LLMProviderCfg, bool) {
	cfg, ok := c.LLMProviders[name]
	return cfg, ok
}

// EnabledLLMProviders returns all enabled LLM providers.
func (c *Config) EnabledLLMProviders() map[string]LLMProviderCfg {
	result := make(map[string]LLMProviderCfg)
	for name, cfg := range c.LLMProviders {
		if cfg.Enabled {
			result[name] = cfg
		}
	}
	return result
}
