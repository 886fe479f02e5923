package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v2"

	"github.com/jackzampolin/draftly/internal/providers"
	"github.com/jackzampolin/draftly/internal/review/candidates"
	"github.com/jackzampolin/draftly/internal/review/grading"
	"github.com/jackzampolin/draftly/internal/review/sectioning"
)

// EnvPrefix prefixes environment overrides, e.g. DRAFTLY_SERVER_PORT.
const EnvPrefix = "DRAFTLY"

// Manager handles loading and hot-reloading configuration.
type Manager struct {
	mu        sync.RWMutex
	v         *viper.Viper
	config    *Config
	callbacks []func(*Config)
	logger    *slog.Logger
}

// NewManager creates a new config manager and loads initial config.
// An empty cfgFile searches ./config.yaml and $HOME/.draftly/config.yaml.
func NewManager(cfgFile string) (*Manager, error) {
	cm := &Manager{
		v:         viper.New(),
		callbacks: make([]func(*Config), 0),
		logger:    slog.Default(),
	}

	if err := cm.initViper(cfgFile); err != nil {
		return nil, err
	}

	cfg, err := cm.load()
	if err != nil {
		return nil, err
	}
	cm.config = cfg

	return cm, nil
}

// SetLogger sets the logger used for reload messages.
func (cm *Manager) SetLogger(logger *slog.Logger) {
	if logger == nil {
		return
	}
	cm.mu.Lock()
	cm.logger = logger
	cm.mu.Unlock()
}

// initViper sets up viper with defaults, environment bindings and config file.
func (cm *Manager) initViper(cfgFile string) error {
	v := cm.v
	setDefaults(v)

	// Environment variables with DRAFTLY_ prefix; nested keys use underscores.
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Unprefixed names kept for existing deployments.
	legacy := map[string]string{
		"log.mode":           "DRAFTLY_LOG",
		"server.port":        "PORT",
		"defaults.llm_model": "LLM_MODEL",
	}
	for key, env := range legacy {
		prefixed := EnvPrefix + "_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
		if err := v.BindEnv(key, prefixed, env); err != nil {
			return fmt.Errorf("failed to bind %s: %w", key, err)
		}
	}

	// Config file
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.draftly")
	}

	// Try to read config file (not required)
	if err := v.ReadInConfig(); err != nil {
		var configFileNotFoundError viper.ConfigFileNotFoundError
		if !errors.As(err, &configFileNotFoundError) {
			return fmt.Errorf("error reading config file: %w", err)
		}
	}

	return nil
}

// setDefaults registers every leaf key so partial config files and env
// overrides merge with the defaults.
func setDefaults(v *viper.Viper) {
	d := DefaultConfig()
	v.SetDefault("llm_providers", d.LLMProviders)

	v.SetDefault("defaults.llm_provider", d.Defaults.LLMProvider)
	v.SetDefault("defaults.llm_model", d.Defaults.LLMModel)
	v.SetDefault("defaults.max_workers", d.Defaults.MaxWorkers)

	v.SetDefault("review.min_section_chars", d.Review.MinSectionChars)
	v.SetDefault("review.candidate_threshold", d.Review.CandidateThreshold)
	v.SetDefault("review.top_k", d.Review.TopK)
	v.SetDefault("review.snippet_chars", d.Review.SnippetChars)
	v.SetDefault("review.max_candidate_chars", d.Review.MaxCandidateChars)
	v.SetDefault("review.loose_max_tokens", d.Review.LooseMaxTokens)
	v.SetDefault("review.timeout_seconds", d.Review.TimeoutSeconds)
	v.SetDefault("review.risk.baseline", d.Review.Risk.Baseline)
	v.SetDefault("review.risk.min_confidence", d.Review.Risk.MinConfidence)
	v.SetDefault("review.risk.present_delta", d.Review.Risk.PresentDelta)
	v.SetDefault("review.risk.weak_delta", d.Review.Risk.WeakDelta)
	v.SetDefault("review.risk.missing_delta", d.Review.Risk.MissingDelta)
	v.SetDefault("review.risk.low_score", d.Review.Risk.LowScore)
	v.SetDefault("review.risk.low_signals", d.Review.Risk.LowSignals)
	v.SetDefault("review.risk.med_score", d.Review.Risk.MedScore)

	v.SetDefault("server.host", d.Server.Host)
	v.SetDefault("server.port", d.Server.Port)
	v.SetDefault("server.env", d.Server.Env)
	v.SetDefault("server.max_json_bytes", d.Server.MaxJSONBytes)
	v.SetDefault("server.max_upload_bytes", d.Server.MaxUploadBytes)

	v.SetDefault("log.mode", d.Log.Mode)
	v.SetDefault("log.format", d.Log.Format)

	v.SetDefault("prompts.override_dir", d.Prompts.OverrideDir)
}

// load parses the current viper state into a validated Config struct.
func (cm *Manager) load() (*Config, error) {
	var cfg Config
	if err := cm.v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Get returns the current configuration (thread-safe).
func (cm *Manager) Get() *Config {
	cm.mu.RLock()
	defer cm.mu.RUnlock()
	return cm.config
}

// ConfigFile returns the path of the loaded config file, if any.
func (cm *Manager) ConfigFile() string {
	return cm.v.ConfigFileUsed()
}

// OnChange registers a callback for config changes.
func (cm *Manager) OnChange(fn func(*Config)) {
	cm.mu.Lock()
	defer cm.mu.Unlock()
	cm.callbacks = append(cm.callbacks, fn)
}

// WatchConfig enables hot-reloading of configuration. Edits that fail to
// parse or validate are logged and the previous config stays active.
func (cm *Manager) WatchConfig() {
	cm.v.OnConfigChange(func(e fsnotify.Event) {
		cfg, err := cm.load()
		if err != nil {
			cm.mu.RLock()
			logger := cm.logger
			cm.mu.RUnlock()
			logger.Warn("config reload rejected", "file", e.Name, "error", err)
			return
		}

		cm.mu.Lock()
		cm.config = cfg
		callbacks := make([]func(*Config), len(cm.callbacks))
		copy(callbacks, cm.callbacks)
		cm.mu.Unlock()

		for _, fn := range callbacks {
			fn(cfg)
		}
	})
	cm.v.WatchConfig()
}

var validate = validator.New()

// Validate checks field ranges and enumerations.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

var envVarPattern = regexp.MustCompile(`\$\{([^}]+)\}`)

// ResolveEnvVars expands ${ENV_VAR} references in a string.
func ResolveEnvVars(value string) string {
	if value == "" {
		return value
	}
	return envVarPattern.ReplaceAllStringFunc(value, func(match string) string {
		varName := match[2 : len(match)-1]
		return os.Getenv(varName)
	})
}

// LoadDotEnv loads KEY=VALUE files into the environment without overriding
// variables that are already set. Missing files are ignored.
func LoadDotEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("failed to load %s: %w", f, err)
		}
	}
	return nil
}

// ToProviderRegistryConfig converts the config to a format suitable for providers.Registry.
// It resolves all ${ENV_VAR} references and applies the defaults.llm_model override.
func (c *Config) ToProviderRegistryConfig() providers.RegistryConfig {
	cfg := providers.RegistryConfig{
		LLMProviders: make(map[string]providers.LLMProviderConfig),
		DefaultLLM:   c.Defaults.LLMProvider,
	}

	for name, llm := range c.LLMProviders {
		model := llm.Model
		if c.Defaults.LLMModel != "" {
			model = c.Defaults.LLMModel
		}
		cfg.LLMProviders[name] = providers.LLMProviderConfig{
			Type:      llm.Type,
			Model:     model,
			APIKey:    ResolveEnvVars(llm.APIKey),
			BaseURL:   ResolveEnvVars(llm.BaseURL),
			SiteURL:   ResolveEnvVars(llm.SiteURL),
			RateLimit: llm.RateLimit,
			Enabled:   llm.Enabled,
		}
	}

	return cfg
}

// SectioningOptions returns the sectioner settings.
func (c *Config) SectioningOptions() sectioning.Options {
	return sectioning.Options{MinChars: c.Review.MinSectionChars}
}

// CandidateOptions returns the candidate finder settings.
func (c *Config) CandidateOptions() candidates.Options {
	return candidates.Options{
		Threshold:    c.Review.CandidateThreshold,
		TopK:         c.Review.TopK,
		SnippetChars: c.Review.SnippetChars,
	}
}

// GraderConfig returns grading settings without a client.
func (c *Config) GraderConfig() grading.Config {
	return grading.Config{
		MaxCandidateChars: c.Review.MaxCandidateChars,
		LooseMaxTokens:    c.Review.LooseMaxTokens,
		Timeout:           time.Duration(c.Review.TimeoutSeconds) * time.Second,
	}
}

// Addr returns the listen address.
func (s ServerCfg) Addr() string {
	return s.Host + ":" + s.Port
}

// WriteDefault writes the default configuration to the specified path.
func WriteDefault(path string) error {
	cfg := DefaultConfig()
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	header := []byte(`# Draftly configuration
# API keys use ${ENV_VAR} syntax to reference environment variables
# Set these in your shell or .env: export OPENROUTER_API_KEY=xxx OPENAI_API_KEY=xxx
# Any key can be overridden with DRAFTLY_<SECTION>_<KEY>, e.g. DRAFTLY_SERVER_PORT=4000

`)
	return os.WriteFile(path, append(header, data...), 0o644)
}
