package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	AI          AIConfig          `mapstructure:"ai"`
	Search      SearchConfig      `mapstructure:"search"`
	Images      ImagesConfig      `mapstructure:"images"`
	Application ApplicationConfig `mapstructure:"application"`
	Watch       WatchConfig       `mapstructure:"watch"`
}

type ApplicationConfig struct {
	Name         string        `mapstructure:"name"`
	Version      string        `mapstructure:"version"`
	OutputDir    string        `mapstructure:"output_dir"`
	DefaultStyle string        `mapstructure:"default_style"`
	LogMode      string        `mapstructure:"log_mode"`
	LLMTimeout   time.Duration `mapstructure:"llm_timeout"`
}

type AIConfig struct {
	ActiveProvider string                      `mapstructure:"active_provider"`
	Providers      map[string]ProviderSettings `mapstructure:"providers"`
}

type ProviderSettings struct {
	Driver      string  `mapstructure:"driver"` // openrouter, gemini
	Key         string  `mapstructure:"key"`
	Endpoint    string  `mapstructure:"endpoint"`
	Model       string  `mapstructure:"model"`
	Temperature float64 `mapstructure:"temperature"`
	MaxTokens   int     `mapstructure:"max_tokens"`
}

type SearchConfig struct {
	SerpAPIKey      string        `mapstructure:"serpapi_key"`
	SerpAPIEndpoint string        `mapstructure:"serpapi_endpoint"`
	FallbackURL     string        `mapstructure:"fallback_endpoint"`
	MaxResults      int           `mapstructure:"max_results"`
	Timeout         time.Duration `mapstructure:"timeout"`
	FallbackTimeout time.Duration `mapstructure:"fallback_timeout"`
}

type ImagesConfig struct {
	UnsplashKey      string `mapstructure:"unsplash_key"`
	UnsplashEndpoint string `mapstructure:"unsplash_endpoint"`
	MaxWidth         int    `mapstructure:"max_width"`
}

type WatchConfig struct {
	Inbox    string        `mapstructure:"inbox"`
	Done     string        `mapstructure:"done"`
	Debounce time.Duration `mapstructure:"debounce"`
}

// ErrUnknownProvider is returned by Provider when active_provider has no settings.
var ErrUnknownProvider = errors.New("unknown AI provider")

// Provider returns the settings of the active AI provider.
func (c *Config) Provider() (string, ProviderSettings, error) {
	name := c.AI.ActiveProvider
	settings, ok := c.AI.Providers[name]
	if !ok {
		return name, ProviderSettings{}, fmt.Errorf("%w: %q", ErrUnknownProvider, name)
	}
	if settings.Driver == "" {
		settings.Driver = name
	}
	return name, settings, nil
}

// LoadConfig reads .env, an optional config.yaml and the environment.
func LoadConfig() (*Config, error) {
	return LoadConfigFile("config.yaml")
}

// LoadConfigFile is LoadConfig with an explicit config file path. A missing
// file is not an error.
func LoadConfigFile(path string) (*Config, error) {
	// .env is optional; system environment variables still apply
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigFile(path)
	v.AutomaticEnv()

	// Environment variable mappings
	mappings := []struct {
		key, env string
	}{
		{"application.output_dir", "OUTPUT_DIR"},
		{"application.default_style", "DEFAULT_STYLE"},
		{"application.log_mode", "LOG_MODE"},
		{"application.llm_timeout", "LLM_TIMEOUT"},
		{"ai.active_provider", "AI_PROVIDER"},

		// AI Providers
		{"ai.providers.openrouter.key", "OPENROUTER_API_KEY"},
		{"ai.providers.openrouter.model", "OPENROUTER_MODEL"},
		{"ai.providers.openrouter.endpoint", "OPENROUTER_ENDPOINT"},
		{"ai.providers.gemini.key", "GEMINI_KEY"},
		{"ai.providers.gemini.model", "GEMINI_MODEL"},

		// Search & images
		{"search.serpapi_key", "SERPAPI_API_KEY"},
		{"search.max_results", "SEARCH_MAX_RESULTS"},
		{"images.unsplash_key", "UNSPLASH_API_KEY"},

		// Watch mode
		{"watch.inbox", "WATCH_INBOX"},
		{"watch.done", "WATCH_DONE"},
		{"watch.debounce", "WATCH_DEBOUNCE"},
	}
	for _, m := range mappings {
		v.BindEnv(m.key, m.env)
	}

	// Defaults
	v.SetDefault("application.name", "deckforge")
	v.SetDefault("application.version", "0.3.0")
	v.SetDefault("application.output_dir", "output")
	v.SetDefault("application.default_style", "blue")
	v.SetDefault("application.log_mode", "dev")
	v.SetDefault("application.llm_timeout", 30*time.Second)

	v.SetDefault("ai.active_provider", "openrouter")
	v.SetDefault("ai.providers.openrouter.driver", "openrouter")
	v.SetDefault("ai.providers.openrouter.endpoint", "https://openrouter.ai/api/v1")
	v.SetDefault("ai.providers.openrouter.model", "gpt-4o-mini")
	v.SetDefault("ai.providers.openrouter.temperature", 0.7)
	v.SetDefault("ai.providers.openrouter.max_tokens", 1500)
	v.SetDefault("ai.providers.gemini.driver", "gemini")
	v.SetDefault("ai.providers.gemini.model", "gemini-1.5-flash")
	v.SetDefault("ai.providers.gemini.temperature", 0.7)
	v.SetDefault("ai.providers.gemini.max_tokens", 1500)

	v.SetDefault("search.serpapi_endpoint", "https://serpapi.com/search.json")
	v.SetDefault("search.fallback_endpoint", "https://api.duckduckgo.com/")
	v.SetDefault("search.max_results", 8)
	v.SetDefault("search.timeout", 15*time.Second)
	v.SetDefault("search.fallback_timeout", 8*time.Second)

	v.SetDefault("images.unsplash_endpoint", "https://api.unsplash.com/search/photos")
	v.SetDefault("images.max_width", 1600)

	v.SetDefault("watch.inbox", "inbox")
	v.SetDefault("watch.done", "inbox/done")
	v.SetDefault("watch.debounce", 2*time.Second)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("failed to read config %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	if cfg.AI.ActiveProvider == "" {
		cfg.AI.ActiveProvider = "openrouter"
	}

	return &cfg, nil
}
