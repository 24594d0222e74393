package config

import (
	"errors"
	"os"

	"gopkg.in/yaml.v3"
)

// Search describes one saved marketplace search to monitor.
type Search struct {
	Name           string   `yaml:"name"`
	Location       string   `yaml:"location"`
	Category       string   `yaml:"category"`
	Query          string   `yaml:"query"`
	Lat            *float64 `yaml:"lat,omitempty"`
	Lon            *float64 `yaml:"lon,omitempty"`
	SearchDistance *int     `yaml:"search_distance,omitempty"`
	MaxPrice       int      `yaml:"max_price,omitempty"`
	Keywords       Keywords `yaml:"keywords,omitempty"`
	MaxAlerts      int      `yaml:"max_alerts,omitempty"`
}

// Keywords are title filters applied to scraped listings.
type Keywords struct {
	Include []string `yaml:"include,omitempty"`
	Exclude []string `yaml:"exclude,omitempty"`
}

// EvaluatorConfig configures the deal-evaluation engine.
type EvaluatorConfig struct {
	DataDir   string  `yaml:"data_dir"`
	Embedder  string  `yaml:"embedder"`
	Dimension int     `yaml:"dimension"`
	TopK      int     `yaml:"top_k"`
	Threshold float64 `yaml:"threshold"`

	OpenAI *OpenAIConfig `yaml:"openai,omitempty"`
}

// OpenAIConfig holds settings for the remote embedder.
type OpenAIConfig struct {
	BaseURL     string `yaml:"base_url"`
	APIKeyEnv   string `yaml:"api_key_env"`
	Model       string `yaml:"model"`
	TimeoutSecs int    `yaml:"timeout_secs"`
}

// NotifierConfig configures where alerts are sent.
type NotifierConfig struct {
	WebhookURLEnv string `yaml:"webhook_url_env"`
	Username      string `yaml:"username"`
}

// PollConfig paces outbound scraping requests.
type PollConfig struct {
	DelayBetweenSearchesSecs int `yaml:"delay_between_searches_secs"`
	RequestTimeoutSecs       int `yaml:"request_timeout_secs"`
}

// Config is the root application configuration.
type Config struct {
	Searches  []Search        `yaml:"searches"`
	Evaluator EvaluatorConfig `yaml:"evaluator"`
	Notifier  NotifierConfig  `yaml:"notifier"`
	Poll      PollConfig      `yaml:"poll"`
}

// Load reads a config from the given path. A missing file returns defaults
// with no searches configured.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			cfg := &Config{}
			applyDefaults(cfg)
			return cfg, nil
		}
		return nil, err
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	applyDefaults(&cfg)
	return &cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.Evaluator.DataDir == "" {
		cfg.Evaluator.DataDir = "data"
	}
	if cfg.Evaluator.Embedder == "" {
		cfg.Evaluator.Embedder = "hashing"
	}
	if cfg.Evaluator.Dimension == 0 {
		cfg.Evaluator.Dimension = 256
	}
	if cfg.Evaluator.TopK == 0 {
		cfg.Evaluator.TopK = 5
	}
	if cfg.Evaluator.Threshold == 0 {
		cfg.Evaluator.Threshold = 0.4
	}
	if cfg.Evaluator.Embedder == "openai" {
		if cfg.Evaluator.OpenAI == nil {
			cfg.Evaluator.OpenAI = &OpenAIConfig{}
		}
		if cfg.Evaluator.OpenAI.APIKeyEnv == "" {
			cfg.Evaluator.OpenAI.APIKeyEnv = "OPENAI_API_KEY"
		}
		if cfg.Evaluator.OpenAI.TimeoutSecs == 0 {
			cfg.Evaluator.OpenAI.TimeoutSecs = 30
		}
	}
	if cfg.Notifier.WebhookURLEnv == "" {
		cfg.Notifier.WebhookURLEnv = "DISCORD_WEBHOOK_URL"
	}
	if cfg.Notifier.Username == "" {
		cfg.Notifier.Username = "Dealscope"
	}
	if cfg.Poll.DelayBetweenSearchesSecs == 0 {
		cfg.Poll.DelayBetweenSearchesSecs = 5
	}
	if cfg.Poll.RequestTimeoutSecs == 0 {
		cfg.Poll.RequestTimeoutSecs = 10
	}
	for i := range cfg.Searches {
		if cfg.Searches[i].MaxAlerts == 0 {
			cfg.Searches[i].MaxAlerts = 5
		}
	}
}
