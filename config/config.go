package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server struct {
		Port int `yaml:"port"`
	} `yaml:"server"`

	API struct {
		Key string `yaml:"key"` // empty disables auth
	} `yaml:"api"`

	Gemini struct {
		ApiKey      string  `yaml:"apiKey"`
		Model       string  `yaml:"model"`
		Temperature float32 `yaml:"temperature"`
	} `yaml:"gemini"`

	Evaluation struct {
		MaxRetries         int     `yaml:"maxRetries"`
		TimeoutSeconds     int     `yaml:"timeoutSeconds"`
		BackoffBaseMillis  int     `yaml:"backoffBaseMillis"`
		BackoffMaxMillis   int     `yaml:"backoffMaxMillis"`
		StrengthThreshold  float64 `yaml:"strengthThreshold"`
		WeaknessThresholds struct {
			ReasoningDepth    float64 `yaml:"reasoningDepth"`
			ArgumentStructure float64 `yaml:"argumentStructure"`
			Consistency       float64 `yaml:"consistency"`
			LogicalFallacies  float64 `yaml:"logicalFallacies"`
		} `yaml:"weaknessThresholds"`
		Weights struct {
			ReasoningDepth    float64 `yaml:"reasoningDepth"`
			ArgumentStructure float64 `yaml:"argumentStructure"`
			Consistency       float64 `yaml:"consistency"`
			LogicalFallacies  float64 `yaml:"logicalFallacies"`
		} `yaml:"weights"`
	} `yaml:"evaluation"`

	Database struct {
		URI string `yaml:"uri"` // empty disables report history
	} `yaml:"database"`

	Redis struct {
		Addr            string `yaml:"addr"` // empty disables caching and rate limiting
		Password        string `yaml:"password"`
		DB              int    `yaml:"db"`
		CacheTTLMinutes int    `yaml:"cacheTTLMinutes"`
	} `yaml:"redis"`
}

// LoadConfig reads the configuration file and applies environment overrides.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal yaml: %w", err)
	}

	cfg.applyEnv()
	cfg.applyDefaults()
	return &cfg, nil
}

// applyEnv lets secrets come from the environment (.env in development)
// instead of the checked-in yaml file.
func (c *Config) applyEnv() {
	if v := os.Getenv("GEMINI_API_KEY"); v != "" {
		c.Gemini.ApiKey = v
	}
	if v := os.Getenv("GEMINI_MODEL"); v != "" {
		c.Gemini.Model = v
	}
	if v := os.Getenv("INSIGHT_API_KEY"); v != "" {
		c.API.Key = v
	}
	if v := os.Getenv("MONGODB_URI"); v != "" {
		c.Database.URI = v
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		c.Redis.Addr = v
	}
	if v := os.Getenv("PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			c.Server.Port = port
		}
	}
}

func (c *Config) applyDefaults() {
	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
	if c.Gemini.Temperature == 0 {
		c.Gemini.Temperature = 0.3
	}
	if c.Evaluation.MaxRetries == 0 {
		c.Evaluation.MaxRetries = 3
	}
	if c.Evaluation.TimeoutSeconds == 0 {
		c.Evaluation.TimeoutSeconds = 60
	}
	if c.Evaluation.BackoffBaseMillis == 0 {
		c.Evaluation.BackoffBaseMillis = 500
	}
	if c.Evaluation.BackoffMaxMillis == 0 {
		c.Evaluation.BackoffMaxMillis = 8000
	}
	if c.Evaluation.StrengthThreshold == 0 {
		c.Evaluation.StrengthThreshold = 0.8
	}
	wt := &c.Evaluation.WeaknessThresholds
	if wt.ReasoningDepth == 0 {
		wt.ReasoningDepth = 0.6
	}
	if wt.ArgumentStructure == 0 {
		wt.ArgumentStructure = 0.6
	}
	if wt.Consistency == 0 {
		wt.Consistency = 0.6
	}
	if wt.LogicalFallacies == 0 {
		wt.LogicalFallacies = 0.6
	}
	w := &c.Evaluation.Weights
	if w.ReasoningDepth == 0 && w.ArgumentStructure == 0 && w.Consistency == 0 && w.LogicalFallacies == 0 {
		w.ReasoningDepth = 0.30
		w.ArgumentStructure = 0.30
		w.Consistency = 0.25
		w.LogicalFallacies = 0.15
	}
	if c.Redis.CacheTTLMinutes == 0 {
		c.Redis.CacheTTLMinutes = 60
	}
}
