package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config defines server configuration.
type Config struct {
	Server     ServerConfig     `yaml:"server"`
	DB         DBConfig         `yaml:"db"`
	Log        LogConfig        `yaml:"log"`
	Auth       AuthConfig       `yaml:"auth"`
	Backend    BackendConfig    `yaml:"backend"`
	OpenAI     OpenAIConfig     `yaml:"openai"`
	Naver      NaverConfig      `yaml:"naver"`
	Generation GenerationConfig `yaml:"generation"`
	Prefetch   PrefetchConfig   `yaml:"prefetch"`
}

type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

type DBConfig struct {
	Path string `yaml:"path"`
}

type LogConfig struct {
	Level string `yaml:"level"`
}

// AuthConfig enables bearer-token auth on the HTTP API when Token is set.
type AuthConfig struct {
	Token string `yaml:"token"`
}

type BackendConfig struct {
	BaseURL string        `yaml:"base_url"`
	Token   string        `yaml:"token"`
	Timeout time.Duration `yaml:"timeout"`
}

type OpenAIConfig struct {
	APIKey      string        `yaml:"api_key"`
	BaseURL     string        `yaml:"base_url"`
	Model       string        `yaml:"model"`
	Temperature float64       `yaml:"temperature"`
	MaxTokens   int           `yaml:"max_tokens"`
	Timeout     time.Duration `yaml:"timeout"`
}

type NaverConfig struct {
	ClientID     string        `yaml:"client_id"`
	ClientSecret string        `yaml:"client_secret"`
	BaseURL      string        `yaml:"base_url"`
	Timeout      time.Duration `yaml:"timeout"`
}

type GenerationConfig struct {
	Timeout time.Duration `yaml:"timeout"`
}

type PrefetchConfig struct {
	MaxConcurrent int     `yaml:"max_concurrent"`
	RateLimit     float64 `yaml:"rate_limit"`
	Burst         int     `yaml:"burst"`
}

// Load reads configuration from an optional YAML file and environment variables.
func Load() (Config, error) {
	cfg := Config{
		Server: ServerConfig{
			Host: "0.0.0.0",
			Port: 8080,
		},
		DB: DBConfig{
			Path: "pardiary.db",
		},
		Log: LogConfig{
			Level: "info",
		},
		Backend: BackendConfig{
			Timeout: 30 * time.Second,
		},
		OpenAI: OpenAIConfig{
			Model:       "gpt-4o-mini",
			Temperature: 0.2,
			MaxTokens:   800,
			Timeout:     45 * time.Second,
		},
		Naver: NaverConfig{
			Timeout: 10 * time.Second,
		},
		Generation: GenerationConfig{
			Timeout: 60 * time.Second,
		},
		Prefetch: PrefetchConfig{
			MaxConcurrent: 4,
		},
	}

	if path := os.Getenv("PARDIARY_CONFIG_PATH"); path != "" {
		if err := loadFromFile(path, &cfg); err != nil {
			return Config{}, err
		}
	}

	if host := os.Getenv("PARDIARY_SERVER_HOST"); host != "" {
		cfg.Server.Host = host
	}
	if portStr := os.Getenv("PARDIARY_SERVER_PORT"); portStr != "" {
		port, err := strconv.Atoi(portStr)
		if err != nil {
			return Config{}, fmt.Errorf("invalid PARDIARY_SERVER_PORT: %w", err)
		}
		cfg.Server.Port = port
	}
	if dbPath := os.Getenv("PARDIARY_DB_PATH"); dbPath != "" {
		cfg.DB.Path = dbPath
	}
	if level := os.Getenv("PARDIARY_LOG_LEVEL"); level != "" {
		cfg.Log.Level = level
	}
	if token := os.Getenv("PARDIARY_AUTH_TOKEN"); token != "" {
		cfg.Auth.Token = token
	}

	if url := os.Getenv("PARDIARY_BACKEND_URL"); url != "" {
		cfg.Backend.BaseURL = url
	}
	if token := os.Getenv("PARDIARY_BACKEND_TOKEN"); token != "" {
		cfg.Backend.Token = token
	}

	if key := os.Getenv("PARDIARY_OPENAI_API_KEY"); key != "" {
		cfg.OpenAI.APIKey = key
	} else if cfg.OpenAI.APIKey == "" {
		cfg.OpenAI.APIKey = os.Getenv("OPENAI_API_KEY")
	}
	if url := os.Getenv("PARDIARY_OPENAI_BASE_URL"); url != "" {
		cfg.OpenAI.BaseURL = url
	}
	if model := os.Getenv("PARDIARY_OPENAI_MODEL"); model != "" {
		cfg.OpenAI.Model = model
	}

	if id := os.Getenv("PARDIARY_NAVER_CLIENT_ID"); id != "" {
		cfg.Naver.ClientID = id
	}
	if secret := os.Getenv("PARDIARY_NAVER_CLIENT_SECRET"); secret != "" {
		cfg.Naver.ClientSecret = secret
	}
	if url := os.Getenv("PARDIARY_NAVER_BASE_URL"); url != "" {
		cfg.Naver.BaseURL = url
	}

	if s := os.Getenv("PARDIARY_GENERATION_TIMEOUT"); s != "" {
		d, err := time.ParseDuration(s)
		if err != nil {
			return Config{}, fmt.Errorf("invalid PARDIARY_GENERATION_TIMEOUT: %w", err)
		}
		cfg.Generation.Timeout = d
	}
	if s := os.Getenv("PARDIARY_PREFETCH_MAX_CONCURRENT"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil {
			return Config{}, fmt.Errorf("invalid PARDIARY_PREFETCH_MAX_CONCURRENT: %w", err)
		}
		cfg.Prefetch.MaxConcurrent = n
	}
	if s := os.Getenv("PARDIARY_PREFETCH_RATE_LIMIT"); s != "" {
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return Config{}, fmt.Errorf("invalid PARDIARY_PREFETCH_RATE_LIMIT: %w", err)
		}
		cfg.Prefetch.RateLimit = f
	}

	return cfg, nil
}

func loadFromFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}
	return nil
}
