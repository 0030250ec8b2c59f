package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	"tldrbot/internal/fetch"
)

const (
	ProviderAuto        = "auto"
	ProviderOpenAI      = "openai"
	ProviderGemini      = "gemini"
	ProviderHuggingFace = "huggingface"
	ProviderPassthrough = "passthrough"

	minLines = 1
	maxLines = 10
)

type Config struct {
	Token        string  `env:"TOKEN"`
	AllowedUsers []int64 `env:"ALLOWED_USERS"`
	DBPath       string  `env:"DB_PATH"         envDefault:"db.sqlite"`
	LogLevel     string  `env:"LOG_LEVEL"       envDefault:"info"`

	HTTP     HTTP     `envPrefix:"HTTP_"`
	Rewriter Rewriter `envPrefix:"REWRITER_"`
	OpenAI   OpenAI   `envPrefix:"OPENAI_"`
	Gemini   Gemini   `envPrefix:"GEMINI_"`
	HF       HF       `envPrefix:"HF_"`
	Defaults Defaults `envPrefix:"DEFAULT_"`
	Fetch    Fetch    `envPrefix:"FETCH_"`
}

type HTTP struct {
	// Addr is empty when the HTTP API is disabled.
	Addr           string   `env:"ADDR"`
	AllowedOrigins []string `env:"ALLOWED_ORIGINS" envDefault:"*"`
}

type Rewriter struct {
	Provider string        `env:"PROVIDER"        envDefault:"auto"`
	Timeout  time.Duration `env:"TIMEOUT"         envDefault:"90s"`
	// RPM caps model calls per minute; 0 disables pacing.
	RPM int `env:"RPM" envDefault:"30"`
}

type OpenAI struct {
	APIKey string `env:"API_KEY"`
	Model  string `env:"MODEL"   envDefault:"gpt-4o-mini"`
}

type Gemini struct {
	APIKey string `env:"API_KEY"`
	Model  string `env:"MODEL"   envDefault:"gemini-2.5-flash"`
}

type HF struct {
	APIToken string `env:"API_TOKEN"`
	Model    string `env:"MODEL"     envDefault:"t5-small"`
	BaseURL  string `env:"BASE_URL"  envDefault:"https://router.huggingface.co/hf-inference/models"`
}

type Defaults struct {
	ExtractiveLines  int `env:"EXTRACTIVE_LINES"  envDefault:"3"`
	AbstractiveLines int `env:"ABSTRACTIVE_LINES" envDefault:"3"`
}

type Fetch struct {
	CacheEntries int           `env:"CACHE_ENTRIES" envDefault:"256"`
	CacheTTL     time.Duration `env:"CACHE_TTL"     envDefault:"1h"`
	Timeout      time.Duration `env:"TIMEOUT"       envDefault:"20s"`
	// AllowPrivateNetworks lets links resolve to loopback and private addresses.
	AllowPrivateNetworks bool `env:"ALLOW_PRIVATE_NETWORKS"`
}

// FetchOptions translates the fetch settings into fetcher options.
func (c *Config) FetchOptions() []fetch.Option {
	if c.Fetch.AllowPrivateNetworks {
		return []fetch.Option{fetch.AllowPrivateNetworks()}
	}
	return nil
}

// Load reads an optional .env file and then the process environment.
func Load(envFiles ...string) (Config, error) {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}

	for _, f := range envFiles {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, os.ErrNotExist) {
			return Config{}, fmt.Errorf("load env file %s: %w", f, err)
		}
	}

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	c.Token = strings.TrimSpace(c.Token)
	c.Rewriter.Provider = strings.ToLower(strings.TrimSpace(c.Rewriter.Provider))

	var errs []error

	switch c.Rewriter.Provider {
	case ProviderAuto, ProviderOpenAI, ProviderGemini, ProviderHuggingFace, ProviderPassthrough:
	default:
		errs = append(errs, fmt.Errorf("unknown rewriter provider %q", c.Rewriter.Provider))
	}

	if !linesInRange(c.Defaults.ExtractiveLines) {
		errs = append(errs, fmt.Errorf("DEFAULT_EXTRACTIVE_LINES must be within %d-%d (got %d)",
			minLines, maxLines, c.Defaults.ExtractiveLines))
	}

	if !linesInRange(c.Defaults.AbstractiveLines) {
		errs = append(errs, fmt.Errorf("DEFAULT_ABSTRACTIVE_LINES must be within %d-%d (got %d)",
			minLines, maxLines, c.Defaults.AbstractiveLines))
	}

	if c.Rewriter.RPM < 0 {
		errs = append(errs, fmt.Errorf("REWRITER_RPM must not be negative (got %d)", c.Rewriter.RPM))
	}

	return errors.Join(errs...)
}

// ResolvedProvider picks a concrete provider for "auto" from the configured keys.
func (c *Config) ResolvedProvider() string {
	if c.Rewriter.Provider != ProviderAuto && c.Rewriter.Provider != "" {
		return c.Rewriter.Provider
	}

	switch {
	case strings.TrimSpace(c.OpenAI.APIKey) != "":
		return ProviderOpenAI
	case strings.TrimSpace(c.Gemini.APIKey) != "":
		return ProviderGemini
	case strings.TrimSpace(c.HF.APIToken) != "":
		return ProviderHuggingFace
	default:
		return ProviderPassthrough
	}
}

func linesInRange(n int) bool {
	return n >= minLines && n <= maxLines
}
