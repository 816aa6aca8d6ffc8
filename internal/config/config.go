package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	// Mistral settings
	MistralAPIKey  string
	MistralModel   string
	RequestTimeout time.Duration
	MaxAPIRequests int // daily budget for summarization calls (0 = unlimited)

	// Summarization settings
	MaxPromptArticles int // articles included in a single prompt
	RequestedStories  int // story blocks the model is asked for
	MinStories        int // minimum story blocks to accept a translated result
	ExcerptLimit      int // per-article content excerpt in the prompt, runes

	// Scraper settings
	SourcesConfigPath string
	MaxPerSource      int
	MaxTotalArticles  int
	ScrapeConcurrency int
	ScrapeTimeout     time.Duration

	// Server settings
	Port            string
	ArticleCacheTTL time.Duration

	// Email settings
	EmailSender     string
	EmailPassword   string
	SMTPServer      string
	SMTPPort        int
	DigestRecipient string // default recipient for scheduled digests

	// App settings
	Debug bool
}

func Load() (*Config, error) {
	// Load .env file if present; environment always wins.
	_ = godotenv.Load()

	cfg := &Config{
		MistralModel:      "mistral-small",
		RequestTimeout:    120 * time.Second,
		MaxAPIRequests:    getEnvIntOrDefault("MAX_API_REQUESTS", 0),
		MaxPromptArticles: 20,
		RequestedStories:  12,
		MinStories:        getEnvIntOrDefault("MIN_STORIES", 5),
		ExcerptLimit:      250,
		SourcesConfigPath: getEnvOrDefault("SOURCES_CONFIG_PATH", "configs/sources.yaml"),
		MaxPerSource:      getEnvIntOrDefault("MAX_PER_SOURCE", 3),
		MaxTotalArticles:  getEnvIntOrDefault("MAX_TOTAL_ARTICLES", 15),
		ScrapeConcurrency: getEnvIntOrDefault("SCRAPE_CONCURRENCY", 4),
		ScrapeTimeout:     15 * time.Second,
		Port:              getEnvOrDefault("PORT", "8080"),
		ArticleCacheTTL:   10 * time.Minute,
		SMTPServer:        getEnvOrDefault("SMTP_SERVER", "smtp.gmail.com"),
		SMTPPort:          getEnvIntOrDefault("SMTP_PORT", 587),
	}

	cfg.MistralAPIKey = os.Getenv("MISTRAL_API_KEY")
	cfg.EmailSender = os.Getenv("EMAIL_SENDER")
	cfg.EmailPassword = os.Getenv("EMAIL_PASSWORD")
	cfg.DigestRecipient = os.Getenv("DIGEST_RECIPIENT")

	if v := os.Getenv("REQUEST_TIMEOUT_SECONDS"); v != "" {
		if val, err := strconv.Atoi(v); err == nil && val > 0 {
			cfg.RequestTimeout = time.Duration(val) * time.Second
		}
	}
	if v := os.Getenv("ARTICLE_CACHE_TTL_MINUTES"); v != "" {
		if val, err := strconv.Atoi(v); err == nil && val > 0 {
			cfg.ArticleCacheTTL = time.Duration(val) * time.Minute
		}
	}
	if model := os.Getenv("MISTRAL_MODEL"); model != "" {
		cfg.MistralModel = model
	}
	if os.Getenv("DEBUG") == "true" {
		cfg.Debug = true
	}

	return cfg, cfg.Validate()
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// Validate checks numeric sanity. A missing MISTRAL_API_KEY is deliberately
// not an error: the pipeline degrades to direct mode without it.
func (c *Config) Validate() error {
	if c.MinStories < 1 {
		return fmt.Errorf("MIN_STORIES must be at least 1")
	}
	if c.MinStories > c.RequestedStories {
		return fmt.Errorf("MIN_STORIES (%d) cannot exceed the requested story count (%d)", c.MinStories, c.RequestedStories)
	}
	if c.MaxPerSource < 1 || c.MaxTotalArticles < 1 {
		return fmt.Errorf("article limits must be positive")
	}
	if c.ScrapeConcurrency < 1 {
		return fmt.Errorf("SCRAPE_CONCURRENCY must be positive")
	}
	return nil
}
