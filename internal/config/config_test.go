package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatal(err)
	}

	if cfg.MistralModel != "mistral-small" {
		t.Errorf("MistralModel = %q", cfg.MistralModel)
	}
	if cfg.RequestTimeout != 120*time.Second {
		t.Errorf("RequestTimeout = %v", cfg.RequestTimeout)
	}
	if cfg.MaxPromptArticles != 20 || cfg.RequestedStories != 12 || cfg.ExcerptLimit != 250 {
		t.Errorf("summarization limits = %d/%d/%d", cfg.MaxPromptArticles, cfg.RequestedStories, cfg.ExcerptLimit)
	}
	if cfg.MinStories != 5 {
		t.Errorf("MinStories = %d, want 5", cfg.MinStories)
	}
	if cfg.Port != "8080" {
		t.Errorf("Port = %q", cfg.Port)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("MIN_STORIES", "3")
	t.Setenv("MISTRAL_MODEL", "mistral-medium")
	t.Setenv("REQUEST_TIMEOUT_SECONDS", "30")
	t.Setenv("PORT", "9090")

	cfg, err := Load()
	if err != nil {
		t.Fatal(err)
	}

	if cfg.MinStories != 3 {
		t.Errorf("MinStories = %d, want 3", cfg.MinStories)
	}
	if cfg.MistralModel != "mistral-medium" {
		t.Errorf("MistralModel = %q", cfg.MistralModel)
	}
	if cfg.RequestTimeout != 30*time.Second {
		t.Errorf("RequestTimeout = %v", cfg.RequestTimeout)
	}
	if cfg.Port != "9090" {
		t.Errorf("Port = %q", cfg.Port)
	}
}

func TestLoadDebugFlag(t *testing.T) {
	t.Setenv("DEBUG", "true")

	cfg, err := Load()
	if err != nil {
		t.Fatal(err)
	}
	if !cfg.Debug {
		t.Error("DEBUG=true should set Debug")
	}
}

func TestLoadMissingAPIKeyIsNotAnError(t *testing.T) {
	t.Setenv("MISTRAL_API_KEY", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("missing API key must not fail config loading: %v", err)
	}
	if cfg.MistralAPIKey != "" {
		t.Errorf("MistralAPIKey = %q, want empty", cfg.MistralAPIKey)
	}
}

func TestValidate(t *testing.T) {
	base := func() *Config {
		return &Config{
			RequestedStories:  12,
			MinStories:        5,
			MaxPerSource:      3,
			MaxTotalArticles:  15,
			ScrapeConcurrency: 4,
		}
	}

	if err := base().Validate(); err != nil {
		t.Errorf("valid config rejected: %v", err)
	}

	c := base()
	c.MinStories = 0
	if err := c.Validate(); err == nil {
		t.Error("MinStories = 0 should be rejected")
	}

	c = base()
	c.MinStories = 13
	if err := c.Validate(); err == nil {
		t.Error("MinStories above RequestedStories should be rejected")
	}

	c = base()
	c.MaxTotalArticles = 0
	if err := c.Validate(); err == nil {
		t.Error("zero article limit should be rejected")
	}
}
