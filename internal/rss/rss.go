package rss

import (
	"context"
	"os"

	"github.com/mmcdole/gofeed"
	"gopkg.in/yaml.v3"

	"grnews/internal/logger"
)

// Source is one configured Greek news site. Sites exposing an RSS feed are
// fetched through it; the rest fall back to homepage link discovery.
type Source struct {
	Name     string `yaml:"name"`
	Homepage string `yaml:"homepage"`
	Feed     string `yaml:"feed,omitempty"`
}

type SourcesConfig struct {
	Sources []Source `yaml:"sources"`
}

// LoadSources reads the source list from a YAML file.
func LoadSources(path string) ([]Source, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var cfg SourcesConfig
	if err := yaml.NewDecoder(f).Decode(&cfg); err != nil {
		return nil, err
	}
	return cfg.Sources, nil
}

// FetchFeedLinks returns article links from a source's RSS feed, newest
// first as the feed lists them, capped at limit.
func FetchFeedLinks(ctx context.Context, feedURL string, limit int) ([]string, error) {
	parser := gofeed.NewParser()
	feed, err := parser.ParseURLWithContext(feedURL, ctx)
	if err != nil {
		return nil, err
	}

	var links []string
	for _, item := range feed.Items {
		if len(links) >= limit {
			break
		}
		if item.Link == "" {
			continue
		}
		links = append(links, item.Link)
	}

	logger.Debug("rss: collected links", "feed", feedURL, "count", len(links))
	return links, nil
}
