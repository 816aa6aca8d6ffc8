package main

import (
	"context"
	"encoding/json"
	"flag"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/robfig/cron/v3"

	"grnews/internal/cache"
	"grnews/internal/config"
	"grnews/internal/email"
	"grnews/internal/logger"
	"grnews/internal/mistral"
	"grnews/internal/ratelimit"
	"grnews/internal/rss"
	"grnews/internal/scraper"
	"grnews/internal/server"
	"grnews/internal/summary"
)

func main() {
	serve := flag.Bool("serve", false, "run the HTTP server")
	recipient := flag.String("email", "", "mail the digest to this address (one-shot mode)")
	schedule := flag.String("schedule", "", "cron spec for scheduled digests, e.g. \"0 7 * * *\"")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}
	logger.Init(cfg.Debug)

	sources, err := rss.LoadSources(cfg.SourcesConfigPath)
	if err != nil {
		log.Fatalf("loading sources from %s: %v", cfg.SourcesConfigPath, err)
	}

	fetcher := scraper.New(cfg.MaxPerSource, cfg.MaxTotalArticles, cfg.ScrapeConcurrency, cfg.ScrapeTimeout)
	client := mistral.NewClient(cfg.MistralAPIKey, cfg.MistralModel, cfg.RequestTimeout)
	limiter := ratelimit.New(cfg.MaxAPIRequests, 24*time.Hour)
	service := summary.NewService(client, limiter, summary.Options{
		MinStories:       cfg.MinStories,
		MaxArticles:      cfg.MaxPromptArticles,
		ExcerptRunes:     cfg.ExcerptLimit,
		RequestedStories: cfg.RequestedStories,
	})
	mailer := email.NewSender(cfg.EmailSender, cfg.EmailPassword, cfg.SMTPServer, cfg.SMTPPort)
	store := cache.NewArticleStore(cfg.ArticleCacheTTL)

	srv := server.New(sources, fetcher, service, mailer, store)

	switch {
	case *serve:
		logger.Info("starting HTTP server", "port", cfg.Port)
		if err := http.ListenAndServe(":"+cfg.Port, srv.Router()); err != nil {
			log.Fatalf("HTTP server: %v", err)
		}

	case *schedule != "":
		to := cfg.DigestRecipient
		if to == "" {
			log.Fatal("scheduled mode needs DIGEST_RECIPIENT to be set")
		}
		c := cron.New()
		if _, err := c.AddFunc(*schedule, func() {
			runOnce(sources, fetcher, service, mailer, to)
		}); err != nil {
			log.Fatalf("invalid cron spec %q: %v", *schedule, err)
		}
		logger.Info("scheduler started", "spec", *schedule, "recipient", to)
		c.Run()

	default:
		runOnce(sources, fetcher, service, mailer, *recipient)
	}
}

// runOnce fetches, summarizes and prints one digest, optionally mailing it.
func runOnce(sources []rss.Source, fetcher *scraper.Scraper, service *summary.Service, mailer *email.Sender, recipient string) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	articles := fetcher.Collect(ctx, sources)
	logger.Info("fetched articles", "count", len(articles))

	result := service.Summarize(ctx, articles)
	logger.Info("digest ready", "mode", result.Mode, "stories", result.ArticleCount)

	if recipient != "" {
		if err := mailer.Send(ctx, recipient, result); err != nil {
			logger.Error("digest email failed", "error", err)
		}
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(result); err != nil {
		logger.Error("encoding digest", "error", err)
	}
}
