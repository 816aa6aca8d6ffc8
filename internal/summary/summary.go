// Package summary implements the translation digest pipeline: prompt
// construction, the summarization call, validation and repair of the model
// output, and the direct-render fallback that guarantees the caller always
// gets displayable HTML.
package summary

import (
	"context"
	"fmt"
	"net/http"

	"grnews/internal/logger"
	"grnews/internal/metrics"
	"grnews/internal/mistral"
	"grnews/internal/news"
	"grnews/internal/ratelimit"
)

// Mode tells the caller which path produced the digest.
type Mode string

const (
	ModeTranslated Mode = "translated"
	ModeDirect     Mode = "direct"
)

// Result is the single output contract of the pipeline, regardless of the
// path taken. HTMLContent is always present and parses as HTML. Error is
// set only for failure-driven direct results.
type Result struct {
	HTMLContent  string   `json:"html_content"`
	ArticleCount int      `json:"article_count"`
	Sources      []string `json:"sources"`
	Mode         Mode     `json:"mode"`
	Error        string   `json:"error,omitempty"`
}

// CompletionAPI is the summarization backend. *mistral.Client implements it.
type CompletionAPI interface {
	Complete(ctx context.Context, req mistral.Request) mistral.Outcome
}

// Options tunes the pipeline. Every zero field falls back to its default,
// so the zero Options is usable.
type Options struct {
	MinStories       int // minimum story blocks to accept a translated result
	MaxArticles      int // articles included in a single prompt
	ExcerptRunes     int // per-article content excerpt in the prompt
	RequestedStories int // story blocks the model is asked for
}

func (o Options) withDefaults() Options {
	if o.MinStories <= 0 {
		o.MinStories = defaultMinStories
	}
	if o.MaxArticles <= 0 {
		o.MaxArticles = defaultMaxPromptArticles
	}
	if o.ExcerptRunes <= 0 {
		o.ExcerptRunes = defaultExcerptLimit
	}
	if o.RequestedStories <= 0 {
		o.RequestedStories = defaultRequestedStories
	}
	return o
}

type Service struct {
	api     CompletionAPI
	limiter *ratelimit.Limiter // optional daily request budget
	opts    Options
}

// NewService wires the pipeline. limiter may be nil for an unlimited
// budget.
func NewService(api CompletionAPI, limiter *ratelimit.Limiter, opts Options) *Service {
	return &Service{api: api, limiter: limiter, opts: opts.withDefaults()}
}

// Summarize runs the full pipeline for one article batch. It has no error
// return: every failure is converted into a direct-mode result carrying a
// short, user-presentable reason, while full diagnostics go to the log.
func (s *Service) Summarize(ctx context.Context, articles []news.Article) (res *Result) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("summary: recovered from panic", "panic", r)
			metrics.Global.IncrementFallbackDigests()
			res = RenderDirect(articles, "an unexpected error occurred while preparing the translation")
		}
	}()

	if len(articles) == 0 {
		// Deliberate direct mode, not a failure: no reason attached.
		return s.direct(articles, "")
	}

	prompt, err := BuildPrompt(articles, s.opts)
	if err != nil {
		return s.direct(articles, "no articles could be prepared for translation")
	}

	if s.limiter != nil && !s.limiter.Allow() {
		return s.direct(articles, "the daily translation request budget is exhausted")
	}

	outcome := s.api.Complete(ctx, mistral.Request{System: prompt.System, User: prompt.User})
	if outcome.Kind != mistral.KindSuccess {
		metrics.Global.IncrementAPIFailures()
		return s.direct(articles, fallbackReason(outcome))
	}

	html, stories, err := validateAndRepair(outcome.Content, prompt.allowedURLs(), s.opts.MinStories)
	if err != nil {
		logger.Warn("summary: translated output unusable", "error", err, "truncated", outcome.Truncated)
		return s.direct(articles, "the translated summary was incomplete")
	}

	metrics.Global.IncrementTranslatedDigests()
	return &Result{
		HTMLContent:  html,
		ArticleCount: stories,
		Sources:      news.Sources(prompt.Articles),
		Mode:         ModeTranslated,
	}
}

func (s *Service) direct(articles []news.Article, reason string) *Result {
	if reason != "" {
		logger.Info("summary: falling back to direct mode", "reason", reason)
	}
	metrics.Global.IncrementFallbackDigests()
	return RenderDirect(articles, reason)
}

// fallbackReason maps a failed client outcome to the short reason shown in
// the digest banner. Status codes and bodies stay in the operational log
// only.
func fallbackReason(o mistral.Outcome) string {
	switch o.Kind {
	case mistral.KindMissingKey:
		return "the translation service API key is not configured"
	case mistral.KindNetworkError:
		if o.Timeout {
			return "the translation service timed out"
		}
		return "the translation service could not be reached"
	case mistral.KindAPIError:
		switch o.StatusCode {
		case http.StatusUnauthorized, http.StatusForbidden:
			return "the translation service rejected the configured API key"
		case http.StatusTooManyRequests:
			return "the translation service rate limit was exceeded, please try again later"
		default:
			return fmt.Sprintf("the translation service returned an error (status %d)", o.StatusCode)
		}
	case mistral.KindBadPayload:
		return "the translation service returned an unexpected response"
	default:
		return "the translation service failed"
	}
}
