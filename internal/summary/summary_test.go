package summary

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"testing"
	"time"

	"grnews/internal/mistral"
	"grnews/internal/news"
	"grnews/internal/ratelimit"
)

// fakeAPI records calls and plays back a canned outcome.
type fakeAPI struct {
	calls   int
	lastReq mistral.Request
	outcome mistral.Outcome
}

func (f *fakeAPI) Complete(ctx context.Context, req mistral.Request) mistral.Outcome {
	f.calls++
	f.lastReq = req
	return f.outcome
}

func goodOutcome(articles []news.Article, stories int) mistral.Outcome {
	var b strings.Builder
	b.WriteString("<h1>Greek News Summary</h1>")
	for i := 0; i < stories; i++ {
		url := articles[i%len(articles)].URL
		fmt.Fprintf(&b, `<h2>%d. Story</h2><p>Text.</p><p><a href="%s">Read Full Article</a></p>`, i+1, url)
	}
	return mistral.Outcome{Kind: mistral.KindSuccess, Content: b.String()}
}

func TestSummarizeTranslatedPath(t *testing.T) {
	articles := makeArticles(6)
	api := &fakeAPI{outcome: goodOutcome(articles, 6)}
	svc := NewService(api, nil, Options{})

	res := svc.Summarize(context.Background(), articles)

	if res.Mode != ModeTranslated {
		t.Fatalf("Mode = %q, want translated; Error = %q", res.Mode, res.Error)
	}
	if res.Error != "" {
		t.Errorf("Error = %q, want empty on success", res.Error)
	}
	if res.ArticleCount != 6 {
		t.Errorf("ArticleCount = %d, want the story count 6", res.ArticleCount)
	}
	if api.calls != 1 {
		t.Errorf("API calls = %d, want 1", api.calls)
	}
	if api.lastReq.System == "" || api.lastReq.User == "" {
		t.Error("prompt should carry both system and user messages")
	}
	if len(res.Sources) == 0 {
		t.Error("Sources should list the selected articles' sources")
	}
}

func TestSummarizeEmptyInputIsDeliberateDirect(t *testing.T) {
	api := &fakeAPI{}
	svc := NewService(api, nil, Options{})

	res := svc.Summarize(context.Background(), nil)

	if res.Mode != ModeDirect {
		t.Fatalf("Mode = %q, want direct", res.Mode)
	}
	if res.Error != "" {
		t.Errorf("Error = %q; empty input is not a failure", res.Error)
	}
	if api.calls != 0 {
		t.Errorf("API calls = %d, want 0 for empty input", api.calls)
	}
}

func TestSummarizeFallbackReasons(t *testing.T) {
	cases := []struct {
		name    string
		outcome mistral.Outcome
		want    string
	}{
		{"missing key", mistral.Outcome{Kind: mistral.KindMissingKey}, "not configured"},
		{"bad key", mistral.Outcome{Kind: mistral.KindAPIError, StatusCode: http.StatusUnauthorized}, "rejected the configured API key"},
		{"forbidden", mistral.Outcome{Kind: mistral.KindAPIError, StatusCode: http.StatusForbidden}, "rejected the configured API key"},
		{"rate limited", mistral.Outcome{Kind: mistral.KindAPIError, StatusCode: http.StatusTooManyRequests}, "rate limit was exceeded"},
		{"server error", mistral.Outcome{Kind: mistral.KindAPIError, StatusCode: 500}, "status 500"},
		{"timeout", mistral.Outcome{Kind: mistral.KindNetworkError, Timeout: true}, "timed out"},
		{"unreachable", mistral.Outcome{Kind: mistral.KindNetworkError}, "could not be reached"},
		{"bad payload", mistral.Outcome{Kind: mistral.KindBadPayload}, "unexpected response"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			svc := NewService(&fakeAPI{outcome: tc.outcome}, nil, Options{})
			res := svc.Summarize(context.Background(), makeArticles(3))

			if res.Mode != ModeDirect {
				t.Fatalf("Mode = %q, want direct", res.Mode)
			}
			if !strings.Contains(res.Error, tc.want) {
				t.Errorf("Error = %q, want it to mention %q", res.Error, tc.want)
			}
			if res.HTMLContent == "" {
				t.Error("direct result must still carry HTML")
			}
		})
	}
}

func TestSummarizeInsufficientStoriesFallsBack(t *testing.T) {
	articles := makeArticles(6)
	api := &fakeAPI{outcome: goodOutcome(articles, 2)}
	svc := NewService(api, nil, Options{})

	res := svc.Summarize(context.Background(), articles)

	if res.Mode != ModeDirect {
		t.Fatalf("Mode = %q, want direct for a 2-story digest", res.Mode)
	}
	if !strings.Contains(res.Error, "incomplete") {
		t.Errorf("Error = %q", res.Error)
	}
}

func TestSummarizeStripsInventedURLs(t *testing.T) {
	articles := makeArticles(6)
	out := goodOutcome(articles, 6)
	out.Content += `<p><a href="https://evil.example/made-up">Extra</a></p>`
	svc := NewService(&fakeAPI{outcome: out}, nil, Options{})

	res := svc.Summarize(context.Background(), articles)

	if res.Mode != ModeTranslated {
		t.Fatalf("Mode = %q, want translated", res.Mode)
	}
	if strings.Contains(res.HTMLContent, "evil.example") {
		t.Error("invented URL survived repair")
	}
	if !strings.Contains(res.HTMLContent, articles[0].URL) {
		t.Error("original URLs should survive repair")
	}
}

func TestSummarizeBudgetExhausted(t *testing.T) {
	articles := makeArticles(6)
	api := &fakeAPI{outcome: goodOutcome(articles, 6)}
	limiter := ratelimit.New(1, time.Hour)
	svc := NewService(api, limiter, Options{})

	if res := svc.Summarize(context.Background(), articles); res.Mode != ModeTranslated {
		t.Fatalf("first call should be translated, got %q (%q)", res.Mode, res.Error)
	}

	res := svc.Summarize(context.Background(), articles)
	if res.Mode != ModeDirect {
		t.Fatalf("second call should hit the budget, got %q", res.Mode)
	}
	if !strings.Contains(res.Error, "budget") {
		t.Errorf("Error = %q", res.Error)
	}
	if api.calls != 1 {
		t.Errorf("API calls = %d, want 1; exhausted budget must not reach the API", api.calls)
	}
}

func TestSummarizeConfiguredMinStories(t *testing.T) {
	articles := makeArticles(4)
	api := &fakeAPI{outcome: goodOutcome(articles, 3)}
	svc := NewService(api, nil, Options{MinStories: 3})

	res := svc.Summarize(context.Background(), articles)

	if res.Mode != ModeTranslated {
		t.Fatalf("Mode = %q, want translated; 3 stories satisfy a threshold of 3 (Error = %q)", res.Mode, res.Error)
	}
	if res.ArticleCount != 3 {
		t.Errorf("ArticleCount = %d, want 3", res.ArticleCount)
	}
}

func TestSummarizeNeverPanicsOnHostileInput(t *testing.T) {
	hostile := make([]news.Article, 1000)
	for i := range hostile {
		hostile[i] = news.Article{
			Title:   strings.Repeat("\x00<>&\"'", 50),
			URL:     "not a url at all \n\t",
			Content: strings.Repeat("α", 10000),
		}
	}
	svc := NewService(&fakeAPI{outcome: mistral.Outcome{Kind: mistral.KindBadPayload}}, nil, Options{})

	res := svc.Summarize(context.Background(), hostile)

	if res == nil {
		t.Fatal("Summarize returned nil")
	}
	if res.HTMLContent == "" {
		t.Error("result must always carry HTML")
	}
	if res.Mode != ModeDirect {
		t.Errorf("Mode = %q, want direct", res.Mode)
	}
}
