package summary

import (
	"fmt"
	"strings"
	"testing"

	"grnews/internal/news"
)

func makeArticles(n int) []news.Article {
	articles := make([]news.Article, n)
	for i := range articles {
		articles[i] = news.Article{
			Title:   fmt.Sprintf("Τίτλος %d", i+1),
			Source:  fmt.Sprintf("source%d.gr", i%3),
			URL:     fmt.Sprintf("https://example.gr/article/%d", i+1),
			Content: fmt.Sprintf("Περιεχόμενο άρθρου %d.", i+1),
		}
	}
	return articles
}

func TestBuildPromptEmptyInput(t *testing.T) {
	if _, err := BuildPrompt(nil, Options{}); err == nil {
		t.Fatal("expected error for empty input")
	}
}

func TestBuildPromptCapsAtTwenty(t *testing.T) {
	prompt, err := BuildPrompt(makeArticles(25), Options{})
	if err != nil {
		t.Fatal(err)
	}

	if len(prompt.Articles) != 20 {
		t.Errorf("selected %d articles, want 20", len(prompt.Articles))
	}
	if !strings.Contains(prompt.User, "ARTICLE 20") {
		t.Error("prompt should include article 20")
	}
	if strings.Contains(prompt.User, "ARTICLE 21") {
		t.Error("prompt must not include article 21")
	}
}

func TestBuildPromptPreservesOrder(t *testing.T) {
	articles := makeArticles(3)
	prompt, err := BuildPrompt(articles, Options{})
	if err != nil {
		t.Fatal(err)
	}

	first := strings.Index(prompt.User, articles[0].Title)
	second := strings.Index(prompt.User, articles[1].Title)
	third := strings.Index(prompt.User, articles[2].Title)
	if first < 0 || second < 0 || third < 0 {
		t.Fatal("all titles should appear in the prompt")
	}
	if !(first < second && second < third) {
		t.Errorf("article order not preserved: %d, %d, %d", first, second, third)
	}
}

func TestBuildPromptTruncatesContent(t *testing.T) {
	long := strings.Repeat("α", 300)
	prompt, err := BuildPrompt([]news.Article{{Title: "t", Content: long}}, Options{})
	if err != nil {
		t.Fatal(err)
	}

	want := strings.Repeat("α", 250) + "..."
	if !strings.Contains(prompt.User, want) {
		t.Error("content should be truncated to 250 runes with an ellipsis")
	}
	if strings.Contains(prompt.User, strings.Repeat("α", 251)) {
		t.Error("more than 250 content runes leaked into the prompt")
	}
}

func TestBuildPromptShortContentNotTruncated(t *testing.T) {
	prompt, err := BuildPrompt([]news.Article{{Title: "t", Content: "Σύντομο κείμενο."}}, Options{})
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(prompt.User, "Σύντομο κείμενο....") {
		t.Error("short content must not get an ellipsis")
	}
	if !strings.Contains(prompt.User, "Σύντομο κείμενο.") {
		t.Error("short content should appear verbatim")
	}
}

func TestBuildPromptIncludesExactURLs(t *testing.T) {
	articles := makeArticles(2)
	prompt, err := BuildPrompt(articles, Options{})
	if err != nil {
		t.Fatal(err)
	}

	for _, a := range articles {
		if !strings.Contains(prompt.User, "URL: "+a.URL) {
			t.Errorf("prompt missing exact URL %q", a.URL)
		}
	}
}

func TestBuildPromptMissingFields(t *testing.T) {
	prompt, err := BuildPrompt([]news.Article{{}}, Options{})
	if err != nil {
		t.Fatal(err)
	}

	for _, want := range []string{"Unknown Title", "Unknown Source", "Unknown URL", "[No content available]"} {
		if !strings.Contains(prompt.User, want) {
			t.Errorf("prompt missing placeholder %q", want)
		}
	}
}

func TestBuildPromptHonorsConfiguredLimits(t *testing.T) {
	articles := makeArticles(5)
	articles[0].Content = strings.Repeat("β", 20)

	prompt, err := BuildPrompt(articles, Options{MaxArticles: 3, ExcerptRunes: 10, RequestedStories: 4})
	if err != nil {
		t.Fatal(err)
	}

	if len(prompt.Articles) != 3 {
		t.Errorf("selected %d articles, want the configured cap 3", len(prompt.Articles))
	}
	if strings.Contains(prompt.User, "ARTICLE 4") {
		t.Error("prompt must not exceed the configured article cap")
	}
	if !strings.Contains(prompt.User, strings.Repeat("β", 10)+"...") {
		t.Error("content should be truncated at the configured excerpt limit")
	}
	if strings.Contains(prompt.User, strings.Repeat("β", 11)) {
		t.Error("more than the configured excerpt runes leaked into the prompt")
	}
	if !strings.Contains(prompt.User, "exactly 4 story blocks") {
		t.Error("prompt should ask for the configured story count")
	}
}

func TestAllowedURLsSkipsEmpty(t *testing.T) {
	prompt := &Prompt{Articles: []news.Article{
		{URL: "https://a.gr/1"},
		{URL: ""},
		{URL: "https://a.gr/2"},
	}}

	urls := prompt.allowedURLs()
	if len(urls) != 2 {
		t.Errorf("allowedURLs() has %d entries, want 2", len(urls))
	}
	if _, ok := urls["https://a.gr/1"]; !ok {
		t.Error("missing first URL")
	}
}
