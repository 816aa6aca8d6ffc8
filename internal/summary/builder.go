package summary

import (
	"fmt"
	"strings"

	"grnews/internal/news"
)

// Default prompt sizing, used for every Options field left zero.
const (
	defaultMinStories        = 5
	defaultMaxPromptArticles = 20
	defaultExcerptLimit      = 250
	defaultRequestedStories  = 12
)

const systemPrompt = `You are an expert news analyst and translator specializing in Greek domestic news. Your task is to:

1. Analyze a collection of Greek news articles
2. Prioritize news stories occurring INSIDE Greece and about Greek domestic affairs
3. Summarize and translate the content to English
4. Select the top 12 most important and UNIQUE news stories (avoid duplicates)
5. For each story, provide a concise title and a 2-3 sentence summary
6. Focus only on facts, no opinions or creativity
7. Group related stories together
8. Include the source website and original URL for each story

Your output must be plain HTML with no surrounding commentary.`

// Prompt is the bounded request payload for one summarization call. It
// retains the selected article subset so the caller can derive the allowed
// URL set and the sources set for the result.
type Prompt struct {
	System   string
	User     string
	Articles []news.Article
}

// BuildPrompt turns an article list into a size-limited prompt. Only the
// first min(opts.MaxArticles, len) articles are included, in input order.
// It fails only on empty input, which the pipeline maps to a direct-mode
// result.
func BuildPrompt(articles []news.Article, opts Options) (*Prompt, error) {
	opts = opts.withDefaults()

	if len(articles) == 0 {
		return nil, fmt.Errorf("no articles to summarize")
	}

	selected := articles
	if len(selected) > opts.MaxArticles {
		selected = selected[:opts.MaxArticles]
	}

	var b strings.Builder
	b.WriteString("Here are the news articles to summarize and translate to English:\n\n")

	for i, a := range selected {
		fmt.Fprintf(&b, "ARTICLE %d\n", i+1)
		fmt.Fprintf(&b, "Title: %s\n", orUnknown(a.Title, "Unknown Title"))
		fmt.Fprintf(&b, "Source: %s\n", orUnknown(a.Source, "Unknown Source"))
		fmt.Fprintf(&b, "URL: %s\n", orUnknown(a.URL, "Unknown URL"))
		if a.Content != "" {
			fmt.Fprintf(&b, "Content:\n%s\n\n", truncateRunes(a.Content, opts.ExcerptRunes))
		} else {
			b.WriteString("Content: [No content available]\n\n")
		}
	}

	fmt.Fprintf(&b, `Produce the result as HTML with EXACTLY this structure:
- exactly one <h1> heading for the whole digest
- exactly %d story blocks, each consisting of:
  - an <h2> heading with the story number and the translated title
  - one <p> with a 2-3 sentence English summary
  - a line naming the source website
  - a single <a> link to the original article labeled "Read Full Article", opening in a new window

The href of each link MUST be the original URL from the article list,
copied byte-for-byte. Never shorten, translate or otherwise rewrite URLs.
Do not add any text before or after the HTML.
`, opts.RequestedStories)

	return &Prompt{
		System:   systemPrompt,
		User:     b.String(),
		Articles: selected,
	}, nil
}

// allowedURLs is the set of hrefs a translated result may link to.
func (p *Prompt) allowedURLs() map[string]struct{} {
	urls := make(map[string]struct{}, len(p.Articles))
	for _, a := range p.Articles {
		if a.URL != "" {
			urls[a.URL] = struct{}{}
		}
	}
	return urls
}

func orUnknown(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}

// truncateRunes cuts s to at most limit runes, marking the cut with an
// ellipsis.
func truncateRunes(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit]) + "..."
}
