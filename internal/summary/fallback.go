package summary

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"grnews/internal/markup"
	"grnews/internal/news"
)

const (
	// maxDirectStories caps how many original articles the direct digest
	// shows, mirroring the story count requested from the model.
	maxDirectStories = 12
	// minExcerptRunes: a two-sentence excerpt shorter than this is padded
	// with a third sentence.
	minExcerptRunes = 50
	// sliceLimit is the raw-slice budget when sentence splitting finds
	// nothing usable.
	sliceLimit = 160
)

// RenderDirect builds a digest straight from the original, untranslated
// articles. It is the terminal fallback of the pipeline: deterministic, no
// external calls, cannot fail. A non-empty reason is shown as a warning
// banner and passed through as the result's Error.
func RenderDirect(articles []news.Article, reason string) *Result {
	nodes := []markup.Node{
		markup.El("h1", nil, markup.Text(digestTitle)),
		markup.El("p", nil,
			markup.El("em", nil, markup.Text("Showing original articles without translation."))),
	}

	if reason != "" {
		nodes = append(nodes, markup.El("div",
			[]markup.Attr{{Key: "class", Val: "warning"}},
			markup.Text("Translation unavailable: "+reason)))
	}

	if len(articles) == 0 {
		nodes = append(nodes, markup.El("p", nil,
			markup.Text("No news articles are available right now. Please try again later.")))
	}

	for i, a := range articles {
		if i >= maxDirectStories {
			break
		}
		nodes = append(nodes, storyBlock(i+1, a)...)
	}

	return &Result{
		HTMLContent:  markup.Render(markup.El("div", []markup.Attr{{Key: "class", Val: "news-digest"}}, nodes...)),
		ArticleCount: len(articles),
		Sources:      news.Sources(articles),
		Mode:         ModeDirect,
		Error:        reason,
	}
}

func storyBlock(number int, a news.Article) []markup.Node {
	title := a.Title
	if title == "" {
		title = "Untitled"
	}

	nodes := []markup.Node{
		markup.El("h2", nil, markup.Text(fmt.Sprintf("%d. %s", number, title))),
	}

	if ex := excerpt(a.Content); ex != "" {
		nodes = append(nodes, markup.El("p", nil, markup.Text(ex)))
	}
	if a.Source != "" {
		nodes = append(nodes, markup.El("p",
			[]markup.Attr{{Key: "class", Val: "source"}},
			markup.Text("Source: "+a.Source)))
	}
	if a.URL != "" {
		nodes = append(nodes, markup.El("p", nil,
			markup.El("a", []markup.Attr{
				{Key: "href", Val: a.URL},
				{Key: "target", Val: "_blank"},
				{Key: "class", Val: linkClass},
			}, markup.Text("Read the original article"))))
	}
	return nodes
}

// excerpt derives a short preview from article content: the first two
// sentences, extended to three when those two come in under 50 runes, or a
// plain character slice when no sentence boundary can be found.
func excerpt(content string) string {
	content = strings.TrimSpace(content)
	if content == "" {
		return ""
	}

	sentences := splitSentences(content)
	if len(sentences) == 0 {
		if utf8.RuneCountInString(content) > sliceLimit {
			return string([]rune(content)[:sliceLimit]) + "..."
		}
		return content
	}

	n := 2
	if n > len(sentences) {
		n = len(sentences)
	}
	out := strings.Join(sentences[:n], " ")
	if utf8.RuneCountInString(out) < minExcerptRunes && len(sentences) > n {
		out = strings.Join(sentences[:n+1], " ")
	}
	return out
}

// splitSentences cuts on '.', '!' or '?' followed by whitespace (or end of
// input), keeping the terminator with its sentence.
func splitSentences(s string) []string {
	var sentences []string
	var current strings.Builder

	runes := []rune(s)
	for i, r := range runes {
		current.WriteRune(r)
		if r != '.' && r != '!' && r != '?' {
			continue
		}
		if i+1 == len(runes) || unicode.IsSpace(runes[i+1]) {
			if sentence := strings.TrimSpace(current.String()); sentence != "" {
				sentences = append(sentences, sentence)
			}
			current.Reset()
		}
	}
	// Trailing text without a terminator is not a usable sentence; the
	// caller falls back to a raw slice when nothing else was found.
	return sentences
}
