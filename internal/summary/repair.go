package summary

import (
	"fmt"
	"html"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"grnews/internal/logger"
)

const (
	// digestTitle is synthesized when the model forgot the top heading.
	digestTitle = "Greek News Summary"
	// linkClass is forced onto every outbound link so the digest renders
	// consistently regardless of what the model emitted.
	linkClass = "article-link"
)

// preambleTags is the ordered candidate list for the preamble trim. The
// model sometimes prepends conversational text despite instruction not to;
// everything before the first candidate found is discarded. First match
// wins, a deliberately fuzzy heuristic.
var preambleTags = []string{"<h1", "<div", "<p", "<h2"}

// validateAndRepair inspects raw model output for structural
// well-formedness, repairs minor defects and reports the usable HTML with
// its story count. A non-nil error means the output cannot be salvaged and
// the caller must fall back to direct mode.
func validateAndRepair(raw string, allowed map[string]struct{}, minStories int) (string, int, error) {
	var repaired string
	var stories int

	if !strings.Contains(raw, "<") {
		// No markup at all: keep the text readable rather than parse it,
		// and let the sufficiency check below make the final call.
		repaired = wrapPlainText(raw)
		stories = 0
	} else {
		var err error
		repaired, stories, err = repairDocument(trimPreamble(raw), allowed)
		if err != nil {
			return "", 0, err
		}
	}

	if stories < minStories {
		return "", 0, fmt.Errorf("insufficient story count: found %d, need at least %d", stories, minStories)
	}
	return repaired, stories, nil
}

// trimPreamble discards any leading text before the first expected tag.
func trimPreamble(raw string) string {
	for _, tag := range preambleTags {
		if idx := strings.Index(raw, tag); idx > 0 {
			return raw[idx:]
		} else if idx == 0 {
			return raw
		}
	}
	return raw
}

// wrapPlainText embeds non-HTML output verbatim in a minimal placeholder
// page.
func wrapPlainText(raw string) string {
	return "<div><h1>" + digestTitle + "</h1><p>" + html.EscapeString(strings.TrimSpace(raw)) + "</p></div>"
}

// repairDocument normalizes the document structure: consistent link
// attributes, URL fidelity against the allowed set, a guaranteed top-level
// heading. Idempotent: repairing already-repaired output changes nothing.
func repairDocument(htmlText string, allowed map[string]struct{}) (string, int, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(htmlText))
	if err != nil {
		return "", 0, fmt.Errorf("parsing model output: %w", err)
	}

	doc.Find("a[href]").Each(func(i int, s *goquery.Selection) {
		href, _ := s.Attr("href")
		if _, ok := allowed[href]; !ok {
			// The model altered or invented a URL; keep the text, drop
			// the link.
			logger.Warn("repair: dropping link with unknown href", "href", href)
			s.ReplaceWithHtml(html.EscapeString(s.Text()))
			return
		}
		s.SetAttr("target", "_blank")
		s.SetAttr("class", linkClass)
	})

	if doc.Find("h1").Length() == 0 {
		doc.Find("body").PrependHtml("<h1>" + digestTitle + "</h1>")
	}

	out, err := doc.Html()
	if err != nil {
		return "", 0, fmt.Errorf("serializing repaired output: %w", err)
	}
	return out, doc.Find("h2").Length(), nil
}
