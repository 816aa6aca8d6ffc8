package news

import "sort"

// Article is a single scraped news article. Title and Content are in the
// source language (Greek); URL is absolute or empty; Source is a display
// label such as "kathimerini.gr".
type Article struct {
	Title   string `json:"title"`
	Source  string `json:"source"`
	URL     string `json:"url"`
	Content string `json:"content"`
}

// Sources returns the deduplicated, sorted set of non-empty source labels.
func Sources(articles []Article) []string {
	seen := map[string]struct{}{}
	var out []string
	for _, a := range articles {
		if a.Source == "" {
			continue
		}
		if _, dup := seen[a.Source]; dup {
			continue
		}
		seen[a.Source] = struct{}{}
		out = append(out, a.Source)
	}
	sort.Strings(out)
	return out
}
