package scraper

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/PuerkitoBio/goquery"

	"grnews/internal/logger"
	"grnews/internal/metrics"
	"grnews/internal/news"
	"grnews/internal/retry"
	"grnews/internal/rss"
)

// Path fragments that suggest a link points at a news article on Greek
// news sites.
var articleIndicators = []string{
	"/article/", "/news/", "/ellada/", "/politics/", "/greece/",
	"/politiki/", "/economy/", "/oikonomia/", "/kosmos/", "/world/",
	"/koinonia/", "/society/", "/ygeia/", "/health/",
}

// Path fragments that mark section pages, media or junk, never articles.
var excludeIndicators = []string{
	"/tag/", "/author/", "/category/", "/contact/", "/about/",
	"/privacy/", "/terms/", "/video/", "/photos/", "/galleries/",
	"javascript:", "#", "mailto:", "tel:", "/rss/",
}

// Date-like path segments often indicate article pages.
var datePathRe = regexp.MustCompile(`/20\d{2}/`)

type Scraper struct {
	client       *http.Client
	maxPerSource int
	maxTotal     int
	concurrency  int
}

func New(maxPerSource, maxTotal, concurrency int, timeout time.Duration) *Scraper {
	return &Scraper{
		client:       &http.Client{Timeout: timeout},
		maxPerSource: maxPerSource,
		maxTotal:     maxTotal,
		concurrency:  concurrency,
	}
}

// Collect gathers article links from every configured source and scrapes
// their content. Sources that fail are logged and skipped; the result is
// sorted by content length descending as a rough quality heuristic.
func (s *Scraper) Collect(ctx context.Context, sources []rss.Source) []news.Article {
	var links []sourcedLink
	for _, src := range sources {
		found, err := s.sourceLinks(ctx, src)
		if err != nil {
			logger.Warn("scraper: skipping source", "source", src.Name, "error", err)
			continue
		}
		for _, l := range found {
			links = append(links, sourcedLink{url: l, source: src.Name})
		}
	}

	if len(links) > s.maxTotal {
		links = links[:s.maxTotal]
	}
	logger.Info("scraper: collected article links", "count", len(links))

	articles := s.scrapeAll(ctx, links)

	sort.SliceStable(articles, func(i, j int) bool {
		return len(articles[i].Content) > len(articles[j].Content)
	})

	metrics.Global.AddArticlesFetched(len(articles))
	return articles
}

type sourcedLink struct {
	url    string
	source string
}

func (s *Scraper) sourceLinks(ctx context.Context, src rss.Source) ([]string, error) {
	var links []string
	err := retry.WithRetry(ctx, retry.Config{MaxAttempts: 2, Delay: 2 * time.Second}, func() error {
		var innerErr error
		if src.Feed != "" {
			links, innerErr = rss.FetchFeedLinks(ctx, src.Feed, s.maxPerSource)
		} else {
			links, innerErr = s.discoverLinks(ctx, src.Homepage)
		}
		return innerErr
	})
	if err != nil {
		return nil, err
	}
	if len(links) > s.maxPerSource {
		links = links[:s.maxPerSource]
	}
	return links, nil
}

// discoverLinks pulls same-domain article links from a source homepage.
func (s *Scraper) discoverLinks(ctx context.Context, homepage string) ([]string, error) {
	doc, err := s.fetchDocument(ctx, homepage)
	if err != nil {
		return nil, err
	}

	domain := extractDomain(homepage)
	seen := map[string]struct{}{}
	var links []string

	doc.Find("a[href]").Each(func(i int, sel *goquery.Selection) {
		href, _ := sel.Attr("href")
		link, ok := normalizeLink(href, homepage)
		if !ok {
			return
		}
		if extractDomain(link) != domain || !looksLikeArticle(link) {
			return
		}
		if _, dup := seen[link]; dup {
			return
		}
		seen[link] = struct{}{}
		links = append(links, link)
	})

	// Shorter URLs tend to be more canonical.
	sort.Slice(links, func(i, j int) bool { return len(links[i]) < len(links[j]) })

	logger.Debug("scraper: discovered links", "homepage", homepage, "count", len(links))
	return links, nil
}

func normalizeLink(href, base string) (string, bool) {
	if href == "" || strings.HasPrefix(href, "#") || strings.HasPrefix(href, "javascript") {
		return "", false
	}
	for _, indicator := range excludeIndicators {
		if strings.Contains(href, indicator) {
			return "", false
		}
	}
	if strings.HasPrefix(href, "/") {
		return strings.TrimSuffix(base, "/") + href, true
	}
	if strings.HasPrefix(href, "http://") || strings.HasPrefix(href, "https://") {
		return href, true
	}
	return "", false
}

func looksLikeArticle(link string) bool {
	for _, indicator := range articleIndicators {
		if strings.Contains(link, indicator) {
			return true
		}
	}
	if datePathRe.MatchString(link) {
		return true
	}
	// Long numeric path parts are usually article IDs.
	for _, part := range strings.Split(link, "/") {
		if len(part) > 4 && isDigits(part) {
			return true
		}
	}
	return false
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return s != ""
}

func extractDomain(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return ""
	}
	return strings.TrimPrefix(strings.ToLower(u.Host), "www.")
}

// scrapeAll fetches article pages with a small worker pool and a polite
// delay between requests.
func (s *Scraper) scrapeAll(ctx context.Context, links []sourcedLink) []news.Article {
	jobs := make(chan sourcedLink)
	results := make(chan news.Article, len(links))

	var wg sync.WaitGroup
	for w := 0; w < s.concurrency; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for link := range jobs {
				article, err := s.scrapeArticle(ctx, link)
				if err != nil {
					logger.Warn("scraper: article skipped", "url", link.url, "error", err)
				} else {
					results <- *article
				}

				select {
				case <-ctx.Done():
					return
				case <-time.After(500 * time.Millisecond):
				}
			}
		}()
	}

	go func() {
		defer close(jobs)
		for _, l := range links {
			select {
			case <-ctx.Done():
				return
			case jobs <- l:
			}
		}
	}()

	wg.Wait()
	close(results)

	var articles []news.Article
	for a := range results {
		articles = append(articles, a)
	}
	return articles
}

func (s *Scraper) scrapeArticle(ctx context.Context, link sourcedLink) (*news.Article, error) {
	doc, err := s.fetchDocument(ctx, link.url)
	if err != nil {
		return nil, err
	}

	content := extractContent(doc)
	if len(content) < 100 {
		return nil, fmt.Errorf("content too short (%d chars)", len(content))
	}

	source := link.source
	if source == "" {
		source = extractDomain(link.url)
	}

	return &news.Article{
		Title:   extractTitle(doc),
		Source:  source,
		URL:     link.url,
		Content: content,
	}, nil
}

func (s *Scraper) fetchDocument(ctx context.Context, pageURL string) (*goquery.Document, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (compatible; grnews/1.0)")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("loading page: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP error: %d", resp.StatusCode)
	}

	return goquery.NewDocumentFromReader(resp.Body)
}

// extractTitle tries common title selectors in order.
func extractTitle(doc *goquery.Document) string {
	selectors := []string{"h1", ".article-title", ".headline", ".entry-title", "title"}

	for _, selector := range selectors {
		title := strings.TrimSpace(doc.Find(selector).First().Text())
		if title != "" {
			return title
		}
	}
	return "Unknown Title"
}

// extractContent is a generic body-text parser: the first selector that
// yields at least three paragraphs wins.
func extractContent(doc *goquery.Document) string {
	selectors := []string{
		"article p",
		".article p",
		".article-body p",
		".content p",
		".post-content p",
		".entry-content p",
		"main p",
		"p",
	}

	var paragraphs []string
	for _, selector := range selectors {
		paragraphs = paragraphs[:0]
		doc.Find(selector).Each(func(i int, sel *goquery.Selection) {
			text := strings.TrimSpace(sel.Text())
			if len(text) > 20 {
				paragraphs = append(paragraphs, text)
			}
		})
		if len(paragraphs) >= 3 {
			break
		}
	}

	return cleanContent(strings.Join(paragraphs, "\n\n"))
}

// cleanContent normalizes whitespace and caps the text at whole paragraphs.
func cleanContent(content string) string {
	lines := strings.Split(content, "\n")
	var paragraphs []string
	for _, line := range lines {
		line = strings.Join(strings.Fields(line), " ")
		if len(line) > 30 {
			paragraphs = append(paragraphs, line)
		}
	}

	result := strings.Join(paragraphs, "\n\n")
	if len(result) <= 1800 {
		return result
	}

	var kept []string
	total := 0
	for _, p := range paragraphs {
		if total+len(p) >= 1600 {
			break
		}
		kept = append(kept, p)
		total += len(p) + 2
	}
	if len(kept) == 0 {
		return result[:1600]
	}
	return strings.Join(kept, "\n\n")
}
