package cache

import (
	"sync"
	"time"

	"grnews/internal/news"
)

// ArticleStore holds the most recently fetched article batch so repeated
// digest requests within the TTL do not re-scrape the news sites.
type ArticleStore struct {
	mu        sync.RWMutex
	articles  []news.Article
	fetchedAt time.Time
	ttl       time.Duration
}

func NewArticleStore(ttl time.Duration) *ArticleStore {
	return &ArticleStore{ttl: ttl}
}

// Get returns the cached batch if it is still fresh.
func (s *ArticleStore) Get() ([]news.Article, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.articles == nil || time.Since(s.fetchedAt) > s.ttl {
		return nil, false
	}
	return s.articles, true
}

// Put replaces the cached batch.
func (s *ArticleStore) Put(articles []news.Article) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.articles = articles
	s.fetchedAt = time.Now()
}
