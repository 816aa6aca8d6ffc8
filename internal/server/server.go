package server

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"grnews/internal/cache"
	"grnews/internal/logger"
	"grnews/internal/metrics"
	"grnews/internal/news"
	"grnews/internal/rss"
	"grnews/internal/summary"
)

// Fetcher produces the article batch for a digest run.
type Fetcher interface {
	Collect(ctx context.Context, sources []rss.Source) []news.Article
}

// Digester turns an article batch into a displayable digest. It never
// fails; degraded results carry their reason inside.
type Digester interface {
	Summarize(ctx context.Context, articles []news.Article) *summary.Result
}

// Mailer delivers a digest to a recipient.
type Mailer interface {
	Send(ctx context.Context, recipient string, result *summary.Result) error
}

type Server struct {
	sources  []rss.Source
	fetcher  Fetcher
	digester Digester
	mailer   Mailer
	store    *cache.ArticleStore
}

func New(sources []rss.Source, fetcher Fetcher, digester Digester, mailer Mailer, store *cache.ArticleStore) *Server {
	return &Server{
		sources:  sources,
		fetcher:  fetcher,
		digester: digester,
		mailer:   mailer,
		store:    store,
	}
}

func (s *Server) Router() *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/api/digest", s.handleDigest).Methods(http.MethodPost)
	r.HandleFunc("/healthz", s.handleHealth).Methods(http.MethodGet)
	r.HandleFunc("/metrics", s.handleMetrics).Methods(http.MethodGet)
	return r
}

type digestRequest struct {
	Email string `json:"email"`
}

type digestResponse struct {
	*summary.Result
	EmailSent  bool   `json:"email_sent,omitempty"`
	EmailError string `json:"email_error,omitempty"`
}

// handleDigest runs the full fetch+summarize pipeline. It always answers
// 200 with a populated digest; failures surface inside the result, never
// as a hard error.
func (s *Server) handleDigest(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	var req digestRequest
	if r.Body != nil {
		// An empty or invalid body simply means "no email delivery".
		_ = json.NewDecoder(r.Body).Decode(&req)
	}
	if req.Email == "" {
		req.Email = r.FormValue("email")
	}

	articles := s.articles(r.Context())
	result := s.digester.Summarize(r.Context(), articles)

	resp := digestResponse{Result: result}
	if req.Email != "" && s.mailer != nil {
		if err := s.mailer.Send(r.Context(), req.Email, result); err != nil {
			logger.Error("server: email delivery failed", "error", err)
			resp.EmailError = err.Error()
		} else {
			resp.EmailSent = true
		}
	}

	metrics.Global.IncrementDigestsGenerated()
	metrics.Global.RecordProcessingTime(time.Since(start))
	if len(articles) == 0 {
		// Nothing fetched means every source failed; flag it for /healthz.
		metrics.Global.SetError("article fetch returned no articles")
	} else {
		metrics.Global.SetLastRun()
	}

	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) articles(ctx context.Context) []news.Article {
	if s.store != nil {
		if cached, ok := s.store.Get(); ok {
			logger.Debug("server: using cached article batch", "count", len(cached))
			return cached
		}
	}

	articles := s.fetcher.Collect(ctx, s.sources)
	if s.store != nil && len(articles) > 0 {
		s.store.Put(articles)
	}
	return articles
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	stats := metrics.Global.GetStats()

	status := "ok"
	code := http.StatusOK
	if !stats["is_healthy"].(bool) {
		status = "error"
		code = http.StatusServiceUnavailable
	}

	writeJSON(w, code, map[string]interface{}{
		"status":     status,
		"last_run":   stats["last_run_time"],
		"last_error": stats["last_error"],
	})
}

func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, metrics.Global.GetStats())
}

func writeJSON(w http.ResponseWriter, code int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		logger.Error("server: writing response failed", "error", err)
	}
}
