package server

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"DomainCheck/config"
	"DomainCheck/domain"
	"DomainCheck/internal/app"
	"DomainCheck/whois"
)

// Server 是薄 HTTP 层：路由、鉴权和 JSON 编解码，
// 业务语义都在 store / cache / checker 里。
type Server struct {
	cfg     config.Config
	store   *domain.Store
	cache   *whois.CachedResolver
	checker *app.ExpiryChecker
}

func New(cfg config.Config, store *domain.Store, cache *whois.CachedResolver, checker *app.ExpiryChecker) *Server {
	return &Server{cfg: cfg, store: store, cache: cache, checker: checker}
}

// Router 装配全部路由。/login、/cron、/api/config 豁免 Cookie 鉴权，
// /api/whois 用 API Key 单独把门。
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Get("/api/config", s.handleConfig)
	r.Get("/cron", s.handleCron)
	r.Post("/cron", s.handleCron)
	r.Get("/login", s.handleLoginPage)
	r.Post("/login", s.handleLoginSubmit)
	r.Get("/api/whois/{domain}", s.handleWhois)

	r.Group(func(r chi.Router) {
		r.Use(s.requireAuth)
		r.Get("/", s.handleDashboard)
		r.Get("/api/domains", s.handleListDomains)
		r.Post("/api/domains", s.handleUpsertDomain)
		r.Put("/api/domains", s.handleReplaceDomains)
		r.Delete("/api/domains", s.handleDeleteDomains)
	})

	return r
}

// HTTPServer 按统一的超时参数包一层 http.Server。
func (s *Server) HTTPServer() *http.Server {
	return &http.Server{
		Addr:              s.cfg.Listen,
		Handler:           s.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
