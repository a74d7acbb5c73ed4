package http

import (
	"context"
	"html/template"
	"io/fs"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"ledger/internal/cache"
	applog "ledger/internal/log"
	"ledger/internal/ui"
	appweb "ledger/web"
)

// Page events sent through HX-Trigger and handled by static/app.js.
const (
	EventAlert     = "ledger:alert"
	EventFormReset = "form:reset"
)

var templateFuncs = template.FuncMap{
	"confirmDelete": func() string { return ui.MsgConfirmDelete },
}

// Options tunes the frontend server. Zero values pick the defaults.
type Options struct {
	Logger             *applog.Logger
	SessionTTL         time.Duration
	MaxSessions        int
	RateLimitPerMinute int
	SecureCookies      bool
}

func (o Options) withDefaults() Options {
	if o.Logger == nil {
		o.Logger = applog.Discard()
	}
	if o.SessionTTL <= 0 {
		o.SessionTTL = 30 * time.Minute
	}
	if o.MaxSessions <= 0 {
		o.MaxSessions = 1000
	}
	if o.RateLimitPerMinute <= 0 {
		o.RateLimitPerMinute = 60
	}
	return o
}

// Server is the web frontend: it owns the sessions and renders each
// session's TransactionClient as htmx fragments.
type Server struct {
	http.Server
	templates   *template.Template
	sessions    *sessionStore
	sessionData *cache.LRUCache[*session]
	cacheMgr    *cache.Manager
	limiter     *rateLimiter
	logger      *applog.Logger

	shutdownOnce sync.Once
}

// NewServer configures routes and templates, returning a ready-to-run server
// whose sessions talk to backend.
func NewServer(addr string, backend ui.Backend, opts Options) *Server {
	opts = opts.withDefaults()
	logger := opts.Logger.WithComponent(applog.ComponentHTTP)

	sessions := cache.NewLRUCache[*session](opts.MaxSessions, opts.SessionTTL, cache.WithSlidingExpiration())
	mgr := cache.NewManager(opts.Logger)
	mgr.Register(sessions)
	mgr.StartCleanup(5 * time.Minute)

	s := &Server{
		sessions:    newSessionStore(sessions, backend, opts.Logger, opts.SecureCookies),
		sessionData: sessions,
		cacheMgr:    mgr,
		limiter:     newRateLimiter(opts.RateLimitPerMinute),
		logger:      logger,
	}

	t, err := template.New("pages").Funcs(templateFuncs).ParseFS(appweb.TemplatesFS, "templates/*.html")
	if err != nil {
		logger.Warn("Failed parsing templates", applog.FieldError, err)
	}
	s.templates = t

	mux := http.NewServeMux()
	if sub, err := fs.Sub(appweb.StaticFS, "static"); err == nil {
		static := http.StripPrefix("/static/", http.FileServer(http.FS(sub)))
		mux.Handle("GET /static/", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Cache-Control", "public, max-age=3600")
			static.ServeHTTP(w, r)
		}))
	} else {
		logger.Warn("Failed to mount embedded static FS", applog.FieldError, err)
	}

	mux.HandleFunc("GET /{$}", s.handleIndex)
	mux.HandleFunc("GET /healthz", handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)

	mux.HandleFunc("GET /ui/transactions", s.event(s.handleFilter))
	mux.HandleFunc("POST /ui/transactions", s.event(s.handleAdd))
	mux.HandleFunc("POST /ui/transactions/{id}/edit", s.event(s.handleOpenEdit))
	mux.HandleFunc("POST /ui/transactions/{id}/delete", s.event(s.handleDelete))
	mux.HandleFunc("POST /ui/edit/save", s.event(s.handleSaveEdit))
	mux.HandleFunc("POST /ui/edit/cancel", s.event(s.handleCancelEdit))
	mux.HandleFunc("GET /ui/summary", s.event(s.handleSummary))

	var handler http.Handler = mux
	handler = s.protect(handler)
	handler = applog.AccessLog(handler)
	handler = applog.Middleware(opts.Logger, requestID)(handler)
	handler = withRequestID(handler)

	s.Server = http.Server{
		Addr:    addr,
		Handler: handler,
	}
	return s
}

// Shutdown stops background routines and then the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		s.cacheMgr.Stop()
		s.limiter.stop()
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}

// protect sets security headers and rate limits state-changing requests.
func (s *Server) protect(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		setSecurityHeaders(w.Header())
		if isSuspicious(r) {
			applog.FromContext(r.Context()).WithComponent(applog.ComponentSecurity).
				WarnContext(r.Context(), "Suspicious request", applog.FieldClientIP, extractClientIP(r),
					applog.FieldMethod, r.Method, applog.FieldPath, r.URL.Path)
		}
		if r.Method != http.MethodGet && r.Method != http.MethodHead {
			clientIP := extractClientIP(r)
			if !s.limiter.allow(clientIP) {
				applog.FromContext(r.Context()).WithComponent(applog.ComponentRateLimit).
					WarnContext(r.Context(), "Rate limit exceeded", applog.FieldClientIP, clientIP, applog.FieldPath, r.URL.Path)
				TooManyRequestsError().Write(w)
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}

const requestIDHeader = "X-Request-ID"

// withRequestID assigns a request id unless a well-formed one was sent, and
// echoes it in the response.
func withRequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := strings.TrimSpace(r.Header.Get(requestIDHeader))
		if _, err := uuid.Parse(id); err != nil {
			id = uuid.NewString()
			r.Header.Set(requestIDHeader, id)
		}
		w.Header().Set(requestIDHeader, id)
		next.ServeHTTP(w, r)
	})
}

func requestID(r *http.Request) string {
	return r.Header.Get(requestIDHeader)
}
