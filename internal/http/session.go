package http

import (
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"

	"ledger/internal/cache"
	applog "ledger/internal/log"
	"ledger/internal/ui"
)

const sessionCookie = "ledger_session"

// session pairs one browser page with its TransactionClient. mu serializes
// events on the page, so the client only ever sees one at a time.
type session struct {
	mu     sync.Mutex
	id     string
	page   *pageView
	client *ui.TransactionClient
}

// sessionStore keeps sessions in an LRU cache with sliding expiry.
type sessionStore struct {
	mu      sync.Mutex
	cache   cache.Cache[*session]
	backend ui.Backend
	logger  *applog.Logger
	secure  bool
}

func newSessionStore(c cache.Cache[*session], backend ui.Backend, logger *applog.Logger, secure bool) *sessionStore {
	return &sessionStore{
		cache:   c,
		backend: backend,
		logger:  logger,
		secure:  secure,
	}
}

// acquire returns the request's session, creating it (and setting the
// cookie) when the request has none or it has expired.
func (s *sessionStore) acquire(w http.ResponseWriter, r *http.Request) *session {
	s.mu.Lock()
	defer s.mu.Unlock()

	if c, err := r.Cookie(sessionCookie); err == nil {
		if sess, ok := s.cache.Get(c.Value); ok {
			return sess
		}
	}

	page := newPageView()
	sess := &session{
		id:   uuid.NewString(),
		page: page,
	}
	sess.client = ui.New(s.backend, page, ui.WithLogger(
		s.logger.WithComponent(applog.ComponentClient).With(applog.FieldSessionID, sess.id),
	))
	s.cache.Set(sess.id, sess)

	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    sess.id,
		Path:     "/",
		HttpOnly: true,
		Secure:   s.secure,
		SameSite: http.SameSiteLaxMode,
		Expires:  time.Now().Add(24 * time.Hour),
	})
	s.logger.DebugContext(r.Context(), "Session created", applog.FieldSessionID, sess.id)
	return sess
}
