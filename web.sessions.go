package main

import (
	"net/http"
	"time"

	"github.com/patrickmn/go-cache"
	"go.uber.org/zap"
)

// Sessions keeps one BookListView per browser, keyed by a cookie. Views
// idle for longer than the configured ttl are evicted and torn down.
type Sessions struct {
	logger *zap.Logger
	ids    UIDHandler
	api    BooksAPI
	cookie string
	ttl    time.Duration
	views  *cache.Cache
}

// NewSessions provides an empty session registry.
func NewSessions(logger *zap.Logger, config *SessionConfig, ids UIDHandler, api BooksAPI) *Sessions {
	views := cache.New(config.TTL, config.CleanupInterval)
	views.OnEvicted(func(id string, v interface{}) {
		if view, ok := v.(*BookListView); ok {
			view.Close()
			logger.Debug("session evicted", zap.String("session.id", id))
		}
	})
	return &Sessions{
		logger: logger,
		ids:    ids,
		api:    api,
		cookie: config.CookieName,
		ttl:    config.TTL,
		views:  views,
	}
}

// Acquire returns the view of the session carried by r. When there is
// none a new view is created, the cookie is set on w and created is true.
// Every call pushes the session expiry further.
func (s *Sessions) Acquire(w http.ResponseWriter, r *http.Request) (view *BookListView, created bool) {
	if c, err := r.Cookie(s.cookie); err == nil && s.ids.IsValid(c.Value, SessionIDPrefix) {
		if v, found := s.views.Get(c.Value); found {
			view = v.(*BookListView)
			s.views.SetDefault(c.Value, view)
			return view, false
		}
	}

	id := s.ids.Generate(SessionIDPrefix)
	view = NewBookListView(s.logger.With(zap.String("session.id", id)), s.api)
	s.views.SetDefault(id, view)
	http.SetCookie(w, &http.Cookie{
		Name:     s.cookie,
		Value:    id,
		Path:     "/",
		MaxAge:   int(s.ttl.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	s.logger.Debug("session created", zap.String("session.id", id))
	return view, true
}

// Count returns the number of live sessions.
func (s *Sessions) Count() int {
	return s.views.ItemCount()
}

// Close tears every view down and empties the registry.
func (s *Sessions) Close() {
	for id := range s.views.Items() {
		s.views.Delete(id)
	}
}
