package server

import (
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"

	"fact_check_news/page"
)

const (
	sessionCookie = "fc_session"
	sessionIdle   = 24 * time.Hour
)

type session struct {
	ctrl     *page.Controller
	lastSeen time.Time
}

// sessionStore maps browser sessions to their page controllers.
type sessionStore struct {
	mu       sync.Mutex
	sessions map[string]*session
	now      func() time.Time
}

func newStore() *sessionStore {
	return &sessionStore{sessions: make(map[string]*session), now: time.Now}
}

func (s *sessionStore) get(id string) (*page.Controller, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[id]
	if !ok {
		return nil, false
	}
	sess.lastSeen = s.now()
	return sess.ctrl, true
}

func (s *sessionStore) add(id string, ctrl *page.Controller) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	for k, sess := range s.sessions {
		if now.Sub(sess.lastSeen) > sessionIdle && sess.ctrl.Phase() == page.Idle {
			delete(s.sessions, k)
		}
	}
	s.sessions[id] = &session{ctrl: ctrl, lastSeen: now}
}

func (s *sessionStore) len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// controllerFor returns the caller's controller, creating a session and
// setting its cookie when the request carries none.
func (s *Server) controllerFor(w http.ResponseWriter, r *http.Request) (*page.Controller, error) {
	if c, err := r.Cookie(sessionCookie); err == nil {
		if ctrl, ok := s.sessions.get(c.Value); ok {
			return ctrl, nil
		}
	}
	ctrl, err := page.NewController(s.backend)
	if err != nil {
		return nil, err
	}
	id := uuid.NewString()
	s.sessions.add(id, ctrl)
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    id,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	s.infof("new page session %s", id)
	return ctrl, nil
}
