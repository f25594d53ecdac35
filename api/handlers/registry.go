package handlers

import (
	"errors"
	"sync"

	"github.com/local/easystudy/api/services"
	"github.com/local/easystudy/api/session"
)

var ErrSessionNotFound = errors.New("session not found")

// Interview is the state kept alongside an interview session
type Interview struct {
	Profile services.InterviewProfile
	Report  *services.InterviewReport
}

type entry struct {
	session   *session.Session
	interview *Interview
}

// SessionRegistry holds live sessions by id. Every access to a session goes
// through With or WithInterview, which serialize callers.
type SessionRegistry struct {
	mu       sync.Mutex
	sessions map[string]*entry
	guard    *services.Guard
}

func NewSessionRegistry() *SessionRegistry {
	return &SessionRegistry{
		sessions: make(map[string]*entry),
		guard:    services.NewGuard(),
	}
}

// Guard limits generation to one request per session id
func (r *SessionRegistry) Guard() *services.Guard {
	return r.guard
}

func (r *SessionRegistry) Put(id string, s *session.Session) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[id] = &entry{session: s}
}

// PutInterview registers an interview session with the profile it was
// generated for
func (r *SessionRegistry) PutInterview(id string, s *session.Session, profile services.InterviewProfile) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[id] = &entry{session: s, interview: &Interview{Profile: profile}}
}

func (r *SessionRegistry) Exists(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.sessions[id]
	return ok
}

// With runs fn on the session while holding the registry lock
func (r *SessionRegistry) With(id string, fn func(*session.Session) error) error {
	return r.WithInterview(id, func(s *session.Session, _ *Interview) error {
		return fn(s)
	})
}

// WithInterview is With that also passes the interview state, nil for
// exams and quizzes
func (r *SessionRegistry) WithInterview(id string, fn func(*session.Session, *Interview) error) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.sessions[id]
	if !ok {
		return ErrSessionNotFound
	}
	return fn(e.session, e.interview)
}

func (r *SessionRegistry) Delete(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.sessions[id]; !ok {
		return false
	}
	delete(r.sessions, id)
	return true
}

func (r *SessionRegistry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}
