package triage

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
)

var ErrSessionNotFound = errors.New("session not found")

const (
	DefaultMaxSessions = 1000
	DefaultSessionTTL  = 30 * time.Minute
)

type entry struct {
	session  *Session
	lastSeen time.Time
}

// Store keeps chat sessions in memory for the life of the process. Each
// session is guarded by the store lock so concurrent requests for the same
// conversation are applied one at a time. Sessions idle for longer than the
// TTL are dropped, and when the store is full the least recently used
// session makes room for a new one.
type Store struct {
	mu          sync.Mutex
	assistant   *Assistant
	sessions    map[string]*entry
	maxSessions int
	ttl         time.Duration
	now         func() time.Time
}

type StoreOption func(*Store)

func WithMaxSessions(n int) StoreOption {
	return func(s *Store) {
		if n > 0 {
			s.maxSessions = n
		}
	}
}

func WithSessionTTL(ttl time.Duration) StoreOption {
	return func(s *Store) {
		if ttl > 0 {
			s.ttl = ttl
		}
	}
}

func WithStoreClock(now func() time.Time) StoreOption {
	return func(s *Store) { s.now = now }
}

func NewStore(assistant *Assistant, opts ...StoreOption) *Store {
	s := &Store{
		assistant:   assistant,
		sessions:    map[string]*entry{},
		maxSessions: DefaultMaxSessions,
		ttl:         DefaultSessionTTL,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Store) Create() Session {
	session := s.assistant.Start(uuid.NewString())

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	s.sweepLocked(now)
	if len(s.sessions) >= s.maxSessions {
		s.evictOldestLocked()
	}
	s.sessions[session.ID] = &entry{session: session, lastSeen: now}
	return cloneSession(session)
}

func (s *Store) Get(id string) (Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, err := s.touchLocked(id)
	if err != nil {
		return Session{}, err
	}
	return cloneSession(e.session), nil
}

// Send applies one user turn and returns the bot reply with the updated
// session.
func (s *Store) Send(id, content string) (Message, Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, err := s.touchLocked(id)
	if err != nil {
		return Message{}, Session{}, err
	}
	reply := s.assistant.Reply(e.session, content)
	return reply, cloneSession(e.session), nil
}

func (s *Store) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.sessions[id]; !ok {
		return ErrSessionNotFound
	}
	delete(s.sessions, id)
	return nil
}

func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// Sweep drops every session idle past the TTL and reports how many went.
func (s *Store) Sweep() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sweepLocked(s.now())
}

// touchLocked returns a live session and refreshes its idle clock. An expired
// session is removed and reported as not found.
func (s *Store) touchLocked(id string) (*entry, error) {
	e, ok := s.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	now := s.now()
	if now.Sub(e.lastSeen) > s.ttl {
		delete(s.sessions, id)
		return nil, ErrSessionNotFound
	}
	e.lastSeen = now
	return e, nil
}

func (s *Store) sweepLocked(now time.Time) int {
	removed := 0
	for id, e := range s.sessions {
		if now.Sub(e.lastSeen) > s.ttl {
			delete(s.sessions, id)
			removed++
		}
	}
	return removed
}

func (s *Store) evictOldestLocked() {
	var (
		oldestID string
		oldest   time.Time
	)
	for id, e := range s.sessions {
		if oldestID == "" || e.lastSeen.Before(oldest) {
			oldestID, oldest = id, e.lastSeen
		}
	}
	if oldestID != "" {
		delete(s.sessions, oldestID)
	}
}

func cloneSession(s *Session) Session {
	out := *s
	out.Symptoms = append([]Symptom(nil), s.Symptoms...)
	out.Messages = append([]Message(nil), s.Messages...)
	return out
}
