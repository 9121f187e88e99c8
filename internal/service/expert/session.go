package expert

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"monotributo-backend/internal/storage"
)

// Facts is the mutable state of one questionnaire walk. It is mutated
// exclusively by rule post-actions while the session mutex is held.
type Facts struct {
	Activity        storage.Activity
	CurrentCategory string
	FinalCategory   string
	// MaxCategory caps the income-based assignment when an earlier
	// answer already excluded the top brackets.
	MaxCategory   string
	ExceedsParams bool
	Answers       map[string]AnswerEvent
	AppliedRules  []AppliedRule
	Result        *FinalResult
	Err           string
}

// Session is one in-memory questionnaire walk. The mutex serializes
// concurrent answers for the same session id; different sessions never
// share mutable state.
type Session struct {
	ID       string
	mu       sync.Mutex
	lastSeen time.Time
	facts    Facts
}

func newSession() *Session {
	return &Session{
		ID:       uuid.NewString(),
		lastSeen: time.Now(),
		facts: Facts{
			Answers: make(map[string]AnswerEvent),
		},
	}
}

// Store keeps sessions in memory with TTL eviction. Sessions live only
// for the process lifetime.
type Store struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	ttl      time.Duration
	done     chan struct{}
	once     sync.Once
}

// NewStore creates a session store and starts its eviction loop.
func NewStore(ttl time.Duration) *Store {
	s := &Store{
		sessions: make(map[string]*Session),
		ttl:      ttl,
		done:     make(chan struct{}),
	}
	go s.janitor()
	return s
}

func (s *Store) janitor() {
	interval := s.ttl / 2
	if interval < time.Minute {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			s.evictStale(time.Now())
		case <-s.done:
			return
		}
	}
}

func (s *Store) evictStale(now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, sess := range s.sessions {
		if now.Sub(sess.lastSeen) > s.ttl {
			delete(s.sessions, id)
		}
	}
}

// Create registers a fresh session.
func (s *Store) Create() *Session {
	sess := newSession()
	s.mu.Lock()
	s.sessions[sess.ID] = sess
	s.mu.Unlock()
	return sess
}

// Get returns a session and refreshes its eviction deadline.
func (s *Store) Get(id string) (*Session, bool) {
	s.mu.RLock()
	sess, ok := s.sessions[id]
	s.mu.RUnlock()
	if ok {
		sess.mu.Lock()
		sess.lastSeen = time.Now()
		sess.mu.Unlock()
	}
	return sess, ok
}

func (s *Store) Delete(id string) {
	s.mu.Lock()
	delete(s.sessions, id)
	s.mu.Unlock()
}

// Len reports the number of live sessions.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// Close stops the eviction loop.
func (s *Store) Close() {
	s.once.Do(func() { close(s.done) })
}
