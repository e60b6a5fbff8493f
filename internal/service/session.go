package service

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"ppiviz/internal/domain"
)

// Session is the state of one researcher's exploration. Fields are guarded by
// the session lock; callers outside this package only see snapshots.
type Session struct {
	ID string

	mu         sync.Mutex
	genes      []string
	ids        []domain.Identifier
	graph      *domain.InteractionGraph
	layout     *domain.Layout
	algorithm  domain.LayoutAlgorithm
	method     domain.AnalysisMethod
	annotation *domain.Annotation
	links      domain.Links
	status     domain.ViewStatus
	message    string
	createdAt  time.Time
	touchedAt  time.Time
}

func newSession(algorithm domain.LayoutAlgorithm, now time.Time) *Session {
	return &Session{
		ID:        uuid.NewString(),
		algorithm: algorithm,
		method:    domain.MethodNone,
		status:    domain.StatusEmpty,
		createdAt: now,
		touchedAt: now,
	}
}

// reset clears everything derived from a selection
func (s *Session) reset() {
	s.genes = nil
	s.ids = nil
	s.graph = nil
	s.layout = nil
	s.method = domain.MethodNone
	s.annotation = nil
	s.links = domain.Links{}
	s.status = domain.StatusEmpty
	s.message = ""
}

// SessionInfo is a read-only summary of a session
type SessionInfo struct {
	ID        string                 `json:"id"`
	Genes     []string               `json:"genes"`
	Status    domain.ViewStatus      `json:"status"`
	Method    domain.AnalysisMethod  `json:"method"`
	Layout    domain.LayoutAlgorithm `json:"layout"`
	Nodes     int                    `json:"nodes"`
	Edges     int                    `json:"edges"`
	CreatedAt time.Time              `json:"created_at"`
	TouchedAt time.Time              `json:"touched_at"`
}

func (s *Session) info() SessionInfo {
	info := SessionInfo{
		ID:        s.ID,
		Genes:     s.genes,
		Status:    s.status,
		Method:    s.method,
		Layout:    s.algorithm,
		CreatedAt: s.createdAt,
		TouchedAt: s.touchedAt,
	}
	if s.graph != nil {
		info.Nodes = s.graph.NodeCount()
		info.Edges = s.graph.EdgeCount()
	}
	return info
}

// SessionObserver is told when sessions come and go
type SessionObserver interface {
	SessionOpened()
	SessionClosed()
}

// SessionStore holds live sessions by id
type SessionStore struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	observer SessionObserver
	now      func() time.Time
}

// NewSessionStore creates an empty store
func NewSessionStore() *SessionStore {
	return &SessionStore{
		sessions: make(map[string]*Session),
		now:      time.Now,
	}
}

// WithObserver attaches a session observer
func (st *SessionStore) WithObserver(o SessionObserver) *SessionStore {
	st.observer = o
	return st
}

// Create opens a new session with the given default layout
func (st *SessionStore) Create(algorithm domain.LayoutAlgorithm) *Session {
	s := newSession(algorithm, st.now())
	st.mu.Lock()
	st.sessions[s.ID] = s
	st.mu.Unlock()
	if st.observer != nil {
		st.observer.SessionOpened()
	}
	return s
}

// Get returns a session or ErrSessionNotFound
func (st *SessionStore) Get(id string) (*Session, error) {
	st.mu.RLock()
	s, ok := st.sessions[id]
	st.mu.RUnlock()
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	return s, nil
}

// Delete removes a session
func (st *SessionStore) Delete(id string) error {
	st.mu.Lock()
	_, ok := st.sessions[id]
	delete(st.sessions, id)
	st.mu.Unlock()
	if !ok {
		return domain.ErrSessionNotFound
	}
	if st.observer != nil {
		st.observer.SessionClosed()
	}
	return nil
}

// Len returns the number of live sessions
func (st *SessionStore) Len() int {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return len(st.sessions)
}

// Sweep removes sessions idle for longer than maxIdle and returns their ids
func (st *SessionStore) Sweep(maxIdle time.Duration) []string {
	cutoff := st.now().Add(-maxIdle)

	st.mu.RLock()
	candidates := make([]*Session, 0)
	for _, s := range st.sessions {
		candidates = append(candidates, s)
	}
	st.mu.RUnlock()

	var expired []string
	for _, s := range candidates {
		s.mu.Lock()
		idle := s.touchedAt.Before(cutoff)
		s.mu.Unlock()
		if idle && st.Delete(s.ID) == nil {
			expired = append(expired, s.ID)
		}
	}
	return expired
}
