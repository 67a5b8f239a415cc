package app

import (
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"docqa/internal/chunker"
)

// State is the processing state of a session's document.
type State string

const (
	StateIdle       State = "idle"
	StateExtracting State = "extracting"
	StateOCR        State = "ocr"
	StateChunking   State = "chunking"
	StateStoring    State = "storing"
	StateReady      State = "ready"
	StateFailed     State = "failed"
)

// Route tells how a question was answered.
type Route string

const (
	RouteNone      Route = "none"
	RouteShortcut  Route = "shortcut"
	RouteRetrieval Route = "retrieval"
)

// Document is a processed input file.
type Document struct {
	Path       string
	Filename   string
	Text       string
	Chunks     []chunker.Chunk
	Title      string // "" when not derived
	FirstLine  string // "" when not derived
	Collection string
	OCRUsed    bool
	Indexed    bool
}

type Exchange struct {
	Question string    `json:"question"`
	Answer   string    `json:"answer"`
	Route    Route     `json:"route"`
	At       time.Time `json:"at"`
}

// Session holds the per-user state: the current document and the
// conversation. It is safe for concurrent use.
type Session struct {
	ID      string
	Created time.Time

	mu      sync.Mutex
	state   State
	doc     *Document
	history []Exchange
}

func NewSession() *Session {
	return &Session{
		ID:      uuid.NewString(),
		Created: time.Now(),
		state:   StateIdle,
	}
}

func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Document returns the current document or nil.
func (s *Session) Document() *Document {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.doc
}

// History returns a copy of the conversation so far.
func (s *Session) History() []Exchange {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.history)
}

func (s *Session) ClearHistory() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.history = nil
}

func (s *Session) setState(st State) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = st
}

func (s *Session) setDocument(doc *Document) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.doc = doc
	s.state = StateReady
}

func (s *Session) record(question, answer string, route Route) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.history = append(s.history, Exchange{Question: question, Answer: answer, Route: route, At: time.Now()})
}

// Sessions is a concurrent registry of sessions keyed by ID.
type Sessions struct {
	mu       sync.RWMutex
	sessions map[string]*Session
}

func NewSessions() *Sessions {
	return &Sessions{sessions: make(map[string]*Session)}
}

func (r *Sessions) Create() *Session {
	s := NewSession()
	r.mu.Lock()
	r.sessions[s.ID] = s
	r.mu.Unlock()
	return s
}

func (r *Sessions) Get(id string) (*Session, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.sessions[id]
	return s, ok
}

func (r *Sessions) Delete(id string) {
	r.mu.Lock()
	delete(r.sessions, id)
	r.mu.Unlock()
}

func (r *Sessions) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}
