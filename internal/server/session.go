package server

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/everstacklabs/ereuna/internal/chat"
	"github.com/everstacklabs/ereuna/internal/report"
)

// GenerateRequest is the body of POST /v1/reports.
type GenerateRequest struct {
	Topic        string                     `json:"topic" binding:"required"`
	Keywords     []string                   `json:"keywords"`
	Questions    []string                   `json:"questions"`
	Model        string                     `json:"model"`
	DeepResearch bool                       `json:"deep_research"`
	WordCount    int                        `json:"word_count"`
	Sections     []report.SectionDescriptor `json:"sections"`
}

// Chatter answers questions about a generated report.
type Chatter interface {
	Respond(ctx context.Context, query string) string
	History() []chat.Turn
	Clear()
}

// Workspace holds the per-session collaborators built for one report.
type Workspace struct {
	Generate func(ctx context.Context) *report.Report
	Chat     Chatter
}

// SessionFactory builds a Workspace for a generate request. The server
// calls it once per POST /v1/reports.
type SessionFactory func(req GenerateRequest) (*Workspace, error)

// session is one report plus its chat state, owned by the server.
type session struct {
	mu     sync.Mutex
	id     string
	topic  string
	model  string
	report *report.Report
	chat   Chatter
}

// sessionStore is the in-memory session map.
type sessionStore struct {
	mu       sync.RWMutex
	sessions map[string]*session
}

func newSessionStore() *sessionStore {
	return &sessionStore{sessions: make(map[string]*session)}
}

func (s *sessionStore) add(sess *session) string {
	id := uuid.NewString()
	sess.id = id
	s.mu.Lock()
	s.sessions[id] = sess
	s.mu.Unlock()
	return id
}

func (s *sessionStore) get(id string) (*session, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sess, ok := s.sessions[id]
	return sess, ok
}
