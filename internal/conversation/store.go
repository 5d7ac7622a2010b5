package conversation

import (
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/suPer8Hu/bundle-chat/internal/common"
)

// Container is the conversation state consumed by the UI and the dispatcher.
// None of its operations fail.
type Container interface {
	CreateNewChat() Conversation
	SelectChat(id string)
	DeleteChat(id string)
	ClearSelection()
	AddMessage(role Role, content string)
	AddMessageTo(conversationID string, role Role, content string) bool
	CurrentChat() *Conversation
	CurrentID() string
	Conversations() []Conversation
	Snapshot() State
}

type IDGenerator func() string

var fallbackSeq atomic.Uint64

// ULIDGenerator is the default IDGenerator.
func ULIDGenerator() IDGenerator {
	return func() string {
		id, err := common.NewULID()
		if err != nil {
			return strconv.FormatInt(time.Now().UnixNano(), 10) + "-" + strconv.FormatUint(fallbackSeq.Add(1), 10)
		}
		return id
	}
}

type Option func(*Store)

func WithIDGenerator(g IDGenerator) Option {
	return func(s *Store) { s.newID = g }
}

func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// Store holds State and applies every change through Reduce.
type Store struct {
	mu    sync.RWMutex
	state State
	newID IDGenerator
	now   func() time.Time
}

var _ Container = (*Store)(nil)

func NewStore(opts ...Option) *Store {
	s := &Store{
		newID: ULIDGenerator(),
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Dispatch applies a and returns the resulting state.
func (s *Store) Dispatch(a Action) State {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = Reduce(s.state, a)
	return s.state.Clone()
}

func (s *Store) CreateNewChat() Conversation {
	id, at := s.newID(), s.now()

	s.mu.Lock()
	defer s.mu.Unlock()
	// ids must stay unique even if the generator repeats itself
	for n, base := 1, id; id == "" || s.state.index(id) >= 0; n++ {
		id = base + "-" + strconv.Itoa(n)
	}
	s.state = Reduce(s.state, CreateChat{ID: id, At: at})
	return s.state.Conversations[0].clone()
}

func (s *Store) SelectChat(id string) {
	s.Dispatch(SelectChat{ID: id})
}

func (s *Store) DeleteChat(id string) {
	s.Dispatch(DeleteChat{ID: id})
}

func (s *Store) ClearSelection() {
	s.Dispatch(ClearSelection{})
}

func (s *Store) AddMessage(role Role, content string) {
	s.Dispatch(AppendMessage{Message: s.message(role, content)})
}

// AddMessageTo appends to a specific conversation regardless of the current
// selection. It reports false when the conversation does not exist.
func (s *Store) AddMessageTo(conversationID string, role Role, content string) bool {
	if conversationID == "" {
		return false
	}
	m := s.message(role, content)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state.index(conversationID) < 0 {
		return false
	}
	s.state = Reduce(s.state, AppendMessage{ConversationID: conversationID, Message: m})
	return true
}

func (s *Store) message(role Role, content string) Message {
	return Message{ID: s.newID(), Content: content, Role: role}
}

func (s *Store) CurrentChat() *Conversation {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.Current()
}

func (s *Store) CurrentID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.CurrentID
}

func (s *Store) Conversations() []Conversation {
	return s.Snapshot().Conversations
}

func (s *Store) Snapshot() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.Clone()
}
