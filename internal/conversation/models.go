package conversation

import (
	"slices"
	"time"
)

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// DefaultTitle is the title every conversation starts with. Conversations are
// never renamed.
const DefaultTitle = "New chat"

type Message struct {
	ID      string `json:"id"`
	Content string `json:"content"`
	Role    Role   `json:"role"`
}

type Conversation struct {
	ID       string    `json:"id"`
	Title    string    `json:"title"`
	Messages []Message `json:"messages"`
	// LastUpdate is set when the conversation is created and is not touched
	// when messages are appended.
	LastUpdate time.Time `json:"last_update"`
}

func (c Conversation) clone() Conversation {
	c.Messages = slices.Clone(c.Messages)
	return c
}

// State is the whole client session: conversations newest first plus the
// selected conversation id ("" when nothing is selected).
type State struct {
	Conversations []Conversation `json:"conversations"`
	CurrentID     string         `json:"current_id,omitempty"`
}

func (s State) index(id string) int {
	if id == "" {
		return -1
	}
	return slices.IndexFunc(s.Conversations, func(c Conversation) bool { return c.ID == id })
}

// Current returns a copy of the selected conversation, or nil when nothing is
// selected or the selection no longer matches any conversation.
func (s State) Current() *Conversation {
	i := s.index(s.CurrentID)
	if i < 0 {
		return nil
	}
	c := s.Conversations[i].clone()
	return &c
}

// Clone returns a deep copy that shares no slices with s.
func (s State) Clone() State {
	out := State{CurrentID: s.CurrentID}
	if s.Conversations != nil {
		out.Conversations = make([]Conversation, len(s.Conversations))
		for i, c := range s.Conversations {
			out.Conversations[i] = c.clone()
		}
	}
	return out
}
