package conversation

import (
	"slices"
	"time"
)

// Action is a state transition understood by Reduce.
type Action interface {
	isAction()
}

// CreateChat inserts an empty conversation at the head and selects it.
type CreateChat struct {
	ID string
	At time.Time
}

// SelectChat sets the selection. The id is not validated.
type SelectChat struct {
	ID string
}

// DeleteChat removes a conversation and clears the selection if it was active.
type DeleteChat struct {
	ID string
}

// ClearSelection deselects without touching any conversation.
type ClearSelection struct{}

// AppendMessage appends Message to ConversationID, or to the selected
// conversation when ConversationID is empty.
type AppendMessage struct {
	ConversationID string
	Message        Message
}

func (CreateChat) isAction()     {}
func (SelectChat) isAction()     {}
func (DeleteChat) isAction()     {}
func (ClearSelection) isAction() {}
func (AppendMessage) isAction()  {}

// Reduce returns the state produced by applying a to s. It never mutates s;
// slices that change are copied, unchanged ones are shared.
func Reduce(s State, a Action) State {
	switch a := a.(type) {
	case CreateChat:
		if a.ID == "" || s.index(a.ID) >= 0 {
			return s
		}
		c := Conversation{
			ID:         a.ID,
			Title:      DefaultTitle,
			Messages:   []Message{},
			LastUpdate: a.At,
		}
		convs := make([]Conversation, 0, len(s.Conversations)+1)
		convs = append(convs, c)
		convs = append(convs, s.Conversations...)
		return State{Conversations: convs, CurrentID: c.ID}

	case SelectChat:
		s.CurrentID = a.ID
		return s

	case DeleteChat:
		i := s.index(a.ID)
		if i < 0 {
			return s
		}
		convs := slices.Delete(slices.Clone(s.Conversations), i, i+1)
		cur := s.CurrentID
		if cur == a.ID {
			cur = ""
		}
		return State{Conversations: convs, CurrentID: cur}

	case ClearSelection:
		s.CurrentID = ""
		return s

	case AppendMessage:
		target := a.ConversationID
		if target == "" {
			target = s.CurrentID
		}
		i := s.index(target)
		if i < 0 {
			return s
		}
		convs := slices.Clone(s.Conversations)
		c := convs[i]
		msgs := make([]Message, 0, len(c.Messages)+1)
		msgs = append(msgs, c.Messages...)
		c.Messages = append(msgs, a.Message)
		convs[i] = c
		return State{Conversations: convs, CurrentID: s.CurrentID}
	}
	return s
}
