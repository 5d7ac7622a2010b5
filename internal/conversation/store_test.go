package conversation

import (
	"fmt"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

func seqIDs() IDGenerator {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("id-%03d", n)
	}
}

func TestCreateNewChat_FromEmpty(t *testing.T) {
	s := NewStore()

	c := s.CreateNewChat()

	convs := s.Conversations()
	if len(convs) != 1 {
		t.Fatalf("expected 1 conversation, got %d", len(convs))
	}
	if convs[0].Title != "New chat" {
		t.Fatalf("unexpected title %q", convs[0].Title)
	}
	if len(convs[0].Messages) != 0 {
		t.Fatalf("expected empty messages, got %d", len(convs[0].Messages))
	}
	if s.CurrentID() != c.ID {
		t.Fatalf("expected new conversation selected, got %q", s.CurrentID())
	}
	if cur := s.CurrentChat(); cur == nil || cur.ID != c.ID {
		t.Fatalf("unexpected current chat: %+v", cur)
	}
}

func TestCreateNewChat_UniqueAndNewestFirst(t *testing.T) {
	s := NewStore()

	var created []string
	for i := 0; i < 200; i++ {
		created = append(created, s.CreateNewChat().ID)
	}

	convs := s.Conversations()
	if len(convs) != len(created) {
		t.Fatalf("expected %d conversations, got %d", len(created), len(convs))
	}
	seen := map[string]bool{}
	for i, c := range convs {
		if seen[c.ID] {
			t.Fatalf("duplicate id %q", c.ID)
		}
		seen[c.ID] = true
		if c.ID != created[len(created)-1-i] {
			t.Fatalf("position %d: expected %q, got %q", i, created[len(created)-1-i], c.ID)
		}
		if i > 0 && !(convs[i-1].ID > c.ID) {
			t.Fatalf("ids not in recency order: %q before %q", convs[i-1].ID, c.ID)
		}
		if i > 0 && convs[i-1].LastUpdate.Before(c.LastUpdate) {
			t.Fatalf("timestamps not in recency order at %d", i)
		}
	}
}

func TestCreateNewChat_RepeatingGeneratorStillUnique(t *testing.T) {
	s := NewStore(WithIDGenerator(func() string { return "same" }))

	a := s.CreateNewChat()
	b := s.CreateNewChat()

	if a.ID == b.ID {
		t.Fatalf("expected unique ids, both %q", a.ID)
	}
	if len(s.Conversations()) != 2 {
		t.Fatalf("expected 2 conversations")
	}
}

func TestDeleteChat_UnknownLeavesStateUnchanged(t *testing.T) {
	s := NewStore(WithIDGenerator(seqIDs()))
	s.CreateNewChat()
	s.AddMessage(RoleUser, "hello")
	before := s.Snapshot()

	s.DeleteChat("nope")

	if diff := cmp.Diff(before, s.Snapshot()); diff != "" {
		t.Fatalf("state changed (-want +got):\n%s", diff)
	}
}

func TestDeleteChat_CurrentClearsSelection(t *testing.T) {
	s := NewStore()
	s.CreateNewChat()
	c := s.CreateNewChat()

	s.DeleteChat(c.ID)

	if s.CurrentID() != "" {
		t.Fatalf("expected no selection, got %q", s.CurrentID())
	}
	if s.CurrentChat() != nil {
		t.Fatalf("expected nil current chat")
	}
}

func TestDeleteChat_NonActiveKeepsSelection(t *testing.T) {
	s := NewStore(WithIDGenerator(seqIDs()))
	other := s.CreateNewChat()
	active := s.CreateNewChat()
	s.AddMessage(RoleUser, "keep me")
	before := s.CurrentChat()

	s.DeleteChat(other.ID)

	if s.CurrentID() != active.ID {
		t.Fatalf("selection changed to %q", s.CurrentID())
	}
	if diff := cmp.Diff(before, s.CurrentChat()); diff != "" {
		t.Fatalf("active conversation changed (-want +got):\n%s", diff)
	}
}

func TestAddMessage_NoSelectionNeverMutates(t *testing.T) {
	s := NewStore(WithIDGenerator(seqIDs()))
	s.CreateNewChat()
	s.CreateNewChat()
	s.ClearSelection()
	before := s.Snapshot()

	s.AddMessage(RoleUser, "lost")
	s.AddMessage(RoleAssistant, "also lost")

	if diff := cmp.Diff(before, s.Snapshot()); diff != "" {
		t.Fatalf("state changed (-want +got):\n%s", diff)
	}
}

func TestAddMessage_AppendsInOrder(t *testing.T) {
	s := NewStore()
	s.CreateNewChat()

	s.AddMessage(RoleUser, "hello")
	s.AddMessage(RoleAssistant, "hi")

	want := []Message{
		{Role: RoleUser, Content: "hello"},
		{Role: RoleAssistant, Content: "hi"},
	}
	got := s.CurrentChat().Messages
	if diff := cmp.Diff(want, got, cmpopts.IgnoreFields(Message{}, "ID")); diff != "" {
		t.Fatalf("unexpected messages (-want +got):\n%s", diff)
	}
}

func TestSelectChat_StaleID(t *testing.T) {
	s := NewStore()
	s.CreateNewChat()

	s.SelectChat("stale")

	if s.CurrentID() != "stale" {
		t.Fatalf("selection should not be validated, got %q", s.CurrentID())
	}
	if s.CurrentChat() != nil {
		t.Fatalf("expected nil current chat for stale id")
	}
}

func TestAddMessageTo_MissingConversation(t *testing.T) {
	s := NewStore()
	if s.AddMessageTo("missing", RoleAssistant, "x") {
		t.Fatalf("expected false for missing conversation")
	}
	if s.AddMessageTo("", RoleAssistant, "x") {
		t.Fatalf("expected false for empty id")
	}
}

func TestSnapshot_IsDetached(t *testing.T) {
	s := NewStore()
	s.CreateNewChat()
	s.AddMessage(RoleUser, "a")

	snap := s.Snapshot()
	snap.Conversations[0].Messages[0].Content = "changed"
	snap.Conversations[0].Title = "changed"

	cur := s.CurrentChat()
	if cur.Messages[0].Content != "a" || cur.Title != DefaultTitle {
		t.Fatalf("snapshot shares memory with the store")
	}
}

func TestWithClock(t *testing.T) {
	at := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
	s := NewStore(WithClock(func() time.Time { return at }))

	c := s.CreateNewChat()
	s.AddMessage(RoleUser, "hi")

	if !s.CurrentChat().LastUpdate.Equal(at) || !c.LastUpdate.Equal(at) {
		t.Fatalf("unexpected LastUpdate %v", c.LastUpdate)
	}
}
