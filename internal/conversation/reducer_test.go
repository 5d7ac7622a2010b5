package conversation

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func TestReduce_CreateChatPrependsAndSelects(t *testing.T) {
	at := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	s := Reduce(State{}, CreateChat{ID: "a", At: at})
	s = Reduce(s, CreateChat{ID: "b", At: at.Add(time.Second)})

	if len(s.Conversations) != 2 {
		t.Fatalf("expected 2 conversations, got %d", len(s.Conversations))
	}
	if s.Conversations[0].ID != "b" || s.Conversations[1].ID != "a" {
		t.Fatalf("expected newest first, got %q, %q", s.Conversations[0].ID, s.Conversations[1].ID)
	}
	if s.CurrentID != "b" {
		t.Fatalf("expected b selected, got %q", s.CurrentID)
	}
	if s.Conversations[0].Title != DefaultTitle {
		t.Fatalf("unexpected title %q", s.Conversations[0].Title)
	}
}

func TestReduce_CreateChatRejectsDuplicateID(t *testing.T) {
	s := Reduce(State{}, CreateChat{ID: "a"})
	s = Reduce(s, SelectChat{ID: "zzz"})

	got := Reduce(s, CreateChat{ID: "a"})
	if diff := cmp.Diff(s, got); diff != "" {
		t.Fatalf("duplicate create changed state (-want +got):\n%s", diff)
	}
}

func TestReduce_DoesNotMutateInput(t *testing.T) {
	s := Reduce(State{}, CreateChat{ID: "a"})
	s = Reduce(s, CreateChat{ID: "b"})
	before := s.Clone()

	_ = Reduce(s, AppendMessage{Message: Message{ID: "m1", Role: RoleUser, Content: "hello"}})
	_ = Reduce(s, DeleteChat{ID: "a"})
	_ = Reduce(s, CreateChat{ID: "c"})

	if diff := cmp.Diff(before, s); diff != "" {
		t.Fatalf("input state mutated (-want +got):\n%s", diff)
	}
}

func TestReduce_DeleteUnknownIsNoop(t *testing.T) {
	s := Reduce(State{}, CreateChat{ID: "a"})

	got := Reduce(s, DeleteChat{ID: "missing"})
	if diff := cmp.Diff(s, got); diff != "" {
		t.Fatalf("delete of unknown id changed state (-want +got):\n%s", diff)
	}
}

func TestReduce_DeleteActiveClearsSelection(t *testing.T) {
	s := Reduce(State{}, CreateChat{ID: "a"})
	s = Reduce(s, CreateChat{ID: "b"})

	s = Reduce(s, DeleteChat{ID: "b"})
	if s.CurrentID != "" {
		t.Fatalf("expected selection cleared, got %q", s.CurrentID)
	}
	if len(s.Conversations) != 1 || s.Conversations[0].ID != "a" {
		t.Fatalf("unexpected conversations: %+v", s.Conversations)
	}
}

func TestReduce_AppendWithoutSelectionIsNoop(t *testing.T) {
	s := Reduce(State{}, CreateChat{ID: "a"})
	s = Reduce(s, ClearSelection{})

	got := Reduce(s, AppendMessage{Message: Message{ID: "m", Role: RoleUser, Content: "x"}})
	if diff := cmp.Diff(s, got); diff != "" {
		t.Fatalf("append without selection changed state (-want +got):\n%s", diff)
	}
}

func TestReduce_AppendToStaleSelectionIsNoop(t *testing.T) {
	s := Reduce(State{}, CreateChat{ID: "a"})
	s = Reduce(s, SelectChat{ID: "gone"})

	if s.Current() != nil {
		t.Fatalf("expected no current conversation for stale selection")
	}
	got := Reduce(s, AppendMessage{Message: Message{ID: "m", Role: RoleUser, Content: "x"}})
	if len(got.Conversations[0].Messages) != 0 {
		t.Fatalf("expected no messages, got %d", len(got.Conversations[0].Messages))
	}
}

func TestReduce_AppendTargetsExplicitConversation(t *testing.T) {
	s := Reduce(State{}, CreateChat{ID: "a"})
	s = Reduce(s, CreateChat{ID: "b"})

	s = Reduce(s, AppendMessage{ConversationID: "a", Message: Message{ID: "m", Role: RoleAssistant, Content: "late"}})

	if s.CurrentID != "b" {
		t.Fatalf("selection moved to %q", s.CurrentID)
	}
	want := []Message{{ID: "m", Role: RoleAssistant, Content: "late"}}
	if diff := cmp.Diff(want, s.Conversations[1].Messages); diff != "" {
		t.Fatalf("unexpected messages (-want +got):\n%s", diff)
	}
	if len(s.Conversations[0].Messages) != 0 {
		t.Fatalf("selected conversation should be untouched")
	}
}
