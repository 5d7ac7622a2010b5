package dispatch

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/suPer8Hu/bundle-chat/internal/conversation"
	"github.com/suPer8Hu/bundle-chat/internal/transport"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type fakeSender struct {
	mu    sync.Mutex
	reply string
	err   error
	gate  chan struct{}
	calls []string
	ids   []string
}

func (f *fakeSender) SendMessage(ctx context.Context, conversationID *string, message string) (*transport.ChatResponse, error) {
	if f.gate != nil {
		select {
		case <-f.gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, message)
	if conversationID != nil {
		f.ids = append(f.ids, *conversationID)
	}
	if f.err != nil {
		return nil, f.err
	}
	return &transport.ChatResponse{Response: f.reply}, nil
}

type msg struct {
	Role    conversation.Role
	Content string
}

func messagesOf(c *conversation.Conversation) []msg {
	if c == nil {
		return nil
	}
	out := make([]msg, 0, len(c.Messages))
	for _, m := range c.Messages {
		out = append(out, msg{Role: m.Role, Content: m.Content})
	}
	return out
}

func TestSend_Success(t *testing.T) {
	store := conversation.NewStore()
	store.CreateNewChat()
	snd := &fakeSender{reply: "hi"}
	d := New(store, snd)

	res, err := d.Send(context.Background(), "hello")
	if err != nil {
		t.Fatalf("send: %v", err)
	}
	if res.Failed || res.Reply != "hi" {
		t.Fatalf("unexpected result: %+v", res)
	}

	want := []msg{
		{Role: conversation.RoleUser, Content: "hello"},
		{Role: conversation.RoleAssistant, Content: "hi"},
	}
	if diff := cmp.Diff(want, messagesOf(store.CurrentChat())); diff != "" {
		t.Fatalf("unexpected messages (-want +got):\n%s", diff)
	}
	if len(snd.ids) != 1 || snd.ids[0] != store.CurrentID() {
		t.Fatalf("request should carry the conversation id, got %v", snd.ids)
	}
	if d.Busy() {
		t.Fatalf("busy flag not cleared")
	}
}

func TestSend_FailureRecordsErrorText(t *testing.T) {
	store := conversation.NewStore()
	store.CreateNewChat()
	boom := errors.New("connection refused")
	d := New(store, &fakeSender{err: boom})

	res, err := d.Send(context.Background(), "hello")
	if !errors.Is(err, boom) {
		t.Fatalf("expected transport error, got %v", err)
	}
	if !res.Failed || res.Reply != FailureText {
		t.Fatalf("unexpected result: %+v", res)
	}
	if d.Error() != FailureText {
		t.Fatalf("banner not set: %q", d.Error())
	}

	msgs := messagesOf(store.CurrentChat())
	if len(msgs) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(msgs))
	}
	last := msgs[len(msgs)-1]
	if last.Role != conversation.RoleAssistant || last.Content != d.Error() {
		t.Fatalf("expected assistant message equal to banner, got %+v", last)
	}
	if d.Busy() {
		t.Fatalf("busy flag not cleared")
	}
}

func TestSend_FailureWithoutErrorHistory(t *testing.T) {
	store := conversation.NewStore()
	store.CreateNewChat()
	d := New(store, &fakeSender{err: errors.New("x")}, WithErrorHistory(false))

	_, _ = d.Send(context.Background(), "hello")

	want := []msg{{Role: conversation.RoleUser, Content: "hello"}}
	if diff := cmp.Diff(want, messagesOf(store.CurrentChat())); diff != "" {
		t.Fatalf("unexpected messages (-want +got):\n%s", diff)
	}
	if d.Error() != FailureText {
		t.Fatalf("banner should still be set")
	}
}

func TestBegin_ClearsPreviousError(t *testing.T) {
	store := conversation.NewStore()
	snd := &fakeSender{err: errors.New("x")}
	d := New(store, snd)
	_, _ = d.Send(context.Background(), "one")

	snd.err = nil
	snd.reply = "ok"
	if _, err := d.Send(context.Background(), "two"); err != nil {
		t.Fatalf("send: %v", err)
	}
	if d.Error() != "" {
		t.Fatalf("expected banner cleared, got %q", d.Error())
	}
}

func TestSend_NoSelectionCreatesConversation(t *testing.T) {
	store := conversation.NewStore()
	d := New(store, &fakeSender{reply: "hi"})

	res, err := d.Send(context.Background(), "hello")
	if err != nil {
		t.Fatalf("send: %v", err)
	}

	convs := store.Conversations()
	if len(convs) != 1 {
		t.Fatalf("expected 1 conversation, got %d", len(convs))
	}
	if store.CurrentID() != convs[0].ID || res.ConversationID != convs[0].ID {
		t.Fatalf("new conversation not selected")
	}
	want := []msg{
		{Role: conversation.RoleUser, Content: "hello"},
		{Role: conversation.RoleAssistant, Content: "hi"},
	}
	if diff := cmp.Diff(want, messagesOf(store.CurrentChat())); diff != "" {
		t.Fatalf("unexpected messages (-want +got):\n%s", diff)
	}
}

func TestSend_StaleSelectionCreatesConversation(t *testing.T) {
	store := conversation.NewStore()
	keep := store.CreateNewChat()
	store.SelectChat("gone")
	d := New(store, &fakeSender{reply: "hi"})

	if _, err := d.Send(context.Background(), "hello"); err != nil {
		t.Fatalf("send: %v", err)
	}

	convs := store.Conversations()
	if len(convs) != 2 {
		t.Fatalf("expected 2 conversations, got %d", len(convs))
	}
	for _, c := range convs {
		if c.ID == keep.ID && len(c.Messages) != 0 {
			t.Fatalf("existing conversation should be untouched")
		}
	}
}

func TestBegin_RejectsBlank(t *testing.T) {
	store := conversation.NewStore()
	snd := &fakeSender{}
	d := New(store, snd)

	for _, in := range []string{"", "   ", "\n\t"} {
		if _, err := d.Send(context.Background(), in); !errors.Is(err, ErrEmptyMessage) {
			t.Fatalf("input %q: expected ErrEmptyMessage, got %v", in, err)
		}
	}
	if len(store.Conversations()) != 0 || len(snd.calls) != 0 {
		t.Fatalf("blank input must not change state or hit the network")
	}
}

func TestBegin_RejectsOverlap(t *testing.T) {
	store := conversation.NewStore()
	d := New(store, &fakeSender{reply: "ok"})

	p, err := d.Begin("first")
	if err != nil {
		t.Fatalf("begin: %v", err)
	}
	if !d.Busy() {
		t.Fatalf("expected busy after Begin")
	}
	if _, err := d.Begin("second"); !errors.Is(err, ErrBusy) {
		t.Fatalf("expected ErrBusy, got %v", err)
	}

	// optimistic echo is visible before the reply
	want := []msg{{Role: conversation.RoleUser, Content: "first"}}
	if diff := cmp.Diff(want, messagesOf(store.CurrentChat())); diff != "" {
		t.Fatalf("unexpected messages (-want +got):\n%s", diff)
	}

	if _, err := d.Await(context.Background(), p); err != nil {
		t.Fatalf("await: %v", err)
	}
	if d.Busy() {
		t.Fatalf("busy flag not cleared")
	}
}

func TestAwait_ReplyLandsInOriginatingConversation(t *testing.T) {
	store := conversation.NewStore()
	origin := store.CreateNewChat()
	snd := &fakeSender{reply: "late", gate: make(chan struct{})}
	d := New(store, snd)

	p, err := d.Begin("hello")
	if err != nil {
		t.Fatalf("begin: %v", err)
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		_, _ = d.Await(context.Background(), p)
	}()

	other := store.CreateNewChat()
	close(snd.gate)
	<-done

	if len(store.CurrentChat().Messages) != 0 {
		t.Fatalf("reply leaked into the newly selected conversation %s", other.ID)
	}
	store.SelectChat(origin.ID)
	got := messagesOf(store.CurrentChat())
	if len(got) != 2 || got[1].Content != "late" {
		t.Fatalf("reply missing from origin: %+v", got)
	}
}

func TestAwait_ConversationDeletedMeanwhile(t *testing.T) {
	store := conversation.NewStore()
	origin := store.CreateNewChat()
	snd := &fakeSender{reply: "late", gate: make(chan struct{})}
	d := New(store, snd)

	p, err := d.Begin("hello")
	if err != nil {
		t.Fatalf("begin: %v", err)
	}
	store.DeleteChat(origin.ID)
	close(snd.gate)

	if _, err := d.Await(context.Background(), p); err != nil {
		t.Fatalf("await: %v", err)
	}
	if len(store.Conversations()) != 0 {
		t.Fatalf("deleted conversation came back: %+v", store.Conversations())
	}
	if store.CurrentID() != "" {
		t.Fatalf("selection should stay empty")
	}
}

func TestAwait_ContextCanceledIsFailure(t *testing.T) {
	store := conversation.NewStore()
	d := New(store, &fakeSender{gate: make(chan struct{})})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res, err := d.Send(ctx, "hello")
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if !res.Failed {
		t.Fatalf("expected failed result")
	}
	got := store.CurrentChat().Messages
	if diff := cmp.Diff(
		[]conversation.Message{{Role: conversation.RoleUser, Content: "hello"}, {Role: conversation.RoleAssistant, Content: FailureText}},
		got,
		cmpopts.IgnoreFields(conversation.Message{}, "ID"),
	); diff != "" {
		t.Fatalf("unexpected messages (-want +got):\n%s", diff)
	}
}
