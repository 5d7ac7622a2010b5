// Package dispatch runs the user message -> assistant reply round trip on top
// of a conversation container.
package dispatch

import (
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/suPer8Hu/bundle-chat/internal/conversation"
	"github.com/suPer8Hu/bundle-chat/internal/transport"
	"go.uber.org/zap"
)

// FailureText is shown to the user, and recorded in history, when a send fails.
const FailureText = "Failed to get response from the assistant. Please try again."

var (
	ErrBusy         = errors.New("dispatch: a message is already in flight")
	ErrEmptyMessage = errors.New("dispatch: message is empty")
)

// Sender is the network half of a send. *transport.Client implements it.
type Sender interface {
	SendMessage(ctx context.Context, conversationID *string, message string) (*transport.ChatResponse, error)
}

// Pending is a send whose user message is already in history but whose reply
// has not arrived yet.
type Pending struct {
	ConversationID string
	Text           string
}

type Result struct {
	ConversationID string
	// Reply is the assistant text, or FailureText when Failed.
	Reply  string
	Failed bool
}

type Option func(*Dispatcher)

func WithLogger(log *zap.Logger) Option {
	return func(d *Dispatcher) { d.log = log }
}

// WithErrorHistory controls whether FailureText is also appended to the
// conversation as an assistant message. On by default.
func WithErrorHistory(on bool) Option {
	return func(d *Dispatcher) { d.recordErrors = on }
}

type Dispatcher struct {
	store        conversation.Container
	sender       Sender
	log          *zap.Logger
	recordErrors bool

	busy atomic.Bool

	mu      sync.Mutex
	lastErr string
}

func New(store conversation.Container, sender Sender, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		store:        store,
		sender:       sender,
		log:          zap.NewNop(),
		recordErrors: true,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Busy reports whether a request is in flight.
func (d *Dispatcher) Busy() bool { return d.busy.Load() }

// Error returns the banner text of the last failed send, cleared by the next Begin.
func (d *Dispatcher) Error() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.lastErr
}

func (d *Dispatcher) setError(s string) {
	d.mu.Lock()
	d.lastErr = s
	d.mu.Unlock()
}

// Send is Begin followed by Await.
func (d *Dispatcher) Send(ctx context.Context, text string) (Result, error) {
	p, err := d.Begin(text)
	if err != nil {
		return Result{}, err
	}
	return d.Await(ctx, p)
}

// Begin validates text, makes sure a conversation is selected (creating and
// selecting one if needed) and appends the user message. The dispatcher stays
// busy until Await is called with the returned Pending.
func (d *Dispatcher) Begin(text string) (*Pending, error) {
	if strings.TrimSpace(text) == "" {
		return nil, ErrEmptyMessage
	}
	if !d.busy.CompareAndSwap(false, true) {
		return nil, ErrBusy
	}

	// nil also covers a selection whose conversation no longer exists
	cur := d.store.CurrentChat()
	if cur == nil {
		c := d.store.CreateNewChat()
		cur = &c
		d.log.Debug("created conversation for send", zap.String("conversation_id", c.ID))
	}

	d.store.AddMessageTo(cur.ID, conversation.RoleUser, text)
	d.setError("")

	return &Pending{ConversationID: cur.ID, Text: text}, nil
}

// Await performs the network call for p and records the outcome in the
// conversation p started in, not whichever one is selected when the reply
// arrives. If that conversation was deleted meanwhile the outcome is dropped.
func (d *Dispatcher) Await(ctx context.Context, p *Pending) (Result, error) {
	defer d.busy.Store(false)

	id := p.ConversationID
	resp, err := d.sender.SendMessage(ctx, &id, p.Text)
	if err != nil {
		d.log.Error("send message failed",
			zap.String("conversation_id", id),
			zap.Error(err),
		)
		d.setError(FailureText)
		if d.recordErrors {
			d.record(id, FailureText)
		}
		return Result{ConversationID: id, Reply: FailureText, Failed: true}, err
	}

	d.record(id, resp.Response)
	return Result{ConversationID: id, Reply: resp.Response}, nil
}

func (d *Dispatcher) record(id, content string) {
	if !d.store.AddMessageTo(id, conversation.RoleAssistant, content) {
		d.log.Warn("reply dropped, conversation no longer exists", zap.String("conversation_id", id))
	}
}
