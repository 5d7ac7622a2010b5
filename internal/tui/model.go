// Package tui is the terminal chat interface: a conversation sidebar, the
// message thread and a composer.
package tui

import (
	"context"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/suPer8Hu/bundle-chat/internal/conversation"
	"github.com/suPer8Hu/bundle-chat/internal/dispatch"
	"go.uber.org/zap"
)

const (
	appTitle     = "Bundle AI"
	greeting     = "Hi, how can I help you?"
	placeholder  = "Ask anything"
	sidebarWidth = 30

	defaultWidth  = 100
	defaultHeight = 30
)

type focus int

const (
	focusComposer focus = iota
	focusSidebar
)

// replyMsg carries the outcome of an Await back into the update loop.
type replyMsg struct {
	result dispatch.Result
	err    error
}

type Options struct {
	// Theme is "dark" or "light".
	Theme string
	// Markdown renders assistant replies through glamour.
	Markdown bool
	Logger   *zap.Logger
}

type Model struct {
	ctx    context.Context
	store  conversation.Container
	disp   *dispatch.Dispatcher
	log    *zap.Logger
	keys   keyMap
	styles styles
	opts   Options

	input   textarea.Model
	thread  viewport.Model
	spinner spinner.Model
	md      *glamour.TermRenderer

	width, height int
	sidebarOpen   bool
	focus         focus
	cursor        int
}

// New builds the model. ctx bounds every request the UI starts.
func New(ctx context.Context, store conversation.Container, disp *dispatch.Dispatcher, opts Options) Model {
	if opts.Theme != "light" {
		opts.Theme = "dark"
	}
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}

	keys := defaultKeyMap()

	in := textarea.New()
	in.Placeholder = placeholder
	in.ShowLineNumbers = false
	in.Prompt = ""
	in.CharLimit = 0
	// enter is taken by Send
	in.KeyMap.InsertNewline.SetKeys(keys.Newline.Keys()...)
	in.Focus()

	sp := spinner.New(spinner.WithSpinner(spinner.Dot))

	m := Model{
		ctx:         ctx,
		store:       store,
		disp:        disp,
		log:         log,
		keys:        keys,
		styles:      newStyles(opts.Theme),
		opts:        opts,
		input:       in,
		thread:      viewport.New(defaultWidth, defaultHeight),
		spinner:     sp,
		width:       defaultWidth,
		height:      defaultHeight,
		sidebarOpen: true,
		focus:       focusComposer,
	}
	m.layout()
	m.refresh()
	return m
}

func (m Model) Init() tea.Cmd {
	return textarea.Blink
}

func (m Model) mainWidth() int {
	w := m.width
	if m.sidebarOpen {
		w -= sidebarWidth
	}
	if w < 20 {
		w = 20
	}
	return w
}

// layout sizes the child components for the current window.
func (m *Model) layout() {
	w := m.mainWidth()
	m.input.SetWidth(w - 4)
	m.input.SetHeight(3)

	// header (2) + banner (1) + composer (3 + border)
	h := m.height - 2 - 1 - 5
	if h < 3 {
		h = 3
	}
	m.thread.Width = w
	m.thread.Height = h

	m.md = nil
	if m.opts.Markdown {
		r, err := glamour.NewTermRenderer(
			glamour.WithStandardStyle(m.opts.Theme),
			glamour.WithWordWrap(w-4),
		)
		if err != nil {
			m.log.Warn("markdown renderer unavailable", zap.Error(err))
			return
		}
		m.md = r
	}
}

// refresh re-renders the current conversation into the thread viewport.
func (m *Model) refresh() {
	m.thread.SetContent(m.renderThread())
	convs := m.store.Conversations()
	if m.cursor >= len(convs) {
		m.cursor = len(convs) - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

// syncCursor moves the sidebar cursor onto the active conversation.
func (m *Model) syncCursor() {
	cur := m.store.CurrentID()
	for i, c := range m.store.Conversations() {
		if c.ID == cur {
			m.cursor = i
			return
		}
	}
}

func (m Model) await(p *dispatch.Pending) tea.Cmd {
	ctx, d := m.ctx, m.disp
	return func() tea.Msg {
		res, err := d.Await(ctx, p)
		return replyMsg{result: res, err: err}
	}
}
