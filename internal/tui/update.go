package tui

import (
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"
)

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.layout()
		m.refresh()
		return m, nil

	case replyMsg:
		if msg.err != nil {
			m.log.Debug("reply failed", zap.String("conversation_id", msg.result.ConversationID), zap.Error(msg.err))
		}
		m.refresh()
		m.thread.GotoBottom()
		if m.focus == focusComposer {
			return m, m.input.Focus()
		}
		return m, nil

	case spinner.TickMsg:
		if !m.disp.Busy() {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.ToggleSidebar):
		m.sidebarOpen = !m.sidebarOpen
		var cmd tea.Cmd
		if !m.sidebarOpen && m.focus == focusSidebar {
			m.focus = focusComposer
			cmd = m.focusInput()
		}
		m.layout()
		m.refresh()
		return m, cmd

	case key.Matches(msg, m.keys.NewChat):
		m.store.ClearSelection()
		m.focus = focusComposer
		m.refresh()
		return m, m.focusInput()

	case key.Matches(msg, m.keys.SwitchFocus):
		if !m.sidebarOpen {
			return m, nil
		}
		if m.focus == focusComposer {
			m.focus = focusSidebar
			m.input.Blur()
			m.syncCursor()
			return m, nil
		}
		m.focus = focusComposer
		return m, m.focusInput()

	case key.Matches(msg, m.keys.ScrollUp, m.keys.ScrollDown):
		var cmd tea.Cmd
		m.thread, cmd = m.thread.Update(msg)
		return m, cmd
	}

	if m.focus == focusSidebar {
		return m.handleSidebarKey(msg)
	}
	return m.handleComposerKey(msg)
}

func (m Model) handleSidebarKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	convs := m.store.Conversations()
	switch {
	case key.Matches(msg, m.keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}
	case key.Matches(msg, m.keys.Down):
		if m.cursor < len(convs)-1 {
			m.cursor++
		}
	case key.Matches(msg, m.keys.Select):
		if len(convs) == 0 {
			return m, nil
		}
		m.store.SelectChat(convs[m.cursor].ID)
		m.focus = focusComposer
		m.refresh()
		m.thread.GotoBottom()
		return m, m.focusInput()
	case key.Matches(msg, m.keys.Delete):
		if len(convs) == 0 {
			return m, nil
		}
		m.store.DeleteChat(convs[m.cursor].ID)
		m.refresh()
	}
	return m, nil
}

func (m Model) handleComposerKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keys.Send) {
		if m.disp.Busy() {
			return m, nil
		}
		p, err := m.disp.Begin(m.input.Value())
		if err != nil {
			return m, nil
		}
		m.input.Reset()
		m.input.Blur()
		m.refresh()
		m.thread.GotoBottom()
		return m, tea.Batch(m.spinner.Tick, m.await(p))
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// focusInput focuses the composer unless a request is in flight.
func (m *Model) focusInput() tea.Cmd {
	if m.disp.Busy() {
		return nil
	}
	return m.input.Focus()
}
