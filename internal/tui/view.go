package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/suPer8Hu/bundle-chat/internal/conversation"
)

func (m Model) View() string {
	main := lipgloss.JoinVertical(lipgloss.Left,
		m.headerView(),
		m.bodyView(),
		m.bannerView(),
		m.composerView(),
	)
	if !m.sidebarOpen {
		return main
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, m.sidebarView(), main)
}

func (m Model) headerView() string {
	return m.styles.Header.Width(m.mainWidth()).Render(appTitle)
}

func (m Model) bodyView() string {
	if m.store.CurrentID() == "" {
		return lipgloss.Place(m.thread.Width, m.thread.Height,
			lipgloss.Center, lipgloss.Center,
			m.styles.Greeting.Render(greeting))
	}
	return m.thread.View()
}

func (m Model) bannerView() string {
	switch {
	case m.disp.Busy():
		return m.styles.Status.Render(m.spinner.View() + " Waiting for the assistant...")
	case m.disp.Error() != "":
		return m.styles.Banner.Render(m.disp.Error())
	}
	return ""
}

func (m Model) composerView() string {
	st := m.styles.Composer
	if m.focus == focusComposer && !m.disp.Busy() {
		st = m.styles.ComposerFocus
	}
	return st.Width(m.mainWidth() - 2).Render(m.input.View())
}

func (m Model) sidebarView() string {
	var b strings.Builder
	b.WriteString(m.styles.SidebarTitle.Render("+ New chat"))
	b.WriteString(m.styles.Muted.Render("  ctrl+n"))
	b.WriteString("\n\n")
	b.WriteString(m.styles.Muted.Render("Recents"))
	b.WriteString("\n")

	cur := m.store.CurrentID()
	for i, c := range m.store.Conversations() {
		marker, st := "  ", m.styles.Item
		if c.ID == cur {
			marker, st = "* ", m.styles.ItemActive
		}
		if m.focus == focusSidebar && i == m.cursor {
			marker, st = "> ", m.styles.ItemCursor
		}
		b.WriteString(st.Render(marker + c.Title + " " + c.LastUpdate.Format("15:04:05")))
		b.WriteString("\n")
	}
	return m.styles.Sidebar.Width(sidebarWidth).Height(m.height).Render(b.String())
}

func (m Model) renderThread() string {
	conv := m.store.CurrentChat()
	if conv == nil {
		return ""
	}
	w := m.thread.Width
	parts := make([]string, 0, len(conv.Messages))
	for _, msg := range conv.Messages {
		parts = append(parts, m.renderMessage(msg, w))
	}
	return strings.Join(parts, "\n\n")
}

func (m Model) renderMessage(msg conversation.Message, width int) string {
	if msg.Role == conversation.RoleUser {
		st := m.styles.UserBubble
		if limit := width * 7 / 10; lipgloss.Width(msg.Content)+4 > limit {
			st = st.Width(limit)
		}
		bubble := st.Render(msg.Content)
		return lipgloss.NewStyle().Width(width).Align(lipgloss.Right).Render(bubble)
	}
	if m.md != nil {
		out, err := m.md.Render(msg.Content)
		if err == nil {
			return strings.TrimRight(out, "\n")
		}
	}
	return m.styles.Assistant.Width(width).Render(msg.Content)
}
