package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/zhouzirui/z-chat/backend/internal/model/chat"
	"github.com/zhouzirui/z-chat/backend/internal/service/media"
)

func (m Model) View() string {
	body := lipgloss.JoinHorizontal(lipgloss.Top, m.renderSidebar(), m.renderChat())

	var b strings.Builder
	b.WriteString(body)
	b.WriteString("\n")
	b.WriteString(m.renderFooter())
	return m.theme.frame.Render(b.String())
}

func (m Model) renderSidebar() string {
	th := m.theme

	var b strings.Builder
	b.WriteString(th.title.Render("Contacts"))
	b.WriteString("\n")
	b.WriteString(m.search.View())
	b.WriteString("\n\n")

	activeID := m.store.ActiveID()
	visible := m.visibleContacts()
	if len(visible) == 0 {
		b.WriteString(th.help.Render("No matches"))
	}
	for i, c := range visible {
		dot := "○"
		if c.Online {
			dot = "●"
		}
		line := fmt.Sprintf("%s %s", dot, c.Name)

		cursor := "  "
		style := th.normal
		if c.ID == activeID {
			style = th.active
		}
		if m.focus == focusContacts && i == m.cursor {
			cursor = "> "
			style = th.selected
		}
		b.WriteString(cursor + style.Render(line))
		b.WriteString("\n")
	}

	return th.sidebar.Height(m.viewport.Height + 4).Render(b.String())
}

func (m Model) renderChat() string {
	th := m.theme

	var b strings.Builder
	active, ok := m.store.Active()
	header := "No contact selected"
	if ok {
		header = active.Name
		if active.Online {
			header += " · online"
		}
	}
	b.WriteString(th.title.Render(header))
	b.WriteString("  ")
	b.WriteString(th.themeToggle)
	b.WriteString("\n")
	b.WriteString(m.viewport.View())
	b.WriteString("\n")

	if ok && m.typing != nil && m.typing.Typing(active.ID) {
		b.WriteString(th.help.Render(active.Name + " is typing..."))
	}
	b.WriteString("\n")
	b.WriteString(m.renderComposer())

	return lipgloss.NewStyle().PaddingLeft(1).Render(b.String())
}

func (m Model) renderComposer() string {
	th := m.theme
	st := m.composer.State()

	var b strings.Builder
	if st.File != nil {
		b.WriteString(th.attachment.Render("📎 " + st.File.Name))
		b.WriteString("  ")
	}
	if st.AudioURL != "" {
		b.WriteString(th.attachment.Render("🎤 " + media.VoiceFileName))
		b.WriteString("  ")
	}
	if st.Recording {
		b.WriteString(th.err.Render("● recording"))
	}
	if b.Len() > 0 {
		b.WriteString("\n")
	}

	if st.EmojiPickerOpen {
		cells := make([]string, len(emojiChoices))
		for i, e := range emojiChoices {
			if i == m.pickerIndex {
				cells[i] = th.selected.Render("[" + e + "]")
			} else {
				cells[i] = " " + e + " "
			}
		}
		b.WriteString(th.picker.Render(strings.Join(cells, "")))
		b.WriteString("\n")
	}

	if m.prompt != promptNone {
		b.WriteString(th.input.Render(m.dialog.View()))
	} else {
		b.WriteString(m.input.View())
	}
	return b.String()
}

func (m Model) renderFooter() string {
	th := m.theme
	st := m.composer.State()
	switch {
	case m.err != nil:
		return th.err.Render("Error: " + m.err.Error())
	case st.Err != "":
		return th.err.Render(st.Err)
	case m.status != "":
		return th.status.Render(m.status)
	}

	switch m.focus {
	case focusInput:
		return th.help.Render("enter: send • ctrl+e: emoji • ctrl+o: attach • ctrl+v: record • ctrl+r: ❤️ last • ctrl+t: theme • tab: contacts")
	case focusThread:
		return th.help.Render("↑/↓: pick message • enter/+: ❤️ • esc: compose • tab: compose")
	}
	return th.help.Render("↑/↓: navigate • enter: open • /: search • a: add contact • tab: messages • ctrl+c: quit")
}

// renderMessages lays out a thread, own messages right-aligned. It also
// returns the first line of each message so the viewport can follow the
// message cursor; cursor < 0 marks nothing.
func renderMessages(th theme, messages []chat.Message, width, cursor int) (string, []int) {
	if len(messages) == 0 {
		return th.help.Render("No messages yet. Say hi!"), nil
	}

	bubbleWidth := width * 3 / 4
	if bubbleWidth < 10 {
		bubbleWidth = width
	}

	var (
		b      strings.Builder
		starts = make([]int, len(messages))
		line   int
	)
	for i, msg := range messages {
		style := th.fromBot
		align := lipgloss.Left
		if msg.Sender == chat.SenderMe {
			style = th.fromMe
			align = lipgloss.Right
		}

		text := msg.Text
		if i == cursor {
			text = "▸ " + text
			style = style.Bold(true).Underline(true)
		}

		var lines []string
		lines = append(lines, style.Width(bubbleWidth).Align(align).Render(text))
		if msg.HasAttachment() {
			label := "📎 " + msg.FileName
			if media.IsImage(msg.FileName) {
				label = "🖼 " + msg.FileName
			}
			lines = append(lines, th.attachment.Width(bubbleWidth).Align(align).Render(label))
		}
		meta := msg.Time
		if len(msg.Reactions) > 0 {
			meta += "  " + strings.Join(msg.Reactions, "")
		}
		if i == cursor {
			meta += "  ➕"
		}
		lines = append(lines, th.meta.Width(bubbleWidth).Align(align).Render(meta))

		block := lipgloss.PlaceHorizontal(width, align, lipgloss.JoinVertical(align, lines...))
		starts[i] = line
		line += lipgloss.Height(block)
		b.WriteString(block)
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n"), starts
}
