package ui

import (
	"context"
	"errors"
	"fmt"
	"mime"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/zhouzirui/z-chat/backend/internal/model/chat"
	chatService "github.com/zhouzirui/z-chat/backend/internal/service/chat"
	"github.com/zhouzirui/z-chat/backend/internal/service/composer"
)

// QuickReaction is added by the react key.
const QuickReaction = "❤️"

var emojiChoices = []string{"😊", "😂", "❤️", "👍", "🎉", "😢", "😮", "🔥"}

type focusArea int

const (
	focusInput focusArea = iota
	focusContacts
	focusSearch
	focusThread
)

type promptKind int

const (
	promptNone promptKind = iota
	promptAddContact
	promptAttach
)

type storeEventMsg struct {
	evt chat.Event
}

type eventsClosedMsg struct{}

// TypingTracker reports whether a contact is composing a reply.
type TypingTracker interface {
	Typing(contactID string) bool
}

// Deps are the in-process services the client drives.
type Deps struct {
	Store    *chatService.Store
	Composer *composer.Composer
	Typing   TypingTracker
	DarkMode bool
}

// Model is the root bubbletea model of the terminal chat client.
type Model struct {
	store    *chatService.Store
	composer *composer.Composer
	typing   TypingTracker

	events      <-chan chat.Event
	unsubscribe func()

	focus       focusArea
	prompt      promptKind
	cursor      int
	msgCursor   int
	pickerIndex int
	theme       theme

	input    textinput.Model
	search   textinput.Model
	dialog   textinput.Model
	viewport viewport.Model

	width  int
	height int
	status string
	err    error
}

func NewModel(deps Deps) Model {
	input := textinput.New()
	input.Placeholder = "Type a message..."
	input.CharLimit = 2000
	input.Focus()

	search := textinput.New()
	search.Placeholder = "Search contacts"
	search.Prompt = "/ "
	search.Width = sidebarWidth - 4

	dialog := textinput.New()
	dialog.CharLimit = 512

	events, unsubscribe := deps.Store.Subscribe()

	m := Model{
		store:       deps.Store,
		composer:    deps.Composer,
		typing:      deps.Typing,
		events:      events,
		unsubscribe: unsubscribe,
		input:       input,
		search:      search,
		dialog:      dialog,
		viewport:    viewport.New(60, 15),
		msgCursor:   -1,
		theme:       newTheme(deps.DarkMode),
		width:       90,
		height:      24,
	}
	m.layout()
	m.refresh()
	return m
}

// Close detaches the model from the store's event feed.
func (m Model) Close() {
	if m.unsubscribe != nil {
		m.unsubscribe()
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.waitForEvent())
}

func (m Model) waitForEvent() tea.Cmd {
	events := m.events
	return func() tea.Msg {
		evt, ok := <-events
		if !ok {
			return eventsClosedMsg{}
		}
		return storeEventMsg{evt: evt}
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.layout()
		m.refresh()
		return m, nil

	case storeEventMsg:
		if msg.evt.Type == chat.EventMessage && msg.evt.Message != nil && msg.evt.Message.Sender == chat.SenderBot {
			if c, ok := m.store.Contact(context.Background(), msg.evt.ContactID); ok && msg.evt.ContactID != m.store.ActiveID() {
				m.status = "New message from " + c.Name
			}
		}
		m.refresh()
		return m, m.waitForEvent()

	case eventsClosedMsg:
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	var cmd tea.Cmd
	switch {
	case m.prompt != promptNone:
		m.dialog, cmd = m.dialog.Update(msg)
	case m.focus == focusSearch:
		m.search, cmd = m.search.Update(msg)
	case m.focus == focusInput:
		m.input, cmd = m.input.Update(msg)
	}
	return m, cmd
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		return m, tea.Quit
	case "ctrl+t":
		m.theme = newTheme(!m.theme.dark)
		m.refresh()
		return m, nil
	}
	if m.prompt != promptNone {
		return m.updatePrompt(msg)
	}
	if msg.String() == "tab" {
		m.setFocus(m.nextFocus())
		return m, nil
	}

	switch m.focus {
	case focusContacts:
		return m.updateContacts(msg)
	case focusSearch:
		return m.updateSearch(msg)
	case focusThread:
		return m.updateThread(msg)
	default:
		return m.updateInput(msg)
	}
}

func (m Model) nextFocus() focusArea {
	switch m.focus {
	case focusInput:
		return focusContacts
	case focusContacts, focusSearch:
		return focusThread
	}
	return focusInput
}

func (m *Model) setFocus(f focusArea) {
	m.focus = f
	m.input.Blur()
	m.search.Blur()
	switch f {
	case focusInput:
		m.input.Focus()
	case focusSearch:
		m.search.Focus()
	}

	m.msgCursor = -1
	if f == focusThread {
		if active, ok := m.store.Active(); ok {
			m.msgCursor = len(active.Messages) - 1
		}
	}
	m.refresh()
}

// updateThread moves the message cursor and reacts to the picked message.
func (m Model) updateThread(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	active, ok := m.store.Active()
	if !ok {
		return m, nil
	}

	switch msg.String() {
	case "up", "k":
		if m.msgCursor > 0 {
			m.msgCursor--
		}
	case "down", "j":
		if m.msgCursor < len(active.Messages)-1 {
			m.msgCursor++
		}
	case "enter", "+":
		if m.msgCursor >= 0 && m.msgCursor < len(active.Messages) {
			m.store.AddReaction(context.Background(), active.ID, active.Messages[m.msgCursor].ID, QuickReaction)
		}
	case "esc":
		m.setFocus(focusInput)
		return m, nil
	}
	m.refresh()
	return m, nil
}

func (m Model) updateContacts(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	visible := m.visibleContacts()
	switch msg.String() {
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(visible)-1 {
			m.cursor++
		}
	case "enter":
		if m.cursor < len(visible) {
			m.store.SelectContact(context.Background(), visible[m.cursor].ID)
			m.status = ""
			m.refresh()
			m.setFocus(focusInput)
		}
	case "/":
		m.setFocus(focusSearch)
	case "a":
		return m.openPrompt(promptAddContact, "Contact name: ")
	case "esc":
		m.setFocus(focusInput)
	}
	return m, nil
}

func (m Model) updateSearch(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter", "esc":
		m.setFocus(focusContacts)
		return m, nil
	}

	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)
	m.cursor = 0
	return m, cmd
}

func (m Model) updateInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	ctx := context.Background()
	st := m.composer.State()

	if st.EmojiPickerOpen {
		switch msg.String() {
		case "left":
			m.pickerIndex = (m.pickerIndex + len(emojiChoices) - 1) % len(emojiChoices)
			return m, nil
		case "right":
			m.pickerIndex = (m.pickerIndex + 1) % len(emojiChoices)
			return m, nil
		case "enter":
			m.composer.SetText(m.input.Value())
			m.composer.AppendEmoji(emojiChoices[m.pickerIndex])
			m.input.SetValue(m.composer.State().Input)
			m.input.CursorEnd()
			return m, nil
		case "esc", "ctrl+e":
			m.composer.ToggleEmojiPicker()
			return m, nil
		}
	}

	switch msg.String() {
	case "enter":
		m.composer.SetText(m.input.Value())
		if _, ok := m.composer.Commit(ctx); ok {
			m.input.Reset()
			m.err = nil
		}
		m.refresh()
		return m, nil
	case "ctrl+e":
		m.composer.ToggleEmojiPicker()
		return m, nil
	case "ctrl+o":
		return m.openPrompt(promptAttach, "File path: ")
	case "ctrl+x":
		m.composer.SetFile(nil)
		m.composer.SetAudio("")
		return m, nil
	case "ctrl+r":
		m.reactToLast(ctx)
		return m, nil
	case "ctrl+v":
		if st.Recording {
			_ = m.composer.StopRecording(ctx)
		} else {
			_ = m.composer.StartRecording(ctx)
		}
		return m, nil
	case "esc":
		m.composer.ClearError()
		m.err = nil
		m.status = ""
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	m.composer.SetText(m.input.Value())
	return m, cmd
}

func (m Model) openPrompt(kind promptKind, label string) (tea.Model, tea.Cmd) {
	m.prompt = kind
	m.dialog.Reset()
	m.dialog.Prompt = label
	m.input.Blur()
	m.search.Blur()
	cmd := m.dialog.Focus()
	return m, cmd
}

func (m Model) updatePrompt(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.closePrompt()
		return m, nil
	case "enter":
		value := m.dialog.Value()
		kind := m.prompt
		m.closePrompt()
		switch kind {
		case promptAddContact:
			m.addContact(value)
		case promptAttach:
			m.attachFile(value)
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.dialog, cmd = m.dialog.Update(msg)
	return m, cmd
}

func (m *Model) closePrompt() {
	m.prompt = promptNone
	m.dialog.Blur()
	m.dialog.Reset()
	m.setFocus(m.focus)
}

func (m *Model) addContact(name string) {
	c, err := m.store.AddContact(context.Background(), name)
	if err != nil {
		if !errors.Is(err, chatService.ErrNameRequired) {
			m.err = err
		}
		return
	}
	m.status = "Added " + c.Name
}

// attachFile reads a path typed or dropped into the terminal.
func (m *Model) attachFile(raw string) {
	path := strings.Trim(strings.TrimSpace(raw), `'"`)
	if path == "" {
		return
	}

	f, err := os.Open(path)
	if err != nil {
		m.err = fmt.Errorf("open attachment: %w", err)
		return
	}
	defer f.Close()

	name := filepath.Base(path)
	attachment, err := m.composer.AttachFile(name, mime.TypeByExtension(filepath.Ext(name)), f)
	if err != nil {
		m.err = err
		return
	}
	m.err = nil
	m.status = "Attached " + attachment.Name
}

func (m *Model) reactToLast(ctx context.Context) {
	active, ok := m.store.Active()
	if !ok || len(active.Messages) == 0 {
		return
	}
	last := active.Messages[len(active.Messages)-1]
	m.store.AddReaction(ctx, active.ID, last.ID, QuickReaction)
	m.refresh()
}

func (m Model) visibleContacts() []chat.Contact {
	var out []chat.Contact
	for c := range m.store.FilterContacts(m.search.Value()) {
		out = append(out, c)
	}
	return out
}

func (m *Model) layout() {
	chatWidth := m.width - sidebarWidth - 3
	if chatWidth < 20 {
		chatWidth = 20
	}
	height := m.height - 7
	if height < 3 {
		height = 3
	}
	m.viewport.Width = chatWidth
	m.viewport.Height = height
	m.input.Width = chatWidth - 4
	m.dialog.Width = chatWidth - 16
}

func (m *Model) refresh() {
	active, ok := m.store.Active()
	if !ok {
		m.viewport.SetContent(m.theme.help.Render("No contact selected."))
		return
	}
	if m.msgCursor >= len(active.Messages) {
		m.msgCursor = len(active.Messages) - 1
	}

	content, starts := renderMessages(m.theme, active.Messages, m.viewport.Width, m.msgCursor)
	m.viewport.SetContent(content)
	if m.msgCursor < 0 {
		m.viewport.GotoBottom()
		return
	}

	top := starts[m.msgCursor]
	if top < m.viewport.YOffset || top >= m.viewport.YOffset+m.viewport.Height {
		m.viewport.SetYOffset(top)
	}
}
