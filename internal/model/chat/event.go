package chat

// EventType names a change published by the conversation store.
type EventType string

const (
	EventContactAdded EventType = "contact_added"
	EventActive       EventType = "active"
	EventMessage      EventType = "message"
	EventReaction     EventType = "reaction"
	EventTyping       EventType = "typing"
)

// Event describes one store change. Fields irrelevant to Type are zero.
type Event struct {
	Type      EventType `json:"type"`
	ContactID string    `json:"contactId,omitempty"`
	Contact   *Contact  `json:"contact,omitempty"`
	Message   *Message  `json:"message,omitempty"`
	MessageID int64     `json:"messageId,omitempty"`
	Emoji     string    `json:"emoji,omitempty"`
	Typing    bool      `json:"typing,omitempty"`
}
