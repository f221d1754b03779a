package chat

import (
	"strings"
	"time"
)

// Sender identifies who authored a message.
type Sender string

const (
	SenderMe  Sender = "me"
	SenderBot Sender = "bot"
)

// TimeLayout is the clock format shown next to each message.
const TimeLayout = "15:04"

// Message is a single entry in a contact's thread. Only Reactions may change
// after creation, and only by appending.
type Message struct {
	ID        int64     `json:"id"`
	Text      string    `json:"text"`
	Sender    Sender    `json:"sender"`
	Time      string    `json:"time"`
	CreatedAt time.Time `json:"createdAt"`
	Reactions []string  `json:"reactions"`
	File      string    `json:"file,omitempty"`
	FileName  string    `json:"fileName,omitempty"`
}

// Valid reports whether the message carries text or an attachment.
func (m Message) Valid() bool {
	return strings.TrimSpace(m.Text) != "" || m.File != ""
}

// HasAttachment reports whether the message references a blob.
func (m Message) HasAttachment() bool {
	return m.File != ""
}

// Clone returns a copy that shares no mutable state with m.
func (m Message) Clone() Message {
	m.Reactions = append(make([]string, 0, len(m.Reactions)), m.Reactions...)
	return m
}

// FormatTime renders t the way message timestamps are displayed.
func FormatTime(t time.Time) string {
	return t.Local().Format(TimeLayout)
}
