package composer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"strings"
	"sync"

	"github.com/zhouzirui/z-chat/backend/internal/model/chat"
	"github.com/zhouzirui/z-chat/backend/internal/service/media"
	"github.com/zhouzirui/z-chat/backend/internal/service/notify"
)

var (
	ErrAlreadyRecording = errors.New("recording already in progress")
	ErrNotRecording     = errors.New("no recording in progress")
)

const (
	attachmentText = "Attachment"
	voiceText      = "Voice message"
)

// Attachment is a file picked or dropped into the composer.
type Attachment struct {
	URL         string `json:"url"`
	Name        string `json:"name"`
	ContentType string `json:"contentType,omitempty"`
}

// State is the transient input of an unsent message.
type State struct {
	Input           string      `json:"input"`
	File            *Attachment `json:"file,omitempty"`
	AudioURL        string      `json:"audioUrl,omitempty"`
	EmojiPickerOpen bool        `json:"emojiPickerOpen"`
	Recording       bool        `json:"recording"`
	Err             string      `json:"error,omitempty"`
}

// Empty reports whether there is nothing to send.
func (s State) Empty() bool {
	return strings.TrimSpace(s.Input) == "" && s.File == nil && s.AudioURL == ""
}

// Store is the part of the conversation store a commit needs.
type Store interface {
	Active() (chat.Contact, bool)
	AppendMessage(ctx context.Context, contactID string, msg chat.Message) ([]chat.Message, bool)
}

// Replier schedules the simulated answer to a sent message.
type Replier interface {
	Schedule(contactID, contactName string)
}

// BlobStore keeps attachment bytes addressable by URL.
type BlobStore interface {
	Put(name, contentType string, r io.Reader) (media.Blob, error)
}

// Options wires the composer's collaborators. Nil fields fall back to
// no-op implementations.
type Options struct {
	Notifier    notify.Notifier
	Replier     Replier
	Recorder    media.Recorder
	Blobs       BlobStore
	SenderName  string
	SenderEmail string
}

// Composer holds the message being written and commits it to the store.
type Composer struct {
	store Store
	opts  Options

	mu    sync.Mutex
	state State
}

// New creates an empty composer bound to store.
func New(store Store, opts Options) *Composer {
	if opts.Notifier == nil {
		opts.Notifier = notify.Nop{}
	}
	if opts.Recorder == nil {
		opts.Recorder = media.UnavailableRecorder{}
	}
	if opts.Blobs == nil {
		opts.Blobs = media.NewBlobStore(0)
	}
	return &Composer{store: store, opts: opts}
}

// State returns a snapshot of the composer.
func (c *Composer) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshot()
}

// SetText replaces the input text.
func (c *Composer) SetText(text string) {
	c.mu.Lock()
	c.state.Input = text
	c.mu.Unlock()
}

// AppendEmoji adds a glyph chosen in the emoji picker to the input.
func (c *Composer) AppendEmoji(glyph string) {
	c.mu.Lock()
	c.state.Input += glyph
	c.mu.Unlock()
}

// SetFile selects an attachment; nil clears it.
func (c *Composer) SetFile(file *Attachment) {
	c.mu.Lock()
	if file != nil {
		copied := *file
		file = &copied
	}
	c.state.File = file
	c.mu.Unlock()
}

// SetAudio selects a recorded voice clip by URL.
func (c *Composer) SetAudio(url string) {
	c.mu.Lock()
	c.state.AudioURL = url
	c.mu.Unlock()
}

// ToggleEmojiPicker opens or closes the picker and reports the new state.
func (c *Composer) ToggleEmojiPicker() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state.EmojiPickerOpen = !c.state.EmojiPickerOpen
	return c.state.EmojiPickerOpen
}

// ClearError dismisses a capture error.
func (c *Composer) ClearError() {
	c.mu.Lock()
	c.state.Err = ""
	c.mu.Unlock()
}

// AttachFile stores r as a blob and selects it, as a file picker or a drop
// would.
func (c *Composer) AttachFile(name, contentType string, r io.Reader) (Attachment, error) {
	blob, err := c.opts.Blobs.Put(name, contentType, r)
	if err != nil {
		return Attachment{}, fmt.Errorf("store attachment: %w", err)
	}
	att := Attachment{URL: blob.URL(), Name: name, ContentType: blob.ContentType}
	c.SetFile(&att)
	return att, nil
}

// AttachAudio stores an encoded voice clip and selects it.
func (c *Composer) AttachAudio(contentType string, r io.Reader) (string, error) {
	blob, err := c.opts.Blobs.Put(media.VoiceFileName, contentType, r)
	if err != nil {
		return "", fmt.Errorf("store recording: %w", err)
	}
	c.SetAudio(blob.URL())
	return blob.URL(), nil
}

// StartRecording begins voice capture. A capture failure is kept in the
// composer's error state so the user can retry.
func (c *Composer) StartRecording(ctx context.Context) error {
	c.mu.Lock()
	if c.state.Recording {
		c.mu.Unlock()
		return ErrAlreadyRecording
	}
	c.state.Recording = true
	c.state.Err = ""
	c.mu.Unlock()

	if err := c.opts.Recorder.Start(ctx); err != nil {
		c.fail(err)
		return err
	}
	return nil
}

// StopRecording ends capture and selects the recording as the voice clip.
func (c *Composer) StopRecording(ctx context.Context) error {
	c.mu.Lock()
	if !c.state.Recording {
		c.mu.Unlock()
		return ErrNotRecording
	}
	c.state.Recording = false
	c.mu.Unlock()

	contentType, audio, err := c.opts.Recorder.Stop(ctx)
	if err != nil {
		c.fail(err)
		return err
	}
	if _, err := c.AttachAudio(contentType, audio); err != nil {
		c.fail(err)
		return err
	}
	return nil
}

// Commit turns the composer state into a message on the active contact.
// With nothing to send it does nothing and reports false. After a commit
// the input is cleared and the notification and simulated reply are started
// in the background; neither can undo the commit.
func (c *Composer) Commit(ctx context.Context) (chat.Message, bool) {
	c.mu.Lock()
	if c.state.Empty() {
		c.mu.Unlock()
		return chat.Message{}, false
	}

	contact, ok := c.store.Active()
	if !ok {
		c.mu.Unlock()
		return chat.Message{}, false
	}

	thread, ok := c.store.AppendMessage(ctx, contact.ID, buildMessage(c.state))
	if !ok {
		c.mu.Unlock()
		return chat.Message{}, false
	}
	committed := thread[len(thread)-1]

	c.state.Input = ""
	c.state.File = nil
	c.state.AudioURL = ""
	c.state.EmojiPickerOpen = false
	c.mu.Unlock()

	c.opts.Notifier.Notify(ctx, notify.Notification{
		Name:    c.opts.SenderName,
		Email:   c.opts.SenderEmail,
		Message: committed.Text,
	})
	if c.opts.Replier != nil {
		c.opts.Replier.Schedule(contact.ID, contact.Name)
	}

	log.Printf("[composer] committed message id=%d contact=%s", committed.ID, contact.ID)
	return committed, true
}

func (c *Composer) fail(err error) {
	log.Printf("[composer] capture failed: %v", err)
	c.mu.Lock()
	c.state.Recording = false
	c.state.Err = err.Error()
	c.mu.Unlock()
}

// snapshot copies state; caller holds c.mu.
func (c *Composer) snapshot() State {
	st := c.state
	if st.File != nil {
		copied := *st.File
		st.File = &copied
	}
	return st
}

func buildMessage(st State) chat.Message {
	msg := chat.Message{
		Text:      st.Input,
		Sender:    chat.SenderMe,
		Reactions: []string{},
	}

	switch {
	case st.File != nil:
		msg.File = st.File.URL
		msg.FileName = st.File.Name
	case st.AudioURL != "":
		msg.File = st.AudioURL
		msg.FileName = media.VoiceFileName
	}

	if strings.TrimSpace(msg.Text) == "" {
		switch {
		case st.File != nil:
			msg.Text = attachmentText
		case st.AudioURL != "":
			msg.Text = voiceText
		}
	}
	return msg
}
