package chat

import (
	"context"
	"errors"
	"iter"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/zhouzirui/z-chat/backend/internal/model/chat"
)

var ErrNameRequired = errors.New("contact name is required")

const subscriberBuffer = 32

// Store is the authoritative in-memory collection of contacts and their
// message threads. Threads are append-only; reactions are the only mutation
// an existing message ever sees.
type Store struct {
	mu       sync.RWMutex
	contacts []*chat.Contact
	index    map[string]int
	activeID string
	lastID   int64
	now      func() time.Time

	subMu   sync.Mutex
	subs    map[int]chan chat.Event
	nextSub int
}

// NewStore seeds a store with the given contacts. The first contact becomes
// active. Contacts repeating an earlier id are skipped.
func NewStore(seed []chat.Contact) *Store {
	s := &Store{
		index: make(map[string]int, len(seed)),
		now:   time.Now,
		subs:  make(map[int]chan chat.Event),
	}

	for _, c := range seed {
		if _, dup := s.index[c.ID]; dup {
			log.Printf("[chat] skipping duplicate seed contact id=%s", c.ID)
			continue
		}
		clone := c.Clone()
		s.index[c.ID] = len(s.contacts)
		s.contacts = append(s.contacts, &clone)
	}
	if len(s.contacts) > 0 {
		s.activeID = s.contacts[0].ID
	}
	return s
}

// SelectContact makes id the active contact. Unknown ids leave the selection
// unchanged and report false.
func (s *Store) SelectContact(_ context.Context, id string) bool {
	s.mu.Lock()
	if _, ok := s.index[id]; !ok {
		s.mu.Unlock()
		return false
	}
	s.activeID = id
	s.Publish(chat.Event{Type: chat.EventActive, ContactID: id})
	s.mu.Unlock()
	return true
}

// Active returns the currently selected contact.
func (s *Store) Active() (chat.Contact, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c := s.lookup(s.activeID)
	if c == nil {
		return chat.Contact{}, false
	}
	return c.Clone(), true
}

// ActiveID returns the identifier of the selected contact.
func (s *Store) ActiveID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.activeID
}

// Contact returns a copy of a single contact with its thread.
func (s *Store) Contact(_ context.Context, id string) (chat.Contact, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c := s.lookup(id)
	if c == nil {
		return chat.Contact{}, false
	}
	return c.Clone(), true
}

// Contacts lists every contact in insertion order without threads.
func (s *Store) Contacts() []chat.Contact {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]chat.Contact, len(s.contacts))
	for i, c := range s.contacts {
		out[i] = c.Summary()
	}
	return out
}

// Messages returns a copy of the contact's thread.
func (s *Store) Messages(_ context.Context, contactID string) ([]chat.Message, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c := s.lookup(contactID)
	if c == nil {
		return nil, false
	}
	return cloneMessages(c.Messages), true
}

// AppendMessage stamps msg with a fresh monotonic id (and a timestamp when
// missing) and appends it to the contact's thread. It returns the updated
// thread. Unknown contacts and messages with neither text nor file are
// ignored.
func (s *Store) AppendMessage(_ context.Context, contactID string, msg chat.Message) ([]chat.Message, bool) {
	if !msg.Valid() {
		return nil, false
	}

	s.mu.Lock()
	c := s.lookup(contactID)
	if c == nil {
		s.mu.Unlock()
		return nil, false
	}

	now := s.now()
	msg.ID = s.nextMessageID(now)
	if msg.CreatedAt.IsZero() {
		msg.CreatedAt = now
	}
	if msg.Time == "" {
		msg.Time = chat.FormatTime(msg.CreatedAt)
	}
	msg = msg.Clone()
	c.Messages = append(c.Messages, msg)
	updated := cloneMessages(c.Messages)
	published := msg.Clone()
	s.Publish(chat.Event{Type: chat.EventMessage, ContactID: contactID, Message: &published})
	s.mu.Unlock()
	return updated, true
}

// AddReaction appends emoji to a message's reactions. Unknown contact or
// message ids are ignored.
func (s *Store) AddReaction(_ context.Context, contactID string, messageID int64, emoji string) bool {
	if emoji == "" {
		return false
	}

	s.mu.Lock()
	c := s.lookup(contactID)
	if c == nil {
		s.mu.Unlock()
		return false
	}
	found := false
	for i := range c.Messages {
		if c.Messages[i].ID == messageID {
			c.Messages[i].Reactions = append(c.Messages[i].Reactions, emoji)
			found = true
			break
		}
	}
	if found {
		s.Publish(chat.Event{Type: chat.EventReaction, ContactID: contactID, MessageID: messageID, Emoji: emoji})
	}
	s.mu.Unlock()
	return found
}

// AddContact creates an online contact with an empty thread.
func (s *Store) AddContact(_ context.Context, name string) (chat.Contact, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return chat.Contact{}, ErrNameRequired
	}

	s.mu.Lock()
	id := uuid.NewString()
	contact := &chat.Contact{ID: id, Name: name, Online: true, Messages: []chat.Message{}}
	s.index[id] = len(s.contacts)
	s.contacts = append(s.contacts, contact)
	summary := contact.Summary()
	s.Publish(chat.Event{Type: chat.EventContactAdded, ContactID: id, Contact: &summary})
	s.mu.Unlock()
	return contact.Clone(), nil
}

// FilterContacts yields contacts whose name contains query, ignoring case.
// The sequence reads the store each time it is ranged over and never
// modifies it; an empty query yields every contact. The query is matched as
// typed, so whitespace is significant.
func (s *Store) FilterContacts(query string) iter.Seq[chat.Contact] {
	needle := strings.ToLower(query)
	return func(yield func(chat.Contact) bool) {
		for _, c := range s.Contacts() {
			if needle != "" && !strings.Contains(strings.ToLower(c.Name), needle) {
				continue
			}
			if !yield(c) {
				return
			}
		}
	}
}

// Subscribe registers for store events. The returned function unsubscribes
// and closes the channel. Events are dropped for subscribers that fall behind.
func (s *Store) Subscribe() (<-chan chat.Event, func()) {
	ch := make(chan chat.Event, subscriberBuffer)

	s.subMu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = ch
	s.subMu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			s.subMu.Lock()
			delete(s.subs, id)
			s.subMu.Unlock()
			close(ch)
		})
	}
}

// Publish fans an event out to current subscribers without blocking.
// Store mutations publish while still holding s.mu, so subscribers see
// events in the order the mutations were applied.
func (s *Store) Publish(evt chat.Event) {
	s.subMu.Lock()
	defer s.subMu.Unlock()
	for id, ch := range s.subs {
		select {
		case ch <- evt:
		default:
			log.Printf("[chat] dropping %s event for slow subscriber %d", evt.Type, id)
		}
	}
}

func (s *Store) lookup(id string) *chat.Contact {
	i, ok := s.index[id]
	if !ok {
		return nil
	}
	return s.contacts[i]
}

// nextMessageID is millisecond based like the clock, bumped when two
// messages land in the same millisecond. Caller holds s.mu.
func (s *Store) nextMessageID(now time.Time) int64 {
	id := now.UnixMilli()
	if id <= s.lastID {
		id = s.lastID + 1
	}
	s.lastID = id
	return id
}

func cloneMessages(messages []chat.Message) []chat.Message {
	out := make([]chat.Message, len(messages))
	for i, m := range messages {
		out[i] = m.Clone()
	}
	return out
}
