package reply

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/zhouzirui/z-chat/backend/internal/model/chat"
)

// DefaultDelay matches the typing pause before a simulated reply.
const DefaultDelay = time.Second

// Store is the subset of the conversation store the scheduler writes to.
type Store interface {
	AppendMessage(ctx context.Context, contactID string, msg chat.Message) ([]chat.Message, bool)
	Publish(evt chat.Event)
}

// AfterFunc arms a one-shot timer that calls f after d.
type AfterFunc func(d time.Duration, f func())

// RealTimer schedules with the runtime clock.
func RealTimer(d time.Duration, f func()) {
	time.AfterFunc(d, f)
}

// Scheduler produces one synthetic bot reply per scheduled send. Each reply
// is bound to the contact captured when it was scheduled; pending replies are
// never merged or cancelled.
type Scheduler struct {
	store     Store
	delay     time.Duration
	afterFunc AfterFunc

	mu       sync.Mutex
	inFlight map[string]int
}

// NewScheduler builds a scheduler. A nil afterFunc uses RealTimer.
func NewScheduler(store Store, delay time.Duration, afterFunc AfterFunc) *Scheduler {
	if afterFunc == nil {
		afterFunc = RealTimer
	}
	return &Scheduler{
		store:     store,
		delay:     delay,
		afterFunc: afterFunc,
		inFlight:  make(map[string]int),
	}
}

// Schedule moves the contact to typing and arms a reply timer.
func (s *Scheduler) Schedule(contactID, contactName string) {
	s.mu.Lock()
	s.inFlight[contactID]++
	first := s.inFlight[contactID] == 1
	s.mu.Unlock()

	if first {
		s.store.Publish(chat.Event{Type: chat.EventTyping, ContactID: contactID, Typing: true})
	}

	s.afterFunc(s.delay, func() {
		s.fire(contactID, contactName)
	})
}

// Typing reports whether a reply is pending for the contact.
func (s *Scheduler) Typing(contactID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.inFlight[contactID] > 0
}

func (s *Scheduler) fire(contactID, contactName string) {
	msg := chat.Message{
		Text:   "Reply from " + contactName,
		Sender: chat.SenderBot,
	}
	if _, ok := s.store.AppendMessage(context.Background(), contactID, msg); !ok {
		log.Printf("[reply] contact %s vanished before reply", contactID)
	}

	s.mu.Lock()
	s.inFlight[contactID]--
	idle := s.inFlight[contactID] <= 0
	if idle {
		delete(s.inFlight, contactID)
	}
	s.mu.Unlock()

	if idle {
		s.store.Publish(chat.Event{Type: chat.EventTyping, ContactID: contactID, Typing: false})
	}
}
