package reply

import (
	"context"
	"testing"
	"time"

	chatmodel "github.com/zhouzirui/z-chat/backend/internal/model/chat"
	chatservice "github.com/zhouzirui/z-chat/backend/internal/service/chat"
)

// manualTimer collects timers so tests decide when they fire.
type manualTimer struct {
	delays  []time.Duration
	pending []func()
}

func (m *manualTimer) AfterFunc(d time.Duration, f func()) {
	m.delays = append(m.delays, d)
	m.pending = append(m.pending, f)
}

func (m *manualTimer) fireNext() {
	f := m.pending[0]
	m.pending = m.pending[1:]
	f()
}

func TestSchedulerAppendsReplyToBoundContact(t *testing.T) {
	ctx := context.Background()
	store := chatservice.NewStore(chatmodel.Seed())
	timer := &manualTimer{}
	scheduler := NewScheduler(store, 1000*time.Millisecond, timer.AfterFunc)

	store.SelectContact(ctx, "bob")
	scheduler.Schedule("bob", "Bob")
	store.SelectContact(ctx, "charlie")

	if !scheduler.Typing("bob") {
		t.Fatal("expected bob typing while reply pending")
	}
	timer.fireNext()

	bob, _ := store.Messages(ctx, "bob")
	if len(bob) != 1 || bob[0].Text != "Reply from Bob" || bob[0].Sender != chatmodel.SenderBot {
		t.Fatalf("unexpected bob thread: %+v", bob)
	}
	charlie, _ := store.Messages(ctx, "charlie")
	if len(charlie) != 0 {
		t.Fatalf("expected charlie untouched, got %+v", charlie)
	}
	if scheduler.Typing("bob") {
		t.Fatal("expected bob idle after reply")
	}
	if timer.delays[0] != time.Second {
		t.Fatalf("unexpected delay: %s", timer.delays[0])
	}
}

func TestSchedulerDoesNotCoalesce(t *testing.T) {
	ctx := context.Background()
	store := chatservice.NewStore(chatmodel.Seed())
	timer := &manualTimer{}
	scheduler := NewScheduler(store, time.Second, timer.AfterFunc)

	scheduler.Schedule("alice", "Alice")
	scheduler.Schedule("alice", "Alice")
	if len(timer.pending) != 2 {
		t.Fatalf("expected two independent timers, got %d", len(timer.pending))
	}

	timer.fireNext()
	if !scheduler.Typing("alice") {
		t.Fatal("expected alice still typing with one reply pending")
	}
	timer.fireNext()

	messages, _ := store.Messages(ctx, "alice")
	if len(messages) != 2 {
		t.Fatalf("expected two bot replies, got %d", len(messages))
	}
	if scheduler.Typing("alice") {
		t.Fatal("expected alice idle")
	}
}

func TestSchedulerPublishesTypingTransitions(t *testing.T) {
	store := chatservice.NewStore(chatmodel.Seed())
	events, cancel := store.Subscribe()
	defer cancel()

	timer := &manualTimer{}
	scheduler := NewScheduler(store, time.Second, timer.AfterFunc)
	scheduler.Schedule("alice", "Alice")
	timer.fireNext()

	var typing []bool
	for len(events) > 0 {
		evt := <-events
		if evt.Type == chatmodel.EventTyping {
			typing = append(typing, evt.Typing)
		}
	}
	if len(typing) != 2 || !typing[0] || typing[1] {
		t.Fatalf("unexpected typing transitions: %v", typing)
	}
}

func TestSchedulerRealTimer(t *testing.T) {
	ctx := context.Background()
	store := chatservice.NewStore(chatmodel.Seed())
	scheduler := NewScheduler(store, 10*time.Millisecond, nil)

	scheduler.Schedule("bob", "Bob")

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if messages, _ := store.Messages(ctx, "bob"); len(messages) == 1 {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("reply never arrived")
}
