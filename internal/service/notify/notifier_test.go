package notify

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/zhouzirui/z-chat/backend/internal/config"
	"github.com/zhouzirui/z-chat/backend/internal/service/relay"
)

func wait(t *testing.T, ch <-chan error) error {
	t.Helper()
	select {
	case err := <-ch:
		return err
	case <-time.After(2 * time.Second):
		t.Fatal("notification outcome not delivered")
		return nil
	}
}

func TestDetachedReturnsBeforeSendCompletes(t *testing.T) {
	release := make(chan struct{})
	n := Detached("test", func(ctx context.Context, _ Notification) error {
		<-release
		return errors.New("boom")
	})

	start := time.Now()
	ch := n.Notify(context.Background(), Notification{Message: "hi"})
	if time.Since(start) > 100*time.Millisecond {
		t.Fatal("Notify blocked on delivery")
	}

	close(release)
	if err := wait(t, ch); err == nil || err.Error() != "boom" {
		t.Fatalf("expected boom, got %v", err)
	}
}

func TestDetachedSurvivesCallerCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	n := Detached("test", func(ctx context.Context, _ Notification) error {
		return ctx.Err()
	})

	cancel()
	if err := wait(t, n.Notify(ctx, Notification{})); err != nil {
		t.Fatalf("expected send context to outlive caller, got %v", err)
	}
}

func TestRelayNotifierPostsSubmission(t *testing.T) {
	var got relay.Submission
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/send-email" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		json.NewDecoder(r.Body).Decode(&got)
		w.Write([]byte(`{"success":true}`))
	}))
	defer srv.Close()

	n := NewRelay(srv.URL+"/send-email", srv.Client())
	if err := wait(t, n.Notify(context.Background(), Notification{Name: "Teddy", Message: "hello"})); err != nil {
		t.Fatalf("Notify err: %v", err)
	}
	if got.Name != "Teddy" || got.Message != "hello" {
		t.Fatalf("unexpected submission: %+v", got)
	}
}

func TestRelayNotifierReportsFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"success":false}`))
	}))
	defer srv.Close()

	if err := wait(t, NewRelay(srv.URL, srv.Client()).Notify(context.Background(), Notification{})); err == nil {
		t.Fatal("expected failure to be reported on the outcome channel")
	}
}

func TestFromConfig(t *testing.T) {
	if _, ok := FromConfig(config.NotifyConfig{Mode: config.NotifyOff}, config.RelayConfig{}).(Nop); !ok {
		t.Fatal("expected Nop for off mode")
	}
	if _, ok := FromConfig(config.NotifyConfig{Mode: config.NotifyDirect}, config.RelayConfig{}).(Nop); !ok {
		t.Fatal("expected Nop for direct mode without credentials")
	}
	if _, ok := FromConfig(config.NotifyConfig{Mode: config.NotifyRelay, RelayURL: "http://x"}, config.RelayConfig{}).(*detached); !ok {
		t.Fatal("expected detached notifier for relay mode")
	}
	if err := wait(t, Nop{}.Notify(context.Background(), Notification{})); err != nil {
		t.Fatalf("Nop returned %v", err)
	}
}
