package stream

import (
	"bufio"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	chatmodel "github.com/zhouzirui/z-chat/backend/internal/model/chat"
	chatservice "github.com/zhouzirui/z-chat/backend/internal/service/chat"
)

func setupServer(t *testing.T) (*httptest.Server, *chatservice.Store) {
	t.Helper()
	store := chatservice.NewStore(chatmodel.Seed())
	r := chi.NewRouter()
	New(store).RegisterRoutes(r)
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv, store
}

func TestSSEStreamsStoreEvents(t *testing.T) {
	srv, store := setupServer(t)

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	req, _ := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL+"/events", nil)
	resp, err := srv.Client().Do(req)
	if err != nil {
		t.Fatalf("GET /events err: %v", err)
	}
	defer resp.Body.Close()

	if ct := resp.Header.Get("Content-Type"); ct != "text/event-stream" {
		t.Fatalf("unexpected content type: %s", ct)
	}

	reader := bufio.NewReader(resp.Body)
	readEvent := func() (string, string) {
		var name, data string
		for {
			line, err := reader.ReadString('\n')
			if err != nil {
				t.Fatalf("read stream: %v", err)
			}
			line = strings.TrimRight(line, "\n")
			switch {
			case strings.HasPrefix(line, "event: "):
				name = strings.TrimPrefix(line, "event: ")
			case strings.HasPrefix(line, "data: "):
				data = strings.TrimPrefix(line, "data: ")
			case line == "" && name != "":
				return name, data
			}
		}
	}

	if name, _ := readEvent(); name != "status" {
		t.Fatalf("expected status event first, got %s", name)
	}

	store.AppendMessage(context.Background(), "bob", chatmodel.Message{Text: "hi there", Sender: chatmodel.SenderMe})

	name, data := readEvent()
	if name != string(chatmodel.EventMessage) {
		t.Fatalf("expected message event, got %s", name)
	}
	if !strings.Contains(data, `"contactId":"bob"`) || !strings.Contains(data, "hi there") {
		t.Fatalf("unexpected payload: %s", data)
	}
}

func TestWebSocketStreamsStoreEvents(t *testing.T) {
	srv, store := setupServer(t)

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial err: %v", err)
	}
	defer conn.Close()
	conn.SetReadDeadline(time.Now().Add(3 * time.Second))

	var hello outgoingMessage
	if err := conn.ReadJSON(&hello); err != nil {
		t.Fatalf("read connected: %v", err)
	}
	if hello.Type != "connected" {
		t.Fatalf("expected connected, got %s", hello.Type)
	}

	if _, err := store.AddContact(context.Background(), "Dave"); err != nil {
		t.Fatalf("AddContact err: %v", err)
	}

	var got struct {
		Type string          `json:"type"`
		Data chatmodel.Event `json:"data"`
	}
	if err := conn.ReadJSON(&got); err != nil {
		t.Fatalf("read event: %v", err)
	}
	if got.Type != string(chatmodel.EventContactAdded) || got.Data.Contact == nil || got.Data.Contact.Name != "Dave" {
		t.Fatalf("unexpected event: %+v", got)
	}
}
