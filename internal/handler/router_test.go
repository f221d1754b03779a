package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	chatmodel "github.com/zhouzirui/z-chat/backend/internal/model/chat"
	chatService "github.com/zhouzirui/z-chat/backend/internal/service/chat"
	"github.com/zhouzirui/z-chat/backend/internal/service/composer"
	mediaService "github.com/zhouzirui/z-chat/backend/internal/service/media"
	relayService "github.com/zhouzirui/z-chat/backend/internal/service/relay"
)

type stubRelay struct{}

func (stubRelay) Send(context.Context, relayService.Submission) (json.RawMessage, error) {
	return json.RawMessage(`{"id":1}`), nil
}

func newDeps(relay bool) Deps {
	store := chatService.NewStore(chatmodel.Seed())
	blobs := mediaService.NewBlobStore(0)
	deps := Deps{
		Store:    store,
		Composer: composer.New(store, composer.Options{Blobs: blobs}),
		Blobs:    blobs,
	}
	if relay {
		deps.Relay = stubRelay{}
	}
	return deps
}

func TestRouterMountsRelayAndAPI(t *testing.T) {
	r := NewRouter(newDeps(true))

	resp := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/send-email", bytes.NewReader([]byte(`{"name":"Alice","email":"a@x.com","message":"hi"}`)))
	r.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected relay 200, got %d", resp.Code)
	}

	resp = httptest.NewRecorder()
	r.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/api/contacts", nil))
	if resp.Code != http.StatusOK {
		t.Fatalf("expected contacts 200, got %d", resp.Code)
	}

	resp = httptest.NewRecorder()
	r.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if resp.Code != http.StatusOK {
		t.Fatalf("expected healthz 200, got %d", resp.Code)
	}
}

func TestRouterRelayUnconfigured(t *testing.T) {
	r := NewRouter(newDeps(false))

	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, httptest.NewRequest(http.MethodPost, "/send-email", bytes.NewReader([]byte(`{}`))))
	if resp.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", resp.Code)
	}
}

func TestRouterCORSPreflight(t *testing.T) {
	r := NewRouter(newDeps(true))

	req := httptest.NewRequest(http.MethodOptions, "/send-email", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)

	if got := resp.Header().Get("Access-Control-Allow-Origin"); got != "http://localhost:3000" {
		t.Fatalf("unexpected allow origin: %q", got)
	}
}
