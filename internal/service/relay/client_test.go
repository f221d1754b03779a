package relay

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/zhouzirui/z-chat/backend/internal/config"
)

func testConfig(endpoint string) config.RelayConfig {
	return config.RelayConfig{
		ServiceID:  "service_1",
		TemplateID: "template_1",
		PublicKey:  "public_1",
		Endpoint:   endpoint,
	}
}

func TestClientSendReshapesPayload(t *testing.T) {
	var got sendRequest
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("expected POST, got %s", r.Method)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode upstream body: %v", err)
		}
		w.Write([]byte(`{"id":1}`))
	}))
	defer upstream.Close()

	client := NewClient(testConfig(upstream.URL), upstream.Client())
	data, err := client.Send(context.Background(), Submission{Name: "Alice", Email: "a@x.com", Message: "hi"})
	if err != nil {
		t.Fatalf("Send err: %v", err)
	}

	if string(data) != `{"id":1}` {
		t.Fatalf("unexpected data: %s", data)
	}
	if got.ServiceID != "service_1" || got.TemplateID != "template_1" || got.UserID != "public_1" {
		t.Fatalf("unexpected identifiers: %+v", got)
	}
	if got.AccessToken != "" {
		t.Fatalf("expected no access token, got %q", got.AccessToken)
	}
	want := TemplateParams{FromName: "Alice", FromEmail: "a@x.com", Message: "hi"}
	if got.TemplateParams != want {
		t.Fatalf("unexpected template params: %+v", got.TemplateParams)
	}
}

func TestClientSendForwardsPrivateKey(t *testing.T) {
	var got sendRequest
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&got)
		w.Write([]byte("OK"))
	}))
	defer upstream.Close()

	cfg := testConfig(upstream.URL)
	cfg.PrivateKey = "secret"
	data, err := NewClient(cfg, upstream.Client()).Send(context.Background(), Submission{Message: "hi"})
	if err != nil {
		t.Fatalf("Send err: %v", err)
	}
	if got.AccessToken != "secret" {
		t.Fatalf("expected access token forwarded, got %q", got.AccessToken)
	}
	if string(data) != `"OK"` {
		t.Fatalf("expected plain text body as JSON string, got %s", data)
	}
}

func TestClientSendUpstreamError(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error":"template not found"}`))
	}))
	defer upstream.Close()

	_, err := NewClient(testConfig(upstream.URL), upstream.Client()).Send(context.Background(), Submission{Message: "hi"})

	var upErr *UpstreamError
	if !errors.As(err, &upErr) {
		t.Fatalf("expected UpstreamError, got %v", err)
	}
	if upErr.StatusCode != http.StatusBadRequest {
		t.Fatalf("unexpected status: %d", upErr.StatusCode)
	}
	if string(upErr.Body) != `{"error":"template not found"}` {
		t.Fatalf("unexpected body: %s", upErr.Body)
	}
}

func TestUpstreamErrorWithoutBody(t *testing.T) {
	err := &UpstreamError{StatusCode: http.StatusBadGateway, Body: AsJSON(nil)}
	if got := err.Error(); got != "email api returned status 502" {
		t.Fatalf("unexpected message: %q", got)
	}
}

func TestClientSendNotConfigured(t *testing.T) {
	client := NewClient(config.RelayConfig{}, nil)
	if _, err := client.Send(context.Background(), Submission{}); !errors.Is(err, ErrNotConfigured) {
		t.Fatalf("expected ErrNotConfigured, got %v", err)
	}
}

func TestAsJSON(t *testing.T) {
	cases := map[string]string{
		"":           "null",
		"OK":         `"OK"`,
		` {"a":1} `:  `{"a":1}`,
		"rate limit": `"rate limit"`,
	}
	for in, want := range cases {
		if got := string(AsJSON([]byte(in))); got != want {
			t.Fatalf("AsJSON(%q) = %s, want %s", in, got, want)
		}
	}
}
