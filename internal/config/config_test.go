package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{"PORT", "REPLY_DELAY_MS", "BOT_REPLIES", "NOTIFY_MODE", "NOTIFY_NAME", "NOTIFY_RELAY_URL", "EMAILJS_ENDPOINT", "EMAILJS_TIMEOUT", "MAX_UPLOAD_MB"} {
		t.Setenv(key, "")
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load err: %v", err)
	}
	if cfg.Server.Addr != ":5000" {
		t.Fatalf("unexpected addr: %s", cfg.Server.Addr)
	}
	if cfg.Chat.ReplyDelay != time.Second {
		t.Fatalf("unexpected reply delay: %s", cfg.Chat.ReplyDelay)
	}
	if !cfg.Chat.BotReplies {
		t.Fatal("expected bot replies enabled by default")
	}
	if cfg.Notify.Mode != NotifyOff || cfg.Notify.Name != "Teddy" {
		t.Fatalf("unexpected notify config: %+v", cfg.Notify)
	}
	if cfg.Notify.RelayURL != "http://localhost:5000/send-email" {
		t.Fatalf("unexpected relay url: %s", cfg.Notify.RelayURL)
	}
	if cfg.Relay.Endpoint != DefaultEmailEndpoint {
		t.Fatalf("unexpected endpoint: %s", cfg.Relay.Endpoint)
	}
}

func TestLoadServerConfigAcceptsHostPort(t *testing.T) {
	t.Setenv("PORT", "127.0.0.1:9000")
	server, err := loadServerConfig()
	if err != nil {
		t.Fatalf("loadServerConfig err: %v", err)
	}
	if server.Addr != "127.0.0.1:9000" {
		t.Fatalf("unexpected addr: %s", server.Addr)
	}
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	cases := map[string]string{
		"REPLY_DELAY_MS": "soon",
		"NOTIFY_MODE":    "pigeon",
		"BOT_REPLIES":    "maybe",
		"PORT":           "80 80",
	}
	for key, value := range cases {
		t.Run(key, func(t *testing.T) {
			t.Setenv(key, value)
			if _, err := Load(); err == nil {
				t.Fatalf("expected error for %s=%q", key, value)
			}
		})
	}
}

func TestRelayConfigEnabled(t *testing.T) {
	cfg := RelayConfig{ServiceID: "svc", TemplateID: "tpl"}
	if cfg.Enabled() {
		t.Fatal("expected relay disabled without public key")
	}
	cfg.PublicKey = "pub"
	if !cfg.Enabled() {
		t.Fatal("expected relay enabled")
	}
}
