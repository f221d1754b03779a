package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/zhouzirui/z-chat/backend/internal/config"
	"github.com/zhouzirui/z-chat/backend/internal/service/relay"
)

// dispatchTimeout bounds a single detached notification.
const dispatchTimeout = 15 * time.Second

// Notification is sent after a chat message is committed.
type Notification struct {
	Name    string
	Email   string
	Message string
}

// Notifier dispatches notifications without blocking. The returned channel
// yields exactly one outcome and is buffered, so callers may ignore it.
type Notifier interface {
	Notify(ctx context.Context, n Notification) <-chan error
}

// SendFunc performs one synchronous delivery.
type SendFunc func(ctx context.Context, n Notification) error

// detached runs send on its own goroutine, detached from the caller's
// cancellation, and logs the outcome.
type detached struct {
	name string
	send SendFunc
}

// Detached wraps a synchronous sender as a fire-and-forget Notifier.
func Detached(name string, send SendFunc) Notifier {
	return &detached{name: name, send: send}
}

func (d *detached) Notify(ctx context.Context, n Notification) <-chan error {
	done := make(chan error, 1)
	go func() {
		sendCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), dispatchTimeout)
		defer cancel()

		err := d.send(sendCtx, n)
		if err != nil {
			log.Printf("[notify] %s dispatch failed: %v", d.name, err)
		} else {
			log.Printf("[notify] %s dispatch sent", d.name)
		}
		done <- err
	}()
	return done
}

// Nop discards notifications.
type Nop struct{}

func (Nop) Notify(context.Context, Notification) <-chan error {
	done := make(chan error, 1)
	done <- nil
	return done
}

// NewDirect calls the email API in-process.
func NewDirect(client *relay.Client) Notifier {
	return Detached("direct", func(ctx context.Context, n Notification) error {
		_, err := client.Send(ctx, relay.Submission{Name: n.Name, Email: n.Email, Message: n.Message})
		return err
	})
}

// NewRelay posts to a relay's /send-email endpoint.
func NewRelay(url string, httpClient *http.Client) Notifier {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: dispatchTimeout}
	}
	return Detached("relay", func(ctx context.Context, n Notification) error {
		payload, err := json.Marshal(relay.Submission{Name: n.Name, Email: n.Email, Message: n.Message})
		if err != nil {
			return fmt.Errorf("marshal notification: %w", err)
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
		if err != nil {
			return fmt.Errorf("build relay request: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := httpClient.Do(req)
		if err != nil {
			return fmt.Errorf("relay request failed: %w", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
			return fmt.Errorf("relay returned status %d: %s", resp.StatusCode, bytes.TrimSpace(body))
		}
		return nil
	})
}

// FromConfig picks the notifier selected by NOTIFY_MODE. Direct mode without
// EmailJS credentials degrades to Nop.
func FromConfig(cfg config.NotifyConfig, relayCfg config.RelayConfig) Notifier {
	switch cfg.Mode {
	case config.NotifyDirect:
		if !relayCfg.Enabled() {
			log.Println("[notify] direct mode requested but EmailJS credentials missing, notifications disabled")
			return Nop{}
		}
		return NewDirect(relay.NewClient(relayCfg, nil))
	case config.NotifyRelay:
		return NewRelay(cfg.RelayURL, nil)
	default:
		return Nop{}
	}
}
