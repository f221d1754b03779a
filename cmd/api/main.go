package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/zhouzirui/z-chat/backend/internal/config"
	"github.com/zhouzirui/z-chat/backend/internal/handler"
	chatModel "github.com/zhouzirui/z-chat/backend/internal/model/chat"
	"github.com/zhouzirui/z-chat/backend/internal/service/chat"
	"github.com/zhouzirui/z-chat/backend/internal/service/composer"
	"github.com/zhouzirui/z-chat/backend/internal/service/media"
	"github.com/zhouzirui/z-chat/backend/internal/service/notify"
	"github.com/zhouzirui/z-chat/backend/internal/service/relay"
	"github.com/zhouzirui/z-chat/backend/internal/service/reply"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Load .env file
	if err := godotenv.Load(); err != nil {
		log.Printf("warning: failed to load .env file: %v", err)
		log.Println("continuing with system environment variables only")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	seed := chatModel.Seed()
	if cfg.Chat.ContactsFile != "" {
		seed, err = chatModel.LoadContacts(cfg.Chat.ContactsFile)
		if err != nil {
			log.Fatalf("failed to load contacts: %v", err)
		}
		log.Printf("loaded %d contacts from %s", len(seed), cfg.Chat.ContactsFile)
	}

	store := chat.NewStore(seed)
	blobs := media.NewBlobStore(cfg.Chat.MaxUpload)

	opts := composer.Options{
		Notifier:    notify.FromConfig(cfg.Notify, cfg.Relay),
		Blobs:       blobs,
		SenderName:  cfg.Notify.Name,
		SenderEmail: cfg.Notify.Email,
	}
	deps := handler.Deps{
		Store:     store,
		Blobs:     blobs,
		MaxUpload: cfg.Chat.MaxUpload,
	}

	if cfg.Chat.BotReplies {
		scheduler := reply.NewScheduler(store, cfg.Chat.ReplyDelay, nil)
		opts.Replier = scheduler
		deps.Typing = scheduler
		log.Printf("simulated replies enabled, delay=%s", cfg.Chat.ReplyDelay)
	} else {
		log.Println("simulated replies disabled by configuration")
	}
	deps.Composer = composer.New(store, opts)

	if cfg.Relay.Enabled() {
		deps.Relay = relay.NewClient(cfg.Relay, nil)
		log.Println("email relay initialized successfully")
	} else {
		log.Println("EmailJS 凭证未配置，/send-email 将返回 503")
	}
	log.Printf("notification mode: %s", cfg.Notify.Mode)

	router := handler.NewRouter(deps)

	startServer(ctx, cfg.Server, router)
}

func startServer(ctx context.Context, serverCfg config.ServerConfig, router http.Handler) {
	addr := serverCfg.Addr
	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	log.Printf("chat backend listening on %s", addr)
	if err := runServer(ctx, srv); err != nil {
		log.Fatalf("server error: %v", err)
	}
}

func runServer(ctx context.Context, srv *http.Server) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
		err := <-errCh
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
