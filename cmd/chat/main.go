package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/joho/godotenv"
	"github.com/zhouzirui/z-chat/backend/internal/config"
	chatModel "github.com/zhouzirui/z-chat/backend/internal/model/chat"
	"github.com/zhouzirui/z-chat/backend/internal/service/chat"
	"github.com/zhouzirui/z-chat/backend/internal/service/composer"
	"github.com/zhouzirui/z-chat/backend/internal/service/media"
	"github.com/zhouzirui/z-chat/backend/internal/service/notify"
	"github.com/zhouzirui/z-chat/backend/internal/service/reply"
	"github.com/zhouzirui/z-chat/backend/internal/ui"
)

func main() {
	logPath := flag.String("log", "", "write logs to this file instead of discarding them")
	flag.Parse()

	// 全屏界面下标准输出被占用，日志写入文件或丢弃。
	if *logPath != "" {
		f, err := tea.LogToFile(*logPath, "chat")
		if err != nil {
			fmt.Fprintf(os.Stderr, "open log file: %v\n", err)
			os.Exit(1)
		}
		defer f.Close()
	} else {
		log.SetOutput(io.Discard)
	}

	if err := godotenv.Load(); err != nil {
		log.Printf("warning: failed to load .env file: %v", err)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	seed := chatModel.Seed()
	if cfg.Chat.ContactsFile != "" {
		seed, err = chatModel.LoadContacts(cfg.Chat.ContactsFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to load contacts: %v\n", err)
			os.Exit(1)
		}
	}

	store := chat.NewStore(seed)
	opts := composer.Options{
		Notifier:    notify.FromConfig(cfg.Notify, cfg.Relay),
		Blobs:       media.NewBlobStore(cfg.Chat.MaxUpload),
		SenderName:  cfg.Notify.Name,
		SenderEmail: cfg.Notify.Email,
	}
	deps := ui.Deps{Store: store, DarkMode: lipgloss.HasDarkBackground()}
	if cfg.Chat.BotReplies {
		scheduler := reply.NewScheduler(store, cfg.Chat.ReplyDelay, nil)
		opts.Replier = scheduler
		deps.Typing = scheduler
	}
	deps.Composer = composer.New(store, opts)

	model := ui.NewModel(deps)
	defer model.Close()

	p := tea.NewProgram(model, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
}
