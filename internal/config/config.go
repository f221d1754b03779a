package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// DefaultEmailEndpoint is the EmailJS REST send endpoint.
const DefaultEmailEndpoint = "https://api.emailjs.com/api/v1.0/email/send"

// Notification delivery modes.
const (
	NotifyOff    = "off"
	NotifyDirect = "direct"
	NotifyRelay  = "relay"
)

// Config 聚合整个服务的配置项。
type Config struct {
	Server ServerConfig
	Relay  RelayConfig
	Chat   ChatConfig
	Notify NotifyConfig
}

// Load 从环境变量加载配置。
func Load() (*Config, error) {
	server, err := loadServerConfig()
	if err != nil {
		return nil, err
	}

	relay, err := loadRelayConfig()
	if err != nil {
		return nil, err
	}

	chat, err := loadChatConfig()
	if err != nil {
		return nil, err
	}

	notify, err := loadNotifyConfig(server)
	if err != nil {
		return nil, err
	}

	return &Config{Server: server, Relay: relay, Chat: chat, Notify: notify}, nil
}

// ServerConfig 描述 HTTP 服务配置。
type ServerConfig struct {
	Addr string
}

// loadServerConfig 解析服务器监听地址。
func loadServerConfig() (ServerConfig, error) {
	port := strings.TrimSpace(os.Getenv("PORT"))
	if port == "" {
		port = "5000"
	}

	if strings.Contains(port, ":") {
		// 允许用户直接传入 ":5000" 或 "127.0.0.1:5000"。
		return ServerConfig{Addr: port}, nil
	}

	if strings.Contains(port, " ") {
		return ServerConfig{}, fmt.Errorf("invalid PORT value: %q", port)
	}

	return ServerConfig{Addr: ":" + port}, nil
}

// RelayConfig 描述 EmailJS 转发所需的凭证。
type RelayConfig struct {
	ServiceID  string
	TemplateID string
	PublicKey  string
	PrivateKey string
	Endpoint   string
	Timeout    time.Duration
}

// Enabled 表示是否提供了必需的 EmailJS 标识。
func (c RelayConfig) Enabled() bool {
	return c.ServiceID != "" && c.TemplateID != "" && c.PublicKey != ""
}

func loadRelayConfig() (RelayConfig, error) {
	timeoutSeconds := 15
	if override, err := parseOptionalIntEnv("EMAILJS_TIMEOUT"); err != nil {
		return RelayConfig{}, err
	} else if override != nil {
		if *override < 1 {
			return RelayConfig{}, fmt.Errorf("invalid EMAILJS_TIMEOUT value %d: must be positive", *override)
		}
		timeoutSeconds = *override
	}

	return RelayConfig{
		ServiceID:  strings.TrimSpace(os.Getenv("EMAILJS_SERVICE_ID")),
		TemplateID: strings.TrimSpace(os.Getenv("EMAILJS_TEMPLATE_ID")),
		PublicKey:  strings.TrimSpace(os.Getenv("EMAILJS_PUBLIC_KEY")),
		PrivateKey: strings.TrimSpace(os.Getenv("EMAILJS_PRIVATE_KEY")),
		Endpoint:   getEnvOrDefault("EMAILJS_ENDPOINT", DefaultEmailEndpoint),
		Timeout:    time.Duration(timeoutSeconds) * time.Second,
	}, nil
}

// ChatConfig 描述会话模拟相关配置。
type ChatConfig struct {
	ReplyDelay   time.Duration
	BotReplies   bool
	ContactsFile string
	MaxUpload    int64
}

func loadChatConfig() (ChatConfig, error) {
	delayMs := 1000
	if override, err := parseOptionalIntEnv("REPLY_DELAY_MS"); err != nil {
		return ChatConfig{}, err
	} else if override != nil {
		if *override < 0 {
			return ChatConfig{}, fmt.Errorf("invalid REPLY_DELAY_MS value %d: must not be negative", *override)
		}
		delayMs = *override
	}

	botReplies, err := parseBoolEnv("BOT_REPLIES", true)
	if err != nil {
		return ChatConfig{}, err
	}

	maxUploadMB := 10
	if override, err := parseOptionalIntEnv("MAX_UPLOAD_MB"); err != nil {
		return ChatConfig{}, err
	} else if override != nil && *override > 0 {
		maxUploadMB = *override
	}

	return ChatConfig{
		ReplyDelay:   time.Duration(delayMs) * time.Millisecond,
		BotReplies:   botReplies,
		ContactsFile: strings.TrimSpace(os.Getenv("CONTACTS_FILE")),
		MaxUpload:    int64(maxUploadMB) << 20,
	}, nil
}

// NotifyConfig 描述发送消息后的邮件通知方式。
type NotifyConfig struct {
	Mode     string
	RelayURL string
	Name     string
	Email    string
}

func loadNotifyConfig(server ServerConfig) (NotifyConfig, error) {
	mode := strings.ToLower(getEnvOrDefault("NOTIFY_MODE", NotifyOff))
	switch mode {
	case NotifyOff, NotifyDirect, NotifyRelay:
	default:
		return NotifyConfig{}, fmt.Errorf("invalid NOTIFY_MODE value %q: want off, direct or relay", mode)
	}

	return NotifyConfig{
		Mode:     mode,
		RelayURL: getEnvOrDefault("NOTIFY_RELAY_URL", defaultRelayURL(server.Addr)),
		Name:     getEnvOrDefault("NOTIFY_NAME", "Teddy"),
		Email:    strings.TrimSpace(os.Getenv("NOTIFY_EMAIL")),
	}, nil
}

func defaultRelayURL(addr string) string {
	host := addr
	if strings.HasPrefix(host, ":") {
		host = "localhost" + host
	}
	return "http://" + host + "/send-email"
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

func parseBoolEnv(key string, defaultValue bool) (bool, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return defaultValue, nil
	}

	val, err := strconv.ParseBool(raw)
	if err != nil {
		return false, fmt.Errorf("invalid %s value %q: %w", key, raw, err)
	}
	return val, nil
}

func parseOptionalIntEnv(key string) (*int, error) {
	raw, ok := os.LookupEnv(key)
	if !ok {
		return nil, nil
	}

	value := strings.TrimSpace(raw)
	if value == "" {
		return nil, nil
	}

	val, err := strconv.Atoi(value)
	if err != nil {
		return nil, fmt.Errorf("invalid %s value %q: %w", key, value, err)
	}
	return &val, nil
}
