package chat

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"slices"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/zhouzirui/z-chat/backend/internal/model/chat"
	chatService "github.com/zhouzirui/z-chat/backend/internal/service/chat"
	"github.com/zhouzirui/z-chat/backend/internal/service/composer"
	"github.com/zhouzirui/z-chat/backend/pkg/utils"
)

// DefaultReaction is used when a reaction request names no emoji.
const DefaultReaction = "❤️"

// TypingTracker reports pending simulated replies.
type TypingTracker interface {
	Typing(contactID string) bool
}

// Handler 聊天服务的HTTP处理器
type Handler struct {
	store     *chatService.Store
	composer  *composer.Composer
	typing    TypingTracker
	maxUpload int64
}

// New 创建聊天处理器。typing 可以为 nil。
func New(store *chatService.Store, comp *composer.Composer, typing TypingTracker, maxUpload int64) *Handler {
	return &Handler{
		store:     store,
		composer:  comp,
		typing:    typing,
		maxUpload: maxUpload,
	}
}

// RegisterRoutes 注册聊天相关的路由
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/contacts", h.handleListContacts)
	r.Post("/contacts", h.handleAddContact)
	r.Get("/contacts/active", h.handleActiveContact)
	r.Post("/contacts/{contactID}/select", h.handleSelectContact)
	r.Get("/contacts/{contactID}/messages", h.handleListMessages)
	r.Post("/contacts/{contactID}/messages/{messageID}/reactions", h.handleAddReaction)

	r.Route("/composer", func(cr chi.Router) {
		cr.Get("/", h.handleComposerState)
		cr.Put("/text", h.handleSetText)
		cr.Post("/emoji", h.handleAppendEmoji)
		cr.Post("/emoji-picker", h.handleToggleEmojiPicker)
		cr.Post("/file", h.handleAttachFile)
		cr.Delete("/file", h.handleClearFile)
		cr.Post("/audio", h.handleAttachAudio)
		cr.Delete("/audio", h.handleClearAudio)
		cr.Post("/recording/start", h.handleStartRecording)
		cr.Post("/recording/stop", h.handleStopRecording)
		cr.Delete("/error", h.handleClearError)
		cr.Post("/commit", h.handleCommit)
	})
}

type contactView struct {
	chat.Contact
	Active bool `json:"active"`
	Typing bool `json:"typing"`
}

func (h *Handler) view(c chat.Contact, activeID string) contactView {
	v := contactView{Contact: c, Active: c.ID == activeID}
	if h.typing != nil {
		v.Typing = h.typing.Typing(c.ID)
	}
	return v
}

// handleListContacts 按名称过滤联系人
func (h *Handler) handleListContacts(w http.ResponseWriter, r *http.Request) {
	activeID := h.store.ActiveID()
	views := make([]contactView, 0)
	for c := range h.store.FilterContacts(r.URL.Query().Get("q")) {
		views = append(views, h.view(c, activeID))
	}
	utils.RespondJSON(w, http.StatusOK, views)
}

// handleAddContact 新增联系人
func (h *Handler) handleAddContact(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Name string `json:"name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	contact, err := h.store.AddContact(r.Context(), payload.Name)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, chatService.ErrNameRequired) {
			status = http.StatusBadRequest
		}
		utils.RespondError(w, status, err.Error())
		return
	}

	utils.RespondJSON(w, http.StatusCreated, h.view(contact, h.store.ActiveID()))
}

// handleActiveContact 返回当前会话及其消息
func (h *Handler) handleActiveContact(w http.ResponseWriter, r *http.Request) {
	contact, ok := h.store.Active()
	if !ok {
		utils.RespondError(w, http.StatusNotFound, "no active contact")
		return
	}
	utils.RespondJSON(w, http.StatusOK, h.view(contact, contact.ID))
}

// handleSelectContact 切换当前会话
func (h *Handler) handleSelectContact(w http.ResponseWriter, r *http.Request) {
	contactID := chi.URLParam(r, "contactID")
	if !h.store.SelectContact(r.Context(), contactID) {
		utils.RespondError(w, http.StatusNotFound, "contact not found")
		return
	}
	contact, _ := h.store.Contact(r.Context(), contactID)
	utils.RespondJSON(w, http.StatusOK, h.view(contact, contactID))
}

// handleListMessages 返回联系人的消息列表
func (h *Handler) handleListMessages(w http.ResponseWriter, r *http.Request) {
	messages, ok := h.store.Messages(r.Context(), chi.URLParam(r, "contactID"))
	if !ok {
		utils.RespondError(w, http.StatusNotFound, "contact not found")
		return
	}
	utils.RespondJSON(w, http.StatusOK, messages)
}

// handleAddReaction 为消息追加表情回应
func (h *Handler) handleAddReaction(w http.ResponseWriter, r *http.Request) {
	contactID := chi.URLParam(r, "contactID")
	messageID, err := strconv.ParseInt(chi.URLParam(r, "messageID"), 10, 64)
	if err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid message id")
		return
	}

	var payload struct {
		Emoji string `json:"emoji"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil && !errors.Is(err, io.EOF) {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	emoji := strings.TrimSpace(payload.Emoji)
	if emoji == "" {
		emoji = DefaultReaction
	}

	if !h.store.AddReaction(r.Context(), contactID, messageID, emoji) {
		utils.RespondError(w, http.StatusNotFound, "message not found")
		return
	}

	messages, _ := h.store.Messages(r.Context(), contactID)
	idx := slices.IndexFunc(messages, func(m chat.Message) bool { return m.ID == messageID })
	if idx < 0 {
		utils.RespondError(w, http.StatusNotFound, "message not found")
		return
	}
	utils.RespondJSON(w, http.StatusOK, messages[idx])
}

// handleComposerState 返回输入框状态
func (h *Handler) handleComposerState(w http.ResponseWriter, r *http.Request) {
	utils.RespondJSON(w, http.StatusOK, h.composer.State())
}
