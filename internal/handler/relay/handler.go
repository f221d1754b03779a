package relay

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"

	relaysvc "github.com/zhouzirui/z-chat/backend/internal/service/relay"
	"github.com/zhouzirui/z-chat/backend/pkg/utils"
)

// Sender 抽象邮件转发，便于测试与替换实现
type Sender interface {
	Send(ctx context.Context, sub relaysvc.Submission) (json.RawMessage, error)
}

// Handler 邮件转发的HTTP处理器
type Handler struct {
	sender Sender
}

// New 创建转发处理器
func New(sender Sender) *Handler {
	return &Handler{sender: sender}
}

// RegisterRoutes 注册转发路由
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/send-email", h.handleSendEmail)
}

// handleSendEmail 将表单内容转发给邮件服务，并原样返回上游结果
func (h *Handler) handleSendEmail(w http.ResponseWriter, r *http.Request) {
	var payload relaysvc.Submission
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.RespondFailure(w, http.StatusBadRequest, "invalid request body")
		return
	}

	data, err := h.sender.Send(r.Context(), payload)
	if err != nil {
		var upErr *relaysvc.UpstreamError
		body := errorBody(err.Error())
		if errors.As(err, &upErr) && !emptyJSON(upErr.Body) {
			body = upErr.Body
		}
		log.Printf("[relay] send failed: %s", string(body))
		utils.RespondJSON(w, http.StatusInternalServerError, utils.Envelope{Error: body})
		return
	}

	utils.RespondJSON(w, http.StatusOK, utils.Envelope{Success: true, Data: data})
}

func errorBody(message string) json.RawMessage {
	encoded, _ := json.Marshal(message)
	return encoded
}

// emptyJSON reports a missing upstream body, which AsJSON encodes as null.
func emptyJSON(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null"))
}
