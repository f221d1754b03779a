package chat

import (
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"

	"github.com/zhouzirui/z-chat/backend/internal/service/composer"
	"github.com/zhouzirui/z-chat/backend/internal/service/media"
	"github.com/zhouzirui/z-chat/backend/pkg/utils"
)

func (h *Handler) handleSetText(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Text string `json:"text"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	h.composer.SetText(payload.Text)
	utils.RespondJSON(w, http.StatusOK, h.composer.State())
}

func (h *Handler) handleAppendEmoji(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Emoji string `json:"emoji"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil || payload.Emoji == "" {
		utils.RespondError(w, http.StatusBadRequest, "emoji is required")
		return
	}
	h.composer.AppendEmoji(payload.Emoji)
	utils.RespondJSON(w, http.StatusOK, h.composer.State())
}

func (h *Handler) handleToggleEmojiPicker(w http.ResponseWriter, r *http.Request) {
	h.composer.ToggleEmojiPicker()
	utils.RespondJSON(w, http.StatusOK, h.composer.State())
}

// handleAttachFile 接收文件选择或拖拽上传
func (h *Handler) handleAttachFile(w http.ResponseWriter, r *http.Request) {
	h.receiveUpload(w, r, "file", func(name, contentType string, file io.Reader) error {
		_, err := h.composer.AttachFile(name, contentType, file)
		return err
	})
}

// handleAttachAudio 接收浏览器录制好的语音
func (h *Handler) handleAttachAudio(w http.ResponseWriter, r *http.Request) {
	h.receiveUpload(w, r, "audio", func(_ string, contentType string, file io.Reader) error {
		_, err := h.composer.AttachAudio(contentType, file)
		return err
	})
}

func (h *Handler) handleClearFile(w http.ResponseWriter, r *http.Request) {
	h.composer.SetFile(nil)
	utils.RespondJSON(w, http.StatusOK, h.composer.State())
}

func (h *Handler) handleClearAudio(w http.ResponseWriter, r *http.Request) {
	h.composer.SetAudio("")
	utils.RespondJSON(w, http.StatusOK, h.composer.State())
}

func (h *Handler) handleStartRecording(w http.ResponseWriter, r *http.Request) {
	h.respondRecording(w, h.composer.StartRecording(r.Context()))
}

func (h *Handler) handleStopRecording(w http.ResponseWriter, r *http.Request) {
	h.respondRecording(w, h.composer.StopRecording(r.Context()))
}

func (h *Handler) handleClearError(w http.ResponseWriter, r *http.Request) {
	h.composer.ClearError()
	utils.RespondJSON(w, http.StatusOK, h.composer.State())
}

// handleCommit 发送当前输入；没有内容时不做任何事
func (h *Handler) handleCommit(w http.ResponseWriter, r *http.Request) {
	msg, ok := h.composer.Commit(r.Context())
	if !ok {
		utils.RespondNoContent(w)
		return
	}
	utils.RespondJSON(w, http.StatusCreated, msg)
}

func (h *Handler) respondRecording(w http.ResponseWriter, err error) {
	switch {
	case err == nil:
		utils.RespondJSON(w, http.StatusOK, h.composer.State())
	case errors.Is(err, composer.ErrAlreadyRecording), errors.Is(err, composer.ErrNotRecording):
		utils.RespondError(w, http.StatusConflict, err.Error())
	default:
		// capture failures live in the composer state; the client shows them.
		utils.RespondJSON(w, http.StatusOK, h.composer.State())
	}
}

func (h *Handler) receiveUpload(w http.ResponseWriter, r *http.Request, field string, attach func(name, contentType string, file io.Reader) error) {
	if h.maxUpload > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, h.maxUpload+1<<20)
	}
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile(field)
	if err != nil {
		utils.RespondError(w, http.StatusBadRequest, field+" field is required")
		return
	}
	defer file.Close()

	if err := attach(header.Filename, header.Header.Get("Content-Type"), file); err != nil {
		status := http.StatusInternalServerError
		switch {
		case errors.Is(err, media.ErrBlobTooLarge):
			status = http.StatusRequestEntityTooLarge
		case errors.Is(err, media.ErrEmptyBlob):
			status = http.StatusBadRequest
		}
		log.Printf("[chat] attach %s failed: %v", field, err)
		utils.RespondError(w, status, err.Error())
		return
	}
	utils.RespondJSON(w, http.StatusOK, h.composer.State())
}
