package utils

import (
	"bytes"
	"encoding/json"
	"log"
	"net/http"
)

const contentTypeJSON = "application/json; charset=utf-8"

// Envelope 是 /send-email 使用的 {success, data|error} 响应结构
type Envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data,omitempty"`
	Error   json.RawMessage `json:"error,omitempty"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// RespondJSON 发送JSON响应。先完整编码，编码失败时返回 500 而不是半截的正文
func RespondJSON(w http.ResponseWriter, status int, payload any) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(payload); err != nil {
		log.Printf("failed to encode response: %v", err)
		status = http.StatusInternalServerError
		buf.Reset()
		buf.WriteString("{\"error\":\"internal error\"}\n")
	}

	w.Header().Set("Content-Type", contentTypeJSON)
	w.WriteHeader(status)
	if _, err := w.Write(buf.Bytes()); err != nil {
		log.Printf("failed to write response: %v", err)
	}
}

// RespondError 发送错误响应
func RespondError(w http.ResponseWriter, status int, message string) {
	RespondJSON(w, status, errorResponse{Error: message})
}

// RespondFailure 发送 success=false 的响应，message 作为 JSON 字符串放入 error
func RespondFailure(w http.ResponseWriter, status int, message string) {
	encoded, _ := json.Marshal(message)
	RespondJSON(w, status, Envelope{Error: encoded})
}

// RespondNoContent 用于被忽略的操作，例如内容为空的提交
func RespondNoContent(w http.ResponseWriter) {
	w.WriteHeader(http.StatusNoContent)
}
