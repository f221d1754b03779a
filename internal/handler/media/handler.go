package media

import (
	"bytes"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	mediaService "github.com/zhouzirui/z-chat/backend/internal/service/media"
	"github.com/zhouzirui/z-chat/backend/pkg/utils"
)

// Handler serves attachment blobs.
type Handler struct {
	blobs *mediaService.BlobStore
}

// New creates a blob handler.
func New(blobs *mediaService.BlobStore) *Handler {
	return &Handler{blobs: blobs}
}

// RegisterRoutes mounts GET /blobs/{blobID}.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/blobs/{blobID}", h.handleGetBlob)
}

func (h *Handler) handleGetBlob(w http.ResponseWriter, r *http.Request) {
	blob, err := h.blobs.Get(chi.URLParam(r, "blobID"))
	if err != nil {
		utils.RespondError(w, http.StatusNotFound, err.Error())
		return
	}

	w.Header().Set("Content-Type", blob.ContentType)
	w.Header().Set("Content-Disposition", "inline; filename="+strconv.Quote(blob.Name))
	http.ServeContent(w, r, blob.Name, time.Time{}, bytes.NewReader(blob.Data))
}
