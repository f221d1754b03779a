package media

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	mediaService "github.com/zhouzirui/z-chat/backend/internal/service/media"
)

func TestGetBlob(t *testing.T) {
	blobs := mediaService.NewBlobStore(0)
	blob, err := blobs.Put("note.txt", "text/plain; charset=utf-8", strings.NewReader("hello"))
	if err != nil {
		t.Fatalf("Put err: %v", err)
	}

	r := chi.NewRouter()
	New(blobs).RegisterRoutes(r)

	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/blobs/"+blob.ID, nil))

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	if resp.Body.String() != "hello" {
		t.Fatalf("unexpected body: %q", resp.Body.String())
	}
	if ct := resp.Header().Get("Content-Type"); ct != "text/plain; charset=utf-8" {
		t.Fatalf("unexpected content type: %s", ct)
	}
}

func TestGetBlobNotFound(t *testing.T) {
	r := chi.NewRouter()
	New(mediaService.NewBlobStore(0)).RegisterRoutes(r)

	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/blobs/missing", nil))
	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.Code)
	}
}
