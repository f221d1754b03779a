package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/zhouzirui/z-chat/backend/internal/handler/chat"
	"github.com/zhouzirui/z-chat/backend/internal/handler/media"
	"github.com/zhouzirui/z-chat/backend/internal/handler/relay"
	"github.com/zhouzirui/z-chat/backend/internal/handler/stream"
	middlewarePkg "github.com/zhouzirui/z-chat/backend/internal/middleware"
	chatService "github.com/zhouzirui/z-chat/backend/internal/service/chat"
	"github.com/zhouzirui/z-chat/backend/internal/service/composer"
	mediaService "github.com/zhouzirui/z-chat/backend/internal/service/media"
	"github.com/zhouzirui/z-chat/backend/pkg/utils"
)

// Deps groups the services the HTTP layer is built from. Relay and Typing
// may be nil.
type Deps struct {
	Store     *chatService.Store
	Composer  *composer.Composer
	Blobs     *mediaService.BlobStore
	Relay     relay.Sender
	Typing    chat.TypingTracker
	MaxUpload int64
}

// NewRouter wires HTTP routes to core services.
func NewRouter(deps Deps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middlewarePkg.CORS)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		utils.RespondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	if deps.Relay != nil {
		relay.New(deps.Relay).RegisterRoutes(r)
	} else {
		r.Post("/send-email", func(w http.ResponseWriter, _ *http.Request) {
			utils.RespondFailure(w, http.StatusServiceUnavailable, "email relay not configured")
		})
	}

	r.Route("/api", func(api chi.Router) {
		chat.New(deps.Store, deps.Composer, deps.Typing, deps.MaxUpload).RegisterRoutes(api)
		media.New(deps.Blobs).RegisterRoutes(api)
		stream.New(deps.Store).RegisterRoutes(api)
	})

	return r
}
