package api

import (
	"net/http"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/rpupo63/blog-backend/config"
	"github.com/rpupo63/blog-backend/markdown"
	"github.com/rpupo63/blog-backend/services"
)

// initializeHandlers creates and returns all handlers organized in a routeHandlers struct
func initializeHandlers(posts *services.PostService, contacts *services.ContactService, cfg config.Config, startupTime time.Time) *routeHandlers {
	issuer := newTokenIssuer(cfg.JWTSecret)

	return &routeHandlers{
		healthHandler:    newHealthHandler(startupTime),
		postHandler:      newPostHandler(posts, markdown.NewRenderer()),
		adminPostHandler: newAdminPostHandler(posts),
		contactHandler:   newContactHandler(contacts),
		statsHandler:     newStatsHandler(posts, contacts),
		authHandler:      newAuthHandler(issuer, cfg.AdminPasswordHash),
	}
}

type healthHandler struct {
	responder   Responder
	startupTime time.Time
}

func newHealthHandler(startupTime time.Time) healthHandler {
	return healthHandler{
		responder:   NewResponder(log.With().Str("handlerName", "healthHandler").Logger()),
		startupTime: startupTime,
	}
}

type healthResponse struct {
	Status        string `json:"status"`
	UptimeSeconds int64  `json:"uptimeSeconds"`
}

func (h healthHandler) health() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		h.responder.WriteJSON(w, healthResponse{
			Status:        "ok",
			UptimeSeconds: int64(time.Since(h.startupTime).Seconds()),
		})
	}
}
