package api

import (
	"net/http"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/rpupo63/blog-backend/models"
	"github.com/rpupo63/blog-backend/services"
)

type statsHandler struct {
	responder Responder
	logger    zerolog.Logger
	posts     *services.PostService
	contacts  *services.ContactService
}

func newStatsHandler(posts *services.PostService, contacts *services.ContactService) statsHandler {
	logger := log.With().Str("handlerName", "statsHandler").Logger()

	return statsHandler{
		responder: NewResponder(logger),
		logger:    logger,
		posts:     posts,
		contacts:  contacts,
	}
}

func (h statsHandler) getStats() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		stats, err := h.posts.Stats(r.Context())
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		h.responder.WriteJSON(w, stats)
	}
}

// getDashboard loads the post statistics and the unread contact count concurrently.
func (h statsHandler) getDashboard() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var (
			stats  models.PostStats
			unread int64
		)

		g, ctx := errgroup.WithContext(r.Context())
		g.Go(func() error {
			var err error
			stats, err = h.posts.Stats(ctx)
			return err
		})
		g.Go(func() error {
			var err error
			unread, err = h.contacts.CountUnread(ctx)
			return err
		})
		if err := g.Wait(); err != nil {
			h.responder.WriteError(w, err)
			return
		}

		h.responder.WriteJSON(w, DashboardResponse{Stats: stats, UnreadCount: unread})
	}
}
