package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/rpupo63/blog-backend/errs"
	"github.com/rpupo63/blog-backend/models"
	"github.com/rpupo63/blog-backend/services"
)

// adminPostHandler manages posts of every status. Routes are behind authMiddleware.
type adminPostHandler struct {
	responder Responder
	logger    zerolog.Logger
	posts     *services.PostService
}

func newAdminPostHandler(posts *services.PostService) adminPostHandler {
	logger := log.With().Str("handlerName", "adminPostHandler").Logger()

	return adminPostHandler{
		responder: NewResponder(logger),
		logger:    logger,
		posts:     posts,
	}
}

func (h adminPostHandler) listAllPosts() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		posts, err := h.posts.ListAll(r.Context())
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		h.responder.WriteJSON(w, posts)
	}
}

// getPost returns a post of any status without counting a view.
func (h adminPostHandler) getPost() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		post, err := h.posts.GetBySlug(r.Context(), chi.URLParam(r, "slug"))
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		if post == nil {
			h.responder.WriteError(w, errs.NewNotFound("post"))
			return
		}
		h.responder.WriteJSON(w, post)
	}
}

func (h adminPostHandler) createPost() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in models.PostInput
		if err := h.responder.DecodeJSON(r, &in, "post"); err != nil {
			h.responder.WriteError(w, err)
			return
		}

		result, err := h.posts.Create(r.Context(), in)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		h.audit(r, "create", result.Post)
		h.responder.WriteJSONStatus(w, http.StatusCreated, newPostWriteResponse(result))
	}
}

// updatePost applies a partial update. PUT and PATCH share it; absent fields are kept.
func (h adminPostHandler) updatePost() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var patch models.PostPatch
		if err := h.responder.DecodeJSON(r, &patch, "post"); err != nil {
			h.responder.WriteError(w, err)
			return
		}

		result, err := h.posts.Update(r.Context(), chi.URLParam(r, "id"), patch)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		if result == nil {
			h.responder.WriteError(w, errs.NewNotFound("post"))
			return
		}

		h.audit(r, "update", result.Post)
		h.responder.WriteJSON(w, newPostWriteResponse(result))
	}
}

func (h adminPostHandler) deletePost() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")

		deleted, err := h.posts.Delete(r.Context(), id)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		if !deleted {
			h.responder.WriteError(w, errs.NewNotFound("post"))
			return
		}

		h.audit(r, "delete", &models.Post{ID: id})
		h.responder.WriteJSON(w, statusResponse{
			Status:  "success",
			Message: "post deleted successfully",
		})
	}
}

func (h adminPostHandler) audit(r *http.Request, action string, post *models.Post) {
	subject, err := ctxGetAdminSubject(r.Context())
	if err != nil {
		subject = "unknown"
	}
	h.logger.Info().
		Str("admin", subject).
		Str("action", action).
		Str("id", post.ID).
		Str("slug", post.Slug).
		Msg("Admin post change")
}
