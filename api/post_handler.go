package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/rpupo63/blog-backend/errs"
	"github.com/rpupo63/blog-backend/markdown"
	"github.com/rpupo63/blog-backend/models"
	"github.com/rpupo63/blog-backend/services"
)

// postHandler serves published posts to readers.
type postHandler struct {
	responder Responder
	logger    zerolog.Logger
	posts     *services.PostService
	renderer  *markdown.Renderer
}

func newPostHandler(posts *services.PostService, renderer *markdown.Renderer) postHandler {
	logger := log.With().Str("handlerName", "postHandler").Logger()

	return postHandler{
		responder: NewResponder(logger),
		logger:    logger,
		posts:     posts,
		renderer:  renderer,
	}
}

// listPosts returns published posts, newest first. ?tag= filters by tag and ?q= searches.
func (h postHandler) listPosts() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		query := r.URL.Query()

		var (
			posts []models.Post
			err   error
		)
		switch {
		case query.Get("tag") != "":
			posts, err = h.posts.ListByTag(r.Context(), query.Get("tag"))
		case query.Has("q"):
			posts, err = h.posts.Search(r.Context(), query.Get("q"))
		default:
			posts, err = h.posts.ListPublished(r.Context())
		}
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		h.responder.WriteJSON(w, posts)
	}
}

func (h postHandler) searchPosts() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		posts, err := h.posts.Search(r.Context(), r.URL.Query().Get("q"))
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		h.responder.WriteJSON(w, posts)
	}
}

func (h postHandler) listPostsByTag() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		posts, err := h.posts.ListByTag(r.Context(), chi.URLParam(r, "tag"))
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		h.responder.WriteJSON(w, posts)
	}
}

// getPost returns a published post with its rendered HTML and counts the view.
// Drafts are not visible here.
func (h postHandler) getPost() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		slug := chi.URLParam(r, "slug")

		post, err := h.posts.GetBySlug(r.Context(), slug)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		if post == nil || !post.IsPublished() {
			h.responder.WriteError(w, errs.NewNotFound("post"))
			return
		}

		found, err := h.posts.IncrementView(r.Context(), slug)
		switch {
		case err != nil:
			// the read still succeeds without the count
			h.logger.Warn().Err(err).Str("slug", slug).Msg("Failed to increment view count")
		case !found:
			h.logger.Debug().Str("slug", slug).Msg("Post disappeared before its view was counted")
		default:
			post.ViewCount++
		}

		html, err := h.renderer.Render(post.Content)
		if err != nil {
			h.responder.WriteError(w, errs.NewInternalErrorWithCause("failed to render post", err))
			return
		}

		h.responder.WriteJSON(w, PostWithHTML{Post: *post, ContentHTML: html})
	}
}
