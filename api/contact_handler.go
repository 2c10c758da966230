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

type contactHandler struct {
	responder Responder
	logger    zerolog.Logger
	contacts  *services.ContactService
}

func newContactHandler(contacts *services.ContactService) contactHandler {
	logger := log.With().Str("handlerName", "contactHandler").Logger()

	return contactHandler{
		responder: NewResponder(logger),
		logger:    logger,
		contacts:  contacts,
	}
}

// submit stores a public contact form submission.
func (h contactHandler) submit() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in models.ContactInput
		if err := h.responder.DecodeJSON(r, &in, "contact"); err != nil {
			h.responder.WriteError(w, err)
			return
		}

		sub, err := h.contacts.Create(r.Context(), in)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		h.responder.WriteJSONStatus(w, http.StatusCreated, sub)
	}
}

func (h contactHandler) listSubmissions() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		subs, err := h.contacts.ListAll(r.Context())
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		h.responder.WriteJSON(w, subs)
	}
}

func (h contactHandler) unreadCount() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		n, err := h.contacts.CountUnread(r.Context())
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		h.responder.WriteJSON(w, countResponse{Count: n})
	}
}

func (h contactHandler) markRead() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sub, err := h.contacts.MarkRead(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		if sub == nil {
			h.responder.WriteError(w, errs.NewNotFound("contact submission"))
			return
		}
		h.responder.WriteJSON(w, sub)
	}
}

func (h contactHandler) deleteSubmission() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		deleted, err := h.contacts.Delete(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		if !deleted {
			h.responder.WriteError(w, errs.NewNotFound("contact submission"))
			return
		}
		h.responder.WriteJSON(w, statusResponse{
			Status:  "success",
			Message: "contact submission deleted successfully",
		})
	}
}
