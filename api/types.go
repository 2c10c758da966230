package api

import "github.com/rpupo63/blog-backend/models"

// routeHandlers contains all the handlers for different route types
type routeHandlers struct {
	healthHandler    healthHandler
	postHandler      postHandler
	adminPostHandler adminPostHandler
	contactHandler   contactHandler
	statsHandler     statsHandler
	authHandler      authHandler
}

// ErrorResponse represents an error response from the API
type ErrorResponse struct {
	Error   string `json:"error" example:"Internal Server Error"`
	Status  string `json:"status" example:"error"`
	Field   string `json:"field,omitempty" example:"title"`
	Details string `json:"details,omitempty" example:"Additional error details"`
	Cause   string `json:"cause,omitempty" example:"Underlying error cause"`
}

// PostWithHTML is a published post together with its rendered body.
type PostWithHTML struct {
	models.Post
	ContentHTML string `json:"contentHtml"`
}

// MirrorStatus reports whether the post file was written after the database write.
type MirrorStatus struct {
	OK    bool   `json:"ok"`
	Error string `json:"error,omitempty"`
}

// PostWriteResponse is returned by the admin create and update endpoints.
type PostWriteResponse struct {
	models.Post
	Mirror MirrorStatus `json:"mirror"`
}

func newPostWriteResponse(result *models.PostWriteResult) PostWriteResponse {
	return PostWriteResponse{
		Post:   *result.Post,
		Mirror: MirrorStatus{OK: result.Mirrored, Error: result.MirrorError},
	}
}

type loginRequest struct {
	Password string `json:"password"`
}

type loginResponse struct {
	Token     string `json:"token"`
	ExpiresAt int64  `json:"expiresAt"`
}

type countResponse struct {
	Count int64 `json:"count"`
}

type statusResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// DashboardResponse combines the post statistics with the unread contact count.
type DashboardResponse struct {
	Stats       models.PostStats `json:"stats"`
	UnreadCount int64            `json:"unreadCount"`
}
