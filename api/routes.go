package api

import (
	"github.com/go-chi/chi/v5"
)

// setupPublicRoutes registers the reader-facing endpoints under /api
func setupPublicRoutes(r chi.Router, handlers *routeHandlers, contactLimiter *ipRateLimiter) {
	r.Get("/posts", handlers.postHandler.listPosts())
	r.Get("/posts/search", handlers.postHandler.searchPosts())
	r.Get("/posts/tag/{tag}", handlers.postHandler.listPostsByTag())
	r.Get("/posts/{slug}", handlers.postHandler.getPost())

	r.With(contactLimiter.middleware).Post("/contact", handlers.contactHandler.submit())
}

// setupAdminRoutes registers the admin endpoints under /api/admin. Everything except
// login requires a token.
func setupAdminRoutes(r chi.Router, handlers *routeHandlers, authMiddleware authMiddleware, loginLimiter *ipRateLimiter) {
	r.With(loginLimiter.middleware).Post("/login", handlers.authHandler.login())

	// Authenticated routes
	r.Group(func(r chi.Router) {
		r.Use(authMiddleware.authenticate)

		r.Get("/posts", handlers.adminPostHandler.listAllPosts())
		r.Get("/posts/{slug}", handlers.adminPostHandler.getPost())
		r.Post("/posts", handlers.adminPostHandler.createPost())
		r.Patch("/posts/{id}", handlers.adminPostHandler.updatePost())
		r.Put("/posts/{id}", handlers.adminPostHandler.updatePost())
		r.Delete("/posts/{id}", handlers.adminPostHandler.deletePost())

		r.Get("/stats", handlers.statsHandler.getStats())
		r.Get("/dashboard", handlers.statsHandler.getDashboard())

		r.Get("/contact-submissions", handlers.contactHandler.listSubmissions())
		r.Get("/contact-submissions/unread-count", handlers.contactHandler.unreadCount())
		r.Patch("/contact-submissions/{id}/read", handlers.contactHandler.markRead())
		r.Delete("/contact-submissions/{id}", handlers.contactHandler.deleteSubmission())
	})
}
