package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	appmiddleware "go-writer-app/internal/middleware"
	"go-writer-app/internal/session"
)

// NewRouter creates and configures a new chi router.
func NewRouter(pageHandler *PageHandler, adminHandler *AdminHandler, authHandler *AuthHandler, sitemapHandler *SitemapHandler, errorMiddleware func(appmiddleware.AppHandler) http.Handler, sessions session.Manager) *chi.Mux {
	r := chi.NewRouter()

	// A good base middleware stack
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(sessions.LoadAndSave)
	r.Use(appmiddleware.Authenticate(sessions))

	// Authentication routes
	r.Method(http.MethodGet, "/login", errorMiddleware(authHandler.loginHandler))
	r.Method(http.MethodPost, "/login", errorMiddleware(authHandler.loginHandler))
	r.Method(http.MethodPost, "/logout", errorMiddleware(authHandler.logoutHandler))

	// Public routes
	r.Method(http.MethodGet, "/sitemap.xml", errorMiddleware(sitemapHandler.sitemapHandler))
	r.Method(http.MethodGet, "/subscribe", errorMiddleware(pageHandler.subscribeHandler))
	r.Method(http.MethodPost, "/subscribe", errorMiddleware(pageHandler.subscribeHandler))

	// Admin routes
	r.Group(func(r chi.Router) {
		r.Use(appmiddleware.RequireAuth)

		r.Method(http.MethodGet, "/admin/pages", errorMiddleware(adminHandler.pagesHandler))
		r.Method(http.MethodGet, "/admin/page/add", errorMiddleware(adminHandler.addPageHandler))
		r.Method(http.MethodPost, "/admin/page/add", errorMiddleware(adminHandler.addPageHandler))
		r.Method(http.MethodGet, "/admin/page/edit/{id}", errorMiddleware(adminHandler.editPageHandler))
		r.Method(http.MethodPost, "/admin/page/edit/{id}", errorMiddleware(adminHandler.editPageHandler))
		r.Method(http.MethodGet, "/admin/page/versions/{id}", errorMiddleware(adminHandler.versionsHandler))
		r.Method(http.MethodGet, "/admin/tags", errorMiddleware(adminHandler.tagsHandler))
		r.Method(http.MethodPost, "/admin/tags", errorMiddleware(adminHandler.tagsHandler))
		r.Method(http.MethodGet, "/admin/users", errorMiddleware(adminHandler.usersHandler))
		r.Method(http.MethodPost, "/admin/users", errorMiddleware(adminHandler.usersHandler))
		r.Method(http.MethodGet, "/admin/subscribers", errorMiddleware(adminHandler.subscribersHandler))
		r.Method(http.MethodGet, "/admin/definitions", errorMiddleware(adminHandler.definitionsHandler))
		r.Method(http.MethodPost, "/admin/definitions", errorMiddleware(adminHandler.definitionsHandler))
		r.Method(http.MethodGet, "/admin/links", errorMiddleware(adminHandler.linksHandler))
		r.Method(http.MethodPost, "/admin/links", errorMiddleware(adminHandler.linksHandler))
		r.Method(http.MethodPost, "/admin/links/delete/{id}", errorMiddleware(adminHandler.deleteLinkHandler))
		r.Method(http.MethodGet, "/admin/records", errorMiddleware(adminHandler.recordsHandler))
		r.Method(http.MethodPost, "/admin/records", errorMiddleware(adminHandler.recordsHandler))
	})

	// Everything else is a page path in the content tree.
	r.NotFound(errorMiddleware(pageHandler.viewHandler).ServeHTTP)

	return r
}
