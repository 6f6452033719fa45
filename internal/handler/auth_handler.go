package handler

import (
	"net/http"

	"go-writer-app/internal/logger"
	"go-writer-app/internal/middleware"
	"go-writer-app/internal/service"
	"go-writer-app/internal/session"
	"go-writer-app/internal/view"
)

// AuthHandler serves login and logout.
type AuthHandler struct {
	users    *service.UserService
	sessions session.Manager
	view     *view.View
	log      logger.Logger
}

// NewAuthHandler creates a new AuthHandler with the given dependencies.
func NewAuthHandler(users *service.UserService, sessions session.Manager, v *view.View, log logger.Logger) *AuthHandler {
	return &AuthHandler{
		users:    users,
		sessions: sessions,
		view:     v,
		log:      log,
	}
}

// loginHandler renders the login form and authenticates submissions.
func (h *AuthHandler) loginHandler(w http.ResponseWriter, r *http.Request) *middleware.AppError {
	if r.Method == http.MethodGet {
		if err := h.view.Render(w, "login.html", nil); err != nil {
			return &middleware.AppError{Error: err, Message: "Failed to render login form", Code: http.StatusInternalServerError}
		}
		return nil
	}

	if err := r.ParseForm(); err != nil {
		return &middleware.AppError{Error: err, Message: "Malformed form", Code: http.StatusBadRequest}
	}
	user, err := h.users.Authenticate(r.Context(), r.FormValue("username"), r.FormValue("password"))
	if err != nil {
		h.log.Warn("failed login attempt for '" + r.FormValue("username") + "'")
		viewData := map[string]interface{}{"Failed": true}
		w.WriteHeader(http.StatusUnauthorized)
		if err := h.view.Render(w, "login.html", viewData); err != nil {
			return &middleware.AppError{Error: err, Message: "Failed to render login form", Code: http.StatusInternalServerError}
		}
		return nil
	}

	// Rotate the session token on privilege change.
	if err := h.sessions.RenewToken(r.Context()); err != nil {
		return &middleware.AppError{Error: err, Message: "Session failure", Code: http.StatusInternalServerError}
	}
	h.sessions.Put(r.Context(), "userID", user.ID)
	http.Redirect(w, r, "/admin/pages", http.StatusSeeOther)
	return nil
}

// logoutHandler destroys the session.
func (h *AuthHandler) logoutHandler(w http.ResponseWriter, r *http.Request) *middleware.AppError {
	if err := h.sessions.Destroy(r.Context()); err != nil {
		return &middleware.AppError{Error: err, Message: "Session failure", Code: http.StatusInternalServerError}
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
	return nil
}
