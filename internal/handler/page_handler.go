package handler

import (
	"errors"
	"net/http"
	"time"

	"go-writer-app/internal/content"
	"go-writer-app/internal/data"
	"go-writer-app/internal/logger"
	"go-writer-app/internal/middleware"
	"go-writer-app/internal/service"
	"go-writer-app/internal/tree"
	"go-writer-app/internal/view"
)

// PageHandler serves the public reading side of the site.
type PageHandler struct {
	pages       *service.PageService
	nav         *service.NavService
	subscribers *service.SubscriberService
	view        *view.View
	log         logger.Logger
}

// NewPageHandler creates a new PageHandler with the given dependencies.
func NewPageHandler(pages *service.PageService, nav *service.NavService, subscribers *service.SubscriberService, v *view.View, log logger.Logger) *PageHandler {
	return &PageHandler{
		pages:       pages,
		nav:         nav,
		subscribers: subscribers,
		view:        v,
		log:         log,
	}
}

// appError converts service-layer failures into user-facing error
// pages with appropriate status codes.
func appError(err error, message string) *middleware.AppError {
	var (
		refErr  *tree.ReferenceError
		valErr  *service.ValidationError
		uniqErr *service.UniquenessError
	)
	switch {
	case errors.Is(err, data.ErrNotFound):
		return &middleware.AppError{Error: err, Message: "Not found", Code: http.StatusNotFound}
	case errors.As(err, &refErr):
		return &middleware.AppError{Error: err, Message: "Invalid parent page", Code: http.StatusBadRequest}
	case errors.As(err, &valErr):
		return &middleware.AppError{Error: err, Message: err.Error(), Code: http.StatusBadRequest}
	case errors.As(err, &uniqErr):
		return &middleware.AppError{Error: err, Message: err.Error(), Code: http.StatusConflict}
	default:
		return &middleware.AppError{Error: err, Message: message, Code: http.StatusInternalServerError}
	}
}

// viewHandler renders a published page addressed by its canonical
// path. Unpublished pages are reachable only with a valid preview code.
func (h *PageHandler) viewHandler(w http.ResponseWriter, r *http.Request) *middleware.AppError {
	path := r.URL.Path
	page, err := h.pages.GetPageByPath(r.Context(), path)
	if err != nil {
		return appError(err, "Failed to load page")
	}
	if !page.Published && !content.CheckViewCode(page, r.URL.Query().Get("code"), time.Now()) {
		return &middleware.AppError{Error: errors.New("page not published"), Message: "Not found", Code: http.StatusNotFound}
	}

	pv, err := h.pages.RenderPage(r.Context(), page)
	if err != nil {
		return appError(err, "Failed to render page")
	}
	nav, err := h.nav.Nav(r.Context())
	if err != nil {
		return appError(err, "Failed to build navigation")
	}

	viewData := map[string]interface{}{
		"View": pv,
		"Nav":  nav,
	}
	if err := h.view.Render(w, "view.html", viewData); err != nil {
		return &middleware.AppError{Error: err, Message: "Failed to render view", Code: http.StatusInternalServerError}
	}
	return nil
}

// subscribeHandler handles mailing-list signups.
func (h *PageHandler) subscribeHandler(w http.ResponseWriter, r *http.Request) *middleware.AppError {
	if r.Method == http.MethodGet {
		if err := h.view.Render(w, "subscribe.html", nil); err != nil {
			return &middleware.AppError{Error: err, Message: "Failed to render subscribe form", Code: http.StatusInternalServerError}
		}
		return nil
	}

	if err := r.ParseForm(); err != nil {
		return &middleware.AppError{Error: err, Message: "Malformed form", Code: http.StatusBadRequest}
	}
	in := service.SubscriberInput{
		Email:     r.FormValue("email"),
		FirstName: r.FormValue("first_name"),
		LastName:  r.FormValue("last_name"),
		Groups:    r.Form["groups"],
	}
	if _, err := h.subscribers.Subscribe(r.Context(), in); err != nil {
		return appError(err, "Failed to subscribe")
	}

	viewData := map[string]interface{}{"Subscribed": true}
	if err := h.view.Render(w, "subscribe.html", viewData); err != nil {
		return &middleware.AppError{Error: err, Message: "Failed to render subscribe page", Code: http.StatusInternalServerError}
	}
	return nil
}
