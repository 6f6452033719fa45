package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"go-writer-app/internal/data"
	"go-writer-app/internal/logger"
	"go-writer-app/internal/middleware"
	"go-writer-app/internal/service"
	"go-writer-app/internal/view"
)

// AdminHandler serves the administrative CRUD screens.
type AdminHandler struct {
	pages       *service.PageService
	tags        *service.TagService
	users       *service.UserService
	subscribers *service.SubscriberService
	definitions *service.DefinitionService
	links       *service.LinkService
	records     *service.RecordService
	nav         *service.NavService
	view        *view.View
	log         logger.Logger
}

// NewAdminHandler creates a new AdminHandler with the given dependencies.
func NewAdminHandler(pages *service.PageService, tags *service.TagService, users *service.UserService, subscribers *service.SubscriberService, definitions *service.DefinitionService, links *service.LinkService, records *service.RecordService, nav *service.NavService, v *view.View, log logger.Logger) *AdminHandler {
	return &AdminHandler{
		pages:       pages,
		tags:        tags,
		users:       users,
		subscribers: subscribers,
		definitions: definitions,
		links:       links,
		records:     records,
		nav:         nav,
		view:        v,
		log:         log,
	}
}

// pagesHandler lists published and unpublished pages for the admin index.
func (h *AdminHandler) pagesHandler(w http.ResponseWriter, r *http.Request) *middleware.AppError {
	published, err := h.pages.ListPages(r.Context(), true)
	if err != nil {
		return appError(err, "Failed to list pages")
	}
	unpublished, err := h.pages.ListPages(r.Context(), false)
	if err != nil {
		return appError(err, "Failed to list pages")
	}
	viewData := map[string]interface{}{
		"Published":   published,
		"Unpublished": unpublished,
	}
	if err := h.view.Render(w, "admin_pages.html", viewData); err != nil {
		return &middleware.AppError{Error: err, Message: "Failed to render page list", Code: http.StatusInternalServerError}
	}
	return nil
}

// pageFormData assembles the shared form data for the add/edit screens.
func (h *AdminHandler) pageFormData(r *http.Request, page *data.Page) (map[string]interface{}, error) {
	allTags, err := h.tags.ListTags(r.Context())
	if err != nil {
		return nil, err
	}
	allUsers, err := h.users.ListUsers(r.Context())
	if err != nil {
		return nil, err
	}
	parents, err := h.pages.ListPages(r.Context(), true)
	if err != nil {
		return nil, err
	}
	return map[string]interface{}{
		"Page":      page,
		"Tags":      allTags,
		"Users":     allUsers,
		"Parents":   parents,
		"Templates": data.TemplateChoices,
		"Groups":    data.SubscriptionChoices,
	}, nil
}

// parsePageForm reads the posted page form into a PageInput.
func (h *AdminHandler) parsePageForm(r *http.Request) (service.PageInput, error) {
	if err := r.ParseForm(); err != nil {
		return service.PageInput{}, err
	}
	in := service.PageInput{
		Title:    r.FormValue("title"),
		Slug:     r.FormValue("slug"),
		Template: r.FormValue("template"),
		Body:     r.FormValue("body"),
		Notes:    r.FormValue("notes"),
		Summary:  r.FormValue("summary"),
		Sidebar:  r.FormValue("sidebar"),

		Published:         r.FormValue("published") == "on",
		NotifySubscribers: r.FormValue("notify") == "on",
		NotifyGroup:       r.FormValue("notify_group"),
	}
	if v := r.FormValue("parent_id"); v != "" && v != "0" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return in, err
		}
		in.ParentID = &id
	}
	if v := r.FormValue("banner"); v != "" {
		in.Banner = &v
	}
	if v := r.FormValue("sort"); v != "" {
		sort, err := strconv.Atoi(v)
		if err != nil {
			return in, err
		}
		in.Sort = sort
	}
	for _, v := range r.Form["tags"] {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return in, err
		}
		in.TagIDs = append(in.TagIDs, id)
	}

	in.UserID = middleware.UserID(r.Context())
	if v := r.FormValue("user_id"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return in, err
		}
		in.UserID = id
	}

	// Publish dates are entered in the author's local zone and stored UTC.
	if v := r.FormValue("pub_date"); v != "" {
		tz := r.FormValue("timezone")
		if tz == "" {
			tz = "UTC"
		}
		local, err := time.Parse("2006-01-02 15:04:05", v)
		if err != nil {
			return in, err
		}
		var page data.Page
		if err := service.SetLocalPubDate(&page, local, tz); err != nil {
			return in, err
		}
		in.PubDate = page.PubDate
	}
	return in, nil
}

// addPageHandler renders the add form and creates pages.
func (h *AdminHandler) addPageHandler(w http.ResponseWriter, r *http.Request) *middleware.AppError {
	if r.Method == http.MethodGet {
		viewData, err := h.pageFormData(r, &data.Page{Sort: data.DefaultSort})
		if err != nil {
			return appError(err, "Failed to load form data")
		}
		if err := h.view.Render(w, "admin_page_edit.html", viewData); err != nil {
			return &middleware.AppError{Error: err, Message: "Failed to render form", Code: http.StatusInternalServerError}
		}
		return nil
	}

	in, err := h.parsePageForm(r)
	if err != nil {
		return &middleware.AppError{Error: err, Message: "Malformed form", Code: http.StatusBadRequest}
	}
	if _, err := h.pages.CreatePage(r.Context(), in); err != nil {
		return appError(err, "Failed to create page")
	}
	h.nav.Invalidate()
	http.Redirect(w, r, "/admin/pages", http.StatusSeeOther)
	return nil
}

// editPageHandler renders the edit form and applies edits.
func (h *AdminHandler) editPageHandler(w http.ResponseWriter, r *http.Request) *middleware.AppError {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		return &middleware.AppError{Error: err, Message: "Invalid page id", Code: http.StatusBadRequest}
	}

	if r.Method == http.MethodGet {
		page, err := h.pages.GetPage(r.Context(), id)
		if err != nil {
			return appError(err, "Failed to load page")
		}
		viewData, err := h.pageFormData(r, page)
		if err != nil {
			return appError(err, "Failed to load form data")
		}
		if err := h.view.Render(w, "admin_page_edit.html", viewData); err != nil {
			return &middleware.AppError{Error: err, Message: "Failed to render form", Code: http.StatusInternalServerError}
		}
		return nil
	}

	in, err := h.parsePageForm(r)
	if err != nil {
		return &middleware.AppError{Error: err, Message: "Malformed form", Code: http.StatusBadRequest}
	}
	if _, err := h.pages.UpdatePage(r.Context(), id, in); err != nil {
		return appError(err, "Failed to update page")
	}
	h.nav.Invalidate()
	http.Redirect(w, r, "/admin/pages", http.StatusSeeOther)
	return nil
}

// versionsHandler lists a page's snapshot history, most recent first.
func (h *AdminHandler) versionsHandler(w http.ResponseWriter, r *http.Request) *middleware.AppError {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		return &middleware.AppError{Error: err, Message: "Invalid page id", Code: http.StatusBadRequest}
	}
	page, err := h.pages.GetPage(r.Context(), id)
	if err != nil {
		return appError(err, "Failed to load page")
	}
	versions, err := h.pages.VersionsFor(r.Context(), id)
	if err != nil {
		return appError(err, "Failed to load versions")
	}
	viewData := map[string]interface{}{
		"Page":     page,
		"Versions": versions,
	}
	if err := h.view.Render(w, "admin_versions.html", viewData); err != nil {
		return &middleware.AppError{Error: err, Message: "Failed to render versions", Code: http.StatusInternalServerError}
	}
	return nil
}

// tagsHandler lists tags and creates new ones.
func (h *AdminHandler) tagsHandler(w http.ResponseWriter, r *http.Request) *middleware.AppError {
	if r.Method == http.MethodPost {
		if err := r.ParseForm(); err != nil {
			return &middleware.AppError{Error: err, Message: "Malformed form", Code: http.StatusBadRequest}
		}
		if _, err := h.tags.CreateTag(r.Context(), r.FormValue("name")); err != nil {
			return appError(err, "Failed to create tag")
		}
		http.Redirect(w, r, "/admin/tags", http.StatusSeeOther)
		return nil
	}

	allTags, err := h.tags.ListTags(r.Context())
	if err != nil {
		return appError(err, "Failed to list tags")
	}
	viewData := map[string]interface{}{"Tags": allTags}
	if err := h.view.Render(w, "admin_tags.html", viewData); err != nil {
		return &middleware.AppError{Error: err, Message: "Failed to render tags", Code: http.StatusInternalServerError}
	}
	return nil
}

// usersHandler lists users and creates new accounts.
func (h *AdminHandler) usersHandler(w http.ResponseWriter, r *http.Request) *middleware.AppError {
	if r.Method == http.MethodPost {
		if err := r.ParseForm(); err != nil {
			return &middleware.AppError{Error: err, Message: "Malformed form", Code: http.StatusBadRequest}
		}
		in := service.UserInput{
			Username:        r.FormValue("username"),
			Email:           r.FormValue("email"),
			AboutMe:         r.FormValue("about_me"),
			Timezone:        r.FormValue("timezone"),
			Password:        r.FormValue("password"),
			ConfirmPassword: r.FormValue("confirm_password"),
		}
		if _, err := h.users.CreateUser(r.Context(), in); err != nil {
			return appError(err, "Failed to create user")
		}
		http.Redirect(w, r, "/admin/users", http.StatusSeeOther)
		return nil
	}

	allUsers, err := h.users.ListUsers(r.Context())
	if err != nil {
		return appError(err, "Failed to list users")
	}
	viewData := map[string]interface{}{"Users": allUsers}
	if err := h.view.Render(w, "admin_users.html", viewData); err != nil {
		return &middleware.AppError{Error: err, Message: "Failed to render users", Code: http.StatusInternalServerError}
	}
	return nil
}

// subscribersHandler lists the mailing list.
func (h *AdminHandler) subscribersHandler(w http.ResponseWriter, r *http.Request) *middleware.AppError {
	subs, err := h.subscribers.ListSubscribers(r.Context())
	if err != nil {
		return appError(err, "Failed to list subscribers")
	}
	viewData := map[string]interface{}{"Subscribers": subs}
	if err := h.view.Render(w, "admin_subscribers.html", viewData); err != nil {
		return &middleware.AppError{Error: err, Message: "Failed to render subscribers", Code: http.StatusInternalServerError}
	}
	return nil
}

// definitionsHandler lists glossary entries and creates new ones.
func (h *AdminHandler) definitionsHandler(w http.ResponseWriter, r *http.Request) *middleware.AppError {
	if r.Method == http.MethodPost {
		if err := r.ParseForm(); err != nil {
			return &middleware.AppError{Error: err, Message: "Malformed form", Code: http.StatusBadRequest}
		}
		def := &data.Definition{
			Name:       r.FormValue("name"),
			Body:       r.FormValue("body"),
			HiddenBody: r.FormValue("hidden_body"),
			DType:      r.FormValue("dtype"),
		}
		if v := r.FormValue("page_id"); v != "" {
			id, err := strconv.ParseInt(v, 10, 64)
			if err != nil {
				return &middleware.AppError{Error: err, Message: "Malformed form", Code: http.StatusBadRequest}
			}
			def.PageID = &id
		}
		if _, err := h.definitions.CreateDefinition(r.Context(), def); err != nil {
			return appError(err, "Failed to create definition")
		}
		http.Redirect(w, r, "/admin/definitions", http.StatusSeeOther)
		return nil
	}

	defs, err := h.definitions.ListDefinitions(r.Context())
	if err != nil {
		return appError(err, "Failed to list definitions")
	}
	viewData := map[string]interface{}{"Definitions": defs}
	if err := h.view.Render(w, "admin_definitions.html", viewData); err != nil {
		return &middleware.AppError{Error: err, Message: "Failed to render definitions", Code: http.StatusInternalServerError}
	}
	return nil
}

// linksHandler lists link cards and creates new ones.
func (h *AdminHandler) linksHandler(w http.ResponseWriter, r *http.Request) *middleware.AppError {
	if r.Method == http.MethodPost {
		if err := r.ParseForm(); err != nil {
			return &middleware.AppError{Error: err, Message: "Malformed form", Code: http.StatusBadRequest}
		}
		link := &data.Link{
			Title:       r.FormValue("title"),
			URL:         r.FormValue("url"),
			Description: r.FormValue("description"),
		}
		if v := r.FormValue("sort"); v != "" {
			sort, err := strconv.Atoi(v)
			if err != nil {
				return &middleware.AppError{Error: err, Message: "Malformed form", Code: http.StatusBadRequest}
			}
			link.Sort = sort
		}
		if _, err := h.links.CreateLink(r.Context(), link); err != nil {
			return appError(err, "Failed to create link")
		}
		http.Redirect(w, r, "/admin/links", http.StatusSeeOther)
		return nil
	}

	allLinks, err := h.links.ListLinks(r.Context())
	if err != nil {
		return appError(err, "Failed to list links")
	}
	viewData := map[string]interface{}{"Links": allLinks}
	if err := h.view.Render(w, "admin_links.html", viewData); err != nil {
		return &middleware.AppError{Error: err, Message: "Failed to render links", Code: http.StatusInternalServerError}
	}
	return nil
}

// deleteLinkHandler removes a link card.
func (h *AdminHandler) deleteLinkHandler(w http.ResponseWriter, r *http.Request) *middleware.AppError {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		return &middleware.AppError{Error: err, Message: "Invalid link id", Code: http.StatusBadRequest}
	}
	if err := h.links.DeleteLink(r.Context(), id); err != nil {
		return appError(err, "Failed to delete link")
	}
	http.Redirect(w, r, "/admin/links", http.StatusSeeOther)
	return nil
}

// recordsHandler shows the signed-in author's recent writing log and
// appends new entries.
func (h *AdminHandler) recordsHandler(w http.ResponseWriter, r *http.Request) *middleware.AppError {
	userID := middleware.UserID(r.Context())

	if r.Method == http.MethodPost {
		if err := r.ParseForm(); err != nil {
			return &middleware.AppError{Error: err, Message: "Malformed form", Code: http.StatusBadRequest}
		}
		rec := &data.Record{
			UserID: userID,
			Notes:  r.FormValue("notes"),
		}
		if v := r.FormValue("words"); v != "" {
			words, err := strconv.Atoi(v)
			if err != nil {
				return &middleware.AppError{Error: err, Message: "Malformed form", Code: http.StatusBadRequest}
			}
			rec.Words = words
		}
		if _, err := h.records.CreateRecord(r.Context(), rec); err != nil {
			return appError(err, "Failed to create record")
		}
		http.Redirect(w, r, "/admin/records", http.StatusSeeOther)
		return nil
	}

	recs, err := h.records.RecentRecords(r.Context(), userID)
	if err != nil {
		return appError(err, "Failed to list records")
	}
	viewData := map[string]interface{}{
		"Records":    recs,
		"TotalWords": service.TotalWords(recs),
	}
	if err := h.view.Render(w, "admin_records.html", viewData); err != nil {
		return &middleware.AppError{Error: err, Message: "Failed to render records", Code: http.StatusInternalServerError}
	}
	return nil
}
