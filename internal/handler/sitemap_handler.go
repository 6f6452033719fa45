package handler

import (
	"encoding/xml"
	"net/http"
	"time"

	"go-writer-app/internal/middleware"
	"go-writer-app/internal/service"
)

// SitemapHandler serves sitemap.xml over the published page tree.
type SitemapHandler struct {
	pages   *service.PageService
	baseURL string
}

// NewSitemapHandler creates a new SitemapHandler.
func NewSitemapHandler(pages *service.PageService, baseURL string) *SitemapHandler {
	return &SitemapHandler{pages: pages, baseURL: baseURL}
}

type sitemapURL struct {
	Loc     string `xml:"loc"`
	LastMod string `xml:"lastmod"`
}

type sitemapURLSet struct {
	XMLName xml.Name     `xml:"urlset"`
	Xmlns   string       `xml:"xmlns,attr"`
	URLs    []sitemapURL `xml:"url"`
}

// sitemapHandler writes the sitemap for every published page.
func (h *SitemapHandler) sitemapHandler(w http.ResponseWriter, r *http.Request) *middleware.AppError {
	pages, err := h.pages.ListPages(r.Context(), true)
	if err != nil {
		return appError(err, "Failed to build sitemap")
	}

	set := sitemapURLSet{Xmlns: "http://www.sitemaps.org/schemas/sitemap/0.9"}
	for _, page := range pages {
		set.URLs = append(set.URLs, sitemapURL{
			Loc:     h.baseURL + page.Path,
			LastMod: page.EditDate.Format(time.RFC3339),
		})
	}

	w.Header().Set("Content-Type", "application/xml; charset=utf-8")
	w.Write([]byte(xml.Header))
	if err := xml.NewEncoder(w).Encode(set); err != nil {
		return &middleware.AppError{Error: err, Message: "Failed to encode sitemap", Code: http.StatusInternalServerError}
	}
	return nil
}
