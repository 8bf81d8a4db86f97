package handler

import (
	"bytes"
	"context"
	"embed"
	"html/template"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/wadjakorntonsri/go-link-in-bio/pkg/core/domain"
	"github.com/wadjakorntonsri/go-link-in-bio/pkg/core/services"
	"github.com/wadjakorntonsri/go-link-in-bio/pkg/ports"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

//go:embed templates/*.html
var templateFS embed.FS

var (
	pageTemplate  = template.Must(template.ParseFS(templateFS, "templates/page.html", "templates/layout.html"))
	storyTemplate = template.Must(template.ParseFS(templateFS, "templates/story.html", "templates/layout.html"))
)

type PublicHandler struct {
	pages    ports.PageService
	baseURL  string
	markdown goldmark.Markdown
}

type pageView struct {
	Page    *domain.PublicPage
	Bio     template.HTML
	BaseURL string
}

func NewPublicHandler(pages ports.PageService, baseURL string) *PublicHandler {
	return &PublicHandler{
		pages:   pages,
		baseURL: baseURL,
		// Raw HTML in the bio is dropped by the default renderer
		markdown: goldmark.New(goldmark.WithExtensions(extension.Linkify, extension.Strikethrough)),
	}
}

// Page renders the public link page
func (h *PublicHandler) Page(w http.ResponseWriter, r *http.Request) {
	page, err := h.pages.GetPublicPage(r.Context(), r.PathValue("username"), false)
	if err != nil {
		writeError(w, r, err)
		return
	}
	h.render(w, r, pageTemplate, page)

	if r.URL.Query().Get("no_stat") == "" {
		ownerID := page.Profile.UserID
		referer := r.Header.Get("Referer")
		userAgent := r.UserAgent()
		ip := clientIP(r)
		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := h.pages.RecordPageView(ctx, ownerID, referer, userAgent, ip); err != nil {
				slog.Warn("record page view failed", "owner_id", ownerID, "error", err)
			}
		}()
	}
}

// Story renders the timeline page
func (h *PublicHandler) Story(w http.ResponseWriter, r *http.Request) {
	page, err := h.pages.GetPublicPage(r.Context(), r.PathValue("username"), true)
	if err != nil {
		writeError(w, r, err)
		return
	}
	h.render(w, r, storyTemplate, page)
}

// JSON serves the page data for client-side rendering. Timeline media URLs
// are left out.
func (h *PublicHandler) JSON(w http.ResponseWriter, r *http.Request) {
	page, err := h.pages.GetPublicPage(r.Context(), r.PathValue("username"), true)
	if err != nil {
		writeError(w, r, err)
		return
	}
	page.Timeline = services.PublicTimeline(page.Timeline)
	w.Header().Set("Cache-Control", "public, max-age=60")
	writeJSON(w, http.StatusOK, page)
}

// Media serves a timeline event's media: inline data is decoded and cached
// for a year, external URLs are redirected to.
func (h *PublicHandler) Media(w http.ResponseWriter, r *http.Request) {
	media, err := h.pages.GetTimelineMedia(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	if media.URL != "" {
		http.Redirect(w, r, media.URL, http.StatusFound)
		return
	}
	w.Header().Set("Content-Type", media.ContentType)
	w.Header().Set("Content-Length", strconv.Itoa(len(media.Data)))
	w.Header().Set("Cache-Control", "public, max-age=31536000, immutable")
	_, _ = w.Write(media.Data)
}

func (h *PublicHandler) renderBio(src string) template.HTML {
	var buf bytes.Buffer
	if err := h.markdown.Convert([]byte(src), &buf); err != nil {
		return template.HTML(template.HTMLEscapeString(src))
	}
	return template.HTML(buf.String())
}

func (h *PublicHandler) render(w http.ResponseWriter, r *http.Request, tmpl *template.Template, page *domain.PublicPage) {
	view := pageView{Page: page, Bio: h.renderBio(page.Profile.Bio), BaseURL: h.baseURL}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, view); err != nil {
		slog.ErrorContext(r.Context(), "render page failed", "username", page.Username, "error", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = buf.WriteTo(w)
}
