package handler

import (
	"context"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/wadjakorntonsri/go-link-in-bio/pkg/core/domain"
	"github.com/wadjakorntonsri/go-link-in-bio/pkg/ports"
)

type LinkHandler struct {
	service ports.LinkService
}

func NewLinkHandler(service ports.LinkService) *LinkHandler {
	return &LinkHandler{service: service}
}

// ReorderLinksRequest payload
type ReorderLinksRequest struct {
	Group string               `json:"group"`
	Items []domain.OrderUpdate `json:"items"`
}

// List Links
func (h *LinkHandler) List(w http.ResponseWriter, r *http.Request) {
	links, err := h.service.ListLinks(r.Context(), ownerID(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, links)
}

// Create Link
func (h *LinkHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req domain.NewLink
	if !decodeJSON(w, r, &req) {
		return
	}

	link, err := h.service.CreateLink(r.Context(), ownerID(r), req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, link)
}

// Update Link
func (h *LinkHandler) Update(w http.ResponseWriter, r *http.Request) {
	var patch domain.LinkPatch
	if !decodeJSON(w, r, &patch) {
		return
	}

	link, err := h.service.UpdateLink(r.Context(), ownerID(r), r.PathValue("id"), patch)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, link)
}

// Delete Link
func (h *LinkHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.service.DeleteLink(r.Context(), ownerID(r), r.PathValue("id")); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Reorder sets positions within one group
func (h *LinkHandler) Reorder(w http.ResponseWriter, r *http.Request) {
	var req ReorderLinksRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if err := h.service.ReorderLinks(r.Context(), ownerID(r), req.Group, req.Items); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Redirect to the link destination
func (h *LinkHandler) Redirect(w http.ResponseWriter, r *http.Request) {
	link, err := h.service.ResolveLink(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, r, err)
		return
	}

	// Async track visit (only if query param "no_stat" is not set)
	if r.URL.Query().Get("no_stat") == "" {
		referer := r.Header.Get("Referer")
		userAgent := r.UserAgent()
		ip := clientIP(r)
		go func() {
			// The request context is cancelled once the redirect is written
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := h.service.RecordVisit(ctx, link, referer, userAgent, ip); err != nil {
				slog.Warn("record visit failed", "link_id", link.ID, "error", err)
			}
		}()
	}

	http.Redirect(w, r, link.URL, http.StatusFound)
}

// Stats for a Link
func (h *LinkHandler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.service.GetLinkStats(r.Context(), ownerID(r), r.PathValue("id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

// Dashboard lists the owner's most clicked links
func (h *LinkHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	dash, err := h.service.GetDashboard(r.Context(), ownerID(r), limit)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, dash)
}

func clientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		first, _, _ := strings.Cut(fwd, ",")
		return strings.TrimSpace(first)
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
