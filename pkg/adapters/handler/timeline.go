package handler

import (
	"net/http"

	"github.com/wadjakorntonsri/go-link-in-bio/pkg/core/domain"
	"github.com/wadjakorntonsri/go-link-in-bio/pkg/ports"
)

type TimelineHandler struct {
	service ports.TimelineService
}

func NewTimelineHandler(service ports.TimelineService) *TimelineHandler {
	return &TimelineHandler{service: service}
}

type reorderRequest struct {
	Items []domain.OrderUpdate `json:"items"`
}

func (h *TimelineHandler) List(w http.ResponseWriter, r *http.Request) {
	events, err := h.service.ListEvents(r.Context(), ownerID(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, events)
}

func (h *TimelineHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req domain.NewTimelineEvent
	if !decodeJSON(w, r, &req) {
		return
	}

	event, err := h.service.CreateEvent(r.Context(), ownerID(r), req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, event)
}

func (h *TimelineHandler) Update(w http.ResponseWriter, r *http.Request) {
	var patch domain.TimelineEventPatch
	if !decodeJSON(w, r, &patch) {
		return
	}

	event, err := h.service.UpdateEvent(r.Context(), ownerID(r), r.PathValue("id"), patch)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, event)
}

func (h *TimelineHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.service.DeleteEvent(r.Context(), ownerID(r), r.PathValue("id")); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Reorder applies the whole batch or nothing
func (h *TimelineHandler) Reorder(w http.ResponseWriter, r *http.Request) {
	var req reorderRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if err := h.service.ReorderEvents(r.Context(), ownerID(r), req.Items); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
