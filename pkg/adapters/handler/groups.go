package handler

import (
	"net/http"

	"github.com/wadjakorntonsri/go-link-in-bio/pkg/core/domain"
	"github.com/wadjakorntonsri/go-link-in-bio/pkg/ports"
)

type GroupHandler struct {
	service ports.GroupService
}

func NewGroupHandler(service ports.GroupService) *GroupHandler {
	return &GroupHandler{service: service}
}

type groupRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

type reorderGroupsRequest struct {
	Items []domain.GroupOrder `json:"items"`
}

func (h *GroupHandler) List(w http.ResponseWriter, r *http.Request) {
	groups, err := h.service.ListGroups(r.Context(), ownerID(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, groups)
}

func (h *GroupHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req groupRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	group, err := h.service.CreateGroup(r.Context(), ownerID(r), req.Name, req.Description)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, group)
}

// Describe upserts the description of a group by name
func (h *GroupHandler) Describe(w http.ResponseWriter, r *http.Request) {
	var req groupRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	group, err := h.service.DescribeGroup(r.Context(), ownerID(r), req.Name, req.Description)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, group)
}

func (h *GroupHandler) Update(w http.ResponseWriter, r *http.Request) {
	var patch domain.GroupPatch
	if !decodeJSON(w, r, &patch) {
		return
	}

	group, err := h.service.UpdateGroup(r.Context(), ownerID(r), r.PathValue("id"), patch)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, group)
}

func (h *GroupHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.service.DeleteGroup(r.Context(), ownerID(r), r.PathValue("id")); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *GroupHandler) Reorder(w http.ResponseWriter, r *http.Request) {
	var req reorderGroupsRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if err := h.service.ReorderGroups(r.Context(), ownerID(r), req.Items); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
