package handler

import (
	"net/http"

	"github.com/wadjakorntonsri/go-link-in-bio/pkg/core/domain"
	"github.com/wadjakorntonsri/go-link-in-bio/pkg/ports"
)

type ProfileHandler struct {
	accounts ports.AccountService
}

func NewProfileHandler(accounts ports.AccountService) *ProfileHandler {
	return &ProfileHandler{accounts: accounts}
}

type profileResponse struct {
	User    *domain.User    `json:"user"`
	Profile *domain.Profile `json:"profile"`
}

func (h *ProfileHandler) Get(w http.ResponseWriter, r *http.Request) {
	user, err := h.accounts.GetUser(r.Context(), ownerID(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	profile, err := h.accounts.GetProfile(r.Context(), user.ID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, profileResponse{User: user, Profile: profile})
}

func (h *ProfileHandler) Update(w http.ResponseWriter, r *http.Request) {
	var patch domain.ProfilePatch
	if !decodeJSON(w, r, &patch) {
		return
	}

	profile, err := h.accounts.UpdateProfile(r.Context(), ownerID(r), patch)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, profile)
}
