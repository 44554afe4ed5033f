package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/tidyforge/tidyforge/internal/company"
	"github.com/tidyforge/tidyforge/internal/identity"
)

// Me returns the current authenticated profile and its company.
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	profile, err := h.identityService.Get(r.Context(), GetUserID(r.Context()))
	if err != nil {
		respondError(w, http.StatusNotFound, "profile not found")
		return
	}

	c, err := h.companyService.Get(r.Context(), profile.CompanyID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to load company")
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"profile": profile,
		"company": c,
	})
}

// GetCompany returns the caller's company.
func (h *Handler) GetCompany(w http.ResponseWriter, r *http.Request) {
	c, err := h.companyService.Get(r.Context(), GetCompanyID(r.Context()))
	if err != nil {
		respondError(w, http.StatusNotFound, "company not found")
		return
	}

	respondJSON(w, http.StatusOK, c)
}

// UpdateCompanyRequest represents a company rename
type UpdateCompanyRequest struct {
	Name string `json:"name"`
}

// UpdateCompany renames the caller's company.
func (h *Handler) UpdateCompany(w http.ResponseWriter, r *http.Request) {
	var req UpdateCompanyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Name == "" {
		respondError(w, http.StatusBadRequest, "name is required")
		return
	}

	c, err := h.companyService.Rename(r.Context(), GetCompanyID(r.Context()), req.Name, GetUserID(r.Context()))
	if err != nil {
		if errors.Is(err, company.ErrCompanyNotFound) {
			respondError(w, http.StatusNotFound, "company not found")
			return
		}
		respondError(w, http.StatusInternalServerError, "failed to update company")
		return
	}

	respondJSON(w, http.StatusOK, c)
}

// ListTeam returns all profiles in the caller's company.
func (h *Handler) ListTeam(w http.ResponseWriter, r *http.Request) {
	team, err := h.identityService.ListTeam(r.Context(), GetCompanyID(r.Context()))
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to list team")
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{"team": team})
}

// ChangeRoleRequest represents a role change
type ChangeRoleRequest struct {
	Role string `json:"role"`
}

// ChangeRole updates a team member's role.
func (h *Handler) ChangeRole(w http.ResponseWriter, r *http.Request) {
	var req ChangeRoleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	profileID := chi.URLParam(r, "profileID")
	err := h.identityService.ChangeRole(r.Context(), GetCompanyID(r.Context()), profileID, req.Role)
	if err != nil {
		if errors.Is(err, identity.ErrProfileNotFound) {
			respondError(w, http.StatusNotFound, "profile not found")
			return
		}
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{
		"message": "role updated successfully",
	})
}
