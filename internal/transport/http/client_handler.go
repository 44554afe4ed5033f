package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/tidyforge/tidyforge/internal/client"
)

// ClientRequest represents client create/update data
type ClientRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
	Notes string `json:"notes"`
}

// ListClients returns all clients for the caller's company.
func (h *Handler) ListClients(w http.ResponseWriter, r *http.Request) {
	clients, err := h.clientService.List(r.Context(), GetCompanyID(r.Context()))
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to list clients")
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{"clients": clients})
}

// CreateClient adds a client.
func (h *Handler) CreateClient(w http.ResponseWriter, r *http.Request) {
	var req ClientRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Name == "" {
		respondError(w, http.StatusBadRequest, "name is required")
		return
	}

	c, err := h.clientService.Create(r.Context(), GetCompanyID(r.Context()), client.CreateParams{
		Name:  req.Name,
		Email: req.Email,
		Phone: req.Phone,
		Notes: req.Notes,
	})
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to create client")
		return
	}

	respondJSON(w, http.StatusCreated, c)
}

// GetClient returns a single client.
func (h *Handler) GetClient(w http.ResponseWriter, r *http.Request) {
	c, err := h.clientService.Get(r.Context(), GetCompanyID(r.Context()), chi.URLParam(r, "clientID"))
	if err != nil {
		if errors.Is(err, client.ErrClientNotFound) {
			respondError(w, http.StatusNotFound, "client not found")
			return
		}
		respondError(w, http.StatusInternalServerError, "failed to get client")
		return
	}

	respondJSON(w, http.StatusOK, c)
}

// UpdateClient updates a client's contact details.
func (h *Handler) UpdateClient(w http.ResponseWriter, r *http.Request) {
	var req ClientRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	c, err := h.clientService.Update(r.Context(), GetCompanyID(r.Context()), chi.URLParam(r, "clientID"), client.CreateParams{
		Name:  req.Name,
		Email: req.Email,
		Phone: req.Phone,
		Notes: req.Notes,
	})
	if err != nil {
		if errors.Is(err, client.ErrClientNotFound) {
			respondError(w, http.StatusNotFound, "client not found")
			return
		}
		respondError(w, http.StatusInternalServerError, "failed to update client")
		return
	}

	respondJSON(w, http.StatusOK, c)
}

// DeleteClient removes a client.
func (h *Handler) DeleteClient(w http.ResponseWriter, r *http.Request) {
	err := h.clientService.Delete(r.Context(), GetCompanyID(r.Context()), chi.URLParam(r, "clientID"))
	if err != nil {
		if errors.Is(err, client.ErrClientNotFound) {
			respondError(w, http.StatusNotFound, "client not found")
			return
		}
		respondError(w, http.StatusInternalServerError, "failed to delete client")
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"message": "client deleted"})
}

// ListClientProperties returns a client's properties.
func (h *Handler) ListClientProperties(w http.ResponseWriter, r *http.Request) {
	properties, err := h.propertyService.ListByClient(r.Context(), GetCompanyID(r.Context()), chi.URLParam(r, "clientID"))
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to list properties")
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{"properties": properties})
}
