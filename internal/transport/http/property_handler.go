package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/tidyforge/tidyforge/internal/client"
	"github.com/tidyforge/tidyforge/internal/property"
)

// PropertyRequest represents property create/update data
type PropertyRequest struct {
	ClientID           string `json:"client_id"`
	Address            string `json:"address"`
	City               string `json:"city"`
	State              string `json:"state"`
	ZipCode            string `json:"zip_code"`
	PropertyType       string `json:"property_type"`
	SquareFootage      int    `json:"square_footage"`
	Bedrooms           int    `json:"bedrooms"`
	Bathrooms          int    `json:"bathrooms"`
	AccessCode         string `json:"access_code"`
	AccessInstructions string `json:"access_instructions"`
}

func (req PropertyRequest) params() property.CreateParams {
	return property.CreateParams{
		ClientID:           req.ClientID,
		Address:            req.Address,
		City:               req.City,
		State:              req.State,
		ZipCode:            req.ZipCode,
		PropertyType:       req.PropertyType,
		SquareFootage:      req.SquareFootage,
		Bedrooms:           req.Bedrooms,
		Bathrooms:          req.Bathrooms,
		AccessCode:         req.AccessCode,
		AccessInstructions: req.AccessInstructions,
	}
}

// ListProperties returns all properties for the caller's company.
func (h *Handler) ListProperties(w http.ResponseWriter, r *http.Request) {
	properties, err := h.propertyService.List(r.Context(), GetCompanyID(r.Context()))
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to list properties")
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{"properties": properties})
}

// CreateProperty registers a property for an existing client.
func (h *Handler) CreateProperty(w http.ResponseWriter, r *http.Request) {
	var req PropertyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Address == "" || req.ClientID == "" {
		respondError(w, http.StatusBadRequest, "client_id and address are required")
		return
	}

	p, err := h.propertyService.Create(r.Context(), GetCompanyID(r.Context()), req.params())
	if err != nil {
		if errors.Is(err, client.ErrClientNotFound) {
			respondError(w, http.StatusNotFound, "client not found")
			return
		}
		respondError(w, http.StatusInternalServerError, "failed to create property")
		return
	}

	respondJSON(w, http.StatusCreated, p)
}

// GetProperty returns a single property.
func (h *Handler) GetProperty(w http.ResponseWriter, r *http.Request) {
	p, err := h.propertyService.Get(r.Context(), GetCompanyID(r.Context()), chi.URLParam(r, "propertyID"))
	if err != nil {
		if errors.Is(err, property.ErrPropertyNotFound) {
			respondError(w, http.StatusNotFound, "property not found")
			return
		}
		respondError(w, http.StatusInternalServerError, "failed to get property")
		return
	}

	respondJSON(w, http.StatusOK, p)
}

// UpdateProperty updates a property's details.
func (h *Handler) UpdateProperty(w http.ResponseWriter, r *http.Request) {
	var req PropertyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	p, err := h.propertyService.Update(r.Context(), GetCompanyID(r.Context()), chi.URLParam(r, "propertyID"), req.params())
	if err != nil {
		if errors.Is(err, property.ErrPropertyNotFound) {
			respondError(w, http.StatusNotFound, "property not found")
			return
		}
		respondError(w, http.StatusInternalServerError, "failed to update property")
		return
	}

	respondJSON(w, http.StatusOK, p)
}

// DeleteProperty removes a property.
func (h *Handler) DeleteProperty(w http.ResponseWriter, r *http.Request) {
	err := h.propertyService.Delete(r.Context(), GetCompanyID(r.Context()), chi.URLParam(r, "propertyID"))
	if err != nil {
		if errors.Is(err, property.ErrPropertyNotFound) {
			respondError(w, http.StatusNotFound, "property not found")
			return
		}
		respondError(w, http.StatusInternalServerError, "failed to delete property")
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"message": "property deleted"})
}
