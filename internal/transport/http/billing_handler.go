// Copyright 2026 The TidyForge Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/tidyforge/tidyforge/internal/billing"
	"github.com/tidyforge/tidyforge/internal/company"
	"github.com/tidyforge/tidyforge/internal/observability/logger"
)

// ListPlans returns the plan catalog.
func (h *Handler) ListPlans(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]any{"plans": billing.Catalog})
}

// CheckoutRequest represents a checkout session request
type CheckoutRequest struct {
	Plan string `json:"plan"`
}

// CreateCheckout issues a hosted checkout URL for the requested plan.
func (h *Handler) CreateCheckout(w http.ResponseWriter, r *http.Request) {
	var req CheckoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	caller, err := h.identityService.Get(r.Context(), GetUserID(r.Context()))
	if err != nil {
		respondError(w, http.StatusUnauthorized, "profile not found")
		return
	}

	url, err := h.billingService.CreateCheckoutSession(r.Context(), caller, req.Plan)
	if err != nil {
		switch {
		case errors.Is(err, billing.ErrUnknownPlan):
			respondError(w, http.StatusBadRequest, "unknown plan")
		case errors.Is(err, company.ErrCompanyNotFound):
			respondError(w, http.StatusNotFound, "company not found")
		default:
			slog.ErrorContext(r.Context(), "failed to create checkout session",
				logger.Error(err),
				logger.CompanyID(caller.CompanyID),
			)
			respondError(w, http.StatusInternalServerError, "failed to create checkout session")
		}
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"url": url})
}

// CreatePortal issues a billing portal URL for the caller's company.
func (h *Handler) CreatePortal(w http.ResponseWriter, r *http.Request) {
	caller, err := h.identityService.Get(r.Context(), GetUserID(r.Context()))
	if err != nil {
		respondError(w, http.StatusUnauthorized, "profile not found")
		return
	}

	url, err := h.billingService.CreatePortalSession(r.Context(), caller)
	if err != nil {
		switch {
		case errors.Is(err, billing.ErrNoCustomer):
			respondError(w, http.StatusNotFound, "company has no billing customer yet")
		case errors.Is(err, company.ErrCompanyNotFound):
			respondError(w, http.StatusNotFound, "company not found")
		default:
			slog.ErrorContext(r.Context(), "failed to create portal session",
				logger.Error(err),
				logger.CompanyID(caller.CompanyID),
			)
			respondError(w, http.StatusInternalServerError, "failed to create portal session")
		}
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"url": url})
}
