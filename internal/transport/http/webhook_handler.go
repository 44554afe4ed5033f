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
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/tidyforge/tidyforge/internal/billing"
	"github.com/tidyforge/tidyforge/internal/observability/logger"
)

// Webhook payloads are small; the cap guards against a hostile sender.
const maxWebhookBody = 1 << 16

// StripeWebhook receives billing provider events. The signature check is the
// only authentication on this route. Responses follow the provider's retry
// contract: 2xx acknowledges, 400 drops a bad request, 5xx asks for retry.
func (h *Handler) StripeWebhook(w http.ResponseWriter, r *http.Request) {
	payload, err := io.ReadAll(io.LimitReader(r.Body, maxWebhookBody))
	if err != nil {
		respondError(w, http.StatusBadRequest, "failed to read request body")
		return
	}

	sigHeader := r.Header.Get("Stripe-Signature")
	if sigHeader == "" {
		respondError(w, http.StatusBadRequest, "missing signature")
		return
	}

	ev, err := h.billingProvider.VerifyWebhook(payload, sigHeader)
	if err != nil {
		if errors.Is(err, billing.ErrInvalidSignature) {
			slog.WarnContext(r.Context(), "webhook signature verification failed",
				logger.Error(err),
			)
			respondError(w, http.StatusBadRequest, "invalid signature")
			return
		}
		// The signature checked out but the payload would not decode; ask
		// the provider to redeliver rather than silently dropping the event.
		slog.ErrorContext(r.Context(), "failed to decode verified webhook payload",
			logger.Error(err),
		)
		respondError(w, http.StatusInternalServerError, "failed to process event")
		return
	}

	if err := h.reconciler.Reconcile(r.Context(), ev); err != nil {
		slog.ErrorContext(r.Context(), "failed to apply billing event",
			logger.Error(err),
			logger.EventType(ev.Type),
		)
		respondError(w, http.StatusInternalServerError, "failed to process event")
		return
	}

	respondJSON(w, http.StatusOK, map[string]bool{"received": true})
}
