package http

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/tidyforge/tidyforge/internal/audit"
	"github.com/tidyforge/tidyforge/internal/auth"
	"github.com/tidyforge/tidyforge/internal/billing"
	"github.com/tidyforge/tidyforge/internal/client"
	"github.com/tidyforge/tidyforge/internal/company"
	"github.com/tidyforge/tidyforge/internal/identity"
	"github.com/tidyforge/tidyforge/internal/job"
	"github.com/tidyforge/tidyforge/internal/property"
	"github.com/tidyforge/tidyforge/internal/session"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// Handler holds HTTP handlers and dependencies
type Handler struct {
	identityService *identity.Service
	sessionService  *session.Service
	companyService  *company.Service
	clientService   *client.Service
	propertyService *property.Service
	jobService      *job.Service
	billingService  *billing.Service
	billingProvider billing.Provider
	reconciler      *billing.Reconciler
	authProvider    *auth.Provider
	auditLogger     audit.Logger
	sessionConfig   SessionConfig
	postLoginURL    string
}

// SessionConfig holds session cookie configuration
type SessionConfig struct {
	CookieName     string
	CookieDomain   string
	CookiePath     string
	CookieSecure   bool
	CookieHTTPOnly bool
	CookieSameSite http.SameSite
	MaxAge         int
}

// NewHandler creates a new HTTP handler
func NewHandler(
	identityService *identity.Service,
	sessionService *session.Service,
	companyService *company.Service,
	clientService *client.Service,
	propertyService *property.Service,
	jobService *job.Service,
	billingService *billing.Service,
	billingProvider billing.Provider,
	reconciler *billing.Reconciler,
	authProvider *auth.Provider,
	auditLogger audit.Logger,
	sessionConfig SessionConfig,
	postLoginURL string,
) *Handler {
	return &Handler{
		identityService: identityService,
		sessionService:  sessionService,
		companyService:  companyService,
		clientService:   clientService,
		propertyService: propertyService,
		jobService:      jobService,
		billingService:  billingService,
		billingProvider: billingProvider,
		reconciler:      reconciler,
		authProvider:    authProvider,
		auditLogger:     auditLogger,
		sessionConfig:   sessionConfig,
		postLoginURL:    postLoginURL,
	}
}

// NewRouter creates a new HTTP router
func NewRouter(h *Handler, rateLimiter *RateLimiter) *chi.Mux {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(RateLimitMiddleware(rateLimiter))
	r.Use(func(handler http.Handler) http.Handler {
		return otelhttp.NewHandler(handler, "http_request",
			otelhttp.WithSpanNameFormatter(func(operation string, r *http.Request) string {
				return r.Method + " " + r.URL.Path
			}),
		)
	})
	r.Use(LoggingMiddleware())
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	// Health check
	r.Get("/health", h.HealthCheck)

	// Browser login flow
	r.Get("/auth/login", h.Login)
	r.Get("/auth/callback", h.Callback)
	r.Post("/auth/logout", h.Logout)

	// Billing provider webhook. Authenticated by signature, not by session.
	r.Post("/webhooks/stripe", h.StripeWebhook)

	// API routes
	r.Route("/api/v1", func(r chi.Router) {
		r.Use(h.AuthMiddleware)

		r.Get("/me", h.Me)

		r.Route("/company", func(r chi.Router) {
			r.Get("/", h.GetCompany)
			r.With(RequireAdmin).Put("/", h.UpdateCompany)
		})

		r.Route("/team", func(r chi.Router) {
			r.Get("/", h.ListTeam)
			r.With(RequireAdmin).Put("/{profileID}/role", h.ChangeRole)
		})

		r.Route("/clients", func(r chi.Router) {
			r.Get("/", h.ListClients)
			r.With(RequireManager).Post("/", h.CreateClient)
			r.Route("/{clientID}", func(r chi.Router) {
				r.Get("/", h.GetClient)
				r.Get("/properties", h.ListClientProperties)
				r.With(RequireManager).Put("/", h.UpdateClient)
				r.With(RequireManager).Delete("/", h.DeleteClient)
			})
		})

		r.Route("/properties", func(r chi.Router) {
			r.Get("/", h.ListProperties)
			r.With(RequireManager).Post("/", h.CreateProperty)
			r.Route("/{propertyID}", func(r chi.Router) {
				r.Get("/", h.GetProperty)
				r.With(RequireManager).Put("/", h.UpdateProperty)
				r.With(RequireManager).Delete("/", h.DeleteProperty)
			})
		})

		r.Route("/jobs", func(r chi.Router) {
			r.Get("/", h.ListJobs)
			r.With(RequireManager).Post("/", h.CreateJob)
			r.Route("/{jobID}", func(r chi.Router) {
				r.Get("/", h.GetJob)
				r.Patch("/status", h.UpdateJobStatus)
				r.With(RequireManager).Put("/assignee", h.AssignJob)
			})
		})

		r.Route("/billing", func(r chi.Router) {
			r.Use(RequireAdmin)
			r.Get("/plans", h.ListPlans)
			r.Post("/checkout", h.CreateCheckout)
			r.Post("/portal", h.CreatePortal)
		})
	})

	return r
}

// HealthCheck returns the health status
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"status":  "healthy",
		"service": "tidyforge",
	})
}

// Helper functions
func (h *Handler) setSessionCookie(w http.ResponseWriter, sessionID string) {
	http.SetCookie(w, &http.Cookie{
		Name:     h.sessionConfig.CookieName,
		Value:    sessionID,
		Path:     h.sessionConfig.CookiePath,
		Domain:   h.sessionConfig.CookieDomain,
		Secure:   h.sessionConfig.CookieSecure,
		HttpOnly: h.sessionConfig.CookieHTTPOnly,
		SameSite: h.sessionConfig.CookieSameSite,
		MaxAge:   h.sessionConfig.MaxAge,
	})
}

func (h *Handler) clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:   h.sessionConfig.CookieName,
		Value:  "",
		Path:   h.sessionConfig.CookiePath,
		Domain: h.sessionConfig.CookieDomain,
		MaxAge: -1,
	})
}

func (h *Handler) getSessionFromCookie(r *http.Request) string {
	cookie, err := r.Cookie(h.sessionConfig.CookieName)
	if err != nil {
		return ""
	}
	return cookie.Value
}

func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{
		"error": message,
	})
}

func getIPAddress(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		return xff
	}
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return xri
	}
	return r.RemoteAddr
}
