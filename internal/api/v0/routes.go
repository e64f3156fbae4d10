// Package v0 provides the REST API handlers for the provider directory.
package v0

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/caredir/directory-server/internal/api/ws"
	"github.com/caredir/directory-server/internal/directory"
	"github.com/caredir/directory-server/internal/service"
	"github.com/caredir/directory-server/internal/session"
	"github.com/caredir/directory-server/internal/versions"
)

// SessionHeader carries the client's browsing session ID. Responses always
// echo the resolved session ID back in the same header.
const SessionHeader = "X-Session-Id"

// SessionTypeState is one tag chip: the tag plus whether the caller has it
// active
type SessionTypeState struct {
	Name   string `json:"name"`
	Active bool   `json:"active"`
}

// ProvidersResponse is the rendered provider list for one session
type ProvidersResponse struct {
	SessionID    string               `json:"sessionId"`
	Providers    []directory.Provider `json:"providers"`
	SessionTypes []SessionTypeState   `json:"sessionTypes"`
	Total        int                  `json:"total"`
}

// SessionTypesResponse lists the tag universe with per-tag active state
type SessionTypesResponse struct {
	SessionID    string             `json:"sessionId"`
	SessionTypes []SessionTypeState `json:"sessionTypes"`
}

// FilterStateResponse is the caller's current selection
type FilterStateResponse struct {
	SessionID string   `json:"sessionId"`
	Active    []string `json:"active"`
}

// ToggleRequest is the body of a filter toggle call
type ToggleRequest struct {
	SessionType string `json:"sessionType"`
}

// ToggleResponse reports the result of a toggle
type ToggleResponse struct {
	SessionID   string   `json:"sessionId"`
	SessionType string   `json:"sessionType"`
	Active      bool     `json:"active"`
	Selection   []string `json:"selection"`
}

// ClearResponse reports the result of clearing the selection
type ClearResponse struct {
	SessionID string `json:"sessionId"`
	Removed   int    `json:"removed"`
}

// ErrorResponse represents a standardized error response
type ErrorResponse struct {
	Error string `json:"error"`
}

// Routes defines the routes for the directory API with dependency injection
type Routes struct {
	svc      service.DirectoryService
	sessions *session.Manager
}

// NewRoutes creates a new Routes instance with the provided dependencies
func NewRoutes(svc service.DirectoryService, sessions *session.Manager) *Routes {
	return &Routes{
		svc:      svc,
		sessions: sessions,
	}
}

// requestTimeout bounds REST handlers. The websocket endpoint is exempt
// since its connections are long-lived by design.
const requestTimeout = 10 * time.Second

// Router creates a new router for the directory API
func Router(svc service.DirectoryService, sessions *session.Manager) http.Handler {
	routes := NewRoutes(svc, sessions)

	r := chi.NewRouter()

	r.Group(func(r chi.Router) {
		r.Use(middleware.Timeout(requestTimeout))

		r.Get("/providers", routes.listProviders)
		r.Get("/providers/{name}", routes.getProvider)
		r.Get("/session-types", routes.listSessionTypes)

		r.Get("/filters", routes.getFilters)
		r.Post("/filters/toggle", routes.toggleFilter)
		r.Post("/filters/clear", routes.clearFilters)
	})

	// Live rendered updates over websocket
	r.Mount("/events", ws.Handler(svc, sessions))

	return r
}

// resolveSession resolves the caller's session from the request header,
// creating one on demand, and echoes the ID back on the response.
func (rr *Routes) resolveSession(w http.ResponseWriter, r *http.Request) *session.Session {
	s := rr.sessions.GetOrCreate(r.Header.Get(SessionHeader))
	w.Header().Set(SessionHeader, s.ID())
	return s
}

// listProviders handles GET /api/v0/providers.
// It returns the providers visible for the caller's current selection along
// with the tag universe and per-tag active state.
func (rr *Routes) listProviders(w http.ResponseWriter, r *http.Request) {
	s := rr.resolveSession(w, r)
	active := s.Active()

	opts := []service.Option{service.WithSessionTypes(active...)}
	if search := r.URL.Query().Get("search"); search != "" {
		opts = append(opts, service.WithSearch(search))
	}
	if r.URL.Query().Get("accepting") == "true" {
		opts = append(opts, service.WithAcceptingOnly())
	}

	providers, err := rr.svc.ListProviders(r.Context(), opts...)
	if err != nil {
		slog.Error("Failed to list providers", "error", err)
		rr.writeErrorResponse(w, "Failed to list providers", http.StatusInternalServerError)
		return
	}

	states, err := rr.sessionTypeStates(r, s)
	if err != nil {
		slog.Error("Failed to list session types", "error", err)
		rr.writeErrorResponse(w, "Failed to list session types", http.StatusInternalServerError)
		return
	}

	rr.writeJSONResponse(w, ProvidersResponse{
		SessionID:    s.ID(),
		Providers:    providers,
		SessionTypes: states,
		Total:        len(providers),
	})
}

// getProvider handles GET /api/v0/providers/{name}
func (rr *Routes) getProvider(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	p, err := rr.svc.GetProvider(r.Context(), name)
	if err != nil {
		if errors.Is(err, service.ErrProviderNotFound) {
			rr.writeErrorResponse(w, "Provider not found", http.StatusNotFound)
			return
		}
		slog.Error("Failed to get provider", "name", name, "error", err)
		rr.writeErrorResponse(w, "Failed to get provider", http.StatusInternalServerError)
		return
	}

	rr.writeJSONResponse(w, p)
}

// listSessionTypes handles GET /api/v0/session-types
func (rr *Routes) listSessionTypes(w http.ResponseWriter, r *http.Request) {
	s := rr.resolveSession(w, r)

	states, err := rr.sessionTypeStates(r, s)
	if err != nil {
		slog.Error("Failed to list session types", "error", err)
		rr.writeErrorResponse(w, "Failed to list session types", http.StatusInternalServerError)
		return
	}

	rr.writeJSONResponse(w, SessionTypesResponse{
		SessionID:    s.ID(),
		SessionTypes: states,
	})
}

// getFilters handles GET /api/v0/filters
func (rr *Routes) getFilters(w http.ResponseWriter, r *http.Request) {
	s := rr.resolveSession(w, r)

	rr.writeJSONResponse(w, FilterStateResponse{
		SessionID: s.ID(),
		Active:    s.Active(),
	})
}

// toggleFilter handles POST /api/v0/filters/toggle.
// Any session type string is accepted, including ones no provider offers;
// toggling an unknown tag simply yields an empty visible set until it is
// toggled off again.
func (rr *Routes) toggleFilter(w http.ResponseWriter, r *http.Request) {
	var req ToggleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		rr.writeErrorResponse(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	s, nowActive := rr.sessions.Toggle(r.Header.Get(SessionHeader), req.SessionType)
	w.Header().Set(SessionHeader, s.ID())

	rr.writeJSONResponse(w, ToggleResponse{
		SessionID:   s.ID(),
		SessionType: req.SessionType,
		Active:      nowActive,
		Selection:   s.Active(),
	})
}

// clearFilters handles POST /api/v0/filters/clear
func (rr *Routes) clearFilters(w http.ResponseWriter, r *http.Request) {
	s, removed := rr.sessions.Clear(r.Header.Get(SessionHeader))
	w.Header().Set(SessionHeader, s.ID())

	rr.writeJSONResponse(w, ClearResponse{
		SessionID: s.ID(),
		Removed:   removed,
	})
}

// sessionTypeStates builds the tag universe with the caller's active flags.
func (rr *Routes) sessionTypeStates(r *http.Request, s *session.Session) ([]SessionTypeState, error) {
	tags, err := rr.svc.ListSessionTypes(r.Context())
	if err != nil {
		return nil, err
	}

	states := make([]SessionTypeState, 0, len(tags))
	for _, tag := range tags {
		states = append(states, SessionTypeState{
			Name:   tag,
			Active: s.IsActive(tag),
		})
	}
	return states, nil
}

// writeJSONResponse writes a JSON response with the given data
func (*Routes) writeJSONResponse(w http.ResponseWriter, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("Failed to encode JSON response", "error", err)
	}
}

// writeErrorResponse writes a standardized error response
func (*Routes) writeErrorResponse(w http.ResponseWriter, message string, statusCode int) {
	errorResp := ErrorResponse{
		Error: message,
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if err := json.NewEncoder(w).Encode(errorResp); err != nil {
		slog.Error("Failed to encode error response", "error", err)
	}
}

// HealthRouter creates a router for health check endpoints
func HealthRouter(svc service.DirectoryService) http.Handler {
	r := chi.NewRouter()

	r.Get("/health", healthHandler)
	r.Get("/readiness", readinessHandler(svc))
	r.Get("/version", versionHandler)

	return r
}

// healthHandler handles health check requests
func healthHandler(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"healthy"}`))
}

// readinessHandler handles readiness check requests
func readinessHandler(svc service.DirectoryService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := svc.CheckReadiness(r.Context()); err != nil {
			errorResp := ErrorResponse{
				Error: "DirectoryService not ready: " + err.Error(),
			}
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusServiceUnavailable)
			if encodeErr := json.NewEncoder(w).Encode(errorResp); encodeErr != nil {
				slog.Error("Failed to encode readiness error response", "error", encodeErr)
			}
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ready"}`))
	}
}

// versionHandler handles version information requests
func versionHandler(w http.ResponseWriter, _ *http.Request) {
	info := versions.GetVersionInfo()

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)

	if err := json.NewEncoder(w).Encode(info); err != nil {
		slog.Error("Failed to encode version info", "error", err)
	}
}
