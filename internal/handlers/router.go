package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	gorillahandlers "github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/vijay-1103/transmittal-craft/internal/buildinfo"
	"github.com/vijay-1103/transmittal-craft/internal/middleware"
	"github.com/vijay-1103/transmittal-craft/internal/transmittal"
	"github.com/vijay-1103/transmittal-craft/internal/websocket"
)

// Deps is everything the HTTP layer needs. Hub and StatusChecks may be nil.
type Deps struct {
	Manager          *transmittal.Manager
	StatusChecks     StatusCheckStore
	Hub              *websocket.Hub
	Logger           *zap.SugaredLogger
	PathPrefix       string
	CORSOrigins      []string
	DefaultListLimit int
	MaxUploadBytes   int64
}

// Router wraps the mux router and the services behind it
type Router struct {
	*mux.Router
	manager      *transmittal.Manager
	statusChecks StatusCheckStore
	hub          *websocket.Hub
	log          *zap.SugaredLogger
	corsOrigins  []string
	listLimit    int
	maxUpload    int64
}

// NewRouter creates a new HTTP router with all routes
func NewRouter(d Deps) *Router {
	r := &Router{
		Router:       mux.NewRouter(),
		manager:      d.Manager,
		statusChecks: d.StatusChecks,
		hub:          d.Hub,
		log:          d.Logger,
		corsOrigins:  d.CORSOrigins,
		listLimit:    d.DefaultListLimit,
		maxUpload:    d.MaxUploadBytes,
	}
	if r.log == nil {
		r.log = zap.NewNop().Sugar()
	}
	if r.listLimit <= 0 {
		r.listLimit = 100
	}
	if r.maxUpload <= 0 {
		r.maxUpload = 10 << 20
	}
	if len(r.corsOrigins) == 0 {
		r.corsOrigins = []string{"*"}
	}

	r.Use(middleware.Observe(r.log))
	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		respondError(w, http.StatusNotFound, "Not Found")
	})
	r.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		respondError(w, http.StatusMethodNotAllowed, "Method Not Allowed")
	})

	// Unprefixed operational endpoints
	r.HandleFunc("/health", r.healthCheck).Methods("GET")
	r.Handle("/metrics", promhttp.Handler()).Methods("GET")
	if r.hub != nil {
		r.HandleFunc("/ws", func(w http.ResponseWriter, req *http.Request) {
			websocket.ServeWs(r.hub, w, req)
		}).Methods("GET")
	}

	// API routes
	prefix := d.PathPrefix
	api := r.Router
	if prefix != "" {
		// Trailing slashes are trimmed, so /api/ arrives as /api
		r.HandleFunc(prefix, r.hello).Methods("GET")
		api = r.PathPrefix(prefix).Subrouter()
	} else {
		r.HandleFunc("/", r.hello).Methods("GET")
	}

	api.HandleFunc("/status", r.createStatusCheck).Methods("POST")
	api.HandleFunc("/status", r.listStatusChecks).Methods("GET")

	// Literal paths before {id}
	api.HandleFunc("/transmittals", r.createTransmittal).Methods("POST")
	api.HandleFunc("/transmittals", r.listTransmittals).Methods("GET")
	api.HandleFunc("/transmittals/count", r.countTransmittals).Methods("GET")
	api.HandleFunc("/transmittals/upload-receipt", r.uploadReceipt).Methods("POST")
	api.HandleFunc("/transmittals/{id}", r.getTransmittal).Methods("GET")
	api.HandleFunc("/transmittals/{id}", r.updateTransmittal).Methods("PUT")
	api.HandleFunc("/transmittals/{id}", r.deleteTransmittal).Methods("DELETE")
	api.HandleFunc("/transmittals/{id}/generate", r.generateTransmittal).Methods("POST")
	api.HandleFunc("/transmittals/{id}/duplicate", r.duplicateTransmittal).Methods("POST")
	api.HandleFunc("/transmittals/{id}/send", r.sendTransmittal).Methods("POST")
	api.HandleFunc("/transmittals/{id}/receive", r.receiveTransmittal).Methods("POST")
	api.HandleFunc("/transmittals/{id}/pdf", r.transmittalPDF).Methods("GET")
	api.HandleFunc("/transmittals/{id}/labels", r.transmittalLabels).Methods("GET")

	return r
}

// Handler is the router wrapped in the middleware that must run before routing
func (r *Router) Handler() http.Handler {
	cors := gorillahandlers.CORS(
		gorillahandlers.AllowedOrigins(r.corsOrigins),
		gorillahandlers.AllowedMethods([]string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}),
		gorillahandlers.AllowedHeaders([]string{"Content-Type", "Authorization", "X-Requested-With"}),
	)
	return cors(middleware.TrimTrailingSlash(r.Router))
}

// healthCheck returns the health status and build of the API
func (r *Router) healthCheck(w http.ResponseWriter, req *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"status":      "ok",
		"version":     buildinfo.Version,
		"build_time":  buildinfo.BuildTime,
		"commit_hash": buildinfo.CommitHash,
		"started_at":  buildinfo.StartTime,
	})
}

func (r *Router) hello(w http.ResponseWriter, req *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"message": "Hello World"})
}

// respondJSON sends a JSON response
func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// respondError sends an error response
func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{
		"detail": message,
	})
}

// fail maps lifecycle errors onto status codes; anything unrecognised is a 500
func (r *Router) fail(w http.ResponseWriter, req *http.Request, err error) {
	var status int
	switch {
	case errors.Is(err, transmittal.ErrValidation):
		status = http.StatusUnprocessableEntity
	case errors.Is(err, transmittal.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, transmittal.ErrInvalidState), errors.Is(err, transmittal.ErrUnsupportedMedia):
		status = http.StatusBadRequest
	default:
		r.log.Errorw("❌ request failed", "method", req.Method, "path", req.URL.Path, "error", err)
		respondError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	var te *transmittal.Error
	if errors.As(err, &te) {
		respondError(w, status, te.Message)
		return
	}
	respondError(w, status, err.Error())
}
