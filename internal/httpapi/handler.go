// Package httpapi exposes the REST surface: verification, issuance, and
// college onboarding.
package httpapi

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"vishwaspatra/internal/repository"
	"vishwaspatra/internal/service"
)

type Handler struct {
	issuance     service.IssuanceService
	verification service.VerificationService
	sbt          service.CollegeSBTService
	colleges     repository.CollegeRepository
	logger       *zap.Logger
}

func NewHandler(
	issuance service.IssuanceService,
	verification service.VerificationService,
	sbt service.CollegeSBTService,
	colleges repository.CollegeRepository,
	logger *zap.Logger,
) *Handler {
	return &Handler{
		issuance:     issuance,
		verification: verification,
		sbt:          sbt,
		colleges:     colleges,
		logger:       logger,
	}
}

// Router wires all routes. The metrics handler is passed in so the prometheus
// registry stays owned by main.
func (h *Handler) Router(metricsHandler http.Handler) *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/health", h.handleHealth).Methods(http.MethodGet)
	r.Handle("/metrics", metricsHandler).Methods(http.MethodGet)
	r.HandleFunc("/verify", h.handleVerify).Methods(http.MethodPost)
	r.HandleFunc("/certificates", h.handleIssue).Methods(http.MethodPost)
	r.HandleFunc("/colleges/{id}", h.handleGetCollege).Methods(http.MethodGet)
	r.HandleFunc("/api/generate-sbt", h.handleGenerateSBT).Methods(http.MethodPost)
	r.HandleFunc("/api/sbt-owner", h.handleSBTOwner).Methods(http.MethodGet)
	r.Use(h.logRequests)
	return r
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("OK"))
}

func (h *Handler) handleGetCollege(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	college, err := h.colleges.Get(r.Context(), id)
	if err != nil {
		h.internalError(w, err)
		return
	}
	if college == nil {
		h.writeJSON(w, http.StatusNotFound, map[string]string{"error": "college not found"})
		return
	}

	h.writeJSON(w, http.StatusOK, college)
}

func (h *Handler) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h.logger.Info("request received",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.String("remote_addr", r.RemoteAddr))
		next.ServeHTTP(w, r)
	})
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		h.logger.Error("failed to write response", zap.Error(err))
	}
}

// internalError logs the detail and answers with a generic message so
// internals never leak to the caller.
func (h *Handler) internalError(w http.ResponseWriter, err error) {
	h.logger.Error("internal error", zap.Error(err))
	h.writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
}
