package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/vijay-1103/transmittal-craft/internal/models"
	"github.com/vijay-1103/transmittal-craft/internal/transmittal"
)

const statusCheckListLimit = 1000

// StatusCheckStore records client liveness pings
type StatusCheckStore interface {
	Create(ctx context.Context, check *models.StatusCheck) error
	Recent(ctx context.Context, limit int) ([]models.StatusCheck, error)
}

func (r *Router) createStatusCheck(w http.ResponseWriter, req *http.Request) {
	if r.statusChecks == nil {
		respondError(w, http.StatusNotFound, "Not Found")
		return
	}
	var in struct {
		ClientName string `json:"client_name" validate:"required"`
	}
	if err := decodeJSON(req, &in, false); err != nil {
		r.fail(w, req, err)
		return
	}
	if err := transmittal.Validate(in); err != nil {
		r.fail(w, req, err)
		return
	}

	check := &models.StatusCheck{
		ID:         uuid.NewString(),
		ClientName: in.ClientName,
		Timestamp:  time.Now().UTC(),
	}
	if err := r.statusChecks.Create(req.Context(), check); err != nil {
		r.fail(w, req, err)
		return
	}
	respondJSON(w, http.StatusOK, check)
}

func (r *Router) listStatusChecks(w http.ResponseWriter, req *http.Request) {
	if r.statusChecks == nil {
		respondJSON(w, http.StatusOK, []models.StatusCheck{})
		return
	}
	checks, err := r.statusChecks.Recent(req.Context(), statusCheckListLimit)
	if err != nil {
		r.fail(w, req, err)
		return
	}
	respondJSON(w, http.StatusOK, checks)
}
