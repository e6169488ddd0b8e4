package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/vijay-1103/transmittal-craft/internal/models"
	"github.com/vijay-1103/transmittal-craft/internal/services/printer"
)

// transmittalPDF streams the printable cover sheet
func (r *Router) transmittalPDF(w http.ResponseWriter, req *http.Request) {
	pdfBytes, t, err := r.manager.Render(req.Context(), mux.Vars(req)["id"])
	if err != nil {
		r.fail(w, req, err)
		return
	}
	writePDF(w, fmt.Sprintf("%s.pdf", fileStem(t)), pdfBytes)
}

// transmittalLabels prints one QR sticker per physical document copy
func (r *Router) transmittalLabels(w http.ResponseWriter, req *http.Request) {
	t, err := r.manager.Get(req.Context(), mux.Vars(req)["id"])
	if err != nil {
		r.fail(w, req, err)
		return
	}
	if len(t.Documents) == 0 {
		respondError(w, http.StatusBadRequest, "Transmittal has no documents to label")
		return
	}

	config := printer.DefaultLabelConfig()
	q := req.URL.Query()
	if v, err := strconv.Atoi(q.Get("cols")); err == nil && v > 0 {
		config.Cols = v
	}
	if v, err := strconv.Atoi(q.Get("rows")); err == nil && v > 0 {
		config.Rows = v
	}

	pdfBytes, err := printer.GenerateLabelsPDF(t, config)
	if errors.Is(err, printer.ErrTooManyLabels) {
		respondError(w, http.StatusBadRequest, fmt.Sprintf("Transmittal needs more than %d labels", printer.MaxLabels))
		return
	}
	if err != nil {
		r.fail(w, req, fmt.Errorf("generate labels: %w", err))
		return
	}
	writePDF(w, fmt.Sprintf("labels_%s.pdf", fileStem(t)), pdfBytes)
}

func fileStem(t *models.Transmittal) string {
	if t.TransmittalNumber != nil {
		return *t.TransmittalNumber
	}
	return "transmittal_" + t.ID
}

func writePDF(w http.ResponseWriter, filename string, pdfBytes []byte) {
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("inline; filename=%q", filename))
	w.Header().Set("Content-Length", strconv.Itoa(len(pdfBytes)))
	w.WriteHeader(http.StatusOK)
	w.Write(pdfBytes)
}
