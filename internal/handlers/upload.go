package handlers

import (
	"errors"
	"io"
	"net/http"

	"github.com/vijay-1103/transmittal-craft/internal/transmittal"
)

// uploadReceipt encodes a receipt scan so the client can embed it in the
// receive call. Nothing is stored.
func (r *Router) uploadReceipt(w http.ResponseWriter, req *http.Request) {
	req.Body = http.MaxBytesReader(w, req.Body, r.maxUpload)
	if err := req.ParseMultipartForm(r.maxUpload); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			respondError(w, http.StatusRequestEntityTooLarge, "File too large")
			return
		}
		respondError(w, http.StatusBadRequest, "Invalid multipart form")
		return
	}
	defer req.MultipartForm.RemoveAll()

	file, header, err := req.FormFile("file")
	if err != nil {
		respondError(w, http.StatusBadRequest, "file: field required")
		return
	}
	defer file.Close()

	payload, err := io.ReadAll(file)
	if err != nil {
		r.fail(w, req, err)
		return
	}

	att, err := transmittal.ValidateAttachment(header.Filename, header.Header.Get("Content-Type"), payload)
	if err != nil {
		r.fail(w, req, err)
		return
	}
	r.log.Infof("📎 Receipt encoded: %s (%s, %d bytes)", att.Filename, att.ContentType, len(payload))
	respondJSON(w, http.StatusOK, att)
}
