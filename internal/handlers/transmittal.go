package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/vijay-1103/transmittal-craft/internal/models"
	"github.com/vijay-1103/transmittal-craft/internal/transmittal"
)

func (r *Router) createTransmittal(w http.ResponseWriter, req *http.Request) {
	var in models.TransmittalCreate
	if err := decodeJSON(req, &in, false); err != nil {
		r.fail(w, req, err)
		return
	}
	t, err := r.manager.Create(req.Context(), in)
	if err != nil {
		r.fail(w, req, err)
		return
	}
	respondJSON(w, http.StatusOK, t)
}

func (r *Router) listTransmittals(w http.ResponseWriter, req *http.Request) {
	q := req.URL.Query()
	skip, err := intQuery(q.Get("skip"), "skip", 0)
	if err != nil {
		r.fail(w, req, err)
		return
	}
	limit, err := intQuery(q.Get("limit"), "limit", r.listLimit)
	if err != nil {
		r.fail(w, req, err)
		return
	}

	items, err := r.manager.List(req.Context(), transmittal.ListQuery{
		Status: q.Get("status"),
		Skip:   skip,
		Limit:  limit,
	})
	if err != nil {
		r.fail(w, req, err)
		return
	}
	respondJSON(w, http.StatusOK, items)
}

func (r *Router) countTransmittals(w http.ResponseWriter, req *http.Request) {
	n, err := r.manager.Count(req.Context(), req.URL.Query().Get("status"))
	if err != nil {
		r.fail(w, req, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]int64{"count": n})
}

func (r *Router) getTransmittal(w http.ResponseWriter, req *http.Request) {
	t, err := r.manager.Get(req.Context(), mux.Vars(req)["id"])
	if err != nil {
		r.fail(w, req, err)
		return
	}
	respondJSON(w, http.StatusOK, t)
}

func (r *Router) updateTransmittal(w http.ResponseWriter, req *http.Request) {
	var patch models.TransmittalPatch
	if err := decodeJSON(req, &patch, true); err != nil {
		r.fail(w, req, err)
		return
	}
	t, err := r.manager.Update(req.Context(), mux.Vars(req)["id"], patch)
	if err != nil {
		r.fail(w, req, err)
		return
	}
	respondJSON(w, http.StatusOK, t)
}

func (r *Router) deleteTransmittal(w http.ResponseWriter, req *http.Request) {
	if err := r.manager.Delete(req.Context(), mux.Vars(req)["id"]); err != nil {
		r.fail(w, req, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"message": "Transmittal deleted successfully"})
}

func (r *Router) generateTransmittal(w http.ResponseWriter, req *http.Request) {
	t, err := r.manager.Generate(req.Context(), mux.Vars(req)["id"])
	if err != nil {
		r.fail(w, req, err)
		return
	}
	respondJSON(w, http.StatusOK, t)
}

func (r *Router) duplicateTransmittal(w http.ResponseWriter, req *http.Request) {
	// Anything other than "opposite" copies in the same mode
	mode := req.URL.Query().Get("mode")
	if mode == "" {
		mode = transmittal.DuplicateOpposite
	}

	t, err := r.manager.Duplicate(req.Context(), mux.Vars(req)["id"], mode)
	if err != nil {
		r.fail(w, req, err)
		return
	}
	respondJSON(w, http.StatusOK, t)
}

func (r *Router) sendTransmittal(w http.ResponseWriter, req *http.Request) {
	var details models.SendDetails
	if err := decodeJSON(req, &details, true); err != nil {
		r.fail(w, req, err)
		return
	}
	_, err := r.manager.RecordSend(req.Context(), mux.Vars(req)["id"], details, req.URL.Query().Get("sent_status"))
	if err != nil {
		r.fail(w, req, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"message": "Transmittal marked as sent"})
}

func (r *Router) receiveTransmittal(w http.ResponseWriter, req *http.Request) {
	var details models.ReceiveDetails
	if err := decodeJSON(req, &details, true); err != nil {
		r.fail(w, req, err)
		return
	}
	_, err := r.manager.RecordReceive(req.Context(), mux.Vars(req)["id"], details, req.URL.Query().Get("received_status"))
	if err != nil {
		r.fail(w, req, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"message": "Transmittal marked as received"})
}

func validation(message string) error {
	return &transmittal.Error{Kind: transmittal.ErrValidation, Message: message}
}

// decodeJSON reads a JSON object body. An empty body decodes to the zero value
// only when allowEmpty is set.
func decodeJSON(req *http.Request, v interface{}, allowEmpty bool) error {
	err := json.NewDecoder(req.Body).Decode(v)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, io.EOF):
		if allowEmpty {
			return nil
		}
		return validation("body: field required")
	default:
		return validation(fmt.Sprintf("Invalid request payload: %v", err))
	}
}

func intQuery(raw, name string, def int) (int, error) {
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, validation(name + ": value is not a valid integer")
	}
	return n, nil
}
