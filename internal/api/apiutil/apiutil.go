package apiutil

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/byTonho/logifix/internal/models"
	"github.com/pkg/errors"
)

func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("encode response", "error", err)
	}
}

func DecodeJSON(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return models.NewValidationError("body", "invalid JSON payload")
	}
	return nil
}

// WriteError translates domain errors to HTTP. Anything unrecognized is a
// 500 with a generic body; the detail goes to the log, not the client.
func WriteError(w http.ResponseWriter, err error) {
	var dup *models.DuplicateInvoiceError
	if errors.As(err, &dup) {
		WriteJSON(w, http.StatusConflict, map[string]string{
			"error":      dup.Error(),
			"existingId": dup.ExistingID,
		})
		return
	}

	var verr *models.ValidationError
	if errors.As(err, &verr) {
		WriteJSON(w, http.StatusBadRequest, map[string]string{
			"error": verr.Error(),
			"field": verr.Field,
		})
		return
	}

	if errors.Is(err, models.ErrNotFound) {
		WriteJSON(w, http.StatusNotFound, map[string]string{"error": "not found"})
		return
	}

	slog.Error("request failed", "error", err)
	WriteJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
}
