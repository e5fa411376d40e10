package handler

import (
	"encoding/json"
	"net/http"

	"achivo/internal/domain/apperror"
)

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

// writeError maps err onto a status code and an {error} body
func writeError(w http.ResponseWriter, err error) {
	body := map[string]interface{}{
		"error": err.Error(),
	}
	if apperror.IsTimeout(err) {
		body["retryable"] = true
	}
	writeJSON(w, apperror.HTTPStatus(err), body)
}
