package utils

import (
	"encoding/json"
	"net/http"

	"github.com/rohits-web03/robotutor/internal/apperr"
)

type Payload struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

// JSONResponse sends a JSON response with given status, success flag, and payload
func JSONResponse(w http.ResponseWriter, status int, payload Payload) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

// JSONError maps err through the error taxonomy and sends its caller-safe
// message. Unclassified errors come out as a generic 500.
func JSONError(w http.ResponseWriter, err error) {
	JSONResponse(w, apperr.HTTPStatus(err), Payload{
		Success: false,
		Message: apperr.Message(err),
	})
}
