// internal/app/system/respond/respond.go
package respond

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/dalemusser/memberhub/internal/app/system/apperr"
	"go.uber.org/zap"
)

// JSON writes v with the given status code.
func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// Message writes {"message": msg}.
func Message(w http.ResponseWriter, status int, msg string) {
	JSON(w, status, map[string]string{"message": msg})
}

type errorBody struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// Error maps err to a status code and writes a JSON error body.
// Unclassified errors become a 500 with a generic message; the cause is
// logged, never returned.
func Error(w http.ResponseWriter, r *http.Request, log *zap.Logger, err error) {
	kind := apperr.KindOf(err)
	msg := apperr.Message(err)

	if kind == apperr.KindInternal || kind == apperr.KindDependency {
		log.Error("request failed",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.String("kind", kind.String()),
			zap.Error(err))
	}
	JSON(w, kind.Status(), errorBody{Error: msg, Message: msg})
}

// BadRequest writes a 400 with msg.
func BadRequest(w http.ResponseWriter, msg string) {
	JSON(w, http.StatusBadRequest, errorBody{Error: msg, Message: msg})
}

// MaxJSONBytes caps JSON request bodies.
const MaxJSONBytes = 1 << 20

// DecodeJSON decodes at most MaxJSONBytes of the request body into v. Bodies
// that are malformed or too large are validation errors.
func DecodeJSON(r *http.Request, v any) error {
	body := http.MaxBytesReader(nil, r.Body, MaxJSONBytes)
	if err := json.NewDecoder(body).Decode(v); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return apperr.Validation("Request body too large")
		}
		return apperr.Validation("Invalid JSON body")
	}
	return nil
}
