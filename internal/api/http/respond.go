package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"marketplace-admin-backend/internal/domain"
	"marketplace-admin-backend/internal/logger"
)

const maxBodyBytes = 1 << 20

// ErrorResponse is the body of every non-2xx reply.
type ErrorResponse struct {
	Error   string            `json:"error"`
	Details map[string]string `json:"details,omitempty"`
}

// requestValidator reports field errors under their JSON names.
type requestValidator struct {
	validate *validator.Validate
}

func newRequestValidator() *requestValidator {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return &requestValidator{validate: v}
}

// decode reads a single JSON object into dst and validates it.
func (rv *requestValidator) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	if err := dec.Decode(dst); err != nil {
		msg := "invalid request body"
		if errors.Is(err, domain.ErrInvalidArgument) {
			msg = err.Error()
		}
		writeErrorResponse(w, http.StatusBadRequest, msg, nil)
		return false
	}
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		writeErrorResponse(w, http.StatusBadRequest, "request body must only contain a single JSON object", nil)
		return false
	}

	if err := rv.validate.Struct(dst); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			writeErrorResponse(w, http.StatusBadRequest, "validation failed", nil)
			return false
		}
		details := make(map[string]string, len(verrs))
		for _, fe := range verrs {
			details[fe.Field()] = fmt.Sprintf("failed on the '%s' tag", fe.Tag())
		}
		writeErrorResponse(w, http.StatusBadRequest, "validation failed", details)
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		logger.Error("Failed to encode response", "error", err)
	}
}

func writeErrorResponse(w http.ResponseWriter, status int, msg string, details map[string]string) {
	writeJSON(w, status, ErrorResponse{Error: msg, Details: details})
}

// writeError maps domain error kinds to HTTP status codes.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	var status int
	switch {
	case errors.Is(err, domain.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, domain.ErrInvalidArgument):
		status = http.StatusBadRequest
	case errors.Is(err, domain.ErrInvalidState), errors.Is(err, domain.ErrConflict):
		status = http.StatusConflict
	default:
		logger.ErrorContext(r.Context(), "Request failed", "method", r.Method, "path", r.URL.Path, "error", err)
		writeErrorResponse(w, http.StatusInternalServerError, "internal server error", nil)
		return
	}
	writeErrorResponse(w, status, err.Error(), nil)
}
