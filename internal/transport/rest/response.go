package rest

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/heartmarshall/realestate-backend/internal/domain"
	"github.com/heartmarshall/realestate-backend/pkg/ctxutil"
)

// Error codes of the JSON error envelope.
const (
	CodeValidation          = "VALIDATION"
	CodeNotFound            = "NOT_FOUND"
	CodeConcurrencyConflict = "CONCURRENCY_CONFLICT"
	CodeAlreadyExists       = "ALREADY_EXISTS"
	CodeInternal            = "INTERNAL"
)

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Error ErrorBody `json:"error"`
}

// ErrorBody describes one failure.
type ErrorBody struct {
	Code      string         `json:"code"`
	Message   string         `json:"message"`
	RequestID string         `json:"requestId,omitempty"`
	Fields    []FieldMessage `json:"fields,omitempty"`
	Conflict  *ConflictBody  `json:"conflict,omitempty"`
}

// FieldMessage is a field-level validation failure.
type FieldMessage struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ConflictBody carries the details of a 409 response. Version conflicts fill
// Expected/Actual, uniqueness conflicts fill Field/Value.
type ConflictBody struct {
	Entity   string `json:"entity,omitempty"`
	Expected int64  `json:"expectedVersion,omitempty"`
	Actual   int64  `json:"actualVersion,omitempty"`
	Field    string `json:"field,omitempty"`
	Value    string `json:"value,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck
}

func writeError(w http.ResponseWriter, r *http.Request, status int, body ErrorBody) {
	body.RequestID = ctxutil.RequestIDFromCtx(r.Context())
	writeJSON(w, status, ErrorResponse{Error: body})
}

func writeBadRequest(w http.ResponseWriter, r *http.Request, field, message string) {
	writeError(w, r, http.StatusBadRequest, ErrorBody{
		Code:    CodeValidation,
		Message: "invalid request",
		Fields:  []FieldMessage{{Field: field, Message: message}},
	})
}

// writeDomainError maps a service error to its HTTP status and envelope.
// Unexpected errors are logged and reported without detail.
func writeDomainError(w http.ResponseWriter, r *http.Request, log *slog.Logger, err error) {
	var (
		verr *domain.ValidationError
		vc   *domain.VersionConflictError
		ce   *domain.ConflictError
	)

	switch {
	case errors.As(err, &verr):
		fields := make([]FieldMessage, len(verr.Errors))
		for i, fe := range verr.Errors {
			fields[i] = FieldMessage{Field: fe.Field, Message: fe.Message}
		}
		writeError(w, r, http.StatusBadRequest, ErrorBody{Code: CodeValidation, Message: "invalid request", Fields: fields})
	case errors.Is(err, domain.ErrValidation):
		writeError(w, r, http.StatusBadRequest, ErrorBody{Code: CodeValidation, Message: "invalid request"})
	case errors.Is(err, domain.ErrNotFound):
		writeError(w, r, http.StatusNotFound, ErrorBody{Code: CodeNotFound, Message: "resource not found"})
	case errors.As(err, &vc):
		writeError(w, r, http.StatusConflict, ErrorBody{
			Code:     CodeConcurrencyConflict,
			Message:  "resource was modified by another request",
			Conflict: &ConflictBody{Entity: vc.Entity, Expected: vc.Expected, Actual: vc.Actual},
		})
	case errors.Is(err, domain.ErrConcurrencyConflict):
		writeError(w, r, http.StatusConflict, ErrorBody{Code: CodeConcurrencyConflict, Message: "resource was modified by another request"})
	case errors.As(err, &ce):
		writeError(w, r, http.StatusConflict, ErrorBody{
			Code:     CodeAlreadyExists,
			Message:  ce.Error(),
			Conflict: &ConflictBody{Entity: ce.Entity, Field: ce.Field, Value: ce.Value},
		})
	case errors.Is(err, domain.ErrAlreadyExists):
		writeError(w, r, http.StatusConflict, ErrorBody{Code: CodeAlreadyExists, Message: "resource already exists"})
	case errors.Is(err, context.Canceled):
		// Client went away; nobody reads the body.
		w.WriteHeader(499)
	default:
		log.ErrorContext(r.Context(), "request failed",
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.String("error", err.Error()),
			slog.String("request_id", ctxutil.RequestIDFromCtx(r.Context())),
		)
		writeError(w, r, http.StatusInternalServerError, ErrorBody{Code: CodeInternal, Message: "internal error"})
	}
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		writeBadRequest(w, r, "body", "invalid JSON: "+err.Error())
		return false
	}
	return true
}
