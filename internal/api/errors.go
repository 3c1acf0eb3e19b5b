package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"

	"dicekit/internal/dice"
	"dicekit/internal/scan"
	"dicekit/internal/store"
)

// writeJSONError writes JSON error response
func writeJSONError(w http.ResponseWriter, data interface{}) error {
	return json.NewEncoder(w).Encode(data)
}

// ErrorBuilder helps construct structured errors with context
type ErrorBuilder struct {
	errType   string
	message   string
	context   map[string]interface{}
	requestID string
}

// NewError creates a new error builder
func NewError(errType, message string) *ErrorBuilder {
	return &ErrorBuilder{
		errType: errType,
		message: message,
		context: make(map[string]interface{}),
	}
}

// WithContext adds context information to the error
func (eb *ErrorBuilder) WithContext(key string, value interface{}) *ErrorBuilder {
	eb.context[key] = value
	return eb
}

// WithRequestID adds request ID to the error
func (eb *ErrorBuilder) WithRequestID(requestID string) *ErrorBuilder {
	eb.requestID = requestID
	return eb
}

// Build creates the final APIError
func (eb *ErrorBuilder) Build() APIError {
	context := eb.context
	if len(context) == 0 {
		context = nil
	}
	return APIError{
		Type:      eb.errType,
		Message:   eb.message,
		Context:   context,
		RequestID: eb.requestID,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}
}

// writeError writes a structured error response and logs it
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, status int, apiErr APIError) {
	if apiErr.RequestID == "" {
		apiErr.RequestID = middleware.GetReqID(r.Context())
	}

	category := GetErrorCategory(apiErr.Type)
	s.logger.Printf(
		"error_occurred type=%s category=%s status=%d request_id=%s path=%s message=%q",
		apiErr.Type, category, status, apiErr.RequestID, r.URL.Path, apiErr.Message,
	)

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-Engine-Version", EngineVersion)
	w.Header().Set("X-Error-Type", apiErr.Type)
	w.Header().Set("X-Error-Category", string(category))
	w.WriteHeader(status)

	if err := writeJSONError(w, apiErr); err != nil {
		http.Error(w, "Internal server error", http.StatusInternalServerError)
	}
}

// writeValidationError reports a failed request validation
func (s *Server) writeValidationError(w http.ResponseWriter, r *http.Request, err error) {
	requestID := middleware.GetReqID(r.Context())

	s.security.LogSecurityEvent(requestID, "validation_failure", err.Error(), map[string]interface{}{
		"path": r.URL.Path,
	}, r.RemoteAddr)

	apiErr := NewError(ErrTypeValidation, err.Error()).
		WithRequestID(requestID).
		Build()
	s.writeError(w, r, http.StatusBadRequest, apiErr)
}

// writeNotationError maps interpreter parse errors onto the wire. The message
// template key and offending value travel in the context so callers can
// localize; the message itself is diagnostic only.
func (s *Server) writeNotationError(w http.ResponseWriter, r *http.Request, notation string, err error) {
	builder := NewError(ErrTypeInternal, err.Error()).WithContext("notation", notation)

	var syntaxErr *dice.SyntaxError
	var valueErr *dice.ValueError
	switch {
	case errors.As(err, &syntaxErr):
		builder = NewError(ErrTypeSyntax, syntaxErr.Error()).
			WithContext("notation", notation).
			WithContext("key", syntaxErr.Key)
	case errors.As(err, &valueErr):
		builder = NewError(ErrTypeValue, valueErr.Error()).
			WithContext("notation", notation).
			WithContext("key", valueErr.Key)
		if valueErr.Value != "" {
			builder = builder.WithContext("value", valueErr.Value)
		}
		if valueErr.Max != 0 {
			builder = builder.WithContext("max", valueErr.Max)
		}
	default:
		s.writeError(w, r, http.StatusInternalServerError, builder.Build())
		return
	}

	s.writeError(w, r, http.StatusBadRequest, builder.Build())
}

// writeScanError maps scanner failures onto the wire
func (s *Server) writeScanError(w http.ResponseWriter, r *http.Request, req ScanRequest, err error) {
	switch {
	case errors.Is(err, scan.ErrInvalidRange), errors.Is(err, scan.ErrUnknownOp):
		s.writeError(w, r, http.StatusBadRequest, NewError(ErrTypeValidation, err.Error()).Build())
	case errors.Is(err, scan.ErrTimeout):
		apiErr := NewError(ErrTypeTimeout, err.Error()).
			WithContext("timeout_ms", req.TimeoutMs).
			Build()
		s.writeError(w, r, http.StatusRequestTimeout, apiErr)
	default:
		s.writeNotationError(w, r, req.Notation, err)
	}
}

// writeStoreError maps persistence failures onto the wire
func (s *Server) writeStoreError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, store.ErrNotFound) {
		s.writeError(w, r, http.StatusNotFound, NewError(ErrTypeNotFound, "record not found").Build())
		return
	}
	s.writeError(w, r, http.StatusInternalServerError, NewError(ErrTypeInternal, "storage operation failed").Build())
}
