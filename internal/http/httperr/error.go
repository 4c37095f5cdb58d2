package httperr

import (
	"context"
	"encoding/json"
	"net/http"
	"os"

	"boardstack-api/internal/authz"
	"boardstack-api/internal/observability/logger"

	"go.uber.org/zap"
)

// ErrorResponse is the standardized error envelope.
type ErrorResponse struct {
	OK    bool         `json:"ok"`
	Error *ErrorDetail `json:"error"`
}

// ErrorDetail contains the error information.
type ErrorDetail struct {
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Fields  map[string]string `json:"fields,omitempty"`
	ErrorID string            `json:"error_id,omitempty"`
}

// Error codes for 401 Unauthorized (authentication failures)
const (
	ErrCodeMissingAuthorization = "MISSING_AUTHORIZATION"
	ErrCodeInvalidScheme        = "INVALID_SCHEME"
	ErrCodeInvalidToken         = "INVALID_TOKEN"
)

// Error codes for 400 Bad Request (validation errors)
const (
	ErrCodeMissingParameter = "MISSING_PARAMETER"
	ErrCodeInvalidParameter = "INVALID_PARAMETER"
	ErrCodeInvalidBody      = "INVALID_BODY"
	ErrCodeValidationError  = "VALIDATION_ERROR"
)

// Error codes for 500 Internal Server Error
const (
	ErrCodeInternalError = "INTERNAL_ERROR"
)

// Authorization failure codes are owned by the authz package (authz.Code);
// WriteAuthzError maps them onto this envelope.

// WriteError writes a standardized error response.
func WriteError(w http.ResponseWriter, ctx context.Context, status int, code, message string) {
	log := logger.GetLogger(ctx)

	log.Warn(ctx, "request failed",
		logger.Module("http"),
		logger.Action("error_response"),
		zap.Int("status_code", status),
		zap.String("error_code", code),
		zap.String("message", message),
	)

	writeEnvelope(w, status, &ErrorDetail{Code: code, Message: message})
}

// WriteErrorWithFields writes an error response with field-level details.
func WriteErrorWithFields(w http.ResponseWriter, ctx context.Context, status int, code, message string, fields map[string]string) {
	log := logger.GetLogger(ctx)

	fieldPairs := make([]zap.Field, 0, len(fields)+4)
	fieldPairs = append(fieldPairs,
		logger.Module("http"),
		logger.Action("error_response"),
		zap.Int("status_code", status),
		zap.String("error_code", code),
	)
	for k, v := range fields {
		fieldPairs = append(fieldPairs, zap.String("field_"+k, v))
	}
	log.Warn(ctx, "request failed with field errors", fieldPairs...)

	writeEnvelope(w, status, &ErrorDetail{Code: code, Message: message, Fields: fields})
}

// WriteAuthzError maps a classified authorization failure to its HTTP
// response. Collaborator failures become a generic 500 so the response never
// leaks store internals; everything else carries its classification code.
// Deny messages do not confirm which entities exist beyond what the status
// already implies.
func WriteAuthzError(w http.ResponseWriter, ctx context.Context, err *authz.Error) {
	status := err.HTTPStatus()

	if status >= http.StatusInternalServerError {
		logger.SetRootError(ctx, err)
		InternalError500(w, ctx, "entity store unavailable")
		return
	}

	log := logger.GetLogger(ctx)
	log.Warn(ctx, "access denied",
		logger.Module("authz"),
		logger.Action("deny"),
		zap.Int("status_code", status),
		zap.String("error_code", string(err.Code)),
		zap.String("reason", err.Error()),
	)

	writeEnvelope(w, status, &ErrorDetail{Code: string(err.Code), Message: err.Error()})
}

// Unauthorized401 writes a 401 Unauthorized response.
func Unauthorized401(w http.ResponseWriter, ctx context.Context, code, message string) {
	WriteError(w, ctx, http.StatusUnauthorized, code, message)
}

// Forbidden403 writes a 403 Forbidden response.
func Forbidden403(w http.ResponseWriter, ctx context.Context, code, message string) {
	WriteError(w, ctx, http.StatusForbidden, code, message)
}

// BadRequest400 writes a 400 Bad Request response.
func BadRequest400(w http.ResponseWriter, ctx context.Context, code, message string) {
	WriteError(w, ctx, http.StatusBadRequest, code, message)
}

// BadRequest400WithFields writes a 400 response with field-level errors.
func BadRequest400WithFields(w http.ResponseWriter, ctx context.Context, code, message string, fields map[string]string) {
	WriteErrorWithFields(w, ctx, http.StatusBadRequest, code, message, fields)
}

// InternalError500 writes a 500 Internal Server Error response. The client
// always gets a generic message; the detail stays in the logs.
func InternalError500(w http.ResponseWriter, ctx context.Context, message string) {
	log := logger.GetLogger(ctx)
	reqID := logger.GetRequestIDFromContext(ctx)

	log.Error(ctx, "internal server error",
		logger.Module("http"),
		logger.Action("error_response"),
		zap.String("message", message),
	)

	detail := &ErrorDetail{
		Code:    ErrCodeInternalError,
		Message: "Internal Server Error",
	}
	if os.Getenv("APP_ENV") == "dev" {
		detail.ErrorID = reqID
	}

	writeEnvelope(w, http.StatusInternalServerError, detail)
}

// InternalError is shorthand for InternalError500 with a generic message.
func InternalError(w http.ResponseWriter, ctx context.Context) {
	InternalError500(w, ctx, "internal server error")
}

func writeEnvelope(w http.ResponseWriter, status int, detail *ErrorDetail) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(ErrorResponse{OK: false, Error: detail})
}
