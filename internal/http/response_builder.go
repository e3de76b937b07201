// Package http provides the HTTP server and handler implementations.
//
// This file implements the Builder Pattern for constructing JSON
// responses. It provides a type-safe, fluent API for building response
// bodies and the mapping from domain errors to HTTP status codes.

package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"conti/internal/core"
)

// JSONResponseBuilder provides a fluent API for building JSON responses.
type JSONResponseBuilder struct {
	statusCode int
	headers    map[string]string
	payload    any
	hasBody    bool
}

// NewJSONResponse creates a new response builder with default 200 status.
func NewJSONResponse() *JSONResponseBuilder {
	return &JSONResponseBuilder{
		statusCode: http.StatusOK,
		headers:    make(map[string]string),
	}
}

// Status sets the HTTP status code for the response.
func (b *JSONResponseBuilder) Status(code int) *JSONResponseBuilder {
	b.statusCode = code
	return b
}

// Header adds a custom header to the response.
func (b *JSONResponseBuilder) Header(name, value string) *JSONResponseBuilder {
	b.headers[name] = value
	return b
}

// Body sets the payload to encode. A builder without a body writes the
// status code only, which is how 204 responses go out.
func (b *JSONResponseBuilder) Body(payload any) *JSONResponseBuilder {
	b.payload = payload
	b.hasBody = true
	return b
}

// Write sends the built response to the http.ResponseWriter.
func (b *JSONResponseBuilder) Write(w http.ResponseWriter) {
	for name, value := range b.headers {
		w.Header().Set(name, value)
	}

	if !b.hasBody {
		w.WriteHeader(b.statusCode)
		return
	}

	body, err := json.Marshal(b.payload)
	if err != nil {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":"failed to encode response"}`))
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(b.statusCode)
	_, _ = w.Write(body)
	_, _ = w.Write([]byte("\n"))
}

// errorBody is the uniform error envelope. Field is set only for
// validation failures, naming the offending input.
type errorBody struct {
	Error string `json:"error"`
	Field string `json:"field,omitempty"`
}

// batchBody is the envelope for bulk-operation outcomes, full and
// partial alike.
type batchBody struct {
	Items     []core.BatchItemResult `json:"items"`
	Succeeded int                    `json:"succeeded"`
	Failed    int                    `json:"failed"`
}

func newBatchBody(result *core.BatchResult) batchBody {
	return batchBody{
		Items:     result.Items,
		Succeeded: result.Succeeded(),
		Failed:    result.Failed(),
	}
}

// ErrorResponse creates a JSON error response with the given status.
func ErrorResponse(statusCode int, message string) *JSONResponseBuilder {
	return NewJSONResponse().
		Status(statusCode).
		Body(errorBody{Error: message})
}

// FieldErrorResponse creates an error response naming the offending field.
func FieldErrorResponse(statusCode int, field, message string) *JSONResponseBuilder {
	return NewJSONResponse().
		Status(statusCode).
		Body(errorBody{Error: message, Field: field})
}

// BadRequestError creates a 400 Bad Request error response.
func BadRequestError(message string) *JSONResponseBuilder {
	return ErrorResponse(http.StatusBadRequest, message)
}

// NotFoundError creates a 404 Not Found error response.
func NotFoundError(message string) *JSONResponseBuilder {
	return ErrorResponse(http.StatusNotFound, message)
}

// ForbiddenError creates a 403 Forbidden error response.
func ForbiddenError(message string) *JSONResponseBuilder {
	return ErrorResponse(http.StatusForbidden, message)
}

// UnauthorizedError creates a 401 response carrying the bearer challenge.
func UnauthorizedError(message string) *JSONResponseBuilder {
	return ErrorResponse(http.StatusUnauthorized, message).
		Header("WWW-Authenticate", "Bearer")
}

// ConflictError creates a 409 Conflict error response.
func ConflictError(message string) *JSONResponseBuilder {
	return ErrorResponse(http.StatusConflict, message)
}

// InternalServerError creates a 500 Internal Server Error response.
func InternalServerError(message string) *JSONResponseBuilder {
	return ErrorResponse(http.StatusInternalServerError, message)
}

// WriteError maps a domain error onto the wire:
//
//   - ValidationError            -> 422 with the offending field
//   - PartialBatchError          -> 207 with the per-item outcome list
//   - ErrNotFound                -> 404
//   - ErrNotOwner                -> 403
//   - ErrDuplicate               -> 409
//   - domain validation sentinels -> 422 with the field they name
//   - anything else              -> 500 (RequestError included; retrying is safe)
//
// 500 responses never echo the underlying error; handlers log it.
func WriteError(w http.ResponseWriter, err error) {
	var verr *core.ValidationError
	var partial *core.PartialBatchError
	switch {
	case errors.As(err, &verr):
		FieldErrorResponse(http.StatusUnprocessableEntity, verr.Field, verr.Message).Write(w)
	case errors.As(err, &partial):
		NewJSONResponse().
			Status(http.StatusMultiStatus).
			Body(newBatchBody(partial.Result)).
			Write(w)
	case errors.Is(err, core.ErrNotFound):
		NotFoundError("record not found").Write(w)
	case errors.Is(err, core.ErrNotOwner):
		ForbiddenError("record belongs to another user").Write(w)
	case errors.Is(err, core.ErrDuplicate):
		ConflictError("record already exists").Write(w)
	case errors.Is(err, core.ErrInvalidAmount):
		FieldErrorResponse(http.StatusUnprocessableEntity, "amount", "must be a positive amount").Write(w)
	case errors.Is(err, core.ErrInvalidCurrency):
		FieldErrorResponse(http.StatusUnprocessableEntity, "currency", "unsupported currency").Write(w)
	case errors.Is(err, core.ErrInvalidFrequency):
		FieldErrorResponse(http.StatusUnprocessableEntity, "frequency", "unsupported frequency").Write(w)
	case errors.Is(err, core.ErrEmptyName):
		FieldErrorResponse(http.StatusUnprocessableEntity, "name", "is required").Write(w)
	case errors.Is(err, core.ErrEmptyCategory):
		FieldErrorResponse(http.StatusUnprocessableEntity, "category", "is required").Write(w)
	default:
		InternalServerError("internal error").Write(w)
	}
}
