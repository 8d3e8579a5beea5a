// Package http serves the rent ledger JSON API and HTML receipts.
//
// This file implements the Builder Pattern for JSON responses, so every
// handler answers with the same envelope.
package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"rentledger/internal/log"
	"rentledger/internal/services"
	"rentledger/internal/session"
	"rentledger/internal/store"
)

// envelope is the body of every JSON response.
type envelope struct {
	Code    int               `json:"code"`
	Status  string            `json:"status"`
	Message string            `json:"message,omitempty"`
	Data    any               `json:"data,omitempty"`
	Errors  map[string]string `json:"errors,omitempty"`
}

// JSONResponseBuilder provides a fluent API for building JSON responses.
type JSONResponseBuilder struct {
	statusCode int
	message    string
	data       any
	fieldErrs  map[string]string
	headers    map[string]string
}

// NewJSONResponse creates a builder with a 200 status.
func NewJSONResponse() *JSONResponseBuilder {
	return &JSONResponseBuilder{
		statusCode: http.StatusOK,
		headers:    make(map[string]string),
	}
}

func (b *JSONResponseBuilder) Status(code int) *JSONResponseBuilder {
	b.statusCode = code
	return b
}

func (b *JSONResponseBuilder) Message(msg string) *JSONResponseBuilder {
	b.message = msg
	return b
}

func (b *JSONResponseBuilder) Data(v any) *JSONResponseBuilder {
	b.data = v
	return b
}

// FieldErrors attaches per-field validation failures.
func (b *JSONResponseBuilder) FieldErrors(errs map[string]string) *JSONResponseBuilder {
	b.fieldErrs = errs
	return b
}

func (b *JSONResponseBuilder) Header(name, value string) *JSONResponseBuilder {
	b.headers[name] = value
	return b
}

// Write sends the response.
func (b *JSONResponseBuilder) Write(w http.ResponseWriter) {
	for name, value := range b.headers {
		w.Header().Set(name, value)
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(b.statusCode)

	status := "success"
	if b.statusCode >= 400 {
		status = "error"
	}
	_ = json.NewEncoder(w).Encode(envelope{
		Code:    b.statusCode,
		Status:  status,
		Message: b.message,
		Data:    b.data,
		Errors:  b.fieldErrs,
	})
}

// OK writes data with 200.
func OK(w http.ResponseWriter, data any) {
	NewJSONResponse().Data(data).Write(w)
}

// Created writes data with 201.
func Created(w http.ResponseWriter, data any) {
	NewJSONResponse().Status(http.StatusCreated).Data(data).Write(w)
}

// ErrorResponse writes an error envelope with message.
func ErrorResponse(w http.ResponseWriter, statusCode int, message string) {
	NewJSONResponse().Status(statusCode).Message(message).Write(w)
}

// writeError maps service and session errors onto status codes. Unexpected
// errors are logged and hidden from the client.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	var reqErr *requestError
	switch {
	case errors.As(err, &reqErr):
		NewJSONResponse().Status(http.StatusBadRequest).Message(reqErr.msg).FieldErrors(reqErr.fields).Write(w)
	case errors.Is(err, session.ErrUnauthenticated):
		ErrorResponse(w, http.StatusUnauthorized, "authentication required")
	case errors.Is(err, session.ErrForbidden):
		ErrorResponse(w, http.StatusForbidden, "forbidden")
	case errors.Is(err, store.ErrNotFound):
		ErrorResponse(w, http.StatusNotFound, "not found")
	case errors.Is(err, services.ErrInvalid):
		ErrorResponse(w, http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, services.ErrConflict):
		ErrorResponse(w, http.StatusConflict, err.Error())
	default:
		log.NewStructuredLogger(log.FromContext(r.Context())).
			LogError(r.Context(), "Request failed", err, r.Method+" "+r.URL.Path, nil)
		ErrorResponse(w, http.StatusInternalServerError, "internal error")
	}
}
