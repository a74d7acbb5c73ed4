// Package http serves the ledger web frontend.
//
// This file implements the builder for htmx responses: out-of-band
// fragments in the body, client-side events in the HX-Trigger header.

package http

import (
	"encoding/json"
	"html/template"
	"net/http"
)

// HTMXResponseBuilder provides a fluent API for building HTMX responses.
type HTMXResponseBuilder struct {
	triggers   map[string]any
	statusCode int
	body       []byte
	headers    map[string]string
}

// NewHTMXResponse creates a new response builder with default 200 status.
func NewHTMXResponse() *HTMXResponseBuilder {
	return &HTMXResponseBuilder{
		triggers:   make(map[string]any),
		statusCode: http.StatusOK,
		headers:    make(map[string]string),
	}
}

// Status sets the HTTP status code for the response.
func (b *HTMXResponseBuilder) Status(code int) *HTMXResponseBuilder {
	b.statusCode = code
	return b
}

// Trigger adds a named event with optional data to the HX-Trigger header.
func (b *HTMXResponseBuilder) Trigger(name string, data any) *HTMXResponseBuilder {
	b.triggers[name] = data
	return b
}

// TriggerAlerts asks the page to show each message as a blocking alert, in
// order. No event is added when messages is empty.
func (b *HTMXResponseBuilder) TriggerAlerts(messages []string) *HTMXResponseBuilder {
	if len(messages) == 0 {
		return b
	}
	return b.Trigger(EventAlert, map[string][]string{"messages": messages})
}

// TriggerFormReset asks the page to reset the add form.
func (b *HTMXResponseBuilder) TriggerFormReset() *HTMXResponseBuilder {
	return b.Trigger(EventFormReset, struct{}{})
}

// Header adds a custom header to the response.
func (b *HTMXResponseBuilder) Header(name, value string) *HTMXResponseBuilder {
	b.headers[name] = value
	return b
}

// BodyString sets the response body as a string.
func (b *HTMXResponseBuilder) BodyString(content string) *HTMXResponseBuilder {
	b.body = []byte(content)
	return b
}

// BodyHTML sets the response body as HTML content.
func (b *HTMXResponseBuilder) BodyHTML(html []byte) *HTMXResponseBuilder {
	b.headers["Content-Type"] = "text/html; charset=utf-8"
	b.body = html
	return b
}

// Write sends the built response to the http.ResponseWriter.
func (b *HTMXResponseBuilder) Write(w http.ResponseWriter) {
	for name, value := range b.headers {
		w.Header().Set(name, value)
	}

	if len(b.triggers) > 0 {
		triggerJSON, err := json.Marshal(b.triggers)
		if err == nil {
			w.Header().Set("HX-Trigger", string(triggerJSON))
		}
	}

	w.WriteHeader(b.statusCode)
	if len(b.body) > 0 {
		_, _ = w.Write(b.body)
	}
}

// ErrorResponse creates an HTML error response. The message is escaped.
func ErrorResponse(statusCode int, message string) *HTMXResponseBuilder {
	return NewHTMXResponse().
		Status(statusCode).
		BodyHTML([]byte(`<div class="error">` + template.HTMLEscapeString(message) + `</div>`))
}

// BadRequestError creates a 400 Bad Request error response.
func BadRequestError(message string) *HTMXResponseBuilder {
	return ErrorResponse(http.StatusBadRequest, message)
}

// InternalServerError creates a 500 Internal Server Error response.
func InternalServerError(message string) *HTMXResponseBuilder {
	return ErrorResponse(http.StatusInternalServerError, message)
}

// TooManyRequestsError creates a 429 response asking the client to back off.
func TooManyRequestsError() *HTMXResponseBuilder {
	return ErrorResponse(http.StatusTooManyRequests, "Rate limit exceeded. Please try again later.").
		Header("Retry-After", "60")
}
