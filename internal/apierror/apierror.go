// Package apierror holds the JSON envelopes of every 4xx/5xx response.
// Internal details (stack traces, SQL, upstream bodies) never go in them;
// server messages from the POS API are the one exception and are shown
// verbatim because operators act on them.
package apierror

type APIError struct {
	Detail string `json:"detail"`
	// Code is a stable machine-readable reason for the front-end, e.g.
	// "caja_no_abierta" or "venta_fallida".
	Code string `json:"code,omitempty"`
}

func New(msg string) *APIError {
	return &APIError{Detail: msg}
}

func WithCode(code, msg string) *APIError {
	return &APIError{Detail: msg, Code: code}
}

// ValidationError maps field names to the rule or message that failed.
type ValidationError struct {
	Detail string            `json:"detail"`
	Fields map[string]string `json:"fields"`
}

func NewValidation(fields map[string]string) *ValidationError {
	return &ValidationError{Detail: "Error de validacion", Fields: fields}
}
