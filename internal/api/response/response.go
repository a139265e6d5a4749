// Package response writes JSON bodies and the {"error","message"} envelope
// used by every HTTP endpoint.
package response

import (
	"encoding/json"
	"io"
	"net/http"
)

// Error codes.
const (
	CodeBadRequest       = "INVALID_REQUEST"
	CodeNotFound         = "NOT_FOUND"
	CodeMethodNotAllowed = "METHOD_NOT_ALLOWED"
	CodeConflict         = "ALREADY_RUNNING"
	CodeUnavailable      = "UNAVAILABLE"
	CodeInternal         = "INTERNAL_ERROR"
)

// ErrorBody is the error envelope.
type ErrorBody struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// WriteJSON writes data as JSON without HTML escaping.
func WriteJSON(w io.Writer, data interface{}) error {
	encoder := json.NewEncoder(w)
	encoder.SetEscapeHTML(false)
	return encoder.Encode(data)
}

// Write sends data with statusCode.
func Write(w http.ResponseWriter, statusCode int, data interface{}) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	return WriteJSON(w, data)
}

// WriteError sends an error envelope with statusCode.
func WriteError(w http.ResponseWriter, statusCode int, errorCode, message string) {
	_ = Write(w, statusCode, ErrorBody{Error: errorCode, Message: message})
}

// WriteSuccess sends data with HTTP 200.
func WriteSuccess(w http.ResponseWriter, data interface{}) error {
	return Write(w, http.StatusOK, data)
}

// WriteAccepted sends data with HTTP 202.
func WriteAccepted(w http.ResponseWriter, data interface{}) error {
	return Write(w, http.StatusAccepted, data)
}
