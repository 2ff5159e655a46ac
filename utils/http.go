package utils

import (
	"encoding/json"
	"net/http"
	"time"
)

// ErrorResponse is the machine-readable failure envelope shared by every
// endpoint: authentication failures on the API pipeline and domain errors
// alike. Timestamp is ISO-8601.
type ErrorResponse struct {
	Status    int    `json:"status"`
	Error     string `json:"error"`
	Message   string `json:"message"`
	Timestamp string `json:"timestamp"`
}

// statusLabels maps HTTP status codes to their short error labels
var statusLabels = map[int]string{
	http.StatusBadRequest:          "Bad Request",
	http.StatusUnauthorized:        "Unauthorized",
	http.StatusForbidden:           "Forbidden",
	http.StatusNotFound:            "Not Found",
	http.StatusConflict:            "Conflict",
	http.StatusServiceUnavailable:  "Service Unavailable",
	http.StatusInternalServerError: "Internal Server Error",
}

// WriteJSON writes a JSON response with the given status code
func WriteJSON(w http.ResponseWriter, status int, data interface{}) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if data == nil {
		return nil
	}

	return json.NewEncoder(w).Encode(data)
}

// WriteError writes the structured error envelope for the given status
func WriteError(w http.ResponseWriter, status int, message string) error {
	label, ok := statusLabels[status]
	if !ok {
		label = http.StatusText(status)
	}
	return WriteJSON(w, status, ErrorResponse{
		Status:    status,
		Error:     label,
		Message:   message,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}

// WriteUnauthorized writes a 401 envelope with a generic message
func WriteUnauthorized(w http.ResponseWriter, message string) error {
	if message == "" {
		message = "Authentication is required to access this resource"
	}
	return WriteError(w, http.StatusUnauthorized, message)
}

// WriteForbidden writes a 403 envelope with a generic message
func WriteForbidden(w http.ResponseWriter, message string) error {
	if message == "" {
		message = "You do not have permission to access this resource"
	}
	return WriteError(w, http.StatusForbidden, message)
}

// WriteNotFound writes a 404 envelope
func WriteNotFound(w http.ResponseWriter, message string) error {
	if message == "" {
		message = "Resource not found"
	}
	return WriteError(w, http.StatusNotFound, message)
}

// WriteBadRequest writes a 400 envelope
func WriteBadRequest(w http.ResponseWriter, message string) error {
	return WriteError(w, http.StatusBadRequest, message)
}

// WriteConflict writes a 409 envelope
func WriteConflict(w http.ResponseWriter, message string) error {
	return WriteError(w, http.StatusConflict, message)
}

// WriteInternalServerError writes a 500 envelope with a generic message
func WriteInternalServerError(w http.ResponseWriter) error {
	return WriteError(w, http.StatusInternalServerError, "An unexpected error occurred")
}

// WriteOK writes a 200 OK response with the given body
func WriteOK(w http.ResponseWriter, data interface{}) error {
	return WriteJSON(w, http.StatusOK, data)
}

// WriteCreated writes a 201 Created response with the given body
func WriteCreated(w http.ResponseWriter, data interface{}) error {
	return WriteJSON(w, http.StatusCreated, data)
}

// WriteNoContent writes a 204 No Content response
func WriteNoContent(w http.ResponseWriter) {
	w.WriteHeader(http.StatusNoContent)
}
