package httpapi

import (
	"encoding/json"
	"net/http"
)

// ErrorEnvelope is the JSON body of every non-2xx API response that is not an
// import result. Code is a stable machine-readable identifier (IMPORT_MISSING_FILE,
// IMPORT_FILE_TOO_LARGE, ...); Message is for humans and may change wording.
type ErrorEnvelope struct {
	Message string            `json:"message"`
	Code    string            `json:"code"`
	Meta    map[string]string `json:"meta,omitempty"`
}

// WriteJSON writes the payload with the given status. Import results go
// through here too: 200 for a committed run, 422 for a rolled-back one.
func WriteJSON(w http.ResponseWriter, status int, payload any) error {
	if w == nil {
		return nil
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return nil
	}
	return json.NewEncoder(w).Encode(payload)
}

// WriteError writes a coded error envelope.
func WriteError(w http.ResponseWriter, status int, code, message string, meta map[string]string) error {
	return WriteJSON(w, status, &ErrorEnvelope{
		Code:    code,
		Message: message,
		Meta:    meta,
	})
}
