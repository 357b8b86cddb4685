package httputil

import (
	"encoding/json"
	"net/http"
)

// WriteJSON writes a JSON response with the given status code.
// It sets the Content-Type header to application/json and encodes the value as JSON.
// Any encoding errors are silently ignored (best-effort).
func WriteJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

// WriteError writes a standardized JSON error response.
// The response format is: {"code": 404, "message": "...", "data": {}}
func WriteError(w http.ResponseWriter, code int, msg string) {
	WriteErrorData(w, code, msg, nil)
}

// WriteErrorData writes the error envelope with per-field details in data.
// A nil data is sent as an empty object so clients can always index it.
func WriteErrorData(w http.ResponseWriter, code int, msg string, data map[string]any) {
	if data == nil {
		data = map[string]any{}
	}
	WriteJSON(w, code, map[string]any{
		"code":    code,
		"message": msg,
		"data":    data,
	})
}

// FieldError builds one entry of an error envelope's data map.
func FieldError(code, message string) map[string]any {
	return map[string]any{"code": code, "message": message}
}

// WriteNoContent writes an empty 204 response.
func WriteNoContent(w http.ResponseWriter) {
	w.WriteHeader(http.StatusNoContent)
}
