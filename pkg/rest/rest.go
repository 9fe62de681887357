package rest

import (
	"encoding/json"
	"net/http"
)

type Envelope map[string]any

// ReadJSON decodes the request body into dst. Unknown fields are ignored so
// callers may send server-managed fields without getting rejected.
func ReadJSON(r *http.Request, dst any) error {
	return json.NewDecoder(r.Body).Decode(dst)
}

func WriteJSON(w http.ResponseWriter, status int, data Envelope) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	return json.NewEncoder(w).Encode(data)
}
