package handlers

import (
	"encoding/json"
	"net/http"
)

// envelope is the response shape for successful calls. The renewal notice
// rides along whenever the evaluator re-minted the access token while
// serving the request.
type envelope struct {
	Data                  any    `json:"data"`
	RefreshedTokenMessage string `json:"refreshedTokenMessage,omitempty"`
}

func writeData(w http.ResponseWriter, status int, data any, refreshedMessage string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(envelope{
		Data:                  data,
		RefreshedTokenMessage: refreshedMessage,
	})
}

func writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}

func getClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		return xff
	}
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return xri
	}
	return r.RemoteAddr
}
