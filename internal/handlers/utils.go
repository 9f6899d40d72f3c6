package handlers

import (
	"encoding/json"
	"net"
	"net/http"
)

// RespondWithError responds with an error message.
func RespondWithError(w http.ResponseWriter, code int, message string) {
	RespondWithJSON(w, code, map[string]interface{}{"error": message, "success": false})
}

// RespondWithJSON responds with a JSON payload.
func RespondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	response, _ := json.Marshal(payload)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	w.Write(response)
}

// ClientKeyFromRequest derives the rate-limit identity for a request. The
// RealIP middleware has already resolved X-Forwarded-For / X-Real-IP into
// RemoteAddr, so the remaining work is stripping the port.
func ClientKeyFromRequest(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		// RemoteAddr had no port (already a bare IP).
		return r.RemoteAddr
	}
	return host
}
