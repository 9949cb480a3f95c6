package api

import (
	"net/http"
	"time"
)

// middleware logs the request, sets CORS headers, and enforces the
// read-only/accepts-writes gates before calling handler.
func (s *Server) middleware(handler http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log.Infof("%s %s %s", r.Method, r.URL.Path, time.Now())

		addCORSHeaders(w)

		if !s.writeAllowed(r) {
			writeJSONError(w, http.StatusForbidden, "server is in read-only mode, only GET requests are allowed")
			return
		}
		handler(w, r)
	}
}

// addCORSHeaders sets the wildcard-always CORS policy spec.md requires:
// every response, not just whitelisted origins, carries
// Access-Control-Allow-Origin: *.
func addCORSHeaders(w http.ResponseWriter) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type,Authorization")
}

func (s *Server) writeAllowed(r *http.Request) bool {
	if r.Method == http.MethodGet || r.Method == http.MethodOptions {
		return true
	}
	if s.Config.API.ReadOnly {
		return false
	}
	if s.Config.API.IsSecondary {
		return false
	}
	if !s.Config.API.AcceptsWrites {
		return false
	}
	return true
}
