package server

import (
	"crypto/subtle"
	"net/http"
	"strings"
)

// authorized compares a presented token with the configured one. Any token
// passes when none is configured.
func (s *Server) authorized(token string) bool {
	if s.config.AuthToken == "" {
		return true
	}
	return subtle.ConstantTimeCompare([]byte(token), []byte(s.config.AuthToken)) == 1
}

// requestToken reads a bearer token from the Authorization header or the
// token query parameter.
func requestToken(r *http.Request) string {
	if h := r.Header.Get("Authorization"); strings.HasPrefix(h, "Bearer ") {
		return strings.TrimPrefix(h, "Bearer ")
	}
	return r.URL.Query().Get("token")
}
