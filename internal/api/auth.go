package api

import (
	"crypto/subtle"
	"errors"
	"net/http"
	"strings"
)

const bearerChallenge = `Bearer realm="biobridge"`

var (
	errNoCredentials = errors.New("missing Authorization header")
	errBadScheme     = errors.New("authorization scheme must be Bearer")
	errTokenMismatch = errors.New("invalid API key")
)

// bearerToken returns the token of an "Authorization: Bearer <token>" header.
// The scheme is matched case-insensitively.
func bearerToken(r *http.Request) (string, error) {
	header := strings.TrimSpace(r.Header.Get("Authorization"))
	if header == "" {
		return "", errNoCredentials
	}
	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", errBadScheme
	}
	return strings.TrimSpace(token), nil
}

// tokenMatches compares in constant time. An unset key matches nothing.
func tokenMatches(got, want string) bool {
	if want == "" || got == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(got), []byte(want)) == 1
}

// authMiddleware rejects requests without the configured bearer token.
func (s *Server) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, err := bearerToken(r)
		if err == nil && !tokenMatches(token, s.config.APIKey) {
			err = errTokenMismatch
		}
		if err != nil {
			s.logger.Debug("rejected request", "path", r.URL.Path, "remote", r.RemoteAddr, "reason", err)
			w.Header().Set("WWW-Authenticate", bearerChallenge)
			s.writeError(w, http.StatusUnauthorized, err.Error())
			return
		}
		next.ServeHTTP(w, r)
	})
}
