package security

import (
	"errors"
	"net/http"
	"strings"
)

var (
	ErrMissingToken    = errors.New("missing authorization header")
	ErrMalformedBearer = errors.New("invalid authorization header format")
)

// TokenFromRequest reads a bearer token from the Authorization header, falling back to
// the token query parameter used by browser websocket clients.
func TokenFromRequest(r *http.Request) (string, error) {
	if authHeader := r.Header.Get("Authorization"); authHeader != "" {
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" || strings.TrimSpace(parts[1]) == "" {
			return "", ErrMalformedBearer
		}
		return strings.TrimSpace(parts[1]), nil
	}

	if token := r.URL.Query().Get("token"); token != "" {
		return token, nil
	}
	return "", ErrMissingToken
}
