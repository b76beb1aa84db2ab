package gateway

import (
	"crypto/subtle"
	"net/http"
	"os"
	"strings"

	"github.com/mkessel/daynote/internal/config"
	"github.com/mkessel/daynote/internal/domain"
)

// ResolvedAuth holds the resolved auth configuration for the gateway.
// Every authenticated request acts as Owner; there is exactly one
// principal behind the token.
type ResolvedAuth struct {
	Token string
	Owner string
}

// ResolveAuth resolves the gateway credential from config and environment.
// Precedence: config value, then env variable.
func ResolveAuth(cfg config.GatewayAuth) ResolvedAuth {
	auth := ResolvedAuth{Token: cfg.Token, Owner: cfg.Owner}
	if auth.Token == "" {
		auth.Token = os.Getenv("DAYNOTE_GATEWAY_TOKEN")
	}
	if auth.Owner == "" {
		auth.Owner = "local"
	}
	return auth
}

// Authorize checks a presented token against the resolved credential.
// An unconfigured server token rejects everything.
func Authorize(auth ResolvedAuth, token string) bool {
	if auth.Token == "" || token == "" {
		return false
	}
	return safeEqual(token, auth.Token)
}

// requestToken extracts the credential from a request: Authorization
// bearer header first, then the token query parameter (used by websocket
// clients that cannot set headers).
func requestToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if strings.HasPrefix(header, "Bearer ") {
		return strings.TrimPrefix(header, "Bearer ")
	}
	return r.URL.Query().Get("token")
}

// withAuth guards a handler with token auth and attaches the owner
// identity to the request context.
func (s *Server) withAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !Authorize(s.auth, requestToken(r)) {
			s.log.Warn().Str("remote", r.RemoteAddr).Str("path", r.URL.Path).Msg("rejected unauthenticated request")
			writeError(w, http.StatusUnauthorized, "unauthorized", "invalid or missing token")
			return
		}
		ctx := domain.WithIdentity(r.Context(), domain.Identity{Subject: s.auth.Owner})
		next(w, r.WithContext(ctx))
	}
}

// safeEqual performs a constant-time string comparison to prevent timing
// attacks. Length is compared in constant time as well.
func safeEqual(a, b string) bool {
	lenMatch := subtle.ConstantTimeEq(int32(len(a)), int32(len(b)))
	cmp := subtle.ConstantTimeCompare([]byte(a), []byte(b))
	return subtle.ConstantTimeSelect(lenMatch, cmp, 0) == 1
}
