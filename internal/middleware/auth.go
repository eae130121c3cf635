package middleware

import (
	"net/http"
	"strings"
	"sync"

	"github.com/2beens/gymplan/internal/telemetry/tracing"
	"github.com/2beens/gymplan/pkg"

	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/codes"
)

const AuthTokenHeader = "X-GYMPLAN-TOKEN"

// AuthMiddlewareHandler guards the mutating routes with a bcrypt hashed API token.
// Reads are open.
type AuthMiddlewareHandler struct {
	tokenHash            string
	allowedPaths         map[string]bool
	allowedPathsPrefixes []string

	// bcrypt is slow on purpose, remember tokens that already matched
	verifiedMutex  sync.RWMutex
	verifiedTokens map[string]bool
}

func NewAuthMiddlewareHandler(tokenHash string) *AuthMiddlewareHandler {
	return &AuthMiddlewareHandler{
		tokenHash: tokenHash,
		allowedPaths: map[string]bool{
			"/health": true,
		},
		allowedPathsPrefixes: []string{
			// read-only tools
			"/mcp",
		},
		verifiedTokens: make(map[string]bool),
	}
}

func (h *AuthMiddlewareHandler) pathIsAlwaysAllowed(path string) bool {
	if h.allowedPaths[path] {
		return true
	}
	for _, prefix := range h.allowedPathsPrefixes {
		if strings.HasPrefix(path, prefix) {
			return true
		}
	}
	return false
}

func (h *AuthMiddlewareHandler) tokenValid(token string) bool {
	h.verifiedMutex.RLock()
	verified := h.verifiedTokens[token]
	h.verifiedMutex.RUnlock()
	if verified {
		return true
	}

	if h.tokenHash == "" || !pkg.TokenMatchesHash(token, h.tokenHash) {
		return false
	}

	h.verifiedMutex.Lock()
	h.verifiedTokens[token] = true
	h.verifiedMutex.Unlock()
	return true
}

func (h *AuthMiddlewareHandler) AuthCheck() func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, span := tracing.GlobalTracer.Start(r.Context(), "middleware.auth")
			defer span.End()

			if r.Method == http.MethodOptions {
				w.Header().Add("Allow", "GET, POST, PUT, DELETE, OPTIONS")
				w.WriteHeader(http.StatusOK)
				span.SetStatus(codes.Ok, "options-ok")
				return
			}

			if r.Method == http.MethodGet || h.pathIsAlwaysAllowed(r.URL.Path) {
				span.SetStatus(codes.Ok, "ok")
				next.ServeHTTP(w, r)
				return
			}

			authToken := r.Header.Get(AuthTokenHeader)
			if authToken == "" {
				log.Tracef("[missing token] [auth middleware] unauthorized => %s", r.URL.Path)
				http.Error(w, "no can do", http.StatusUnauthorized)
				span.SetStatus(codes.Error, "missing-auth-token")
				return
			}

			if !h.tokenValid(authToken) {
				reqIp, _ := pkg.ReadUserIP(r)
				log.Warnf("[invalid token] [auth middleware] unauthorized %s %s from %s", r.Method, r.URL.Path, reqIp)
				http.Error(w, "no can do", http.StatusUnauthorized)
				span.SetStatus(codes.Error, "invalid-token")
				return
			}

			span.SetStatus(codes.Ok, "ok")
			next.ServeHTTP(w, r)
		})
	}
}
