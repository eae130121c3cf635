package middleware

import (
	"net/http"
	"strings"

	log "github.com/sirupsen/logrus"
)

var corsAllowedHeaders = strings.Join([]string{
	"Accept",
	"Content-Type",
	"Content-Length",
	"Accept-Encoding",
	"Authorization",
	AuthTokenHeader,
	OwnerHeader,
	"MCP-Protocol-Version",
	"MCP-Session-Id",
}, ", ")

// trusted non-browser clients, matched by user agent prefix
var corsTrustedAgents = []string{"gymplanctl/", "curl/", "test-agent"}

// CorsPolicy decides which callers may reach the API.
type CorsPolicy struct {
	origins map[string]bool
}

func NewCorsPolicy(allowedOrigins []string) *CorsPolicy {
	p := &CorsPolicy{origins: map[string]bool{}}
	for _, o := range allowedOrigins {
		if o = strings.TrimRight(strings.TrimSpace(o), "/"); o != "" {
			p.origins[o] = true
		}
	}
	return p
}

// allowOrigin returns the Access-Control-Allow-Origin value for r, and false when r is rejected.
func (p *CorsPolicy) allowOrigin(r *http.Request) (string, bool) {
	origin := r.Header.Get("Origin")
	if p.origins[origin] {
		return origin, true
	}

	// MCP clients and health checkers usually send no Origin
	if strings.HasPrefix(r.URL.Path, "/mcp") {
		if origin == "" {
			return "*", true
		}
		return origin, true
	}
	if r.URL.Path == "/health" {
		return origin, true
	}

	ua := r.Header.Get("User-Agent")
	for _, agent := range corsTrustedAgents {
		if strings.HasPrefix(ua, agent) {
			return origin, true
		}
	}
	return "", false
}

func (p *CorsPolicy) Middleware() func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			allowed, ok := p.allowOrigin(r)
			if !ok {
				log.Warnf("cors: rejected origin [%s] for [%s]", r.Header.Get("Origin"), r.URL.Path)
				w.WriteHeader(http.StatusForbidden)
				return
			}

			w.Header().Set("Access-Control-Allow-Origin", allowed)
			w.Header().Set("Access-Control-Allow-Headers", corsAllowedHeaders)
			w.Header().Set("Access-Control-Allow-Methods", "POST, GET, OPTIONS, PUT, DELETE")
			next.ServeHTTP(w, r)
		})
	}
}
