package middleware

import (
	"net/http"
	"strings"
)

const OwnerHeader = "X-GYMPLAN-OWNER"

// OwnerResolver returns a func giving the plan owner a request acts on.
// Requests without the owner header act on the default owner.
func OwnerResolver(defaultOwner string) func(r *http.Request) string {
	return func(r *http.Request) string {
		if owner := strings.TrimSpace(r.Header.Get(OwnerHeader)); owner != "" {
			return owner
		}
		return defaultOwner
	}
}
