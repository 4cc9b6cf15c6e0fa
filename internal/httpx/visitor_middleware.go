package httpx

import (
	"net/http"
	"time"

	"paperpharmacy/internal/platform/crypto"
)

// VisitorTokenHeader carries the signed visitor token in both directions.
const VisitorTokenHeader = "X-Visitor-Token"

// VisitorMiddleware attaches a visitor ID to every request. A missing or
// invalid token is replaced by a freshly issued one, returned in the
// response header so the client can keep it.
func VisitorMiddleware(secret string, ttl time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if token := r.Header.Get(VisitorTokenHeader); token != "" {
				if claims, err := crypto.ParseToken(secret, token); err == nil {
					ctx := ContextWithVisitor(r.Context(), claims.Sub)
					next.ServeHTTP(w, r.WithContext(ctx))
					return
				}
			}

			visitorID := crypto.NewVisitorID()
			token, err := crypto.GenerateToken(secret, visitorID, ttl)
			if err != nil {
				JSONError(w, r, http.StatusInternalServerError, "INTERNAL_ERROR", "could not issue visitor token", nil)
				return
			}
			w.Header().Set(VisitorTokenHeader, token)

			ctx := ContextWithVisitor(r.Context(), visitorID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
