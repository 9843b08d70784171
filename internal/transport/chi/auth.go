package chi

import (
	"context"
	"net/http"
	"strings"

	authuc "github.com/nomadmatch/nomadmatch/internal/usecase/auth"
)

// TokenVerifier resolves an access token to its claims.
type TokenVerifier interface {
	VerifyToken(token string) (*authuc.Claims, error)
}

type claimsKey struct{}

// JWTAuthMiddleware returns a middleware that resolves Bearer tokens to
// account claims. Requests without a token pass through anonymously;
// only a token that is present but invalid gets rejected. Handlers
// that need an account call claimsFromContext themselves.
func JWTAuthMiddleware(verifier TokenVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			auth := r.Header.Get("Authorization")
			if auth == "" {
				next.ServeHTTP(w, r)
				return
			}

			const bearerPrefix = "Bearer "
			if !strings.HasPrefix(auth, bearerPrefix) {
				writeError(w, http.StatusUnauthorized, CodeInvalidToken,
					"authorization header must use Bearer scheme")
				return
			}

			claims, err := verifier.VerifyToken(auth[len(bearerPrefix):])
			if err != nil {
				writeError(w, http.StatusUnauthorized, CodeInvalidToken, "invalid access token")
				return
			}

			next.ServeHTTP(w, r.WithContext(contextWithClaims(r.Context(), claims)))
		})
	}
}

func contextWithClaims(ctx context.Context, claims *authuc.Claims) context.Context {
	return context.WithValue(ctx, claimsKey{}, claims)
}

func claimsFromContext(ctx context.Context) (*authuc.Claims, bool) {
	claims, ok := ctx.Value(claimsKey{}).(*authuc.Claims)
	return claims, ok
}
