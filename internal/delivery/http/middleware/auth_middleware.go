package middleware

import (
	"context"
	"net/http"

	"pharmacare-backend/internal/domain"
	"pharmacare-backend/pkg/utils"
)

// AuthMiddleware validates the access token and puts a partial user built
// from the claims into the request context. No DB hit per request; the
// username claim is the tenancy key everything downstream scopes by.
func AuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, err := utils.ExtractClaims(r)
		if err != nil {
			http.Error(w, "Unauthorized: Invalid or missing token", http.StatusUnauthorized)
			return
		}
		if claims.Username == "" {
			http.Error(w, "Unauthorized: Invalid token", http.StatusUnauthorized)
			return
		}

		user := &domain.User{
			ID:       claims.UserID,
			Username: claims.Username,
		}

		ctx := context.WithValue(r.Context(), domain.UserContextKey, user)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
