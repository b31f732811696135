package v1

import (
	"context"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

type uploaderKey struct{}

// Authenticator validates the bearer token and stores the caller identity in
// the request context. Token issuance lives outside this service; only a
// validated actor identity is needed here.
func Authenticator(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
			if raw == "" || raw == r.Header.Get("Authorization") {
				http.Error(w, "missing bearer token", http.StatusUnauthorized)
				return
			}

			claims := jwt.MapClaims{}
			_, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (any, error) {
				return []byte(secret), nil
			}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
			if err != nil {
				http.Error(w, "invalid token", http.StatusUnauthorized)
				return
			}

			uploader := claimString(claims, "email")
			if uploader == "" {
				uploader = claimString(claims, "sub")
			}
			if uploader == "" {
				http.Error(w, "token carries no identity", http.StatusUnauthorized)
				return
			}

			ctx := context.WithValue(r.Context(), uploaderKey{}, uploader)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// UploaderFromContext returns the authenticated actor identity set by
// Authenticator.
func UploaderFromContext(ctx context.Context) string {
	uploader, _ := ctx.Value(uploaderKey{}).(string)
	return uploader
}

func claimString(claims jwt.MapClaims, key string) string {
	s, _ := claims[key].(string)
	return s
}
