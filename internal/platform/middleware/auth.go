package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

type contextKeyCaller struct{}

// ContextKeyCaller is exported for use in handlers.
var ContextKeyCaller = contextKeyCaller{}

// GetCaller retrieves the authenticated caller identity from the context.
func GetCaller(ctx context.Context) string {
	caller, ok := ctx.Value(ContextKeyCaller).(string)
	if !ok {
		return ""
	}
	return caller
}

// RequireAdmin guards administrative routes. The bearer token must be an HMAC
// JWT signed with the configured key; the subject becomes the caller identity
// that the registry service checks against its administrator address.
func RequireAdmin(signingKey string, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			authHeader := r.Header.Get("Authorization")
			token, ok := strings.CutPrefix(authHeader, "Bearer ")
			if !ok {
				logger.WarnContext(ctx, "unauthorized access - missing token",
					"request_id", GetRequestID(ctx),
				)
				writeUnauthorized(w, "Missing or invalid Authorization header")
				return
			}

			subject, err := validateToken(token, signingKey)
			if err != nil {
				logger.WarnContext(ctx, "unauthorized access - invalid token",
					"error", err,
					"request_id", GetRequestID(ctx),
				)
				writeUnauthorized(w, "Invalid or expired token")
				return
			}

			ctx = context.WithValue(ctx, ContextKeyCaller, subject)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func validateToken(tokenString, signingKey string) (string, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return []byte(signingKey), nil
	}, jwt.WithValidMethods([]string{"HS256"}), jwt.WithExpirationRequired())
	if err != nil {
		return "", err
	}
	return token.Claims.GetSubject()
}

// SignAdminToken issues a short-lived admin token. Used by operational tooling
// and tests; the server itself only validates.
func SignAdminToken(signingKey, subject string, ttl time.Duration) (string, error) {
	claims := jwt.RegisteredClaims{
		Subject:   subject,
		IssuedAt:  jwt.NewNumericDate(time.Now()),
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(signingKey))
}

func writeUnauthorized(w http.ResponseWriter, description string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_, _ = w.Write([]byte(`{"error":"unauthorized","error_description":"` + description + `"}`))
}
