package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/hawy/hawy-go/internal/model"
	"github.com/hawy/hawy-go/internal/service"
)

type contextKey string

const userKey contextKey = "user"

// TokenResolver maps a bearer token to its user. *service.AuthService implements it.
type TokenResolver interface {
	ResolveToken(ctx context.Context, token string) (*model.User, error)
}

// RequireAuth rejects requests without a valid bearer token.
func RequireAuth(auth TokenResolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := bearerToken(r)
			if !ok {
				writeJSONError(w, http.StatusUnauthorized, "invalid_token", "missing or malformed authorization header")
				return
			}

			user, err := auth.ResolveToken(r.Context(), token)
			if err != nil {
				switch {
				case errors.Is(err, service.ErrInvalidToken):
					writeJSONError(w, http.StatusUnauthorized, "invalid_token", err.Error())
				case errors.Is(err, service.ErrUnknownUser):
					writeJSONError(w, http.StatusUnauthorized, "unknown_user", err.Error())
				default:
					writeJSONError(w, http.StatusInternalServerError, "internal_error", "internal server error")
				}
				return
			}

			next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), user)))
		})
	}
}

// OptionalAuth attaches the user when a valid bearer token is present. Missing,
// invalid and expired tokens leave the request anonymous.
func OptionalAuth(auth TokenResolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := bearerToken(r)
			if !ok {
				next.ServeHTTP(w, r)
				return
			}

			user, err := auth.ResolveToken(r.Context(), token)
			switch {
			case err == nil:
				r = r.WithContext(WithUser(r.Context(), user))
			case errors.Is(err, service.ErrInvalidToken), errors.Is(err, service.ErrUnknownUser):
			default:
				writeJSONError(w, http.StatusInternalServerError, "internal_error", "internal server error")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// UserFromContext returns the authenticated user, if any.
func UserFromContext(ctx context.Context) (*model.User, bool) {
	u, ok := ctx.Value(userKey).(*model.User)
	return u, ok && u != nil
}

// WithUser returns a copy of ctx carrying user.
func WithUser(ctx context.Context, user *model.User) context.Context {
	return context.WithValue(ctx, userKey, user)
}

func bearerToken(r *http.Request) (string, bool) {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return "", false
	}

	token, found := strings.CutPrefix(authHeader, "Bearer ")
	token = strings.TrimSpace(token)
	return token, found && token != ""
}

func writeJSONError(w http.ResponseWriter, status int, code, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": code, "message": msg})
}
