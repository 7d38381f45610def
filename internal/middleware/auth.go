package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/crucial707/social-auth/internal/auth"
	"github.com/crucial707/social-auth/internal/metrics"
	"github.com/crucial707/social-auth/internal/models"
	"github.com/crucial707/social-auth/internal/repo"
)

type key string

const userKey key = "user"

// Rejection reasons reported to the client by Protect.
const (
	ReasonNoToken      = "No token provided"
	ReasonInvalidToken = "Invalid token"
	ReasonUserNotFound = "User not found"
)

// TokenParser verifies a session token and returns the user id it carries.
type TokenParser interface {
	Parse(token string) (string, error)
}

// UserLoader loads a user by id without its password hash.
type UserLoader interface {
	GetByID(ctx context.Context, id string) (*models.User, error)
}

// UnauthorizedError is a rejected protected request.
type UnauthorizedError struct {
	Reason string
}

func (e *UnauthorizedError) Error() string { return "Unauthorized: " + e.Reason }

// WithUser returns a copy of ctx carrying u.
func WithUser(ctx context.Context, u *models.User) context.Context {
	return context.WithValue(ctx, userKey, u)
}

// UserFromContext returns the user resolved by Protect.
func UserFromContext(ctx context.Context) (*models.User, bool) {
	u, ok := ctx.Value(userKey).(*models.User)
	return u, ok && u != nil
}

// Protect only lets requests through that carry a valid session cookie for an
// existing user. Every failure, including unexpected ones, is answered with 401.
func Protect(tokens TokenParser, users UserLoader) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, err := authenticate(r, tokens, users)
			if err != nil {
				var unauthorized *UnauthorizedError
				if !errors.As(err, &unauthorized) {
					slog.WarnContext(r.Context(), "session guard: lookup failed", "path", r.URL.Path, "error", err)
					unauthorized = &UnauthorizedError{Reason: ReasonInvalidToken}
				}
				metrics.IncGuardRejection(reasonLabel(unauthorized.Reason))
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusUnauthorized)
				json.NewEncoder(w).Encode(map[string]string{"error": unauthorized.Error()})
				return
			}

			next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), user)))
		})
	}
}

func authenticate(r *http.Request, tokens TokenParser, users UserLoader) (user *models.User, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			user, err = nil, fmt.Errorf("panic: %v", rec)
		}
	}()

	token, ok := auth.FromRequest(r)
	if !ok {
		return nil, &UnauthorizedError{Reason: ReasonNoToken}
	}

	userID, err := tokens.Parse(token)
	if err != nil {
		return nil, &UnauthorizedError{Reason: ReasonInvalidToken}
	}

	user, err = users.GetByID(r.Context(), userID)
	if errors.Is(err, repo.ErrNotFound) || (err == nil && user == nil) {
		return nil, &UnauthorizedError{Reason: ReasonUserNotFound}
	}
	if err != nil {
		return nil, err
	}
	return user, nil
}

func reasonLabel(reason string) string {
	switch reason {
	case ReasonNoToken:
		return "no_token"
	case ReasonUserNotFound:
		return "user_not_found"
	default:
		return "invalid_token"
	}
}
