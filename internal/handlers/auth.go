package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"regexp"
	"unicode/utf8"

	"github.com/crucial707/social-auth/internal/auth"
	"github.com/crucial707/social-auth/internal/metrics"
	"github.com/crucial707/social-auth/internal/middleware"
	"github.com/crucial707/social-auth/internal/models"
	"github.com/crucial707/social-auth/internal/repo"
)

// emailPattern is local-part@domain.tld with no whitespace and a single @.
var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// UserStore is the credential store the auth handlers depend on.
type UserStore interface {
	UsernameExists(ctx context.Context, username string) (bool, error)
	EmailExists(ctx context.Context, email string) (bool, error)
	Create(ctx context.Context, u *models.User) error
	GetByUsername(ctx context.Context, username string) (*models.User, error)
}

// TokenIssuer signs session tokens for a user id.
type TokenIssuer interface {
	Issue(userID string) (string, error)
}

// EventRecorder stores successful signups and logins.
type EventRecorder interface {
	Record(ctx context.Context, e *models.AuthEvent) error
}

// ==========================
// Auth Handler
// ==========================

// AuthHandler serves the session endpoints. Events is optional.
type AuthHandler struct {
	Users   UserStore
	Tokens  TokenIssuer
	Cookies auth.SessionCookies
	Events  EventRecorder
}

type signupInput struct {
	Username string `json:"username"`
	Fullname string `json:"fullname"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (in signupInput) validate() error {
	if in.Username == "" || in.Fullname == "" || in.Email == "" || in.Password == "" {
		return &ValidationError{Message: "All fields are required"}
	}
	if !emailPattern.MatchString(in.Email) {
		return &ValidationError{Message: "Invalid email format"}
	}
	if utf8.RuneCountInString(in.Password) < auth.MinPasswordLength {
		return &ValidationError{Message: "Password must be at least 6 characters"}
	}
	if len(in.Password) > auth.MaxPasswordBytes {
		return &ValidationError{Message: "Password must be at most 72 bytes"}
	}
	return nil
}

// ==========================
// Signup
// ==========================
func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var input signupInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		JSONError(w, "invalid json", http.StatusBadRequest)
		return
	}

	user, err := h.signup(r.Context(), input)
	if err != nil {
		metrics.IncAuthAttempt("signup", outcome(err))
		writeError(w, r, "signup", err)
		return
	}

	if err := h.startSession(w, user); err != nil {
		metrics.IncAuthAttempt("signup", "error")
		writeError(w, r, "signup", err)
		return
	}

	metrics.IncAuthAttempt("signup", "success")
	h.recordEvent(r, user, models.EventSignup)
	slog.InfoContext(r.Context(), "user created", "user_id", user.ID)
	writeJSON(w, http.StatusCreated, user.Profile())
}

// signup checks the username and then the email for uniqueness before
// inserting. The two lookups are not atomic; the unique constraints in the
// schema catch a concurrent signup that slips between them.
func (h *AuthHandler) signup(ctx context.Context, input signupInput) (*models.User, error) {
	if err := input.validate(); err != nil {
		return nil, err
	}

	taken, err := h.Users.UsernameExists(ctx, input.Username)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, &ConflictError{Message: "Username already taken"}
	}

	taken, err = h.Users.EmailExists(ctx, input.Email)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, &ConflictError{Message: "Email already registered"}
	}

	hash, err := auth.HashPassword(input.Password)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Username:     input.Username,
		Fullname:     input.Fullname,
		Email:        input.Email,
		PasswordHash: hash,
	}
	switch err := h.Users.Create(ctx, user); {
	case errors.Is(err, repo.ErrUsernameTaken):
		return nil, &ConflictError{Message: "Username already taken"}
	case errors.Is(err, repo.ErrEmailTaken):
		return nil, &ConflictError{Message: "Email already registered"}
	case err != nil:
		return nil, err
	}
	return user, nil
}

// ==========================
// Login
// ==========================
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}

	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		JSONError(w, "invalid json", http.StatusBadRequest)
		return
	}

	user, err := h.login(r.Context(), input.Username, input.Password)
	if err == nil {
		err = h.startSession(w, user)
	}
	if err != nil {
		metrics.IncAuthAttempt("login", outcome(err))
		writeError(w, r, "login", err)
		return
	}

	metrics.IncAuthAttempt("login", "success")
	h.recordEvent(r, user, models.EventLogin)
	slog.InfoContext(r.Context(), "user logged in", "user_id", user.ID)
	writeJSON(w, http.StatusOK, user.Profile())
}

// login always runs a bcrypt comparison, against a dummy hash when the
// username is unknown, so response timing does not reveal which usernames exist.
func (h *AuthHandler) login(ctx context.Context, username, password string) (*models.User, error) {
	if username == "" || password == "" {
		return nil, &ValidationError{Message: "Username and password are required"}
	}

	user, err := h.Users.GetByUsername(ctx, username)
	if err != nil && !errors.Is(err, repo.ErrNotFound) {
		return nil, err
	}

	var hash string
	if user != nil {
		hash = user.PasswordHash
	}
	if !auth.ComparePassword(hash, password) || user == nil {
		return nil, ErrInvalidCredentials
	}
	return user, nil
}

// ==========================
// Logout
// ==========================

// Logout clears the session cookie. It succeeds whether or not a cookie was sent.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	h.Cookies.Clear(w)
	writeJSON(w, http.StatusOK, map[string]string{"message": "Logged out successfully"})
}

// ==========================
// Me
// ==========================

// Me returns the profile of the user resolved by middleware.Protect.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		writeError(w, r, "me", errors.New("no user in request context"))
		return
	}
	writeJSON(w, http.StatusOK, user.Profile())
}

func (h *AuthHandler) startSession(w http.ResponseWriter, user *models.User) error {
	token, err := h.Tokens.Issue(user.ID)
	if err != nil {
		return err
	}
	h.Cookies.Set(w, token)
	return nil
}

// recordEvent never fails the request; the session is already issued.
func (h *AuthHandler) recordEvent(r *http.Request, user *models.User, action string) {
	if h.Events == nil {
		return
	}
	e := &models.AuthEvent{
		UserID:    user.ID,
		Action:    action,
		IP:        middleware.ClientIP(r),
		UserAgent: r.UserAgent(),
	}
	if err := h.Events.Record(r.Context(), e); err != nil {
		slog.WarnContext(r.Context(), "failed to record auth event", "action", action, "user_id", user.ID, "error", err)
	}
}

func outcome(err error) string {
	var (
		validation *ValidationError
		conflict   *ConflictError
	)
	switch {
	case errors.As(err, &conflict):
		return "conflict"
	case errors.As(err, &validation), errors.Is(err, ErrInvalidCredentials):
		return "invalid"
	default:
		return "error"
	}
}
