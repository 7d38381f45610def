package auth

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/crucial707/social-auth/cmd/cli/config"
	apiauth "github.com/crucial707/social-auth/internal/auth"
	"github.com/crucial707/social-auth/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// captureOutput helps capture stdout during command execution.
func captureOutput(t *testing.T, fn func()) string {
	t.Helper()

	old := os.Stdout
	r, w, _ := os.Pipe()
	os.Stdout = w

	fn()

	_ = w.Close()
	os.Stdout = old

	var buf bytes.Buffer
	_, _ = buf.ReadFrom(r)
	return buf.String()
}

// fakeAPI serves the four session endpoints against a single in-memory user.
func fakeAPI(t *testing.T) *httptest.Server {
	t.Helper()
	profile := models.PublicProfile{ID: "u-1", Username: "bob", Fullname: "Bob B", Email: "bob@example.com", Followers: []string{}, Following: []string{}}

	mux := http.NewServeMux()
	setCookie := func(w http.ResponseWriter) {
		http.SetCookie(w, &http.Cookie{Name: apiauth.CookieName, Value: "tok-123", MaxAge: 3600, Path: "/"})
	}
	mux.HandleFunc("/signup", func(w http.ResponseWriter, r *http.Request) {
		var in map[string]string
		_ = json.NewDecoder(r.Body).Decode(&in)
		if in["username"] == "taken" {
			w.WriteHeader(http.StatusConflict)
			_ = json.NewEncoder(w).Encode(map[string]string{"error": "Username already taken"})
			return
		}
		setCookie(w)
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(profile)
	})
	mux.HandleFunc("/login", func(w http.ResponseWriter, r *http.Request) {
		var in map[string]string
		_ = json.NewDecoder(r.Body).Decode(&in)
		if in["password"] != "secret1" {
			w.WriteHeader(http.StatusBadRequest)
			_ = json.NewEncoder(w).Encode(map[string]string{"error": "Invalid credentials"})
			return
		}
		setCookie(w)
		_ = json.NewEncoder(w).Encode(profile)
	})
	mux.HandleFunc("/logout", func(w http.ResponseWriter, r *http.Request) {
		http.SetCookie(w, &http.Cookie{Name: apiauth.CookieName, MaxAge: -1, Path: "/"})
		_ = json.NewEncoder(w).Encode(map[string]string{"message": "Logged out successfully"})
	})
	mux.HandleFunc("/me", func(w http.ResponseWriter, r *http.Request) {
		if c, err := r.Cookie(apiauth.CookieName); err != nil || c.Value != "tok-123" {
			w.WriteHeader(http.StatusUnauthorized)
			_ = json.NewEncoder(w).Encode(map[string]string{"error": "Unauthorized: No token provided"})
			return
		}
		_ = json.NewEncoder(w).Encode(profile)
	})
	mux.HandleFunc("/me/events", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("limit") != "5" {
			t.Errorf("unexpected query: %s", r.URL.RawQuery)
		}
		_ = json.NewEncoder(w).Encode([]models.AuthEvent{
			{ID: 2, UserID: "u-1", Action: models.EventLogin, IP: "203.0.113.9", UserAgent: "Go-http-client/1.1", CreatedAt: time.Now()},
		})
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("SOCIAL_AUTH_API_URL", srv.URL)
	t.Setenv("SOCIAL_AUTH_SESSION_FILE", filepath.Join(t.TempDir(), "session"))
	return srv
}

func TestSignup_StoresSession(t *testing.T) {
	fakeAPI(t)

	cmd := signupCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"--username", "bob", "--fullname", "Bob B", "--email", "bob@example.com", "--password", "secret1"})
	require.NoError(t, cmd.Execute())

	assert.Contains(t, out.String(), "Signed up as bob")
	token, err := config.LoadSession()
	require.NoError(t, err)
	assert.Equal(t, "tok-123", token)
}

func TestSignup_ConflictSurfacesServerMessage(t *testing.T) {
	fakeAPI(t)

	cmd := signupCmd()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetArgs([]string{"--username", "taken", "--fullname", "T", "--email", "t@example.com", "--password", "secret1"})
	err := cmd.Execute()

	require.Error(t, err)
	assert.Contains(t, err.Error(), "Username already taken")
	_, err = config.LoadSession()
	assert.ErrorIs(t, err, config.ErrNoSession)
}

func TestLogin_PromptsForPassword(t *testing.T) {
	fakeAPI(t)

	cmd := loginCmd()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetIn(strings.NewReader("secret1\n"))
	cmd.SetArgs([]string{"--username", "bob"})
	require.NoError(t, cmd.Execute())

	token, err := config.LoadSession()
	require.NoError(t, err)
	assert.Equal(t, "tok-123", token)
}

func TestPrompt_KeepsSpacesInPipedPassword(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"inner and outer spaces", " pass phrase \n", " pass phrase "},
		{"crlf terminator", "pass phrase\r\n", "pass phrase"},
		{"no trailing newline", "last line", "last line"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd := loginCmd()
			cmd.SetOut(&bytes.Buffer{})
			cmd.SetIn(strings.NewReader(tt.input))

			got, err := prompt(cmd, "Password: ")
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestPrompt_EmptyInput(t *testing.T) {
	cmd := loginCmd()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetIn(strings.NewReader(""))

	_, err := prompt(cmd, "Password: ")
	require.Error(t, err)
}

func TestLogin_PipedPasswordWithSpaces(t *testing.T) {
	fakeAPI(t)
	var got string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var in map[string]string
		_ = json.NewDecoder(r.Body).Decode(&in)
		got = in["password"]
		http.SetCookie(w, &http.Cookie{Name: apiauth.CookieName, Value: "tok-123", MaxAge: 3600, Path: "/"})
		_ = json.NewEncoder(w).Encode(models.PublicProfile{ID: "u-1", Username: "bob"})
	}))
	t.Cleanup(srv.Close)
	t.Setenv("SOCIAL_AUTH_API_URL", srv.URL)

	cmd := loginCmd()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetIn(strings.NewReader("  correct horse battery  \n"))
	cmd.SetArgs([]string{"--username", "bob"})
	require.NoError(t, cmd.Execute())

	assert.Equal(t, "  correct horse battery  ", got)
}

func TestLogin_InvalidCredentials(t *testing.T) {
	fakeAPI(t)

	cmd := loginCmd()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetArgs([]string{"--username", "bob", "--password", "wrong!"})
	err := cmd.Execute()

	require.Error(t, err)
	assert.Contains(t, err.Error(), "Invalid credentials")
}

func TestMe_TableOutput(t *testing.T) {
	fakeAPI(t)
	require.NoError(t, config.SaveSession("tok-123"))

	cmd := meCmd()
	cmd.SetArgs([]string{})
	var err error
	out := captureOutput(t, func() {
		err = cmd.Execute()
	})

	require.NoError(t, err)
	if !strings.Contains(out, "bob") || !strings.Contains(out, "Bob B") || !strings.Contains(out, "bob@example.com") {
		t.Fatalf("expected profile in output, got: %s", out)
	}
}

func TestMe_JSONOutput(t *testing.T) {
	fakeAPI(t)
	require.NoError(t, config.SaveSession("tok-123"))

	cmd := meCmd()
	cmd.SetArgs([]string{"--json"})
	var err error
	out := captureOutput(t, func() {
		err = cmd.Execute()
	})

	require.NoError(t, err)
	if !strings.Contains(out, `"username": "bob"`) {
		t.Fatalf("expected JSON output, got: %s", out)
	}
}

func TestMe_NotLoggedIn(t *testing.T) {
	fakeAPI(t)

	cmd := meCmd()
	cmd.SetArgs([]string{})
	err := cmd.Execute()

	assert.ErrorIs(t, err, config.ErrNoSession)
}

func TestLogout_ClearsSession(t *testing.T) {
	fakeAPI(t)
	require.NoError(t, config.SaveSession("tok-123"))

	cmd := logoutCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{})
	require.NoError(t, cmd.Execute())

	assert.Contains(t, out.String(), "Logged out.")
	_, err := config.LoadSession()
	assert.ErrorIs(t, err, config.ErrNoSession)

	// a second logout without a session still succeeds
	cmd = logoutCmd()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetArgs([]string{})
	assert.NoError(t, cmd.Execute())
}

func TestEvents_TableOutput(t *testing.T) {
	fakeAPI(t)
	require.NoError(t, config.SaveSession("tok-123"))

	cmd := eventsCmd()
	cmd.SetArgs([]string{"--limit", "5"})
	var err error
	out := captureOutput(t, func() {
		err = cmd.Execute()
	})

	require.NoError(t, err)
	if !strings.Contains(out, "login") || !strings.Contains(out, "203.0.113.9") {
		t.Fatalf("expected event row in output, got: %s", out)
	}
}
