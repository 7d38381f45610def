package auth

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/crucial707/social-auth/cmd/cli/config"
	"github.com/crucial707/social-auth/cmd/cli/output"
	apiauth "github.com/crucial707/social-auth/internal/auth"
	"github.com/crucial707/social-auth/internal/models"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var client = &http.Client{Timeout: 15 * time.Second}

// InitAuth registers the session commands on the root command.
func InitAuth(rootCmd *cobra.Command) {
	rootCmd.AddCommand(signupCmd(), loginCmd(), logoutCmd(), meCmd(), eventsCmd())
}

// ==========================
// Signup
// ==========================
func signupCmd() *cobra.Command {
	var in struct {
		Username string `json:"username"`
		Fullname string `json:"fullname"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}

	cmd := &cobra.Command{
		Use:   "signup",
		Short: "Create an account and start a session",
		RunE: func(cmd *cobra.Command, args []string) error {
			if in.Password == "" {
				pw, err := prompt(cmd, "Password: ")
				if err != nil {
					return err
				}
				in.Password = pw
			}

			var profile models.PublicProfile
			token, err := callJSONEndpoint(http.MethodPost, "/signup", in, "", &profile)
			if err != nil {
				return fmt.Errorf("signup failed: %w", err)
			}
			if err := saveToken(token); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Signed up as %s. Session stored locally.\n", profile.Username)
			return nil
		},
	}

	cmd.Flags().StringVar(&in.Username, "username", "", "Username")
	cmd.Flags().StringVar(&in.Fullname, "fullname", "", "Full name")
	cmd.Flags().StringVar(&in.Email, "email", "", "Email address")
	cmd.Flags().StringVar(&in.Password, "password", "", "Password (prompted when empty)")

	return cmd
}

// ==========================
// Login
// ==========================
func loginCmd() *cobra.Command {
	var username, password string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in and store the session locally",
		RunE: func(cmd *cobra.Command, args []string) error {
			if username == "" {
				return fmt.Errorf("username is required")
			}
			if password == "" {
				pw, err := prompt(cmd, "Password: ")
				if err != nil {
					return err
				}
				password = pw
			}

			payload := map[string]string{"username": username, "password": password}
			token, err := callJSONEndpoint(http.MethodPost, "/login", payload, "", nil)
			if err != nil {
				return fmt.Errorf("login failed: %w", err)
			}
			if err := saveToken(token); err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), "Login successful. Session stored locally.")
			return nil
		},
	}

	cmd.Flags().StringVar(&username, "username", "", "Username to authenticate as")
	cmd.Flags().StringVar(&password, "password", "", "Password (prompted when empty)")

	return cmd
}

// ==========================
// Logout
// ==========================

// logoutCmd tells the server to clear the cookie and then drops the local copy.
// The local session is removed even when the server cannot be reached.
func logoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "End the current session",
		RunE: func(cmd *cobra.Command, args []string) error {
			token, _ := config.LoadSession()
			_, apiErr := callJSONEndpoint(http.MethodPost, "/logout", nil, token, nil)

			if err := config.ClearSession(); err != nil {
				return fmt.Errorf("remove session: %w", err)
			}
			if apiErr != nil {
				return fmt.Errorf("local session removed, server logout failed: %w", apiErr)
			}

			fmt.Fprintln(cmd.OutOrStdout(), "Logged out.")
			return nil
		},
	}
}

// ==========================
// Me
// ==========================
func meCmd() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "me",
		Short: "Show the profile of the logged in user",
		RunE: func(cmd *cobra.Command, args []string) error {
			token, err := config.LoadSession()
			if err != nil {
				return err
			}

			var profile models.PublicProfile
			if _, err := callJSONEndpoint(http.MethodGet, "/me", nil, token, &profile); err != nil {
				return err
			}

			if asJSON {
				return output.RenderJSON(profile)
			}
			output.RenderProfile(profile)
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Output raw JSON instead of a table")

	return cmd
}

// ==========================
// Events
// ==========================
func eventsCmd() *cobra.Command {
	var limit, offset int
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "events",
		Short: "List recent signups and logins of the logged in user",
		RunE: func(cmd *cobra.Command, args []string) error {
			token, err := config.LoadSession()
			if err != nil {
				return err
			}

			path := fmt.Sprintf("/me/events?limit=%d&offset=%d", limit, offset)
			var events []models.AuthEvent
			if _, err := callJSONEndpoint(http.MethodGet, path, nil, token, &events); err != nil {
				return err
			}

			if asJSON {
				return output.RenderJSON(events)
			}
			rows := make([][]interface{}, 0, len(events))
			for _, e := range events {
				rows = append(rows, []interface{}{e.CreatedAt.Local().Format(time.RFC3339), e.Action, e.IP, e.UserAgent})
			}
			output.RenderTable([]string{"When", "Action", "IP", "User agent"}, rows)
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 20, "Maximum number of events")
	cmd.Flags().IntVar(&offset, "offset", 0, "Number of events to skip")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Output raw JSON instead of a table")

	return cmd
}

func saveToken(token string) error {
	if token == "" {
		return errors.New("server did not return a session cookie")
	}
	if err := config.SaveSession(token); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}

// prompt reads a password without echo when stdin is a terminal, and a plain
// line otherwise. Only the line terminator is stripped; spaces are part of the
// password.
func prompt(cmd *cobra.Command, label string) (string, error) {
	fmt.Fprint(cmd.OutOrStdout(), label)

	if f, ok := cmd.InOrStdin().(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		b, err := term.ReadPassword(int(f.Fd()))
		fmt.Fprintln(cmd.OutOrStdout())
		if err != nil {
			return "", fmt.Errorf("read password: %w", err)
		}
		return trimNewline(string(b)), nil
	}

	line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
	if err != nil && (!errors.Is(err, io.EOF) || line == "") {
		return "", fmt.Errorf("read input: %w", err)
	}
	return trimNewline(line), nil
}

func trimNewline(s string) string {
	s = strings.TrimSuffix(s, "\n")
	return strings.TrimSuffix(s, "\r")
}

// callJSONEndpoint sends payload (if any) with the session cookie (if any) and
// decodes a 2xx body into out. It returns the session token set by the response.
func callJSONEndpoint(method, path string, payload interface{}, token string, out interface{}) (string, error) {
	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return "", err
		}
		body = bytes.NewReader(data)
	}

	baseURL, err := config.APIURL()
	if err != nil {
		return "", err
	}
	req, err := http.NewRequest(method, baseURL+path, body)
	if err != nil {
		return "", err
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.AddCookie(&http.Cookie{Name: apiauth.CookieName, Value: token})
	}

	resp, err := client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	raw, _ := io.ReadAll(resp.Body)
	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		var apiErr struct {
			Error string `json:"error"`
		}
		if json.Unmarshal(raw, &apiErr) == nil && apiErr.Error != "" {
			return "", fmt.Errorf("status %d: %s", resp.StatusCode, apiErr.Error)
		}
		return "", fmt.Errorf("status %d: %s", resp.StatusCode, string(raw))
	}

	if out != nil {
		if err := json.Unmarshal(raw, out); err != nil {
			return "", err
		}
	}

	for _, c := range resp.Cookies() {
		if c.Name == apiauth.CookieName && c.MaxAge >= 0 {
			return c.Value, nil
		}
	}
	return "", nil
}
