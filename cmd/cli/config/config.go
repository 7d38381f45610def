package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

const (
	appDir          = "social-auth"
	defaultAPIURL   = "http://localhost:8080"
	sessionFileName = "session"
)

// ErrNoSession is returned by LoadSession when nothing has been saved.
var ErrNoSession = errors.New("not logged in")

// Settings are the CLI options. They come from, in increasing priority,
// defaults, <user config dir>/social-auth/config.yaml and SOCIAL_AUTH_* env vars.
type Settings struct {
	APIURL      string `mapstructure:"api_url"`
	SessionFile string `mapstructure:"session_file"`
}

// Load reads the CLI settings. A missing config file is not an error.
func Load() (Settings, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	if dir, err := os.UserConfigDir(); err == nil {
		v.AddConfigPath(filepath.Join(dir, appDir))
	}

	v.SetEnvPrefix("SOCIAL_AUTH")
	v.AutomaticEnv()

	v.SetDefault("api_url", defaultAPIURL)
	v.SetDefault("session_file", "")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return Settings{}, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var s Settings
	if err := v.Unmarshal(&s); err != nil {
		return Settings{}, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	s.APIURL = strings.TrimRight(s.APIURL, "/")
	return s, nil
}

// APIURL returns the base URL for the social auth API.
func APIURL() (string, error) {
	s, err := Load()
	if err != nil {
		return "", err
	}
	return s.APIURL, nil
}

// SessionPath is where the session token is kept between commands.
func SessionPath() (string, error) {
	s, err := Load()
	if err != nil {
		return "", err
	}
	if s.SessionFile != "" {
		return s.SessionFile, nil
	}
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("locate config dir: %w", err)
	}
	return filepath.Join(dir, appDir, sessionFileName), nil
}

// SaveSession writes token with owner-only permissions.
func SaveSession(token string) error {
	path, err := SessionPath()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	return os.WriteFile(path, []byte(token), 0o600)
}

func LoadSession() (string, error) {
	path, err := SessionPath()
	if err != nil {
		return "", err
	}
	b, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return "", ErrNoSession
	}
	if err != nil {
		return "", err
	}
	token := strings.TrimSpace(string(b))
	if token == "" {
		return "", ErrNoSession
	}
	return token, nil
}

// ClearSession removes the saved token. A missing file is not an error.
func ClearSession() error {
	path, err := SessionPath()
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}
