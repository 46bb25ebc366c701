package config

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

const (
	defaultAPIURL = "http://localhost:8080"
	tokenFileName = ".reminders_token"
	envAPIURL     = "API_URL"
	envTokenFile  = "REMINDERS_TOKEN_FILE"
)

// APIURL returns the base URL for the Reminders API.
// It can be overridden with the API_URL environment variable.
func APIURL() string {
	if v := os.Getenv(envAPIURL); v != "" {
		return strings.TrimRight(v, "/")
	}
	return defaultAPIURL
}

// TokenPath is where login stores the bearer token. REMINDERS_TOKEN_FILE overrides it.
func TokenPath() string {
	if v := os.Getenv(envTokenFile); v != "" {
		return v
	}
	dir, err := os.UserHomeDir()
	if err != nil {
		return tokenFileName
	}
	return filepath.Join(dir, tokenFileName)
}

func SaveToken(token string) error {
	return os.WriteFile(TokenPath(), []byte(token), 0o600)
}

// LoadToken returns the saved token, or "" when nobody is logged in.
func LoadToken() (string, error) {
	data, err := os.ReadFile(TokenPath())
	if errors.Is(err, fs.ErrNotExist) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(data)), nil
}

// RemoveToken deletes the saved token and reports whether one existed.
func RemoveToken() (bool, error) {
	err := os.Remove(TokenPath())
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	return err == nil, err
}
