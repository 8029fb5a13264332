package config

import (
	"os"
	"path/filepath"
	"strings"
)

const (
	defaultAPIURL = "http://localhost:8080"
	tokenFileName = ".neatplan_token"
)

// APIURL returns the base URL for the NeatPlan API.
// It can be overridden with the NEATPLAN_API_URL environment variable.
func APIURL() string {
	if v := os.Getenv("NEATPLAN_API_URL"); v != "" {
		return strings.TrimRight(v, "/")
	}
	return defaultAPIURL
}

// TokenPath is where the JWT from "neatplan login" is kept.
// NEATPLAN_TOKEN_FILE overrides the default ~/.neatplan_token.
func TokenPath() string {
	if v := os.Getenv("NEATPLAN_TOKEN_FILE"); v != "" {
		return v
	}
	dir, _ := os.UserHomeDir()
	return filepath.Join(dir, tokenFileName)
}

func SaveToken(token string) error {
	return os.WriteFile(TokenPath(), []byte(token), 0600)
}

func ReadToken() (string, error) {
	data, err := os.ReadFile(TokenPath())
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(data)), nil
}

// RemoveToken deletes the stored token. It reports false when there was none.
func RemoveToken() (bool, error) {
	err := os.Remove(TokenPath())
	if os.IsNotExist(err) {
		return false, nil
	}
	return err == nil, err
}
