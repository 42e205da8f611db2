package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Token precedence: MANIFOLD_TOKEN environment variable, then the token
// file under the settings directory.

const tokenFile = "token"

// LoadToken returns the stored forge token, or empty when none is set.
func LoadToken() (string, error) {
	if t := os.Getenv("MANIFOLD_TOKEN"); t != "" {
		return t, nil
	}
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	data, err := os.ReadFile(filepath.Join(dir, tokenFile)) // #nosec G304 -- fixed path under the settings dir
	if os.IsNotExist(err) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("reading token file: %w", err)
	}
	return strings.TrimSpace(string(data)), nil
}

// SaveToken stores the forge token with owner-only permissions.
func SaveToken(token string) error {
	dir, err := Dir()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("creating settings directory: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dir, tokenFile), []byte(token+"\n"), 0o600); err != nil {
		return fmt.Errorf("writing token file: %w", err)
	}
	return nil
}

// ClearToken removes the stored token. Missing file is not an error.
func ClearToken() error {
	dir, err := Dir()
	if err != nil {
		return err
	}
	err = os.Remove(filepath.Join(dir, tokenFile))
	if os.IsNotExist(err) {
		return nil
	}
	return err
}
