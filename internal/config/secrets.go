package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// TokenEnv overrides the stored API token.
const TokenEnv = "TEAMFIT_API_TOKEN"

// ErrNoToken is returned when no API token has been configured or generated.
var ErrNoToken = errors.New("no API token configured")

type secrets struct {
	APIToken string `json:"api_token"`
}

func secretsFilePath() string {
	return filepath.Join(xdgDir("XDG_DATA_HOME", ".local", "share"), "teamfit", "secrets.json")
}

// APIToken returns the bearer token clients and the server share, from
// TEAMFIT_API_TOKEN or the secrets file.
func APIToken() (string, error) {
	return apiTokenFrom(secretsFilePath())
}

func apiTokenFrom(path string) (string, error) {
	if tok := strings.TrimSpace(os.Getenv(TokenEnv)); tok != "" {
		return tok, nil
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return "", ErrNoToken
	}
	if err != nil {
		return "", fmt.Errorf("reading secrets file: %w", err)
	}
	var s secrets
	if err := json.Unmarshal(data, &s); err != nil {
		return "", fmt.Errorf("parsing secrets file: %w", err)
	}
	if s.APIToken == "" {
		return "", ErrNoToken
	}
	return s.APIToken, nil
}

// EnsureAPIToken returns the configured token, generating and storing one
// on first use.
func EnsureAPIToken() (string, error) {
	return ensureAPITokenAt(secretsFilePath())
}

func ensureAPITokenAt(path string) (string, error) {
	tok, err := apiTokenFrom(path)
	if err == nil {
		return tok, nil
	}
	if !errors.Is(err, ErrNoToken) {
		return "", err
	}

	tok = strings.ReplaceAll(uuid.New().String()+uuid.New().String(), "-", "")
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return "", fmt.Errorf("creating secrets dir: %w", err)
	}
	out, err := json.MarshalIndent(secrets{APIToken: tok}, "", "  ")
	if err != nil {
		return "", err
	}
	if err := os.WriteFile(path, out, 0o600); err != nil {
		return "", fmt.Errorf("writing secrets file: %w", err)
	}
	return tok, nil
}
