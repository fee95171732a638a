// Package secrets resolves the workspace credential used for publishing.
package secrets

import (
	"errors"
	"os"
	"strings"

	"github.com/zalando/go-keyring"
)

// KeyringService groups the app's secrets in the OS keychain.
const KeyringService = "job-posting"

// EnvToken is the environment fallback for the publish credential.
const EnvToken = "NOTION_TOKEN"

var (
	ErrTokenNotFound = errors.New("publish token not found (set it in keychain or via NOTION_TOKEN)")
	ErrEmptyAccount  = errors.New("keyring account name is empty")
	ErrEmptyToken    = errors.New("token is empty")
)

// GetToken returns the publish credential: keychain first, then the environment.
func GetToken(keyringAccount string) (string, error) {
	if strings.TrimSpace(keyringAccount) != "" {
		tok, err := keyring.Get(KeyringService, keyringAccount)
		if err == nil && strings.TrimSpace(tok) != "" {
			return strings.TrimSpace(tok), nil
		}
	}

	if tok := strings.TrimSpace(os.Getenv(EnvToken)); tok != "" {
		return tok, nil
	}

	return "", ErrTokenNotFound
}

// SetToken stores the credential in the keychain.
func SetToken(keyringAccount, token string) error {
	if strings.TrimSpace(keyringAccount) == "" {
		return ErrEmptyAccount
	}

	if strings.TrimSpace(token) == "" {
		return ErrEmptyToken
	}

	return keyring.Set(KeyringService, keyringAccount, token)
}

// DeleteToken removes the credential from the keychain.
func DeleteToken(keyringAccount string) error {
	if strings.TrimSpace(keyringAccount) == "" {
		return ErrEmptyAccount
	}

	return keyring.Delete(KeyringService, keyringAccount)
}
