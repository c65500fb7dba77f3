package drafts

import (
	"errors"
	"os"
	"strings"

	"github.com/zalando/go-keyring"
)

const (
	keyringService = "rilf"
	keyringAccount = "openai_api_key"
)

// LookupAPIKey resolves the provider key: environment first, then the OS
// keyring. The scan pipeline never calls this; only the drafts command needs
// a key.
func LookupAPIKey() (string, error) {
	if key := strings.TrimSpace(os.Getenv("OPENAI_API_KEY")); key != "" {
		return key, nil
	}

	key, err := keyring.Get(keyringService, keyringAccount)
	if err == nil && strings.TrimSpace(key) != "" {
		return key, nil
	}

	return "", errors.New("no API key: set OPENAI_API_KEY or store one with 'rilf key set'")
}

// StoreAPIKey saves the key in the OS keyring.
func StoreAPIKey(key string) error {
	if strings.TrimSpace(key) == "" {
		return errors.New("key is empty")
	}
	return keyring.Set(keyringService, keyringAccount, key)
}

// DeleteAPIKey removes the key from the OS keyring.
func DeleteAPIKey() error {
	return keyring.Delete(keyringService, keyringAccount)
}
