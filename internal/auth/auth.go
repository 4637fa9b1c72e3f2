package auth

import (
	"fmt"
	"os"
	"strings"
	"syscall"

	"github.com/zalando/go-keyring"
	"golang.org/x/term"
)

const (
	serviceName = "anytrans"
	account     = "openai-api-key"
	// EnvVar is the environment variable consulted when no key flag is given.
	EnvVar = "OPENAI_API_KEY"
)

// GetEnvKey retrieves the API key from the environment only.
func GetEnvKey() (string, bool) {
	key := strings.TrimSpace(os.Getenv(EnvVar))
	if key == "" {
		return "", false
	}
	return key, true
}

// GetKeychainKey retrieves the API key from the OS keychain only.
func GetKeychainKey() (string, bool) {
	key, err := keyring.Get(serviceName, account)
	if err != nil || strings.TrimSpace(key) == "" {
		return "", false
	}
	return strings.TrimSpace(key), true
}

// SaveKey stores the key in the OS keychain.
func SaveKey(key string) error {
	return keyring.Set(serviceName, account, strings.TrimSpace(key))
}

// DeleteKey removes the key from the OS keychain.
func DeleteKey() error {
	return keyring.Delete(serviceName, account)
}

// HasKeychainKey reports whether a key is stored in the keychain.
func HasKeychainKey() bool {
	_, ok := GetKeychainKey()
	return ok
}

// PromptForAPIKey reads the key from the terminal without echoing it.
func PromptForAPIKey(prompt string) (string, error) {
	fmt.Print(prompt)
	raw, err := term.ReadPassword(int(syscall.Stdin))
	if err != nil {
		return "", err
	}
	fmt.Println()
	return strings.TrimSpace(string(raw)), nil
}
