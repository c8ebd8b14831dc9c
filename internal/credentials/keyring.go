package credentials

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/zalando/go-keyring"
)

// KeychainService is the OS keychain service name for stored credentials.
const KeychainService = "trello-mcp-server"

// DefaultAccount is the keychain account used when none is given.
const DefaultAccount = "default"

// Keyring stores credentials as a JSON secret in the OS keychain.
type Keyring struct {
	Service string
	Account string
}

// NewKeyring returns a Keyring for the given account under KeychainService.
func NewKeyring(account string) *Keyring {
	if account == "" {
		account = DefaultAccount
	}
	return &Keyring{Service: KeychainService, Account: account}
}

// Credentials loads the stored secret.
func (k *Keyring) Credentials(context.Context) (Credentials, error) {
	secret, err := keyring.Get(k.Service, k.Account)
	if errors.Is(err, keyring.ErrNotFound) {
		return Credentials{}, ErrNoCredentials
	}
	if err != nil {
		return Credentials{}, fmt.Errorf("reading keychain entry %s/%s: %w", k.Service, k.Account, err)
	}

	var creds Credentials
	if err := json.Unmarshal([]byte(secret), &creds); err != nil {
		return Credentials{}, fmt.Errorf("keychain entry %s/%s is corrupt: %w", k.Service, k.Account, err)
	}
	if !creds.Complete() {
		return Credentials{}, ErrNoCredentials
	}
	return creds, nil
}

// Save writes creds to the keychain, replacing any existing entry.
func (k *Keyring) Save(creds Credentials) error {
	if !creds.Complete() {
		return ErrNoCredentials
	}
	data, err := json.Marshal(creds)
	if err != nil {
		return fmt.Errorf("encoding credentials: %w", err)
	}
	if err := keyring.Set(k.Service, k.Account, string(data)); err != nil {
		return fmt.Errorf("writing keychain entry %s/%s: %w", k.Service, k.Account, err)
	}
	return nil
}

// Delete removes the keychain entry. A missing entry is not an error.
func (k *Keyring) Delete() error {
	err := keyring.Delete(k.Service, k.Account)
	if err != nil && !errors.Is(err, keyring.ErrNotFound) {
		return fmt.Errorf("deleting keychain entry %s/%s: %w", k.Service, k.Account, err)
	}
	return nil
}
