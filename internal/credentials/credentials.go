// Package credentials resolves the Trello API key and token sent with every
// request.
package credentials

import (
	"context"
	"errors"
	"os"
	"sync"
)

// Environment variables read by Env.
const (
	EnvAPIKey   = "TRELLO_API_KEY"
	EnvAPIToken = "TRELLO_API_TOKEN"
)

// ErrNoCredentials is returned when no provider has a key and token.
var ErrNoCredentials = errors.New("no Trello API key and token configured")

// Credentials are sent as the key and token query parameters.
type Credentials struct {
	Key   string `json:"key"`
	Token string `json:"token"`
}

// Complete reports whether both key and token are set.
func (c Credentials) Complete() bool {
	return c.Key != "" && c.Token != ""
}

// String never includes the secret values.
func (c Credentials) String() string {
	if c.Complete() {
		return "Credentials{key:set token:set}"
	}
	return "Credentials{incomplete}"
}

// Provider resolves credentials for a request.
type Provider interface {
	Credentials(ctx context.Context) (Credentials, error)
}

// Static always returns the same credentials.
type Static Credentials

// Credentials returns s, or ErrNoCredentials when s is incomplete.
func (s Static) Credentials(context.Context) (Credentials, error) {
	c := Credentials(s)
	if !c.Complete() {
		return Credentials{}, ErrNoCredentials
	}
	return c, nil
}

// Env reads credentials from the process environment once.
type Env struct {
	KeyVar   string
	TokenVar string

	once  sync.Once
	creds Credentials
}

// NewEnv reads TRELLO_API_KEY and TRELLO_API_TOKEN.
func NewEnv() *Env {
	return &Env{KeyVar: EnvAPIKey, TokenVar: EnvAPIToken}
}

// Credentials returns the environment credentials resolved on first use.
func (e *Env) Credentials(context.Context) (Credentials, error) {
	e.once.Do(func() {
		e.creds = Credentials{
			Key:   os.Getenv(e.KeyVar),
			Token: os.Getenv(e.TokenVar),
		}
	})
	if !e.creds.Complete() {
		return Credentials{}, ErrNoCredentials
	}
	return e.creds, nil
}

// Chain returns the first complete credentials from its providers.
type Chain []Provider

// Credentials tries each provider in order. Providers answering
// ErrNoCredentials are skipped; any other error stops the chain.
func (c Chain) Credentials(ctx context.Context) (Credentials, error) {
	for _, p := range c {
		creds, err := p.Credentials(ctx)
		if errors.Is(err, ErrNoCredentials) {
			continue
		}
		if err != nil {
			return Credentials{}, err
		}
		return creds, nil
	}
	return Credentials{}, ErrNoCredentials
}

// Credential sources accepted by ForSource.
const (
	SourceEnv     = "env"
	SourceKeyring = "keyring"
	SourceAuto    = "auto"
)

// ForSource builds the lookup order for a credential source. Explicit
// credentials, when any part is set, are consulted first except for the
// keyring source, which reads only the keychain.
func ForSource(source, account string, explicit Credentials) Provider {
	if source == SourceKeyring {
		return NewKeyring(account)
	}

	var chain Chain
	if explicit.Key != "" || explicit.Token != "" {
		chain = append(chain, Static(explicit))
	}
	chain = append(chain, NewEnv())
	if source != SourceEnv {
		chain = append(chain, NewKeyring(account))
	}
	return chain
}
