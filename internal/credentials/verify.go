package credentials

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/adlio/trello"
)

// Member identifies the account a token belongs to.
type Member struct {
	ID       string `json:"id" yaml:"id"`
	Username string `json:"username" yaml:"username"`
	FullName string `json:"full_name" yaml:"full_name"`
}

// Verify checks creds against GET /members/me and returns the token's owner.
// An empty baseURL uses the client library's default.
func Verify(ctx context.Context, creds Credentials, baseURL string, httpClient *http.Client) (*Member, error) {
	if !creds.Complete() {
		return nil, ErrNoCredentials
	}

	client := trello.NewClient(creds.Key, creds.Token)
	if baseURL != "" {
		client.BaseURL = strings.TrimSuffix(baseURL, "/")
	}
	if httpClient != nil {
		client.Client = httpClient
	}
	client = client.WithContext(ctx)

	m, err := client.GetMember("me", trello.Defaults())
	if err != nil {
		if trello.IsPermissionDenied(err) {
			return nil, fmt.Errorf("trello rejected the API key or token: %w", err)
		}
		return nil, fmt.Errorf("verifying credentials: %w", err)
	}
	return &Member{ID: m.ID, Username: m.Username, FullName: m.FullName}, nil
}
